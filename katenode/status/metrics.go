package status

import (
	"context"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/LumeraProtocol/kate/pkg/logtrace"
)

// MetricsCollector reads host resource usage.
type MetricsCollector struct{}

// NewMetricsCollector creates a new metrics collector instance
func NewMetricsCollector() *MetricsCollector { return &MetricsCollector{} }

// CPUCores returns the number of logical cores.
func (m *MetricsCollector) CPUCores(ctx context.Context) (int32, error) {
	cores, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		logtrace.Error(ctx, "failed to get cpu core count", logtrace.Fields{logtrace.FieldError: err.Error()})
		return 0, err
	}
	return int32(cores), nil
}

// Memory returns host memory usage.
func (m *MetricsCollector) Memory(ctx context.Context) (Memory, error) {
	vmem, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		logtrace.Error(ctx, "failed to get memory info", logtrace.Fields{logtrace.FieldError: err.Error()})
		return Memory{}, err
	}
	return Memory{
		TotalBytes:     vmem.Total,
		UsedBytes:      vmem.Used,
		AvailableBytes: vmem.Available,
		UsagePercent:   vmem.UsedPercent,
	}, nil
}

// Storage returns disk usage of the volumes holding paths. Paths that cannot
// be read are skipped.
func (m *MetricsCollector) Storage(ctx context.Context, paths []string) []StorageInfo {
	var infos []StorageInfo
	for _, path := range paths {
		usage, err := disk.UsageWithContext(ctx, path)
		if err != nil {
			logtrace.Error(ctx, "failed to get storage info", logtrace.Fields{logtrace.FieldError: err.Error(), "path": path})
			continue
		}
		infos = append(infos, StorageInfo{
			Path:           path,
			TotalBytes:     usage.Total,
			UsedBytes:      usage.Used,
			AvailableBytes: usage.Free,
			UsagePercent:   usage.UsedPercent,
		})
	}
	return infos
}
