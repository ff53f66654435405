// Package status reports the node's chain view, cache activity and host
// resources.
package status

import (
	"context"
	"time"

	"github.com/LumeraProtocol/kate/katenode/extension"
	"github.com/LumeraProtocol/kate/katenode/proof"
	"github.com/LumeraProtocol/kate/pkg/errors"
	"github.com/LumeraProtocol/kate/pkg/kate"
	"github.com/LumeraProtocol/kate/pkg/logtrace"
	"github.com/LumeraProtocol/kate/pkg/task"
)

// Version is the node version, set by the main application.
var Version = "dev"

// ChainStatus reports the best block and cache counters.
type ChainStatus interface {
	Status(ctx context.Context) (proof.Status, error)
}

// Memory is host memory usage in bytes.
type Memory struct {
	TotalBytes     uint64  `json:"totalBytes"`
	UsedBytes      uint64  `json:"usedBytes"`
	AvailableBytes uint64  `json:"availableBytes"`
	UsagePercent   float64 `json:"usagePercent"`
}

// StorageInfo is disk usage of one volume.
type StorageInfo struct {
	Path           string  `json:"path"`
	TotalBytes     uint64  `json:"totalBytes"`
	UsedBytes      uint64  `json:"usedBytes"`
	AvailableBytes uint64  `json:"availableBytes"`
	UsagePercent   float64 `json:"usagePercent"`
}

// Resources is a snapshot of host resources.
type Resources struct {
	CPUCores int32         `json:"cpuCores"`
	Memory   Memory        `json:"memory"`
	Storage  []StorageInfo `json:"storage,omitempty"`
}

// Report is what kate_status returns.
type Report struct {
	Version       string             `json:"version"`
	UptimeSeconds uint64             `json:"uptimeSeconds"`
	Best          kate.BlockIdentity `json:"best"`
	Cache         extension.Stats    `json:"cache"`
	// Running lists in-flight work per task kind.
	Running   map[string][]task.Running `json:"running,omitempty"`
	Resources Resources                 `json:"resources"`
}

// Service assembles status reports.
type Service struct {
	chain        ChainStatus
	tracker      task.Tracker
	metrics      *MetricsCollector
	storagePaths []string
	startTime    time.Time
}

// NewService returns a status service. storagePaths are the paths whose
// volumes are reported, typically the chain snapshot. tracker may be nil.
func NewService(chain ChainStatus, tracker task.Tracker, storagePaths []string) *Service {
	return &Service{chain: chain, tracker: tracker, metrics: NewMetricsCollector(), storagePaths: storagePaths, startTime: time.Now()}
}

// Report returns the current status. Host metrics that cannot be read are
// left zero; a chain failure fails the report.
func (s *Service) Report(ctx context.Context) (*Report, error) {
	logtrace.Debug(ctx, "status request received", logtrace.Fields{logtrace.FieldModule: "status", logtrace.FieldMethod: "Report"})

	st, err := s.chain.Status(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "chain status")
	}

	r := &Report{
		Version:       Version,
		UptimeSeconds: uint64(time.Since(s.startTime).Seconds()),
		Best:          st.Best,
		Cache:         st.Cache,
	}
	if s.tracker != nil {
		r.Running = s.tracker.Snapshot()
	}
	if cores, err := s.metrics.CPUCores(ctx); err == nil {
		r.Resources.CPUCores = cores
	}
	if m, err := s.metrics.Memory(ctx); err == nil {
		r.Resources.Memory = m
	}
	r.Resources.Storage = s.metrics.Storage(ctx, s.storagePaths)
	return r, nil
}
