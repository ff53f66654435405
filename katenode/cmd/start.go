package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/LumeraProtocol/kate/katenode/config"
	"github.com/LumeraProtocol/kate/katenode/extension"
	"github.com/LumeraProtocol/kate/katenode/proof"
	"github.com/LumeraProtocol/kate/katenode/status"
	"github.com/LumeraProtocol/kate/katenode/transport/jsonrpc"
	"github.com/LumeraProtocol/kate/katenode/vrf"
	"github.com/LumeraProtocol/kate/pkg/chain/boltchain"
	"github.com/LumeraProtocol/kate/pkg/errors"
	"github.com/LumeraProtocol/kate/pkg/kate/commitment"
	"github.com/LumeraProtocol/kate/pkg/kate/erasure"
	"github.com/LumeraProtocol/kate/pkg/logtrace"
	"github.com/LumeraProtocol/kate/pkg/task"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the proof node",
	Long: `Start serving kate_queryProof, kate_blockLength and kate_status over JSON-RPC,
reading blocks and runtime configuration from the configured chain snapshot.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		logtrace.Setup("katenode", cfg.Log.Environment, logtrace.ParseLevel(cfg.Log.Level))
		defer logtrace.Sync()

		ctx, cancel := context.WithCancel(logtrace.CtxWithCorrelationID(context.Background(), "katenode-start"))
		defer cancel()

		logtrace.Info(ctx, "Starting katenode with configuration", logtrace.Fields{
			"config_file":    cfgFile,
			"listen_address": cfg.RPC.ListenAddress,
			"snapshot_path":  cfg.Chain.SnapshotPath,
			"cache_capacity": cfg.Cache.Capacity,
			"vrf_hasher":     cfg.VRF.Hasher,
		})

		store, err := boltchain.Open(ctx, cfg.Chain.SnapshotPath)
		if err != nil {
			logtrace.Error(ctx, "Failed to open chain snapshot", logtrace.Fields{logtrace.FieldError: err.Error()})
			return err
		}
		defer store.Close()

		server, err := newServer(store, cfg)
		if err != nil {
			return err
		}

		// Set up signal handling for graceful shutdown
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		go func() {
			select {
			case sig := <-sigCh:
				logtrace.Info(ctx, "Received signal, shutting down", logtrace.Fields{"signal": sig.String()})
				cancel()
			case <-ctx.Done():
			}
		}()

		return server.Run(ctx)
	},
}

// newServer wires the node over a chain snapshot.
func newServer(store *boltchain.Store, cfg *config.Config) (*jsonrpc.Server, error) {
	tracker := task.New()
	cache, err := extension.NewCache(
		extension.NewBuilder(erasure.New()),
		extension.WithCapacity(cfg.Cache.Capacity),
		extension.WithMaxConcurrentBuilds(cfg.Cache.MaxConcurrentBuilds),
		extension.WithTracker(tracker),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create extension cache")
	}

	seeds := vrf.NewChainResolver(store, store, cfg.Hasher())
	svc, err := proof.NewService(store, store, cache, seeds, commitment.New(), proof.Config{
		UncheckedParams: cfg.Commitment.UncheckedParams,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create proof service")
	}

	opts := []jsonrpc.Option{
		jsonrpc.WithRateLimit(cfg.RPC.MaxRequestsPerSecond),
		jsonrpc.WithStatus(status.NewService(svc, tracker, []string{cfg.Chain.SnapshotPath})),
	}
	if cfg.RPC.EnableAdmin {
		opts = append(opts, jsonrpc.WithCacheAdmin(cache))
	}
	return jsonrpc.NewServer(cfg.RPC.ListenAddress, svc, opts...)
}

func init() {
	rootCmd.AddCommand(startCmd)
}
