package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LumeraProtocol/kate/katenode/devnet"
	"github.com/LumeraProtocol/kate/pkg/chain/boltchain"
	"github.com/LumeraProtocol/kate/pkg/kate"
	"github.com/LumeraProtocol/kate/pkg/logtrace"
)

var devnetOpts = devnet.DefaultOptions()

var (
	devnetRows, devnetCols, devnetChunkSize uint32
	devnetOut                               string
)

var devnetCmd = &cobra.Command{
	Use:   "devnet",
	Short: "Generate a development chain snapshot",
	Long: `Generate a deterministic chain snapshot with random extrinsics, a development
KZG setup and per-block randomness, written to the configured snapshot path
unless --out is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logtrace.Setup("katenode", cfg.Log.Environment, logtrace.ParseLevel(cfg.Log.Level))
		defer logtrace.Sync()

		out := devnetOut
		if out == "" {
			out = cfg.Chain.SnapshotPath
		}
		devnetOpts.Dims = []kate.BlockDimensions{{Rows: devnetRows, Cols: devnetCols, ChunkSize: devnetChunkSize}}

		ctx := logtrace.CtxWithCorrelationID(context.Background(), "katenode-devnet")
		store, err := boltchain.Open(ctx, out)
		if err != nil {
			return err
		}
		defer store.Close()

		head, err := devnet.Generate(ctx, store, devnetOpts)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Generated %d blocks in %s, head %s\n", devnetOpts.Blocks, out, head)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(devnetCmd)
	f := devnetCmd.Flags()
	f.StringVar(&devnetOut, "out", "", "snapshot file to write (defaults to chain.snapshot_path)")
	f.Uint32Var(&devnetOpts.Blocks, "blocks", devnetOpts.Blocks, "number of blocks")
	f.Uint32Var(&devnetRows, "rows", 256, "rows per block")
	f.Uint32Var(&devnetCols, "cols", 256, "columns per block")
	f.Uint32Var(&devnetChunkSize, "chunk-size", 32, "bytes per cell")
	f.IntVar(&devnetOpts.MaxExtrinsics, "max-extrinsics", devnetOpts.MaxExtrinsics, "maximum extrinsics per block")
	f.Uint32Var(&devnetOpts.Apps, "apps", devnetOpts.Apps, "number of application ids")
	f.BoolVar(&devnetOpts.NativeVRF, "native-vrf", devnetOpts.NativeVRF, "expose a vrf through the runtime api")
	f.BoolVar(&devnetOpts.StorageRandomness, "storage-randomness", devnetOpts.StorageRandomness, "write Babe::Randomness storage")
	f.Uint64Var(&devnetOpts.Seed, "seed", devnetOpts.Seed, "generator seed")
}
