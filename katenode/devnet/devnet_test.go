package devnet

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LumeraProtocol/kate/katenode/extension"
	"github.com/LumeraProtocol/kate/katenode/proof"
	"github.com/LumeraProtocol/kate/katenode/vrf"
	"github.com/LumeraProtocol/kate/pkg/chain"
	"github.com/LumeraProtocol/kate/pkg/chain/boltchain"
	"github.com/LumeraProtocol/kate/pkg/kate"
	"github.com/LumeraProtocol/kate/pkg/kate/commitment"
	"github.com/LumeraProtocol/kate/pkg/kate/erasure"
	"github.com/LumeraProtocol/kate/pkg/utils"
)

func smallOptions() Options {
	return Options{
		Blocks: 4,
		Dims: []kate.BlockDimensions{
			{Rows: 4, Cols: 4, ChunkSize: 32},
			{Rows: 2, Cols: 8, ChunkSize: 16},
		},
		MaxExtrinsics:     3,
		Apps:              2,
		StorageRandomness: true,
		Seed:              7,
	}
}

func openStore(t *testing.T) *boltchain.Store {
	t.Helper()
	s, err := boltchain.Open(context.Background(), filepath.Join(t.TempDir(), "devnet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGenerateChain(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	opts := smallOptions()

	head, err := Generate(ctx, s, opts)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), head.Number)

	best, err := s.BestBlock(ctx)
	require.NoError(t, err)
	assert.Equal(t, head, best)

	var parent kate.Hash
	for n := uint32(0); n < opts.Blocks; n++ {
		b, err := s.BlockByNumber(ctx, n)
		require.NoError(t, err)
		assert.Equal(t, parent, b.ParentHash)
		parent = b.Identity.Hash

		dims, err := s.BlockLength(ctx, b.Identity.Hash)
		require.NoError(t, err)
		assert.Equal(t, opts.Dims[int(n)%2], dims)

		_, err = s.BabeVRF(ctx, b.Identity.Hash)
		assert.ErrorIs(t, err, boltchain.ErrVRFUnavailable)
		raw, err := s.Storage(ctx, b.Identity.Hash, chain.BabeRandomnessKey)
		require.NoError(t, err)
		assert.Len(t, raw, 64)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	ctx := context.Background()
	a, err := Generate(ctx, openStore(t), smallOptions())
	require.NoError(t, err)
	b, err := Generate(ctx, openStore(t), smallOptions())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerateRejectsBadOptions(t *testing.T) {
	ctx := context.Background()
	opts := smallOptions()
	opts.Blocks = 0
	_, err := Generate(ctx, openStore(t), opts)
	require.Error(t, err)

	opts = smallOptions()
	opts.Dims = []kate.BlockDimensions{{Rows: 3, Cols: 4, ChunkSize: 32}}
	_, err = Generate(ctx, openStore(t), opts)
	require.ErrorIs(t, err, erasure.ErrInvalidDimensions)
}

// TestServeProofsFromDevnet runs the full query path over a generated chain.
func TestServeProofsFromDevnet(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	opts := smallOptions()
	opts.NativeVRF = true
	_, err := Generate(ctx, s, opts)
	require.NoError(t, err)

	cache, err := extension.NewCache(extension.NewBuilder(erasure.New()))
	require.NoError(t, err)
	svc, err := proof.NewService(s, s, cache, vrf.NewChainResolver(s, s, utils.Blake2b256), commitment.New(), proof.Config{})
	require.NoError(t, err)

	for n := uint32(0); n < opts.Blocks; n++ {
		b, err := s.BlockByNumber(ctx, n)
		require.NoError(t, err)
		raw, err := s.PublicParams(ctx, b.Identity.Hash)
		require.NoError(t, err)
		pp, err := commitment.DecodePublicParameters(raw)
		require.NoError(t, err)

		dims, err := s.BlockLength(ctx, b.Identity.Hash)
		require.NoError(t, err)
		cells := []kate.Cell{{Row: 0, Col: 0}, {Row: dims.ExtendedRows() - 1, Col: dims.Cols - 1}}
		p, err := svc.QueryProof(ctx, n, cells)
		require.NoError(t, err)

		ext, err := cache.GetOrBuild(ctx, b.Identity, dims, nil, nil)
		require.NoError(t, err)
		parts, err := commitment.SplitProofs(p)
		require.NoError(t, err)
		for i, cell := range cells {
			digest, err := commitment.RowCommitment(pp, ext.Matrix, cell.Row)
			require.NoError(t, err)
			_, err = commitment.VerifyCell(pp, digest, dims, cell, parts[i])
			require.NoError(t, err)
		}
	}
	assert.Equal(t, uint64(opts.Blocks), cache.Stats().Builds)

	length, err := svc.QueryBlockLength(ctx)
	require.NoError(t, err)
	assert.Equal(t, opts.Dims[int(opts.Blocks-1)%2], length)
}
