package proof

import (
	"bytes"
	"context"
	stderrors "errors"
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/LumeraProtocol/kate/katenode/extension"
	"github.com/LumeraProtocol/kate/katenode/vrf"
	"github.com/LumeraProtocol/kate/pkg/chain"
	"github.com/LumeraProtocol/kate/pkg/errors"
	"github.com/LumeraProtocol/kate/pkg/kate"
	"github.com/LumeraProtocol/kate/pkg/kate/commitment"
	"github.com/LumeraProtocol/kate/pkg/kate/erasure"
	"github.com/LumeraProtocol/kate/pkg/utils"
)

var dims4x4 = kate.BlockDimensions{Rows: 4, Cols: 4, ChunkSize: 32}

// recordingBuilder counts builds and keeps the inputs of the last one.
type recordingBuilder struct {
	inner *extension.Builder

	mu    sync.Mutex
	calls int
	dims  kate.BlockDimensions
	xts   []kate.ExtrinsicRecord
	seed  kate.VRFSeed
}

func (b *recordingBuilder) Build(ctx context.Context, id kate.BlockIdentity, dims kate.BlockDimensions, xts []kate.ExtrinsicRecord, seed kate.VRFSeed) (*extension.Extension, error) {
	b.mu.Lock()
	b.calls++
	b.dims, b.xts, b.seed = dims, xts, seed
	b.mu.Unlock()
	return b.inner.Build(ctx, id, dims, xts, seed)
}

func (b *recordingBuilder) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

type fixture struct {
	client  *chain.MockClient
	runtime *chain.MockRuntimeAPI
	storage *chain.MockStorageProvider
	builder *recordingBuilder
	cache   *extension.Cache
	pp      *commitment.PublicParameters
	ppRaw   []byte
	service *Service
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		client:  chain.NewMockClient(ctrl),
		runtime: chain.NewMockRuntimeAPI(ctrl),
		storage: chain.NewMockStorageProvider(ctrl),
		builder: &recordingBuilder{inner: extension.NewBuilder(erasure.New())},
	}

	var err error
	f.cache, err = extension.NewCache(f.builder)
	require.NoError(t, err)
	f.pp, err = commitment.NewPublicParameters(8, big.NewInt(7))
	require.NoError(t, err)
	f.ppRaw, err = f.pp.Bytes()
	require.NoError(t, err)

	seeds := vrf.NewChainResolver(f.runtime, f.storage, utils.Blake2b256)
	f.service, err = NewService(f.client, f.runtime, f.cache, seeds, commitment.New(), cfg)
	require.NoError(t, err)
	return f
}

func block10() *chain.Block {
	return &chain.Block{
		Identity: kate.BlockIdentity{Number: 10, Hash: kate.Hash{0x10}},
		Extrinsics: []chain.Extrinsic{
			{AppID: 0, Encoded: bytes.Repeat([]byte{0xa}, 10)},
			{AppID: 1, Encoded: bytes.Repeat([]byte{0xb}, 5)},
			{AppID: 1, Encoded: bytes.Repeat([]byte{0xc}, 20)},
		},
	}
}

// expectBlock10 serves block #10 with no randomness available.
func (f *fixture) expectBlock10() *chain.Block {
	b := block10()
	f.client.EXPECT().BlockByNumber(gomock.Any(), uint32(10)).Return(b, nil).AnyTimes()
	f.runtime.EXPECT().BlockLength(gomock.Any(), b.Identity.Hash).Return(dims4x4, nil).AnyTimes()
	f.runtime.EXPECT().PublicParams(gomock.Any(), b.Identity.Hash).Return(f.ppRaw, nil).AnyTimes()
	f.runtime.EXPECT().BabeVRF(gomock.Any(), b.Identity.Hash).Return(kate.VRFSeed{}, stderrors.New("api not available")).AnyTimes()
	f.storage.EXPECT().Storage(gomock.Any(), b.Identity.Hash, chain.BabeRandomnessKey).Return(nil, nil).AnyTimes()
	return b
}

func expectedMatrix(t *testing.T, b *chain.Block, seed kate.VRFSeed) *kate.ExtendedMatrix {
	t.Helper()
	engine := erasure.New()
	xts := make([]kate.ExtrinsicRecord, 0, len(b.Extrinsics))
	for _, xt := range b.Extrinsics {
		xts = append(xts, kate.ExtrinsicRecord{AppID: xt.AppID, Data: xt.Encoded})
	}
	scalars, dims, err := engine.FlattenAndPad(dims4x4, xts, seed)
	require.NoError(t, err)
	m, err := engine.Extend(dims, scalars)
	require.NoError(t, err)
	return m
}

func verifyCells(t *testing.T, pp *commitment.PublicParameters, m *kate.ExtendedMatrix, cells []kate.Cell, proof []byte) {
	t.Helper()
	parts, err := commitment.SplitProofs(proof)
	require.NoError(t, err)
	require.Len(t, parts, len(cells))
	for i, cell := range cells {
		digest, err := commitment.RowCommitment(pp, m, cell.Row)
		require.NoError(t, err)
		value, err := commitment.VerifyCell(pp, digest, m.Dims, cell, parts[i])
		require.NoError(t, err)
		want, _ := m.At(cell.Row, cell.Col)
		assert.True(t, want.Equal(&value), "cell %v", cell)
	}
}

func TestQueryProofBuildsBlockOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})
	b := f.expectBlock10()
	m := expectedMatrix(t, b, kate.VRFSeed{})

	first := []kate.Cell{{Row: 0, Col: 0}, {Row: 1, Col: 1}}
	proof, err := f.service.QueryProof(ctx, 10, first)
	require.NoError(t, err)
	verifyCells(t, f.pp, m, first, proof)

	second := []kate.Cell{{Row: 2, Col: 2}}
	proof, err = f.service.QueryProof(ctx, 10, second)
	require.NoError(t, err)
	verifyCells(t, f.pp, m, second, proof)

	assert.Equal(t, 1, f.builder.count())
	assert.Equal(t, dims4x4, f.builder.dims)
	assert.True(t, f.builder.seed.IsZero())
	require.Len(t, f.builder.xts, 3)
	for i, want := range []struct {
		app kate.AppID
		len int
	}{{0, 10}, {1, 5}, {1, 20}} {
		assert.Equal(t, want.app, f.builder.xts[i].AppID)
		assert.Len(t, f.builder.xts[i].Data, want.len)
	}
}

func TestQueryProofSeedsBuildWithBlockRandomness(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})
	b := block10()
	seed := kate.VRFSeed{0x5e, 0xed}
	f.client.EXPECT().BlockByNumber(gomock.Any(), uint32(10)).Return(b, nil)
	f.runtime.EXPECT().BlockLength(gomock.Any(), b.Identity.Hash).Return(dims4x4, nil)
	f.runtime.EXPECT().BabeVRF(gomock.Any(), b.Identity.Hash).Return(seed, nil)
	f.runtime.EXPECT().PublicParams(gomock.Any(), b.Identity.Hash).Return(f.ppRaw, nil)

	cells := []kate.Cell{{Row: 6, Col: 1}}
	proof, err := f.service.QueryProof(ctx, 10, cells)
	require.NoError(t, err)
	assert.Equal(t, seed, f.builder.seed)
	verifyCells(t, f.pp, expectedMatrix(t, b, seed), cells, proof)
}

func TestQueryProofRepeatedCallsBuildOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})
	f.expectBlock10()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.service.QueryProof(ctx, 10, []kate.Cell{{Row: uint32(i % 8), Col: uint32(i % 4)}})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, f.builder.count())
}

func TestQueryProofUnknownBlock(t *testing.T) {
	f := newFixture(t, Config{})
	f.client.EXPECT().BlockByNumber(gomock.Any(), uint32(1_000)).Return(nil, errors.Wrap(chain.ErrBlockNotFound, "above head #12"))

	_, err := f.service.QueryProof(context.Background(), 1_000, []kate.Cell{{Row: 0, Col: 0}})
	require.Error(t, err)
	assert.Equal(t, errors.KindNotFound, errors.KindOf(err))
	assert.Equal(t, 0, f.builder.count())
	assert.Equal(t, 0, f.cache.Len())
	assert.Equal(t, uint64(0), f.cache.Stats().Misses)
}

func TestQueryProofEdgeCells(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})
	f.expectBlock10()

	t.Run("empty cell list", func(t *testing.T) {
		proof, err := f.service.QueryProof(ctx, 10, nil)
		require.NoError(t, err)
		assert.Empty(t, proof)
	})

	t.Run("duplicate cells answered twice", func(t *testing.T) {
		cell := kate.Cell{Row: 3, Col: 1}
		proof, err := f.service.QueryProof(ctx, 10, []kate.Cell{cell, cell})
		require.NoError(t, err)
		require.Len(t, proof, 2*commitment.ProofSize)
		assert.Equal(t, proof[:commitment.ProofSize], proof[commitment.ProofSize:])
	})

	t.Run("cell outside extended matrix", func(t *testing.T) {
		_, err := f.service.QueryProof(ctx, 10, []kate.Cell{{Row: 0, Col: 0}, {Row: 8, Col: 0}})
		require.Error(t, err)
		assert.Equal(t, errors.KindProofError, errors.KindOf(err))
		assert.True(t, errors.Is(err, commitment.ErrCellOutOfRange))
	})
}

func TestQueryProofUpstreamFailures(t *testing.T) {
	ctx := context.Background()
	b := block10()
	boom := stderrors.New("connection refused")

	t.Run("block lookup", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.client.EXPECT().BlockByNumber(gomock.Any(), uint32(10)).Return(nil, boom)
		_, err := f.service.QueryProof(ctx, 10, nil)
		assert.Equal(t, errors.KindUpstreamUnavailable, errors.KindOf(err))
	})

	t.Run("block length", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.client.EXPECT().BlockByNumber(gomock.Any(), uint32(10)).Return(b, nil)
		f.runtime.EXPECT().BlockLength(gomock.Any(), b.Identity.Hash).Return(kate.BlockDimensions{}, boom)
		_, err := f.service.QueryProof(ctx, 10, nil)
		assert.Equal(t, errors.KindUpstreamUnavailable, errors.KindOf(err))
		assert.Equal(t, 0, f.builder.count())
	})

	t.Run("public params", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.client.EXPECT().BlockByNumber(gomock.Any(), uint32(10)).Return(b, nil)
		f.runtime.EXPECT().BlockLength(gomock.Any(), b.Identity.Hash).Return(dims4x4, nil)
		f.runtime.EXPECT().BabeVRF(gomock.Any(), b.Identity.Hash).Return(kate.VRFSeed{7}, nil)
		f.runtime.EXPECT().PublicParams(gomock.Any(), b.Identity.Hash).Return(nil, boom)
		_, err := f.service.QueryProof(ctx, 10, nil)
		assert.Equal(t, errors.KindUpstreamUnavailable, errors.KindOf(err))
		// The extension is kept even though the query failed.
		assert.True(t, f.cache.Contains(b.Identity.Hash))
	})
}

func TestQueryProofBuildFailureIsNotCached(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})
	b := block10()
	tooSmall := kate.BlockDimensions{Rows: 1, Cols: 2, ChunkSize: 32}
	f.client.EXPECT().BlockByNumber(gomock.Any(), uint32(10)).Return(b, nil).Times(2)
	gomock.InOrder(
		f.runtime.EXPECT().BlockLength(gomock.Any(), b.Identity.Hash).Return(tooSmall, nil),
		f.runtime.EXPECT().BlockLength(gomock.Any(), b.Identity.Hash).Return(dims4x4, nil),
	)
	f.runtime.EXPECT().BabeVRF(gomock.Any(), b.Identity.Hash).Return(kate.VRFSeed{1}, nil).Times(2)
	f.runtime.EXPECT().PublicParams(gomock.Any(), b.Identity.Hash).Return(f.ppRaw, nil)

	_, err := f.service.QueryProof(ctx, 10, nil)
	require.Error(t, err)
	assert.Equal(t, errors.KindBuildError, errors.KindOf(err))
	assert.True(t, errors.Is(err, erasure.ErrCapacityExceeded))
	assert.False(t, f.cache.Contains(b.Identity.Hash))

	_, err = f.service.QueryProof(ctx, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.Len())
	assert.Equal(t, 2, f.builder.count())
}

func TestQueryProofParamsDecoding(t *testing.T) {
	ctx := context.Background()
	b := block10()

	setup := func(f *fixture, raw []byte) {
		f.client.EXPECT().BlockByNumber(gomock.Any(), uint32(10)).Return(b, nil)
		f.runtime.EXPECT().BlockLength(gomock.Any(), b.Identity.Hash).Return(dims4x4, nil)
		f.runtime.EXPECT().BabeVRF(gomock.Any(), b.Identity.Hash).Return(kate.VRFSeed{}, nil)
		f.runtime.EXPECT().PublicParams(gomock.Any(), b.Identity.Hash).Return(raw, nil)
	}

	t.Run("garbage rejected", func(t *testing.T) {
		f := newFixture(t, Config{})
		setup(f, []byte("definitely not an srs"))
		_, err := f.service.QueryProof(ctx, 10, []kate.Cell{{Row: 0, Col: 0}})
		require.Error(t, err)
		assert.Equal(t, errors.KindDecodeError, errors.KindOf(err))
	})

	t.Run("unchecked decode accepts well formed params", func(t *testing.T) {
		f := newFixture(t, Config{UncheckedParams: true})
		setup(f, f.ppRaw)
		cells := []kate.Cell{{Row: 5, Col: 3}}
		proof, err := f.service.QueryProof(ctx, 10, cells)
		require.NoError(t, err)
		verifyCells(t, f.pp, expectedMatrix(t, b, kate.VRFSeed{}), cells, proof)
	})
}

// countingEngine counts parameter decodes of the real engine.
type countingEngine struct {
	*commitment.Engine
	decodes int
}

func (e *countingEngine) DecodeParams(raw []byte, unchecked bool) (*commitment.PublicParameters, error) {
	e.decodes++
	return e.Engine.DecodeParams(raw, unchecked)
}

func TestQueryProofDecodesParamsEveryCall(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})
	f.expectBlock10()

	engine := &countingEngine{Engine: commitment.New()}
	svc, err := NewService(f.client, f.runtime, f.cache, vrf.NewChainResolver(f.runtime, f.storage, utils.Blake2b256), engine, Config{})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := svc.QueryProof(ctx, 10, []kate.Cell{{Row: 0, Col: 0}})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, engine.decodes)
	assert.Equal(t, 1, f.builder.count())
}

func TestNewServiceRequiresCollaborators(t *testing.T) {
	_, err := NewService(nil, nil, nil, nil, nil, Config{})
	require.Error(t, err)
}

func TestQueryBlockLengthFollowsHead(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})
	headA := kate.BlockIdentity{Number: 20, Hash: kate.Hash{0x20}}
	headB := kate.BlockIdentity{Number: 21, Hash: kate.Hash{0x21}}
	wide := kate.BlockDimensions{Rows: 8, Cols: 16, ChunkSize: 32}

	gomock.InOrder(
		f.client.EXPECT().BestBlock(gomock.Any()).Return(headA, nil),
		f.client.EXPECT().BestBlock(gomock.Any()).Return(headB, nil),
	)
	f.runtime.EXPECT().BlockLength(gomock.Any(), headA.Hash).Return(dims4x4, nil)
	f.runtime.EXPECT().BlockLength(gomock.Any(), headB.Hash).Return(wide, nil)

	got, err := f.service.QueryBlockLength(ctx)
	require.NoError(t, err)
	assert.Equal(t, dims4x4, got)

	got, err = f.service.QueryBlockLength(ctx)
	require.NoError(t, err)
	assert.Equal(t, wide, got)
	assert.Equal(t, 0, f.builder.count())
}

func TestQueryBlockLengthUpstreamFailure(t *testing.T) {
	f := newFixture(t, Config{})
	f.client.EXPECT().BestBlock(gomock.Any()).Return(kate.BlockIdentity{}, stderrors.New("rpc down"))

	_, err := f.service.QueryBlockLength(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.KindUpstreamUnavailable, errors.KindOf(err))
	assert.True(t, errors.IsRetryable(err))
}

func TestStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})
	b := f.expectBlock10()
	f.client.EXPECT().BestBlock(gomock.Any()).Return(b.Identity, nil)

	_, err := f.service.QueryProof(ctx, 10, nil)
	require.NoError(t, err)

	st, err := f.service.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, b.Identity, st.Best)
	assert.Equal(t, 1, st.Cache.Size)
	assert.Equal(t, uint64(1), st.Cache.Builds)
}
