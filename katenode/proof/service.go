// Package proof answers cell proof and block length queries against the chain,
// building block extensions through the extension cache.
package proof

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/LumeraProtocol/kate/katenode/extension"
	"github.com/LumeraProtocol/kate/pkg/chain"
	"github.com/LumeraProtocol/kate/pkg/errors"
	"github.com/LumeraProtocol/kate/pkg/kate"
	"github.com/LumeraProtocol/kate/pkg/kate/commitment"
	"github.com/LumeraProtocol/kate/pkg/logtrace"
)

// ExtensionCache returns block extensions, building them on a miss.
type ExtensionCache interface {
	GetOrBuild(ctx context.Context, id kate.BlockIdentity, dims kate.BlockDimensions, extrinsics extension.ExtrinsicsFunc, seed extension.SeedFunc) (*extension.Extension, error)
	Stats() extension.Stats
}

// SeedResolver resolves the padding seed of a block.
type SeedResolver interface {
	Resolve(ctx context.Context, id kate.BlockIdentity) kate.VRFSeed
}

// CommitmentEngine decodes public parameters and opens cells.
type CommitmentEngine interface {
	DecodeParams(raw []byte, unchecked bool) (*commitment.PublicParameters, error)
	BuildProof(pp *commitment.PublicParameters, dims kate.BlockDimensions, m *kate.ExtendedMatrix, cells []kate.Cell) ([]byte, error)
}

// Config tunes the service.
type Config struct {
	// UncheckedParams skips structural validation of chain supplied public
	// parameters.
	UncheckedParams bool
}

// Status is the node's view of the chain head and its cache.
type Status struct {
	Best  kate.BlockIdentity `json:"best"`
	Cache extension.Stats    `json:"cache"`
}

// Service serves proof and block length queries.
type Service struct {
	client  chain.Client
	runtime chain.RuntimeAPI
	cache   ExtensionCache
	seeds   SeedResolver
	engine  CommitmentEngine
	config  Config
}

// NewService wires a proof service.
func NewService(client chain.Client, runtime chain.RuntimeAPI, cache ExtensionCache, seeds SeedResolver, engine CommitmentEngine, config Config) (*Service, error) {
	if client == nil || runtime == nil || cache == nil || seeds == nil || engine == nil {
		return nil, errors.New("proof service needs a chain client, runtime api, cache, seed resolver and commitment engine")
	}
	return &Service{
		client:  client,
		runtime: runtime,
		cache:   cache,
		seeds:   seeds,
		engine:  engine,
		config:  config,
	}, nil
}

// QueryProof returns the concatenated opening proofs of cells in block n, in
// request order.
func (s *Service) QueryProof(ctx context.Context, n uint32, cells []kate.Cell) ([]byte, error) {
	fields := logtrace.Fields{
		logtrace.FieldModule:      "proof",
		logtrace.FieldMethod:      "QueryProof",
		logtrace.FieldBlockNumber: n,
		logtrace.FieldCells:       len(cells),
	}
	start := time.Now()

	block, err := s.client.BlockByNumber(ctx, n)
	if err != nil {
		if errors.Is(err, chain.ErrBlockNotFound) {
			return nil, errors.WrapKind(errors.KindNotFound, err, "block #%d", n)
		}
		return nil, errors.WrapKind(errors.KindUpstreamUnavailable, err, "resolve block #%d", n)
	}
	id := block.Identity
	fields[logtrace.FieldBlockHash] = id.Hash.String()

	dims, err := s.runtime.BlockLength(ctx, id.Hash)
	if err != nil {
		return nil, errors.WrapKind(errors.KindUpstreamUnavailable, err, "block length of block %s", id)
	}

	extrinsics := func() ([]kate.ExtrinsicRecord, error) {
		return lo.Map(block.Extrinsics, func(xt chain.Extrinsic, _ int) kate.ExtrinsicRecord {
			return kate.ExtrinsicRecord{AppID: xt.AppID, Data: xt.Encoded}
		}), nil
	}
	seed := func(ctx context.Context) kate.VRFSeed {
		return s.seeds.Resolve(ctx, id)
	}
	ext, err := s.cache.GetOrBuild(ctx, id, dims, extrinsics, seed)
	if err != nil {
		return nil, errors.Wrapf(err, "extension of block %s", id)
	}
	if ext == nil || ext.Matrix == nil {
		return nil, errors.E(errors.KindInternal, "extension of block %s missing after build", id)
	}

	pp, err := s.publicParams(ctx, id)
	if err != nil {
		return nil, err
	}

	proof, err := s.engine.BuildProof(pp, ext.Dims, ext.Matrix, cells)
	if err != nil {
		return nil, errors.WrapKind(errors.KindProofError, err, "proof for block %s", id)
	}

	fields[logtrace.FieldDuration] = time.Since(start).String()
	logtrace.Info(ctx, "proof served", fields)
	return proof, nil
}

// publicParams fetches and decodes the setup of the block on every call.
func (s *Service) publicParams(ctx context.Context, id kate.BlockIdentity) (*commitment.PublicParameters, error) {
	raw, err := s.runtime.PublicParams(ctx, id.Hash)
	if err != nil {
		return nil, errors.WrapKind(errors.KindUpstreamUnavailable, err, "public params of block %s", id)
	}
	pp, err := s.engine.DecodeParams(raw, s.config.UncheckedParams)
	if err != nil {
		return nil, errors.WrapKind(errors.KindDecodeError, err, "decode public params of block %s", id)
	}
	return pp, nil
}

// QueryBlockLength returns the configured dimensions of the best block. It is
// always read live from the chain.
func (s *Service) QueryBlockLength(ctx context.Context) (kate.BlockDimensions, error) {
	best, err := s.client.BestBlock(ctx)
	if err != nil {
		return kate.BlockDimensions{}, errors.WrapKind(errors.KindUpstreamUnavailable, err, "best block")
	}
	dims, err := s.runtime.BlockLength(ctx, best.Hash)
	if err != nil {
		return kate.BlockDimensions{}, errors.WrapKind(errors.KindUpstreamUnavailable, err, "block length of block %s", best)
	}
	return dims, nil
}

// Status reports the best block and cache counters.
func (s *Service) Status(ctx context.Context) (Status, error) {
	best, err := s.client.BestBlock(ctx)
	if err != nil {
		return Status{}, errors.WrapKind(errors.KindUpstreamUnavailable, err, "best block")
	}
	return Status{Best: best, Cache: s.cache.Stats()}, nil
}
