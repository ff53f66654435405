// Package extension builds erasure-extended block matrices and keeps the most
// recently used ones in memory so each block is extended at most once.
package extension

import (
	"context"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/LumeraProtocol/kate/pkg/errors"
	"github.com/LumeraProtocol/kate/pkg/kate"
	"github.com/LumeraProtocol/kate/pkg/logtrace"
)

// ErasureEngine lays out and extends block data.
type ErasureEngine interface {
	FlattenAndPad(dims kate.BlockDimensions, extrinsics []kate.ExtrinsicRecord, seed kate.VRFSeed) ([]fr.Element, kate.BlockDimensions, error)
	Extend(dims kate.BlockDimensions, scalars []fr.Element) (*kate.ExtendedMatrix, error)
}

// Extension is a block's extended matrix together with the dimensions it was
// laid out with.
type Extension struct {
	Matrix *kate.ExtendedMatrix
	Dims   kate.BlockDimensions
}

// BlockBuilder turns a block's extrinsics into its Extension.
type BlockBuilder interface {
	Build(ctx context.Context, id kate.BlockIdentity, dims kate.BlockDimensions, extrinsics []kate.ExtrinsicRecord, seed kate.VRFSeed) (*Extension, error)
}

// Builder is the BlockBuilder over an ErasureEngine. It performs no math
// itself; it attaches block context to engine failures.
type Builder struct {
	engine ErasureEngine
}

var _ BlockBuilder = (*Builder)(nil)

// NewBuilder returns a Builder over engine.
func NewBuilder(engine ErasureEngine) *Builder {
	return &Builder{engine: engine}
}

// Build flattens, pads and extends the block. extrinsics must be the complete
// body of the block in inclusion order and dims the grid configured for it.
func (b *Builder) Build(ctx context.Context, id kate.BlockIdentity, dims kate.BlockDimensions, extrinsics []kate.ExtrinsicRecord, seed kate.VRFSeed) (*Extension, error) {
	fields := logtrace.Fields{
		logtrace.FieldModule:      "extension",
		logtrace.FieldBlockNumber: id.Number,
		logtrace.FieldBlockHash:   id.Hash.String(),
		logtrace.FieldRows:        dims.Rows,
		logtrace.FieldCols:        dims.Cols,
		logtrace.FieldChunkSize:   dims.ChunkSize,
		logtrace.FieldExtrinsics:  len(extrinsics),
	}
	start := time.Now()

	scalars, laidOut, err := b.engine.FlattenAndPad(dims, extrinsics, seed)
	if err != nil {
		return nil, errors.WrapKind(errors.KindBuildError, err, "flatten and pad block %s failed", id)
	}
	matrix, err := b.engine.Extend(laidOut, scalars)
	if err != nil {
		return nil, errors.WrapKind(errors.KindBuildError, err, "matrix of block %s cannot be extended", id)
	}
	if matrix == nil {
		return nil, errors.E(errors.KindBuildError, "extension of block %s returned no matrix", id)
	}

	fields[logtrace.FieldDuration] = time.Since(start).String()
	logtrace.Debug(ctx, "block extended", fields)
	return &Extension{Matrix: matrix, Dims: laidOut}, nil
}
