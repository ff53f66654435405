// Package devnet generates a deterministic development chain for running the
// node without a live network.
package devnet

import (
	"context"
	"encoding/binary"
	"math/big"
	"math/rand/v2"

	"github.com/LumeraProtocol/kate/pkg/chain"
	"github.com/LumeraProtocol/kate/pkg/chain/boltchain"
	"github.com/LumeraProtocol/kate/pkg/errors"
	"github.com/LumeraProtocol/kate/pkg/kate"
	"github.com/LumeraProtocol/kate/pkg/kate/commitment"
	"github.com/LumeraProtocol/kate/pkg/kate/erasure"
	"github.com/LumeraProtocol/kate/pkg/logtrace"
	"github.com/LumeraProtocol/kate/pkg/utils"
)

// Writer is where the generated chain is written.
type Writer interface {
	PutBlock(b *chain.Block) error
	PutRuntime(at kate.Hash, cfg boltchain.RuntimeConfig) error
	PutStorage(at kate.Hash, key, value []byte) error
	SetBest(n uint32) error
}

// Options shape the generated chain.
type Options struct {
	Blocks uint32
	// Dims are cycled through block by block.
	Dims []kate.BlockDimensions
	// MaxExtrinsics bounds the extrinsics per block.
	MaxExtrinsics int
	Apps          uint32
	// NativeVRF exposes a VRF through the runtime api.
	NativeVRF bool
	// StorageRandomness writes Babe::Randomness for every block.
	StorageRandomness bool
	Seed              uint64
}

// DefaultOptions is a small chain of 256x256 blocks.
func DefaultOptions() Options {
	return Options{
		Blocks:            16,
		Dims:              []kate.BlockDimensions{{Rows: 256, Cols: 256, ChunkSize: 32}},
		MaxExtrinsics:     8,
		Apps:              3,
		NativeVRF:         true,
		StorageRandomness: true,
		Seed:              1,
	}
}

// Generate writes opts.Blocks blocks, their runtime configuration and
// randomness to w and marks the last one best. It returns the head.
func Generate(ctx context.Context, w Writer, opts Options) (kate.BlockIdentity, error) {
	if opts.Blocks == 0 {
		return kate.BlockIdentity{}, errors.New("devnet needs at least one block")
	}
	if len(opts.Dims) == 0 {
		return kate.BlockIdentity{}, errors.New("devnet needs block dimensions")
	}
	maxCols := uint32(0)
	for _, d := range opts.Dims {
		if err := erasure.ValidateDimensions(d); err != nil {
			return kate.BlockIdentity{}, err
		}
		maxCols = max(maxCols, d.Cols)
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	secret := new(big.Int).SetUint64(rng.Uint64() | 1)
	pp, err := commitment.NewPublicParameters(uint64(maxCols), secret)
	if err != nil {
		return kate.BlockIdentity{}, errors.Wrap(err, "dev public params")
	}
	ppRaw, err := pp.Bytes()
	if err != nil {
		return kate.BlockIdentity{}, errors.Wrap(err, "encode dev public params")
	}

	var parent kate.Hash
	var head kate.BlockIdentity
	for n := uint32(0); n < opts.Blocks; n++ {
		dims := opts.Dims[int(n)%len(opts.Dims)]
		b := &chain.Block{ParentHash: parent, Extrinsics: randomExtrinsics(rng, dims, opts)}
		b.Identity = kate.BlockIdentity{Number: n, Hash: blockHash(n, parent, b.Extrinsics)}

		if err := w.PutBlock(b); err != nil {
			return kate.BlockIdentity{}, errors.Wrapf(err, "put block #%d", n)
		}
		rt := boltchain.RuntimeConfig{BlockLength: dims, PublicParams: ppRaw}
		if opts.NativeVRF {
			seed := kate.VRFSeed(utils.Blake2b256(append(b.Identity.Hash[:], "vrf"...)))
			rt.VRF = &seed
		}
		if err := w.PutRuntime(b.Identity.Hash, rt); err != nil {
			return kate.BlockIdentity{}, errors.Wrapf(err, "put runtime of block #%d", n)
		}
		if opts.StorageRandomness {
			randomness := make([]byte, 64)
			fill(rng, randomness)
			if err := w.PutStorage(b.Identity.Hash, chain.BabeRandomnessKey, randomness); err != nil {
				return kate.BlockIdentity{}, errors.Wrapf(err, "put randomness of block #%d", n)
			}
		}
		parent, head = b.Identity.Hash, b.Identity
	}

	if err := w.SetBest(head.Number); err != nil {
		return kate.BlockIdentity{}, err
	}
	logtrace.Info(ctx, "devnet generated", logtrace.Fields{
		logtrace.FieldModule:      "devnet",
		logtrace.FieldBlockNumber: head.Number,
		logtrace.FieldBlockHash:   head.Hash.String(),
	})
	return head, nil
}

// randomExtrinsics fills a block with extrinsics that fit its grid.
func randomExtrinsics(rng *rand.Rand, dims kate.BlockDimensions, opts Options) []chain.Extrinsic {
	count := 0
	if opts.MaxExtrinsics > 0 {
		count = rng.IntN(opts.MaxExtrinsics + 1)
	}
	free := dims.Cells()
	maxLen := int(dims.ChunkSize-1) * 4
	var xts []chain.Extrinsic
	for i := 0; i < count; i++ {
		n := 1 + rng.IntN(maxLen)
		cells := erasure.CellsFor(n, dims.ChunkSize)
		if cells > free {
			break
		}
		free -= cells
		data := make([]byte, n)
		fill(rng, data)
		app := kate.AppID(0)
		if opts.Apps > 0 {
			app = kate.AppID(rng.Uint32N(opts.Apps))
		}
		xts = append(xts, chain.Extrinsic{AppID: app, Encoded: data})
	}
	return xts
}

func fill(rng *rand.Rand, b []byte) {
	for i := range b {
		b[i] = byte(rng.Uint32())
	}
}

func blockHash(n uint32, parent kate.Hash, xts []chain.Extrinsic) kate.Hash {
	buf := binary.BigEndian.AppendUint32(nil, n)
	buf = append(buf, parent[:]...)
	for _, xt := range xts {
		buf = binary.BigEndian.AppendUint32(buf, uint32(xt.AppID))
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(xt.Encoded)))
		buf = append(buf, xt.Encoded...)
	}
	return kate.Hash(utils.Blake2b256(buf))
}
