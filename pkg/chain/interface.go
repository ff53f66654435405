// Package chain declares what the node needs from the host chain: blocks by
// number, the best block, runtime configuration and raw storage.
package chain

//go:generate mockgen -destination=mock_chain.go -package=chain -source=interface.go

import (
	"context"

	"github.com/LumeraProtocol/kate/pkg/errors"
	"github.com/LumeraProtocol/kate/pkg/kate"
)

// ErrBlockNotFound is returned for block numbers the chain does not know.
var ErrBlockNotFound = errors.New("block not found")

// Extrinsic is an opaque extrinsic as included in a block body.
type Extrinsic struct {
	AppID   kate.AppID `cbor:"1,keyasint"`
	Encoded []byte     `cbor:"2,keyasint"`
}

// Block is a block header summary and its body.
type Block struct {
	Identity   kate.BlockIdentity
	ParentHash kate.Hash
	Extrinsics []Extrinsic
}

// Client resolves blocks.
type Client interface {
	// BlockByNumber returns the block at number n on the canonical chain or
	// ErrBlockNotFound.
	BlockByNumber(ctx context.Context, n uint32) (*Block, error)
	// BestBlock returns the identity of the current head.
	BestBlock(ctx context.Context) (kate.BlockIdentity, error)
}

// RuntimeAPI exposes the runtime configuration of a block.
type RuntimeAPI interface {
	BlockLength(ctx context.Context, at kate.Hash) (kate.BlockDimensions, error)
	PublicParams(ctx context.Context, at kate.Hash) ([]byte, error)
	// BabeVRF returns the native randomness of the block.
	BabeVRF(ctx context.Context, at kate.Hash) (kate.VRFSeed, error)
}

// StorageProvider reads raw runtime storage.
type StorageProvider interface {
	// Storage returns the value under key at the given block, or nil, nil
	// when the key is absent.
	Storage(ctx context.Context, at kate.Hash, key []byte) ([]byte, error)
}

// Backend is everything the node reads from the chain.
type Backend interface {
	Client
	RuntimeAPI
	StorageProvider
}
