// Package vrf resolves the per-block randomness that seeds block padding.
package vrf

import (
	"context"

	"github.com/LumeraProtocol/kate/pkg/chain"
	"github.com/LumeraProtocol/kate/pkg/errors"
	"github.com/LumeraProtocol/kate/pkg/kate"
	"github.com/LumeraProtocol/kate/pkg/logtrace"
	"github.com/LumeraProtocol/kate/pkg/utils"
)

// Strategy is one source of block randomness.
type Strategy interface {
	Name() string
	Seed(ctx context.Context, id kate.BlockIdentity) (kate.VRFSeed, error)
}

// Resolver tries its strategies in order and falls back to the zero seed.
type Resolver struct {
	strategies []Strategy
}

// NewResolver returns a resolver over the given strategies, tried in order.
func NewResolver(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies}
}

// NewChainResolver returns the resolver used against a live chain: the
// runtime VRF api first, then the legacy Babe::Randomness storage value.
func NewChainResolver(runtime chain.RuntimeAPI, storage chain.StorageProvider, hash utils.Hash256) *Resolver {
	return NewResolver(
		&RuntimeStrategy{Runtime: runtime},
		&StorageStrategy{Storage: storage, Key: chain.BabeRandomnessKey, Hash: hash},
	)
}

// Resolve returns the first seed a strategy yields, or the zero seed when none
// does. It never fails; every fallback is logged.
func (r *Resolver) Resolve(ctx context.Context, id kate.BlockIdentity) kate.VRFSeed {
	fields := logtrace.Fields{
		logtrace.FieldModule:      "vrf",
		logtrace.FieldBlockNumber: id.Number,
		logtrace.FieldBlockHash:   id.Hash.String(),
	}
	for _, s := range r.strategies {
		seed, err := s.Seed(ctx, id)
		if err == nil {
			logtrace.Info(ctx, "vrf seed resolved", logtrace.WithFields(fields, logtrace.Fields{
				logtrace.FieldStrategy: s.Name(),
				logtrace.FieldSeed:     seed.String(),
			}))
			return seed
		}
		logtrace.Warn(ctx, "vrf strategy failed, falling back", logtrace.WithFields(fields, logtrace.Fields{
			logtrace.FieldStrategy: s.Name(),
			logtrace.FieldError:    err.Error(),
		}))
	}
	logtrace.Warn(ctx, "no vrf available, using default seed", fields)
	return kate.VRFSeed{}
}

// RuntimeStrategy reads the native randomness beacon through the runtime api.
type RuntimeStrategy struct {
	Runtime chain.RuntimeAPI
}

func (s *RuntimeStrategy) Name() string { return "runtime" }

func (s *RuntimeStrategy) Seed(ctx context.Context, id kate.BlockIdentity) (kate.VRFSeed, error) {
	seed, err := s.Runtime.BabeVRF(ctx, id.Hash)
	if err != nil {
		return kate.VRFSeed{}, errors.Wrapf(err, "runtime babe vrf not found at block %s", id)
	}
	return seed, nil
}

// StorageStrategy hashes the raw value stored under Key, for runtimes that
// keep epoch randomness in storage only.
type StorageStrategy struct {
	Storage chain.StorageProvider
	Key     []byte
	Hash    utils.Hash256
}

func (s *StorageStrategy) Name() string { return "storage" }

func (s *StorageStrategy) Seed(ctx context.Context, id kate.BlockIdentity) (kate.VRFSeed, error) {
	raw, err := s.Storage.Storage(ctx, id.Hash, s.Key)
	if err != nil {
		return kate.VRFSeed{}, errors.Wrapf(err, "read randomness key at block %s", id)
	}
	if raw == nil {
		return kate.VRFSeed{}, errors.Errorf("missing randomness value at block %s", id)
	}
	return kate.VRFSeed(s.Hash(raw)), nil
}
