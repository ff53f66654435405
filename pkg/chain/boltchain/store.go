// Package boltchain serves the chain backend from a bbolt snapshot file: blocks,
// per-block runtime configuration and raw storage exported from a node, or a
// generated dev chain.
package boltchain

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	bolt "go.etcd.io/bbolt"

	"github.com/LumeraProtocol/kate/pkg/chain"
	"github.com/LumeraProtocol/kate/pkg/errors"
	"github.com/LumeraProtocol/kate/pkg/kate"
	"github.com/LumeraProtocol/kate/pkg/logtrace"
)

var (
	bucketBlocks  = []byte("blocks")
	bucketHashes  = []byte("hashes")
	bucketRuntime = []byte("runtime")
	bucketStorage = []byte("storage")
	bucketMeta    = []byte("meta")

	keyBest = []byte("best")
)

var (
	ErrNoBestBlock          = errors.New("snapshot has no best block")
	ErrRuntimeUnavailable   = errors.New("runtime configuration not available")
	ErrVRFUnavailable       = errors.New("runtime exposes no vrf api")
	ErrUnknownBlockHash     = errors.New("unknown block hash")
	ErrCorruptBlockRecord   = errors.New("corrupt block record")
	ErrCorruptRuntimeRecord = errors.New("corrupt runtime record")
)

// RuntimeConfig is the runtime configuration in force at one block.
type RuntimeConfig struct {
	BlockLength  kate.BlockDimensions `cbor:"1,keyasint"`
	PublicParams []byte               `cbor:"2,keyasint"`
	// VRF is nil for runtimes that predate the VRF runtime api.
	VRF *kate.VRFSeed `cbor:"3,keyasint,omitempty"`
}

type blockRecord struct {
	Number     uint32            `cbor:"1,keyasint"`
	Hash       kate.Hash         `cbor:"2,keyasint"`
	ParentHash kate.Hash         `cbor:"3,keyasint"`
	Extrinsics []chain.Extrinsic `cbor:"4,keyasint"`
}

// Store is a chain.Backend over a bbolt file.
type Store struct {
	db  *bolt.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
	em  cbor.EncMode
}

var _ chain.Backend = (*Store)(nil)

// Open opens or creates the snapshot at path.
func Open(ctx context.Context, path string) (*Store, error) {
	s, err := newCodecs()
	if err != nil {
		return nil, err
	}
	if s.db, err = openDB(path); err != nil {
		s.closeCodecs()
		return nil, err
	}
	logtrace.Info(ctx, "chain snapshot opened", logtrace.Fields{logtrace.FieldModule: "boltchain", "path": path})
	return s, nil
}

// newCodecs returns a store with its record codecs set up and no database.
func newCodecs() (*Store, error) {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, errors.Wrap(err, "cbor encoder")
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, errors.Wrap(err, "zstd encoder")
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = enc.Close()
		return nil, errors.Wrap(err, "zstd decoder")
	}
	return &Store{enc: enc, dec: dec, em: em}, nil
}

func (s *Store) closeCodecs() {
	s.dec.Close()
	_ = s.enc.Close()
}

func openDB(path string) (*bolt.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrapf(err, "create snapshot directory for %s", path)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "open chain snapshot %s", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketBlocks, bucketHashes, bucketRuntime, bucketStorage, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return errors.Wrapf(err, "create bucket %s", name)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Close releases the snapshot file.
func (s *Store) Close() error {
	s.closeCodecs()
	return s.db.Close()
}

func numberKey(n uint32) []byte {
	k := make([]byte, 4)
	binary.BigEndian.PutUint32(k, n)
	return k
}

func storageKey(at kate.Hash, key []byte) []byte {
	k := make([]byte, 0, len(at)+len(key))
	k = append(k, at[:]...)
	return append(k, key...)
}

// PutBlock stores a block and indexes it by hash.
func (s *Store) PutBlock(b *chain.Block) error {
	raw, err := s.em.Marshal(blockRecord{
		Number:     b.Identity.Number,
		Hash:       b.Identity.Hash,
		ParentHash: b.ParentHash,
		Extrinsics: b.Extrinsics,
	})
	if err != nil {
		return errors.Wrapf(err, "encode block %s", b.Identity)
	}
	compressed := s.enc.EncodeAll(raw, nil)
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketBlocks).Put(numberKey(b.Identity.Number), compressed); err != nil {
			return err
		}
		return tx.Bucket(bucketHashes).Put(b.Identity.Hash[:], numberKey(b.Identity.Number))
	})
}

// PutRuntime stores the runtime configuration in force at block at.
func (s *Store) PutRuntime(at kate.Hash, cfg RuntimeConfig) error {
	raw, err := s.em.Marshal(cfg)
	if err != nil {
		return errors.Wrapf(err, "encode runtime at %s", at)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRuntime).Put(at[:], raw)
	})
}

// PutStorage stores a raw storage value at block at.
func (s *Store) PutStorage(at kate.Hash, key, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketStorage).Put(storageKey(at, key), value)
	})
}

// SetBest marks block number n as the head.
func (s *Store) SetBest(n uint32) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMeta).Put(keyBest, numberKey(n))
	})
}

// BlockByNumber implements chain.Client. Numbers above the head are not found.
func (s *Store) BlockByNumber(_ context.Context, n uint32) (*chain.Block, error) {
	var rec blockRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		best := tx.Bucket(bucketMeta).Get(keyBest)
		if best == nil || n > binary.BigEndian.Uint32(best) {
			return errors.Wrapf(chain.ErrBlockNotFound, "block #%d", n)
		}
		compressed := tx.Bucket(bucketBlocks).Get(numberKey(n))
		if compressed == nil {
			return errors.Wrapf(chain.ErrBlockNotFound, "block #%d", n)
		}
		return s.decodeBlock(compressed, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &chain.Block{
		Identity:   kate.BlockIdentity{Number: rec.Number, Hash: rec.Hash},
		ParentHash: rec.ParentHash,
		Extrinsics: rec.Extrinsics,
	}, nil
}

// BestBlock implements chain.Client.
func (s *Store) BestBlock(_ context.Context) (kate.BlockIdentity, error) {
	var rec blockRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		best := tx.Bucket(bucketMeta).Get(keyBest)
		if best == nil {
			return ErrNoBestBlock
		}
		compressed := tx.Bucket(bucketBlocks).Get(best)
		if compressed == nil {
			return errors.Wrapf(ErrNoBestBlock, "head #%d missing", binary.BigEndian.Uint32(best))
		}
		return s.decodeBlock(compressed, &rec)
	})
	if err != nil {
		return kate.BlockIdentity{}, err
	}
	return kate.BlockIdentity{Number: rec.Number, Hash: rec.Hash}, nil
}

func (s *Store) decodeBlock(compressed []byte, rec *blockRecord) error {
	raw, err := s.dec.DecodeAll(compressed, nil)
	if err != nil {
		return errors.Wrapf(ErrCorruptBlockRecord, "decompress: %v", err)
	}
	if err := cbor.Unmarshal(raw, rec); err != nil {
		return errors.Wrapf(ErrCorruptBlockRecord, "decode: %v", err)
	}
	return nil
}

func (s *Store) runtime(at kate.Hash) (RuntimeConfig, error) {
	var cfg RuntimeConfig
	err := s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketHashes).Get(at[:]) == nil {
			return errors.Wrapf(ErrUnknownBlockHash, "%s", at)
		}
		stored := tx.Bucket(bucketRuntime).Get(at[:])
		if stored == nil {
			return errors.Wrapf(ErrRuntimeUnavailable, "at %s", at)
		}
		// bbolt values are only valid inside the transaction
		raw := append([]byte(nil), stored...)
		if err := cbor.Unmarshal(raw, &cfg); err != nil {
			return errors.Wrapf(ErrCorruptRuntimeRecord, "at %s: %v", at, err)
		}
		return nil
	})
	return cfg, err
}

// BlockLength implements chain.RuntimeAPI.
func (s *Store) BlockLength(_ context.Context, at kate.Hash) (kate.BlockDimensions, error) {
	cfg, err := s.runtime(at)
	if err != nil {
		return kate.BlockDimensions{}, err
	}
	return cfg.BlockLength, nil
}

// PublicParams implements chain.RuntimeAPI.
func (s *Store) PublicParams(_ context.Context, at kate.Hash) ([]byte, error) {
	cfg, err := s.runtime(at)
	if err != nil {
		return nil, err
	}
	return cfg.PublicParams, nil
}

// BabeVRF implements chain.RuntimeAPI.
func (s *Store) BabeVRF(_ context.Context, at kate.Hash) (kate.VRFSeed, error) {
	cfg, err := s.runtime(at)
	if err != nil {
		return kate.VRFSeed{}, err
	}
	if cfg.VRF == nil {
		return kate.VRFSeed{}, errors.Wrapf(ErrVRFUnavailable, "at %s", at)
	}
	return *cfg.VRF, nil
}

// Storage implements chain.StorageProvider.
func (s *Store) Storage(_ context.Context, at kate.Hash, key []byte) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketHashes).Get(at[:]) == nil {
			return errors.Wrapf(ErrUnknownBlockHash, "%s", at)
		}
		if v := tx.Bucket(bucketStorage).Get(storageKey(at, key)); v != nil {
			out = append([]byte{}, v...)
		}
		return nil
	})
	return out, err
}
