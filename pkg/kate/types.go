// Package kate holds the data model shared by the extension builder, the
// extension cache and the proof engines.
package kate

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/LumeraProtocol/kate/pkg/errors"
)

// ExtensionFactor is how many times the row count grows when a data matrix
// is erasure-extended.
const ExtensionFactor = 2

// Hash is an immutable 32-byte block hash.
type Hash [32]byte

// String returns the 0x-prefixed hex form of the hash.
func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// MarshalText encodes the hash as 0x-prefixed hex.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText decodes a hex hash with or without the 0x prefix.
func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := HashFromHex(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// HashFromHex parses a 32-byte hash with or without the 0x prefix.
func HashFromHex(s string) (Hash, error) {
	var h Hash
	b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return h, errors.Wrap(err, "invalid hash hex")
	}
	if len(b) != len(h) {
		return h, errors.Errorf("invalid hash length %d", len(b))
	}
	copy(h[:], b)
	return h, nil
}

// BlockIdentity pins a block by number and hash. The hash is what caches key on.
type BlockIdentity struct {
	Number uint32 `json:"number"`
	Hash   Hash   `json:"hash"`
}

func (id BlockIdentity) String() string {
	return fmt.Sprintf("#%d (%s)", id.Number, id.Hash)
}

// AppID identifies the application an extrinsic was submitted for.
type AppID uint32

// ExtrinsicRecord is one extrinsic of a block body, in inclusion order.
type ExtrinsicRecord struct {
	AppID AppID
	Data  []byte
}

// BlockDimensions is the chain-configured grid a block's data is laid out in.
// ChunkSize is the number of bytes of one cell.
type BlockDimensions struct {
	Rows      uint32 `json:"rows" yaml:"rows" cbor:"1,keyasint"`
	Cols      uint32 `json:"cols" yaml:"cols" cbor:"2,keyasint"`
	ChunkSize uint32 `json:"chunkSize" yaml:"chunk_size" cbor:"3,keyasint"`
}

// Cells returns the number of cells of the unextended grid.
func (d BlockDimensions) Cells() int {
	return int(d.Rows) * int(d.Cols)
}

// ExtendedRows returns the row count after erasure extension.
func (d BlockDimensions) ExtendedRows() uint32 {
	return d.Rows * ExtensionFactor
}

func (d BlockDimensions) String() string {
	return fmt.Sprintf("%dx%d/%d", d.Rows, d.Cols, d.ChunkSize)
}

// Cell is a (row, col) coordinate in the extended matrix.
type Cell struct {
	Row uint32 `json:"row"`
	Col uint32 `json:"col"`
}

// VRFSeed seeds the deterministic padding of a block. The zero value is the
// default seed used when no randomness is available.
type VRFSeed [32]byte

// IsZero reports whether the seed is the all-zero default.
func (s VRFSeed) IsZero() bool {
	return s == VRFSeed{}
}

func (s VRFSeed) String() string {
	return "0x" + hex.EncodeToString(s[:])
}

// ExtendedMatrix is the erasure-extended data of a block, row-major with
// Dims.ExtendedRows() rows of Dims.Cols scalars each.
type ExtendedMatrix struct {
	Dims    BlockDimensions
	Scalars []fr.Element
}

// At returns the scalar at (row, col) and false when the cell is outside the matrix.
func (m *ExtendedMatrix) At(row, col uint32) (fr.Element, bool) {
	if m == nil || row >= m.Dims.ExtendedRows() || col >= m.Dims.Cols {
		return fr.Element{}, false
	}
	idx := int(row)*int(m.Dims.Cols) + int(col)
	if idx >= len(m.Scalars) {
		return fr.Element{}, false
	}
	return m.Scalars[idx], true
}

// Row returns the scalars of one extended row.
func (m *ExtendedMatrix) Row(row uint32) ([]fr.Element, bool) {
	if m == nil || row >= m.Dims.ExtendedRows() {
		return nil, false
	}
	start := int(row) * int(m.Dims.Cols)
	end := start + int(m.Dims.Cols)
	if end > len(m.Scalars) {
		return nil, false
	}
	return m.Scalars[start:end], true
}
