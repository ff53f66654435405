// Package erasure lays a block's extrinsics out in a grid of field elements,
// pads the unused cells with seeded randomness and extends the grid with a
// Reed-Solomon code over the BLS12-381 scalar field.
package erasure

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"golang.org/x/crypto/chacha20"

	"github.com/LumeraProtocol/kate/pkg/errors"
	"github.com/LumeraProtocol/kate/pkg/kate"
)

var (
	ErrInvalidDimensions = errors.New("invalid block dimensions")
	ErrCapacityExceeded  = errors.New("block capacity exceeded")
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

const (
	// MinChunkSize leaves room for at least one data byte per cell.
	MinChunkSize = 2
	// MaxChunkSize is the width of one encoded field element.
	MaxChunkSize = fr.Bytes

	// extrinsicTerminator marks the end of an extrinsic's bytes before the
	// zero fill of its last cell.
	extrinsicTerminator byte = 0x80
)

// Engine is the default erasure-coding engine.
type Engine struct{}

// New returns the default erasure-coding engine.
func New() *Engine {
	return &Engine{}
}

// ValidateDimensions checks that dims can be laid out and extended.
func ValidateDimensions(dims kate.BlockDimensions) error {
	if !kate.IsPowerOfTwo(dims.Rows) || !kate.IsPowerOfTwo(dims.Cols) || dims.Cols < 2 {
		return errors.Wrapf(ErrInvalidDimensions, "rows and cols must be powers of two with cols >= 2, got %s", dims)
	}
	if dims.ChunkSize < MinChunkSize || dims.ChunkSize > MaxChunkSize {
		return errors.Wrapf(ErrInvalidDimensions, "chunk size %d outside [%d, %d]", dims.ChunkSize, MinChunkSize, MaxChunkSize)
	}
	return nil
}

// CellsFor returns the number of cells an extrinsic of n bytes occupies.
func CellsFor(n int, chunkSize uint32) int {
	payload := int(chunkSize) - 1
	return (n + 1 + payload - 1) / payload
}

// FlattenAndPad lays the extrinsics out in inclusion order, one field element
// per ChunkSize-1 bytes, and fills the remaining cells with padding drawn from
// a ChaCha20 stream keyed by seed. The returned dimensions are the ones the
// data was laid out with.
func (e *Engine) FlattenAndPad(dims kate.BlockDimensions, extrinsics []kate.ExtrinsicRecord, seed kate.VRFSeed) ([]fr.Element, kate.BlockDimensions, error) {
	if err := ValidateDimensions(dims); err != nil {
		return nil, dims, err
	}

	payload := int(dims.ChunkSize) - 1
	capacity := dims.Cells()

	needed := 0
	for _, xt := range extrinsics {
		needed += CellsFor(len(xt.Data), dims.ChunkSize)
	}
	if needed > capacity {
		return nil, dims, errors.Wrapf(ErrCapacityExceeded, "%d extrinsics need %d cells, grid %s has %d", len(extrinsics), needed, dims, capacity)
	}

	scalars := make([]fr.Element, capacity)
	cell := 0
	buf := make([]byte, 0, payload)
	for _, xt := range extrinsics {
		data := append(append(make([]byte, 0, len(xt.Data)+1), xt.Data...), extrinsicTerminator)
		for off := 0; off < len(data); off += payload {
			end := off + payload
			if end > len(data) {
				end = len(data)
			}
			buf = append(buf[:0], data[off:end]...)
			for len(buf) < payload {
				buf = append(buf, 0)
			}
			scalars[cell].SetBytes(buf)
			cell++
		}
	}

	if cell < capacity {
		if err := pad(scalars[cell:], payload, seed); err != nil {
			return nil, dims, err
		}
	}
	return scalars, dims, nil
}

func pad(cells []fr.Element, payload int, seed kate.VRFSeed) error {
	var nonce [chacha20.NonceSize]byte
	stream, err := chacha20.NewUnauthenticatedCipher(seed[:], nonce[:])
	if err != nil {
		return errors.Wrap(err, "padding stream")
	}
	random := make([]byte, len(cells)*payload)
	stream.XORKeyStream(random, random)
	for i := range cells {
		cells[i].SetBytes(random[i*payload : (i+1)*payload])
	}
	return nil
}

// Extend erasure-extends the grid column by column: each column is
// interpolated over the Rows domain and evaluated over the 2*Rows domain, so
// even rows of the result are the original rows.
func (e *Engine) Extend(dims kate.BlockDimensions, scalars []fr.Element) (*kate.ExtendedMatrix, error) {
	if err := ValidateDimensions(dims); err != nil {
		return nil, errors.Wrap(ErrDimensionMismatch, err.Error())
	}
	if len(scalars) != dims.Cells() {
		return nil, errors.Wrapf(ErrDimensionMismatch, "grid %s expects %d scalars, got %d", dims, dims.Cells(), len(scalars))
	}

	rows, cols := int(dims.Rows), int(dims.Cols)
	extRows := int(dims.ExtendedRows())
	out := make([]fr.Element, extRows*cols)

	column := make([]fr.Element, rows)
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			column[r] = scalars[r*cols+c]
		}
		extended := kate.Evaluate(kate.Interpolate(column), extRows)
		for r := 0; r < extRows; r++ {
			out[r*cols+c] = extended[r]
		}
	}

	return &kate.ExtendedMatrix{Dims: dims, Scalars: out}, nil
}
