// Package commitment builds and checks KZG opening proofs for cells of an
// extended matrix. Every extended row is a polynomial over the Cols domain;
// cell (row, col) is that polynomial opened at omega^col.
package commitment

import (
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/kzg"

	"github.com/LumeraProtocol/kate/pkg/errors"
	"github.com/LumeraProtocol/kate/pkg/kate"
)

// ProofSize is the encoded size of one cell proof: the compressed G1 witness
// followed by the cell value.
const ProofSize = bls12381.SizeOfG1AffineCompressed + fr.Bytes

var (
	ErrMalformedParams = errors.New("malformed public parameters")
	ErrParamsTooSmall  = errors.New("public parameters too small for row size")
	ErrCellOutOfRange  = errors.New("cell out of range")
	ErrMatrixMismatch  = errors.New("matrix does not match dimensions")
	ErrInvalidProof    = errors.New("invalid cell proof")
)

// Engine is the default KZG commitment engine.
type Engine struct{}

// New returns the default commitment engine.
func New() *Engine {
	return &Engine{}
}

// DecodeParams decodes public parameters, validating them unless unchecked is set.
func (e *Engine) DecodeParams(raw []byte, unchecked bool) (*PublicParameters, error) {
	if unchecked {
		return DecodePublicParametersUnchecked(raw)
	}
	return DecodePublicParameters(raw)
}

// BuildProof opens every requested cell and concatenates the proofs in request
// order. Cells are neither deduplicated nor sorted; an empty request yields an
// empty proof.
func (e *Engine) BuildProof(pp *PublicParameters, dims kate.BlockDimensions, m *kate.ExtendedMatrix, cells []kate.Cell) ([]byte, error) {
	if err := checkInputs(pp, dims, m); err != nil {
		return nil, err
	}
	for _, cell := range cells {
		if cell.Row >= dims.ExtendedRows() || cell.Col >= dims.Cols {
			return nil, errors.Wrapf(ErrCellOutOfRange, "cell (%d,%d) outside %dx%d", cell.Row, cell.Col, dims.ExtendedRows(), dims.Cols)
		}
	}

	out := make([]byte, 0, len(cells)*ProofSize)
	polys := make(map[uint32][]fr.Element)
	for _, cell := range cells {
		poly, ok := polys[cell.Row]
		if !ok {
			row, _ := m.Row(cell.Row)
			poly = kate.Interpolate(row)
			polys[cell.Row] = poly
		}

		point := kate.EvaluationPoint(uint64(dims.Cols), uint64(cell.Col))
		proof, err := kzg.Open(poly, point, pp.srs.Pk)
		if err != nil {
			return nil, errors.Wrapf(err, "open cell (%d,%d)", cell.Row, cell.Col)
		}
		witness := proof.H.Bytes()
		value := proof.ClaimedValue.Bytes()
		out = append(out, witness[:]...)
		out = append(out, value[:]...)
	}
	return out, nil
}

// RowCommitment commits to one extended row.
func RowCommitment(pp *PublicParameters, m *kate.ExtendedMatrix, row uint32) (kzg.Digest, error) {
	if m == nil {
		return kzg.Digest{}, ErrMatrixMismatch
	}
	if err := checkInputs(pp, m.Dims, m); err != nil {
		return kzg.Digest{}, err
	}
	evals, ok := m.Row(row)
	if !ok {
		return kzg.Digest{}, errors.Wrapf(ErrCellOutOfRange, "row %d outside %d rows", row, m.Dims.ExtendedRows())
	}
	digest, err := kzg.Commit(kate.Interpolate(evals), pp.srs.Pk)
	if err != nil {
		return kzg.Digest{}, errors.Wrapf(err, "commit row %d", row)
	}
	return digest, nil
}

// VerifyCell checks one ProofSize-byte cell proof against the row commitment
// and returns the proven cell value.
func VerifyCell(pp *PublicParameters, commitment kzg.Digest, dims kate.BlockDimensions, cell kate.Cell, proof []byte) (fr.Element, error) {
	if pp == nil || pp.srs == nil {
		return fr.Element{}, ErrMalformedParams
	}
	if len(proof) != ProofSize {
		return fr.Element{}, errors.Wrapf(ErrInvalidProof, "proof is %d bytes, want %d", len(proof), ProofSize)
	}
	if cell.Col >= dims.Cols {
		return fr.Element{}, errors.Wrapf(ErrCellOutOfRange, "col %d outside %d cols", cell.Col, dims.Cols)
	}

	var opening kzg.OpeningProof
	if _, err := opening.H.SetBytes(proof[:bls12381.SizeOfG1AffineCompressed]); err != nil {
		return fr.Element{}, errors.Wrapf(ErrInvalidProof, "witness: %v", err)
	}
	if err := opening.ClaimedValue.SetBytesCanonical(proof[bls12381.SizeOfG1AffineCompressed:]); err != nil {
		return fr.Element{}, errors.Wrapf(ErrInvalidProof, "value: %v", err)
	}

	point := kate.EvaluationPoint(uint64(dims.Cols), uint64(cell.Col))
	if err := kzg.Verify(&commitment, &opening, point, pp.srs.Vk); err != nil {
		return fr.Element{}, errors.Wrapf(ErrInvalidProof, "cell (%d,%d): %v", cell.Row, cell.Col, err)
	}
	return opening.ClaimedValue, nil
}

// SplitProofs cuts a concatenated proof into per-cell proofs.
func SplitProofs(proof []byte) ([][]byte, error) {
	if len(proof)%ProofSize != 0 {
		return nil, errors.Wrapf(ErrInvalidProof, "length %d is not a multiple of %d", len(proof), ProofSize)
	}
	out := make([][]byte, 0, len(proof)/ProofSize)
	for off := 0; off < len(proof); off += ProofSize {
		out = append(out, proof[off:off+ProofSize])
	}
	return out, nil
}

func checkInputs(pp *PublicParameters, dims kate.BlockDimensions, m *kate.ExtendedMatrix) error {
	if pp == nil || pp.srs == nil {
		return ErrMalformedParams
	}
	if m == nil || m.Dims != dims || len(m.Scalars) != int(dims.ExtendedRows())*int(dims.Cols) {
		return errors.Wrapf(ErrMatrixMismatch, "dims %s", dims)
	}
	if !kate.IsPowerOfTwo(dims.Cols) {
		return errors.Wrapf(ErrMatrixMismatch, "cols %d not a power of two", dims.Cols)
	}
	if int(dims.Cols) > pp.MaxPolynomialSize() {
		return errors.Wrapf(ErrParamsTooSmall, "row has %d coefficients, setup supports %d", dims.Cols, pp.MaxPolynomialSize())
	}
	return nil
}
