package commitment

import (
	"bytes"
	"encoding/binary"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/kzg"

	"github.com/LumeraProtocol/kate/pkg/errors"
)

// PublicParameters is the KZG setup a block's proofs are built against.
type PublicParameters struct {
	srs *kzg.SRS
}

// NewPublicParameters generates a setup able to commit to polynomials of up to
// size coefficients from a known secret. Only dev chains and tests use it.
func NewPublicParameters(size uint64, secret *big.Int) (*PublicParameters, error) {
	srs, err := kzg.NewSRS(size, secret)
	if err != nil {
		return nil, errors.Wrap(err, "generate srs")
	}
	return &PublicParameters{srs: srs}, nil
}

// DecodePublicParameters decodes and validates the raw setup stored on chain:
// every point must be on the curve and in the prime-order subgroup, and no
// bytes may trail the encoding.
func DecodePublicParameters(raw []byte) (*PublicParameters, error) {
	if err := checkDeclaredPoints(raw); err != nil {
		return nil, err
	}
	srs := new(kzg.SRS)
	n, err := srs.ReadFrom(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedParams, "decode %d bytes: %v", len(raw), err)
	}
	if int(n) != len(raw) {
		return nil, errors.Wrapf(ErrMalformedParams, "%d trailing bytes", len(raw)-int(n))
	}
	if len(srs.Pk.G1) < 2 {
		return nil, errors.Wrapf(ErrMalformedParams, "setup holds %d G1 points", len(srs.Pk.G1))
	}
	return &PublicParameters{srs: srs}, nil
}

// DecodePublicParametersUnchecked decodes the raw setup without subgroup or
// layout checks. The bytes are trusted to come from a well-formed chain
// configuration; malformed input yields undefined proofs instead of an error.
func DecodePublicParametersUnchecked(raw []byte) (*PublicParameters, error) {
	if err := checkDeclaredPoints(raw); err != nil {
		return nil, err
	}
	srs := new(kzg.SRS)
	if _, err := srs.UnsafeReadFrom(bytes.NewReader(raw)); err != nil {
		return nil, errors.Wrapf(ErrMalformedParams, "decode %d bytes: %v", len(raw), err)
	}
	return &PublicParameters{srs: srs}, nil
}

// pointsCountSize is the big-endian length prefix of the G1 points.
const pointsCountSize = 4

// checkDeclaredPoints rejects a setup whose G1 length prefix claims more
// points than raw can hold even compressed. The decoder allocates from that
// prefix before reading a single point.
func checkDeclaredPoints(raw []byte) error {
	if len(raw) < pointsCountSize {
		return errors.Wrapf(ErrMalformedParams, "%d bytes hold no setup", len(raw))
	}
	declared := uint64(binary.BigEndian.Uint32(raw[:pointsCountSize]))
	if pointsCountSize+declared*bls12381.SizeOfG1AffineCompressed > uint64(len(raw)) {
		return errors.Wrapf(ErrMalformedParams, "setup declares %d G1 points but holds %d bytes", declared, len(raw))
	}
	return nil
}

// Bytes encodes the setup in the form the decoders accept.
func (pp *PublicParameters) Bytes() ([]byte, error) {
	if pp == nil || pp.srs == nil {
		return nil, ErrMalformedParams
	}
	var buf bytes.Buffer
	if _, err := pp.srs.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(err, "encode srs")
	}
	return buf.Bytes(), nil
}

// MaxPolynomialSize is the largest number of coefficients the setup can commit to.
func (pp *PublicParameters) MaxPolynomialSize() int {
	if pp == nil || pp.srs == nil {
		return 0
	}
	return len(pp.srs.Pk.G1)
}
