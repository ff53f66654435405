package commitment

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LumeraProtocol/kate/pkg/errors"
	"github.com/LumeraProtocol/kate/pkg/kate"
	"github.com/LumeraProtocol/kate/pkg/kate/erasure"
)

var dims4x4 = kate.BlockDimensions{Rows: 4, Cols: 4, ChunkSize: 32}

func testParams(t *testing.T, size uint64) *PublicParameters {
	t.Helper()
	pp, err := NewPublicParameters(size, big.NewInt(42))
	require.NoError(t, err)
	return pp
}

func testMatrix(t *testing.T) *kate.ExtendedMatrix {
	t.Helper()
	engine := erasure.New()
	xts := []kate.ExtrinsicRecord{
		{AppID: 0, Data: bytes.Repeat([]byte{1}, 10)},
		{AppID: 1, Data: bytes.Repeat([]byte{2}, 5)},
		{AppID: 1, Data: bytes.Repeat([]byte{3}, 20)},
	}
	scalars, dims, err := engine.FlattenAndPad(dims4x4, xts, kate.VRFSeed{})
	require.NoError(t, err)
	m, err := engine.Extend(dims, scalars)
	require.NoError(t, err)
	return m
}

func TestBuildProofVerifies(t *testing.T) {
	pp := testParams(t, 8)
	m := testMatrix(t)
	cells := []kate.Cell{{Row: 0, Col: 0}, {Row: 1, Col: 1}, {Row: 7, Col: 3}}

	proof, err := New().BuildProof(pp, dims4x4, m, cells)
	require.NoError(t, err)
	require.Len(t, proof, len(cells)*ProofSize)

	parts, err := SplitProofs(proof)
	require.NoError(t, err)
	for i, cell := range cells {
		commitment, err := RowCommitment(pp, m, cell.Row)
		require.NoError(t, err)

		value, err := VerifyCell(pp, commitment, dims4x4, cell, parts[i])
		require.NoError(t, err, "cell %v", cell)

		want, ok := m.At(cell.Row, cell.Col)
		require.True(t, ok)
		assert.True(t, value.Equal(&want), "cell %v", cell)
	}
}

func TestBuildProofRejectsWrongCommitment(t *testing.T) {
	pp := testParams(t, 8)
	m := testMatrix(t)

	proof, err := New().BuildProof(pp, dims4x4, m, []kate.Cell{{Row: 2, Col: 2}})
	require.NoError(t, err)

	other, err := RowCommitment(pp, m, 3)
	require.NoError(t, err)
	_, err = VerifyCell(pp, other, dims4x4, kate.Cell{Row: 2, Col: 2}, proof)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidProof))
}

func TestBuildProofEmptyCells(t *testing.T) {
	proof, err := New().BuildProof(testParams(t, 8), dims4x4, testMatrix(t), nil)
	require.NoError(t, err)
	assert.NotNil(t, proof)
	assert.Empty(t, proof)
}

func TestBuildProofDuplicateCells(t *testing.T) {
	cells := []kate.Cell{{Row: 1, Col: 2}, {Row: 1, Col: 2}}

	proof, err := New().BuildProof(testParams(t, 8), dims4x4, testMatrix(t), cells)
	require.NoError(t, err)
	require.Len(t, proof, 2*ProofSize)
	assert.Equal(t, proof[:ProofSize], proof[ProofSize:])
}

func TestBuildProofCellOutOfRange(t *testing.T) {
	cases := []kate.Cell{{Row: 8, Col: 0}, {Row: 0, Col: 4}}
	for _, cell := range cases {
		_, err := New().BuildProof(testParams(t, 8), dims4x4, testMatrix(t), []kate.Cell{{Row: 0, Col: 0}, cell})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrCellOutOfRange), "cell %v", cell)
	}
}

func TestBuildProofParamsTooSmall(t *testing.T) {
	_, err := New().BuildProof(testParams(t, 2), dims4x4, testMatrix(t), []kate.Cell{{Row: 0, Col: 0}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParamsTooSmall))
}

func TestBuildProofMatrixMismatch(t *testing.T) {
	m := testMatrix(t)
	other := kate.BlockDimensions{Rows: 2, Cols: 4, ChunkSize: 32}

	_, err := New().BuildProof(testParams(t, 8), other, m, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMatrixMismatch))

	_, err = New().BuildProof(nil, dims4x4, m, nil)
	assert.True(t, errors.Is(err, ErrMalformedParams))
}

func TestSplitProofs(t *testing.T) {
	parts, err := SplitProofs(make([]byte, 2*ProofSize))
	require.NoError(t, err)
	assert.Len(t, parts, 2)

	_, err = SplitProofs(make([]byte, ProofSize+1))
	assert.Error(t, err)
}
