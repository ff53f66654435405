package commitment

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LumeraProtocol/kate/pkg/errors"
)

func TestPublicParametersRoundTrip(t *testing.T) {
	pp := testParams(t, 8)
	raw, err := pp.Bytes()
	require.NoError(t, err)

	decoded, err := DecodePublicParameters(raw)
	require.NoError(t, err)
	assert.Equal(t, 8, decoded.MaxPolynomialSize())

	unchecked, err := DecodePublicParametersUnchecked(raw)
	require.NoError(t, err)
	assert.Equal(t, 8, unchecked.MaxPolynomialSize())
}

func TestDecodePublicParametersRejectsCorruption(t *testing.T) {
	raw, err := testParams(t, 8).Bytes()
	require.NoError(t, err)

	corrupted := append([]byte(nil), raw...)
	for i := 5; i < 21; i++ {
		corrupted[i] ^= 0xaa
	}
	_, err = DecodePublicParameters(corrupted)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedParams))
}

func TestDecodePublicParametersTrailingBytes(t *testing.T) {
	raw, err := testParams(t, 8).Bytes()
	require.NoError(t, err)
	padded := append(append([]byte(nil), raw...), 0x00, 0x01)

	_, err = DecodePublicParameters(padded)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedParams))

	// The legacy path trusts the layout and ignores what follows.
	pp, err := DecodePublicParametersUnchecked(padded)
	require.NoError(t, err)
	assert.Equal(t, 8, pp.MaxPolynomialSize())
}

func TestDecodePublicParametersTruncated(t *testing.T) {
	raw, err := testParams(t, 8).Bytes()
	require.NoError(t, err)

	_, err = DecodePublicParameters(raw[:len(raw)/2])
	assert.Error(t, err)
	_, err = DecodePublicParametersUnchecked(raw[:3])
	assert.Error(t, err)
}

func TestDecodePublicParametersRejectsOversizedPointCount(t *testing.T) {
	raw, err := testParams(t, 8).Bytes()
	require.NoError(t, err)
	inflated := append([]byte(nil), raw...)
	binary.BigEndian.PutUint32(inflated, uint32(len(raw)))

	testCases := []struct {
		name string
		raw  []byte
	}{
		{name: "text", raw: []byte("definitely not an srs")},
		{name: "max count", raw: []byte{0xff, 0xff, 0xff, 0xff, 0x01, 0x02}},
		{name: "inflated count", raw: inflated},
		{name: "empty", raw: nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodePublicParameters(tc.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedParams))

			_, err = DecodePublicParametersUnchecked(tc.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedParams))
		})
	}
}

func TestEngineDecodeParams(t *testing.T) {
	raw, err := testParams(t, 4).Bytes()
	require.NoError(t, err)

	for _, unchecked := range []bool{false, true} {
		pp, err := New().DecodeParams(raw, unchecked)
		require.NoError(t, err)
		assert.Equal(t, 4, pp.MaxPolynomialSize())
	}
}
