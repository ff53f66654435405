package chain

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTwox128KnownPrefixes(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"System", "26aa394eea5630e07c48ae0c9558cef7"},
		{"Babe", "1cb6f36e027abb2091cfb5110ab5087f"},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.want, hex.EncodeToString(Twox128([]byte(tc.input))))
		})
	}
}

func TestBabeRandomnessKey(t *testing.T) {
	assert.Len(t, BabeRandomnessKey, 32)
	assert.Equal(t, "1cb6f36e027abb2091cfb5110ab5087f", hex.EncodeToString(BabeRandomnessKey[:16]))
	assert.Equal(t, Twox128([]byte("Randomness")), BabeRandomnessKey[16:])
}
