package chain

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// BabeRandomnessKey is the raw storage key of Babe::Randomness, the epoch
// randomness legacy runtimes expose without a runtime API.
var BabeRandomnessKey = StoragePrefix("Babe", "Randomness")

// StoragePrefix returns twox128(pallet) ++ twox128(item), the key of a plain
// storage value.
func StoragePrefix(pallet, item string) []byte {
	key := make([]byte, 0, 32)
	key = append(key, Twox128([]byte(pallet))...)
	return append(key, Twox128([]byte(item))...)
}

// Twox128 concatenates the little-endian xxHash64 digests of data with seeds 0 and 1.
func Twox128(data []byte) []byte {
	out := make([]byte, 16)
	for seed := uint64(0); seed < 2; seed++ {
		d := xxhash.NewWithSeed(seed)
		_, _ = d.Write(data)
		binary.LittleEndian.PutUint64(out[seed*8:], d.Sum64())
	}
	return out
}
