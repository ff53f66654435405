package utils

import (
	"strings"

	"golang.org/x/crypto/blake2b"
	"lukechampine.com/blake3"

	"github.com/LumeraProtocol/kate/pkg/errors"
)

// Hash256 is a 256-bit collision-resistant hash over arbitrary bytes.
type Hash256 func(msg []byte) [32]byte

const (
	HasherBlake2b = "blake2b"
	HasherBlake3  = "blake3"
)

// Blake2b256 returns the unkeyed BLAKE2b-256 digest of msg, the hash the
// chain runtime uses for storage values.
func Blake2b256(msg []byte) [32]byte {
	return blake2b.Sum256(msg)
}

// Blake3Sum256 returns the 32-byte BLAKE3 digest of msg.
func Blake3Sum256(msg []byte) [32]byte {
	return blake3.Sum256(msg)
}

// HasherByName maps a config name to a hash function.
func HasherByName(name string) (Hash256, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", HasherBlake2b:
		return Blake2b256, nil
	case HasherBlake3:
		return Blake3Sum256, nil
	default:
		return nil, errors.Errorf("unknown hasher %q (want %s or %s)", name, HasherBlake2b, HasherBlake3)
	}
}
