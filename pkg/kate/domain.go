package kate

import (
	"math/bits"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/fft"
)

var domains sync.Map // uint64 -> *fft.Domain

// Domain returns the shared evaluation domain of size n. n must be a power of two.
func Domain(n uint64) *fft.Domain {
	if d, ok := domains.Load(n); ok {
		return d.(*fft.Domain)
	}
	d, _ := domains.LoadOrStore(n, fft.NewDomain(n))
	return d.(*fft.Domain)
}

// IsPowerOfTwo reports whether n is a non-zero power of two.
func IsPowerOfTwo(n uint32) bool {
	return bits.OnesCount32(n) == 1
}

// Interpolate returns the coefficients of the polynomial taking values evals
// on the domain of size len(evals). evals is left untouched.
func Interpolate(evals []fr.Element) []fr.Element {
	coeffs := make([]fr.Element, len(evals))
	copy(coeffs, evals)
	if len(coeffs) < 2 {
		return coeffs
	}
	Domain(uint64(len(coeffs))).FFTInverse(coeffs, fft.DIF)
	fft.BitReverse(coeffs)
	return coeffs
}

// Evaluate evaluates the polynomial with coefficients coeffs on the domain of
// size n, n >= len(coeffs).
func Evaluate(coeffs []fr.Element, n int) []fr.Element {
	evals := make([]fr.Element, n)
	copy(evals, coeffs)
	if n < 2 {
		return evals
	}
	Domain(uint64(n)).FFT(evals, fft.DIF)
	fft.BitReverse(evals)
	return evals
}

// EvaluationPoint returns omega^i for the domain of size n.
func EvaluationPoint(n uint64, i uint64) fr.Element {
	var z fr.Element
	if n < 2 {
		z.SetOne()
		return z
	}
	g := Domain(n).Generator
	z.SetOne()
	for ; i > 0; i >>= 1 {
		if i&1 == 1 {
			z.Mul(&z, &g)
		}
		g.Mul(&g, &g)
	}
	return z
}
