// Package distance provides cosine similarity over embedding vectors.
// It supports two storage precisions, float32 and float16, and dispatches
// to a Gonum (BLAS/SIMD) implementation when the CPU makes it worthwhile,
// falling back to pure Go otherwise.
package distance

import (
	"errors"
	"log"
	"math"

	"github.com/klauspost/cpuid/v2"
	"github.com/x448/float16"
	"gonum.org/v1/gonum/blas/gonum"
)

// PrecisionType defines the data type used for vector storage.
type PrecisionType string

const (
	// Float32 stores embeddings as single-precision floats.
	Float32 PrecisionType = "float32"
	// Float16 stores embeddings as half-precision bit patterns,
	// halving resident memory at a small accuracy cost.
	Float16 PrecisionType = "float16"
)

// ErrDimensionMismatch is returned when two vectors of different lengths
// are compared. Callers must treat it as fatal for the operation.
var ErrDimensionMismatch = errors.New("vectors must have the same length")

// SimilarityFuncF32 computes cosine similarity between two float32 vectors.
type SimilarityFuncF32 func(a, b []float32) (float64, error)

// cosineF32 is the active float32 implementation, chosen at init.
var cosineF32 SimilarityFuncF32 = cosineFloat32Go

func init() {
	// Gonum's BLAS kernels only pay off when wide SIMD is available;
	// on narrow CPUs the call overhead loses to the plain loop.
	if cpuid.CPU.Has(cpuid.AVX2) {
		cosineF32 = cosineFloat32Gonum
		log.Printf("rosetta compute engine: cosine (float32) via Gonum SIMD")
	}
}

// CosineFloat32 returns the cosine similarity between a and b in [-1, 1].
// Zero-magnitude vectors yield similarity 0 rather than a domain error.
func CosineFloat32(a, b []float32) (float64, error) {
	return cosineF32(a, b)
}

// cosineFloat32Go is the pure Go reference implementation.
func cosineFloat32Go(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}
	var dot, na, nb float32
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	return finishCosine(float64(dot), float64(na), float64(nb)), nil
}

var gonumEngine = gonum.Implementation{}

// cosineFloat32Gonum computes the three dot products through Gonum BLAS.
func cosineFloat32Gonum(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}
	n := len(a)
	dot := float64(gonumEngine.Sdot(n, a, 1, b, 1))
	na := float64(gonumEngine.Sdot(n, a, 1, a, 1))
	nb := float64(gonumEngine.Sdot(n, b, 1, b, 1))
	return finishCosine(dot, na, nb), nil
}

// CosineFloat16 returns the cosine similarity between two half-precision
// vectors. Values are widened to float32 before accumulation.
func CosineFloat16(a, b []uint16) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}
	var dot, na, nb float32
	for i := range a {
		x := float16.Frombits(a[i]).Float32()
		y := float16.Frombits(b[i]).Float32()
		dot += x * y
		na += x * x
		nb += y * y
	}
	return finishCosine(float64(dot), float64(na), float64(nb)), nil
}

// finishCosine normalizes the dot product, degrading to 0 for zero vectors.
func finishCosine(dot, na, nb float64) float64 {
	if na <= 0 || nb <= 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// EncodeFloat16 quantizes a float32 vector to half-precision bit patterns.
func EncodeFloat16(v []float32) []uint16 {
	out := make([]uint16, len(v))
	for i, x := range v {
		out[i] = float16.Fromfloat32(x).Bits()
	}
	return out
}

// DecodeFloat16 widens a half-precision vector back to float32.
func DecodeFloat16(v []uint16) []float32 {
	out := make([]float32, len(v))
	for i, bits := range v {
		out[i] = float16.Frombits(bits).Float32()
	}
	return out
}
