package distance

import (
	"errors"
	"math"
	"testing"
)

func floatsAreEqual(a, b float64) bool {
	const tolerance = 1e-4
	return math.Abs(a-b) < tolerance
}

func TestCosineFloat32(t *testing.T) {
	t.Run("Identical", func(t *testing.T) {
		v := []float32{0.3, -0.5, 0.81}
		sim, err := CosineFloat32(v, v)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !floatsAreEqual(sim, 1.0) {
			t.Errorf("got %f, want 1.0", sim)
		}
	})

	t.Run("Orthogonal", func(t *testing.T) {
		sim, err := CosineFloat32([]float32{1, 0}, []float32{0, 1})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !floatsAreEqual(sim, 0.0) {
			t.Errorf("got %f, want 0.0", sim)
		}
	})

	t.Run("Opposite", func(t *testing.T) {
		sim, _ := CosineFloat32([]float32{2, 1}, []float32{-2, -1})
		if !floatsAreEqual(sim, -1.0) {
			t.Errorf("got %f, want -1.0", sim)
		}
	})

	t.Run("ZeroVector", func(t *testing.T) {
		sim, err := CosineFloat32([]float32{0, 0, 0}, []float32{1, 2, 3})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sim != 0 {
			t.Errorf("zero-magnitude vector must degrade to 0, got %f", sim)
		}
	})

	t.Run("DimensionMismatch", func(t *testing.T) {
		_, err := CosineFloat32([]float32{1, 2}, []float32{1, 2, 3})
		if !errors.Is(err, ErrDimensionMismatch) {
			t.Errorf("got %v, want ErrDimensionMismatch", err)
		}
	})
}

func TestImplementationsAgree(t *testing.T) {
	a := []float32{0.12, -0.7, 0.33, 0.91, -0.05}
	b := []float32{0.6, 0.1, -0.4, 0.2, 0.8}

	goSim, err := cosineFloat32Go(a, b)
	if err != nil {
		t.Fatalf("pure go: %v", err)
	}
	gnSim, err := cosineFloat32Gonum(a, b)
	if err != nil {
		t.Fatalf("gonum: %v", err)
	}
	if !floatsAreEqual(goSim, gnSim) {
		t.Errorf("implementations disagree: go=%f gonum=%f", goSim, gnSim)
	}
}

func TestCosineFloat16(t *testing.T) {
	a := []float32{0.5, -0.25, 0.125}
	b := []float32{0.5, -0.25, 0.125}

	sim, err := CosineFloat16(EncodeFloat16(a), EncodeFloat16(b))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !floatsAreEqual(sim, 1.0) {
		t.Errorf("got %f, want 1.0", sim)
	}

	if _, err := CosineFloat16([]uint16{1}, []uint16{1, 2}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("got %v, want ErrDimensionMismatch", err)
	}
}

func TestFloat16RoundTrip(t *testing.T) {
	// Powers of two survive half-precision quantization exactly.
	v := []float32{1, 0.5, -0.25, 0, 2}
	got := DecodeFloat16(EncodeFloat16(v))
	for i := range v {
		if got[i] != v[i] {
			t.Errorf("index %d: got %f, want %f", i, got[i], v[i])
		}
	}
}
