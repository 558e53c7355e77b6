package cpu

import (
	"math"
	"strings"
	"testing"

	"github.com/born-ml/depthdet/internal/tensor"
)

// rawFloat32 builds a float32 tensor from values laid out in row-major order.
func rawFloat32(t *testing.T, shape tensor.Shape, values ...float32) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	if err != nil {
		t.Fatalf("NewRaw(%v): %v", shape, err)
	}
	if len(values) > 0 {
		if len(values) != shape.NumElements() {
			t.Fatalf("rawFloat32: %d values for shape %v", len(values), shape)
		}
		copy(raw.AsFloat32(), values)
	}
	return raw
}

// filled returns a float32 tensor with every element set to v.
func filled(t *testing.T, shape tensor.Shape, v float32) *tensor.RawTensor {
	t.Helper()
	raw := rawFloat32(t, shape)
	for i := range raw.AsFloat32() {
		raw.AsFloat32()[i] = v
	}
	return raw
}

func expectShape(t *testing.T, got *tensor.RawTensor, want tensor.Shape) {
	t.Helper()
	if !got.Shape().Equal(want) {
		t.Fatalf("Expected shape %v, got %v", want, got.Shape())
	}
}

func expectValues(t *testing.T, got []float32, want []float32, tol float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("Expected %d values, got %d", len(want), len(got))
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > tol {
			t.Errorf("Output[%d]: expected %.6f, got %.6f", i, want[i], got[i])
		}
	}
}

// expectPanic runs f and checks that it panics with a message containing prefix.
func expectPanic(t *testing.T, prefix string, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("Expected panic with %q, got none", prefix)
		}
		msg, ok := r.(string)
		if !ok || !strings.HasPrefix(msg, prefix) {
			t.Fatalf("Expected panic starting with %q, got %v", prefix, r)
		}
	}()
	f()
}
