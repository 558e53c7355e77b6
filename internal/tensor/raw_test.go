package tensor

import (
	"testing"
)

func TestNewRaw(t *testing.T) {
	raw, err := NewRaw(Shape{2, 3}, Float32, CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}
	if raw.ByteSize() != 24 {
		t.Errorf("ByteSize() = %d, want 24", raw.ByteSize())
	}
	for i, v := range raw.AsFloat32() {
		if v != 0 {
			t.Fatalf("element %d = %v, want zero", i, v)
		}
	}

	if _, err := NewRaw(Shape{2, 0}, Float32, CPU); err == nil {
		t.Error("expected error for invalid shape")
	}
}

func TestRawDTypeMismatchPanics(t *testing.T) {
	raw, _ := NewRaw(Shape{4}, Float32, CPU)

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic reading float32 data as float64")
		}
	}()
	_ = raw.AsFloat64()
}

func TestRawClone(t *testing.T) {
	raw, _ := NewRaw(Shape{3}, Float64, CPU)
	copy(raw.AsFloat64(), []float64{1, 2, 3})

	clone := raw.Clone()
	clone.AsFloat64()[0] = 42

	if raw.AsFloat64()[0] != 1 {
		t.Error("Clone shares data with the original")
	}
	if !clone.Shape().Equal(raw.Shape()) {
		t.Errorf("clone shape = %v, want %v", clone.Shape(), raw.Shape())
	}
}

func TestRawWithShape(t *testing.T) {
	raw, _ := NewRaw(Shape{2, 6}, Int32, CPU)
	copy(raw.AsInt32(), []int32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11})

	view, err := raw.WithShape(Shape{3, 4})
	if err != nil {
		t.Fatalf("WithShape failed: %v", err)
	}
	if view.Strides()[0] != 4 {
		t.Errorf("strides = %v, want [4 1]", view.Strides())
	}

	view.AsInt32()[5] = 100
	if raw.AsInt32()[5] != 100 {
		t.Error("WithShape should share the buffer")
	}

	if _, err := raw.WithShape(Shape{5}); err == nil {
		t.Error("expected error for element count mismatch")
	}
}

func TestTyped(t *testing.T) {
	raw, _ := NewRaw(Shape{2}, Int64, CPU)
	Typed[int64](raw)[1] = 7
	if raw.AsInt64()[1] != 7 {
		t.Error("Typed did not return a view of the data")
	}
}
