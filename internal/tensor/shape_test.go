package tensor

import (
	"testing"
)

func TestShapeNumElements(t *testing.T) {
	tests := []struct {
		shape Shape
		want  int
	}{
		{Shape{}, 1},
		{Shape{5}, 5},
		{Shape{1, 3, 640, 640}, 1228800},
		{Shape{2, 64, 1, 1}, 128},
	}

	for _, tt := range tests {
		if got := tt.shape.NumElements(); got != tt.want {
			t.Errorf("%v.NumElements() = %d, want %d", tt.shape, got, tt.want)
		}
	}
}

func TestShapeValidate(t *testing.T) {
	if err := (Shape{1, 3, 8, 8}).Validate(); err != nil {
		t.Errorf("valid shape rejected: %v", err)
	}
	if err := (Shape{1, 0, 8}).Validate(); err == nil {
		t.Error("expected error for zero dimension")
	}
	if err := (Shape{-1, 3}).Validate(); err == nil {
		t.Error("expected error for negative dimension")
	}
}

func TestShapeComputeStrides(t *testing.T) {
	strides := Shape{2, 3, 4, 5}.ComputeStrides()
	want := []int{60, 20, 5, 1}
	for i := range want {
		if strides[i] != want[i] {
			t.Fatalf("strides = %v, want %v", strides, want)
		}
	}
}

func TestShapeNormalizeDim(t *testing.T) {
	s := Shape{1, 64, 8, 8}

	tests := []struct {
		dim     int
		want    int
		wantErr bool
	}{
		{1, 1, false},
		{-1, 3, false},
		{-4, 0, false},
		{4, 0, true},
		{-5, 0, true},
	}

	for _, tt := range tests {
		got, err := s.NormalizeDim(tt.dim)
		if (err != nil) != tt.wantErr {
			t.Errorf("NormalizeDim(%d) error = %v, wantErr %v", tt.dim, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("NormalizeDim(%d) = %d, want %d", tt.dim, got, tt.want)
		}
	}
}

func TestShapeOuterInner(t *testing.T) {
	s := Shape{2, 64, 8, 4}
	if got := s.Outer(1); got != 2 {
		t.Errorf("Outer(1) = %d, want 2", got)
	}
	if got := s.Inner(1); got != 32 {
		t.Errorf("Inner(1) = %d, want 32", got)
	}
	if got := s.Outer(0); got != 1 {
		t.Errorf("Outer(0) = %d, want 1", got)
	}
	if got := s.Inner(3); got != 1 {
		t.Errorf("Inner(3) = %d, want 1", got)
	}
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Shape
		want      Shape
		broadcast bool
		wantErr   bool
	}{
		{"equal", Shape{2, 3}, Shape{2, 3}, Shape{2, 3}, false, false},
		{"channel bias", Shape{2, 64, 8, 8}, Shape{1, 64, 1, 1}, Shape{2, 64, 8, 8}, true, false},
		{"rank promotion", Shape{3, 5}, Shape{5}, Shape{3, 5}, true, false},
		{"incompatible", Shape{3, 4}, Shape{3, 5}, nil, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, broadcast, err := BroadcastShapes(tt.a, tt.b)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !got.Equal(tt.want) {
				t.Errorf("shape = %v, want %v", got, tt.want)
			}
			if broadcast != tt.broadcast {
				t.Errorf("broadcast = %v, want %v", broadcast, tt.broadcast)
			}
		})
	}
}

func TestDataTypeSize(t *testing.T) {
	tests := []struct {
		dtype DataType
		size  int
		name  string
	}{
		{Float32, 4, "float32"},
		{Float64, 8, "float64"},
		{Int32, 4, "int32"},
		{Int64, 8, "int64"},
	}

	for _, tt := range tests {
		if got := tt.dtype.Size(); got != tt.size {
			t.Errorf("%s.Size() = %d, want %d", tt.name, got, tt.size)
		}
		if got := tt.dtype.String(); got != tt.name {
			t.Errorf("String() = %q, want %q", got, tt.name)
		}
	}

	if DataTypeOf[float32]() != Float32 || DataTypeOf[int64]() != Int64 {
		t.Error("DataTypeOf returned the wrong type")
	}
}
