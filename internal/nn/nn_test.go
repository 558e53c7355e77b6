package nn

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/born-ml/depthdet/internal/backend/cpu"
	"github.com/born-ml/depthdet/internal/tensor"
)

type Backend = *cpu.CPUBackend

func fromSlice(t *testing.T, backend Backend, shape tensor.Shape, data ...float32) *tensor.Tensor[float32, Backend] {
	t.Helper()
	x, err := tensor.FromSlice(data, shape, backend)
	require.NoError(t, err)
	return x
}

func TestOutputSize(t *testing.T) {
	tests := []struct {
		size, kernel, stride, padding int
		want                          int
	}{
		{640, 3, 2, 1, 320},
		{20, 5, 1, 2, 20},
		{28, 5, 1, 0, 24},
		{7, 3, 2, 1, 4},
		{80, 1, 1, 0, 80},
	}
	for _, tt := range tests {
		got := OutputSize(tt.size, tt.kernel, tt.stride, tt.padding)
		if got != tt.want {
			t.Errorf("OutputSize(%d, k=%d, s=%d, p=%d) = %d, want %d",
				tt.size, tt.kernel, tt.stride, tt.padding, got, tt.want)
		}
	}
}
