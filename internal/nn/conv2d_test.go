package nn

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/depthdet/internal/backend/cpu"
	"github.com/born-ml/depthdet/internal/tensor"
)

// TestConv2D_Creation tests Conv2D layer creation.
func TestConv2D_Creation(t *testing.T) {
	backend := cpu.New()

	conv := NewConv2D(3, 16, 3, 3, 2, 1, true, backend)

	assert.Equal(t, 3, conv.InChannels())
	assert.Equal(t, 16, conv.OutChannels())
	assert.Equal(t, [2]int{3, 3}, conv.KernelSize())
	assert.Equal(t, 2, conv.Stride())
	assert.Equal(t, 1, conv.Padding())

	assert.True(t, conv.Weight().Tensor().Shape().Equal(tensor.Shape{16, 3, 3, 3}))
	assert.True(t, conv.Bias().Tensor().Shape().Equal(tensor.Shape{16}))
	assert.Len(t, conv.Parameters(), 2)
}

func TestConv2D_NoBias(t *testing.T) {
	backend := cpu.New()

	conv := NewConv2D(16, 32, 3, 3, 2, 1, false, backend)

	assert.Nil(t, conv.Bias())
	require.Len(t, conv.Parameters(), 1)
	assert.Equal(t, "weight", conv.Parameters()[0].Name())
	assert.Equal(t, 32*16*3*3, CountParameters(conv.Parameters()))
}

// TestConv2D_KaimingBound checks that initial weights stay inside
// ±1/sqrt(fan_in).
func TestConv2D_KaimingBound(t *testing.T) {
	backend := cpu.New()

	conv := NewConv2D(64, 64, 3, 3, 1, 1, true, backend)
	bound := float32(1 / math.Sqrt(64*3*3))

	for _, p := range conv.Parameters() {
		for i, v := range p.Tensor().Data() {
			if v < -bound || v > bound {
				t.Fatalf("%s[%d] = %v outside ±%v", p.Name(), i, v, bound)
			}
		}
	}
}

func TestConv2D_ResetParametersSeeded(t *testing.T) {
	backend := cpu.New()

	a := NewConv2D(4, 8, 3, 3, 1, 1, true, backend)
	b := NewConv2D(4, 8, 3, 3, 1, 1, true, backend)

	a.ResetParameters(rand.NewPCG(7, 7))
	b.ResetParameters(rand.NewPCG(7, 7))
	assert.Equal(t, a.Weight().Tensor().Data(), b.Weight().Tensor().Data())
	assert.Equal(t, a.Bias().Tensor().Data(), b.Bias().Tensor().Data())

	b.ResetParameters(rand.NewPCG(8, 8))
	assert.NotEqual(t, a.Weight().Tensor().Data(), b.Weight().Tensor().Data())
}

// TestConv2D_ForwardShape tests forward pass output shapes.
func TestConv2D_ForwardShape(t *testing.T) {
	backend := cpu.New()

	tests := []struct {
		name            string
		conv            *Conv2D[Backend]
		input, expected tensor.Shape
	}{
		{"downsample", NewConv2D(3, 16, 3, 3, 2, 1, false, backend), tensor.Shape{2, 3, 64, 64}, tensor.Shape{2, 16, 32, 32}},
		{"same", NewConv2D(16, 8, 3, 3, 1, 1, false, backend), tensor.Shape{1, 16, 10, 10}, tensor.Shape{1, 8, 10, 10}},
		{"pointwise", NewConv2D(128, 64, 1, 1, 1, 0, false, backend), tensor.Shape{1, 128, 5, 5}, tensor.Shape{1, 64, 5, 5}},
		{"valid", NewConv2D(1, 6, 5, 5, 1, 0, true, backend), tensor.Shape{2, 1, 28, 28}, tensor.Shape{2, 6, 24, 24}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := tt.conv.Forward(tensor.Zeros[float32](tt.input, backend))
			assert.True(t, output.Shape().Equal(tt.expected), "got %v, want %v", output.Shape(), tt.expected)

			hw := tt.conv.ComputeOutputSize(tt.input[2], tt.input[3])
			assert.Equal(t, [2]int{tt.expected[2], tt.expected[3]}, hw)
		})
	}
}

// TestConv2D_BiasAdded checks that the bias broadcasts over every position.
func TestConv2D_BiasAdded(t *testing.T) {
	backend := cpu.New()

	conv := NewConv2D(1, 2, 1, 1, 1, 0, true, backend)
	copy(conv.Weight().Tensor().Data(), []float32{1, 2})
	copy(conv.Bias().Tensor().Data(), []float32{10, 20})

	x := fromSlice(t, backend, tensor.Shape{1, 1, 1, 2}, 1, 2)
	y := conv.Forward(x)

	assert.Equal(t, []float32{11, 12, 22, 24}, y.Data())
}

func TestConv2D_WrongChannelsPanics(t *testing.T) {
	backend := cpu.New()
	conv := NewConv2D(3, 16, 3, 3, 1, 1, false, backend)

	assert.PanicsWithValue(t, "conv2d: input channels 4 != expected 3", func() {
		conv.Forward(tensor.Zeros[float32](tensor.Shape{1, 4, 8, 8}, backend))
	})
}

func TestConv2D_InvalidArgsPanic(t *testing.T) {
	backend := cpu.New()

	assert.Panics(t, func() { NewConv2D(0, 16, 3, 3, 1, 1, false, backend) })
	assert.Panics(t, func() { NewConv2D(3, 16, 0, 3, 1, 1, false, backend) })
	assert.Panics(t, func() { NewConv2D(3, 16, 3, 3, 0, 1, false, backend) })
	assert.Panics(t, func() { NewConv2D(3, 16, 3, 3, 1, -1, false, backend) })
}

func TestConv2D_String(t *testing.T) {
	backend := cpu.New()
	conv := NewConv2D(3, 16, 3, 3, 2, 1, false, backend)

	assert.Equal(t, "Conv2D(in_channels=3, out_channels=16, kernel_size=(3, 3), stride=2, padding=1, bias=false)", conv.String())
}
