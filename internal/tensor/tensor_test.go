package tensor_test

import (
	"testing"

	"github.com/born-ml/depthdet/internal/backend/cpu"
	"github.com/born-ml/depthdet/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSlice(t *testing.T) {
	backend := cpu.New()

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
	require.NoError(t, err)

	assert.Equal(t, tensor.Shape{2, 3}, x.Shape())
	assert.Equal(t, tensor.Float32, x.DType())
	assert.Equal(t, float32(6), x.At(1, 2))
	assert.Equal(t, float32(2), x.At(0, 1))

	_, err = tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{2, 2}, backend)
	assert.Error(t, err)
}

func TestSetAndAt(t *testing.T) {
	backend := cpu.New()
	x := tensor.Zeros[float32](tensor.Shape{1, 2, 2, 2}, backend)

	x.Set(3.5, 0, 1, 0, 1)
	assert.Equal(t, float32(3.5), x.At(0, 1, 0, 1))
	assert.Equal(t, float32(3.5), x.Data()[5])

	assert.Panics(t, func() { x.At(0, 2, 0, 0) })
	assert.Panics(t, func() { x.At(0, 0) })
}

func TestCreation(t *testing.T) {
	backend := cpu.New()

	ones := tensor.Ones[float64](tensor.Shape{3}, backend)
	assert.Equal(t, []float64{1, 1, 1}, ones.Data())

	full := tensor.Full[int32](tensor.Shape{2}, 7, backend)
	assert.Equal(t, []int32{7, 7}, full.Data())

	u := tensor.Rand[float32](tensor.Shape{1000}, backend)
	for _, v := range u.Data() {
		require.GreaterOrEqual(t, v, float32(0))
		require.Less(t, v, float32(1))
	}

	n := tensor.Randn[float64](tensor.Shape{4096}, backend)
	var mean float64
	for _, v := range n.Data() {
		mean += v
	}
	mean /= 4096
	assert.InDelta(t, 0, mean, 0.1)

	assert.Panics(t, func() { tensor.Randn[int32](tensor.Shape{2}, backend) })
}

func TestTensorOps(t *testing.T) {
	backend := cpu.New()

	x, _ := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{1, 2, 1, 2}, backend)
	scale, _ := tensor.FromSlice([]float32{10, 100}, tensor.Shape{1, 2, 1, 1}, backend)

	assert.Equal(t, []float32{10, 20, 300, 400}, x.Mul(scale).Data())
	assert.Equal(t, []float32{11, 12, 103, 104}, x.Add(scale).Data())
	assert.Equal(t, []float32{-9, -8, -97, -96}, x.Sub(scale).Data())

	r := x.Reshape(4)
	assert.Equal(t, tensor.Shape{4}, r.Shape())
	assert.Equal(t, []float32{1, 2, 3, 4}, r.Data())
}

func TestCatSplit(t *testing.T) {
	backend := cpu.New()

	a := tensor.Full[float32](tensor.Shape{1, 2, 2, 2}, 1, backend)
	b := tensor.Full[float32](tensor.Shape{1, 3, 2, 2}, 2, backend)

	c := tensor.Cat([]*tensor.Tensor[float32, *cpu.CPUBackend]{a, b}, 1)
	require.Equal(t, tensor.Shape{1, 5, 2, 2}, c.Shape())
	assert.Equal(t, float32(1), c.At(0, 1, 1, 1))
	assert.Equal(t, float32(2), c.At(0, 2, 0, 0))

	parts := c.Split([]int{2, 3}, 1)
	require.Len(t, parts, 2)
	assert.Equal(t, a.Data(), parts[0].Data())
	assert.Equal(t, b.Data(), parts[1].Data())

	halves := tensor.Full[float32](tensor.Shape{1, 4, 1, 1}, 0, backend).Chunk(2, 1)
	assert.Len(t, halves, 2)
	assert.Equal(t, tensor.Shape{1, 2, 1, 1}, halves[1].Shape())

	single := tensor.Cat([]*tensor.Tensor[float32, *cpu.CPUBackend]{a}, 1)
	single.Data()[0] = 9
	assert.Equal(t, float32(1), a.Data()[0], "single-tensor Cat must copy")
}
