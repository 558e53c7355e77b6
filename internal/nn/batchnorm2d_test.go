package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/depthdet/internal/backend/cpu"
	"github.com/born-ml/depthdet/internal/tensor"
)

func TestBatchNorm2D_Creation(t *testing.T) {
	backend := cpu.New()

	bn := NewBatchNorm2D(4, 1e-3, 0.03, true, true, backend)

	assert.Equal(t, 4, bn.NumFeatures())
	assert.False(t, bn.Training(), "layers start in evaluation mode")

	params := bn.Parameters()
	require.Len(t, params, 2)
	assert.Equal(t, []float32{1, 1, 1, 1}, params[0].Tensor().Data())
	assert.Equal(t, []float32{0, 0, 0, 0}, params[1].Tensor().Data())

	buffers := bn.Buffers()
	require.Len(t, buffers, 2)
	assert.Equal(t, "running_mean", buffers[0].Name())
	assert.Equal(t, "running_var", buffers[1].Name())
	assert.False(t, buffers[0].Trainable())
	assert.Equal(t, []float32{1, 1, 1, 1}, bn.RunningVar().Tensor().Data())
}

// TestBatchNorm2D_EvalUsesRunningStats checks that a freshly initialized layer
// in evaluation mode is x / sqrt(1 + eps).
func TestBatchNorm2D_EvalUsesRunningStats(t *testing.T) {
	backend := cpu.New()
	bn := NewBatchNorm2D(1, 1e-3, 0.03, true, true, backend)

	x := fromSlice(t, backend, tensor.Shape{1, 1, 1, 3}, -2, 0, 2)
	y := bn.Forward(x)

	assert.InDeltaSlice(t, []float32{-1.999, 0, 1.999}, y.Data(), 1e-3)
	assert.Equal(t, 0, bn.NumBatchesTracked())
}

func TestBatchNorm2D_TrainUsesBatchStats(t *testing.T) {
	backend := cpu.New()
	bn := NewBatchNorm2D(2, 1e-5, 0.1, true, true, backend)
	bn.Train(true)

	// ch0: 1, 3 (mean 2, var 1); ch1: 10, 10 (mean 10, var 0)
	x := fromSlice(t, backend, tensor.Shape{1, 2, 1, 2}, 1, 3, 10, 10)
	y := bn.Forward(x)

	assert.InDeltaSlice(t, []float32{-1, 1, 0, 0}, y.Data(), 1e-4)
}

// TestBatchNorm2D_RunningStatsUpdate checks the momentum update with the
// unbiased batch variance.
func TestBatchNorm2D_RunningStatsUpdate(t *testing.T) {
	backend := cpu.New()
	bn := NewBatchNorm2D(1, 1e-3, 0.1, true, true, backend)
	bn.Train(true)

	// Values 1..4: mean 2.5, biased var 1.25, unbiased var 5/3.
	x := fromSlice(t, backend, tensor.Shape{2, 1, 1, 2}, 1, 2, 3, 4)
	bn.Forward(x)

	assert.InDelta(t, 0.9*0+0.1*2.5, bn.RunningMean().Tensor().Data()[0], 1e-6)
	assert.InDelta(t, 0.9*1+0.1*(5.0/3.0), bn.RunningVar().Tensor().Data()[0], 1e-6)
	assert.Equal(t, 1, bn.NumBatchesTracked())

	bn.Train(false)
	before := bn.RunningMean().Tensor().Clone().Data()
	bn.Forward(x)
	assert.Equal(t, before, bn.RunningMean().Tensor().Data(), "eval mode must not touch running stats")
}

func TestBatchNorm2D_NoTracking(t *testing.T) {
	backend := cpu.New()
	bn := NewBatchNorm2D(1, 1e-5, 0.1, false, false, backend)

	assert.Empty(t, bn.Parameters())
	assert.Empty(t, bn.Buffers())

	// Without running stats, batch statistics are used in both modes.
	x := fromSlice(t, backend, tensor.Shape{1, 1, 1, 2}, 5, 7)
	assert.InDeltaSlice(t, []float32{-1, 1}, bn.Forward(x).Data(), 1e-4)
}

func TestBatchNorm2D_ResetParameters(t *testing.T) {
	backend := cpu.New()
	bn := NewBatchNorm2D(1, 1e-3, 0.5, true, true, backend)
	bn.Train(true)
	bn.Forward(fromSlice(t, backend, tensor.Shape{1, 1, 1, 2}, 4, 6))
	require.NotEqual(t, float32(0), bn.RunningMean().Tensor().Data()[0])

	bn.ResetParameters(nil)
	assert.Equal(t, []float32{0}, bn.RunningMean().Tensor().Data())
	assert.Equal(t, []float32{1}, bn.RunningVar().Tensor().Data())
	assert.Equal(t, 0, bn.NumBatchesTracked())
}

func TestBatchNorm2D_Panics(t *testing.T) {
	backend := cpu.New()

	assert.Panics(t, func() { NewBatchNorm2D(0, 1e-3, 0.03, true, true, backend) })
	assert.Panics(t, func() { NewBatchNorm2D(4, 0, 0.03, true, true, backend) })
	assert.Panics(t, func() { NewBatchNorm2D(4, 1e-3, 1.5, true, true, backend) })

	bn := NewBatchNorm2D(4, 1e-3, 0.03, true, true, backend)
	assert.PanicsWithValue(t, "batchnorm2d: input channels 3 != expected 4", func() {
		bn.Forward(tensor.Zeros[float32](tensor.Shape{1, 3, 2, 2}, backend))
	})
}

func TestBatchNorm2D_SingleValuePerChannel(t *testing.T) {
	backend := cpu.New()
	bn := NewBatchNorm2D(2, 1e-3, 0.03, true, true, backend)
	single := tensor.Ones[float32](tensor.Shape{1, 2, 1, 1}, backend)

	bn.Train(true)
	assert.PanicsWithValue(t,
		"batchnorm2d: expected more than 1 value per channel when training, got input shape [1 2 1 1]",
		func() { bn.Forward(single) })
	assert.Equal(t, 0, bn.NumBatchesTracked())

	// Eval mode normalizes with the running statistics, so one value is fine.
	bn.Train(false)
	out := bn.Forward(single)
	assert.Equal(t, tensor.Shape{1, 2, 1, 1}, out.Shape())

	bn.Train(true)
	assert.NotPanics(t, func() { bn.Forward(tensor.Ones[float32](tensor.Shape{2, 2, 1, 1}, backend)) })
}
