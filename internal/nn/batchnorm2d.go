package nn

import (
	"fmt"
	"math/rand/v2"

	"github.com/born-ml/depthdet/internal/tensor"
)

// BatchNorm2D normalizes every channel of an NCHW feature map.
//
//	y = (x - mean) / sqrt(var + eps) * weight + bias
//
// In training mode mean and var are the statistics of the current batch and
// the running statistics are updated with
//
//	running = (1 - momentum) * running + momentum * batch
//
// where the variance fed into the update is the unbiased batch variance. In
// evaluation mode the running statistics are used. Layers start in
// evaluation mode.
//
// Forward in training mode mutates the running statistics and must not be
// called concurrently on the same layer.
//
// Example:
//
//	bn := nn.NewBatchNorm2D(64, 1e-3, 0.03, true, true, backend)
//	y := bn.Forward(x) // same shape as x
type BatchNorm2D[B tensor.Backend] struct {
	numFeatures       int
	eps               float32
	momentum          float32
	affine            bool
	trackRunningStats bool
	training          bool

	weight      *Parameter[B] // [num_features] or nil
	bias        *Parameter[B] // [num_features] or nil
	runningMean *Parameter[B] // [num_features] buffer or nil
	runningVar  *Parameter[B] // [num_features] buffer or nil

	numBatchesTracked int

	backend B
}

// NewBatchNorm2D creates a batch normalization layer for numFeatures channels.
//
// Parameters:
//   - numFeatures: Number of channels C of the expected input
//   - eps: Value added to the variance for numerical stability
//   - momentum: Weight of the current batch in the running statistics update
//   - affine: Whether to learn a per-channel weight and bias
//   - trackRunningStats: Whether to keep running mean and variance buffers
//   - backend: Backend for computation
//
// Initialization: weight = 1, bias = 0, running_mean = 0, running_var = 1.
func NewBatchNorm2D[B tensor.Backend](
	numFeatures int,
	eps, momentum float32,
	affine, trackRunningStats bool,
	backend B,
) *BatchNorm2D[B] {
	if numFeatures <= 0 {
		panic(fmt.Sprintf("batchnorm2d: invalid num_features %d", numFeatures))
	}
	if eps <= 0 {
		panic(fmt.Sprintf("batchnorm2d: eps must be positive, got %g", eps))
	}
	if momentum < 0 || momentum > 1 {
		panic(fmt.Sprintf("batchnorm2d: momentum must be in [0, 1], got %g", momentum))
	}

	bn := &BatchNorm2D[B]{
		numFeatures:       numFeatures,
		eps:               eps,
		momentum:          momentum,
		affine:            affine,
		trackRunningStats: trackRunningStats,
		backend:           backend,
	}
	bn.ResetParameters(nil)
	return bn
}

// ResetParameters restores the initial weight, bias and running statistics.
// The initialization is deterministic, src is unused.
func (bn *BatchNorm2D[B]) ResetParameters(_ rand.Source) {
	shape := tensor.Shape{bn.numFeatures}
	if bn.affine {
		bn.weight = NewParameter("weight", Ones(shape, bn.backend))
		bn.bias = NewParameter("bias", Zeros(shape, bn.backend))
	}
	if bn.trackRunningStats {
		bn.runningMean = NewBuffer("running_mean", Zeros(shape, bn.backend))
		bn.runningVar = NewBuffer("running_var", Ones(shape, bn.backend))
	}
	bn.numBatchesTracked = 0
}

// Train switches between training (batch statistics) and evaluation
// (running statistics) mode.
func (bn *BatchNorm2D[B]) Train(training bool) {
	bn.training = training
}

// Training reports whether the layer is in training mode.
func (bn *BatchNorm2D[B]) Training() bool {
	return bn.training
}

// Forward normalizes input [batch, num_features, height, width].
func (bn *BatchNorm2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("batchnorm2d: expected 4D input [N,C,H,W], got %dD", len(inputShape)))
	}
	if inputShape[1] != bn.numFeatures {
		panic(fmt.Sprintf("batchnorm2d: input channels %d != expected %d", inputShape[1], bn.numFeatures))
	}

	count := inputShape[0] * inputShape[2] * inputShape[3]
	if bn.training && count <= 1 {
		panic(fmt.Sprintf("batchnorm2d: expected more than 1 value per channel when training, got input shape %v", inputShape))
	}

	var mean, variance *tensor.RawTensor
	if bn.training || !bn.trackRunningStats {
		mean, variance = bn.backend.ChannelMoments(input.Raw())
		if bn.training && bn.trackRunningStats {
			bn.updateRunningStats(mean.AsFloat32(), variance.AsFloat32(), count)
		}
	} else {
		mean = bn.runningMean.Tensor().Raw()
		variance = bn.runningVar.Tensor().Raw()
	}

	var weight, bias *tensor.RawTensor
	if bn.affine {
		weight = bn.weight.Tensor().Raw()
		bias = bn.bias.Tensor().Raw()
	}

	out := bn.backend.BatchNorm2D(input.Raw(), mean, variance, weight, bias, bn.eps)
	return tensor.New[float32, B](out, bn.backend)
}

func (bn *BatchNorm2D[B]) updateRunningStats(mean, variance []float32, count int) {
	correction := float32(count) / float32(count-1)

	m := bn.momentum
	runMean := bn.runningMean.Tensor().Data()
	runVar := bn.runningVar.Tensor().Data()
	for c := range runMean {
		runMean[c] = (1-m)*runMean[c] + m*mean[c]
		runVar[c] = (1-m)*runVar[c] + m*variance[c]*correction
	}
	bn.numBatchesTracked++
}

// Parameters returns the affine weight and bias, if any.
func (bn *BatchNorm2D[B]) Parameters() []*Parameter[B] {
	if !bn.affine {
		return nil
	}
	return []*Parameter[B]{bn.weight, bn.bias}
}

// Buffers returns the running mean and variance, if tracked.
func (bn *BatchNorm2D[B]) Buffers() []*Parameter[B] {
	if !bn.trackRunningStats {
		return nil
	}
	return []*Parameter[B]{bn.runningMean, bn.runningVar}
}

// RunningMean returns the running mean buffer, or nil.
func (bn *BatchNorm2D[B]) RunningMean() *Parameter[B] {
	return bn.runningMean
}

// RunningVar returns the running variance buffer, or nil.
func (bn *BatchNorm2D[B]) RunningVar() *Parameter[B] {
	return bn.runningVar
}

// NumBatchesTracked returns how many training batches updated the running
// statistics.
func (bn *BatchNorm2D[B]) NumBatchesTracked() int {
	return bn.numBatchesTracked
}

// NumFeatures returns the number of normalized channels.
func (bn *BatchNorm2D[B]) NumFeatures() int {
	return bn.numFeatures
}

// String returns a string representation of the layer.
func (bn *BatchNorm2D[B]) String() string {
	return fmt.Sprintf("BatchNorm2D(%d, eps=%g, momentum=%g, affine=%v, track_running_stats=%v)",
		bn.numFeatures, bn.eps, bn.momentum, bn.affine, bn.trackRunningStats)
}
