// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the layers the detector is assembled from.
//
// Layers implement Module: Forward runs the layer and Parameters lists its
// learned tensors. Batch-norm running statistics are buffers, reported by
// NamedBuffers rather than Parameters.
//
//	backend := cpu.New()
//	block := nn.NewSequential[*cpu.Backend](
//	    nn.NewConv2D(3, 16, 3, 3, 2, 1, false, backend),
//	    nn.NewBatchNorm2D(16, 1e-3, 0.03, true, true, backend),
//	    nn.NewSiLU[*cpu.Backend](),
//	)
//	y := block.Forward(x)
package nn

import (
	"math/rand/v2"

	"github.com/born-ml/depthdet/internal/nn"
	"github.com/born-ml/depthdet/tensor"
)

// Module is the common interface of all layers.
type Module[B tensor.Backend] = nn.Module[B]

// Parameter is a named tensor owned by a layer.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NamedParameter pairs a parameter with its dotted path inside a module tree.
type NamedParameter[B tensor.Backend] = nn.NamedParameter[B]

// Conv2D is a 2D convolution with Kaiming-uniform initialization.
type Conv2D[B tensor.Backend] = nn.Conv2D[B]

// NewConv2D creates a convolution with a kernelH x kernelW kernel.
func NewConv2D[B tensor.Backend](inChannels, outChannels, kernelH, kernelW, stride, padding int, useBias bool, backend B) *Conv2D[B] {
	return nn.NewConv2D(inChannels, outChannels, kernelH, kernelW, stride, padding, useBias, backend)
}

// BatchNorm2D normalizes every channel of an NCHW map.
type BatchNorm2D[B tensor.Backend] = nn.BatchNorm2D[B]

// NewBatchNorm2D creates a batch-norm layer in evaluation mode.
func NewBatchNorm2D[B tensor.Backend](numFeatures int, eps, momentum float32, affine, trackRunningStats bool, backend B) *BatchNorm2D[B] {
	return nn.NewBatchNorm2D(numFeatures, eps, momentum, affine, trackRunningStats, backend)
}

// SiLU computes x * sigmoid(x).
type SiLU[B tensor.Backend] = nn.SiLU[B]

// NewSiLU creates a SiLU activation.
func NewSiLU[B tensor.Backend]() *SiLU[B] { return nn.NewSiLU[B]() }

// Sigmoid computes 1 / (1 + exp(-x)).
type Sigmoid[B tensor.Backend] = nn.Sigmoid[B]

// NewSigmoid creates a Sigmoid activation.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] { return nn.NewSigmoid[B]() }

// MaxPool2D is max pooling with implicit negative-infinity padding.
type MaxPool2D[B tensor.Backend] = nn.MaxPool2D[B]

// NewMaxPool2D creates a max-pooling layer.
func NewMaxPool2D[B tensor.Backend](kernelSize, stride, padding int, backend B) *MaxPool2D[B] {
	return nn.NewMaxPool2D(kernelSize, stride, padding, backend)
}

// Upsample is nearest-neighbour upsampling by an integer factor.
type Upsample[B tensor.Backend] = nn.Upsample[B]

// NewUpsample creates an upsampling layer.
func NewUpsample[B tensor.Backend](scale int, backend B) *Upsample[B] {
	return nn.NewUpsample(scale, backend)
}

// Sequential chains modules.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// NewSequential creates a container running modules in order.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return nn.NewSequential(modules...)
}

// NamedParameters lists the trainable parameters of m with dotted paths.
func NamedParameters[B tensor.Backend](m Module[B]) []NamedParameter[B] {
	return nn.NamedParameters(m)
}

// NamedBuffers lists the non-trainable buffers of m with dotted paths.
func NamedBuffers[B tensor.Backend](m Module[B]) []NamedParameter[B] {
	return nn.NamedBuffers(m)
}

// SetTraining switches every layer of m between training and evaluation.
func SetTraining[B tensor.Backend](m Module[B], training bool) {
	nn.SetTraining(m, training)
}

// ResetParameters re-initializes every layer of m from src.
func ResetParameters[B tensor.Backend](m Module[B], src rand.Source) {
	nn.ResetParameters(m, src)
}
