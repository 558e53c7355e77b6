// Package nn implements the neural network layers the detector is built from.
//
// This package provides:
//   - Module interface: Forward plus the module's parameters
//   - Parameter: learned weights and non-trainable buffers (running statistics)
//   - Conv2D, BatchNorm2D, MaxPool2D, Upsample: spatial layers over NCHW maps
//   - SiLU, Sigmoid: activations
//   - Sequential: container for stacking layers
//   - Walk and friends: traversal of named module trees
//
// Layers panic with an "<op>: <detail>" message when they receive inputs of
// the wrong shape, the same way the backend kernels do.
package nn

import (
	"github.com/born-ml/depthdet/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Every NN module must implement:
//   - Forward: Compute output from input
//   - Parameters: Return all trainable parameters
//
// Modules can be composed to build complex architectures:
//
//	block := nn.NewSequential[Backend](
//	    nn.NewConv2D(3, 16, 3, 3, 2, 1, false, backend),
//	    nn.NewBatchNorm2D(16, 1e-3, 0.03, true, true, backend),
//	    nn.NewSiLU[Backend](),
//	)
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	//
	// The input tensor should have the appropriate shape for this module.
	// For example, Conv2D expects [batch, in_channels, height, width].
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all trainable parameters of this module.
	//
	// This includes weights, biases, and any nested module parameters.
	// Returns an empty slice for modules without trainable parameters
	// (e.g., activation functions).
	Parameters() []*Parameter[B]
}

// Child is a submodule registered under a name.
type Child[B tensor.Backend] struct {
	Name   string
	Module Module[B]
}

// Container is implemented by modules built from named submodules.
//
// Children must cover every parameter and buffer of the container: the tree
// walkers below only read parameters from leaves.
type Container[B tensor.Backend] interface {
	Children() []Child[B]
}

// Buffered is implemented by modules that hold non-trainable state, such as
// batch-norm running statistics.
type Buffered[B tensor.Backend] interface {
	Buffers() []*Parameter[B]
}

// Trainer is implemented by modules whose forward pass depends on the
// training mode.
type Trainer interface {
	Train(training bool)
}

// OutputSize returns the spatial output size of a sliding window of size
// kernel over size input cells with the given stride and symmetric padding.
//
//	out = (size + 2*padding - kernel) / stride + 1
func OutputSize(size, kernel, stride, padding int) int {
	return (size+2*padding-kernel)/stride + 1
}
