package nn

import (
	"github.com/born-ml/depthdet/internal/tensor"
)

// Parameter is a named tensor owned by a layer.
//
// Trainable parameters are the learned weights and biases. Buffers are
// non-trainable state that is still part of the model, such as the running
// mean and variance of a batch-norm layer.
//
// Example:
//
//	weight := nn.NewParameter("weight", weightTensor)
//	w := weight.Tensor()
type Parameter[B tensor.Backend] struct {
	name      string                     // Parameter name (e.g., "weight", "running_mean")
	tensor    *tensor.Tensor[float32, B] // The parameter tensor
	trainable bool
}

// NewParameter creates a new trainable parameter.
//
// Parameters:
//   - name: Descriptive name for this parameter (e.g., "weight")
//   - t: The initialized parameter tensor
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{
		name:      name,
		tensor:    t,
		trainable: true,
	}
}

// NewBuffer creates a non-trainable parameter.
func NewBuffer[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] {
	return p.tensor
}

// SetTensor replaces the parameter tensor. The shape must not change.
func (p *Parameter[B]) SetTensor(t *tensor.Tensor[float32, B]) {
	if !t.Shape().Equal(p.tensor.Shape()) {
		panic("parameter: cannot replace " + p.name + " with a tensor of a different shape")
	}
	p.tensor = t
}

// Trainable reports whether the parameter is learned (as opposed to a buffer).
func (p *Parameter[B]) Trainable() bool {
	return p.trainable
}

// NumElements returns the number of scalars in the parameter.
func (p *Parameter[B]) NumElements() int {
	return p.tensor.NumElements()
}

// CountParameters returns the total number of scalars in params.
func CountParameters[B tensor.Backend](params []*Parameter[B]) int {
	n := 0
	for _, p := range params {
		n += p.NumElements()
	}
	return n
}
