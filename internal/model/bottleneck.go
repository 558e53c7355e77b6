package model

import (
	"fmt"

	"github.com/born-ml/depthdet/internal/nn"
	"github.com/born-ml/depthdet/internal/tensor"
)

// Bottleneck squeezes c channels to c/2 and back with two 3x3 ConvModules.
// With shortcut enabled the input is added to the result.
type Bottleneck[B tensor.Backend] struct {
	conv1    *ConvModule[B]
	conv2    *ConvModule[B]
	shortcut bool
}

// NewBottleneck creates a bottleneck over c channels. c must be at least 2.
func NewBottleneck[B tensor.Backend](c int, shortcut bool, backend B) *Bottleneck[B] {
	return newBottleneck(c, shortcut, defaultBatchNorm, backend)
}

func newBottleneck[B tensor.Backend](c int, shortcut bool, bn batchNormConfig, backend B) *Bottleneck[B] {
	if c < 2 {
		panic(fmt.Sprintf("bottleneck: need at least 2 channels, got %d", c))
	}
	return &Bottleneck[B]{
		conv1:    newConvModule(c, c/2, 3, 1, 1, bn, backend),
		conv2:    newConvModule(c/2, c, 3, 1, 1, bn, backend),
		shortcut: shortcut,
	}
}

// Forward computes conv2(conv1(x)), plus x when the shortcut is enabled.
func (b *Bottleneck[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	y := b.conv2.Forward(b.conv1.Forward(x))
	if b.shortcut {
		return x.Add(y)
	}
	return y
}

// Parameters returns the parameters of both convolutions.
func (b *Bottleneck[B]) Parameters() []*nn.Parameter[B] {
	return append(b.conv1.Parameters(), b.conv2.Parameters()...)
}

// Children implements nn.Container.
func (b *Bottleneck[B]) Children() []nn.Child[B] {
	return []nn.Child[B]{
		{Name: "conv1", Module: b.conv1},
		{Name: "conv2", Module: b.conv2},
	}
}

// Shortcut reports whether the residual connection is enabled.
func (b *Bottleneck[B]) Shortcut() bool { return b.shortcut }
