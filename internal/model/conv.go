package model

import (
	"fmt"

	"github.com/born-ml/depthdet/internal/nn"
	"github.com/born-ml/depthdet/internal/tensor"
)

type batchNormConfig struct {
	eps, momentum float32
}

var defaultBatchNorm = batchNormConfig{eps: DefaultBNEps, momentum: DefaultBNMomentum}

// ConvModule is the basic unit of the network: a bias-free convolution,
// batch normalization and SiLU.
type ConvModule[B tensor.Backend] struct {
	conv *nn.Conv2D[B]
	bn   *nn.BatchNorm2D[B]
	act  *nn.SiLU[B]
}

// NewConvModule creates a k x k ConvModule with the given stride and padding.
func NewConvModule[B tensor.Backend](cin, cout, k, s, p int, backend B) *ConvModule[B] {
	return newConvModule(cin, cout, k, s, p, defaultBatchNorm, backend)
}

func newConvModule[B tensor.Backend](cin, cout, k, s, p int, bn batchNormConfig, backend B) *ConvModule[B] {
	return &ConvModule[B]{
		conv: nn.NewConv2D(cin, cout, k, k, s, p, false, backend),
		bn:   nn.NewBatchNorm2D(cout, bn.eps, bn.momentum, true, true, backend),
		act:  nn.NewSiLU[B](),
	}
}

// Forward applies conv, batch norm and SiLU.
func (m *ConvModule[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return m.act.Forward(m.bn.Forward(m.conv.Forward(x)))
}

// Parameters returns the convolution weight and the batch-norm affine terms.
func (m *ConvModule[B]) Parameters() []*nn.Parameter[B] {
	return append(m.conv.Parameters(), m.bn.Parameters()...)
}

// Children implements nn.Container.
func (m *ConvModule[B]) Children() []nn.Child[B] {
	return []nn.Child[B]{
		{Name: "conv", Module: m.conv},
		{Name: "bn", Module: m.bn},
		{Name: "act", Module: m.act},
	}
}

// InChannels returns the expected number of input channels.
func (m *ConvModule[B]) InChannels() int { return m.conv.InChannels() }

// OutChannels returns the number of output channels.
func (m *ConvModule[B]) OutChannels() int { return m.conv.OutChannels() }

func (m *ConvModule[B]) String() string {
	k := m.conv.KernelSize()
	return fmt.Sprintf("ConvModule(%d, %d, k=%d, s=%d, p=%d)",
		m.conv.InChannels(), m.conv.OutChannels(), k[0], m.conv.Stride(), m.conv.Padding())
}
