package model

import (
	"fmt"

	"github.com/born-ml/depthdet/internal/nn"
	"github.com/born-ml/depthdet/internal/tensor"
)

// SPPF constants: every pool is 5x5 with stride 1 and padding 2, which keeps
// the spatial size.
const (
	sppfKernel  = 5
	sppfPadding = 2
	sppfPools   = 3
)

// SPPF is fast spatial pyramid pooling.
//
// After a 1x1 ConvModule, three max pools are applied in cascade. The
// projection and the three pooled maps are concatenated (4c channels) and
// fused back to c channels by a second 1x1 ConvModule. Cascading three 5x5
// pools covers receptive fields of 5, 9 and 13.
type SPPF[B tensor.Backend] struct {
	c     int
	conv1 *ConvModule[B]
	pool  *nn.MaxPool2D[B]
	conv2 *ConvModule[B]
}

// NewSPPF creates an SPPF block over c channels.
func NewSPPF[B tensor.Backend](c int, backend B) *SPPF[B] {
	return newSPPF(c, defaultBatchNorm, backend)
}

func newSPPF[B tensor.Backend](c int, bn batchNormConfig, backend B) *SPPF[B] {
	return &SPPF[B]{
		c:     c,
		conv1: newConvModule(c, c, 1, 1, 0, bn, backend),
		pool:  nn.NewMaxPool2D(sppfKernel, 1, sppfPadding, backend),
		conv2: newConvModule(c*(sppfPools+1), c, 1, 1, 0, bn, backend),
	}
}

// Forward returns a map with the same shape as x.
func (s *SPPF[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	y := s.conv1.Forward(x)

	maps := make([]*tensor.Tensor[float32, B], 0, sppfPools+1)
	maps = append(maps, y)
	for range sppfPools {
		y = s.pool.Forward(y)
		maps = append(maps, y)
	}

	return s.conv2.Forward(tensor.Cat(maps, 1))
}

// Parameters returns the parameters of both projections.
func (s *SPPF[B]) Parameters() []*nn.Parameter[B] {
	return append(s.conv1.Parameters(), s.conv2.Parameters()...)
}

// Children implements nn.Container.
func (s *SPPF[B]) Children() []nn.Child[B] {
	return []nn.Child[B]{
		{Name: "conv1", Module: s.conv1},
		{Name: "pool", Module: s.pool},
		{Name: "conv2", Module: s.conv2},
	}
}

// Channels returns the input and output channel count.
func (s *SPPF[B]) Channels() int { return s.c }

func (s *SPPF[B]) String() string {
	return fmt.Sprintf("SPPF(%d)", s.c)
}
