package model

import (
	"fmt"

	"github.com/born-ml/depthdet/internal/nn"
	"github.com/born-ml/depthdet/internal/tensor"
)

// C2f is the cross-stage partial block with two convolutions.
//
// A 1x1 ConvModule projects the input to cout channels, which are split into
// halves x1 and x2. A chain of depth residual bottlenecks runs on x2, each
// feeding the next, and every intermediate result is kept:
//
//	out = cat(x1, x2, b1(x2), b2(b1(x2)), ...)
//
// A second 1x1 ConvModule fuses the cout/2*(depth+2) channels back to cout.
type C2f[B tensor.Backend] struct {
	cin, cout, depth int

	conv1       *ConvModule[B]
	bottlenecks *nn.Sequential[B]
	conv2       *ConvModule[B]
}

// NewC2f creates a C2f block. cout must be even.
func NewC2f[B tensor.Backend](cin, cout, depth int, backend B) *C2f[B] {
	return newC2f(cin, cout, depth, defaultBatchNorm, backend)
}

func newC2f[B tensor.Backend](cin, cout, depth int, bn batchNormConfig, backend B) *C2f[B] {
	if cout <= 0 || cout%2 != 0 {
		panic(fmt.Sprintf("c2f: output channels must be positive and even, got %d", cout))
	}
	if depth < 0 {
		panic(fmt.Sprintf("c2f: invalid depth %d", depth))
	}

	half := cout / 2
	bottlenecks := nn.NewSequential[B]()
	for range depth {
		bottlenecks.Add(newBottleneck(half, true, bn, backend))
	}

	return &C2f[B]{
		cin:         cin,
		cout:        cout,
		depth:       depth,
		conv1:       newConvModule(cin, cout, 1, 1, 0, bn, backend),
		bottlenecks: bottlenecks,
		conv2:       newConvModule(half*(depth+2), cout, 1, 1, 0, bn, backend),
	}
}

// Forward runs the block on x [N, cin, H, W] and returns [N, cout, H, W].
func (c *C2f[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	parts := c.conv1.Forward(x).Chunk(2, 1)

	outs := make([]*tensor.Tensor[float32, B], 0, c.depth+2)
	outs = append(outs, parts...)

	y := parts[1]
	for i := range c.bottlenecks.Len() {
		y = c.bottlenecks.Module(i).Forward(y)
		outs = append(outs, y)
	}

	return c.conv2.Forward(tensor.Cat(outs, 1))
}

// Parameters returns the parameters of both projections and all bottlenecks.
func (c *C2f[B]) Parameters() []*nn.Parameter[B] {
	params := c.conv1.Parameters()
	params = append(params, c.bottlenecks.Parameters()...)
	return append(params, c.conv2.Parameters()...)
}

// Children implements nn.Container.
func (c *C2f[B]) Children() []nn.Child[B] {
	return []nn.Child[B]{
		{Name: "conv1", Module: c.conv1},
		{Name: "bottlenecks", Module: c.bottlenecks},
		{Name: "conv2", Module: c.conv2},
	}
}

// InChannels returns the expected number of input channels.
func (c *C2f[B]) InChannels() int { return c.cin }

// OutChannels returns the number of output channels.
func (c *C2f[B]) OutChannels() int { return c.cout }

// Depth returns the number of bottlenecks.
func (c *C2f[B]) Depth() int { return c.depth }

func (c *C2f[B]) String() string {
	return fmt.Sprintf("C2f(%d, %d, depth=%d)", c.cin, c.cout, c.depth)
}
