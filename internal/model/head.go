package model

import (
	"fmt"

	"github.com/born-ml/depthdet/internal/nn"
	"github.com/born-ml/depthdet/internal/tensor"
)

// DetectionHead is a decoupled head with three parallel branches. Each branch
// is two 3x3 ConvModules followed by a bias-free 1x1 convolution:
//
//	bbox:  c -> d -> d -> 4*regMax
//	cls:   c -> d -> d -> nclass
//	depth: c -> d -> d -> 1
//
// where d = max(c, 4*regMax). The branch outputs are concatenated along the
// channel axis in that order.
type DetectionHead[B tensor.Backend] struct {
	c, regMax, nclass int

	bbox  *nn.Sequential[B]
	cls   *nn.Sequential[B]
	depth *nn.Sequential[B]
}

// NewDetectionHead creates a head over c input channels.
func NewDetectionHead[B tensor.Backend](c, regMax, nclass int, backend B) *DetectionHead[B] {
	return newDetectionHead(c, regMax, nclass, defaultBatchNorm, backend)
}

func newDetectionHead[B tensor.Backend](c, regMax, nclass int, bn batchNormConfig, backend B) *DetectionHead[B] {
	if regMax < 1 || nclass < 1 {
		panic(fmt.Sprintf("detection_head: reg_max and nclass must be positive, got %d and %d", regMax, nclass))
	}

	d := max(c, 4*regMax)
	branch := func(out int) *nn.Sequential[B] {
		return nn.NewSequential[B](
			newConvModule(c, d, 3, 1, 1, bn, backend),
			newConvModule(d, d, 3, 1, 1, bn, backend),
			nn.NewConv2D(d, out, 1, 1, 1, 0, false, backend),
		)
	}

	return &DetectionHead[B]{
		c:      c,
		regMax: regMax,
		nclass: nclass,
		bbox:   branch(4 * regMax),
		cls:    branch(nclass),
		depth:  branch(1),
	}
}

// Forward returns [N, 4*regMax + nclass + 1, H, W] for x [N, c, H, W].
func (h *DetectionHead[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return tensor.Cat([]*tensor.Tensor[float32, B]{
		h.bbox.Forward(x),
		h.cls.Forward(x),
		h.depth.Forward(x),
	}, 1)
}

// Parameters returns the parameters of all three branches.
func (h *DetectionHead[B]) Parameters() []*nn.Parameter[B] {
	params := h.bbox.Parameters()
	params = append(params, h.cls.Parameters()...)
	return append(params, h.depth.Parameters()...)
}

// Children implements nn.Container.
func (h *DetectionHead[B]) Children() []nn.Child[B] {
	return []nn.Child[B]{
		{Name: "bbox", Module: h.bbox},
		{Name: "cls", Module: h.cls},
		{Name: "depth", Module: h.depth},
	}
}

// OutChannels returns 4*regMax + nclass + 1.
func (h *DetectionHead[B]) OutChannels() int {
	return 4*h.regMax + h.nclass + 1
}

func (h *DetectionHead[B]) String() string {
	return fmt.Sprintf("DetectionHead(%d, reg_max=%d, nclass=%d)", h.c, h.regMax, h.nclass)
}

// ChannelRange is a half-open range [Start, End) of channels.
type ChannelRange struct {
	Start, End int
}

// Len returns the number of channels in the range.
func (r ChannelRange) Len() int { return r.End - r.Start }

// HeadLayout locates the three branch outputs inside a head map.
type HeadLayout struct {
	BBox  ChannelRange // [0, 4*RegMax)
	Class ChannelRange // [4*RegMax, 4*RegMax+NumClasses)
	Depth ChannelRange // last channel
}

// LayoutFor returns the channel layout of the head maps produced by a
// detector built from cfg.
func LayoutFor(cfg Config) HeadLayout {
	box := 4 * cfg.RegMax
	cls := box + cfg.NumClasses
	return HeadLayout{
		BBox:  ChannelRange{0, box},
		Class: ChannelRange{box, cls},
		Depth: ChannelRange{cls, cls + 1},
	}
}

// Channels returns the total channel count of a head map.
func (l HeadLayout) Channels() int { return l.Depth.End }

// SplitHead splits a head map [N, C, H, W] into its bbox, class and depth
// parts. No decoding is applied. It returns ErrShapeMismatch when the map
// does not have the layout's channel count.
func SplitHead[B tensor.Backend](layout HeadLayout, head *tensor.Tensor[float32, B]) (bbox, cls, depth *tensor.Tensor[float32, B], err error) {
	shape := head.Shape()
	if len(shape) != 4 || shape[1] != layout.Channels() {
		return nil, nil, nil, fmt.Errorf("%w: head map %v does not have %d channels", ErrShapeMismatch, shape, layout.Channels())
	}

	parts := head.Split([]int{layout.BBox.Len(), layout.Class.Len(), layout.Depth.Len()}, 1)
	return parts[0], parts[1], parts[2], nil
}
