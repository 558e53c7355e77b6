package cpu

import (
	"fmt"

	"github.com/born-ml/depthdet/internal/parallel"
	"github.com/born-ml/depthdet/internal/tensor"
)

// MaxPool2D performs 2D max pooling with implicit padding.
//
// Input shape:  [batch, channels, height, width]
// Output shape: [batch, channels, out_height, out_width]
//
//	out_height = (height + 2*padding - kernelSize) / stride + 1
//	out_width  = (width + 2*padding - kernelSize) / stride + 1
//
// Padded cells behave as negative infinity, so they never win. Padding may
// be at most half the kernel size, which guarantees that every window
// overlaps the input.
//
// Example (5x5 kernel, stride 1, padding 2 keeps the spatial size):
//
//	out := backend.MaxPool2D(x, 5, 1, 2) // [N, C, H, W] -> [N, C, H, W]
func (cpu *CPUBackend) MaxPool2D(input *tensor.RawTensor, kernelSize, stride, padding int) *tensor.RawTensor {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("maxpool2d: expected 4D input [N,C,H,W], got %dD", len(inputShape)))
	}

	if kernelSize <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid kernel size %d", kernelSize))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid stride %d", stride))
	}
	if padding < 0 || padding > kernelSize/2 {
		panic(fmt.Sprintf("maxpool2d: padding %d must be between 0 and half the kernel size %d", padding, kernelSize))
	}

	N, C, H, W := inputShape[0], inputShape[1], inputShape[2], inputShape[3]

	HOut := (H+2*padding-kernelSize)/stride + 1
	WOut := (W+2*padding-kernelSize)/stride + 1
	if HOut <= 0 || WOut <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid output dimensions %dx%d (kernel=%d, stride=%d, padding=%d, input=%dx%d)",
			HOut, WOut, kernelSize, stride, padding, H, W))
	}

	output := cpu.newResult("maxpool2d", tensor.Shape{N, C, HOut, WOut}, input.DType())
	p := poolGeometry{H: H, W: W, HOut: HOut, WOut: WOut, kernel: kernelSize, stride: stride, padding: padding}

	switch input.DType() {
	case tensor.Float32:
		maxpool2d(output.AsFloat32(), input.AsFloat32(), N*C, p, cpu.par)
	case tensor.Float64:
		maxpool2d(output.AsFloat64(), input.AsFloat64(), N*C, p, cpu.par)
	case tensor.Int32:
		maxpool2d(output.AsInt32(), input.AsInt32(), N*C, p, cpu.par)
	case tensor.Int64:
		maxpool2d(output.AsInt64(), input.AsInt64(), N*C, p, cpu.par)
	default:
		panic(fmt.Sprintf("maxpool2d: unsupported dtype %v", input.DType()))
	}

	return output
}

type poolGeometry struct {
	H, W, HOut, WOut        int
	kernel, stride, padding int
}

func maxpool2d[T tensor.DType](out, in []T, planes int, p poolGeometry, par parallel.Config) {
	inPlane := p.H * p.W
	outPlane := p.HOut * p.WOut

	parallel.For(planes, func(plane int) {
		src := in[plane*inPlane : (plane+1)*inPlane]
		dst := out[plane*outPlane : (plane+1)*outPlane]

		for oh := 0; oh < p.HOut; oh++ {
			hStart := max(oh*p.stride-p.padding, 0)
			hEnd := min(oh*p.stride-p.padding+p.kernel, p.H)

			for ow := 0; ow < p.WOut; ow++ {
				wStart := max(ow*p.stride-p.padding, 0)
				wEnd := min(ow*p.stride-p.padding+p.kernel, p.W)

				best := src[hStart*p.W+wStart]
				for h := hStart; h < hEnd; h++ {
					row := src[h*p.W : (h+1)*p.W]
					for w := wStart; w < wEnd; w++ {
						if row[w] > best {
							best = row[w]
						}
					}
				}
				dst[oh*p.WOut+ow] = best
			}
		}
	}, channelLoop(par))
}
