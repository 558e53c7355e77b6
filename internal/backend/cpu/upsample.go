package cpu

import (
	"fmt"

	"github.com/born-ml/depthdet/internal/parallel"
	"github.com/born-ml/depthdet/internal/tensor"
)

// Upsample2D performs nearest-neighbour upsampling by an integer factor.
//
// Input shape:  [batch, channels, height, width]
// Output shape: [batch, channels, height*scale, width*scale]
//
// out[n, c, h, w] = in[n, c, h/scale, w/scale]
func (cpu *CPUBackend) Upsample2D(input *tensor.RawTensor, scale int) *tensor.RawTensor {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("upsample2d: expected 4D input [N,C,H,W], got %dD", len(inputShape)))
	}
	if scale <= 0 {
		panic(fmt.Sprintf("upsample2d: invalid scale factor %d", scale))
	}

	N, C, H, W := inputShape[0], inputShape[1], inputShape[2], inputShape[3]
	output := cpu.newResult("upsample2d", tensor.Shape{N, C, H * scale, W * scale}, input.DType())

	switch input.DType() {
	case tensor.Float32:
		upsampleNearest(output.AsFloat32(), input.AsFloat32(), N*C, H, W, scale, cpu.par)
	case tensor.Float64:
		upsampleNearest(output.AsFloat64(), input.AsFloat64(), N*C, H, W, scale, cpu.par)
	case tensor.Int32:
		upsampleNearest(output.AsInt32(), input.AsInt32(), N*C, H, W, scale, cpu.par)
	case tensor.Int64:
		upsampleNearest(output.AsInt64(), input.AsInt64(), N*C, H, W, scale, cpu.par)
	default:
		panic(fmt.Sprintf("upsample2d: unsupported dtype %s", input.DType()))
	}

	return output
}

func upsampleNearest[T tensor.DType](out, in []T, planes, H, W, scale int, par parallel.Config) {
	outW := W * scale
	inPlane := H * W
	outPlane := inPlane * scale * scale

	parallel.For(planes, func(plane int) {
		src := in[plane*inPlane : (plane+1)*inPlane]
		dst := out[plane*outPlane : (plane+1)*outPlane]

		for h := 0; h < H; h++ {
			// Build the first output row for this input row, then replicate it.
			first := dst[h*scale*outW : (h*scale+1)*outW]
			for w, v := range src[h*W : (h+1)*W] {
				for s := 0; s < scale; s++ {
					first[w*scale+s] = v
				}
			}
			for s := 1; s < scale; s++ {
				copy(dst[(h*scale+s)*outW:(h*scale+s+1)*outW], first)
			}
		}
	}, channelLoop(par))
}
