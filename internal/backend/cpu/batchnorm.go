package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/depthdet/internal/parallel"
	"github.com/born-ml/depthdet/internal/tensor"
)

// BatchNorm2D normalizes every channel of an [N, C, H, W] input:
//
//	out = (x - mean[c]) / sqrt(variance[c] + eps) * weight[c] + bias[c]
//
// mean and variance must be [C]. weight and bias are [C] or nil; a nil weight
// acts as 1 and a nil bias as 0.
func (cpu *CPUBackend) BatchNorm2D(input, mean, variance, weight, bias *tensor.RawTensor, eps float32) *tensor.RawTensor {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("batchnorm2d: expected 4D input [N,C,H,W], got %dD", len(inputShape)))
	}
	N, C := inputShape[0], inputShape[1]
	plane := inputShape[2] * inputShape[3]

	for _, p := range []struct {
		name string
		t    *tensor.RawTensor
	}{{"mean", mean}, {"variance", variance}, {"weight", weight}, {"bias", bias}} {
		if p.t == nil {
			if p.name == "mean" || p.name == "variance" {
				panic(fmt.Sprintf("batchnorm2d: %s is required", p.name))
			}
			continue
		}
		if !p.t.Shape().Equal(tensor.Shape{C}) {
			panic(fmt.Sprintf("batchnorm2d: %s shape %v, expected [%d]", p.name, p.t.Shape(), C))
		}
		if p.t.DType() != input.DType() {
			panic(fmt.Sprintf("batchnorm2d: %s dtype %s != input dtype %s", p.name, p.t.DType(), input.DType()))
		}
	}

	output := cpu.newResult("batchnorm2d", inputShape, input.DType())

	switch input.DType() {
	case tensor.Float32:
		scale, shift := foldAffine(mean.AsFloat32(), variance.AsFloat32(), optional[float32](weight), optional[float32](bias), eps)
		normalize(output.AsFloat32(), input.AsFloat32(), scale, shift, N, C, plane, cpu.par)
	case tensor.Float64:
		scale, shift := foldAffine(mean.AsFloat64(), variance.AsFloat64(), optional[float64](weight), optional[float64](bias), eps)
		normalize(output.AsFloat64(), input.AsFloat64(), scale, shift, N, C, plane, cpu.par)
	default:
		panic(fmt.Sprintf("batchnorm2d: unsupported dtype %s (only float32/float64 supported)", input.DType()))
	}

	return output
}

func optional[T float32 | float64](r *tensor.RawTensor) []T {
	if r == nil {
		return nil
	}
	return tensor.Typed[T](r)
}

// foldAffine turns the statistics and affine parameters into a per-channel
// scale and shift, so that out = x*scale + shift.
func foldAffine[T float32 | float64](mean, variance, weight, bias []T, eps float32) (scale, shift []T) {
	scale = make([]T, len(mean))
	shift = make([]T, len(mean))
	for c := range mean {
		s := 1 / math.Sqrt(float64(variance[c])+float64(eps))
		if weight != nil {
			s *= float64(weight[c])
		}
		b := 0.0
		if bias != nil {
			b = float64(bias[c])
		}
		scale[c] = T(s)
		shift[c] = T(b - float64(mean[c])*s)
	}
	return scale, shift
}

func normalize[T float32 | float64](dst, src, scale, shift []T, N, C, plane int, par parallel.Config) {
	parallel.ForBatch(N, C, func(n, c int) {
		off := (n*C + c) * plane
		s, b := scale[c], shift[c]
		out := dst[off : off+plane]
		for i, v := range src[off : off+plane] {
			out[i] = v*s + b
		}
	}, channelLoop(par))
}

// ChannelMoments returns the per-channel mean and biased variance of an
// [N, C, H, W] input. Both results are [C] tensors of the input's dtype.
// Sums are accumulated in float64.
func (cpu *CPUBackend) ChannelMoments(input *tensor.RawTensor) (mean, variance *tensor.RawTensor) {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("channel_moments: expected 4D input [N,C,H,W], got %dD", len(inputShape)))
	}
	N, C := inputShape[0], inputShape[1]
	plane := inputShape[2] * inputShape[3]

	mean = cpu.newResult("channel_moments", tensor.Shape{C}, input.DType())
	variance = cpu.newResult("channel_moments", tensor.Shape{C}, input.DType())

	switch input.DType() {
	case tensor.Float32:
		moments(mean.AsFloat32(), variance.AsFloat32(), input.AsFloat32(), N, C, plane, cpu.par)
	case tensor.Float64:
		moments(mean.AsFloat64(), variance.AsFloat64(), input.AsFloat64(), N, C, plane, cpu.par)
	default:
		panic(fmt.Sprintf("channel_moments: unsupported dtype %s (only float32/float64 supported)", input.DType()))
	}

	return mean, variance
}

func moments[T float32 | float64](mean, variance, src []T, N, C, plane int, par parallel.Config) {
	count := float64(N * plane)

	parallel.For(C, func(c int) {
		var sum float64
		for n := 0; n < N; n++ {
			off := (n*C + c) * plane
			for _, v := range src[off : off+plane] {
				sum += float64(v)
			}
		}
		mu := sum / count

		var sq float64
		for n := 0; n < N; n++ {
			off := (n*C + c) * plane
			for _, v := range src[off : off+plane] {
				d := float64(v) - mu
				sq += d * d
			}
		}

		mean[c] = T(mu)
		variance[c] = T(sq / count)
	}, channelLoop(par))
}
