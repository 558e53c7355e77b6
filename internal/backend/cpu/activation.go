package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/depthdet/internal/parallel"
	"github.com/born-ml/depthdet/internal/tensor"
)

// SiLU applies x * sigmoid(x) element-wise.
func (cpu *CPUBackend) SiLU(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("silu", x, silu32, silu64)
}

// Sigmoid applies 1 / (1 + exp(-x)) element-wise.
func (cpu *CPUBackend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("sigmoid", x, sigmoid32, sigmoid64)
}

func (cpu *CPUBackend) unary(op string, x *tensor.RawTensor, f32 func(float32) float32, f64 func(float64) float64) *tensor.RawTensor {
	result := cpu.newResult(op, x.Shape(), x.DType())

	switch x.DType() {
	case tensor.Float32:
		mapUnary(result.AsFloat32(), x.AsFloat32(), f32, cpu.par)
	case tensor.Float64:
		mapUnary(result.AsFloat64(), x.AsFloat64(), f64, cpu.par)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s (only float32/float64 supported)", op, x.DType()))
	}

	return result
}

func mapUnary[T float32 | float64](dst, src []T, f func(T) T, par parallel.Config) {
	parallel.ForRange(len(src), func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = f(src[i])
		}
	}, par)
}

func sigmoid32(x float32) float32 {
	return float32(sigmoid64(float64(x)))
}

// sigmoid64 picks the branch that keeps exp from overflowing.
func sigmoid64(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

func silu32(x float32) float32 {
	return x * sigmoid32(x)
}

func silu64(x float64) float64 {
	return x * sigmoid64(x)
}
