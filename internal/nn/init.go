package nn

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/born-ml/depthdet/internal/tensor"
)

// Resetter is implemented by layers that can re-draw their initial weights.
type Resetter interface {
	ResetParameters(src rand.Source)
}

// KaimingUniform draws a tensor from U(-bound, bound) with
// bound = 1/sqrt(fanIn).
//
// This is the default initialization of convolution weights and biases
// (Kaiming-uniform with a = sqrt(5)).
//
// Parameters:
//   - fanIn: Number of inputs feeding each output (in_channels * k_h * k_w)
//   - shape: Shape of the tensor
//   - src: Random source; nil uses the global source
//   - backend: Backend to use for tensor creation
func KaimingUniform[B tensor.Backend](fanIn int, shape tensor.Shape, src rand.Source, backend B) *tensor.Tensor[float32, B] {
	if fanIn <= 0 {
		panic("kaiming_uniform: fan_in must be positive")
	}
	bound := 1 / math.Sqrt(float64(fanIn))
	return tensor.RandFrom[float32](shape, distuv.Uniform{Min: -bound, Max: bound, Src: src}, backend)
}

// Zeros creates a tensor filled with zeros.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Zeros[float32](shape, backend)
}

// Ones creates a tensor filled with ones.
func Ones[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Ones[float32](shape, backend)
}
