package nn

import (
	"fmt"

	"github.com/born-ml/depthdet/internal/tensor"
)

// Upsample enlarges NCHW feature maps by an integer factor using nearest
// neighbour interpolation.
//
//	up := nn.NewUpsample(2, backend)
//	y := up.Forward(x) // [N, C, H, W] -> [N, C, 2H, 2W]
type Upsample[B tensor.Backend] struct {
	scale   int
	backend B
}

// NewUpsample creates a nearest-neighbour upsampling layer.
func NewUpsample[B tensor.Backend](scale int, backend B) *Upsample[B] {
	if scale <= 0 {
		panic(fmt.Sprintf("upsample: invalid scale factor %d", scale))
	}
	return &Upsample[B]{scale: scale, backend: backend}
}

// Forward upsamples the input.
func (u *Upsample[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return tensor.New[float32, B](u.backend.Upsample2D(input.Raw(), u.scale), u.backend)
}

// Parameters returns an empty slice (Upsample has no trainable parameters).
func (u *Upsample[B]) Parameters() []*Parameter[B] {
	return nil
}

// Scale returns the scale factor.
func (u *Upsample[B]) Scale() int {
	return u.scale
}

// String returns a string representation of the layer.
func (u *Upsample[B]) String() string {
	return fmt.Sprintf("Upsample(scale_factor=%d, mode=nearest)", u.scale)
}
