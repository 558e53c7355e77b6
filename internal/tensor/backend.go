package tensor

// Backend defines the operations a compute backend provides to the layers.
// Backends panic with an "<op>: <detail>" message when operands have
// incompatible shapes, mirroring how a framework raises at execution time.
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Conv2D convolves [N, C_in, H, W] with a [C_out, C_in, K_h, K_w] kernel.
	Conv2D(input, kernel *RawTensor, stride, padding int) *RawTensor

	// MaxPool2D pools square windows; padded cells never contribute.
	MaxPool2D(input *RawTensor, kernelSize, stride, padding int) *RawTensor

	// Upsample2D repeats every pixel scale x scale times (nearest neighbour).
	Upsample2D(input *RawTensor, scale int) *RawTensor

	// BatchNorm2D normalizes each channel of [N, C, H, W] with the given
	// statistics. weight and bias may be nil (no affine transform).
	BatchNorm2D(input, mean, variance, weight, bias *RawTensor, eps float32) *RawTensor

	// ChannelMoments returns the per-channel mean and biased variance of
	// [N, C, H, W], each shaped [C].
	ChannelMoments(input *RawTensor) (mean, variance *RawTensor)

	// Activations.
	SiLU(x *RawTensor) *RawTensor
	Sigmoid(x *RawTensor) *RawTensor

	// Shape and layout operations.
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Cat(tensors []*RawTensor, dim int) *RawTensor
	Split(x *RawTensor, sizes []int, dim int) []*RawTensor
	Chunk(x *RawTensor, n, dim int) []*RawTensor

	// Metadata.
	Name() string
	Device() Device
}
