package tensor

// Cat concatenates tensors along the specified dimension.
//
// All tensors must have the same shape except along the concatenation dimension.
// Supports negative dim indexing (-1 = last dimension).
//
// Example:
//
//	a := tensor.Zeros[float32](Shape{1, 64, 40, 40}, backend)
//	b := tensor.Zeros[float32](Shape{1, 64, 40, 40}, backend)
//	c := tensor.Cat([]*Tensor[float32, B]{a, b}, 1) // Shape: [1, 128, 40, 40]
func Cat[T DType, B Backend](tensors []*Tensor[T, B], dim int) *Tensor[T, B] {
	if len(tensors) == 0 {
		panic("cat: at least one tensor required")
	}

	if len(tensors) == 1 {
		return tensors[0].Clone()
	}

	rawTensors := make([]*RawTensor, len(tensors))
	backend := tensors[0].backend
	for i, t := range tensors {
		rawTensors[i] = t.raw
	}

	return New[T, B](backend.Cat(rawTensors, dim), backend)
}

// Split splits the tensor into consecutive parts with the given sizes along dim.
//
// The sizes must sum to the size of the dimension.
//
// Example:
//
//	x := tensor.Zeros[float32](Shape{1, 64, 8, 8}, backend)
//	parts := x.Split([]int{32, 32}, 1) // two [1, 32, 8, 8] tensors
func (t *Tensor[T, B]) Split(sizes []int, dim int) []*Tensor[T, B] {
	return t.wrap(t.backend.Split(t.raw, sizes, dim))
}

// Chunk splits the tensor into n equal parts along the specified dimension.
//
// The dimension size must be divisible by n.
func (t *Tensor[T, B]) Chunk(n, dim int) []*Tensor[T, B] {
	return t.wrap(t.backend.Chunk(t.raw, n, dim))
}

func (t *Tensor[T, B]) wrap(raws []*RawTensor) []*Tensor[T, B] {
	parts := make([]*Tensor[T, B], len(raws))
	for i, raw := range raws {
		parts[i] = New[T, B](raw, t.backend)
	}
	return parts
}
