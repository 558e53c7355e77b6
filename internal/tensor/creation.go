package tensor

import (
	"gonum.org/v1/gonum/stat/distuv"
)

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	t := tensor.Zeros[float32](Shape{3, 4}, backend)
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	raw, err := NewRaw(shape, DataTypeOf[T](), b.Device())
	if err != nil {
		panic(err) // Shape validation should prevent this
	}
	return New[T, B](raw, b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return Full[T, B](shape, 1, b)
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	t := tensor.Full[float32](Shape{3, 3}, 3.14, backend)
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Randn creates a tensor with values drawn from N(0, 1).
// Only float element types are supported.
func Randn[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return sample[T](shape, distuv.UnitNormal, b)
}

// Rand creates a tensor with values uniformly distributed in [0, 1).
// Only float element types are supported.
func Rand[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return sample[T](shape, distuv.Uniform{Min: 0, Max: 1}, b)
}

// RandFrom creates a tensor filled with draws from dist.
// Only float element types are supported.
func RandFrom[T DType, B Backend](shape Shape, dist distuv.Rander, b B) *Tensor[T, B] {
	return sample[T](shape, dist, b)
}

func sample[T DType, B Backend](shape Shape, dist distuv.Rander, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)

	switch data := any(t.Data()).(type) {
	case []float32:
		for i := range data {
			data[i] = float32(dist.Rand())
		}
	case []float64:
		for i := range data {
			data[i] = dist.Rand()
		}
	default:
		panic("random tensors only support float32 and float64")
	}
	return t
}
