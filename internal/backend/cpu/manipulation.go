package cpu

import (
	"fmt"

	"github.com/born-ml/depthdet/internal/tensor"
)

// Cat concatenates tensors along the specified dimension.
//
// All tensors must have the same rank and dtype, and matching sizes in every
// dimension except dim. Negative dim counts from the end.
//
// The data is moved as contiguous byte blocks: for every index of the outer
// dimensions each input contributes shape[dim]*inner elements in turn.
func (cpu *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cat: at least one tensor required")
	}

	shape := tensors[0].Shape()
	dtype := tensors[0].DType()

	dim, err := shape.NormalizeDim(dim)
	if err != nil {
		panic(fmt.Sprintf("cat: %v", err))
	}

	totalDim := 0
	for i, t := range tensors {
		tShape := t.Shape()
		if len(tShape) != len(shape) {
			panic(fmt.Sprintf("cat: tensor %d has %d dimensions, expected %d", i, len(tShape), len(shape)))
		}
		if t.DType() != dtype {
			panic(fmt.Sprintf("cat: tensor %d has dtype %s, expected %s", i, t.DType(), dtype))
		}
		for d := range shape {
			if d == dim {
				totalDim += tShape[d]
			} else if tShape[d] != shape[d] {
				panic(fmt.Sprintf("cat: tensor %d dimension %d is %d, expected %d (shapes %v vs %v)",
					i, d, tShape[d], shape[d], tShape, shape))
			}
		}
	}

	outShape := shape.Clone()
	outShape[dim] = totalDim
	result := cpu.newResult("cat", outShape, dtype)

	outer := shape.Outer(dim)
	inner := shape.Inner(dim) * dtype.Size()
	dst := result.Data()
	rowBytes := totalDim * inner

	offset := 0
	for _, t := range tensors {
		block := t.Shape()[dim] * inner
		src := t.Data()
		for o := 0; o < outer; o++ {
			copy(dst[o*rowBytes+offset:], src[o*block:(o+1)*block])
		}
		offset += block
	}

	return result
}

// Split splits x into consecutive parts of the given sizes along dim.
// The sizes must be positive and sum to the size of the dimension.
func (cpu *CPUBackend) Split(x *tensor.RawTensor, sizes []int, dim int) []*tensor.RawTensor {
	shape := x.Shape()

	dim, err := shape.NormalizeDim(dim)
	if err != nil {
		panic(fmt.Sprintf("split: %v", err))
	}

	total := 0
	for _, s := range sizes {
		if s <= 0 {
			panic(fmt.Sprintf("split: sizes must be positive, got %v", sizes))
		}
		total += s
	}
	if total != shape[dim] {
		panic(fmt.Sprintf("split: sizes %v sum to %d, dimension %d has size %d", sizes, total, dim, shape[dim]))
	}

	outer := shape.Outer(dim)
	inner := shape.Inner(dim) * x.DType().Size()
	src := x.Data()
	rowBytes := shape[dim] * inner

	results := make([]*tensor.RawTensor, len(sizes))
	offset := 0
	for i, s := range sizes {
		partShape := shape.Clone()
		partShape[dim] = s
		part := cpu.newResult("split", partShape, x.DType())

		block := s * inner
		dst := part.Data()
		for o := 0; o < outer; o++ {
			copy(dst[o*block:(o+1)*block], src[o*rowBytes+offset:])
		}
		offset += block
		results[i] = part
	}

	return results
}

// Chunk splits x into n equal parts along dim.
// The dimension size must be divisible by n.
func (cpu *CPUBackend) Chunk(x *tensor.RawTensor, n, dim int) []*tensor.RawTensor {
	if n <= 0 {
		panic(fmt.Sprintf("chunk: n must be positive, got %d", n))
	}

	shape := x.Shape()
	dim, err := shape.NormalizeDim(dim)
	if err != nil {
		panic(fmt.Sprintf("chunk: %v", err))
	}

	dimSize := shape[dim]
	if dimSize%n != 0 {
		panic(fmt.Sprintf("chunk: dimension %d size %d not divisible by %d", dim, dimSize, n))
	}

	sizes := make([]int, n)
	for i := range sizes {
		sizes[i] = dimSize / n
	}
	return cpu.Split(x, sizes, dim)
}
