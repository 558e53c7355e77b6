package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/blas/blas64"

	"github.com/born-ml/depthdet/internal/parallel"
	"github.com/born-ml/depthdet/internal/tensor"
)

// convGeometry holds the dimensions of one Conv2D call.
type convGeometry struct {
	N, CIn, H, W    int
	COut, KH, KW    int
	HOut, WOut      int
	stride, padding int
}

// pointwise reports whether the convolution is a 1x1, stride 1, unpadded
// projection, for which the input planes already are the im2col matrix.
func (g convGeometry) pointwise() bool {
	return g.KH == 1 && g.KW == 1 && g.stride == 1 && g.padding == 0
}

// Conv2D performs 2D convolution using the im2col algorithm.
//
// Input shape:  [batch, in_channels, height, width]
// Kernel shape: [out_channels, in_channels, kernel_h, kernel_w]
// Output shape: [batch, out_channels, out_h, out_w]
//
//	out_h = (H + 2*padding - K_h) / stride + 1
//	out_w = (W + 2*padding - K_w) / stride + 1
//
// Batch items are processed in turn. For each one the input patches are
// unfolded into a [C_in*K_h*K_w, H_out*W_out] matrix (in parallel over input
// channels) and multiplied with the kernel viewed as [C_out, C_in*K_h*K_w]
// (in parallel over 64x64 output tiles). The product is already laid out as
// [C_out, H_out, W_out], so it is written straight into the output plane.
func (cpu *CPUBackend) Conv2D(input, kernel *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	inputShape := input.Shape()
	kernelShape := kernel.Shape()

	if len(inputShape) != 4 {
		panic(fmt.Sprintf("conv2d: input must be 4D [N,C,H,W], got %dD", len(inputShape)))
	}
	if len(kernelShape) != 4 {
		panic(fmt.Sprintf("conv2d: kernel must be 4D [C_out,C_in,K_h,K_w], got %dD", len(kernelShape)))
	}
	if stride <= 0 || padding < 0 {
		panic(fmt.Sprintf("conv2d: invalid stride %d / padding %d", stride, padding))
	}
	if input.DType() != kernel.DType() {
		panic(fmt.Sprintf("conv2d: input dtype %s != kernel dtype %s", input.DType(), kernel.DType()))
	}

	g := convGeometry{
		N: inputShape[0], CIn: inputShape[1], H: inputShape[2], W: inputShape[3],
		COut: kernelShape[0], KH: kernelShape[2], KW: kernelShape[3],
		stride: stride, padding: padding,
	}

	if g.CIn != kernelShape[1] {
		panic(fmt.Sprintf("conv2d: input channels %d != kernel channels %d", g.CIn, kernelShape[1]))
	}

	g.HOut = (g.H+2*padding-g.KH)/stride + 1
	g.WOut = (g.W+2*padding-g.KW)/stride + 1
	if g.HOut <= 0 || g.WOut <= 0 {
		panic(fmt.Sprintf("conv2d: invalid output dimensions: out_h=%d, out_w=%d (check stride/padding)", g.HOut, g.WOut))
	}

	output := cpu.newResult("conv2d", tensor.Shape{g.N, g.COut, g.HOut, g.WOut}, input.DType())

	switch input.DType() {
	case tensor.Float32:
		conv2dFloat32(output.AsFloat32(), input.AsFloat32(), kernel.AsFloat32(), g, cpu.par)
	case tensor.Float64:
		conv2dFloat64(output.AsFloat64(), input.AsFloat64(), kernel.AsFloat64(), g, cpu.par)
	default:
		panic(fmt.Sprintf("conv2d: unsupported dtype %s", input.DType()))
	}

	return output
}

// gemmTile is the edge of the output tiles the convolution GEMM is split into.
// It matches the block size of gonum's native GEMM, so every tile product is
// small enough for gonum to run it on the calling goroutine and the worker
// count stays under the backend's parallel config.
const gemmTile = 64

// tile is one [rows, cols] block of a [C_out, H_out*W_out] product.
type tile struct {
	row, rows int
	col, cols int
}

// gemmTiles lists the output tiles of an m x n product in row-major order.
func gemmTiles(m, n int) []tile {
	tiles := make([]tile, 0, ((m+gemmTile-1)/gemmTile)*((n+gemmTile-1)/gemmTile))
	for i := 0; i < m; i += gemmTile {
		for j := 0; j < n; j += gemmTile {
			tiles = append(tiles, tile{row: i, rows: min(gemmTile, m-i), col: j, cols: min(gemmTile, n-j)})
		}
	}
	return tiles
}

func conv2dFloat32(out, in, kernel []float32, g convGeometry, par parallel.Config) {
	k := g.CIn * g.KH * g.KW
	hw := g.HOut * g.WOut
	inPlane := g.CIn * g.H * g.W
	outPlane := g.COut * hw
	tiles := gemmTiles(g.COut, hw)

	var colBuf []float32
	if !g.pointwise() {
		colBuf = make([]float32, k*hw)
	}

	for n := 0; n < g.N; n++ {
		src := in[n*inPlane : (n+1)*inPlane]
		cols := src
		if colBuf != nil {
			im2col(colBuf, src, g, par)
			cols = colBuf
		}
		dst := out[n*outPlane : (n+1)*outPlane]

		parallel.For(len(tiles), func(i int) {
			t := tiles[i]
			blas32.Gemm(blas.NoTrans, blas.NoTrans, 1,
				blas32.General{Rows: t.rows, Cols: k, Stride: k, Data: kernel[t.row*k:]},
				blas32.General{Rows: k, Cols: t.cols, Stride: hw, Data: cols[t.col:]},
				0,
				blas32.General{Rows: t.rows, Cols: t.cols, Stride: hw, Data: dst[t.row*hw+t.col:]},
			)
		}, channelLoop(par))
	}
}

func conv2dFloat64(out, in, kernel []float64, g convGeometry, par parallel.Config) {
	k := g.CIn * g.KH * g.KW
	hw := g.HOut * g.WOut
	inPlane := g.CIn * g.H * g.W
	outPlane := g.COut * hw
	tiles := gemmTiles(g.COut, hw)

	var colBuf []float64
	if !g.pointwise() {
		colBuf = make([]float64, k*hw)
	}

	for n := 0; n < g.N; n++ {
		src := in[n*inPlane : (n+1)*inPlane]
		cols := src
		if colBuf != nil {
			im2col(colBuf, src, g, par)
			cols = colBuf
		}
		dst := out[n*outPlane : (n+1)*outPlane]

		parallel.For(len(tiles), func(i int) {
			t := tiles[i]
			blas64.Gemm(blas.NoTrans, blas.NoTrans, 1,
				blas64.General{Rows: t.rows, Cols: k, Stride: k, Data: kernel[t.row*k:]},
				blas64.General{Rows: k, Cols: t.cols, Stride: hw, Data: cols[t.col:]},
				0,
				blas64.General{Rows: t.rows, Cols: t.cols, Stride: hw, Data: dst[t.row*hw+t.col:]},
			)
		}, channelLoop(par))
	}
}

// im2col unfolds one [C, H, W] input plane into cols [C*K_h*K_w, H_out*W_out].
//
// Row (c*K_h + kh)*K_w + kw holds, for every output position, the input value
// that kernel tap (c, kh, kw) sees there. Out-of-bounds taps read zero padding.
// Channels are independent rows, so they are filled in parallel.
func im2col[T tensor.DType](cols, src []T, g convGeometry, par parallel.Config) {
	hw := g.HOut * g.WOut
	taps := g.KH * g.KW

	parallel.For(g.CIn, func(c int) {
		plane := src[c*g.H*g.W : (c+1)*g.H*g.W]

		for kh := 0; kh < g.KH; kh++ {
			for kw := 0; kw < g.KW; kw++ {
				row := cols[(c*taps+kh*g.KW+kw)*hw:][:hw]
				idx := 0

				for oh := 0; oh < g.HOut; oh++ {
					h := oh*g.stride - g.padding + kh
					if h < 0 || h >= g.H {
						clear(row[idx : idx+g.WOut])
						idx += g.WOut
						continue
					}
					line := plane[h*g.W : (h+1)*g.W]

					for ow := 0; ow < g.WOut; ow++ {
						w := ow*g.stride - g.padding + kw
						if w >= 0 && w < g.W {
							row[idx] = line[w]
						} else {
							row[idx] = 0
						}
						idx++
					}
				}
			}
		}
	}, channelLoop(par))
}

// channelLoop adapts the kernel config for loops over channels, where each
// item is already a whole plane of work.
func channelLoop(par parallel.Config) parallel.Config {
	par.MinChunkSize = 1
	return par
}
