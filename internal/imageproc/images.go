// Package imageproc turns a decoded picture into detector input: an aspect
// preserving letterbox resize into a square canvas followed by conversion to
// channels-first float32 pixels in [0, 1].
package imageproc

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"golang.org/x/image/draw"
)

// Channels is the number of colour planes emitted by CHW.
const Channels = 3

// PadColor fills the area of the canvas not covered by the picture.
var PadColor = color.RGBA{R: 114, G: 114, B: 114, A: 255}

// Letterbox describes how a source picture is placed on a square canvas.
type Letterbox struct {
	SrcWidth  int
	SrcHeight int
	Size      int

	// Scale maps source pixels to canvas pixels.
	Scale float32

	ResizeWidth  int
	ResizeHeight int

	XPad int
	YPad int
}

// NewLetterbox computes the placement of a srcWidth x srcHeight picture on a
// size x size canvas. The longer side fills the canvas and the picture is
// centred along the shorter one.
func NewLetterbox(srcWidth, srcHeight, size int) (Letterbox, error) {
	if srcWidth <= 0 || srcHeight <= 0 {
		return Letterbox{}, fmt.Errorf("letterbox: empty source %dx%d", srcWidth, srcHeight)
	}
	if size <= 0 {
		return Letterbox{}, fmt.Errorf("letterbox: canvas size must be positive, got %d", size)
	}

	l := Letterbox{SrcWidth: srcWidth, SrcHeight: srcHeight, Size: size}
	if srcWidth >= srcHeight {
		l.ResizeWidth = size
		l.ResizeHeight = max(1, srcHeight*size/srcWidth)
		l.Scale = float32(size) / float32(srcWidth)
	} else {
		l.ResizeWidth = max(1, srcWidth*size/srcHeight)
		l.ResizeHeight = size
		l.Scale = float32(size) / float32(srcHeight)
	}

	l.XPad = (size - l.ResizeWidth) / 2
	l.YPad = (size - l.ResizeHeight) / 2
	return l, nil
}

// Rect is the canvas region covered by the resized picture.
func (l Letterbox) Rect() image.Rectangle {
	return image.Rect(l.XPad, l.YPad, l.XPad+l.ResizeWidth, l.YPad+l.ResizeHeight)
}

// Apply draws img onto a new canvas filled with fill, scaling with kernel.
func (l Letterbox) Apply(img image.Image, fill color.Color, kernel draw.Interpolator) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, l.Size, l.Size))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{fill}, image.Point{}, draw.Src)
	kernel.Scale(dst, l.Rect(), img, img.Bounds(), draw.Over, nil)
	return dst
}

// CHW returns the R, G and B planes of img one after another, each value
// rescaled from [0, 255] to [0, 1]. Alpha is dropped.
func CHW(img image.Image) []float32 {
	b := img.Bounds()
	plane := b.Dx() * b.Dy()
	out := make([]float32, Channels*plane)

	if rgba, ok := img.(*image.RGBA); ok {
		i := 0
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := rgba.Pix[rgba.PixOffset(b.Min.X, y):]
			for x := 0; x < b.Dx(); x++ {
				px := row[4*x : 4*x+3]
				out[i] = float32(px[0]) / 255
				out[plane+i] = float32(px[1]) / 255
				out[2*plane+i] = float32(px[2]) / 255
				i++
			}
		}
		return out
	}

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			out[i] = float32(r>>8) / 255
			out[plane+i] = float32(g>>8) / 255
			out[2*plane+i] = float32(bl>>8) / 255
			i++
		}
	}
	return out
}

// Input is one picture prepared for the detector.
type Input struct {
	Format string
	Box    Letterbox
	// Pixels holds Channels*Size*Size values in CHW order.
	Pixels []float32
}

// Decode reads a PNG or JPEG picture and letterboxes it onto a size x size
// canvas.
func Decode(r io.Reader, size int) (*Input, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	box, err := NewLetterbox(b.Dx(), b.Dy(), size)
	if err != nil {
		return nil, err
	}

	canvas := box.Apply(img, PadColor, draw.BiLinear)
	return &Input{Format: format, Box: box, Pixels: CHW(canvas)}, nil
}

// Open is Decode on the file at path.
func Open(path string, size int) (*Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	in, err := Decode(f, size)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return in, nil
}
