package imageproc

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/draw"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNewLetterbox(t *testing.T) {
	cases := []struct {
		name       string
		w, h, size int
		rw, rh     int
		xPad, yPad int
		scale      float32
	}{
		{"landscape", 1280, 720, 640, 640, 360, 0, 140, 0.5},
		{"portrait", 100, 200, 64, 32, 64, 16, 0, 0.32},
		{"square", 50, 50, 100, 100, 100, 0, 0, 2},
		{"sliver", 1000, 1, 32, 32, 1, 0, 15, 0.032},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLetterbox(tt.w, tt.h, tt.size)
			require.NoError(t, err)
			assert.Equal(t, tt.rw, l.ResizeWidth)
			assert.Equal(t, tt.rh, l.ResizeHeight)
			assert.Equal(t, tt.xPad, l.XPad)
			assert.Equal(t, tt.yPad, l.YPad)
			assert.InDelta(t, tt.scale, l.Scale, 1e-6)
		})
	}
}

func TestNewLetterboxErrors(t *testing.T) {
	_, err := NewLetterbox(0, 10, 32)
	require.Error(t, err)
	_, err = NewLetterbox(10, 10, 0)
	require.Error(t, err)
}

func TestApplyPadsWithFill(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	l, err := NewLetterbox(40, 20, 32)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 8, 32, 24), l.Rect())

	out := l.Apply(solid(40, 20, red), PadColor, draw.BiLinear)
	assert.Equal(t, image.Rect(0, 0, 32, 32), out.Bounds())
	assert.Equal(t, PadColor, out.RGBAAt(0, 0))
	assert.Equal(t, PadColor, out.RGBAAt(31, 31))
	assert.Equal(t, red, out.RGBAAt(16, 16))
}

func TestCHW(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 255, G: 0, B: 51, A: 255})
	img.SetRGBA(1, 0, color.RGBA{R: 0, G: 102, B: 255, A: 255})

	got := CHW(img)
	want := []float32{1, 0, 0, 0.4, 0.2, 1}
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-6, "index %d", i)
	}

	// Non-RGBA images take the generic path.
	gray := image.NewGray(image.Rect(0, 0, 1, 1))
	gray.SetGray(0, 0, color.Gray{Y: 51})
	assert.InDeltaSlice(t, []float32{0.2, 0.2, 0.2}, CHW(gray), 1e-6)
}

func TestCHWSubImage(t *testing.T) {
	img := solid(4, 4, color.RGBA{A: 255})
	img.SetRGBA(2, 2, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	sub := img.SubImage(image.Rect(2, 2, 4, 4))
	got := CHW(sub)
	require.Len(t, got, 12)
	assert.InDelta(t, 1, got[0], 1e-6)
	assert.InDelta(t, 0, got[1], 1e-6)
	assert.InDelta(t, 1, got[4], 1e-6)
	assert.InDelta(t, 1, got[8], 1e-6)
}

func TestDecode(t *testing.T) {
	data := encodePNG(t, solid(64, 32, color.RGBA{G: 255, A: 255}))

	in, err := Decode(bytes.NewReader(data), 32)
	require.NoError(t, err)
	assert.Equal(t, "png", in.Format)
	assert.Equal(t, 8, in.Box.YPad)
	require.Len(t, in.Pixels, Channels*32*32)

	plane := 32 * 32
	center := 16*32 + 16
	assert.InDelta(t, 0, in.Pixels[center], 1e-6)
	assert.InDelta(t, 1, in.Pixels[plane+center], 1e-6)
	assert.InDelta(t, 114.0/255, in.Pixels[plane], 1e-6)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(strings.NewReader("not an image"), 32)
	require.ErrorContains(t, err, "decode image")
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t, solid(16, 16, color.White)), 0o644))

	in, err := Open(path, 16)
	require.NoError(t, err)
	assert.Equal(t, 0, in.Box.XPad)
	assert.InDelta(t, 1, in.Pixels[0], 1e-6)

	_, err = Open(filepath.Join(t.TempDir(), "missing.png"), 16)
	require.Error(t, err)
}
