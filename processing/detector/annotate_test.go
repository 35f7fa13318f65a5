package processing

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDownscale(t *testing.T) {
	src := solidFrame(100, 50)

	dst := Downscale(src, 0.6)
	require.Equal(t, image.Rect(0, 0, 60, 30), dst.Bounds())
	px := dst.RGBAAt(30, 15)
	require.InDelta(t, int(background.R), int(px.R), 1)
	require.InDelta(t, int(background.B), int(px.B), 1)

	tiny := Downscale(solidFrame(1, 1), 0.1)
	require.Equal(t, image.Rect(0, 0, 1, 1), tiny.Bounds())
}

func TestDownscaleAtFullScaleCopies(t *testing.T) {
	src := solidFrame(8, 8)

	dst := Downscale(src, 1)
	dst.SetRGBA(0, 0, faceColor)

	require.Equal(t, background, src.RGBAAt(0, 0))
}

func TestLuma(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 1))
	src.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	src.SetRGBA(1, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	src.SetRGBA(2, 0, color.RGBA{A: 255})

	gray := Luma(src)

	require.Equal(t, uint8(76), gray.GrayAt(0, 0).Y)
	require.Equal(t, uint8(255), gray.GrayAt(1, 0).Y)
	require.Equal(t, uint8(0), gray.GrayAt(2, 0).Y)
}

func TestCropGrayIsZeroOrigin(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 10, 10))
	gray.SetGray(4, 5, color.Gray{Y: 200})

	crop := cropGray(gray, image.Rect(4, 5, 8, 9))

	require.Equal(t, image.Rect(0, 0, 4, 4), crop.Bounds())
	require.Equal(t, uint8(200), crop.GrayAt(0, 0).Y)
}

func TestDrawRectClipsToSubImage(t *testing.T) {
	img := solidFrame(20, 20)
	region := img.SubImage(image.Rect(5, 5, 15, 15)).(*image.RGBA)

	drawRect(region, image.Rect(10, 10, 30, 30), eyeColor, 1)

	require.Equal(t, eyeColor, img.RGBAAt(10, 10))
	require.Equal(t, eyeColor, img.RGBAAt(14, 10))
	require.Equal(t, background, img.RGBAAt(15, 10))
	require.Equal(t, background, img.RGBAAt(10, 15))
}
