package processing

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	lineThickness = 2
	labelOffset   = 10
)

var (
	faceColor  = color.RGBA{B: 255, A: 255}
	eyeColor   = color.RGBA{G: 255, A: 255}
	labelColor = color.RGBA{R: 255, G: 255, A: 255}
)

// Downscale returns a new zero-origin frame scaled by factor in both
// dimensions. Sizes are rounded and never drop below one pixel.
func Downscale(src *image.RGBA, factor float64) *image.RGBA {
	b := src.Bounds()

	w := max(1, int(math.Round(float64(b.Dx())*factor)))
	h := max(1, int(math.Round(float64(b.Dy())*factor)))

	if w == b.Dx() && h == b.Dy() {
		return cropRGBA(src, b)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)

	return dst
}

// Luma converts a colour frame to intensity using the same BT.601 weights
// OpenCV applies for its grayscale conversion.
func Luma(src *image.RGBA) *image.Gray {
	gray := image.NewGray(src.Bounds())
	draw.Draw(gray, gray.Bounds(), src, src.Bounds().Min, draw.Src)
	return gray
}

func cropRGBA(src *image.RGBA, r image.Rectangle) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), src, r.Min, draw.Src)
	return dst
}

func cropGray(src *image.Gray, r image.Rectangle) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), src, r.Min, draw.Src)
	return dst
}

// drawRect outlines r with lines grown inwards, clipped to img's bounds.
func drawRect(img *image.RGBA, r image.Rectangle, col color.RGBA, thickness int) {
	bounds := img.Bounds()

	setPixel := func(x, y int) {
		if image.Pt(x, y).In(bounds) {
			img.SetRGBA(x, y, col)
		}
	}

	x1, y1 := r.Min.X, r.Min.Y
	x2, y2 := r.Max.X-1, r.Max.Y-1

	for t := 0; t < thickness; t++ {
		for x := x1; x <= x2; x++ {
			setPixel(x, y1+t)
			setPixel(x, y2-t)
		}
		for y := y1; y <= y2; y++ {
			setPixel(x1+t, y)
			setPixel(x2-t, y)
		}
	}
}

// drawLabel writes text with its baseline starting at dot.
func drawLabel(img *image.RGBA, text string, dot image.Point, col color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(dot.X, dot.Y),
	}
	d.DrawString(text)
}
