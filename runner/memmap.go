package runner

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Colours used by MemoryImage.
var (
	ZeroColor = color.RGBA{0x10, 0x10, 0x18, 0xff}
	PCColor   = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

// MemoryImage renders mem as a square image with one pixel per word, in
// row-major order. Zero words are dark, positive words green and negative
// words red, brighter for larger magnitudes. The word at pc is white.
// Pixels past the end of memory are transparent.
func MemoryImage(mem []int, pc int) *image.RGBA {
	side := int(math.Ceil(math.Sqrt(float64(len(mem)))))
	if side == 0 {
		side = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, side, side))
	for i, v := range mem {
		c := wordColor(v)
		if i == pc {
			c = PCColor
		}
		img.SetRGBA(i%side, i/side, c)
	}
	return img
}

func wordColor(v int) color.RGBA {
	if v == 0 {
		return ZeroColor
	}
	mag := math.Abs(float64(v))
	// 1 maps to 0x40, 1e9 and above to 0xff.
	b := 0x40 + math.Min(math.Log10(mag)/9, 1)*0xbf
	if v > 0 {
		return color.RGBA{0x20, uint8(b), 0x20, 0xff}
	}
	return color.RGBA{uint8(b), 0x20, 0x20, 0xff}
}

// ScaleImage returns src enlarged by factor using nearest-neighbour
// interpolation, so that each word remains a crisp square.
func ScaleImage(src *image.RGBA, factor int) *image.RGBA {
	if factor <= 1 {
		return src
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}
