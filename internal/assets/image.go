package assets

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // GIF decoder registration
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration
	"io"

	_ "golang.org/x/image/bmp"  // BMP decoder registration
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// DecodeImage decodes any registered image format into a tightly packed
// RGBA image whose bounds start at the origin.
func DecodeImage(r io.Reader) (*image.RGBA, string, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, "", err
	}
	return ToRGBA(src), format, nil
}

// ToRGBA converts img to RGBA, copying it unless it is already a
// tightly packed RGBA image at the origin.
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) && rgba.Stride == 4*b.Dx() {
		return rgba
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// FitImage scales img down so that neither side exceeds maxSize,
// keeping the aspect ratio. Smaller images are returned unchanged.
func FitImage(img *image.RGBA, maxSize int) *image.RGBA {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w <= maxSize && h <= maxSize {
		return img
	}
	nw, nh := maxSize, maxSize
	if w > h {
		nh = max(1, h*maxSize/w)
	} else {
		nw = max(1, w*maxSize/h)
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Rect, draw.Src, nil)
	return dst
}

// Checkerboard returns a size x size texture of cells x cells squares
// alternating between a and b.
func Checkerboard(size, cells int, a, b color.RGBA) (*image.RGBA, error) {
	if size <= 0 || cells <= 0 || cells > size {
		return nil, fmt.Errorf("assets: invalid checkerboard %d px / %d cells", size, cells)
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := a
			if (x*cells/size+y*cells/size)%2 == 1 {
				c = b
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img, nil
}
