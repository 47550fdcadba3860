package assets

import (
	"errors"
	"fmt"
	"image"
	"io"
)

// TGA image types.
const (
	tgaTrueColor    = 2
	tgaTrueColorRLE = 10
)

const tgaHeaderSize = 18

var errTGATruncated = errors.New("tga: pixel data truncated")

// DecodeTGA decodes an uncompressed or RLE compressed true-colour TGA
// image with 24 or 32 bits per pixel.
func DecodeTGA(r io.Reader) (*image.RGBA, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) < tgaHeaderSize {
		return nil, fmt.Errorf("tga: header truncated (%d bytes)", len(data))
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	// Bit 5 of the descriptor is set when rows are stored top to bottom.
	topToBottom := data[17]&0x20 != 0

	switch {
	case colorMapType != 0:
		return nil, errors.New("tga: color-mapped images not supported")
	case imageType != tgaTrueColor && imageType != tgaTrueColorRLE:
		return nil, fmt.Errorf("tga: unsupported image type %d", imageType)
	case bpp != 24 && bpp != 32:
		return nil, fmt.Errorf("tga: unsupported bit depth %d", bpp)
	case width == 0 || height == 0:
		return nil, fmt.Errorf("tga: empty image %dx%d", width, height)
	}

	offset := tgaHeaderSize + idLength
	if offset > len(data) {
		return nil, errTGATruncated
	}

	d := tgaDecoder{
		img:         image.NewRGBA(image.Rect(0, 0, width, height)),
		src:         data[offset:],
		bpp:         bpp / 8,
		topToBottom: topToBottom,
	}
	if imageType == tgaTrueColor {
		err = d.raw(width * height)
	} else {
		err = d.rle()
	}
	if err != nil {
		return nil, err
	}
	return d.img, nil
}

type tgaDecoder struct {
	img         *image.RGBA
	src         []byte
	bpp         int
	topToBottom bool
	pixel       int
}

// next reads one BGR(A) pixel.
func (d *tgaDecoder) next() ([4]byte, error) {
	if len(d.src) < d.bpp {
		return [4]byte{}, errTGATruncated
	}
	p := [4]byte{d.src[2], d.src[1], d.src[0], 0xff}
	if d.bpp == 4 {
		p[3] = d.src[3]
	}
	d.src = d.src[d.bpp:]
	return p, nil
}

// put stores p at the current pixel and advances.
func (d *tgaDecoder) put(p [4]byte) {
	w, h := d.img.Rect.Dx(), d.img.Rect.Dy()
	x, y := d.pixel%w, d.pixel/w
	if !d.topToBottom {
		y = h - 1 - y
	}
	copy(d.img.Pix[d.img.PixOffset(x, y):], p[:])
	d.pixel++
}

func (d *tgaDecoder) raw(n int) error {
	for i := 0; i < n; i++ {
		p, err := d.next()
		if err != nil {
			return err
		}
		d.put(p)
	}
	return nil
}

func (d *tgaDecoder) rle() error {
	total := d.img.Rect.Dx() * d.img.Rect.Dy()
	for d.pixel < total {
		if len(d.src) == 0 {
			return errTGATruncated
		}
		packet := d.src[0]
		d.src = d.src[1:]
		count := min(int(packet&0x7f)+1, total-d.pixel)

		if packet&0x80 == 0 {
			if err := d.raw(count); err != nil {
				return err
			}
			continue
		}
		p, err := d.next()
		if err != nil {
			return err
		}
		for i := 0; i < count; i++ {
			d.put(p)
		}
	}
	return nil
}
