package textsteg

import (
	"fmt"
	"image"
	"image/color"
)

// Channel indices into a Pixel. The first three match algos.Channel.
const (
	Red   = 0
	Green = 1
	Blue  = 2
	Alpha = 3
)

const channelsPerPix = 4

// Pixel holds the four 8-bit channels of one pixel, indexed by Red, Green, Blue and Alpha.
type Pixel [channelsPerPix]uint8

func (p Pixel) String() string {
	return fmt.Sprintf("{A:%d R:%d G:%d B:%d}", p[Alpha], p[Red], p[Green], p[Blue])
}

// PixelSource is the read-only view of an image the codec works against.
type PixelSource interface {
	Width() int
	Height() int
	// ARGB returns the pixel at (x, y), where 0 <= x < Width() and 0 <= y < Height().
	ARGB(x, y int) Pixel
}

// Buffer is an in-memory, non-premultiplied grid of pixels.
type Buffer struct {
	w, h int
	pix  []Pixel
}

// NewBuffer returns a zeroed width x height buffer.
func NewBuffer(width, height int) *Buffer {
	if width < 0 || height < 0 {
		panic(fmt.Sprintf("textsteg: negative buffer dimensions %dx%d", width, height))
	}
	return &Buffer{w: width, h: height, pix: make([]Pixel, width*height)}
}

// CloneBuffer copies every pixel of src into a new Buffer.
func CloneBuffer(src PixelSource) *Buffer {
	if b, ok := src.(*Buffer); ok {
		dst := &Buffer{w: b.w, h: b.h, pix: make([]Pixel, len(b.pix))}
		copy(dst.pix, b.pix)
		return dst
	}

	dst := NewBuffer(src.Width(), src.Height())
	for y := 0; y < dst.h; y++ {
		for x := 0; x < dst.w; x++ {
			dst.pix[y*dst.w+x] = src.ARGB(x, y)
		}
	}
	return dst
}

func (b *Buffer) Width() int {
	return b.w
}

func (b *Buffer) Height() int {
	return b.h
}

func (b *Buffer) ARGB(x, y int) Pixel {
	return b.pix[b.offset(x, y)]
}

func (b *Buffer) SetARGB(x, y int, p Pixel) {
	b.pix[b.offset(x, y)] = p
}

// Fill sets every pixel of the buffer to p.
func (b *Buffer) Fill(p Pixel) {
	for i := range b.pix {
		b.pix[i] = p
	}
}

// Equal reports whether both buffers have the same dimensions and identical pixels.
func (b *Buffer) Equal(o *Buffer) bool {
	if b.w != o.w || b.h != o.h {
		return false
	}
	for i := range b.pix {
		if b.pix[i] != o.pix[i] {
			return false
		}
	}
	return true
}

// Opaque reports whether every pixel has an alpha of 0xff.
func (b *Buffer) Opaque() bool {
	for _, p := range b.pix {
		if p[Alpha] != 0xff {
			return false
		}
	}
	return true
}

func (b *Buffer) offset(x, y int) int {
	if x < 0 || x >= b.w || y < 0 || y >= b.h {
		panic(fmt.Sprintf("textsteg: pixel (%d, %d) is outside of a %dx%d buffer", x, y, b.w, b.h))
	}
	return y*b.w + x
}

// Conversion to and from the standard library's image types

// FromImage copies img into a new Buffer. The top-left of img's bounds becomes (0, 0).
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	buf := NewBuffer(bounds.Dx(), bounds.Dy())

	// NRGBA images store exactly the channel values we hide in, so read them directly
	if nimg, ok := img.(*image.NRGBA); ok {
		for y := 0; y < buf.h; y++ {
			for x := 0; x < buf.w; x++ {
				i := nimg.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
				buf.pix[y*buf.w+x] = Pixel{nimg.Pix[i], nimg.Pix[i+1], nimg.Pix[i+2], nimg.Pix[i+3]}
			}
		}
		return buf
	}

	for y := 0; y < buf.h; y++ {
		for x := 0; x < buf.w; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			buf.pix[y*buf.w+x] = Pixel{c.R, c.G, c.B, c.A}
		}
	}
	return buf
}

// Image returns a copy of the buffer as an *image.NRGBA anchored at (0, 0).
func (b *Buffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.w, b.h))
	for y := 0; y < b.h; y++ {
		for x := 0; x < b.w; x++ {
			p := b.pix[y*b.w+x]
			i := img.PixOffset(x, y)
			img.Pix[i] = p[Red]
			img.Pix[i+1] = p[Green]
			img.Pix[i+2] = p[Blue]
			img.Pix[i+3] = p[Alpha]
		}
	}
	return img
}
