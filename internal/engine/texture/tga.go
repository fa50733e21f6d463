package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

const (
	tgaTypeUncompressed      = 2
	tgaTypeGray              = 3
	tgaTypeRLE               = 10
	tgaTypeRLEGray           = 11
	tgaHeaderSize            = 18
	tgaDescriptorAlphaBits   = 0x0F
	tgaDescriptorRightLeft   = 0x10
	tgaDescriptorTopToBottom = 0x20
)

// TGA decoding errors.
var (
	ErrTGAUnsupported = errors.New("unsupported TGA")
	ErrTGATruncated   = errors.New("TGA data truncated")
)

// tgaFileHeader is the fixed 18-byte TGA header. Color map fields are not
// kept because color-mapped files are rejected.
type tgaFileHeader struct {
	idLength     int
	colorMapType byte
	imageType    byte
	width        int
	height       int
	bpp          int
	descriptor   byte
}

func parseTGAHeader(data []byte) (tgaFileHeader, error) {
	if len(data) < tgaHeaderSize {
		return tgaFileHeader{}, fmt.Errorf("%w: header is %d bytes", ErrTGATruncated, len(data))
	}
	return tgaFileHeader{
		idLength:     int(data[0]),
		colorMapType: data[1],
		imageType:    data[2],
		width:        int(data[12]) | int(data[13])<<8,
		height:       int(data[14]) | int(data[15])<<8,
		bpp:          int(data[16]),
		descriptor:   data[17],
	}, nil
}

func (h tgaFileHeader) gray() bool {
	return h.imageType == tgaTypeGray || h.imageType == tgaTypeRLEGray
}

func (h tgaFileHeader) rle() bool {
	return h.imageType == tgaTypeRLE || h.imageType == tgaTypeRLEGray
}

// hasAlpha reports whether the fourth channel carries alpha. A 32-bit file
// that declares zero alpha bits is decoded as opaque.
func (h tgaFileHeader) hasAlpha() bool {
	return h.bpp == 32 && h.descriptor&tgaDescriptorAlphaBits != 0
}

func (h tgaFileHeader) validate() error {
	if h.colorMapType != 0 {
		return fmt.Errorf("%w: color-mapped", ErrTGAUnsupported)
	}
	switch h.imageType {
	case tgaTypeUncompressed, tgaTypeRLE:
		if h.bpp != 24 && h.bpp != 32 {
			return fmt.Errorf("%w: %d-bit true-color", ErrTGAUnsupported, h.bpp)
		}
	case tgaTypeGray, tgaTypeRLEGray:
		if h.bpp != 8 {
			return fmt.Errorf("%w: %d-bit grayscale", ErrTGAUnsupported, h.bpp)
		}
	default:
		return fmt.Errorf("%w: image type %d", ErrTGAUnsupported, h.imageType)
	}
	return nil
}

// DecodeTGA decodes true-color (types 2 and 10) and 8-bit grayscale
// (types 3 and 11) TGA files, raw or RLE. Grayscale is expanded to RGB so
// height maps share the normal map upload path.
func DecodeTGA(data []byte) (image.Image, error) {
	h, err := parseTGAHeader(data)
	if err != nil {
		return nil, err
	}
	if err := h.validate(); err != nil {
		return nil, err
	}

	offset := tgaHeaderSize + h.idLength
	if offset > len(data) {
		return nil, fmt.Errorf("%w: image ID", ErrTGATruncated)
	}

	d := &tgaDecoder{hdr: h, src: data[offset:], bytesPerPixel: h.bpp / 8}
	img := image.NewRGBA(image.Rect(0, 0, h.width, h.height))

	total := h.width * h.height
	for n := 0; n < total; {
		run, repeat, err := d.packet()
		if err != nil {
			return nil, err
		}
		var c color.RGBA
		for i := 0; i < run && n < total; i++ {
			if i == 0 || !repeat {
				if c, err = d.pixel(); err != nil {
					return nil, err
				}
			}
			x, y := d.position(n)
			img.SetRGBA(x, y, c)
			n++
		}
	}

	return img, nil
}

// tgaDecoder walks the pixel stream. Uncompressed data is treated as one
// raw packet covering the whole image.
type tgaDecoder struct {
	hdr           tgaFileHeader
	src           []byte
	pos           int
	bytesPerPixel int
}

// packet returns the number of pixels in the next packet and whether they
// repeat a single value.
func (d *tgaDecoder) packet() (int, bool, error) {
	if !d.hdr.rle() {
		return d.hdr.width * d.hdr.height, false, nil
	}
	if d.pos >= len(d.src) {
		return 0, false, fmt.Errorf("%w: RLE packet header", ErrTGATruncated)
	}
	p := d.src[d.pos]
	d.pos++
	return int(p&0x7F) + 1, p&0x80 != 0, nil
}

func (d *tgaDecoder) pixel() (color.RGBA, error) {
	if d.pos+d.bytesPerPixel > len(d.src) {
		return color.RGBA{}, fmt.Errorf("%w: pixel data", ErrTGATruncated)
	}
	px := d.src[d.pos : d.pos+d.bytesPerPixel]
	d.pos += d.bytesPerPixel

	if d.hdr.gray() {
		return color.RGBA{R: px[0], G: px[0], B: px[0], A: 255}, nil
	}
	c := color.RGBA{R: px[2], G: px[1], B: px[0], A: 255}
	if d.hdr.hasAlpha() {
		c.A = px[3]
	}
	return c, nil
}

// position maps the n-th stored pixel to image coordinates using the
// descriptor's origin bits.
func (d *tgaDecoder) position(n int) (int, int) {
	w, h := d.hdr.width, d.hdr.height
	x, y := n%w, n/w
	if d.hdr.descriptor&tgaDescriptorRightLeft != 0 {
		x = w - 1 - x
	}
	if d.hdr.descriptor&tgaDescriptorTopToBottom == 0 {
		y = h - 1 - y
	}
	return x, y
}
