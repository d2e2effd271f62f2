package corpus

import (
	"blockcolors/internal/colorspace"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Image is a linear RGBA float buffer. len(Pix) is always Width*Height*4.
type Image struct {
	Width  int
	Height int
	Pix    []float32
}

var ErrPixelBufferSize = errors.New("pixel buffer does not match image dimensions")

func NewImage(width int, height int) Image {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return Image{Width: width, Height: height, Pix: make([]float32, width*height*4)}
}

func (img Image) Valid() bool {
	return img.Width >= 0 && img.Height >= 0 && len(img.Pix) == img.Width*img.Height*4
}

func (img Image) Empty() bool {
	return img.Width == 0 || img.Height == 0
}

// At returns the color and alpha of a pixel. Coordinates are not checked.
func (img Image) At(x int, y int) (colorspace.Vec3, float64) {
	offset := (y*img.Width + x) * 4
	return colorspace.Vec3{
		float64(img.Pix[offset]),
		float64(img.Pix[offset+1]),
		float64(img.Pix[offset+2]),
	}, float64(img.Pix[offset+3])
}

func (img Image) Set(x int, y int, color colorspace.Vec3, alpha float64) {
	offset := (y*img.Width + x) * 4
	img.Pix[offset] = float32(color[0])
	img.Pix[offset+1] = float32(color[1])
	img.Pix[offset+2] = float32(color[2])
	img.Pix[offset+3] = float32(alpha)
}

func (img Image) Clone() Image {
	pix := make([]float32, len(img.Pix))
	copy(pix, img.Pix)
	return Image{Width: img.Width, Height: img.Height, Pix: pix}
}

// Pixel formats stored in the pixel_format column of the texture tables.
const (
	PixelFormatFloat32 = "rgba32f"
	PixelFormatUint8   = "rgba8"
)

// EncodeFloat32 packs the buffer as little-endian float32 values.
func EncodeFloat32(img Image) []byte {
	out := make([]byte, len(img.Pix)*4)
	for i, value := range img.Pix {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(value))
	}
	return out
}

// DecodePixels rebuilds an image from a stored blob. rgba8 blobs hold sRGB
// encoded bytes and are linearized on the way in.
func DecodePixels(width int, height int, format string, data []byte) (Image, error) {
	img := NewImage(width, height)
	pixels := width * height

	switch format {
	case PixelFormatFloat32, "":
		if len(data) != pixels*16 {
			return Image{}, fmt.Errorf("decode %dx%d %s: %w", width, height, PixelFormatFloat32, ErrPixelBufferSize)
		}
		for i := range img.Pix {
			img.Pix[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
		}
	case PixelFormatUint8:
		if len(data) != pixels*4 {
			return Image{}, fmt.Errorf("decode %dx%d %s: %w", width, height, PixelFormatUint8, ErrPixelBufferSize)
		}
		for i := 0; i < pixels; i++ {
			offset := i * 4
			img.Pix[offset] = float32(colorspace.SRGB8ToLinear(data[offset]))
			img.Pix[offset+1] = float32(colorspace.SRGB8ToLinear(data[offset+1]))
			img.Pix[offset+2] = float32(colorspace.SRGB8ToLinear(data[offset+2]))
			img.Pix[offset+3] = float32(data[offset+3]) / 255
		}
	default:
		return Image{}, fmt.Errorf("unknown pixel format %q", format)
	}

	return img, nil
}
