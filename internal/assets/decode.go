package assets

import (
	"blockcolors/internal/colorspace"
	"blockcolors/internal/corpus"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "github.com/gen2brain/avif"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// DecodeMode selects how texture pixels are stored.
type DecodeMode int

const (
	// DecodeFloat stores little-endian float32 linear RGBA.
	DecodeFloat DecodeMode = iota
	// DecodeBytes stores the file's 8-bit sRGB RGBA as is.
	DecodeBytes
)

func (m DecodeMode) PixelFormat() string {
	if m == DecodeBytes {
		return corpus.PixelFormatUint8
	}
	return corpus.PixelFormatFloat32
}

// DecodedTexture is a texture ready for the texture tables.
type DecodedTexture struct {
	Width  int
	Height int
	Format string
	Data   []byte
}

func decodeNRGBA(path string) (*image.NRGBA, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer file.Close()

	src, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", path, err)
	}

	if nrgba, ok := src.(*image.NRGBA); ok && nrgba.Rect.Min == (image.Point{}) {
		return nrgba, nil
	}
	bounds := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)
	return dst, nil
}

// DecodeTexture reads an image file into the pixel layout selected by mode.
func DecodeTexture(path string, mode DecodeMode) (DecodedTexture, error) {
	img, err := decodeNRGBA(path)
	if err != nil {
		return DecodedTexture{}, err
	}

	width, height := img.Rect.Dx(), img.Rect.Dy()
	raw := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		copy(raw[y*width*4:(y+1)*width*4], img.Pix[y*img.Stride:y*img.Stride+width*4])
	}

	texture := DecodedTexture{Width: width, Height: height, Format: mode.PixelFormat()}
	if mode == DecodeBytes {
		texture.Data = raw
		return texture, nil
	}

	linear := corpus.NewImage(width, height)
	for i := 0; i < width*height; i++ {
		offset := i * 4
		linear.Pix[offset] = float32(colorspace.SRGB8ToLinear(raw[offset]))
		linear.Pix[offset+1] = float32(colorspace.SRGB8ToLinear(raw[offset+1]))
		linear.Pix[offset+2] = float32(colorspace.SRGB8ToLinear(raw[offset+2]))
		linear.Pix[offset+3] = float32(raw[offset+3]) / 255
	}
	texture.Data = corpus.EncodeFloat32(linear)
	return texture, nil
}
