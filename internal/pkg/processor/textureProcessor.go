package processor

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/ds124wfegd/itemtexture/internal/entity"
	_ "golang.org/x/image/webp"
)

// TextureProcessor turns a background-free raster into the packed 16x16 texture.
type TextureProcessor interface {
	Process(img image.Image) *entity.Texture
}

type textureProcessor struct {
	filter imaging.ResampleFilter
}

// NewTextureProcessor resizes with a bicubic filter, matching the PIL default.
func NewTextureProcessor() TextureProcessor {
	return &textureProcessor{filter: imaging.CatmullRom}
}

func (p *textureProcessor) Process(img image.Image) *entity.Texture {
	small := p.resize(img)

	var texture entity.Texture
	i := 0
	for x := 0; x < entity.TextureSide; x++ {
		for y := 0; y < entity.TextureSide; y++ {
			// column y, row x: the client reads the array row-major
			texture[i] = packPixel(small.NRGBAAt(y, x))
			i++
		}
	}
	return &texture
}

func (p *textureProcessor) resize(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() == entity.TextureSide && b.Dy() == entity.TextureSide {
		return imaging.Clone(img)
	}
	return imaging.Resize(img, entity.TextureSide, entity.TextureSide, p.filter)
}

func packPixel(c color.NRGBA) int32 {
	if c.A < entity.AlphaThreshold {
		return entity.TransparentPixel
	}
	return entity.PackRGB(c.R, c.G, c.B)
}

// DecodeImage decodes PNG, JPEG, GIF (first frame) and WebP payloads.
func DecodeImage(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// EncodePNG is the interchange format for remote collaborators.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
