package entity

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

const (
	TextureSide    = 16
	TexturePixels  = TextureSide * TextureSide
	AlphaThreshold = 10
)

const (
	// TransparentPixel marks a pixel whose alpha is below AlphaThreshold.
	TransparentPixel int32 = -1
	MaxPackedRGB     int32 = 0xFFFFFF
)

// Texture is a 16x16 item icon, one packed 0xRRGGBB value or -1 per pixel.
// Index i holds row i/16, column i%16.
type Texture [TexturePixels]int32

// PackRGB packs a colour the way the game client expects it.
func PackRGB(r, g, b uint8) int32 {
	return int32(r)<<16 | int32(g)<<8 | int32(b)
}

// Bytes encodes the texture as 256 big-endian 32-bit signed integers.
func (t *Texture) Bytes() []byte {
	buf := make([]byte, 0, TexturePixels*4)
	for _, v := range t {
		buf = binary.BigEndian.AppendUint32(buf, uint32(v))
	}
	return buf
}

// Base64 is the wire form used in GenerateResponse.Image.
func (t *Texture) Base64() string {
	return base64.StdEncoding.EncodeToString(t.Bytes())
}

// DecodeTexture is the inverse of Texture.Base64.
func DecodeTexture(s string) (*Texture, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode texture: %w", err)
	}
	if len(raw) != TexturePixels*4 {
		return nil, fmt.Errorf("decode texture: got %d bytes, want %d", len(raw), TexturePixels*4)
	}

	var t Texture
	for i := range t {
		t[i] = int32(binary.BigEndian.Uint32(raw[i*4:]))
	}
	return &t, nil
}

// OpaquePixels counts entries that are not TransparentPixel.
func (t *Texture) OpaquePixels() int {
	n := 0
	for _, v := range t {
		if v != TransparentPixel {
			n++
		}
	}
	return n
}
