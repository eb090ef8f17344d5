package entity

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackRGB(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    int32
	}{
		{name: "black", want: 0},
		{name: "white", r: 255, g: 255, b: 255, want: MaxPackedRGB},
		{name: "red", r: 255, want: 0xFF0000},
		{name: "mixed", r: 0x12, g: 0x34, b: 0x56, want: 0x123456},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PackRGB(tt.r, tt.g, tt.b))
		})
	}
}

func TestTextureBytesBigEndian(t *testing.T) {
	var tex Texture
	tex[0] = TransparentPixel
	tex[1] = 0x123456

	raw := tex.Bytes()
	require.Len(t, raw, TexturePixels*4)
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, raw[0:4])
	assert.Equal(t, []byte{0x00, 0x12, 0x34, 0x56}, raw[4:8])
	assert.Equal(t, []byte{0, 0, 0, 0}, raw[8:12])
}

func TestTextureBase64RoundTrip(t *testing.T) {
	var tex Texture
	for i := range tex {
		if i%3 == 0 {
			tex[i] = TransparentPixel
			continue
		}
		tex[i] = int32(i * 65793)
	}

	encoded := tex.Base64()
	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.Len(t, raw, 1024)

	decoded, err := DecodeTexture(encoded)
	require.NoError(t, err)
	assert.Equal(t, tex, *decoded)
	assert.Equal(t, encoded, decoded.Base64())
}

func TestDecodeTextureRejectsBadInput(t *testing.T) {
	_, err := DecodeTexture("!!not base64!!")
	assert.Error(t, err)

	_, err = DecodeTexture(base64.StdEncoding.EncodeToString(make([]byte, 12)))
	assert.Error(t, err)
}

func TestOpaquePixels(t *testing.T) {
	var tex Texture
	for i := range tex {
		tex[i] = TransparentPixel
	}
	assert.Equal(t, 0, tex.OpaquePixels())

	tex[10] = 0
	tex[20] = 0xABCDEF
	assert.Equal(t, 2, tex.OpaquePixels())
}
