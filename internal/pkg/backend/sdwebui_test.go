package backend

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ds124wfegd/itemtexture/internal/entity"
	"github.com/ds124wfegd/itemtexture/internal/pkg/processor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	data, err := processor.EncodePNG(img)
	require.NoError(t, err)
	return data
}

func TestSDWebUIGenerate(t *testing.T) {
	pngData := testPNG(t, 256, 256)

	var got txt2imgRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, txt2imgPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"images": []string{base64.StdEncoding.EncodeToString(pngData)},
			"info":   "{}",
		})
	}))
	defer srv.Close()

	sd := NewSDWebUI(SDWebUIOptions{
		BaseURL:     srv.URL + "/",
		LoraName:    "Plixel-SD-1.5",
		LoraWeight:  1,
		SamplerName: "Euler a",
		Timeout:     5 * time.Second,
	})

	img, err := sd.Generate(context.Background(), Request{
		Prompt:        "Minecraft item, sword white background.",
		GuidanceScale: 8,
		Width:         256,
		Height:        256,
		Steps:         20,
	})
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())

	assert.Equal(t, "Minecraft item, sword white background. <lora:Plixel-SD-1.5:1>", got.Prompt)
	assert.Equal(t, int64(-1), got.Seed)
	assert.Equal(t, 20, got.Steps)
	assert.Equal(t, 8.0, got.CFGScale)
	assert.Equal(t, 256, got.Width)
	assert.Equal(t, 256, got.Height)
	assert.Equal(t, "Euler a", got.SamplerName)
	assert.Equal(t, 1, got.BatchSize)
}

func TestSDWebUIGenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		target  error
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "CUDA out of memory", http.StatusInternalServerError)
			},
			target: entity.ErrBackendStatus,
		},
		{
			name: "no images",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"images": []}`))
			},
			target: entity.ErrNoImage,
		},
		{
			name: "garbage image",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"images": ["aGVsbG8="]}`))
			},
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"images": `))
			},
		},
		{
			name: "not base64",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"images": ["%%%"]}`))
			},
		},
		{
			name: "bad request",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"detail":"unknown sampler"}`, http.StatusUnprocessableEntity)
			},
			target: entity.ErrBackendStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			sd := NewSDWebUI(SDWebUIOptions{BaseURL: srv.URL, Timeout: 5 * time.Second})
			img, err := sd.Generate(context.Background(), Request{Prompt: "x", Width: 256, Height: 256, Steps: 20})

			require.Error(t, err)
			assert.Nil(t, img)
			if tt.target != nil {
				assert.True(t, errors.Is(err, tt.target), "got %v", err)
			}
		})
	}
}

func TestSDWebUIPromptWithoutLora(t *testing.T) {
	sd := NewSDWebUI(SDWebUIOptions{})
	assert.Equal(t, "plain", sd.prompt("plain"))

	sd = NewSDWebUI(SDWebUIOptions{LoraName: "pix", LoraWeight: 0.75})
	assert.Equal(t, "plain <lora:pix:0.75>", sd.prompt("plain"))
}

func TestSDWebUIPing(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, sdModelsPath, r.URL.Path)
		w.Write([]byte(`[]`))
	}))
	defer healthy.Close()
	assert.NoError(t, NewSDWebUI(SDWebUIOptions{BaseURL: healthy.URL}).Ping(context.Background()))

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer broken.Close()
	assert.ErrorIs(t, NewSDWebUI(SDWebUIOptions{BaseURL: broken.URL}).Ping(context.Background()), entity.ErrBackendStatus)
}
