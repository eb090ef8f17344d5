// Package backend talks to the text-to-image model that draws the raw item
// picture.
package backend

import (
	"context"
	"image"
)

// Request carries the sampling parameters of a single generation. There is
// no seed: every call is expected to produce a different picture.
type Request struct {
	Prompt        string
	GuidanceScale float64
	Width         int
	Height        int
	Steps         int
}

type Backend interface {
	Generate(ctx context.Context, req Request) (image.Image, error)
	Name() string
}
