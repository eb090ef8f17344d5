// Package rembg strips the background off a generated item picture.
package rembg

import (
	"context"
	"image"
)

type Remover interface {
	Remove(ctx context.Context, img image.Image) (image.Image, error)
	Name() string
}
