package rembg

import (
	"context"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Flood removes a near-white background without an external service. It
// clears every near-white pixel reachable from the image border; white areas
// enclosed by the item itself are kept.
type Flood struct {
	// Tolerance is the per-channel distance from pure white still treated as
	// background.
	Tolerance uint8
}

func NewFlood(tolerance int) *Flood {
	if tolerance < 0 {
		tolerance = 0
	}
	if tolerance > 255 {
		tolerance = 255
	}
	return &Flood{Tolerance: uint8(tolerance)}
}

func (f *Flood) Name() string {
	return "flood"
}

func (f *Flood) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := imaging.Clone(img)
	w, h := out.Bounds().Dx(), out.Bounds().Dy()
	if w == 0 || h == 0 {
		return out, nil
	}

	visited := make([]bool, w*h)
	stack := make([]image.Point, 0, 2*(w+h))
	push := func(x, y int) {
		i := y*w + x
		if visited[i] {
			return
		}
		visited[i] = true
		if f.isBackground(out.NRGBAAt(x, y)) {
			stack = append(stack, image.Point{X: x, Y: y})
		}
	}

	for x := 0; x < w; x++ {
		push(x, 0)
		push(x, h-1)
	}
	for y := 0; y < h; y++ {
		push(0, y)
		push(w-1, y)
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out.SetNRGBA(p.X, p.Y, color.NRGBA{})

		if p.X > 0 {
			push(p.X-1, p.Y)
		}
		if p.X < w-1 {
			push(p.X+1, p.Y)
		}
		if p.Y > 0 {
			push(p.X, p.Y-1)
		}
		if p.Y < h-1 {
			push(p.X, p.Y+1)
		}
	}
	return out, nil
}

func (f *Flood) isBackground(c color.NRGBA) bool {
	if c.A == 0 {
		return true
	}
	floor := 255 - f.Tolerance
	return c.R >= floor && c.G >= floor && c.B >= floor
}
