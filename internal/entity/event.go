package entity

import "time"

const (
	EventStatusGenerated = "generated"
	EventStatusFailed    = "failed"
)

// TextureEvent is published after every generation attempt. It never carries
// the texture itself.
type TextureEvent struct {
	ID           string    `json:"id"`
	Description  string    `json:"description"`
	Status       string    `json:"status"`
	DurationMs   int64     `json:"duration_ms"`
	OpaquePixels int       `json:"opaque_pixels,omitempty"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
