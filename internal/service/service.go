package service

import (
	"context"
	"time"

	"github.com/ds124wfegd/itemtexture/internal/entity"
	"github.com/ds124wfegd/itemtexture/internal/pkg/backend"
	"github.com/ds124wfegd/itemtexture/internal/pkg/lock"
	"github.com/ds124wfegd/itemtexture/internal/pkg/processor"
	"github.com/ds124wfegd/itemtexture/internal/pkg/rembg"
)

type TextureService interface {
	GenerateTexture(ctx context.Context, req *GenerateRequest) (*entity.Texture, error)
}

// EventPublisher receives one event per generation attempt.
type EventPublisher interface {
	Publish(ctx context.Context, event *entity.TextureEvent) error
}

type GenerateRequest struct {
	ID          string
	Description string
}

// GenerationSettings are fixed for the lifetime of the process.
type GenerationSettings struct {
	PromptPrefix  string
	PromptSuffix  string
	GuidanceScale float64
	Width         int
	Height        int
	Steps         int
	Timeout       time.Duration
}

type textureService struct {
	backend   backend.Backend
	remover   rembg.Remover
	processor processor.TextureProcessor
	locker    lock.Locker
	events    EventPublisher
	settings  GenerationSettings
}

func NewTextureService(
	b backend.Backend,
	r rembg.Remover,
	p processor.TextureProcessor,
	l lock.Locker,
	events EventPublisher,
	settings GenerationSettings,
) TextureService {
	return &textureService{
		backend:   b,
		remover:   r,
		processor: p,
		locker:    l,
		events:    events,
		settings:  settings,
	}
}
