package service

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/ds124wfegd/itemtexture/internal/entity"
	"github.com/ds124wfegd/itemtexture/internal/pkg/backend"
	"github.com/sirupsen/logrus"
)

// BuildPrompt concatenates prefix, description and suffix verbatim.
func (s GenerationSettings) BuildPrompt(description string) string {
	return s.PromptPrefix + description + s.PromptSuffix
}

func (s *textureService) GenerateTexture(ctx context.Context, req *GenerateRequest) (*entity.Texture, error) {
	start := time.Now()
	log := logrus.WithFields(logrus.Fields{
		"request_id":  req.ID,
		"description": req.Description,
		"backend":     s.backend.Name(),
	})
	log.Info("Requesting texture")

	if s.settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.settings.Timeout)
		defer cancel()
	}

	texture, err := s.generate(ctx, req.Description)
	duration := time.Since(start)

	event := &entity.TextureEvent{
		ID:          req.ID,
		Description: req.Description,
		DurationMs:  duration.Milliseconds(),
		CreatedAt:   time.Now().UTC(),
	}
	if err != nil {
		event.Status = entity.EventStatusFailed
		event.Error = err.Error()
		s.publish(ctx, event)
		return nil, fmt.Errorf("%w: %w", entity.ErrGeneration, err)
	}

	event.Status = entity.EventStatusGenerated
	event.OpaquePixels = texture.OpaquePixels()
	s.publish(ctx, event)

	log.WithFields(logrus.Fields{
		"duration":      duration,
		"opaque_pixels": event.OpaquePixels,
	}).Info("Texture generated")
	return texture, nil
}

func (s *textureService) generate(ctx context.Context, description string) (*entity.Texture, error) {
	img, err := s.infer(ctx, description)
	if err != nil {
		return nil, err
	}
	return s.processor.Process(img), nil
}

// infer runs the backend and the remover under the backend lock.
func (s *textureService) infer(ctx context.Context, description string) (image.Image, error) {
	release, err := s.locker.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("waiting for backend: %w", err)
	}
	defer release()

	img, err := s.backend.Generate(ctx, backend.Request{
		Prompt:        s.settings.BuildPrompt(description),
		GuidanceScale: s.settings.GuidanceScale,
		Width:         s.settings.Width,
		Height:        s.settings.Height,
		Steps:         s.settings.Steps,
	})
	if err != nil {
		return nil, fmt.Errorf("backend %s: %w", s.backend.Name(), err)
	}

	img, err = s.remover.Remove(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("remover %s: %w", s.remover.Name(), err)
	}
	return img, nil
}

func (s *textureService) publish(ctx context.Context, event *entity.TextureEvent) {
	if s.events == nil {
		return
	}
	// the caller may already be gone; the event still describes what happened
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.events.Publish(ctx, event); err != nil {
		logrus.WithError(err).WithField("request_id", event.ID).Warn("failed to publish texture event")
	}
}
