package backend

import (
	"context"
	"fmt"
	"image"

	"github.com/ds124wfegd/itemtexture/internal/entity"
	"github.com/ds124wfegd/itemtexture/internal/pkg/processor"
	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini generates item pictures with a Gemini image model. Sampling
// parameters other than the prompt are not exposed by the API; the pipeline
// resizes whatever size comes back.
type Gemini struct {
	models contentGenerator
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini backend: api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini backend: %w", err)
	}
	return &Gemini{models: client.Models, model: model}, nil
}

func (g *Gemini) Name() string {
	return "gemini"
}

func (g *Gemini) Generate(ctx context.Context, req Request) (image.Image, error) {
	result, err := g.models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			img, format, err := processor.DecodeImage(part.InlineData.Data)
			if err != nil {
				return nil, err
			}
			logrus.WithFields(logrus.Fields{
				"backend": g.Name(),
				"model":   g.model,
				"mime":    part.InlineData.MIMEType,
				"format":  format,
			}).Debug("gemini image received")
			return img, nil
		}
	}
	return nil, entity.ErrNoImage
}
