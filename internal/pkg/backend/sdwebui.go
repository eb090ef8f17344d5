package backend

import (
	"context"
	"fmt"
	"image"
	"strconv"
	"strings"
	"time"

	"github.com/ds124wfegd/itemtexture/internal/entity"
	"github.com/ds124wfegd/itemtexture/internal/pkg/processor"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const (
	txt2imgPath  = "/sdapi/v1/txt2img"
	sdModelsPath = "/sdapi/v1/sd-models"
)

type SDWebUIOptions struct {
	BaseURL     string
	LoraName    string
	LoraWeight  float64
	SamplerName string
	Timeout     time.Duration
}

// SDWebUI drives a Stable Diffusion WebUI (Automatic1111 API). The pixel-art
// LoRA is selected through the prompt, so the weight file must be present in
// the WebUI's models/Lora directory.
type SDWebUI struct {
	opts   SDWebUIOptions
	client *resty.Client
}

type txt2imgRequest struct {
	Prompt      string  `json:"prompt"`
	Seed        int64   `json:"seed"`
	Steps       int     `json:"steps"`
	CFGScale    float64 `json:"cfg_scale"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	SamplerName string  `json:"sampler_name,omitempty"`
	BatchSize   int     `json:"batch_size"`
	NIter       int     `json:"n_iter"`
}

// Images are base64 PNGs; encoding/json decodes them straight into bytes.
type txt2imgResponse struct {
	Images [][]byte `json:"images"`
}

func NewSDWebUI(opts SDWebUIOptions) *SDWebUI {
	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetLogger(logrus.StandardLogger())

	return &SDWebUI{opts: opts, client: client}
}

func (s *SDWebUI) Name() string {
	return "sdwebui"
}

func (s *SDWebUI) Generate(ctx context.Context, req Request) (image.Image, error) {
	payload := txt2imgRequest{
		Prompt:      s.prompt(req.Prompt),
		Seed:        -1,
		Steps:       req.Steps,
		CFGScale:    req.GuidanceScale,
		Width:       req.Width,
		Height:      req.Height,
		SamplerName: s.opts.SamplerName,
		BatchSize:   1,
		NIter:       1,
	}

	var out txt2imgResponse
	start := time.Now()
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&out).
		ForceContentType("application/json").
		Post(txt2imgPath)
	if err != nil {
		return nil, fmt.Errorf("txt2img request failed: %w", err)
	}
	if err := checkStatus("txt2img", resp); err != nil {
		return nil, err
	}
	if len(out.Images) == 0 || len(out.Images[0]) == 0 {
		return nil, entity.ErrNoImage
	}

	img, format, err := processor.DecodeImage(out.Images[0])
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"backend":  s.Name(),
		"format":   format,
		"bytes":    len(out.Images[0]),
		"duration": time.Since(start),
	}).Debug("txt2img image received")
	return img, nil
}

// Ping checks that the WebUI API is up and has models loaded.
func (s *SDWebUI) Ping(ctx context.Context) error {
	resp, err := s.client.R().SetContext(ctx).Get(sdModelsPath)
	if err != nil {
		return err
	}
	return checkStatus("sd-models", resp)
}

func checkStatus(call string, resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	body := resp.String()
	if len(body) > 4<<10 {
		body = body[:4<<10]
	}
	return fmt.Errorf("%w: %s HTTP %d: %s", entity.ErrBackendStatus, call, resp.StatusCode(), strings.TrimSpace(body))
}

func (s *SDWebUI) prompt(p string) string {
	if s.opts.LoraName == "" {
		return p
	}
	weight := s.opts.LoraWeight
	if weight == 0 {
		weight = 1
	}
	return p + " <lora:" + s.opts.LoraName + ":" + strconv.FormatFloat(weight, 'f', -1, 64) + ">"
}
