package rembg

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/ds124wfegd/itemtexture/internal/entity"
	"github.com/ds124wfegd/itemtexture/internal/pkg/processor"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const removePath = "/api/remove"

// Client calls a `rembg s` server, which answers a multipart PNG upload with
// the same picture carrying an alpha channel.
type Client struct {
	client *resty.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetLogger(logrus.StandardLogger())

	return &Client{client: client}
}

func (c *Client) Name() string {
	return "rembg"
}

func (c *Client) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	pngData, err := processor.EncodePNG(img)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetFileReader("file", "item.png", bytes.NewReader(pngData)).
		Post(removePath)
	if err != nil {
		return nil, fmt.Errorf("rembg request failed: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: rembg HTTP %d: %s", entity.ErrBackendStatus, resp.StatusCode(), strings.TrimSpace(string(truncate(resp.Body(), 512))))
	}

	out, _, err := processor.DecodeImage(resp.Body())
	if err != nil {
		return nil, err
	}
	return out, nil
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
