package transport

import (
	"github.com/ds124wfegd/itemtexture/internal/service"
)

type TextureHandler struct {
	service service.TextureService
}

func NewTextureHandler(service service.TextureService) *TextureHandler {
	return &TextureHandler{service: service}
}
