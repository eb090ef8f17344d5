package transport

import (
	"net/http"

	"github.com/ds124wfegd/itemtexture/internal/entity"
	"github.com/ds124wfegd/itemtexture/internal/service"
	"github.com/ds124wfegd/itemtexture/internal/transport/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const descriptionParam = "itemDescription"

var failure = entity.GenerateResponse{Success: false}

// Generate handles GET /generate?itemDescription=...
// An empty description is valid; only a missing parameter is rejected.
func (h *TextureHandler) Generate(c *gin.Context) {
	description, ok := firstQueryValue(c.Request.URL.RawQuery, descriptionParam)
	if !ok {
		_ = c.Error(entity.ErrMissingDescription)
		c.JSON(http.StatusBadRequest, failure)
		return
	}

	requestID := middleware.RequestID(c)
	texture, err := h.service.GenerateTexture(c.Request.Context(), &service.GenerateRequest{
		ID:          requestID,
		Description: description,
	})
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"request_id":  requestID,
			"description": description,
		}).Error("texture generation failed")
		c.JSON(http.StatusInternalServerError, failure)
		return
	}

	c.JSON(http.StatusOK, entity.GenerateResponse{
		Success: true,
		Image:   texture.Base64(),
	})
}

func notFound(c *gin.Context) {
	_ = c.Error(entity.ErrRouteNotFound)
	c.JSON(http.StatusNotFound, failure)
}

func recovered(c *gin.Context, err any) {
	logrus.WithFields(logrus.Fields{
		"request_id": middleware.RequestID(c),
		"panic":      err,
	}).Error("handler panicked")
	c.AbortWithStatusJSON(http.StatusInternalServerError, failure)
}
