package transport

import (
	"github.com/ds124wfegd/itemtexture/internal/transport/middleware"
	"github.com/gin-gonic/gin"
)

func InitRoutes(textureHandler *TextureHandler) *gin.Engine {
	router := gin.New()
	router.RedirectTrailingSlash = false

	router.Use(
		middleware.RequestIDMiddleware(),
		middleware.Logger(),
		gin.CustomRecovery(recovered),
	)

	router.GET("/generate", textureHandler.Generate)

	// everything else, including other methods on /generate
	router.NoRoute(notFound)

	return router
}
