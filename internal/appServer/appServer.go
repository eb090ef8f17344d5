// launching the server, backend, remover, lock and event publisher
package appServer

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ds124wfegd/itemtexture/config"
	"github.com/ds124wfegd/itemtexture/internal/pkg/processor"
	"github.com/ds124wfegd/itemtexture/internal/service"
	"github.com/ds124wfegd/itemtexture/internal/transport"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout, // a generation can take minutes
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 3 * time.Second,
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {

	logrus.SetFormatter(new(logrus.JSONFormatter))
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logrus.SetLevel(level)
	} else {
		logrus.WithError(err).Warn("invalid log level, keeping info")
	}

	ctx := context.Background()

	generator, err := newBackend(ctx, cfg)
	if err != nil {
		logrus.Fatalf("cannot create model backend: %s", err.Error())
	}

	remover, err := newRemover(cfg)
	if err != nil {
		logrus.Fatalf("cannot create background remover: %s", err.Error())
	}

	locker, closeLock, err := newLocker(ctx, cfg)
	if err != nil {
		logrus.Fatalf("cannot create backend lock: %s", err.Error())
	}
	defer closeLock()

	events, closeEvents, err := newEventPublisher(cfg)
	if err != nil {
		logrus.Fatalf("cannot create event publisher: %s", err.Error())
	}
	defer closeEvents()

	textureService := service.NewTextureService(
		generator,
		remover,
		processor.NewTextureProcessor(),
		locker,
		events,
		service.GenerationSettings{
			PromptPrefix:  cfg.Generation.PromptPrefix,
			PromptSuffix:  cfg.Generation.PromptSuffix,
			GuidanceScale: cfg.Generation.GuidanceScale,
			Width:         cfg.Generation.Width,
			Height:        cfg.Generation.Height,
			Steps:         cfg.Generation.Steps,
			Timeout:       cfg.Generation.Timeout,
		},
	)
	textureHandler := transport.NewTextureHandler(textureService)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, transport.InitRoutes(textureHandler)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.WithFields(logrus.Fields{
		"addr":    cfg.Server.Addr(),
		"version": cfg.Server.AppVersion,
		"backend": generator.Name(),
		"remover": remover.Name(),
	}).Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
}
