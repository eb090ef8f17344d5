// eventwatch tails the texture event topic and logs every generation
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/ds124wfegd/itemtexture/config"
	"github.com/ds124wfegd/itemtexture/internal/entity"
	"github.com/ds124wfegd/itemtexture/internal/pkg/kafka"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(new(logrus.JSONFormatter))

	viperInstance, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Cannot load config. Error: {%s}", err.Error())
	}

	cfg, err := config.ParseConfig(viperInstance)
	if err != nil {
		logrus.Fatalf("Cannot parse config. Error: {%s}", err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = kafka.Consume(ctx, cfg.Events.Kafka.Brokers, cfg.Events.Kafka.Topic, cfg.Events.Kafka.GroupID, logEvent)
	if err != nil {
		logrus.Fatalf("consumer stopped: %s", err.Error())
	}
}

func logEvent(event entity.TextureEvent) {
	entry := logrus.WithFields(logrus.Fields{
		"id":          event.ID,
		"description": event.Description,
		"status":      event.Status,
		"duration_ms": event.DurationMs,
		"created_at":  event.CreatedAt,
	})

	if event.Status == entity.EventStatusFailed {
		entry.WithField("error", event.Error).Warn("texture generation failed")
		return
	}
	entry.WithField("opaque_pixels", event.OpaquePixels).Info("texture generated")
}
