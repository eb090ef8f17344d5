package appServer

import (
	"context"
	"fmt"
	"time"

	"github.com/ds124wfegd/itemtexture/config"
	"github.com/ds124wfegd/itemtexture/internal/entity"
	"github.com/ds124wfegd/itemtexture/internal/pkg/backend"
	"github.com/ds124wfegd/itemtexture/internal/pkg/kafka"
	"github.com/ds124wfegd/itemtexture/internal/pkg/lock"
	"github.com/ds124wfegd/itemtexture/internal/pkg/rabbitMQ"
	"github.com/ds124wfegd/itemtexture/internal/pkg/rembg"
	"github.com/ds124wfegd/itemtexture/internal/service"
	"github.com/sirupsen/logrus"
)

func newBackend(ctx context.Context, cfg *config.Config) (backend.Backend, error) {
	switch cfg.Backend.Kind {
	case "sdwebui":
		sd := backend.NewSDWebUI(backend.SDWebUIOptions{
			BaseURL:     cfg.Backend.SDWebUI.URL,
			LoraName:    cfg.Backend.SDWebUI.LoraName,
			LoraWeight:  cfg.Backend.SDWebUI.LoraWeight,
			SamplerName: cfg.Backend.SDWebUI.SamplerName,
			Timeout:     cfg.Backend.SDWebUI.HTTPTimeout,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		// the WebUI may still be loading its checkpoint; requests will fail until it is up
		if err := sd.Ping(pingCtx); err != nil {
			logrus.WithError(err).Warn("sdwebui is not reachable yet")
		}
		return sd, nil
	case "gemini":
		gemini, err := backend.NewGemini(ctx, cfg.Backend.Gemini.APIKey, cfg.Backend.Gemini.Model)
		if err != nil {
			return nil, err
		}
		return gemini, nil
	default:
		return nil, fmt.Errorf("%w: %q", entity.ErrUnknownBackend, cfg.Backend.Kind)
	}
}

func newRemover(cfg *config.Config) (rembg.Remover, error) {
	switch cfg.Remover.Kind {
	case "rembg":
		return rembg.NewClient(cfg.Remover.URL, cfg.Remover.HTTPTimeout), nil
	case "flood":
		return rembg.NewFlood(cfg.Remover.Tolerance), nil
	default:
		return nil, fmt.Errorf("%w: %q", entity.ErrUnknownRemover, cfg.Remover.Kind)
	}
}

func newLocker(ctx context.Context, cfg *config.Config) (lock.Locker, func(), error) {
	switch cfg.Lock.Kind {
	case "local":
		return lock.NewLocal(), func() {}, nil
	case "redis":
		r := cfg.Lock.Redis
		client := lock.NewRedisClient(r.Addr, r.Password, r.DB, r.DialTimeout, r.ReadTimeout, r.WriteTimeout)

		pingCtx, cancel := context.WithTimeout(ctx, r.DialTimeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}

		closeFn := func() {
			if err := client.Close(); err != nil {
				logrus.WithError(err).Warn("failed to close redis client")
			}
		}
		return lock.NewRedis(client, cfg.Lock.Key, cfg.Lock.TTL), closeFn, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", entity.ErrUnknownLock, cfg.Lock.Kind)
	}
}

func newEventPublisher(cfg *config.Config) (service.EventPublisher, func(), error) {
	switch cfg.Events.Kind {
	case "", "none":
		return nil, func() {}, nil
	case "kafka":
		producer := kafka.NewProducer(cfg.Events.Kafka.Brokers, cfg.Events.Kafka.Topic)
		closeFn := func() {
			if err := producer.Close(); err != nil {
				logrus.WithError(err).Warn("failed to close kafka producer")
			}
		}
		return service.NewKafkaAdapter(producer), closeFn, nil
	case "rabbitmq":
		publisher, err := rabbitMQ.NewRabbitMQ(cfg.Events.RabbitMQ.URL, cfg.Events.RabbitMQ.QueueName)
		if err != nil {
			// events are optional, generation must not depend on the broker
			logrus.WithError(err).Warn("rabbitmq unavailable, texture events disabled")
			return nil, func() {}, nil
		}
		closeFn := func() {
			if err := publisher.Close(); err != nil {
				logrus.WithError(err).Warn("failed to close rabbitmq publisher")
			}
		}
		return service.NewRabbitMQAdapter(publisher), closeFn, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", entity.ErrUnknownEvents, cfg.Events.Kind)
	}
}
