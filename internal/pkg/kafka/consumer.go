package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// Consume reads JSON messages of type T from topic and hands each one to
// handle until ctx is cancelled. Undecodable messages are logged and skipped.
func Consume[T any](ctx context.Context, brokers []string, topic, groupID string, handle func(T)) error {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
		StartOffset:    kafka.FirstOffset,
	})
	defer reader.Close()

	logrus.WithFields(logrus.Fields{
		"brokers": brokers,
		"topic":   topic,
		"group":   groupID,
	}).Info("kafka consumer started")

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			logrus.WithError(err).Error("error reading message from kafka")
			continue
		}

		dispatch(msg, handle)
	}
}

// dispatch decodes one message and hands it over; it reports whether the
// message was handled.
func dispatch[T any](msg kafka.Message, handle func(T)) bool {
	var value T
	if err := json.Unmarshal(msg.Value, &value); err != nil {
		logrus.WithError(err).WithField("offset", msg.Offset).Warn("failed to parse message")
		return false
	}
	handle(value)
	return true
}
