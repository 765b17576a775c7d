package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// messageWriter часть kafka.Writer, которой пользуется публикатор
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher публикует события бронирований в топик Kafka
type KafkaPublisher struct {
	writer  messageWriter
	timeout time.Duration
	logger  Logger
}

// NewKafkaPublisher создает публикатор с балансировкой по ключу события
func NewKafkaPublisher(brokers []string, topic string, timeout time.Duration, logger Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return newKafkaPublisher(writer, timeout, logger)
}

func newKafkaPublisher(writer messageWriter, timeout time.Duration, logger Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, timeout: timeout, logger: logger}
}

// Publish отправляет событие. Ошибка возвращается вызывающему, который решает, критична ли она
func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	msg, err := buildMessage(ctx, ev)
	if err != nil {
		return err
	}

	writeCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		writeCtx, cancel = context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
		defer cancel()
	}

	if err := p.writer.WriteMessages(writeCtx, msg); err != nil {
		p.logger.Error("Publish: failed to write event id=%s type=%s: %v", ev.ID, ev.Type, err)
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}

	p.logger.Info("Publish: event id=%s type=%s key=%s", ev.ID, ev.Type, ev.Key())
	return nil
}

// Close закрывает writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func buildMessage(ctx context.Context, ev Event) (kafka.Message, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("%w: %v", ErrMarshalEvent, err)
	}

	headers := []kafka.Header{
		{Key: "event_id", Value: []byte(ev.ID)},
		{Key: "event_type", Value: []byte(ev.Type)},
	}

	return kafka.Message{
		Key:     []byte(ev.Key()),
		Value:   payload,
		Headers: injectTraceHeaders(ctx, headers),
		Time:    ev.OccurredAt,
	}, nil
}

// NoopPublisher используется, когда брокеры не настроены
type NoopPublisher struct{}

// Publish ничего не делает
func (NoopPublisher) Publish(context.Context, Event) error { return nil }

// Close ничего не делает
func (NoopPublisher) Close() error { return nil }
