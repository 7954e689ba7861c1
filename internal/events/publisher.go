// Package events publishes charge lifecycle events. Delivery is
// best-effort: a publish failure never fails the request that caused it.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/serchbauti/technical-t1/internal/models"
)

const (
	TypeChargeCreated  = "charge.created"
	TypeChargeRefunded = "charge.refunded"
)

// Publisher emits charge lifecycle events.
type Publisher interface {
	PublishChargeEvent(ctx context.Context, eventType string, charge *models.Charge)
}

// ChargeEvent is the wire envelope for published events.
type ChargeEvent struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	Charge     *models.Charge `json:"charge"`
}

// KafkaPublisher sends charge events to a Kafka topic, keyed by charge
// id so events for one charge stay ordered within a partition.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) (*KafkaPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}, nil
}

func (p *KafkaPublisher) PublishChargeEvent(_ context.Context, eventType string, charge *models.Charge) {
	event := ChargeEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Charge:     charge,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to encode charge event", zap.Error(err))
		return
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(charge.ID),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		p.logger.Error("failed to publish charge event",
			zap.String("event_type", eventType),
			zap.String("charge_id", charge.ID),
			zap.Error(err))
		return
	}

	p.logger.Debug("charge event published",
		zap.String("event_type", eventType),
		zap.String("charge_id", charge.ID))
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// LogPublisher records events in the log only. Used when no Kafka
// brokers are configured.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) PublishChargeEvent(_ context.Context, eventType string, charge *models.Charge) {
	p.logger.Info("charge event",
		zap.String("event_type", eventType),
		zap.String("charge_id", charge.ID),
		zap.String("status", string(charge.Status)))
}
