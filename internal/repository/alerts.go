package repository

import (
	"context"
	"fmt"

	"KPIPulse/internal/domain/models"
	pkgkafka "KPIPulse/pkg/kafka"
)

// KafkaAlertPublisher emits anomaly alerts to a Kafka topic. Messages
// are keyed by metric name so consumers see per-metric ordering.
type KafkaAlertPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaAlertPublisher(producer *pkgkafka.Producer, topic string) *KafkaAlertPublisher {
	return &KafkaAlertPublisher{producer: producer, topic: topic}
}

func (p *KafkaAlertPublisher) PublishAlert(ctx context.Context, alert models.AnomalyAlert) error {
	if err := p.producer.Publish(ctx, p.topic, []byte(alert.MetricName), alert); err != nil {
		return fmt.Errorf("publish alert: %w", err)
	}
	return nil
}

func (p *KafkaAlertPublisher) Close() error {
	return p.producer.Close()
}
