// Package publisher emits sourcing decisions to Kafka for downstream
// consumers. Publishing is best effort: failures are logged, never fatal.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/google/uuid"
	"github.com/navid-fn/sourcing-radar/internal/models"
	"github.com/sirupsen/logrus"
)

const flushTimeoutMs = 5000

// Publisher sends a run's decisions somewhere.
type Publisher interface {
	Publish(ctx context.Context, runID string, decisions []models.SourcingDecision) error
	Close()
}

// DecisionEvent is the message value.
type DecisionEvent struct {
	EventID     string                  `json:"event_id"`
	RunID       string                  `json:"run_id"`
	PublishedAt time.Time               `json:"published_at"`
	Decision    models.SourcingDecision `json:"decision"`
}

// producer is the subset of *kafka.Producer used here.
type producer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	Events() chan kafka.Event
	Flush(timeoutMs int) int
	Close()
}

type KafkaPublisher struct {
	producer producer
	topic    string
	logger   *logrus.Logger
	now      func() time.Time
}

// NewKafkaPublisher connects a producer to broker.
func NewKafkaPublisher(broker, topic string, logger *logrus.Logger) (*KafkaPublisher, error) {
	config := kafka.ConfigMap{
		"bootstrap.servers": broker,
	}

	p, err := kafka.NewProducer(&config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	logger.Info("Kafka Producer initialized successfully")

	kp := newKafkaPublisher(p, topic, logger)
	kp.startDeliveryReport()
	return kp, nil
}

func newKafkaPublisher(p producer, topic string, logger *logrus.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: p, topic: topic, logger: logger, now: time.Now}
}

// startDeliveryReport logs asynchronous delivery failures.
func (kp *KafkaPublisher) startDeliveryReport() {
	go func() {
		for e := range kp.producer.Events() {
			if msg, ok := e.(*kafka.Message); ok && msg.TopicPartition.Error != nil {
				kp.logger.Errorf("Message delivery failed: %v", msg.TopicPartition.Error)
			}
		}
	}()
}

// Publish produces one message per decision keyed by keyword, then flushes.
func (kp *KafkaPublisher) Publish(ctx context.Context, runID string, decisions []models.SourcingDecision) error {
	sent := 0
	for _, d := range decisions {
		if err := ctx.Err(); err != nil {
			return err
		}

		value, err := json.Marshal(DecisionEvent{
			EventID:     uuid.NewString(),
			RunID:       runID,
			PublishedAt: kp.now(),
			Decision:    d,
		})
		if err != nil {
			kp.logger.Errorf("Error marshaling decision for %s: %v", d.Keyword, err)
			continue
		}

		topic := kp.topic
		err = kp.producer.Produce(&kafka.Message{
			TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
			Key:            []byte(d.Keyword),
			Value:          value,
		}, nil)
		if err != nil {
			kp.logger.Errorf("Failed to send to Kafka for %s: %v", d.Keyword, err)
			continue
		}
		sent++
	}

	if remaining := kp.producer.Flush(flushTimeoutMs); remaining > 0 {
		kp.logger.Warnf("%d decision messages still queued after flush", remaining)
	}
	kp.logger.Infof("Published %d/%d decisions to %s", sent, len(decisions), kp.topic)
	return nil
}

func (kp *KafkaPublisher) Close() {
	kp.producer.Close()
	kp.logger.Info("Kafka Producer closed")
}

// Nop is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, []models.SourcingDecision) error { return nil }
func (Nop) Close() {}
