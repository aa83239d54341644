package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	kafka "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/studyloft/studyloft/config"
	"github.com/studyloft/studyloft/pkg/metrics"
)

// Event is the envelope published on terminal pipeline transitions. Publishes
// are best-effort notifications for downstream consumers; the pipeline never
// depends on them.
type Event struct {
	Kind       string `json:"kind"`
	ID         string `json:"id"`
	MaterialID string `json:"material_id,omitempty"`
	Status     string `json:"status"`
	OccurredAt string `json:"occurred_at"`
}

type Publisher interface {
	PublishMaterial(ctx context.Context, event Event)
	PublishArtifact(ctx context.Context, event Event)
	Close() error
}

// NopPublisher is used when Kafka is not configured.
type NopPublisher struct{}

func (NopPublisher) PublishMaterial(ctx context.Context, event Event) {}
func (NopPublisher) PublishArtifact(ctx context.Context, event Event) {}
func (NopPublisher) Close() error                                     { return nil }

type KafkaPublisher struct {
	materialWriter *kafka.Writer
	artifactWriter *kafka.Writer
	logger         *logrus.Logger
}

// NewPublisher returns a Kafka-backed publisher, or a no-op one when brokers
// are not configured.
func NewPublisher(cfg config.KafkaConfig, logger *logrus.Logger) Publisher {
	if strings.TrimSpace(cfg.Brokers) == "" {
		logger.Info("Kafka publisher disabled (missing config)")
		return NopPublisher{}
	}

	brokers := splitBrokers(cfg.Brokers)
	return &KafkaPublisher{
		materialWriter: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    cfg.MaterialTopic,
			Balancer: &kafka.LeastBytes{},
		},
		artifactWriter: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    cfg.ArtifactTopic,
			Balancer: &kafka.LeastBytes{},
		},
		logger: logger,
	}
}

func (p *KafkaPublisher) PublishMaterial(ctx context.Context, event Event) {
	p.publish(ctx, p.materialWriter, event)
}

func (p *KafkaPublisher) PublishArtifact(ctx context.Context, event Event) {
	p.publish(ctx, p.artifactWriter, event)
}

func (p *KafkaPublisher) publish(ctx context.Context, writer *kafka.Writer, event Event) {
	if event.OccurredAt == "" {
		event.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	}
	value, err := json.Marshal(event)
	if err != nil {
		p.logger.Errorf("marshal event: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ID),
		Value: value,
	}); err != nil {
		metrics.KafkaMessagesTotal.WithLabelValues(writer.Topic, "error").Inc()
		p.logger.Errorf("publish %s event for %s: %v", event.Kind, event.ID, err)
		return
	}
	metrics.KafkaMessagesTotal.WithLabelValues(writer.Topic, "ok").Inc()
}

func (p *KafkaPublisher) Close() error {
	if err := p.materialWriter.Close(); err != nil {
		return err
	}
	return p.artifactWriter.Close()
}

func splitBrokers(brokers string) []string {
	parts := strings.Split(brokers, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
