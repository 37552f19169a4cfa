package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/JonMunkholm/entrydesk/internal/config"
	"github.com/JonMunkholm/entrydesk/internal/core"
)

// producer is the part of *kgo.Client the publisher uses.
type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// KafkaPublisher sends audit events as JSON records keyed by coach, so one
// coach's events stay ordered within a partition.
type KafkaPublisher struct {
	client producer
	topic  string
}

// NewKafkaPublisher connects to cfg.Brokers. It returns nil when no brokers
// are configured.
func NewKafkaPublisher(cfg config.KafkaConfig) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.AllowAutoTopicCreation(),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaPublisher{client: client, topic: cfg.Topic}, nil
}

// Publish implements core.AuditPublisher.
func (p *KafkaPublisher) Publish(ctx context.Context, e core.AuditEvent) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(strconv.FormatInt(e.CoachID, 10)),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "action", Value: []byte(e.Action)},
			{Key: "severity", Value: []byte(e.Severity)},
		},
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes and closes the client.
func (p *KafkaPublisher) Close() {
	p.client.Close()
}
