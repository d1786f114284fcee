package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/geo"
)

type publisher interface {
	Publish(ctx context.Context, topic, key string, value any) error
}

var newSyncProducer = sarama.NewSyncProducer

// Producer publishes JSON records synchronously. Records with the same key
// land on the same partition.
type Producer struct {
	sp sarama.SyncProducer
}

// NewProducer connects a sync producer to brokers.
func NewProducer(brokers []string) (*Producer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Partitioner = sarama.NewHashPartitioner
	cfg.Producer.Retry.Max = 3

	sp, err := newSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return &Producer{sp: sp}, nil
}

// NewProducerWith wraps an existing sync producer.
func NewProducerWith(sp sarama.SyncProducer) *Producer {
	if sp == nil {
		return nil
	}
	return &Producer{sp: sp}
}

// Publish marshals value to JSON and writes it to topic under key.
// Broker failures wrap apperr.ErrUnavailable.
func (p *Producer) Publish(ctx context.Context, topic, key string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s record: %w", topic, err)
	}
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(b),
	}
	if _, _, err := p.sp.SendMessage(msg); err != nil {
		return fmt.Errorf("publish to %s: %w: %w", topic, apperr.ErrUnavailable, err)
	}
	return nil
}

// Close flushes and closes the producer.
func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.sp.Close()
}

// LocationTopic returns the geo-sharded GPS topic name.
func LocationTopic(prefix, shard string) string {
	return prefix + "." + shard
}

// LocationTopics expands shard suffixes into topic names.
func LocationTopics(prefix string, shards []string) []string {
	out := make([]string, 0, len(shards))
	for _, s := range shards {
		out = append(out, LocationTopic(prefix, s))
	}
	return out
}

// PositionPublisher writes enriched GPS events to their geo-shard topic keyed
// by courier id.
type PositionPublisher struct {
	p      publisher
	prefix string
}

// NewPositionPublisher returns a PositionPublisher writing under prefix.
func NewPositionPublisher(p publisher, prefix string) *PositionPublisher {
	return &PositionPublisher{p: p, prefix: prefix}
}

// PublishPosition implements the ingestion gateway's publisher port.
func (pp *PositionPublisher) PublishPosition(ctx context.Context, pos domain.CourierPosition) error {
	topic := LocationTopic(pp.prefix, geo.Shard(pos.Point))
	return pp.p.Publish(ctx, topic, pos.CourierID, PositionFromDomain(pos))
}

// ResultPublisher writes assignment results keyed by order id.
type ResultPublisher struct {
	p     publisher
	topic string
}

// NewResultPublisher returns a ResultPublisher writing to topic.
func NewResultPublisher(p publisher, topic string) *ResultPublisher {
	return &ResultPublisher{p: p, topic: topic}
}

// PublishResult implements the assignment engine's publisher port.
func (rp *ResultPublisher) PublishResult(ctx context.Context, r domain.AssignmentResult) error {
	return rp.p.Publish(ctx, rp.topic, r.OrderID, ResultFromDomain(r))
}

// RequestPublisher writes assignment requests keyed by order id.
type RequestPublisher struct {
	p     publisher
	topic string
}

// NewRequestPublisher returns a RequestPublisher writing to topic.
func NewRequestPublisher(p publisher, topic string) *RequestPublisher {
	return &RequestPublisher{p: p, topic: topic}
}

// PublishRequest writes r to the request topic.
func (rp *RequestPublisher) PublishRequest(ctx context.Context, r domain.AssignmentRequest) error {
	return rp.p.Publish(ctx, rp.topic, r.OrderID, AssignmentRequestFromDomain(r))
}
