package kafka

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/logx"
)

// Message is a consumed record handed to a HandleFunc.
type Message struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
}

// HandleFunc processes a single record. Records are always marked after the
// handler returns: failure semantics belong to the handler.
type HandleFunc func(context.Context, Message) error

var newConsumerGroup = sarama.NewConsumerGroup

// Consumer wraps a Sarama consumer group and dispatches records to a handler.
// Within a partition records are handled strictly in order.
type Consumer struct {
	group   sarama.ConsumerGroup
	topics  []string
	handler HandleFunc
	logger  logx.Logger

	retryUnavailable bool
}

// ConsumerOption tunes a Consumer.
type ConsumerOption func(*Consumer)

// RetryUnavailable keeps handing a record back to the handler while it fails
// with apperr.ErrUnavailable, with capped backoff. The record is marked only
// after the handler stops failing that way. A rebalance leaves it unmarked
// for the next owner.
func RetryUnavailable() ConsumerOption {
	return func(c *Consumer) { c.retryUnavailable = true }
}

// NewConsumer creates a new Kafka consumer over topics
func NewConsumer(logger logx.Logger, brokers []string, groupID string, topics []string, h HandleFunc, opts ...ConsumerOption) (*Consumer, error) {
	topics = compact(topics)
	// не стратую если у кафки нет настроек
	if len(brokers) == 0 || len(topics) == 0 || strings.TrimSpace(groupID) == "" {
		return nil, nil
	}
	if logger == nil {
		logger = logx.Nop()
	}

	cfg := sarama.NewConfig()
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRange()}

	group, err := newConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}

	c := &Consumer{
		group:   group,
		topics:  topics,
		handler: h,
		logger:  logger.With(logx.String("group", groupID)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Run starts the consumer and blocks until ctx is done
func (c *Consumer) Run(ctx context.Context) error {
	if c == nil {
		return nil
	}

	h := &groupHandler{c: c}

	for {
		if err := c.group.Consume(ctx, c.topics, h); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			c.logger.Error("kafka consume error", logx.Err(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// Close closes the consumer group
func (c *Consumer) Close() error {
	if c == nil {
		return nil
	}
	return c.group.Close()
}

type groupHandler struct{ c *Consumer }

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		m := Message{
			Topic:     msg.Topic,
			Partition: msg.Partition,
			Offset:    msg.Offset,
			Key:       msg.Key,
			Value:     msg.Value,
		}
		if err := h.c.handle(sess.Context(), m); err != nil {
			if sess.Context().Err() != nil {
				return nil
			}
			if IsPermanent(err) {
				h.c.logger.Warn("kafka bad message",
					logx.Topic(msg.Topic),
					logx.Int64("offset", msg.Offset),
					logx.Err(err),
				)
			} else {
				h.c.logger.Error("kafka handle failed, skipping message",
					logx.Topic(msg.Topic),
					logx.Int64("offset", msg.Offset),
					logx.Err(err),
				)
			}
		}
		sess.MarkMessage(msg, "")
	}
	return nil
}

func (c *Consumer) handle(ctx context.Context, m Message) error {
	for attempt := 1; ; attempt++ {
		err := c.handler(ctx, m)
		if err == nil || !c.retryUnavailable || IsPermanent(err) || !errors.Is(err, apperr.ErrUnavailable) {
			return err
		}
		c.logger.Warn("kafka handler unavailable, retrying",
			logx.Topic(m.Topic),
			logx.Int64("offset", m.Offset),
			logx.Int("attempt", attempt),
			logx.Err(err),
		)
		if !sleepCtx(ctx, retryDelay(attempt)) {
			return err
		}
	}
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
