package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
)

// messageReader is the subset of kafka-go's Reader the results reader needs.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// ResultHandler handles one decoded assignment result.
type ResultHandler func(context.Context, domain.AssignmentResult) error

// ResultReader reads assignment results for the order side of the pipeline.
type ResultReader struct {
	r       messageReader
	logger  logx.Logger
	timeout time.Duration
}

// NewResultReader creates a group reader on topic.
func NewResultReader(logger logx.Logger, brokers []string, groupID, topic string) *ResultReader {
	return NewResultReaderWith(logger, kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	}))
}

// NewResultReaderWith wraps an existing reader.
func NewResultReaderWith(logger logx.Logger, r messageReader) *ResultReader {
	if logger == nil {
		logger = logx.Nop()
	}
	return &ResultReader{r: r, logger: logger, timeout: 10 * time.Second}
}

// Run fetches results until ctx is done. Undecodable records are committed
// and skipped. A handler error wrapping apperr.ErrUnavailable is retried on
// the same record with capped backoff, so the record is committed only once
// it has been handled.
func (rr *ResultReader) Run(ctx context.Context, h ResultHandler) error {
	for {
		m, err := rr.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			rr.logger.Error("kafka fetch failed", logx.Err(err))
			if !sleepCtx(ctx, time.Second) {
				return ctx.Err()
			}
			continue
		}

		for attempt := 1; ; attempt++ {
			err := rr.handle(ctx, m, h)
			if err == nil || !errors.Is(err, apperr.ErrUnavailable) {
				break
			}
			rr.logger.Warn("result handling unavailable, retrying",
				logx.Int64("offset", m.Offset),
				logx.Int("attempt", attempt),
				logx.Err(err),
			)
			if !sleepCtx(ctx, retryDelay(attempt)) {
				return ctx.Err()
			}
		}

		if err := rr.r.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			rr.logger.Error("kafka commit failed", logx.Int64("offset", m.Offset), logx.Err(err))
		}
	}
}

func retryDelay(attempt int) time.Duration {
	const maxDelay = 5 * time.Second
	if attempt > 6 {
		return maxDelay
	}
	if d := 100 * time.Millisecond << (attempt - 1); d < maxDelay {
		return d
	}
	return maxDelay
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (rr *ResultReader) handle(ctx context.Context, m kafkago.Message, h ResultHandler) error {
	var dto AssignmentResultDTO
	if err := json.Unmarshal(m.Value, &dto); err != nil {
		rr.logger.Warn("kafka bad json", logx.Int64("offset", m.Offset), logx.Err(err))
		return nil
	}
	res, err := dto.ToDomain()
	if err != nil {
		rr.logger.Warn("kafka bad message", logx.Int64("offset", m.Offset), logx.Err(err))
		return nil
	}

	hctx, cancel := context.WithTimeout(ctx, rr.timeout)
	defer cancel()
	if err := h(hctx, res); err != nil {
		if !errors.Is(err, apperr.ErrUnavailable) {
			rr.logger.Error("result handler failed",
				logx.OrderID(res.OrderID),
				logx.Err(err),
			)
		}
		return err
	}
	return nil
}

// Close closes the underlying reader.
func (rr *ResultReader) Close() error {
	if rr == nil {
		return nil
	}
	return rr.r.Close()
}
