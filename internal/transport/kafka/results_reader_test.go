package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	testlog "courier-dispatch/internal/testutil"
)

type fakeReader struct {
	mu        sync.Mutex
	msgs      []kafkago.Message
	committed []int64
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.msgs) == 0 {
		r.cancel()
		return kafkago.Message{}, ctx.Err()
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func TestResultReader_Run(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fr := &fakeReader{cancel: cancel, msgs: []kafkago.Message{
		{Offset: 1, Value: []byte(`{"orderId":"o1","driverId":"d1","eta":16,"assignedAt":"2024-01-15T10:30:00Z","status":"assigned"}`)},
		{Offset: 2, Value: []byte(`not-json`)},
		{Offset: 3, Value: []byte(`{"orderId":"o2","error":"all couriers busy","status":"failed"}`)},
		{Offset: 4, Value: []byte(`{"orderId":"o3","driverId":"d3","status":"assigned"}`)},
	}}
	rec := testlog.New()
	rr := NewResultReaderWith(rec.Logger(), fr)

	var got []domain.AssignmentResult
	unavailable := 1
	err := rr.Run(ctx, func(_ context.Context, r domain.AssignmentResult) error {
		if r.OrderID == "o3" && unavailable > 0 {
			unavailable--
			return fmt.Errorf("commit: %w", apperr.ErrUnavailable)
		}
		if r.OrderID == "o2" {
			got = append(got, r)
			return errors.New("not interested")
		}
		got = append(got, r)
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)

	require.Len(t, got, 3)
	require.Equal(t, "d1", got[0].CourierID)
	require.Equal(t, 16, got[0].ETA)
	require.Equal(t, domain.ReasonAllBusy, got[1].Reason)
	require.Equal(t, "o3", got[2].OrderID)
	require.Equal(t, []int64{1, 2, 3, 4}, fr.committed)
	require.True(t, rec.Has("kafka bad json"))
	require.True(t, rec.Has("result handling unavailable, retrying"))
}
