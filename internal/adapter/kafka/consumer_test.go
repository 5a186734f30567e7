package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"

	"bat-ads/internal/core/domain"
	"bat-ads/internal/core/port"
	"bat-ads/internal/core/port/mocks"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeReader hands out queued messages, then blocks until ctx ends.
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
	closed    bool
	fetchErr  error
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if r.fetchErr != nil {
		err := r.fetchErr
		r.fetchErr = nil
		r.mu.Unlock()
		return kafka.Message{}, err
	}
	if len(r.queue) > 0 {
		m := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeReader) commits() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

func message(t *testing.T, offset int64, e domain.AdEvent) kafka.Message {
	t.Helper()
	b, err := json.Marshal(e)
	require.NoError(t, err)
	return kafka.Message{Offset: offset, Value: b}
}

func run(t *testing.T, c *Consumer, r *fakeReader, wantCommits int) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool { return len(r.commits()) >= wantCommits }, time.Second, time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
	assert.True(t, r.closed)
}

func TestConsumerRecordsEvents(t *testing.T) {
	event := domain.AdEvent{
		PlacementID:        "p-1",
		Type:               domain.AdTypeNotification,
		ConfirmationType:   domain.ConfirmationTypeViewed,
		CreativeInstanceID: "ci-1",
		CreatedAt:          time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC),
	}
	r := &fakeReader{
		fetchErr: errors.New("broker unavailable"),
		queue: []kafka.Message{
			message(t, 1, event),
			{Offset: 2, Value: []byte("not json")},
			message(t, 3, domain.AdEvent{PlacementID: "bad"}),
		},
	}

	svc := mocks.NewMockAdsUseCase(t)
	svc.EXPECT().RecordAdEvent(mock.Anything, event).Return(nil).Once()
	svc.EXPECT().RecordAdEvent(mock.Anything, mock.MatchedBy(func(e domain.AdEvent) bool { return e.PlacementID == "bad" })).
		Return(fmt.Errorf("%w: missing type", port.ErrInvalidRequest)).Once()

	run(t, NewConsumer(r, svc, discard, time.Millisecond), r, 3)
	assert.Equal(t, []int64{1, 2, 3}, r.commits())
}

func TestConsumerRetriesTransientFailures(t *testing.T) {
	event := domain.AdEvent{PlacementID: "p-1"}
	r := &fakeReader{queue: []kafka.Message{message(t, 7, event)}}

	svc := mocks.NewMockAdsUseCase(t)
	svc.EXPECT().RecordAdEvent(mock.Anything, mock.Anything).Return(errors.New("database is locked")).Twice()
	svc.EXPECT().RecordAdEvent(mock.Anything, mock.Anything).Return(nil).Once()

	run(t, NewConsumer(r, svc, discard, time.Millisecond), r, 1)
	assert.Equal(t, []int64{7}, r.commits())
}

func TestHeaderCarrierPropagatesTraceContext(t *testing.T) {
	var headers []kafka.Header
	carrier := headerCarrier{headers: &headers}
	carrier.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	carrier.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-00")

	assert.Len(t, headers, 1)
	assert.Equal(t, []string{"traceparent"}, carrier.Keys())
	assert.Equal(t, "", carrier.Get("missing"))

	ctx := propagation.TraceContext{}.Extract(context.Background(), carrier)
	out := propagation.MapCarrier{}
	propagation.TraceContext{}.Inject(ctx, out)
	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-00", out["traceparent"])
}
