package audit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublisherEmitAndWorkerPersist(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := NewInMemoryStore()
	pub := NewPublisher(store, 8, discard())
	worker := NewWorker(pub, discard())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = worker.Run(ctx)
	}()

	pub.Emit(ctx, Event{RequestID: "vr_1", SubjectID: "sub_1", Stage: "ocr_scanning", Decision: "proceed"})
	pub.Emit(ctx, Event{RequestID: "vr_1", SubjectID: "sub_1", Stage: "rejected", Decision: "reject", Reason: "fraudulent document"})
	pub.Emit(ctx, Event{RequestID: "vr_2", SubjectID: "sub_2", Stage: "ocr_scanning", Decision: "proceed"})

	require.Eventually(t, func() bool {
		events, err := store.ListByRequest(ctx, "vr_1")
		return err == nil && len(events) == 2
	}, time.Second, 10*time.Millisecond)

	events, err := store.ListByRequest(ctx, "vr_1")
	require.NoError(t, err)
	assert.Equal(t, "ocr_scanning", events[0].Stage)
	assert.Equal(t, "rejected", events[1].Stage)
	assert.Equal(t, "fraudulent document", events[1].Reason)
	assert.False(t, events[0].Timestamp.IsZero())

	cancel()
	<-done
}

func TestPublisherDropsWhenInboxFull(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	pub := NewPublisher(store, 1, discard())

	// No worker draining: the second emit must drop instead of blocking.
	pub.Emit(ctx, Event{RequestID: "vr_1", Stage: "ocr_scanning"})
	finished := make(chan struct{})
	go func() {
		pub.Emit(ctx, Event{RequestID: "vr_1", Stage: "ml_scoring"})
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a full inbox")
	}
}

func TestStoreListFiltersByRequest(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	require.NoError(t, store.Append(ctx, Event{RequestID: "vr_1", Stage: "verified"}))
	require.NoError(t, store.Append(ctx, Event{RequestID: "vr_2", Stage: "flagged"}))

	events, err := store.ListByRequest(ctx, "vr_2")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "flagged", events[0].Stage)
}
