package queue

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	hooks []Webhook
}

func (f *fakeLister) WebhooksForEvent(_ context.Context, _ string) ([]Webhook, error) {
	return f.hooks, nil
}

type fakeInvalidator struct {
	mu  sync.Mutex
	ids []int64
}

func (f *fakeInvalidator) InvalidateForDelta(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, id)
	return nil
}

func (f *fakeInvalidator) seen() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.ids...)
}

func TestQueueDrainsJobsInFIFOOrderAndInvalidatesTiles(t *testing.T) {
	var mu sync.Mutex
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	lister := &fakeLister{hooks: []Webhook{{ID: 1, URL: srv.URL, Event: "delta"}}}
	inval := &fakeInvalidator{}

	q := New(lister, inval)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go q.Run(ctx)

	q.EnqueueDelta(1)
	q.EnqueueDelta(2)
	q.EnqueueDelta(3)
	q.Close()

	require.Eventually(t, func() bool {
		return len(inval.seen()) == 3
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, []int64{1, 2, 3}, inval.seen())

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return hits == 3
	}, time.Second, 10*time.Millisecond)
}

func TestQueueIgnoresNonDeltaJobsForTileInvalidation(t *testing.T) {
	inval := &fakeInvalidator{}
	q := New(nil, inval)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go q.Run(ctx)

	q.EnqueueUser(42)
	q.EnqueueStyle(7)
	q.EnqueueMeta()
	q.Close()

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, inval.seen())
}
