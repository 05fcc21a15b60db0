package queue

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slconcert/theatre-system/internal/core/domain"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.TicketEvent
	fail   bool
}

func (p *recordingPublisher) Publish(_ context.Context, e domain.TicketEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker down")
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) snapshot() []domain.TicketEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.TicketEvent(nil), p.events...)
}

func TestDispatcher_PreservesPerShowtimeOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pub := &recordingPublisher{}
	d := NewDispatcher(3, pub, zerolog.Nop())
	d.Start(ctx)

	const perShowtime = 20
	for i := 0; i < perShowtime; i++ {
		for _, st := range []string{"s1", "s2", "s3", "s4"} {
			d.Enqueue(domain.TicketEvent{
				Type:       domain.TicketBooked,
				TicketID:   fmt.Sprintf("%s-%02d", st, i),
				ShowtimeID: st,
			})
		}
	}

	require.Eventually(t, func() bool {
		return len(pub.snapshot()) == 4*perShowtime
	}, 2*time.Second, 10*time.Millisecond)

	last := map[string]string{}
	for _, e := range pub.snapshot() {
		assert.Greater(t, e.TicketID, last[e.ShowtimeID], "events of %s out of order", e.ShowtimeID)
		last[e.ShowtimeID] = e.TicketID
	}
}

func TestDispatcher_PublishFailureIsLogged(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var buf bytes.Buffer
	var mu sync.Mutex
	log := zerolog.New(zerolog.SyncWriter(&lockedWriter{w: &buf, mu: &mu}))

	d := NewDispatcher(1, &recordingPublisher{fail: true}, log)
	d.Start(ctx)
	d.Enqueue(domain.TicketEvent{Type: domain.TicketUsed, TicketID: "t1", ShowtimeID: "s1"})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return bytes.Contains(buf.Bytes(), []byte("ticket event publish failed"))
	}, 2*time.Second, 10*time.Millisecond)
}

func TestDispatcher_EnqueueNeverBlocks(t *testing.T) {
	// Workers are not started, so the single buffer fills up.
	d := NewDispatcher(1, &recordingPublisher{}, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer+10; i++ {
			d.Enqueue(domain.TicketEvent{Type: domain.TicketBooked, ShowtimeID: "s1"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Enqueue blocked on a full buffer")
	}
	assert.Len(t, d.workers[0], channelBuffer)
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(0, &recordingPublisher{}, zerolog.Nop())
	require.Len(t, d.workers, defaultWorkers)
	for _, key := range []string{"", "s1", "a-much-longer-showtime-identifier"} {
		idx := d.shardIndex(key)
		assert.Equal(t, idx, d.shardIndex(key))
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, defaultWorkers)
	}
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
