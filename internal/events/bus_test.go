package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialectdeck/ledger/internal/model"
)

type recordingSink struct {
	mu   sync.Mutex
	got  []Event
	fail bool
}

func (r *recordingSink) Name() string { return "recording" }

func (r *recordingSink) Send(_ context.Context, evt Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, evt)
	if r.fail {
		return errors.New("sink down")
	}
	return nil
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.got)
}

func TestBus_PublishDropsWhenFull(t *testing.T) {
	b := NewBus(1, zerolog.Nop())
	require.True(t, b.Publish(Event{Kind: KindBadgeAwarded, UserID: "u1"}))
	require.False(t, b.Publish(Event{Kind: KindBadgeAwarded, UserID: "u2"}))

	b.Notify(context.Background(), Event{Kind: KindBadgeAwarded, UserID: "u3"})
	assert.Equal(t, int64(2), b.Dropped())

	evt := <-b.Subscribe()
	assert.Equal(t, "u1", evt.UserID)
}

func TestBus_ForwardDeliversToEverySink(t *testing.T) {
	b := NewBus(8, zerolog.Nop())
	ok := &recordingSink{}
	broken := &recordingSink{fail: true}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Forward(ctx, broken, ok, LogSink{Log: zerolog.Nop()}) }()

	badge := model.Badge{ID: 1, Name: "First Words"}
	for i := 0; i < 3; i++ {
		b.Notify(ctx, Event{Kind: KindBadgeAwarded, UserID: "u1", Badges: []model.Badge{badge}, At: time.Now()})
	}

	require.Eventually(t, func() bool { return ok.count() == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 3, broken.count(), "a failing sink must not stop delivery")

	cancel()
	require.NoError(t, <-done)
}
