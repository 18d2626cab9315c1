package events

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/dialectdeck/ledger/internal/model"
)

// Kind represents the type of ledger notification.
type Kind string

const (
	KindBadgeAwarded Kind = "badge_awarded"
)

// Event is handed to the presentation layer. It carries the awarded badges
// in full so consumers never have to query the store.
type Event struct {
	Kind   Kind          `json:"kind"`
	UserID string        `json:"userId"`
	Badges []model.Badge `json:"badges"`
	At     time.Time     `json:"at"`
}

// Notifier receives newly awarded badges. Implementations must not block
// the caller or return errors: delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, evt Event)
}

// Sink delivers drained events to an external system.
type Sink interface {
	Name() string
	Send(ctx context.Context, evt Event) error
}

// Bus is a lightweight in-process pub-sub implementation backed by a buffered channel.
type Bus struct {
	ch      chan Event
	log     zerolog.Logger
	dropped atomic.Int64
}

// NewBus creates a bus with the given buffer size.
func NewBus(buffer int, log zerolog.Logger) *Bus {
	return &Bus{ch: make(chan Event, buffer), log: log}
}

// Publish attempts to enqueue the event without blocking.
// Returns true if published, false if the buffer is full.
func (b *Bus) Publish(evt Event) bool {
	select {
	case b.ch <- evt:
		return true
	default:
		b.dropped.Add(1)
		return false
	}
}

// Notify implements Notifier.
func (b *Bus) Notify(_ context.Context, evt Event) {
	if !b.Publish(evt) {
		b.log.Warn().
			Str("kind", string(evt.Kind)).
			Str("user_id", evt.UserID).
			Int64("dropped_total", b.dropped.Load()).
			Msg("event bus full, notification dropped")
	}
}

// Dropped reports how many events were discarded because the buffer was full.
func (b *Bus) Dropped() int64 { return b.dropped.Load() }

// Subscribe returns a read-only channel for consumers.
func (b *Bus) Subscribe() <-chan Event {
	return b.ch
}

// Forward drains the bus into sinks until ctx is cancelled. A failing sink
// is logged and skipped.
func (b *Bus) Forward(ctx context.Context, sinks ...Sink) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt := <-b.ch:
			for _, s := range sinks {
				if err := s.Send(ctx, evt); err != nil {
					b.log.Error().Stack().Err(err).
						Str("sink", s.Name()).
						Str("user_id", evt.UserID).
						Msg("event delivery failed")
				}
			}
		}
	}
}

// LogSink writes each event to the service log.
type LogSink struct {
	Log zerolog.Logger
}

func (LogSink) Name() string { return "log" }

func (s LogSink) Send(_ context.Context, evt Event) error {
	names := make([]string, 0, len(evt.Badges))
	for _, b := range evt.Badges {
		names = append(names, b.Name)
	}
	s.Log.Info().
		Str("kind", string(evt.Kind)).
		Str("user_id", evt.UserID).
		Strs("badges", names).
		Msg("badges awarded")
	return nil
}

// Discard is a Notifier that drops everything.
type Discard struct{}

func (Discard) Notify(context.Context, Event) {}
