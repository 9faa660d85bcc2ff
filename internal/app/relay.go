package app

import (
	"context"
	"errors"

	"github.com/dkeye/Parlor/internal/core"
	"github.com/dkeye/Parlor/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var ErrRelayStopped = errors.New("relay stopped")

const defaultInboxSize = 256

// Relay owns the room registry and every session. All state is touched
// only from the Run goroutine; other goroutines talk to it through
// Dispatch and Rooms.
type Relay struct {
	rooms    *core.Registry
	sessions *sessions
	policy   Policy
	validate *validator.Validate

	inbox chan Event
	done  chan struct{}
}

type Option func(*Relay)

func WithPolicy(p Policy) Option {
	return func(r *Relay) { r.policy = p }
}

func WithInboxSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.inbox = make(chan Event, n)
		}
	}
}

func NewRelay(opts ...Option) *Relay {
	r := &Relay{
		rooms:    core.NewRegistry(),
		sessions: newSessions(),
		policy:   SimplePolicy{},
		validate: validator.New(validator.WithRequiredStructEnabled()),
		inbox:    make(chan Event, defaultInboxSize),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes events one at a time until ctx is cancelled, then closes
// every remaining connection.
func (r *Relay) Run(ctx context.Context) {
	defer close(r.done)
	log.Info().Str("module", "app.relay").Msg("relay loop started")

	for {
		select {
		case <-ctx.Done():
			r.shutdown()
			return
		case ev := <-r.inbox:
			r.handle(ev)
		}
	}
}

// Done is closed once Run has returned.
func (r *Relay) Done() <-chan struct{} { return r.done }

// Dispatch queues ev for the loop. It blocks while the inbox is full.
func (r *Relay) Dispatch(ctx context.Context, ev Event) error {
	select {
	case <-r.done:
		return ErrRelayStopped
	default:
	}
	select {
	case r.inbox <- ev:
		return nil
	case <-r.done:
		return ErrRelayStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Rooms returns a snapshot of the active rooms. The snapshot is taken
// inside the loop, after every event dispatched before the call.
func (r *Relay) Rooms(ctx context.Context) ([]domain.RoomInfo, error) {
	res := make(chan []domain.RoomInfo, 1)
	ev := Event{Kind: eventQuery, query: func() { res <- r.rooms.List() }}
	if err := r.Dispatch(ctx, ev); err != nil {
		return nil, err
	}
	select {
	case list := <-res:
		return list, nil
	case <-r.done:
		return nil, ErrRelayStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Relay) handle(ev Event) {
	switch ev.Kind {
	case EventConnect:
		r.onConnect(ev)
	case EventCreateRoom:
		r.onCreateRoom(ev)
	case EventJoinRoom:
		r.onJoinRoom(ev)
	case EventChat:
		r.onChat(ev)
	case EventFileUpload:
		r.onFileUpload(ev)
	case EventTyping, EventStopTyping:
		r.onTyping(ev)
	case EventDisconnect:
		r.onDisconnect(ev)
	case eventQuery:
		if ev.query != nil {
			ev.query()
		}
	default:
		log.Warn().Str("module", "app.relay").Int("kind", int(ev.Kind)).Msg("unknown event")
	}
}

func (r *Relay) shutdown() {
	all := r.sessions.All()
	for _, sess := range all {
		sess.Conn.Close()
	}
	log.Info().Str("module", "app.relay").Int("sessions", len(all)).Msg("relay loop stopped")
}
