package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/popugame-backend/internal/entity"
)

// StreamService fans full-state snapshots out to the subscribers of a game
// code. Delivery is at-least-once with latest-wins coalescing: a slow
// subscriber skips intermediate versions and only ever sees the newest
// snapshot.
type StreamService interface {
	Subscribe(ctx context.Context, code string, sinceVersion int64) (<-chan *entity.Session, func(), error)
	Publish(session *entity.Session)
}

type streamService struct {
	logger *slog.Logger

	sessionService SessionService

	mu          sync.Mutex
	subscribers map[string]map[chan *entity.Session]struct{}
}

func NewStreamService(logger *slog.Logger, sessionService SessionService) StreamService {
	return &streamService{
		logger: logger,

		sessionService: sessionService,

		subscribers: make(map[string]map[chan *entity.Session]struct{}),
	}
}

// Subscribe registers a listener for code and returns its snapshot channel
// with an unsubscribe func. If the session has already advanced past
// sinceVersion, the current state is delivered immediately so a
// reconnecting client catches up without an event log.
func (that *streamService) Subscribe(ctx context.Context, code string, sinceVersion int64) (<-chan *entity.Session, func(), error) {
	session, err := that.sessionService.GetSessionByCode(ctx, code)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan *entity.Session, 1)

	that.mu.Lock()
	subs, ok := that.subscribers[code]
	if !ok {
		subs = make(map[chan *entity.Session]struct{})
		that.subscribers[code] = subs
	}
	subs[ch] = struct{}{}

	// The catch-up send happens under the mutex: the buffer is empty at
	// this point and Publish cannot interleave, so it never blocks.
	if session.StateVersion > sinceVersion {
		ch <- session
	}
	that.mu.Unlock()

	unsubscribe := func() {
		that.mu.Lock()
		defer that.mu.Unlock()

		subs, ok := that.subscribers[code]
		if !ok {
			return
		}
		delete(subs, ch)
		if len(subs) == 0 {
			delete(that.subscribers, code)
		}
	}

	return ch, unsubscribe, nil
}

// Publish delivers a snapshot to every subscriber of the session's code.
// A full buffer is drained first so the newest state wins; Publish never
// blocks on a slow subscriber.
func (that *streamService) Publish(session *entity.Session) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for ch := range that.subscribers[session.Code] {
		select {
		case ch <- session:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- session:
			default:
			}
		}
	}
}
