// File: waymate/client/repository.go
package client

import (
	"context"
	"sync"
	"time"

	"waymate/utils"

	"go.uber.org/zap"
)

// FetchFunc loads the latest snapshot for a watched key.
type FetchFunc func(ctx context.Context) (any, error)

// UpdateFunc receives each successfully fetched snapshot.
type UpdateFunc func(snapshot any)

// maxBackoffFactor caps the failure backoff at four times the base interval.
const maxBackoffFactor = 4

// Repository multiplexes polling: all subscribers to the same key share one
// fetch loop, so three screens watching one emergency cost one request per
// tick instead of three.
//
// The loop polls at the base interval, doubles the delay on every consecutive
// failure up to maxBackoffFactor times the base, and snaps back to the base
// on the first success.
type Repository struct {
	mu      sync.Mutex
	watches map[string]*watch
}

type watch struct {
	cancel  context.CancelFunc
	refresh chan struct{}

	subMu  sync.Mutex
	subs   map[int]UpdateFunc
	nextID int
}

// NewRepository creates an empty polling repository.
func NewRepository() *Repository {
	return &Repository{watches: make(map[string]*watch)}
}

// Subscribe registers onUpdate for key. The first subscriber starts the poll
// loop; later ones join it. The returned function cancels the subscription,
// and the loop stops when the last subscriber leaves.
func (r *Repository) Subscribe(key string, base time.Duration, fetch FetchFunc, onUpdate UpdateFunc) (unsubscribe func()) {
	r.mu.Lock()
	w, ok := r.watches[key]
	if !ok {
		ctx, cancel := context.WithCancel(context.Background())
		w = &watch{
			cancel:  cancel,
			refresh: make(chan struct{}, 1),
			subs:    make(map[int]UpdateFunc),
		}
		r.watches[key] = w
		go r.loop(ctx, key, base, fetch, w)
	}
	r.mu.Unlock()

	w.subMu.Lock()
	id := w.nextID
	w.nextID++
	w.subs[id] = onUpdate
	w.subMu.Unlock()

	return func() {
		w.subMu.Lock()
		delete(w.subs, id)
		empty := len(w.subs) == 0
		w.subMu.Unlock()

		if empty {
			r.mu.Lock()
			if cur, ok := r.watches[key]; ok && cur == w {
				delete(r.watches, key)
				w.cancel()
			}
			r.mu.Unlock()
		}
	}
}

// Refresh forces an immediate fetch for key, skipping the current wait. Used
// after a mutation so the caller sees the reconciled record right away.
func (r *Repository) Refresh(key string) {
	r.mu.Lock()
	w, ok := r.watches[key]
	r.mu.Unlock()
	if !ok {
		return
	}
	select {
	case w.refresh <- struct{}{}:
	default:
	}
}

func (r *Repository) loop(ctx context.Context, key string, base time.Duration, fetch FetchFunc, w *watch) {
	logger := utils.GetLogger()
	delay := base

	for {
		snapshot, err := fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// Back off so a struggling server is not hammered by a poller.
			delay *= 2
			if max := base * maxBackoffFactor; delay > max {
				delay = max
			}
			logger.Warn("poll fetch failed",
				zap.String("key", key), zap.Duration("retryIn", delay), zap.Error(err))
		} else {
			delay = base
			w.deliver(snapshot)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-w.refresh:
			timer.Stop()
		case <-timer.C:
		}
	}
}

func (w *watch) deliver(snapshot any) {
	w.subMu.Lock()
	subs := make([]UpdateFunc, 0, len(w.subs))
	for _, fn := range w.subs {
		subs = append(subs, fn)
	}
	w.subMu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}
