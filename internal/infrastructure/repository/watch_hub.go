package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/kmarube/eventquote-api/internal/domain/entity"
	domainRepo "github.com/kmarube/eventquote-api/internal/domain/repository"
)

// watchHub fans full-collection snapshots out to Watch subscribers.
// Both store backends publish into one hub instance after every
// mutation. Subscriber channels hold a single snapshot; when a
// subscriber lags, the stale snapshot is replaced by the latest one
// rather than queued behind it.
type watchHub struct {
	mu     sync.Mutex
	subs   map[uuid.UUID]map[int]chan []entity.Quotation
	nextID int
}

func newWatchHub() *watchHub {
	return &watchHub{subs: make(map[uuid.UUID]map[int]chan []entity.Quotation)}
}

func (h *watchHub) subscribe(ctx context.Context, ownerID uuid.UUID) (*domainRepo.Subscription, int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[ownerID] == nil {
		h.subs[ownerID] = make(map[int]chan []entity.Quotation)
	}
	id := h.nextID
	h.nextID++

	ch := make(chan []entity.Quotation, 1)
	h.subs[ownerID][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if owner, ok := h.subs[ownerID]; ok {
				if _, ok := owner[id]; ok {
					delete(owner, id)
					close(ch)
				}
				if len(owner) == 0 {
					delete(h.subs, ownerID)
				}
			}
		})
	}

	go func() {
		<-ctx.Done()
		cancel()
	}()

	return domainRepo.NewSubscription(ch, cancel), id
}

// prime delivers the initial snapshot to a single subscriber without
// waking the owner's other subscribers. A snapshot queued by a
// concurrent mutation is at least as fresh, so a full channel wins.
func (h *watchHub) prime(ownerID uuid.UUID, id int, snapshot []entity.Quotation) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch, ok := h.subs[ownerID][id]
	if !ok {
		return
	}
	select {
	case ch <- snapshot:
	default:
	}
}

// publish delivers a snapshot to every subscriber of the owner.
// Non-blocking: a full subscriber channel is drained first so the
// latest snapshot always wins.
func (h *watchHub) publish(ownerID uuid.UUID, snapshot []entity.Quotation) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs[ownerID] {
		select {
		case ch <- snapshot:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}
