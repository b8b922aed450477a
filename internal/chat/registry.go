// Package chat owns the in-memory room registry: the mapping from listing
// rooms to the connections currently subscribed to them. Rooms exist only
// while they have subscribers — created on first join, evicted when the
// last subscriber leaves.
package chat

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/campusmarket/chat-service/internal/api/metrics"
	"github.com/campusmarket/chat-service/internal/core/domain"
	"github.com/campusmarket/chat-service/internal/core/ports"
)

// Registry implements ports.RoomRegistry. The registry mutex guards the
// room map and membership changes; each room carries its own mutex so a
// slow fan-out in one room never blocks delivery in another. Lock order is
// always registry before room.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*room
	log   zerolog.Logger
}

type room struct {
	mu   sync.Mutex
	subs []ports.Subscriber // join order, one entry per subscriber ID
}

func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		rooms: make(map[string]*room),
		log:   log,
	}
}

// Join subscribes sub to roomID, creating the room on first join.
// Idempotent: re-joining a room the subscriber is already in is a no-op.
func (r *Registry) Join(roomID string, sub ports.Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		rm = &room{}
		r.rooms[roomID] = rm
		metrics.RoomsActive.Inc()
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	for _, s := range rm.subs {
		if s.ID() == sub.ID() {
			return
		}
	}
	rm.subs = append(rm.subs, sub)

	r.log.Debug().
		Str("room", roomID).
		Str("subscriber", sub.ID()).
		Int("subscribers", len(rm.subs)).
		Msg("subscriber joined room")
}

// Leave removes sub from roomID. The room entry is evicted once its
// subscriber count reaches zero. Leaving a room the subscriber is not in
// is a no-op.
func (r *Registry) Leave(roomID string, sub ports.Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		return
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	for i, s := range rm.subs {
		if s.ID() == sub.ID() {
			rm.subs = append(rm.subs[:i], rm.subs[i+1:]...)
			break
		}
	}

	if len(rm.subs) == 0 {
		delete(r.rooms, roomID)
		metrics.RoomsActive.Dec()
		r.log.Debug().Str("room", roomID).Msg("empty room evicted")
	}
}

// Broadcast delivers event to every subscriber of roomID at the moment of
// the call, in join order. The room lock is held for the whole fan-out so
// two sequential broadcasts reach every subscriber in the same relative
// order. A failed delivery is logged and the subscriber is removed from
// the room afterwards; it never stops delivery to the rest of the room.
func (r *Registry) Broadcast(roomID string, event domain.ChatEvent) {
	r.mu.RLock()
	rm, ok := r.rooms[roomID]
	r.mu.RUnlock()
	if !ok {
		return
	}

	var failed []ports.Subscriber

	rm.mu.Lock()
	for _, sub := range rm.subs {
		if err := sub.Deliver(event); err != nil {
			r.log.Warn().Err(err).
				Str("room", roomID).
				Str("subscriber", sub.ID()).
				Msg("delivery failed, removing subscriber")
			metrics.DeliveryFailuresTotal.Inc()
			failed = append(failed, sub)
			continue
		}
		metrics.DeliveriesTotal.Inc()
	}
	rm.mu.Unlock()

	for _, sub := range failed {
		r.Leave(roomID, sub)
	}
}

// Subscribers reports the current subscriber count of roomID.
func (r *Registry) Subscribers(roomID string) int {
	r.mu.RLock()
	rm, ok := r.rooms[roomID]
	r.mu.RUnlock()
	if !ok {
		return 0
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	return len(rm.subs)
}

// Rooms reports the number of live rooms.
func (r *Registry) Rooms() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
