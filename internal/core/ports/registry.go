package ports

import "github.com/campusmarket/chat-service/internal/core/domain"

// Subscriber is one live connection's view from the room registry. Deliver
// must be safe to call from any goroutine; a returned error marks the
// subscriber dead and schedules its removal from the room.
type Subscriber interface {
	ID() string
	Deliver(event domain.ChatEvent) error
}

// RoomRegistry tracks which connections are subscribed to which rooms.
// Rooms come into existence on first join and are evicted when their last
// subscriber leaves.
type RoomRegistry interface {
	Join(room string, sub Subscriber)
	Leave(room string, sub Subscriber)

	// Broadcast delivers the event to every subscriber of room at the moment
	// of the call, in join order. Per-subscriber failures are logged and do
	// not abort delivery to the rest of the room.
	Broadcast(room string, event domain.ChatEvent)
}
