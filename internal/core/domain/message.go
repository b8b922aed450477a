package domain

import (
	"fmt"
	"time"
)

// Message is a persisted chat message scoped to a listing. Immutable once
// created; the timestamp is server-assigned at persistence time.
type Message struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	SenderID  int64     `json:"sender_id" bson:"sender_id"`
	ListingID int64     `json:"listing_id" bson:"listing_id"`
	Body      string    `json:"message" bson:"message"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// RoomID derives the fan-out room for a listing. Every conversation about
// a listing shares one room.
func RoomID(listingID int64) string {
	return fmt.Sprintf("listing_%d", listingID)
}
