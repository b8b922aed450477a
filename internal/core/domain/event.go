package domain

import "time"

// ChatEvent is the payload fanned out to every subscriber of a listing
// room when a message is accepted. Timestamps are UTC and serialize as
// RFC 3339.
type ChatEvent struct {
	Body        string    `json:"message"`
	SenderID    int64     `json:"sender_id"`
	SenderEmail string    `json:"sender_email"`
	Timestamp   time.Time `json:"timestamp"`
	ListingID   int64     `json:"listing_id"`
}
