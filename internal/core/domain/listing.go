package domain

import "time"

// ListingStatus represents the lifecycle state of a marketplace listing.
type ListingStatus string

const (
	ListingActive  ListingStatus = "active"
	ListingSold    ListingStatus = "sold"
	ListingDeleted ListingStatus = "deleted"
)

// Listing is a marketplace item. Listings are owned by the listing
// directory; the chat layer only checks that one exists before scoping a
// conversation to it.
type Listing struct {
	ID        int64         `json:"id" bson:"_id"`
	Title     string        `json:"title" bson:"title"`
	Price     float64       `json:"price" bson:"price"`
	Category  string        `json:"category" bson:"category"`
	Campus    string        `json:"campus" bson:"campus"`
	SellerID  int64         `json:"user_id" bson:"user_id"`
	Status    ListingStatus `json:"status" bson:"status"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
}
