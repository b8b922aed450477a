package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campusmarket/chat-service/internal/core/domain"
)

const collectionMessages = "messages"

// MessageRepository implements ports.MessageRepository on MongoDB.
type MessageRepository struct {
	col *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) *MessageRepository {
	return &MessageRepository{col: db.Collection(collectionMessages)}
}

type messageDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	SenderID  int64              `bson:"sender_id"`
	ListingID int64              `bson:"listing_id"`
	Body      string             `bson:"message"`
	Timestamp time.Time          `bson:"timestamp"`
}

// Create appends the message and fills in the assigned ID.
func (r *MessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := messageDoc{
		SenderID:  msg.SenderID,
		ListingID: msg.ListingID,
		Body:      msg.Body,
		Timestamp: msg.Timestamp.UTC(),
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		msg.ID = oid.Hex()
	}
	return nil
}

// ListByListing returns up to limit messages for a listing, oldest first.
func (r *MessageRepository) ListByListing(ctx context.Context, listingID int64, limit int) ([]*domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := r.col.Find(ctx, bson.M{"listing_id": listingID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Message
	for cur.Next(ctx) {
		var doc messageDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode message: %w", err)
		}
		out = append(out, &domain.Message{
			ID:        doc.ID.Hex(),
			SenderID:  doc.SenderID,
			ListingID: doc.ListingID,
			Body:      doc.Body,
			Timestamp: doc.Timestamp.UTC(),
		})
	}
	return out, cur.Err()
}

// EnsureIndexes creates the indexes the chat read path depends on.
func (r *MessageRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "listing_id", Value: 1}, {Key: "timestamp", Value: 1}}},
		{Keys: bson.D{{Key: "sender_id", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
