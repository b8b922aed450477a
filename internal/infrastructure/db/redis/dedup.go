package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = time.Hour

// DedupChecker suppresses replayed chat messages using Redis.
// Key format: dedup:<sender_id>:<listing_id>:<client_msg_id>
type DedupChecker struct {
	client *redis.Client
}

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
func NewDedupChecker(client *redis.Client) *DedupChecker {
	return &DedupChecker{client: client}
}

// Seen reports whether this client message was already processed and
// records it atomically (SET NX), so a transport retry racing the original
// cannot persist the message twice. Keys expire after dedupTTL.
func (d *DedupChecker) Seen(ctx context.Context, senderID, listingID int64, clientMsgID string) (bool, error) {
	set, err := d.client.SetNX(ctx, d.key(senderID, listingID, clientMsgID), "1", dedupTTL).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return !set, nil
}

func (d *DedupChecker) key(senderID, listingID int64, clientMsgID string) string {
	return fmt.Sprintf("dedup:%d:%d:%s", senderID, listingID, clientMsgID)
}
