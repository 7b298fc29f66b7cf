package adapters

import (
	"fmt"
	"time"

	"github.com/go-redis/redis"
)

// RedisTypingTracker is the shared-state alternative to the in-memory
// tracker: entries live in Redis with a TTL equal to the typing window, so
// expiry needs no sweep and survives across replicas. Same read contract as
// the memory tracker.
type RedisTypingTracker struct {
	client *redis.Client
	window time.Duration
}

func NewRedisTypingTracker(client *redis.Client, window time.Duration) *RedisTypingTracker {
	return &RedisTypingTracker{client: client, window: window}
}

func (r *RedisTypingTracker) key(senderID, receiverID int) string {
	return fmt.Sprintf("typing:%d-%d", senderID, receiverID)
}

func (r *RedisTypingTracker) SetTyping(senderID, receiverID int, isTyping bool) error {
	if isTyping {
		return r.client.Set(r.key(senderID, receiverID), "1", r.window).Err()
	}
	return r.client.Del(r.key(senderID, receiverID)).Err()
}

func (r *RedisTypingTracker) IsTyping(senderID, receiverID int) (bool, error) {
	exists, err := r.client.Exists(r.key(senderID, receiverID)).Result()
	if err != nil {
		return false, err
	}
	return exists == 1, nil
}
