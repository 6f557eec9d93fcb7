package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Service tracks which users are currently online. A heartbeat refreshes a
// per-user key with a TTL; silence lets the key expire and the user drops
// offline without any explicit logout.
type Service struct {
	client *redis.Client
	ttl    time.Duration
}

func NewService(client *redis.Client, ttl time.Duration) *Service {
	return &Service{client: client, ttl: ttl}
}

func key(userID uuid.UUID) string {
	return "presence:" + userID.String()
}

// Heartbeat marks a user online for the configured TTL.
func (s *Service) Heartbeat(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Set(ctx, key(userID), time.Now().Unix(), s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to record heartbeat: %w", err)
	}
	return nil
}

// Offline removes a user's presence immediately.
func (s *Service) Offline(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear presence: %w", err)
	}
	return nil
}

// IsOnline reports whether a user has a live heartbeat.
func (s *Service) IsOnline(ctx context.Context, userID uuid.UUID) (bool, error) {
	n, err := s.client.Exists(ctx, key(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check presence: %w", err)
	}
	return n > 0, nil
}

// OnlineUsers returns the IDs of every user with a live heartbeat.
func (s *Service) OnlineUsers(ctx context.Context) ([]uuid.UUID, error) {
	var online []uuid.UUID
	iter := s.client.Scan(ctx, 0, "presence:*", 0).Iterator()
	for iter.Next(ctx) {
		id, err := uuid.Parse(iter.Val()[len("presence:"):])
		if err != nil {
			continue
		}
		online = append(online, id)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan presence keys: %w", err)
	}
	return online, nil
}
