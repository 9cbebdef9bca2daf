package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/graingrove-backend/pkg/redis"
	"github.com/angelmondragon/graingrove-backend/pkg/types"
)

// ErrMalformedSnapshot marks persisted cart data that cannot be decoded.
var ErrMalformedSnapshot = errors.New("malformed cart snapshot")

// SnapshotStore persists the full cart of a session under one fixed key.
type SnapshotStore interface {
	// Load returns nil lines when no snapshot exists.
	Load(ctx context.Context, sessionID string) ([]Line, error)
	Save(ctx context.Context, sessionID string, lines []Line) error
}

type redisSnapshots struct {
	kv  redis.Store
	ttl time.Duration
}

// NewRedisSnapshots stores snapshots as JSON arrays in Redis. A zero ttl keeps them forever.
func NewRedisSnapshots(kv redis.Store, ttl time.Duration) (SnapshotStore, error) {
	if kv == nil {
		return nil, fmt.Errorf("redis store required")
	}
	return &redisSnapshots{kv: kv, ttl: ttl}, nil
}

func (r *redisSnapshots) Load(ctx context.Context, sessionID string) ([]Line, error) {
	raw, err := r.kv.Get(ctx, r.kv.CartKey(sessionID))
	if err != nil {
		if redis.IsNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("load cart snapshot: %w", err)
	}
	var items types.LineItems
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	return fromLineItems(items), nil
}

func (r *redisSnapshots) Save(ctx context.Context, sessionID string, lines []Line) error {
	payload, err := json.Marshal(toLineItems(lines))
	if err != nil {
		return fmt.Errorf("encode cart snapshot: %w", err)
	}
	if err := r.kv.Set(ctx, r.kv.CartKey(sessionID), string(payload), r.ttl); err != nil {
		return fmt.Errorf("save cart snapshot: %w", err)
	}
	return nil
}
