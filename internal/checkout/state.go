package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/graingrove-backend/pkg/enums"
	"github.com/angelmondragon/graingrove-backend/pkg/logger"
	"github.com/angelmondragon/graingrove-backend/pkg/redis"
)

// State is the persisted checkout phase of one session. OrderID and ContactEmail are only set
// once the order is confirmed.
type State struct {
	Phase        enums.CheckoutState `json:"state"`
	OrderID      *int64              `json:"orderId,omitempty"`
	ContactEmail string              `json:"contactEmail,omitempty"`
}

// Editing is the state every checkout starts in.
func Editing() State {
	return State{Phase: enums.CheckoutEditing}
}

// Confirmed reports whether the order has been placed.
func (s State) Confirmed() bool {
	return s.Phase == enums.CheckoutConfirmed
}

// StateStore persists checkout state per session.
type StateStore interface {
	// Load returns the editing state when nothing is stored.
	Load(ctx context.Context, sessionID string) (State, error)
	Save(ctx context.Context, sessionID string, state State) error
	Delete(ctx context.Context, sessionID string) error
}

// Locker guards order submission so one session submits at most one order at a time.
type Locker interface {
	Acquire(ctx context.Context, sessionID string) (token string, acquired bool, err error)
	Release(ctx context.Context, sessionID, token string) error
}

type redisStates struct {
	kv   redis.Store
	ttl  time.Duration
	logg *logger.Logger
}

func NewRedisStateStore(kv redis.Store, ttl time.Duration, logg *logger.Logger) (StateStore, error) {
	if kv == nil {
		return nil, fmt.Errorf("redis store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &redisStates{kv: kv, ttl: ttl, logg: logg}, nil
}

func (r *redisStates) Load(ctx context.Context, sessionID string) (State, error) {
	raw, err := r.kv.Get(ctx, r.kv.CheckoutKey(sessionID))
	if err != nil {
		if redis.IsNil(err) {
			return Editing(), nil
		}
		return State{}, fmt.Errorf("load checkout state: %w", err)
	}
	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil || !state.Phase.IsValid() {
		r.logg.Warn(r.logg.WithSessionID(ctx, sessionID), "discarding malformed checkout state")
		return Editing(), nil
	}
	return state, nil
}

func (r *redisStates) Save(ctx context.Context, sessionID string, state State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode checkout state: %w", err)
	}
	if err := r.kv.Set(ctx, r.kv.CheckoutKey(sessionID), string(payload), r.ttl); err != nil {
		return fmt.Errorf("save checkout state: %w", err)
	}
	return nil
}

func (r *redisStates) Delete(ctx context.Context, sessionID string) error {
	if err := r.kv.Del(ctx, r.kv.CheckoutKey(sessionID)); err != nil {
		return fmt.Errorf("delete checkout state: %w", err)
	}
	return nil
}

type redisLocker struct {
	kv  redis.Store
	ttl time.Duration
}

// NewRedisLocker takes the submit lock with SETNX. The ttl bounds how long a crashed submit
// can hold it.
func NewRedisLocker(kv redis.Store, ttl time.Duration) (Locker, error) {
	if kv == nil {
		return nil, fmt.Errorf("redis store required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("lock ttl must be positive")
	}
	return &redisLocker{kv: kv, ttl: ttl}, nil
}

func (r *redisLocker) Acquire(ctx context.Context, sessionID string) (string, bool, error) {
	token := uuid.NewString()
	ok, err := r.kv.SetNX(ctx, r.kv.CheckoutLockKey(sessionID), token, r.ttl)
	if err != nil {
		return "", false, fmt.Errorf("acquire checkout lock: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (r *redisLocker) Release(ctx context.Context, sessionID, token string) error {
	if _, err := r.kv.ReleaseLock(ctx, r.kv.CheckoutLockKey(sessionID), token); err != nil {
		return fmt.Errorf("release checkout lock: %w", err)
	}
	return nil
}
