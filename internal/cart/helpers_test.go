package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type memorySnapshots struct {
	mu      sync.Mutex
	data    map[string][]Line
	saves   int
	saveErr error
	loadErr error
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{data: map[string][]Line{}}
}

func (m *memorySnapshots) Load(ctx context.Context, sessionID string) ([]Line, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return copyLines(m.data[sessionID]), nil
}

func (m *memorySnapshots) Save(ctx context.Context, sessionID string, lines []Line) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.data[sessionID] = copyLines(lines)
	return nil
}

func (m *memorySnapshots) stored(sessionID string) []Line {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyLines(m.data[sessionID])
}

type memoryKV struct {
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryKV) Get(ctx context.Context, key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (m *memoryKV) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = ttl
	return nil
}

func (m *memoryKV) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	return false, errors.New("not used")
}

func (m *memoryKV) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memoryKV) ReleaseLock(ctx context.Context, key, token string) (bool, error) {
	return false, errors.New("not used")
}

func (m *memoryKV) CartKey(sessionID string) string         { return "gg:cart:" + sessionID }
func (m *memoryKV) CheckoutKey(sessionID string) string     { return "gg:checkout:" + sessionID }
func (m *memoryKV) CheckoutLockKey(sessionID string) string { return "gg:checkout-lock:" + sessionID }
