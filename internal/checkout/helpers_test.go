package checkout

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/graingrove-backend/internal/cart"
	"github.com/angelmondragon/graingrove-backend/internal/orders"
	pricing "github.com/angelmondragon/graingrove-backend/pkg/checkout"
	"github.com/angelmondragon/graingrove-backend/pkg/logger"
)

type memoryKV struct {
	mu     sync.Mutex
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryKV) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
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
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = ttl
	return nil
}

func (m *memoryKV) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.data[key]; exists {
		return false, nil
	}
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = ttl
	return true, nil
}

func (m *memoryKV) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memoryKV) ReleaseLock(ctx context.Context, key, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[key] != token {
		return false, nil
	}
	delete(m.data, key)
	return true, nil
}

func (m *memoryKV) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

func (m *memoryKV) CartKey(sessionID string) string         { return "gg:cart:" + sessionID }
func (m *memoryKV) CheckoutKey(sessionID string) string     { return "gg:checkout:" + sessionID }
func (m *memoryKV) CheckoutLockKey(sessionID string) string { return "gg:checkout-lock:" + sessionID }

type stubOrders struct {
	mu      sync.Mutex
	calls   []orders.Order
	result  orders.SubmitResult
	started chan struct{}
	once    sync.Once
	release chan struct{}
	onCall  func(ctx context.Context)
}

func (s *stubOrders) SubmitOrder(ctx context.Context, order orders.Order) orders.SubmitResult {
	s.mu.Lock()
	s.calls = append(s.calls, order)
	s.mu.Unlock()
	if s.onCall != nil {
		s.onCall(ctx)
	}
	if s.started != nil {
		s.once.Do(func() { close(s.started) })
	}
	if s.release != nil {
		<-s.release
	}
	return s.result
}

func (s *stubOrders) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type stubRecorder struct {
	mu       sync.Mutex
	outcomes []string
	submits  int
}

func (s *stubRecorder) IncCheckout(outcome string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes = append(s.outcomes, outcome)
}

func (s *stubRecorder) ObserveSubmit(time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submits++
}

type flowFixture struct {
	flow     *Flow
	kv       *memoryKV
	carts    *cart.Manager
	orders   *stubOrders
	recorder *stubRecorder
}

func newFlowFixture(t *testing.T, submitter *stubOrders) flowFixture {
	t.Helper()

	kv := newMemoryKV()
	snapshots, err := cart.NewRedisSnapshots(kv, 0)
	if err != nil {
		t.Fatalf("snapshots: %v", err)
	}
	manager, err := cart.NewManager(snapshots, logger.Nop())
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	states, err := NewRedisStateStore(kv, time.Hour, logger.Nop())
	if err != nil {
		t.Fatalf("states: %v", err)
	}
	locker, err := NewRedisLocker(kv, 30*time.Second)
	if err != nil {
		t.Fatalf("locker: %v", err)
	}
	if submitter == nil {
		submitter = &stubOrders{}
	}
	recorder := &stubRecorder{}

	flow, err := NewFlow(FlowParams{
		Carts:         manager,
		Orders:        submitter,
		States:        states,
		Locker:        locker,
		Policy:        pricing.DefaultShippingPolicy(),
		SubmitTimeout: time.Second,
		Metrics:       recorder,
		Logger:        logger.Nop(),
	})
	if err != nil {
		t.Fatalf("flow: %v", err)
	}
	return flowFixture{flow: flow, kv: kv, carts: manager, orders: submitter, recorder: recorder}
}

func (f flowFixture) addToCart(t *testing.T, sessionID string, id int64, price string, qty int) {
	t.Helper()
	ctx := context.Background()
	_, err := f.carts.Update(ctx, sessionID, func(s *cart.Store) error {
		return s.Add(ctx, cart.ProductSnapshot{
			ID:       id,
			Name:     fmt.Sprintf("Product %d", id),
			Price:    decimal.RequireFromString(price),
			ImageRef: fmt.Sprintf("/img/%d.jpg", id),
		}, qty)
	})
	if err != nil {
		t.Fatalf("add to cart: %v", err)
	}
}

// gatedLocker holds every acquisition after the first until gate is closed.
type gatedLocker struct {
	inner   Locker
	mu      sync.Mutex
	calls   int
	waiting chan struct{}
	gate    chan struct{}
}

func (g *gatedLocker) Acquire(ctx context.Context, sessionID string) (string, bool, error) {
	g.mu.Lock()
	g.calls++
	call := g.calls
	g.mu.Unlock()
	if call > 1 {
		close(g.waiting)
		<-g.gate
	}
	return g.inner.Acquire(ctx, sessionID)
}

func (g *gatedLocker) Release(ctx context.Context, sessionID, token string) error {
	return g.inner.Release(ctx, sessionID, token)
}

func int64Ptr(v int64) *int64 {
	return &v
}
