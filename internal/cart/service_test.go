package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/graingrove-backend/internal/notices"
	"github.com/angelmondragon/graingrove-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/graingrove-backend/pkg/errors"
	"github.com/angelmondragon/graingrove-backend/pkg/logger"
)

type stubProducts struct {
	products map[int64]*models.Product
}

func (s stubProducts) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	if p, ok := s.products[id]; ok {
		return p, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

type recordedMutation struct {
	op  string
	err error
}

type stubRecorder struct {
	mu    sync.Mutex
	calls []recordedMutation
}

func (s *stubRecorder) ObserveCartMutation(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, recordedMutation{op: op, err: err})
}

func newTestService(t *testing.T) (Service, *memorySnapshots, *stubRecorder) {
	t.Helper()
	snapshots := newMemorySnapshots()
	manager, err := NewManager(snapshots, logger.Nop())
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	products := stubProducts{products: map[int64]*models.Product{
		1: {ID: 1, Name: "Organic Quinoa", Price: decimal.RequireFromString("12.50"), Image: "/img/quinoa.jpg", Stock: 10},
		2: {ID: 2, Name: "Wild Rice", Price: decimal.RequireFromString("9.00"), Stock: 0},
	}}
	recorder := &stubRecorder{}
	svc, err := NewService(manager, products, recorder)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	return svc, snapshots, recorder
}

func TestServiceAddItemSnapshotsProduct(t *testing.T) {
	svc, _, recorder := newTestService(t)
	collector := notices.NewCollector()
	ctx := notices.WithCollector(context.Background(), collector)

	cart, err := svc.AddItem(ctx, "sess-1", 1, 3)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	line, ok := cart.Line(1)
	if !ok || line.Quantity != 3 || line.Name != "Organic Quinoa" || line.ImageRef != "/img/quinoa.jpg" {
		t.Fatalf("unexpected line %+v", line)
	}
	if items := collector.Items(); len(items) != 1 || items[0].Title != "Added to cart" {
		t.Fatalf("expected added notice, got %+v", items)
	}
	if len(recorder.calls) != 1 || recorder.calls[0].op != "add" || recorder.calls[0].err != nil {
		t.Fatalf("unexpected metrics %+v", recorder.calls)
	}
}

func TestServiceAddItemGuards(t *testing.T) {
	svc, snapshots, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name      string
		productID int64
		qty       int
		code      pkgerrors.Code
	}{
		{name: "zero quantity", productID: 1, qty: 0, code: pkgerrors.CodeValidation},
		{name: "above stock", productID: 1, qty: 11, code: pkgerrors.CodeValidation},
		{name: "out of stock", productID: 2, qty: 1, code: pkgerrors.CodeStateConflict},
		{name: "unknown product", productID: 404, qty: 1, code: pkgerrors.CodeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddItem(ctx, "sess-1", tc.productID, tc.qty)
			if !pkgerrors.IsCode(err, tc.code) {
				t.Fatalf("expected %s got %v", tc.code, err)
			}
		})
	}
	if snapshots.saves != 0 {
		t.Fatal("rejected adds must not touch the cart")
	}
}

func TestServiceMutations(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "sess-1", 1, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	cart, err := svc.UpdateItem(ctx, "sess-1", 1, 4)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if cart.ItemCount() != 4 {
		t.Fatalf("expected 4 items got %d", cart.ItemCount())
	}

	cart, err = svc.Get(ctx, "sess-1")
	if err != nil || cart.ItemCount() != 4 {
		t.Fatalf("get: %v %+v", err, cart)
	}

	cart, err = svc.RemoveItem(ctx, "sess-1", 1)
	if err != nil || !cart.IsEmpty() {
		t.Fatalf("remove: %v %+v", err, cart)
	}

	_, _ = svc.AddItem(ctx, "sess-1", 1, 1)
	cart, err = svc.Clear(ctx, "sess-1")
	if err != nil || !cart.IsEmpty() {
		t.Fatalf("clear: %v %+v", err, cart)
	}

	other, err := svc.Get(ctx, "sess-2")
	if err != nil || !other.IsEmpty() {
		t.Fatal("sessions must not share carts")
	}
}

func TestManagerSerializesSession(t *testing.T) {
	snapshots := newMemorySnapshots()
	manager, _ := NewManager(snapshots, logger.Nop())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := manager.Update(ctx, "sess-1", func(s *Store) error {
				return s.Add(ctx, quinoa, 1)
			})
			if err != nil {
				t.Errorf("update: %v", err)
			}
		}()
	}
	wg.Wait()

	cart, err := manager.View(ctx, "sess-1")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if cart.ItemCount() != 50 {
		t.Fatalf("expected 50 units got %d", cart.ItemCount())
	}
	if len(manager.locks.locks) != 0 {
		t.Fatalf("expected lock entries to be released, got %d", len(manager.locks.locks))
	}
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	if _, err := NewService(nil, stubProducts{}, nil); err == nil {
		t.Fatal("expected error without manager")
	}
	manager, _ := NewManager(newMemorySnapshots(), nil)
	if _, err := NewService(manager, nil, nil); err == nil {
		t.Fatal("expected error without product loader")
	}
	if _, err := NewManager(nil, nil); err == nil {
		t.Fatal("expected error without snapshots")
	}
}
