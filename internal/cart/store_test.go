package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/graingrove-backend/internal/notices"
	pkgerrors "github.com/angelmondragon/graingrove-backend/pkg/errors"
	"github.com/angelmondragon/graingrove-backend/pkg/logger"
)

var (
	quinoa = ProductSnapshot{ID: 1, Name: "Organic Quinoa", Price: decimal.RequireFromString("12.50"), ImageRef: "/img/quinoa.jpg"}
	farro  = ProductSnapshot{ID: 2, Name: "Pearled Farro", Price: decimal.RequireFromString("7.25"), ImageRef: "/img/farro.jpg"}
)

func openStore(t *testing.T, snapshots SnapshotStore) (*Store, *notices.Collector) {
	t.Helper()
	collector := notices.NewCollector()
	store, err := Open(context.Background(), "sess-1", snapshots, collector, logger.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return store, collector
}

func TestAddAppendsNewLine(t *testing.T) {
	snapshots := newMemorySnapshots()
	store, collector := openStore(t, snapshots)

	if err := store.Add(context.Background(), quinoa, 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	cart := store.Cart()
	if len(cart.Lines) != 1 || cart.Lines[0].Quantity != 2 || cart.Lines[0].Name != "Organic Quinoa" {
		t.Fatalf("unexpected cart %+v", cart)
	}
	got := collector.Items()
	if len(got) != 1 || got[0].Title != "Added to cart" || got[0].Message != "Organic Quinoa added to your cart" {
		t.Fatalf("unexpected notices %+v", got)
	}
	if stored := snapshots.stored("sess-1"); len(stored) != 1 || stored[0].Quantity != 2 {
		t.Fatalf("snapshot not written: %+v", stored)
	}
}

func TestAddMergesDuplicateProduct(t *testing.T) {
	store, collector := openStore(t, newMemorySnapshots())
	ctx := context.Background()

	_ = store.Add(ctx, quinoa, 2)
	_ = store.Add(ctx, farro, 1)
	changed := quinoa
	changed.Price = decimal.RequireFromString("99")
	if err := store.Add(ctx, changed, 3); err != nil {
		t.Fatalf("add: %v", err)
	}

	cart := store.Cart()
	if len(cart.Lines) != 2 {
		t.Fatalf("expected 2 lines got %d", len(cart.Lines))
	}
	if cart.Lines[0].ProductID != quinoa.ID || cart.Lines[0].Quantity != 5 {
		t.Fatalf("expected merged first line with quantity 5, got %+v", cart.Lines[0])
	}
	if !cart.Lines[0].UnitPrice.Equal(quinoa.Price) {
		t.Fatalf("price must stay as first added, got %s", cart.Lines[0].UnitPrice)
	}
	last := collector.Items()[2]
	if last.Title != "Cart updated" || last.Message != "Organic Quinoa quantity increased to 5" {
		t.Fatalf("unexpected merge notice %+v", last)
	}
}

func TestAddSameProductTwiceMergesQuantityAndSubtotal(t *testing.T) {
	store, _ := openStore(t, newMemorySnapshots())
	ctx := context.Background()
	oats := ProductSnapshot{ID: 10, Name: "Rolled Oats", Price: decimal.RequireFromString("10.00"), ImageRef: "/img/oats.jpg"}

	if err := store.Add(ctx, oats, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Add(ctx, oats, 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	cart := store.Cart()
	if len(cart.Lines) != 1 || cart.Lines[0].Quantity != 3 {
		t.Fatalf("expected one line with quantity 3, got %+v", cart.Lines)
	}
	if cart.ItemCount() != 3 {
		t.Fatalf("expected item count 3, got %d", cart.ItemCount())
	}
	if !cart.Subtotal().Equal(decimal.RequireFromString("30.00")) {
		t.Fatalf("expected subtotal 30.00, got %s", cart.Subtotal())
	}
}

func TestAggregates(t *testing.T) {
	store, _ := openStore(t, newMemorySnapshots())
	ctx := context.Background()
	_ = store.Add(ctx, quinoa, 2)
	_ = store.Add(ctx, farro, 3)

	cart := store.Cart()
	if cart.ItemCount() != 5 {
		t.Fatalf("expected item count 5 got %d", cart.ItemCount())
	}
	want := decimal.RequireFromString("46.75")
	if !cart.Subtotal().Equal(want) {
		t.Fatalf("expected subtotal %s got %s", want, cart.Subtotal())
	}

	empty := Cart{}
	if empty.ItemCount() != 0 || !empty.Subtotal().IsZero() || !empty.IsEmpty() {
		t.Fatal("empty cart aggregates must be zero")
	}
}

func TestUpdateQuantity(t *testing.T) {
	snapshots := newMemorySnapshots()
	store, collector := openStore(t, snapshots)
	ctx := context.Background()
	_ = store.Add(ctx, quinoa, 2)

	if err := store.UpdateQuantity(ctx, quinoa.ID, 7); err != nil {
		t.Fatalf("update: %v", err)
	}
	if line, _ := store.Cart().Line(quinoa.ID); line.Quantity != 7 {
		t.Fatalf("expected quantity 7 got %d", line.Quantity)
	}

	for _, qty := range []int{0, -3} {
		if err := store.UpdateQuantity(ctx, quinoa.ID, qty); err != nil {
			t.Fatalf("update: %v", err)
		}
		if line, _ := store.Cart().Line(quinoa.ID); line.Quantity != 7 {
			t.Fatalf("quantity %d must be ignored, got %d", qty, line.Quantity)
		}
	}

	if err := store.UpdateQuantity(ctx, 404, 3); err != nil {
		t.Fatalf("update unknown: %v", err)
	}
	if len(store.Cart().Lines) != 1 {
		t.Fatal("unknown product must not create a line")
	}
	if len(collector.Items()) != 1 {
		t.Fatalf("quantity updates must not emit notices, got %+v", collector.Items())
	}
	if snapshots.saves != 5 {
		t.Fatalf("every call must re-snapshot, got %d saves", snapshots.saves)
	}
}

func TestRemove(t *testing.T) {
	store, collector := openStore(t, newMemorySnapshots())
	ctx := context.Background()
	_ = store.Add(ctx, quinoa, 1)
	_ = store.Add(ctx, farro, 1)

	if err := store.Remove(ctx, quinoa.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	cart := store.Cart()
	if len(cart.Lines) != 1 || cart.Lines[0].ProductID != farro.ID {
		t.Fatalf("unexpected cart after remove %+v", cart)
	}
	last := collector.Items()[2]
	if last.Title != "Removed from cart" || last.Message != "Organic Quinoa removed from your cart" {
		t.Fatalf("unexpected remove notice %+v", last)
	}

	if err := store.Remove(ctx, quinoa.ID); err != nil {
		t.Fatalf("remove absent: %v", err)
	}
	if len(collector.Items()) != 3 {
		t.Fatal("removing an absent product must not emit a notice")
	}
}

func TestClearAlwaysNotifies(t *testing.T) {
	snapshots := newMemorySnapshots()
	store, collector := openStore(t, snapshots)
	ctx := context.Background()

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	_ = store.Add(ctx, quinoa, 1)
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}

	cleared := store.Cart()
	if !cleared.IsEmpty() || cleared.ItemCount() != 0 || !cleared.Subtotal().IsZero() {
		t.Fatalf("cart should be empty with zero totals, got %+v", cleared)
	}
	clearNotices := 0
	for _, n := range collector.Items() {
		if n.Title == "Cart cleared" && n.Message == "All items have been removed from your cart" {
			clearNotices++
		}
	}
	if clearNotices != 2 {
		t.Fatalf("expected 2 clear notices got %d", clearNotices)
	}
	if len(snapshots.stored("sess-1")) != 0 {
		t.Fatal("snapshot should be empty after clear")
	}
}

func TestReopenRestoresSnapshot(t *testing.T) {
	snapshots := newMemorySnapshots()
	store, _ := openStore(t, snapshots)
	ctx := context.Background()
	_ = store.Add(ctx, quinoa, 2)
	_ = store.Add(ctx, farro, 1)

	reopened, _ := openStore(t, snapshots)
	cart := reopened.Cart()
	if len(cart.Lines) != 2 || cart.Lines[0].ProductID != quinoa.ID || cart.Lines[1].ProductID != farro.ID {
		t.Fatalf("expected insertion order preserved, got %+v", cart.Lines)
	}
	if cart.ItemCount() != 3 {
		t.Fatalf("expected item count 3 got %d", cart.ItemCount())
	}
}

func TestSaveFailureReturnsDependencyError(t *testing.T) {
	snapshots := newMemorySnapshots()
	store, collector := openStore(t, snapshots)
	snapshots.saveErr = errors.New("connection refused")

	err := store.Add(context.Background(), quinoa, 1)
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error got %v", err)
	}
	if len(collector.Items()) != 0 {
		t.Fatal("no notice should be emitted when the snapshot write fails")
	}
}

func TestOpenFailures(t *testing.T) {
	snapshots := newMemorySnapshots()
	snapshots.loadErr = errors.New("connection refused")
	if _, err := Open(context.Background(), "sess-1", snapshots, nil, nil); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error got %v", err)
	}

	if _, err := Open(context.Background(), "", newMemorySnapshots(), nil, nil); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for empty session got %v", err)
	}
}

func TestSubscribe(t *testing.T) {
	store, _ := openStore(t, newMemorySnapshots())
	ctx := context.Background()

	var seen []int
	unsubscribe := store.Subscribe(func(c Cart) { seen = append(seen, c.ItemCount()) })
	_ = store.Add(ctx, quinoa, 2)
	_ = store.Add(ctx, quinoa, 1)
	unsubscribe()
	_ = store.Clear(ctx)

	if len(seen) != 2 || seen[0] != 2 || seen[1] != 3 {
		t.Fatalf("unexpected subscriber calls %v", seen)
	}
}

func TestCartReturnsCopy(t *testing.T) {
	store, _ := openStore(t, newMemorySnapshots())
	_ = store.Add(context.Background(), quinoa, 1)

	view := store.Cart()
	view.Lines[0].Quantity = 99
	if line, _ := store.Cart().Line(quinoa.ID); line.Quantity != 1 {
		t.Fatal("mutating a view must not change the store")
	}
}
