package notices

import (
	"context"
	"testing"

	"github.com/angelmondragon/graingrove-backend/pkg/enums"
)

func TestCollectorKeepsOrder(t *testing.T) {
	c := NewCollector()
	ctx := WithCollector(context.Background(), c)

	Notify(ctx, Info("Added to cart", "Spelt added to your cart"))
	Notify(ctx, Error("Cart is empty", ""))

	items := Collected(ctx)
	if len(items) != 2 {
		t.Fatalf("expected 2 notices got %d", len(items))
	}
	if items[0].Kind != enums.NoticeInfo || items[0].Title != "Added to cart" {
		t.Fatalf("unexpected first notice %+v", items[0])
	}
	if items[1].Kind != enums.NoticeError {
		t.Fatalf("unexpected second notice %+v", items[1])
	}

	items[0].Title = "mutated"
	if c.Items()[0].Title != "Added to cart" {
		t.Fatal("Items must return a copy")
	}
}

func TestMissingCollectorDiscards(t *testing.T) {
	ctx := context.Background()
	Notify(ctx, Info("ignored", ""))

	if got := Collected(ctx); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
	if FromContext(ctx) != Discard {
		t.Fatal("expected Discard notifier without collector")
	}
}
