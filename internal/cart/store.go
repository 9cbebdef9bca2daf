package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/graingrove-backend/internal/notices"
	pkgerrors "github.com/angelmondragon/graingrove-backend/pkg/errors"
	"github.com/angelmondragon/graingrove-backend/pkg/logger"
)

// Store is the authoritative cart of one session. Every mutation writes the whole cart back to
// the snapshot store before returning. A Store is not safe for concurrent use; Manager
// serializes access per session.
type Store struct {
	sessionID string
	lines     []Line
	snapshots SnapshotStore
	notifier  notices.Notifier

	subscribers map[int]func(Cart)
	nextSubID   int
}

// Open restores the session's cart from its snapshot. A missing or malformed snapshot yields an
// empty cart. Only a failure to reach the snapshot store is returned.
func Open(ctx context.Context, sessionID string, snapshots SnapshotStore, notifier notices.Notifier, logg *logger.Logger) (*Store, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart session is required")
	}
	if snapshots == nil {
		return nil, fmt.Errorf("snapshot store required")
	}
	if notifier == nil {
		notifier = notices.Discard
	}

	lines, err := snapshots.Load(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, ErrMalformedSnapshot) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cart storage unavailable")
		}
		if logg != nil {
			logg.Warn(logg.WithField(ctx, "error", err.Error()), "discarding malformed cart snapshot")
		}
		lines = nil
	}

	return &Store{
		sessionID:   sessionID,
		lines:       lines,
		snapshots:   snapshots,
		notifier:    notifier,
		subscribers: map[int]func(Cart){},
	}, nil
}

// Cart returns a copy of the current cart.
func (s *Store) Cart() Cart {
	return Cart{Lines: copyLines(s.lines)}
}

// Subscribe registers fn to receive the cart after every successful mutation.
func (s *Store) Subscribe(fn func(Cart)) (unsubscribe func()) {
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	return func() { delete(s.subscribers, id) }
}

// Add merges qty into the product's existing line or appends a new line. qty is not clamped.
func (s *Store) Add(ctx context.Context, product ProductSnapshot, qty int) error {
	if i := s.indexOf(product.ID); i >= 0 {
		s.lines[i].Quantity += qty
		line := s.lines[i]
		return s.commit(ctx, notices.Info("Cart updated", fmt.Sprintf("%s quantity increased to %d", line.Name, line.Quantity)))
	}

	s.lines = append(s.lines, Line{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Quantity:  qty,
		ImageRef:  product.ImageRef,
	})
	return s.commit(ctx, notices.Info("Added to cart", fmt.Sprintf("%s added to your cart", product.Name)))
}

// UpdateQuantity sets the line's quantity. Quantities below one and unknown products are ignored.
func (s *Store) UpdateQuantity(ctx context.Context, productID int64, qty int) error {
	if qty >= 1 {
		if i := s.indexOf(productID); i >= 0 {
			s.lines[i].Quantity = qty
		}
	}
	return s.commit(ctx)
}

// Remove deletes the product's line if present.
func (s *Store) Remove(ctx context.Context, productID int64) error {
	i := s.indexOf(productID)
	if i < 0 {
		return s.commit(ctx)
	}
	removed := s.lines[i]
	s.lines = append(s.lines[:i:i], s.lines[i+1:]...)
	return s.commit(ctx, notices.Info("Removed from cart", fmt.Sprintf("%s removed from your cart", removed.Name)))
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) error {
	s.lines = nil
	return s.commit(ctx, notices.Info("Cart cleared", "All items have been removed from your cart"))
}

// commit writes the snapshot, then emits the notices and notifies subscribers.
func (s *Store) commit(ctx context.Context, emitted ...notices.Notice) error {
	if err := s.snapshots.Save(ctx, s.sessionID, s.lines); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cart storage unavailable")
	}
	for _, n := range emitted {
		s.notifier.Notify(n)
	}
	if len(s.subscribers) > 0 {
		view := s.Cart()
		for _, fn := range s.subscribers {
			fn(view)
		}
	}
	return nil
}

func (s *Store) indexOf(productID int64) int {
	for i, line := range s.lines {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}
