package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/graingrove-backend/internal/cart"
	"github.com/angelmondragon/graingrove-backend/internal/notices"
	"github.com/angelmondragon/graingrove-backend/internal/orders"
	pricing "github.com/angelmondragon/graingrove-backend/pkg/checkout"
	"github.com/angelmondragon/graingrove-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/graingrove-backend/pkg/errors"
	"github.com/angelmondragon/graingrove-backend/pkg/logger"
	"github.com/angelmondragon/graingrove-backend/pkg/metrics"
)

const (
	defaultSubmitTimeout = 20 * time.Second
	productsPath         = "/products"
)

type cartSource interface {
	View(ctx context.Context, sessionID string) (cart.Cart, error)
	Update(ctx context.Context, sessionID string, fn func(*cart.Store) error) (cart.Cart, error)
}

type orderSubmitter interface {
	SubmitOrder(ctx context.Context, order orders.Order) orders.SubmitResult
}

type submitRecorder interface {
	IncCheckout(outcome string)
	ObserveSubmit(duration time.Duration)
}

// FlowParams wires a Flow.
type FlowParams struct {
	Carts         cartSource
	Orders        orderSubmitter
	States        StateStore
	Locker        Locker
	Policy        pricing.ShippingPolicy
	SubmitTimeout time.Duration
	Metrics       submitRecorder
	Logger        *logger.Logger
}

// Flow drives a session from editing through submitting to confirmed.
type Flow struct {
	carts         cartSource
	orders        orderSubmitter
	states        StateStore
	locker        Locker
	policy        pricing.ShippingPolicy
	submitTimeout time.Duration
	metrics       submitRecorder
	logg          *logger.Logger
}

func NewFlow(params FlowParams) (*Flow, error) {
	if params.Carts == nil {
		return nil, fmt.Errorf("cart source required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order submitter required")
	}
	if params.States == nil {
		return nil, fmt.Errorf("state store required")
	}
	if params.Locker == nil {
		return nil, fmt.Errorf("locker required")
	}
	timeout := params.SubmitTimeout
	if timeout <= 0 {
		timeout = defaultSubmitTimeout
	}
	recorder := params.Metrics
	if recorder == nil {
		recorder = (*metrics.StorefrontMetrics)(nil)
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Flow{
		carts:         params.Carts,
		orders:        params.Orders,
		states:        params.States,
		locker:        params.Locker,
		policy:        params.Policy,
		submitTimeout: timeout,
		metrics:       recorder,
		logg:          logg,
	}, nil
}

// Summary is the order summary shown beside the checkout form.
type Summary struct {
	Lines     []cart.Line
	LineCount int
	ItemCount int
	Quote     pricing.Quote
}

// View is the checkout page: current state plus the summary of the cart being checked out.
type View struct {
	State   State
	Summary Summary
}

// Status returns the session's checkout state and order summary.
func (f *Flow) Status(ctx context.Context, sessionID string) (View, error) {
	state, err := f.states.Load(ctx, sessionID)
	if err != nil {
		return View{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checkout storage unavailable")
	}
	current, err := f.carts.View(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	return View{State: state, Summary: f.summarize(current)}, nil
}

// Validate checks the form without touching checkout state.
func (f *Flow) Validate(form Form) FieldErrors {
	return Validate(form)
}

// Submit places the cart as an order. Failures other than the order store rejecting the order
// leave the state in editing and return a typed error; a rejected order also returns to editing.
// Resubmitting a confirmed checkout with an empty cart returns the existing confirmation.
func (f *Flow) Submit(ctx context.Context, sessionID string, form Form) (State, error) {
	ctx = f.logg.WithSessionID(ctx, sessionID)

	state, current, err := f.load(ctx, sessionID)
	if err != nil {
		return State{}, err
	}
	if current.IsEmpty() {
		return f.emptyCart(ctx, state)
	}

	if fieldErrs := Validate(form); !fieldErrs.Valid() {
		f.metrics.IncCheckout(metrics.OutcomeInvalidForm)
		notices.Notify(ctx, notices.Error("Form validation error", "Please check the form for errors and try again."))
		return Editing(), pkgerrors.New(pkgerrors.CodeValidation, "checkout form is invalid").
			WithDetails(map[string]any{
				"errors":              fieldErrs,
				"first_invalid_field": fieldErrs.First(),
			})
	}

	token, acquired, err := f.locker.Acquire(ctx, sessionID)
	if err != nil {
		return State{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checkout lock unavailable")
	}
	if !acquired {
		f.metrics.IncCheckout(metrics.OutcomeInFlight)
		return State{Phase: enums.CheckoutSubmitting}, pkgerrors.New(pkgerrors.CodeConflict, "checkout already in progress")
	}

	// past the lock nothing observes the caller's cancellation
	detached := context.WithoutCancel(ctx)
	defer func() {
		if err := f.locker.Release(detached, sessionID, token); err != nil {
			f.logg.Warn(f.logg.WithField(detached, "error", err.Error()), "failed to release checkout lock")
		}
	}()

	// another submit may have finished between the first read and the lock
	latest, current, err := f.load(detached, sessionID)
	if err != nil {
		return State{}, err
	}
	if latest.Confirmed() && !sameOrder(latest, state) {
		f.metrics.IncCheckout(metrics.OutcomeInFlight)
		f.logg.Info(f.logg.WithField(detached, "order_id", latest.OrderID), "checkout already confirmed by a concurrent submit")
		return latest, nil
	}
	if current.IsEmpty() {
		return f.emptyCart(ctx, latest)
	}

	f.saveState(detached, sessionID, State{Phase: enums.CheckoutSubmitting})

	order := f.buildOrder(current, form)
	result := f.submit(detached, order)
	if !result.Success || result.OrderID == nil {
		f.metrics.IncCheckout(metrics.OutcomeFailed)
		f.saveState(detached, sessionID, Editing())
		notices.Notify(ctx, notices.Error("Checkout Error", "There was a problem processing your order. Please try again."))
		return Editing(), pkgerrors.New(pkgerrors.CodeDependency, "order submission failed")
	}

	orderID := *result.OrderID
	detached = f.logg.WithOrderID(detached, orderID)
	if _, err := f.carts.Update(detached, sessionID, func(s *cart.Store) error {
		return s.Clear(detached)
	}); err != nil {
		f.logg.Error(detached, "failed to clear cart after order", err)
	}

	confirmed := State{
		Phase:        enums.CheckoutConfirmed,
		OrderID:      &orderID,
		ContactEmail: order.ContactEmail,
	}
	f.saveState(detached, sessionID, confirmed)
	f.metrics.IncCheckout(metrics.OutcomeConfirmed)
	notices.Notify(ctx, notices.Info(
		"Order Placed Successfully!",
		fmt.Sprintf("Order #%d has been placed. Thank you for your purchase!", orderID),
	))
	f.logg.Info(detached, "checkout confirmed")
	return confirmed, nil
}

// Reset discards the session's checkout state, as leaving the confirmation page does.
func (f *Flow) Reset(ctx context.Context, sessionID string) error {
	if err := f.states.Delete(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checkout storage unavailable")
	}
	return nil
}

func (f *Flow) load(ctx context.Context, sessionID string) (State, cart.Cart, error) {
	state, err := f.states.Load(ctx, sessionID)
	if err != nil {
		return State{}, cart.Cart{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checkout storage unavailable")
	}
	current, err := f.carts.View(ctx, sessionID)
	if err != nil {
		return State{}, cart.Cart{}, err
	}
	return state, current, nil
}

func (f *Flow) emptyCart(ctx context.Context, state State) (State, error) {
	if state.Confirmed() {
		return state, nil
	}
	f.metrics.IncCheckout(metrics.OutcomeEmptyCart)
	notices.Notify(ctx, notices.Error("Cart is empty", "Please add some items to your cart before checking out."))
	return Editing(), pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty").
		WithDetails(map[string]any{"redirect": productsPath})
}

func sameOrder(a, b State) bool {
	if a.OrderID == nil || b.OrderID == nil {
		return a.OrderID == b.OrderID
	}
	return *a.OrderID == *b.OrderID
}

func (f *Flow) submit(ctx context.Context, order orders.Order) orders.SubmitResult {
	ctx, cancel := context.WithTimeout(ctx, f.submitTimeout)
	defer cancel()

	started := time.Now()
	result := f.orders.SubmitOrder(ctx, order)
	f.metrics.ObserveSubmit(time.Since(started))
	return result
}

func (f *Flow) saveState(ctx context.Context, sessionID string, state State) {
	if err := f.states.Save(ctx, sessionID, state); err != nil {
		f.logg.Error(f.logg.WithField(ctx, "checkout_state", state.Phase.String()), "failed to save checkout state", err)
	}
}

func (f *Flow) summarize(current cart.Cart) Summary {
	return Summary{
		Lines:     current.Lines,
		LineCount: len(current.Lines),
		ItemCount: current.ItemCount(),
		Quote:     f.policy.Quote(current.Subtotal()),
	}
}

func (f *Flow) buildOrder(current cart.Cart, form Form) orders.Order {
	quote := f.policy.Quote(current.Subtotal())
	return orders.Order{
		ContactEmail: strings.TrimSpace(form.Email),
		ShipTo: orders.ShipTo{
			FullName: strings.TrimSpace(form.FullName),
			Address:  strings.TrimSpace(form.Address),
			City:     strings.TrimSpace(form.City),
			State:    strings.TrimSpace(form.State),
			Zip:      strings.TrimSpace(form.Zip),
		},
		Total:  quote.Total,
		Lines:  current.LineItems(),
		Status: enums.OrderStatusPending,
	}
}
