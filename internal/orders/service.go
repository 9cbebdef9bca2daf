package orders

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/graingrove-backend/internal/notices"
	"github.com/angelmondragon/graingrove-backend/pkg/db/models"
	"github.com/angelmondragon/graingrove-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/graingrove-backend/pkg/errors"
	"github.com/angelmondragon/graingrove-backend/pkg/logger"
	"github.com/angelmondragon/graingrove-backend/pkg/outbox"
	"github.com/angelmondragon/graingrove-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service places orders.
type Service interface {
	// SubmitOrder stores the order and queues its order_created event. It never returns an
	// error: failures come back as an unsuccessful result plus an error notice.
	SubmitOrder(ctx context.Context, order Order) SubmitResult
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	logg   *logger.Logger
}

func NewService(repo Repository, tx txRunner, outbox outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, tx: tx, outbox: outbox, logg: logg}, nil
}

func (s *service) SubmitOrder(ctx context.Context, order Order) SubmitResult {
	id, err := s.place(ctx, order)
	if err != nil {
		s.logg.Error(ctx, "failed to submit order", err)
		notices.Notify(ctx, notices.Error("Error", "Failed to submit your order. Please try again."))
		return SubmitResult{Success: false}
	}

	s.logg.Info(s.logg.WithOrderID(ctx, id), "order placed")
	return SubmitResult{Success: true, OrderID: &id}
}

func (s *service) place(ctx context.Context, order Order) (int64, error) {
	if err := validateOrder(order); err != nil {
		return 0, err
	}

	status := order.Status
	if status == "" {
		status = enums.OrderStatusPending
	}
	row := &models.Order{
		UserEmail: strings.TrimSpace(order.ContactEmail),
		FullName:  order.ShipTo.FullName,
		Address:   order.ShipTo.Address,
		City:      order.ShipTo.City,
		State:     order.ShipTo.State,
		Zip:       order.ShipTo.Zip,
		Total:     order.Total,
		Items:     order.Lines,
		Status:    status,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert order")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   strconv.FormatInt(row.ID, 10),
			Data: payloads.OrderCreatedEvent{
				OrderID:      row.ID,
				ContactEmail: row.UserEmail,
				Total:        row.Total,
				ItemCount:    itemCount(row.Items),
				Items:        row.Items,
			},
		})
	})
	if err != nil {
		return 0, err
	}
	return row.ID, nil
}

func validateOrder(order Order) error {
	if strings.TrimSpace(order.ContactEmail) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "contact email is required")
	}
	if len(order.Lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order has no items")
	}
	if order.Total.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "order total must be non-negative")
	}
	if order.Status != "" && !order.Status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}
	return nil
}
