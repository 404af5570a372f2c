package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking/internal/filter"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/queue"
	"github.com/iliyamo/cinema-booking/internal/validation"
)

// OrderStore is the persistence the order workflow needs.  Every call is
// scoped to the user id it receives.
type OrderStore interface {
	ListForUser(ctx context.Context, userID uint64, p filter.Page) ([]model.Order, int, error)
	GetForUser(ctx context.Context, userID, id uint64) (*model.Order, error)
	Create(ctx context.Context, userID uint64, specs []model.TicketSpec, createdAt time.Time) (uint64, error)
	Replace(ctx context.Context, userID, id uint64, specs []model.TicketSpec) error
	Delete(ctx context.Context, userID, id uint64) error
}

// OrderService books tickets on behalf of a user.
type OrderService struct {
	store OrderStore
	pub   Publisher
	log   *zap.Logger
	now   func() time.Time
}

// NewOrderService wires the workflow.  A nil publisher disables events.
func NewOrderService(store OrderStore, pub Publisher, log *zap.Logger) *OrderService {
	if pub == nil {
		pub = NopPublisher{}
	}
	return &OrderService{store: store, pub: pub, log: log, now: time.Now}
}

func (s *OrderService) List(ctx context.Context, userID uint64, p filter.Page) ([]model.Order, int, error) {
	return s.store.ListForUser(ctx, userID, p)
}

func (s *OrderService) Get(ctx context.Context, userID, id uint64) (*model.Order, error) {
	return s.store.GetForUser(ctx, userID, id)
}

// Create books every spec in one order or nothing at all, then announces
// the order.  A failed announcement is logged and does not fail the call.
func (s *OrderService) Create(ctx context.Context, userID uint64, specs []model.TicketSpec) (*model.Order, error) {
	if err := requireTickets(specs); err != nil {
		return nil, err
	}
	id, err := s.store.Create(ctx, userID, specs, s.now().UTC())
	if err != nil {
		return nil, err
	}
	order, err := s.store.GetForUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.pub.PublishOrderCreated(ctx, orderCreatedEvent(order)); err != nil {
		s.log.Warn("order event not delivered", zap.Uint64("order_id", id), zap.Error(err))
	}
	return order, nil
}

// Replace swaps the tickets of an owned order.
func (s *OrderService) Replace(ctx context.Context, userID, id uint64, specs []model.TicketSpec) (*model.Order, error) {
	if err := requireTickets(specs); err != nil {
		return nil, err
	}
	if err := s.store.Replace(ctx, userID, id, specs); err != nil {
		return nil, err
	}
	return s.store.GetForUser(ctx, userID, id)
}

func (s *OrderService) Delete(ctx context.Context, userID, id uint64) error {
	return s.store.Delete(ctx, userID, id)
}

func requireTickets(specs []model.TicketSpec) error {
	if len(specs) == 0 {
		return validation.Field("tickets", "at least one ticket is required")
	}
	return nil
}

func orderCreatedEvent(o *model.Order) queue.OrderCreatedEvent {
	ev := queue.OrderCreatedEvent{
		OrderID:   o.ID,
		UserID:    o.UserID,
		CreatedAt: o.CreatedAt.UTC().Format(time.RFC3339),
		Tickets:   make([]queue.TicketEntry, 0, len(o.Tickets)),
	}
	for _, t := range o.Tickets {
		entry := queue.TicketEntry{MovieSessionID: t.MovieSessionID, Row: t.Row, Seat: t.Seat}
		if ms := t.MovieSession; ms != nil {
			entry.ShowTime = ms.ShowTime.UTC().Format(time.RFC3339)
			if ms.Movie != nil {
				entry.MovieTitle = ms.Movie.Title
			}
			if ms.CinemaHall != nil {
				entry.CinemaHall = ms.CinemaHall.Name
			}
		}
		ev.Tickets = append(ev.Tickets, entry)
	}
	return ev
}
