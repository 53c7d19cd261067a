package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/validate"
)

// OrderPage is one page of the order listing.
type OrderPage struct {
	Total  int64          `json:"total"`
	Page   int            `json:"page"`
	Limit  int            `json:"limit"`
	Orders []models.Order `json:"orders"`
}

type OrderService struct {
	store  repositories.OrderStore
	events *event.Bus
	clock  Clock
}

func NewOrderService(store repositories.OrderStore, events *event.Bus, clock Clock) *OrderService {
	return &OrderService{store: store, events: events, clock: clock}
}

// List returns one page of orders, newest first.
func (s *OrderService) List(ctx context.Context, page, limit int) (*OrderPage, error) {
	page, limit = normalizePaging(page, limit)

	var (
		orders []models.Order
		total  int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = s.store.FindOrders(gctx, offset(page, limit), limit)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.store.CountOrders(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &OrderPage{Total: total, Page: page, Limit: limit, Orders: orders}, nil
}

// Create places an order for actorID. Admins may order on behalf of another
// user by naming them in in.UserID. The total defaults to the sum of the
// line items.
func (s *OrderService) Create(ctx context.Context, actorID string, admin bool, in models.OrderInput) (*models.Order, error) {
	userID := actorID
	if admin && in.UserID != "" {
		userID = in.UserID
	}

	now := stamp(s.clock)
	o := &models.Order{
		ID:        newID(),
		UserID:    userID,
		Products:  in.Products,
		Status:    models.OrderPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if o.Products == nil {
		o.Products = []models.LineItem{}
	}
	if in.TotalAmount != nil {
		o.TotalAmount = *in.TotalAmount
	} else {
		o.TotalAmount = o.Total()
	}

	if v := validate.Struct(o); validate.HasErrors(v) {
		return nil, invalid(v)
	}
	if err := s.store.InsertOrder(ctx, o); err != nil {
		return nil, err
	}
	s.changed("created", o.ID)
	return o, nil
}

// UpdateStatus sets the order status. Any status may follow any other.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, in models.OrderStatusInput) (*models.Order, error) {
	if v := validate.Var("status", string(in.Status), "required,oneof=pending completed cancelled"); validate.HasErrors(v) {
		return nil, invalid(v)
	}
	if !validID(id) {
		return nil, notFound("Order not found")
	}

	o, err := s.store.UpdateOrderStatus(ctx, id, in.Status, stamp(s.clock))
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, notFound("Order not found")
	}
	s.changed("updated", o.ID)
	return o, nil
}

func (s *OrderService) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return notFound("Order not found")
	}
	ok, err := s.store.DeleteOrder(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return notFound("Order not found")
	}
	s.changed("deleted", id)
	return nil
}

func (s *OrderService) changed(action, id string) {
	s.events.Fire(event.OrderChanged, event.Change{Entity: "order", Action: action, ID: id})
}
