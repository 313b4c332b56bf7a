package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"restaurant/models"
	"restaurant/store"
)

type OrderRepo interface {
	Insert(ctx context.Context, order *models.Order) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	List(ctx context.Context, f models.OrderFilter) ([]models.Order, error)
	AppendItems(ctx context.Context, id primitive.ObjectID, items []models.OrderItem, prev, next models.Totals) (*models.Order, error)
	ReplaceItems(ctx context.Context, id primitive.ObjectID, items []models.OrderItem, totals models.Totals) (*models.Order, error)
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to string, at time.Time) (*models.Order, error)
	SetPaymentStatus(ctx context.Context, id primitive.ObjectID, from, to string) (*models.Order, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
}

type TableRepo interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.Table, error)
	Occupy(ctx context.Context, id, orderID primitive.ObjectID) (*models.Table, error)
	Release(ctx context.Context, id primitive.ObjectID) (*models.Table, error)
}

type MenuRepo interface {
	GetItem(ctx context.Context, id primitive.ObjectID) (*models.MenuItem, error)
	DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) (bool, error)
	IncrementStock(ctx context.Context, id primitive.ObjectID, qty int) error
}

type PaymentRepo interface {
	Insert(ctx context.Context, p *models.Payment) error
	GetByOrder(ctx context.Context, orderID primitive.ObjectID) (*models.Payment, error)
}

// Service coordinates orders with the tables they occupy and the menu stock
// they consume.
type Service struct {
	orders   OrderRepo
	tables   TableRepo
	menu     MenuRepo
	payments PaymentRepo
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(orders OrderRepo, tables TableRepo, menu MenuRepo, payments PaymentRepo, logger zerolog.Logger) *Service {
	return &Service{
		orders:   orders,
		tables:   tables,
		menu:     menu,
		payments: payments,
		logger:   logger.With().Str("component", "orders").Logger(),
		now:      time.Now,
	}
}

type LineInput struct {
	MenuItemID string `json:"menuItemId"`
	Quantity   int    `json:"quantity"`
	Notes      string `json:"notes"`
}

type CreateInput struct {
	TableID      string      `json:"tableId"`
	Items        []LineInput `json:"items"`
	CustomerName string      `json:"customerName"`
	Notes        string      `json:"notes"`
	CreatedBy    string      `json:"-"`
}

type StatusInput struct {
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
}

type UpdateInput struct {
	// Items, if supplied, must be non-empty and replaces the whole line list.
	Items  []LineInput `json:"items"`
	Status string      `json:"status"`
}

func (s *Service) Get(ctx context.Context, id string) (*models.Order, error) {
	oid, err := parseID(id, "order")
	if err != nil {
		return nil, err
	}
	return s.load(ctx, oid)
}

func (s *Service) List(ctx context.Context, f models.OrderFilter) ([]models.Order, error) {
	return s.orders.List(ctx, f)
}

func (s *Service) Table(ctx context.Context, id primitive.ObjectID) (*models.Table, error) {
	t, err := s.tables.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFoundf("table %s not found", id.Hex())
	}
	return t, err
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Order, error) {
	tableID, err := parseID(in.TableID, "table")
	if err != nil {
		return nil, err
	}
	table, err := s.Table(ctx, tableID)
	if err != nil {
		return nil, err
	}
	if table.Status == models.TableMaintenance {
		return nil, conflictf("table %d is under maintenance", table.Number)
	}

	items, err := s.priceLines(ctx, in.Items)
	if err != nil {
		return nil, err
	}
	totals := ComputeTotals(items)

	now := s.now()
	order := &models.Order{
		ID:            primitive.NewObjectID(),
		OrderNumber:   newOrderNumber(now),
		Table:         tableID,
		Items:         items,
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		Total:         totals.Total,
		Status:        models.OrderPending,
		PaymentStatus: models.PaymentUnpaid,
		CustomerName:  in.CustomerName,
		Notes:         in.Notes,
		CreatedBy:     in.CreatedBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.orders.Insert(ctx, order); err != nil {
		return nil, err
	}

	if _, err := s.tables.Occupy(ctx, tableID, order.ID); err != nil {
		if _, derr := s.orders.Delete(ctx, order.ID); derr != nil {
			s.logger.Error().Err(derr).Str("order", order.ID.Hex()).Msg("cannot roll back order after table update failed")
		}
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundf("table %s not found", tableID.Hex())
		}
		return nil, fmt.Errorf("cannot occupy table: %w", err)
	}

	ordersCreated.Inc()
	s.logger.Info().
		Str("order", order.ID.Hex()).
		Str("number", order.OrderNumber).
		Int("table", table.Number).
		Float64("total", order.Total).
		Msg("order created")
	return order, nil
}

// appendAttempts bounds how often AddItems re-reads an order whose totals
// moved underneath it.
const appendAttempts = 3

// AddItems appends lines to an active order, growing its totals by the
// price of the new lines.
func (s *Service) AddItems(ctx context.Context, id string, lines []LineInput) (*models.Order, error) {
	oid, err := parseID(id, "order")
	if err != nil {
		return nil, err
	}
	order, err := s.load(ctx, oid)
	if err != nil {
		return nil, err
	}
	if !order.IsActive() {
		return nil, conflictf("cannot add items to a %s order", order.Status)
	}

	items, err := s.priceLines(ctx, lines)
	if err != nil {
		return nil, err
	}
	delta := ComputeTotals(items)

	for attempt := 1; ; attempt++ {
		prev := order.Totals()
		updated, err := s.orders.AppendItems(ctx, oid, items, prev, addTotals(prev, delta))
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, store.ErrStale) || attempt == appendAttempts {
			return nil, s.orderWriteErr(err, oid)
		}
		if order, err = s.load(ctx, oid); err != nil {
			return nil, err
		}
		if !order.IsActive() {
			return nil, conflictf("cannot add items to a %s order", order.Status)
		}
	}
}

func (s *Service) UpdateStatus(ctx context.Context, id string, in StatusInput) (*models.Order, error) {
	if in.Status == "" && in.PaymentStatus == "" {
		return nil, validationf("status or paymentStatus is required")
	}
	if in.PaymentStatus != "" && !models.IsPaymentStatus(in.PaymentStatus) {
		return nil, validationf("invalid payment status %q", in.PaymentStatus)
	}
	oid, err := parseID(id, "order")
	if err != nil {
		return nil, err
	}
	order, err := s.load(ctx, oid)
	if err != nil {
		return nil, err
	}

	if in.Status != "" {
		if order, err = s.transition(ctx, order, in.Status); err != nil {
			return nil, err
		}
	}
	if in.PaymentStatus != "" && in.PaymentStatus != order.PaymentStatus {
		if order, err = s.orders.SetPaymentStatus(ctx, oid, order.PaymentStatus, in.PaymentStatus); err != nil {
			return nil, s.orderWriteErr(err, oid)
		}
	}
	return order, nil
}

// Update replaces the item list and/or changes the status. Items are replaced
// first so stock is taken for the new list.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*models.Order, error) {
	if in.Items == nil && in.Status == "" {
		return nil, validationf("items or status is required")
	}
	oid, err := parseID(id, "order")
	if err != nil {
		return nil, err
	}
	order, err := s.load(ctx, oid)
	if err != nil {
		return nil, err
	}

	if in.Items != nil {
		if !order.IsActive() {
			return nil, conflictf("cannot change items of a %s order", order.Status)
		}
		items, err := s.priceLines(ctx, in.Items)
		if err != nil {
			return nil, err
		}
		if order, err = s.orders.ReplaceItems(ctx, oid, items, ComputeTotals(items)); err != nil {
			return nil, s.orderWriteErr(err, oid)
		}
	}

	if in.Status != "" {
		if order, err = s.transition(ctx, order, in.Status); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// Delete removes an unpaid order. The table is released only when the order
// was still active at the moment it was removed.
func (s *Service) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id, "order")
	if err != nil {
		return err
	}
	deleted, err := s.orders.Delete(ctx, oid)
	if errors.Is(err, store.ErrStale) {
		return conflictf("paid orders cannot be deleted")
	}
	if err != nil {
		return s.orderWriteErr(err, oid)
	}
	if deleted.IsActive() {
		s.releaseTable(ctx, deleted)
	}
	s.logger.Info().Str("order", oid.Hex()).Msg("order deleted")
	return nil
}

var transitions = map[string][]string{
	models.OrderPending:    {models.OrderInProgress, models.OrderCompleted, models.OrderCancelled},
	models.OrderInProgress: {models.OrderCompleted, models.OrderCancelled},
}

func canTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// transition moves order to status `to`, taking stock on completion and
// releasing the table when the order leaves the active set.
func (s *Service) transition(ctx context.Context, order *models.Order, to string) (*models.Order, error) {
	if !models.IsOrderStatus(to) {
		return nil, validationf("invalid status %q", to)
	}
	if order.Status == to {
		return order, nil
	}
	if !canTransition(order.Status, to) {
		return nil, conflictf("cannot change order status from %s to %s", order.Status, to)
	}

	var taken []stockLine
	if to == models.OrderCompleted {
		lines := aggregate(order.Items)
		if err := s.takeStock(ctx, lines); err != nil {
			return nil, err
		}
		taken = lines
	}

	updated, err := s.orders.TransitionStatus(ctx, order.ID, order.Status, to, s.now())
	if err != nil {
		s.restoreStock(ctx, taken)
		return nil, s.orderWriteErr(err, order.ID)
	}

	if models.IsTerminalOrderStatus(to) {
		s.releaseTable(ctx, updated)
		ordersFinished.WithLabelValues(to).Inc()
	}
	s.logger.Info().
		Str("order", order.ID.Hex()).
		Str("from", order.Status).
		Str("to", to).
		Msg("order status changed")
	return updated, nil
}

type stockLine struct {
	id   primitive.ObjectID
	name string
	qty  int
}

// aggregate sums quantities per menu item, keeping first-seen order.
func aggregate(items []models.OrderItem) []stockLine {
	index := make(map[primitive.ObjectID]int, len(items))
	var lines []stockLine
	for _, it := range items {
		if i, ok := index[it.MenuItem]; ok {
			lines[i].qty += it.Quantity
			continue
		}
		index[it.MenuItem] = len(lines)
		lines = append(lines, stockLine{id: it.MenuItem, name: it.Name, qty: it.Quantity})
	}
	return lines
}

// takeStock decrements every line or none: on the first shortfall the lines
// already taken are put back.
func (s *Service) takeStock(ctx context.Context, lines []stockLine) error {
	for i, l := range lines {
		ok, err := s.menu.DecrementStock(ctx, l.id, l.qty)
		if err == nil && ok {
			continue
		}
		s.restoreStock(ctx, lines[:i])
		if err != nil {
			return err
		}

		item, gerr := s.menu.GetItem(ctx, l.id)
		if errors.Is(gerr, store.ErrNotFound) {
			return notFoundf("menu item %s not found", l.id.Hex())
		}
		if gerr != nil {
			return gerr
		}
		return &InsufficientStockError{MenuItem: l.id, Item: item.Name, Required: l.qty, Available: item.Stock}
	}
	return nil
}

func (s *Service) restoreStock(ctx context.Context, lines []stockLine) {
	for _, l := range lines {
		if err := s.menu.IncrementStock(ctx, l.id, l.qty); err != nil {
			s.logger.Error().Err(err).
				Str("menuItem", l.id.Hex()).
				Int("quantity", l.qty).
				Msg("cannot restore stock")
		}
	}
}

func (s *Service) releaseTable(ctx context.Context, order *models.Order) {
	table, err := s.tables.Release(ctx, order.Table)
	if err != nil {
		s.logger.Error().Err(err).
			Str("order", order.ID.Hex()).
			Str("table", order.Table.Hex()).
			Msg("cannot release table")
		return
	}
	s.logger.Debug().
		Int("table", table.Number).
		Str("status", table.Status).
		Int("activeOrders", table.ActiveOrders).
		Msg("table released")
}

func (s *Service) priceLines(ctx context.Context, lines []LineInput) ([]models.OrderItem, error) {
	if len(lines) == 0 {
		return nil, validationf("order must contain at least one item")
	}
	items := make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 {
			return nil, validationf("quantity must be at least 1")
		}
		id, err := parseID(l.MenuItemID, "menu item")
		if err != nil {
			return nil, err
		}
		mi, err := s.menu.GetItem(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundf("menu item %s not found", l.MenuItemID)
		}
		if err != nil {
			return nil, err
		}
		if !mi.IsAvailable {
			return nil, validationf("menu item %s is not available", mi.Name)
		}
		items = append(items, models.OrderItem{
			MenuItem: id,
			Name:     mi.Name,
			Quantity: l.Quantity,
			Price:    mi.Price,
			Notes:    l.Notes,
		})
	}
	return items, nil
}

func (s *Service) load(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	order, err := s.orders.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFoundf("order %s not found", id.Hex())
	}
	return order, err
}

func (s *Service) orderWriteErr(err error, id primitive.ObjectID) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return notFoundf("order %s not found", id.Hex())
	case errors.Is(err, store.ErrStale):
		return conflictf("order %s was modified concurrently", id.Hex())
	}
	return err
}

func parseID(hex, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, validationf("invalid %s id %q", what, hex)
	}
	return id, nil
}

func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix)
}
