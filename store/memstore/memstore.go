// Package memstore keeps orders, tables, menu items and payments in memory
// with the same conditional-write semantics as the MongoDB repositories.
package memstore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"restaurant/models"
	"restaurant/store"
)

var errDecrement = errors.New("memstore: decrement failed")

type Store struct {
	mu       sync.Mutex
	orders   map[primitive.ObjectID]models.Order
	tables   map[primitive.ObjectID]models.Table
	menu     map[primitive.ObjectID]models.MenuItem
	payments map[primitive.ObjectID]models.Payment

	// FailDecrementAfter, when positive, makes DecrementStock return an error
	// once that many decrements succeeded.
	FailDecrementAfter int
	decrements         int
}

func New() *Store {
	return &Store{
		orders:   make(map[primitive.ObjectID]models.Order),
		tables:   make(map[primitive.ObjectID]models.Table),
		menu:     make(map[primitive.ObjectID]models.MenuItem),
		payments: make(map[primitive.ObjectID]models.Payment),
	}
}

func (s *Store) Orders() *Orders     { return &Orders{s} }
func (s *Store) Tables() *Tables     { return &Tables{s} }
func (s *Store) Menu() *Menu         { return &Menu{s} }
func (s *Store) Payments() *Payments { return &Payments{s} }

type Orders struct{ s *Store }

func cloneOrder(o models.Order) *models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	return &o
}

func (r *Orders) Insert(_ context.Context, order *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	if _, ok := r.s.orders[order.ID]; ok {
		return store.ErrDuplicate
	}
	r.s.orders[order.ID] = *cloneOrder(*order)
	return nil
}

func (r *Orders) Get(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneOrder(o), nil
}

func (r *Orders) List(_ context.Context, f models.OrderFilter) ([]models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Order{}
	for _, o := range r.s.orders {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.PaymentStatus != "" && o.PaymentStatus != f.PaymentStatus {
			continue
		}
		if !f.Table.IsZero() && o.Table != f.Table {
			continue
		}
		out = append(out, *cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && int64(len(out)) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *Orders) AppendItems(_ context.Context, id primitive.ObjectID, items []models.OrderItem, prev, next models.Totals) (*models.Order, error) {
	return r.update(id, func(o *models.Order) bool {
		if !o.IsActive() || o.Subtotal != prev.Subtotal || o.Total != prev.Total {
			return false
		}
		o.Items = append(o.Items, items...)
		o.Subtotal, o.Tax, o.Total = next.Subtotal, next.Tax, next.Total
		return true
	})
}

func (r *Orders) ReplaceItems(_ context.Context, id primitive.ObjectID, items []models.OrderItem, totals models.Totals) (*models.Order, error) {
	return r.update(id, func(o *models.Order) bool {
		if !o.IsActive() {
			return false
		}
		o.Items = append([]models.OrderItem(nil), items...)
		o.Subtotal, o.Tax, o.Total = totals.Subtotal, totals.Tax, totals.Total
		return true
	})
}

func (r *Orders) TransitionStatus(_ context.Context, id primitive.ObjectID, from, to string, at time.Time) (*models.Order, error) {
	return r.update(id, func(o *models.Order) bool {
		if o.Status != from {
			return false
		}
		o.Status = to
		o.UpdatedAt = at
		if to == models.OrderCompleted {
			o.CompletedAt = &at
		}
		return true
	})
}

func (r *Orders) SetPaymentStatus(_ context.Context, id primitive.ObjectID, from, to string) (*models.Order, error) {
	return r.update(id, func(o *models.Order) bool {
		if o.PaymentStatus != from {
			return false
		}
		o.PaymentStatus = to
		return true
	})
}

func (r *Orders) Delete(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if o.PaymentStatus == models.PaymentPaid {
		return nil, store.ErrStale
	}
	delete(r.s.orders, id)
	return cloneOrder(o), nil
}

func (r *Orders) update(id primitive.ObjectID, fn func(*models.Order) bool) (*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	c := cloneOrder(o)
	if !fn(c) {
		return nil, store.ErrStale
	}
	if c.UpdatedAt.Equal(o.UpdatedAt) {
		c.UpdatedAt = time.Now()
	}
	r.s.orders[id] = *cloneOrder(*c)
	return c, nil
}

type Tables struct{ s *Store }

func (r *Tables) Create(_ context.Context, t *models.Table) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.tables {
		if existing.Number == t.Number {
			return store.ErrDuplicate
		}
	}
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	r.s.tables[t.ID] = *t
	return nil
}

func (r *Tables) Get(_ context.Context, id primitive.ObjectID) (*models.Table, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tables[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &t, nil
}

func (r *Tables) List(_ context.Context, status string) ([]models.Table, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Table{}
	for _, t := range r.s.tables {
		if status == "" || t.Status == status {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r *Tables) Update(_ context.Context, t *models.Table) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.tables[t.ID]
	if !ok {
		return store.ErrNotFound
	}
	for id, existing := range r.s.tables {
		if id != t.ID && existing.Number == t.Number {
			return store.ErrDuplicate
		}
	}
	cur.Number, cur.Capacity, cur.Location = t.Number, t.Capacity, t.Location
	cur.UpdatedAt = time.Now()
	r.s.tables[t.ID] = cur
	return nil
}

func (r *Tables) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tables[id]
	if !ok {
		return store.ErrNotFound
	}
	if t.ActiveOrders > 0 {
		return store.ErrStale
	}
	delete(r.s.tables, id)
	return nil
}

func (r *Tables) SetStatus(_ context.Context, id primitive.ObjectID, status string) (*models.Table, error) {
	return r.update(id, func(t *models.Table) bool {
		if status == models.TableAvailable {
			if t.ActiveOrders > 0 {
				return false
			}
			t.CurrentOrder = nil
		}
		t.Status = status
		return true
	})
}

func (r *Tables) Occupy(_ context.Context, id, orderID primitive.ObjectID) (*models.Table, error) {
	return r.update(id, func(t *models.Table) bool {
		t.ActiveOrders++
		oid := orderID
		t.CurrentOrder = &oid
		if t.Status == models.TableAvailable {
			t.Status = models.TableOccupied
		}
		return true
	})
}

func (r *Tables) Release(_ context.Context, id primitive.ObjectID) (*models.Table, error) {
	return r.update(id, func(t *models.Table) bool {
		if t.ActiveOrders > 0 {
			t.ActiveOrders--
		}
		if t.ActiveOrders == 0 {
			t.CurrentOrder = nil
			if t.Status == models.TableOccupied {
				t.Status = models.TableAvailable
			}
		}
		return true
	})
}

func (r *Tables) update(id primitive.ObjectID, fn func(*models.Table) bool) (*models.Table, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tables[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if !fn(&t) {
		return nil, store.ErrStale
	}
	t.UpdatedAt = time.Now()
	r.s.tables[id] = t
	return &t, nil
}

type Menu struct{ s *Store }

func (r *Menu) Create(_ context.Context, item *models.MenuItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
	}
	r.s.menu[item.ID] = *item
	return nil
}

func (r *Menu) GetItem(_ context.Context, id primitive.ObjectID) (*models.MenuItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.menu[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &m, nil
}

func (r *Menu) List(_ context.Context, f store.MenuFilter) ([]models.MenuItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.MenuItem{}
	for _, m := range r.s.menu {
		if !f.Category.IsZero() && m.Category != f.Category {
			continue
		}
		if f.OnlyInStock && m.Stock <= 0 {
			continue
		}
		if f.Available != nil && m.IsAvailable != *f.Available {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(m.Name), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *Menu) LowStock(_ context.Context, threshold int) ([]models.MenuItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.MenuItem{}
	for _, m := range r.s.menu {
		if m.Stock <= threshold {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Stock < out[j].Stock })
	return out, nil
}

func (r *Menu) Update(_ context.Context, item *models.MenuItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.menu[item.ID]
	if !ok {
		return store.ErrNotFound
	}
	image := cur.Image
	if item.Image != "" {
		image = item.Image
	}
	updated := *item
	updated.Image = image
	updated.CreatedAt = cur.CreatedAt
	updated.UpdatedAt = time.Now()
	r.s.menu[item.ID] = updated
	return nil
}

func (r *Menu) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.menu[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.s.menu, id)
	return nil
}

func (r *Menu) SetStock(_ context.Context, id primitive.ObjectID, stock int) (*models.MenuItem, error) {
	return r.set(id, func(m *models.MenuItem) { m.Stock = stock })
}

func (r *Menu) SetAvailability(_ context.Context, id primitive.ObjectID, available bool) (*models.MenuItem, error) {
	return r.set(id, func(m *models.MenuItem) { m.IsAvailable = available })
}

func (r *Menu) CountByCategory(_ context.Context, category primitive.ObjectID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, m := range r.s.menu {
		if m.Category == category {
			n++
		}
	}
	return n, nil
}

func (r *Menu) DecrementStock(_ context.Context, id primitive.ObjectID, qty int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailDecrementAfter > 0 && r.s.decrements >= r.s.FailDecrementAfter {
		return false, errDecrement
	}
	m, ok := r.s.menu[id]
	if !ok || m.Stock < qty {
		return false, nil
	}
	m.Stock -= qty
	r.s.menu[id] = m
	r.s.decrements++
	return true, nil
}

func (r *Menu) IncrementStock(_ context.Context, id primitive.ObjectID, qty int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.menu[id]
	if !ok {
		return nil
	}
	m.Stock += qty
	r.s.menu[id] = m
	return nil
}

func (r *Menu) set(id primitive.ObjectID, fn func(*models.MenuItem)) (*models.MenuItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.menu[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	fn(&m)
	m.UpdatedAt = time.Now()
	r.s.menu[id] = m
	return &m, nil
}

type Payments struct{ s *Store }

func (r *Payments) Insert(_ context.Context, p *models.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.payments {
		if existing.OrderID == p.OrderID {
			return store.ErrDuplicate
		}
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	r.s.payments[p.ID] = *p
	return nil
}

func (r *Payments) GetByOrder(_ context.Context, orderID primitive.ObjectID) (*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.payments {
		if p.OrderID == orderID {
			return &p, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *Payments) List(_ context.Context, method string, limit int64) ([]models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Payment{}
	for _, p := range r.s.payments {
		if method == "" || p.PaymentMethod == method {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}
