package controllers

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"restaurant/models"
	"restaurant/store"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[primitive.ObjectID]models.User{}}
}

func (f *fakeUsers) Count(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.users)), nil
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return store.ErrDuplicate
		}
	}
	u.ID = primitive.NewObjectID()
	f.users[u.ID] = *u
	return nil
}

func (f *fakeUsers) Get(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUsers) List(context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUsers) Update(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.users[u.ID]
	if !ok {
		return store.ErrNotFound
	}
	if u.Password == "" {
		u.Password = cur.Password
	}
	f.users[u.ID] = *u
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUsers) TouchLogin(_ context.Context, id primitive.ObjectID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.LastLogin = &at
	f.users[id] = u
	return nil
}

type fakeStaff struct {
	members map[primitive.ObjectID]models.Staff
}

func newFakeStaff(members ...models.Staff) *fakeStaff {
	f := &fakeStaff{members: map[primitive.ObjectID]models.Staff{}}
	for _, m := range members {
		f.members[m.ID] = m
	}
	return f
}

func (f *fakeStaff) Create(_ context.Context, s *models.Staff) error {
	s.ID = primitive.NewObjectID()
	f.members[s.ID] = *s
	return nil
}

func (f *fakeStaff) Get(_ context.Context, id primitive.ObjectID) (*models.Staff, error) {
	s, ok := f.members[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &s, nil
}

func (f *fakeStaff) GetByEmail(_ context.Context, email string) (*models.Staff, error) {
	for _, s := range f.members {
		if s.Email == email {
			return &s, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStaff) List(context.Context, string, bool) ([]models.Staff, error) {
	out := []models.Staff{}
	for _, s := range f.members {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeStaff) Update(_ context.Context, s *models.Staff) error {
	if _, ok := f.members[s.ID]; !ok {
		return store.ErrNotFound
	}
	f.members[s.ID] = *s
	return nil
}

func (f *fakeStaff) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(f.members, id)
	return nil
}

type fakeAttendance struct {
	records []models.Attendance
}

func (f *fakeAttendance) CheckIn(_ context.Context, a *models.Attendance) error {
	for _, r := range f.records {
		if r.Staff == a.Staff && r.Date == a.Date {
			return store.ErrDuplicate
		}
	}
	a.ID = primitive.NewObjectID()
	f.records = append(f.records, *a)
	return nil
}

func (f *fakeAttendance) Find(_ context.Context, staff primitive.ObjectID, date string) (*models.Attendance, error) {
	for _, r := range f.records {
		if r.Staff == staff && r.Date == date {
			return &r, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeAttendance) CheckOut(_ context.Context, a *models.Attendance) error {
	for i, r := range f.records {
		if r.ID == a.ID {
			if r.CheckOut != nil {
				return store.ErrStale
			}
			f.records[i] = *a
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeAttendance) List(_ context.Context, date string, staff primitive.ObjectID) ([]models.Attendance, error) {
	out := []models.Attendance{}
	for _, r := range f.records {
		if (date == "" || r.Date == date) && (staff.IsZero() || r.Staff == staff) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeSessions struct {
	sessions []models.Session
}

func (f *fakeSessions) RecordSession(_ context.Context, s *models.Session) error {
	f.sessions = append(f.sessions, *s)
	return nil
}

type fakeCategories struct {
	categories map[primitive.ObjectID]models.Category
}

func newFakeCategories(list ...models.Category) *fakeCategories {
	f := &fakeCategories{categories: map[primitive.ObjectID]models.Category{}}
	for _, c := range list {
		f.categories[c.ID] = c
	}
	return f
}

func (f *fakeCategories) Create(_ context.Context, c *models.Category) error {
	c.ID = primitive.NewObjectID()
	f.categories[c.ID] = *c
	return nil
}

func (f *fakeCategories) Get(_ context.Context, id primitive.ObjectID) (*models.Category, error) {
	c, ok := f.categories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (f *fakeCategories) List(context.Context) ([]models.Category, error) {
	out := []models.Category{}
	for _, c := range f.categories {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCategories) Update(_ context.Context, c *models.Category) error {
	f.categories[c.ID] = *c
	return nil
}

func (f *fakeCategories) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.categories[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.categories, id)
	return nil
}

type fakeInventory struct {
	items []models.InventoryItem
}

func (f *fakeInventory) find(id primitive.ObjectID) int {
	for i, it := range f.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (f *fakeInventory) Create(_ context.Context, item *models.InventoryItem) error {
	item.ID = primitive.NewObjectID()
	f.items = append(f.items, *item)
	return nil
}

func (f *fakeInventory) Get(_ context.Context, id primitive.ObjectID) (*models.InventoryItem, error) {
	i := f.find(id)
	if i < 0 {
		return nil, store.ErrNotFound
	}
	item := f.items[i]
	return &item, nil
}

func (f *fakeInventory) List(_ context.Context, lowStock bool) ([]models.InventoryItem, error) {
	out := []models.InventoryItem{}
	for _, it := range f.items {
		if !lowStock || it.Quantity <= it.ReorderLevel {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeInventory) Update(_ context.Context, item *models.InventoryItem) error {
	i := f.find(item.ID)
	if i < 0 {
		return store.ErrNotFound
	}
	f.items[i] = *item
	return nil
}

func (f *fakeInventory) Delete(_ context.Context, id primitive.ObjectID) error {
	i := f.find(id)
	if i < 0 {
		return store.ErrNotFound
	}
	f.items = append(f.items[:i], f.items[i+1:]...)
	return nil
}

func (f *fakeInventory) Restock(_ context.Context, id primitive.ObjectID, quantity float64, at time.Time) (*models.InventoryItem, error) {
	i := f.find(id)
	if i < 0 {
		return nil, store.ErrNotFound
	}
	f.items[i].Quantity += quantity
	f.items[i].LastRestocked = &at
	f.items[i].UpdatedAt = at
	item := f.items[i]
	return &item, nil
}

// fakeRestaurant keeps the single settings document, like the upsert in the
// Mongo repository.
type fakeRestaurant struct {
	saved *models.Restaurant
}

func (f *fakeRestaurant) Get(context.Context) (*models.Restaurant, error) {
	if f.saved == nil {
		return &models.Restaurant{Name: "Restaurant", Currency: "USD"}, nil
	}
	r := *f.saved
	return &r, nil
}

func (f *fakeRestaurant) Save(_ context.Context, r *models.Restaurant) (*models.Restaurant, error) {
	next := *r
	if f.saved != nil {
		next.ID = f.saved.ID
		if next.Logo == "" {
			next.Logo = f.saved.Logo
		}
	} else {
		next.ID = primitive.NewObjectID()
	}
	next.UpdatedAt = time.Now()
	f.saved = &next
	out := next
	return &out, nil
}

type fakeAuditLog struct {
	entries []models.AuditLog
}

func (f *fakeAuditLog) List(_ context.Context, limit int64) ([]models.AuditLog, error) {
	out := f.entries
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}
