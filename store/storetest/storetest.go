// Package storetest provides in-memory stores with the same contracts as the
// Mongo-backed ones in package store, for use in service and handler tests.
package storetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"civicreporter-be/models"
	"civicreporter-be/store"
)

func window[T any](items []T, page store.Page) []T {
	if page.Skip >= int64(len(items)) {
		return []T{}
	}
	items = items[page.Skip:]
	if page.Limit > 0 && page.Limit < int64(len(items)) {
		items = items[:page.Limit]
	}
	return items
}

type Users struct {
	mu    sync.Mutex
	items map[string]models.User
}

func NewUsers(seed ...models.User) *Users {
	s := &Users{items: make(map[string]models.User)}
	for _, u := range seed {
		s.items[u.ID] = u
	}
	return s
}

func (s *Users) Insert(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.items {
		if existing.ID == u.ID || existing.Email == u.Email {
			return store.ErrDuplicate
		}
	}
	s.items[u.ID] = *u
	return nil
}

func (s *Users) FindByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.items {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Users) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := s.FindByEmail(ctx, email)
	return err == nil, nil
}

func (s *Users) RoleExists(ctx context.Context, role models.Role) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.items {
		if u.Role == role {
			return true, nil
		}
	}
	return false, nil
}

func (s *Users) List(ctx context.Context, role models.Role, page store.Page) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.items))
	for _, u := range s.items {
		if role == "" || u.Role == role {
			out = append(out, u)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return window(out, page), nil
}

func (s *Users) update(id string, fn func(u *models.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.items[id]
	if !ok {
		return store.ErrNotFound
	}
	fn(&u)
	s.items[id] = u
	return nil
}

func (s *Users) SetActive(ctx context.Context, id string, active bool, at time.Time) error {
	return s.update(id, func(u *models.User) {
		u.IsActive = active
		u.UpdatedAt = &at
	})
}

func (s *Users) TouchLogin(ctx context.Context, id string, at time.Time) error {
	return s.update(id, func(u *models.User) { u.LastLoginAt = &at })
}

func (s *Users) SetPasswordHash(ctx context.Context, email, hash string, at time.Time) error {
	u, err := s.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	return s.update(u.ID, func(u *models.User) {
		u.PasswordHash = hash
		u.UpdatedAt = &at
	})
}

type Reports struct {
	mu    sync.Mutex
	items map[string]models.Report
	// AppendErr, when set, fails every AppendUpdate.
	AppendErr error
}

func NewReports(seed ...models.Report) *Reports {
	s := &Reports{items: make(map[string]models.Report)}
	for _, r := range seed {
		r.Normalize()
		s.items[r.ID] = r
	}
	return s
}

func cloneReport(r models.Report) models.Report {
	r.Updates = append([]models.ReportUpdate{}, r.Updates...)
	r.ImageURLs = append([]string{}, r.ImageURLs...)
	return r
}

func (s *Reports) Insert(ctx context.Context, r *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[r.ID]; ok {
		return store.ErrDuplicate
	}
	r.Normalize()
	s.items[r.ID] = cloneReport(*r)
	return nil
}

func (s *Reports) FindByID(ctx context.Context, id string) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	r = cloneReport(r)
	return &r, nil
}

func (s *Reports) List(ctx context.Context, f store.ReportFilter, page store.Page) ([]models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Report, 0, len(s.items))
	for _, r := range s.items {
		if !f.Scope.Matches(&r) {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.Category != "" && !strings.EqualFold(r.Category, f.Category) {
			continue
		}
		if f.Department != "" && !models.SameDepartment(r.Department, f.Department) {
			continue
		}
		out = append(out, cloneReport(r))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return window(out, page), nil
}

func (s *Reports) AppendUpdate(ctx context.Context, reportID string, change store.StatusChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.AppendErr != nil {
		return s.AppendErr
	}
	r, ok := s.items[reportID]
	if !ok {
		return store.ErrNotFound
	}
	u := change.Update
	r.Status = u.Status
	r.UpdatedAt = u.CreatedAt
	r.Updates = append(append([]models.ReportUpdate{}, r.Updates...), u)
	if change.Assign {
		id, name := u.UpdatedBy, u.UpdatedByName
		r.AssignedOfficerID = &id
		r.AssignedOfficerName = &name
	}
	s.items[reportID] = r
	return nil
}

func (s *Reports) CountByStatus(ctx context.Context, department models.Department) (map[models.ReportStatus]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[models.ReportStatus]int64)
	for _, r := range s.items {
		if department != "" && !models.SameDepartment(r.Department, department) {
			continue
		}
		counts[r.Status]++
	}
	return counts, nil
}

// Put stores r as is, bypassing normalization. Tests use it to plant
// documents a real store could hold.
func (s *Reports) Put(r models.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[r.ID] = r
}

type Notifications struct {
	mu    sync.Mutex
	items map[string]models.Notification
	// InsertErr, when set, fails every Insert.
	InsertErr error
}

func NewNotifications(seed ...models.Notification) *Notifications {
	s := &Notifications{items: make(map[string]models.Notification)}
	for _, n := range seed {
		s.items[n.ID] = n
	}
	return s
}

func visible(n models.Notification, f store.NotificationFilter) bool {
	if n.UserID != nil && *n.UserID != f.UserID {
		return false
	}
	if f.UnreadOnly && n.IsRead {
		return false
	}
	return f.Type == "" || n.Type == f.Type
}

func (s *Notifications) Insert(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.InsertErr != nil {
		return s.InsertErr
	}
	if _, ok := s.items[n.ID]; ok {
		return store.ErrDuplicate
	}
	s.items[n.ID] = *n
	return nil
}

func (s *Notifications) FindByID(ctx context.Context, id string) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &n, nil
}

func (s *Notifications) sorted(keep func(models.Notification) bool) []models.Notification {
	out := make([]models.Notification, 0, len(s.items))
	for _, n := range s.items {
		if keep(n) {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *Notifications) List(ctx context.Context, f store.NotificationFilter, page store.Page) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return window(s.sorted(func(n models.Notification) bool { return visible(n, f) }), page), nil
}

func (s *Notifications) Count(ctx context.Context, f store.NotificationFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.sorted(func(n models.Notification) bool { return visible(n, f) }))), nil
}

func (s *Notifications) ListAll(ctx context.Context, page store.Page) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return window(s.sorted(func(models.Notification) bool { return true }), page), nil
}

func (s *Notifications) MarkRead(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.items[id]
	if !ok {
		return store.ErrNotFound
	}
	n.IsRead = true
	n.ReadAt = &at
	s.items[id] = n
	return nil
}

func (s *Notifications) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := store.NotificationFilter{UserID: userID, UnreadOnly: true}
	var modified int64
	for id, n := range s.items {
		if !visible(n, f) {
			continue
		}
		n.IsRead = true
		n.ReadAt = &at
		s.items[id] = n
		modified++
	}
	return modified, nil
}

func (s *Notifications) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return store.ErrNoEffect
	}
	delete(s.items, id)
	return nil
}

// All returns every stored notification, newest first.
func (s *Notifications) All() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(func(models.Notification) bool { return true })
}

type Registrations struct {
	mu    sync.Mutex
	items map[string]models.RegistrationRequest
}

func NewRegistrations(seed ...models.RegistrationRequest) *Registrations {
	s := &Registrations{items: make(map[string]models.RegistrationRequest)}
	for _, r := range seed {
		s.items[r.ID] = r
	}
	return s
}

func (s *Registrations) Insert(ctx context.Context, r *models.RegistrationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[r.ID]; ok {
		return store.ErrDuplicate
	}
	s.items[r.ID] = *r
	return nil
}

func (s *Registrations) FindByID(ctx context.Context, id string) (*models.RegistrationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &r, nil
}

func (s *Registrations) LiveExists(ctx context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.items {
		if r.Email == email && r.Status == models.RegistrationNotified {
			return true, nil
		}
	}
	return false, nil
}

func (s *Registrations) List(ctx context.Context, status models.RegistrationStatus, page store.Page) ([]models.RegistrationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.RegistrationRequest, 0, len(s.items))
	for _, r := range s.items {
		if status == "" || r.Status == status {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RequestDate.After(out[j].RequestDate) })
	return window(out, page), nil
}

func (s *Registrations) Resolve(ctx context.Context, id string, status models.RegistrationStatus, res store.Resolution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.items[id]
	if !ok {
		return store.ErrNotFound
	}
	response, by, at := res.Response, res.RespondedBy, res.At
	r.Status = status
	r.AdminResponse = &response
	r.RespondedBy = &by
	r.ResponseDate = &at
	s.items[id] = r
	return nil
}

// Len counts stored requests.
func (s *Registrations) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

type PasswordResets struct {
	mu    sync.Mutex
	items map[string]models.PasswordResetRequest
}

func NewPasswordResets(seed ...models.PasswordResetRequest) *PasswordResets {
	s := &PasswordResets{items: make(map[string]models.PasswordResetRequest)}
	for _, r := range seed {
		s.items[r.ID] = r
	}
	return s
}

func (s *PasswordResets) Insert(ctx context.Context, r *models.PasswordResetRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[r.ID]; ok {
		return store.ErrDuplicate
	}
	s.items[r.ID] = *r
	return nil
}

func (s *PasswordResets) FindByID(ctx context.Context, id string) (*models.PasswordResetRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &r, nil
}

func (s *PasswordResets) List(ctx context.Context, page store.Page) ([]models.PasswordResetRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.PasswordResetRequest, 0, len(s.items))
	for _, r := range s.items {
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RequestDate.After(out[j].RequestDate) })
	return window(out, page), nil
}

func (s *PasswordResets) Resolve(ctx context.Context, id string, status models.ResetStatus, res store.Resolution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.items[id]
	if !ok {
		return store.ErrNotFound
	}
	response, by, at := res.Response, res.RespondedBy, res.At
	r.Status = status
	r.AdminResponse = &response
	r.RespondedBy = &by
	r.ResponseDate = &at
	s.items[id] = r
	return nil
}
