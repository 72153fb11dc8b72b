// internal/store/memory.go
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"greencycle-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is an in-process Store. A single mutex serializes every mutation,
// which gives ApplyTransition the same all-or-nothing behavior the mongo
// implementation gets from a session transaction.
type Memory struct {
	mu            sync.RWMutex
	users         map[string]*models.UserProfile     // by userID
	usersByEmail  map[string]string                  // email -> userID
	centers       map[string]*models.RecyclingCenter // by centerID
	requests      map[string]*models.RecyclingRequest
	tracking      map[string][]models.RequestTracking // by requestID
	notifications []models.Notification
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:        make(map[string]*models.UserProfile),
		usersByEmail: make(map[string]string),
		centers:      make(map[string]*models.RecyclingCenter),
		requests:     make(map[string]*models.RecyclingRequest),
		tracking:     make(map[string][]models.RequestTracking),
	}
}

// --- Users ---

func (m *Memory) CreateUser(_ context.Context, u *models.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.usersByEmail[u.Email]; ok {
		return ErrDuplicate
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	cp := *u
	m.users[u.UserID] = &cp
	m.usersByEmail[u.Email] = u.UserID
	return nil
}

func (m *Memory) GetUserByID(_ context.Context, userID string) (*models.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (*models.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.usersByEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m.users[id]
	return &cp, nil
}

func (m *Memory) UpdateProfile(_ context.Context, userID string, upd ProfileUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.PhoneNumber != nil {
		u.PhoneNumber = *upd.PhoneNumber
	}
	if upd.Address != nil {
		u.Address = *upd.Address
	}
	if upd.City != nil {
		u.City = *upd.City
	}
	if upd.PostalCode != nil {
		u.PostalCode = *upd.PostalCode
	}
	if upd.Latitude != nil {
		u.Latitude = upd.Latitude
	}
	if upd.Longitude != nil {
		u.Longitude = upd.Longitude
	}
	if upd.EmailNotifications != nil {
		u.EmailNotifications = *upd.EmailNotifications
	}
	if upd.SMSNotifications != nil {
		u.SMSNotifications = *upd.SMSNotifications
	}
	if upd.Newsletter != nil {
		u.Newsletter = *upd.Newsletter
	}
	if upd.PublicProfile != nil {
		u.PublicProfile = *upd.PublicProfile
	}
	if upd.LocationSharing != nil {
		u.LocationSharing = *upd.LocationSharing
	}
	u.UpdatedAt = now()
	return nil
}

// --- Centers ---

func (m *Memory) CreateCenter(_ context.Context, c *models.RecyclingCenter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.centers[c.CenterID]; ok {
		return ErrDuplicate
	}
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	cp := *c
	m.centers[c.CenterID] = &cp
	return nil
}

func (m *Memory) GetCenterByID(_ context.Context, centerID string) (*models.RecyclingCenter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.centers[centerID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *Memory) ListCenters(_ context.Context, f CenterFilter) ([]models.RecyclingCenter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.RecyclingCenter{}
	for _, c := range m.centers {
		if f.ActiveOnly && !c.IsActive {
			continue
		}
		if f.MaterialType != "" && !c.Accepts(f.MaterialType) {
			continue
		}
		if f.Search != "" && !centerMatches(c, f.Search) {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) ListCentersByStaff(_ context.Context, userID string) ([]models.RecyclingCenter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.RecyclingCenter{}
	for _, c := range m.centers {
		if c.HasStaff(userID) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func centerMatches(c *models.RecyclingCenter, search string) bool {
	q := strings.ToLower(search)
	return strings.Contains(strings.ToLower(c.Name), q) ||
		strings.Contains(strings.ToLower(c.Address), q) ||
		strings.Contains(strings.ToLower(c.Description), q)
}

func (m *Memory) UpdateCenter(_ context.Context, centerID string, upd CenterUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.centers[centerID]
	if !ok {
		return ErrNotFound
	}
	if upd.Name != nil {
		c.Name = *upd.Name
	}
	if upd.Description != nil {
		c.Description = *upd.Description
	}
	if upd.Address != nil {
		c.Address = *upd.Address
	}
	if upd.Latitude != nil {
		c.Latitude = *upd.Latitude
	}
	if upd.Longitude != nil {
		c.Longitude = *upd.Longitude
	}
	if upd.PhoneNumber != nil {
		c.PhoneNumber = *upd.PhoneNumber
	}
	if upd.Email != nil {
		c.Email = *upd.Email
	}
	if upd.Website != nil {
		c.Website = *upd.Website
	}
	if upd.OpeningHours != nil {
		c.OpeningHours = *upd.OpeningHours
	}
	if upd.Capacity != nil {
		c.Capacity = *upd.Capacity
	}
	if upd.AcceptedMaterials != nil {
		c.AcceptedMaterials = append([]models.AcceptedMaterial(nil), (*upd.AcceptedMaterials)...)
	}
	if upd.StaffMembers != nil {
		c.StaffMembers = append([]string(nil), (*upd.StaffMembers)...)
	}
	if upd.IsActive != nil {
		c.IsActive = *upd.IsActive
	}
	c.UpdatedAt = now()
	return nil
}

func (m *Memory) SetCenterImage(_ context.Context, centerID, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.centers[centerID]
	if !ok {
		return ErrNotFound
	}
	c.ImageURL = url
	c.UpdatedAt = now()
	return nil
}

// --- Requests ---

func (m *Memory) CreateRequest(_ context.Context, r *models.RecyclingRequest, first models.RequestTracking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[r.RequestID]; ok {
		return ErrDuplicate
	}
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	first.ID = primitive.NewObjectID()
	cp := *r
	m.requests[r.RequestID] = &cp
	m.tracking[r.RequestID] = append(m.tracking[r.RequestID], first)
	return nil
}

func (m *Memory) GetRequestByID(_ context.Context, requestID string) (*models.RecyclingRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.requests[requestID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *Memory) ListRequests(_ context.Context, f RequestFilter) ([]models.RecyclingRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.RecyclingRequest{}
	for _, r := range m.requests {
		if f.UserID != "" && r.UserID != f.UserID {
			continue
		}
		if f.CenterIDs != nil && !containsString(f.CenterIDs, r.CenterID) {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) ApplyTransition(_ context.Context, commit TransitionCommit) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.requests[commit.RequestID]
	if !ok {
		return ErrNotFound
	}
	if r.Status != commit.ExpectedStatus {
		return ErrStatusConflict
	}

	r.Status = commit.NewStatus
	if commit.StaffNotes != nil {
		r.StaffNotes = *commit.StaffNotes
	}
	if commit.ApprovedBy != nil {
		r.ApprovedBy = *commit.ApprovedBy
	}
	if commit.ApprovedAt != nil {
		r.ApprovedAt = commit.ApprovedAt
	}
	if commit.CompletedAt != nil {
		r.CompletedAt = commit.CompletedAt
	}
	r.UpdatedAt = commit.Tracking.Timestamp

	tr := commit.Tracking
	tr.ID = primitive.NewObjectID()
	m.tracking[commit.RequestID] = append(m.tracking[commit.RequestID], tr)

	if commit.RequesterItemsDelta != 0 || commit.RequesterWeightDelta != 0 {
		if u, ok := m.users[commit.RequesterID]; ok {
			u.TotalItemsRecycled += commit.RequesterItemsDelta
			u.TotalWeightRecycled += commit.RequesterWeightDelta
		}
	}
	if commit.CenterLoadDelta != 0 {
		if c, ok := m.centers[commit.CenterID]; ok {
			c.CurrentLoad += commit.CenterLoadDelta
		}
	}
	return nil
}

func (m *Memory) AttachRequestImage(_ context.Context, requestID, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[requestID]
	if !ok {
		return ErrNotFound
	}
	if r.ItemImageURL == "" {
		r.ItemImageURL = url
	} else {
		r.AdditionalImages = append(r.AdditionalImages, url)
	}
	return nil
}

func (m *Memory) CountRequestsByStatus(_ context.Context, userID string) (map[string]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[string]int)
	for _, r := range m.requests {
		if userID != "" && r.UserID != userID {
			continue
		}
		counts[r.Status]++
	}
	return counts, nil
}

func (m *Memory) CountRequestsByMaterial(_ context.Context) (map[string]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[string]int)
	for _, r := range m.requests {
		counts[r.MaterialType]++
	}
	return counts, nil
}

// --- Tracking ---

func (m *Memory) ListTracking(_ context.Context, requestID string) ([]models.RequestTracking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := append([]models.RequestTracking(nil), m.tracking[requestID]...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Timestamp.After(entries[j].Timestamp) })
	return entries, nil
}

// --- Notifications ---

func (m *Memory) CreateNotification(_ context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	m.notifications = append(m.notifications, *n)
	return nil
}

func (m *Memory) ListNotifications(_ context.Context, userID string) ([]models.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Notification{}
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) MarkNotificationRead(_ context.Context, notificationID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.notifications {
		if m.notifications[i].NotificationID == notificationID && m.notifications[i].UserID == userID {
			m.notifications[i].IsRead = true
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) CountUnreadNotifications(_ context.Context, userID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, v := range m.notifications {
		if v.UserID == userID && !v.IsRead {
			n++
		}
	}
	return n, nil
}

func now() time.Time { return time.Now().UTC() }

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
