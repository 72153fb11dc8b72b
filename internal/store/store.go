// internal/store/store.go
//
// Package store is the persistence boundary for the API server. The mongo
// implementation backs the real deployment; the memory implementation backs
// tests and local development without a database.
package store

import (
	"context"
	"errors"
	"time"

	"greencycle-api-server/internal/models"
)

var (
	// ErrNotFound is returned when the referenced document does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when a unique key (email, centerID) is taken.
	ErrDuplicate = errors.New("store: duplicate key")
	// ErrStatusConflict is returned by ApplyTransition when the request's
	// status no longer matches the expected one. Conflicting concurrent
	// transitions on the same request lose with this error.
	ErrStatusConflict = errors.New("store: status precondition failed")
)

// CenterFilter narrows ListCenters.
type CenterFilter struct {
	MaterialType string // only centers accepting this material
	Search       string // case-insensitive match on name/address/description
	ActiveOnly   bool
}

// RequestFilter narrows ListRequests. Zero values mean "no constraint";
// a non-nil empty CenterIDs matches nothing.
type RequestFilter struct {
	UserID    string
	CenterIDs []string
	Status    string
}

// ProfileUpdate carries the mutable profile fields. Nil pointers are left
// untouched.
type ProfileUpdate struct {
	Name               *string
	PhoneNumber        *string
	Address            *string
	City               *string
	PostalCode         *string
	Latitude           *float64
	Longitude          *float64
	EmailNotifications *bool
	SMSNotifications   *bool
	Newsletter         *bool
	PublicProfile      *bool
	LocationSharing    *bool
}

// CenterUpdate carries the mutable center fields. Nil pointers are left
// untouched.
type CenterUpdate struct {
	Name              *string
	Description       *string
	Address           *string
	Latitude          *float64
	Longitude         *float64
	PhoneNumber       *string
	Email             *string
	Website           *string
	OpeningHours      *string
	Capacity          *int
	AcceptedMaterials *[]models.AcceptedMaterial
	StaffMembers      *[]string
	IsActive          *bool
}

// TransitionCommit is one atomic lifecycle mutation: the status change, its
// tracking entry, and any profile/center side effects all apply together or
// not at all. ExpectedStatus is the optimistic precondition.
type TransitionCommit struct {
	RequestID      string
	ExpectedStatus string
	NewStatus      string

	StaffNotes  *string
	ApprovedBy  *string
	ApprovedAt  *time.Time
	CompletedAt *time.Time

	Tracking models.RequestTracking

	RequesterID          string
	RequesterItemsDelta  int
	RequesterWeightDelta float64

	CenterID        string
	CenterLoadDelta int
}

// Store is the full persistence contract.
type Store interface {
	// Users
	CreateUser(ctx context.Context, u *models.UserProfile) error
	GetUserByID(ctx context.Context, userID string) (*models.UserProfile, error)
	GetUserByEmail(ctx context.Context, email string) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) error

	// Centers
	CreateCenter(ctx context.Context, c *models.RecyclingCenter) error
	GetCenterByID(ctx context.Context, centerID string) (*models.RecyclingCenter, error)
	ListCenters(ctx context.Context, f CenterFilter) ([]models.RecyclingCenter, error)
	ListCentersByStaff(ctx context.Context, userID string) ([]models.RecyclingCenter, error)
	UpdateCenter(ctx context.Context, centerID string, upd CenterUpdate) error
	SetCenterImage(ctx context.Context, centerID, url string) error

	// Requests. CreateRequest persists the request together with its initial
	// tracking entry; ApplyTransition is the only way to change a status.
	CreateRequest(ctx context.Context, r *models.RecyclingRequest, first models.RequestTracking) error
	GetRequestByID(ctx context.Context, requestID string) (*models.RecyclingRequest, error)
	ListRequests(ctx context.Context, f RequestFilter) ([]models.RecyclingRequest, error)
	ApplyTransition(ctx context.Context, commit TransitionCommit) error
	AttachRequestImage(ctx context.Context, requestID, url string) error
	CountRequestsByStatus(ctx context.Context, userID string) (map[string]int, error)
	CountRequestsByMaterial(ctx context.Context) (map[string]int, error)

	// Tracking history, newest first.
	ListTracking(ctx context.Context, requestID string) ([]models.RequestTracking, error)

	// Notifications
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID string) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, notificationID, userID string) error
	CountUnreadNotifications(ctx context.Context, userID string) (int64, error)
}
