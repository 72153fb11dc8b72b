// internal/models/request.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Request lifecycle statuses.
//
//	pending -> approved | rejected
//	approved -> in_progress -> completed
//	pending | approved | in_progress -> cancelled (requester only)
//
// rejected, completed and cancelled are terminal.
const (
	StatusPending    = "pending"
	StatusApproved   = "approved"
	StatusInProgress = "in_progress"
	StatusRejected   = "rejected"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// RequestStatuses lists every legal status value.
var RequestStatuses = []string{
	StatusPending,
	StatusApproved,
	StatusInProgress,
	StatusRejected,
	StatusCompleted,
	StatusCancelled,
}

// IsTerminalStatus reports whether no further transition is allowed.
func IsTerminalStatus(s string) bool {
	return s == StatusRejected || s == StatusCompleted || s == StatusCancelled
}

// Request priorities. Informational only; pickups are not scheduled by
// priority.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

var RequestPriorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// ValidPriority reports whether p is a known priority value.
func ValidPriority(p string) bool {
	for _, v := range RequestPriorities {
		if v == p {
			return true
		}
	}
	return false
}

type RecyclingRequest struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	RequestID       string             `bson:"requestID" json:"requestID"` // e.g. "REQ-7C03D1AF"
	UserID          string             `bson:"userID" json:"userID"`
	CenterID        string             `bson:"centerID" json:"centerID"`
	MaterialType    string             `bson:"materialType" json:"materialType"`
	ItemDescription string             `bson:"itemDescription" json:"itemDescription"`
	Quantity        int                `bson:"quantity" json:"quantity"`
	EstimatedWeight float64            `bson:"estimatedWeight" json:"estimatedWeight"` // kg

	ItemImageURL     string   `bson:"itemImageURL,omitempty" json:"itemImageURL,omitempty"`
	AdditionalImages []string `bson:"additionalImages,omitempty" json:"additionalImages,omitempty"`

	PickupLocation      Address   `bson:"pickupLocation" json:"pickupLocation"`
	PreferredPickupDate time.Time `bson:"preferredPickupDate" json:"preferredPickupDate"`

	Status   string `bson:"status" json:"status"`
	Priority string `bson:"priority" json:"priority"`

	Notes      string `bson:"notes,omitempty" json:"notes,omitempty"`
	StaffNotes string `bson:"staffNotes,omitempty" json:"staffNotes,omitempty"`

	ApprovedBy  string     `bson:"approvedBy,omitempty" json:"approvedBy,omitempty"`
	ApprovedAt  *time.Time `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	CompletedAt *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// IsTerminal reports whether the request can no longer be transitioned.
func (r *RecyclingRequest) IsTerminal() bool {
	return IsTerminalStatus(r.Status)
}
