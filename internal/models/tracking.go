// internal/models/tracking.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tracking statuses. "submitted" is recorded once at creation; the rest
// mirror the request status the transition produced.
const (
	TrackingSubmitted  = "submitted"
	TrackingApproved   = "approved"
	TrackingRejected   = "rejected"
	TrackingInProgress = "in_progress"
	TrackingCompleted  = "completed"
	TrackingCancelled  = "cancelled"
)

// RequestTracking is one immutable audit record of a status change. Entries
// are append-only and owned by their request: deleting a request deletes its
// tracking history with it.
type RequestTracking struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	RequestID   string             `bson:"requestID" json:"requestID"`
	Status      string             `bson:"status" json:"status"`
	Description string             `bson:"description" json:"description"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
	UpdatedBy   string             `bson:"updatedBy" json:"updatedBy"` // user ID of the actor
}
