// internal/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification type tags.
const (
	NotifyNewRequest         = "new_request"
	NotifyRequestApproved    = "request_approved"
	NotifyRequestRejected    = "request_rejected"
	NotifyRequestUpdated     = "request_updated"
	NotifyRecyclingCompleted = "recycling_completed"
	NotifyRequestCancelled   = "request_cancelled"
)

type Notification struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	NotificationID   string             `bson:"notificationID" json:"notificationID"`
	UserID           string             `bson:"userID" json:"userID"`
	Title            string             `bson:"title" json:"title"`
	Message          string             `bson:"message" json:"message"`
	Type             string             `bson:"type" json:"type"`
	RelatedRequestID string             `bson:"relatedRequestID,omitempty" json:"relatedRequestID,omitempty"`
	IsRead           bool               `bson:"isRead" json:"isRead"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}
