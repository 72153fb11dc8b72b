// internal/notify/dispatcher.go
//
// Package notify creates one notification record per lifecycle event and
// pushes it to the target user over the websocket hub. Dispatch is
// best-effort by design: a storage or delivery failure is logged and never
// rolls back the lifecycle transition that triggered it. The tracking entry
// is the atomic part of a transition; the notification is not.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"greencycle-api-server/internal/models"
	"greencycle-api-server/internal/store"

	"github.com/google/uuid"
)

// Pusher delivers a rendered notification to a connected user. *socket.Hub
// implements it; a nil Pusher disables live delivery.
type Pusher interface {
	Send(userID string, message []byte) error
}

type Dispatcher struct {
	store store.Store
	hub   Pusher
	nowFn func() time.Time
}

func NewDispatcher(st store.Store, hub Pusher) *Dispatcher {
	return &Dispatcher{store: st, hub: hub, nowFn: time.Now}
}

// RequestSubmitted notifies every staff member assigned to the target
// center about a new request.
func (d *Dispatcher) RequestSubmitted(ctx context.Context, req *models.RecyclingRequest, requesterName string, staffIDs []string) {
	msg := fmt.Sprintf("New recycling request for %s from %s", req.MaterialType, requesterName)
	for _, staffID := range staffIDs {
		d.dispatch(ctx, staffID, "New Recycling Request", msg, models.NotifyNewRequest, req.RequestID)
	}
}

func (d *Dispatcher) RequestApproved(ctx context.Context, req *models.RecyclingRequest) {
	msg := fmt.Sprintf("Your recycling request for %s has been approved!", req.MaterialType)
	d.dispatch(ctx, req.UserID, "Request Approved", msg, models.NotifyRequestApproved, req.RequestID)
}

func (d *Dispatcher) RequestRejected(ctx context.Context, req *models.RecyclingRequest, reason string) {
	msg := fmt.Sprintf("Your recycling request for %s has been rejected. Reason: %s", req.MaterialType, reason)
	d.dispatch(ctx, req.UserID, "Request Rejected", msg, models.NotifyRequestRejected, req.RequestID)
}

func (d *Dispatcher) RequestInProgress(ctx context.Context, req *models.RecyclingRequest) {
	msg := fmt.Sprintf("Your recycling request for %s is now in progress!", req.MaterialType)
	d.dispatch(ctx, req.UserID, "Pickup In Progress", msg, models.NotifyRequestUpdated, req.RequestID)
}

func (d *Dispatcher) RequestCompleted(ctx context.Context, req *models.RecyclingRequest) {
	msg := fmt.Sprintf("Your %s has been successfully recycled!", req.MaterialType)
	d.dispatch(ctx, req.UserID, "Recycling Completed", msg, models.NotifyRecyclingCompleted, req.RequestID)
}

// RequestCancelled tells the center's staff the pickup is off.
func (d *Dispatcher) RequestCancelled(ctx context.Context, req *models.RecyclingRequest, staffIDs []string) {
	msg := fmt.Sprintf("Recycling request for %s has been cancelled by the requester", req.MaterialType)
	for _, staffID := range staffIDs {
		d.dispatch(ctx, staffID, "Request Cancelled", msg, models.NotifyRequestCancelled, req.RequestID)
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, userID, title, message, typ, requestID string) {
	n := &models.Notification{
		NotificationID:   newID("NTF"),
		UserID:           userID,
		Title:            title,
		Message:          message,
		Type:             typ,
		RelatedRequestID: requestID,
		CreatedAt:        d.nowFn(),
	}
	if err := d.store.CreateNotification(ctx, n); err != nil {
		log.Printf("notify: failed to store notification for %s: %v", userID, err)
	}
	if d.hub == nil {
		return
	}
	payload, err := json.Marshal(n)
	if err != nil {
		log.Printf("notify: failed to encode notification for %s: %v", userID, err)
		return
	}
	if err := d.hub.Send(userID, payload); err != nil {
		log.Printf("notify: failed to push notification to %s: %v", userID, err)
	}
}

func newID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, strings.ToUpper(uuid.New().String()[:8]))
}
