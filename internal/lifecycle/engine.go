// internal/lifecycle/engine.go
//
// Package lifecycle implements the request lifecycle engine: creation,
// status transitions, transition legality, tracking-history appends and the
// role/access gate in front of all of it.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"greencycle-api-server/internal/models"
	"greencycle-api-server/internal/store"

	"github.com/google/uuid"
)

// Action is one of the staff/requester operations applied through
// Transition.
type Action string

const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionStart    Action = "mark_in_progress"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
)

// Notifier receives one callback per lifecycle event. Implementations are
// best-effort: they must never fail the transition that triggered them.
type Notifier interface {
	RequestSubmitted(ctx context.Context, req *models.RecyclingRequest, requesterName string, staffIDs []string)
	RequestApproved(ctx context.Context, req *models.RecyclingRequest)
	RequestRejected(ctx context.Context, req *models.RecyclingRequest, reason string)
	RequestInProgress(ctx context.Context, req *models.RecyclingRequest)
	RequestCompleted(ctx context.Context, req *models.RecyclingRequest)
	RequestCancelled(ctx context.Context, req *models.RecyclingRequest, staffIDs []string)
}

// CreateInput carries everything a resident submits with a pickup request.
type CreateInput struct {
	CenterID            string
	MaterialType        string
	ItemDescription     string
	Quantity            int
	EstimatedWeight     float64 // kg
	PickupLocation      models.Address
	PreferredPickupDate time.Time
	Notes               string
	Priority            string
}

// BulkResult reports a bulk transition: how many requests moved, and the
// per-request failures. One request's failure never aborts the others.
type BulkResult struct {
	Succeeded int               `json:"succeeded"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// Engine is the single entry point for every lifecycle mutation.
type Engine struct {
	store    store.Store
	notifier Notifier
	gate     Gate
	nowFn    func() time.Time
}

func NewEngine(st store.Store, n Notifier) *Engine {
	return &Engine{store: st, notifier: n, nowFn: time.Now}
}

// transition legality table. Any action applied from a status outside its
// "from" set is an IllegalTransitionError.
type rule struct {
	from           []string
	to             string
	trackingStatus string
}

var rules = map[Action]rule{
	ActionApprove:  {from: []string{models.StatusPending}, to: models.StatusApproved, trackingStatus: models.TrackingApproved},
	ActionReject:   {from: []string{models.StatusPending}, to: models.StatusRejected, trackingStatus: models.TrackingRejected},
	ActionStart:    {from: []string{models.StatusApproved}, to: models.StatusInProgress, trackingStatus: models.TrackingInProgress},
	ActionComplete: {from: []string{models.StatusInProgress}, to: models.StatusCompleted, trackingStatus: models.TrackingCompleted},
	ActionCancel: {
		from:           []string{models.StatusPending, models.StatusApproved, models.StatusInProgress},
		to:             models.StatusCancelled,
		trackingStatus: models.TrackingCancelled,
	},
}

// Create validates a submission, persists the request in state pending
// together with its "submitted" tracking entry, and notifies the staff of
// the target center.
func (e *Engine) Create(ctx context.Context, actor Actor, in CreateInput) (*models.RecyclingRequest, error) {
	if in.Quantity < 1 {
		return nil, Validationf("quantity must be at least 1")
	}
	if in.EstimatedWeight <= 0 {
		return nil, Validationf("estimated weight must be a positive number of kilograms")
	}
	if !models.ValidMaterial(in.MaterialType) {
		return nil, Validationf("unknown material type %q", in.MaterialType)
	}
	if strings.TrimSpace(in.PickupLocation.FullText) == "" {
		return nil, Validationf("pickup address is required")
	}
	if in.PreferredPickupDate.IsZero() {
		return nil, Validationf("preferred pickup date is required")
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.ValidPriority(priority) {
		return nil, Validationf("unknown priority %q", in.Priority)
	}

	center, err := e.store.GetCenterByID(ctx, in.CenterID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, Validationf("unknown recycling center %q", in.CenterID)
	}
	if err != nil {
		return nil, fmt.Errorf("loading center: %w", err)
	}
	if !center.IsActive {
		return nil, Validationf("recycling center %s is not active", center.CenterID)
	}
	if !center.Accepts(in.MaterialType) {
		return nil, Validationf("center %s does not accept %s", center.CenterID, in.MaterialType)
	}

	now := e.nowFn()
	req := &models.RecyclingRequest{
		RequestID:           newID("REQ"),
		UserID:              actor.ID,
		CenterID:            center.CenterID,
		MaterialType:        in.MaterialType,
		ItemDescription:     in.ItemDescription,
		Quantity:            in.Quantity,
		EstimatedWeight:     in.EstimatedWeight,
		PickupLocation:      in.PickupLocation,
		PreferredPickupDate: in.PreferredPickupDate,
		Status:              models.StatusPending,
		Priority:            priority,
		Notes:               in.Notes,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	first := models.RequestTracking{
		RequestID:   req.RequestID,
		Status:      models.TrackingSubmitted,
		Description: "Request submitted successfully",
		Timestamp:   now,
		UpdatedBy:   actor.ID,
	}

	if err := e.store.CreateRequest(ctx, req, first); err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	e.notifier.RequestSubmitted(ctx, req, actor.Name, center.StaffMembers)
	return req, nil
}

// Transition applies one action to one request. The status update, tracking
// append and profile/center side effects commit atomically; the notification
// is fired afterwards, best-effort.
func (e *Engine) Transition(ctx context.Context, actor Actor, requestID string, action Action, notes string) (*models.RecyclingRequest, error) {
	req, err := e.store.GetRequestByID(ctx, requestID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{Resource: "recycling request", ID: requestID}
	}
	if err != nil {
		return nil, fmt.Errorf("loading request: %w", err)
	}

	center, err := e.store.GetCenterByID(ctx, req.CenterID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{Resource: "recycling center", ID: req.CenterID}
	}
	if err != nil {
		return nil, fmt.Errorf("loading center: %w", err)
	}

	if action == ActionCancel {
		// Cancellation belongs to the requester, regardless of role.
		if actor.ID != req.UserID {
			return nil, &PermissionError{Reason: "only the requester can cancel a request"}
		}
	} else {
		if err := e.gate.Check(actor, StaffAction, center); err != nil {
			return nil, err
		}
	}

	r, ok := rules[action]
	if !ok {
		return nil, Validationf("unknown action %q", action)
	}
	if !containsString(r.from, req.Status) {
		return nil, &IllegalTransitionError{RequestID: requestID, Status: req.Status, Action: string(action)}
	}
	if action == ActionReject && strings.TrimSpace(notes) == "" {
		return nil, Validationf("a reason is required to reject a request")
	}

	now := e.nowFn()
	commit := store.TransitionCommit{
		RequestID:      requestID,
		ExpectedStatus: req.Status,
		NewStatus:      r.to,
		Tracking: models.RequestTracking{
			RequestID:   requestID,
			Status:      r.trackingStatus,
			Timestamp:   now,
			UpdatedBy:   actor.ID,
			Description: e.describe(action, actor, notes),
		},
	}

	switch action {
	case ActionApprove:
		commit.ApprovedBy = &actor.ID
		commit.ApprovedAt = &now
		if notes != "" {
			commit.StaffNotes = &notes
		}
	case ActionReject:
		commit.StaffNotes = &notes
	case ActionComplete:
		commit.CompletedAt = &now
		commit.RequesterID = req.UserID
		commit.RequesterItemsDelta = req.Quantity
		commit.RequesterWeightDelta = req.EstimatedWeight
		commit.CenterID = req.CenterID
		commit.CenterLoadDelta = req.Quantity
	}

	if err := e.store.ApplyTransition(ctx, commit); err != nil {
		switch {
		case errors.Is(err, store.ErrStatusConflict):
			// Lost a race with a concurrent transition; report the status
			// the request actually holds now.
			current := req.Status
			if fresh, ferr := e.store.GetRequestByID(ctx, requestID); ferr == nil {
				current = fresh.Status
			}
			return nil, &IllegalTransitionError{RequestID: requestID, Status: current, Action: string(action)}
		case errors.Is(err, store.ErrNotFound):
			return nil, &NotFoundError{Resource: "recycling request", ID: requestID}
		default:
			return nil, fmt.Errorf("applying transition: %w", err)
		}
	}

	// Mirror the commit onto the local copy for the response and the
	// notification payload.
	req.Status = r.to
	req.UpdatedAt = now
	switch action {
	case ActionApprove:
		req.ApprovedBy = actor.ID
		req.ApprovedAt = &now
		if notes != "" {
			req.StaffNotes = notes
		}
	case ActionReject:
		req.StaffNotes = notes
	case ActionComplete:
		req.CompletedAt = &now
	}

	switch action {
	case ActionApprove:
		e.notifier.RequestApproved(ctx, req)
	case ActionReject:
		e.notifier.RequestRejected(ctx, req, notes)
	case ActionStart:
		e.notifier.RequestInProgress(ctx, req)
	case ActionComplete:
		e.notifier.RequestCompleted(ctx, req)
	case ActionCancel:
		e.notifier.RequestCancelled(ctx, req, center.StaffMembers)
	}
	return req, nil
}

// BulkTransition applies one action to each request independently. A reject
// without notes fails the whole batch before anything is mutated; every
// other failure is collected per request.
func (e *Engine) BulkTransition(ctx context.Context, actor Actor, action Action, requestIDs []string, notes string) (*BulkResult, error) {
	switch action {
	case ActionApprove, ActionReject, ActionStart:
	default:
		return nil, Validationf("action %q cannot be applied in bulk", action)
	}
	if len(requestIDs) == 0 {
		return nil, Validationf("no request IDs given")
	}
	if action == ActionReject && strings.TrimSpace(notes) == "" {
		return nil, Validationf("please provide notes for rejection")
	}

	result := &BulkResult{Errors: make(map[string]string)}
	for _, id := range requestIDs {
		if _, err := e.Transition(ctx, actor, id, action, notes); err != nil {
			result.Errors[id] = err.Error()
			continue
		}
		result.Succeeded++
	}
	return result, nil
}

func (e *Engine) describe(action Action, actor Actor, notes string) string {
	switch action {
	case ActionApprove:
		return strings.TrimSpace(fmt.Sprintf("Request approved by %s. %s", actor.Name, notes))
	case ActionReject:
		return fmt.Sprintf("Request rejected by %s. Reason: %s", actor.Name, notes)
	case ActionStart:
		return fmt.Sprintf("Pickup in progress - started by %s", actor.Name)
	case ActionComplete:
		return fmt.Sprintf("Recycling completed by %s", actor.Name)
	case ActionCancel:
		return fmt.Sprintf("Request cancelled by %s", actor.Name)
	default:
		return ""
	}
}

func newID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, strings.ToUpper(uuid.New().String()[:8]))
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
