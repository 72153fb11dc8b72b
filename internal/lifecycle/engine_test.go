// internal/lifecycle/engine_test.go
package lifecycle

import (
	"context"
	"testing"
	"time"

	"greencycle-api-server/internal/models"
	"greencycle-api-server/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingNotifier counts lifecycle callbacks so tests can assert which
// event fired without a real dispatcher.
type recordingNotifier struct {
	submitted []string // staff IDs notified
	approved  int
	rejected  int
	rejectMsg string
	started   int
	completed int
	cancelled []string
}

func (n *recordingNotifier) RequestSubmitted(_ context.Context, _ *models.RecyclingRequest, _ string, staffIDs []string) {
	n.submitted = append(n.submitted, staffIDs...)
}
func (n *recordingNotifier) RequestApproved(context.Context, *models.RecyclingRequest) { n.approved++ }
func (n *recordingNotifier) RequestRejected(_ context.Context, _ *models.RecyclingRequest, reason string) {
	n.rejected++
	n.rejectMsg = reason
}
func (n *recordingNotifier) RequestInProgress(context.Context, *models.RecyclingRequest) { n.started++ }
func (n *recordingNotifier) RequestCompleted(context.Context, *models.RecyclingRequest)  { n.completed++ }
func (n *recordingNotifier) RequestCancelled(_ context.Context, _ *models.RecyclingRequest, staffIDs []string) {
	n.cancelled = append(n.cancelled, staffIDs...)
}

type fixture struct {
	store    *store.Memory
	notifier *recordingNotifier
	engine   *Engine

	resident Actor
	staff    Actor
	outsider Actor
	admin    Actor
	center   *models.RecyclingCenter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := store.NewMemory()
	ctx := context.Background()

	now := time.Now()
	users := []*models.UserProfile{
		{UserID: "USR-RES", Email: "res@example.com", Name: "Riley Resident", Role: models.RoleNormal, CreatedAt: now, UpdatedAt: now},
		{UserID: "USR-STAFF", Email: "staff@example.com", Name: "Sam Staff", Role: models.RoleStaff, CreatedAt: now, UpdatedAt: now},
		{UserID: "USR-OUT", Email: "out@example.com", Name: "Olly Outsider", Role: models.RoleStaff, CreatedAt: now, UpdatedAt: now},
		{UserID: "USR-ADM", Email: "adm@example.com", Name: "Alex Admin", Role: models.RoleAdmin, CreatedAt: now, UpdatedAt: now},
	}
	for _, u := range users {
		require.NoError(t, st.CreateUser(ctx, u))
	}

	center := &models.RecyclingCenter{
		CenterID: "RC-TEST",
		Name:     "Test Center",
		Address:  "1 Green Way",
		Capacity: 100,
		AcceptedMaterials: []models.AcceptedMaterial{
			{MaterialType: models.MaterialPlastic},
			{MaterialType: models.MaterialGlass},
		},
		StaffMembers: []string{"USR-STAFF"},
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, st.CreateCenter(ctx, center))

	n := &recordingNotifier{}
	return &fixture{
		store:    st,
		notifier: n,
		engine:   NewEngine(st, n),
		resident: Actor{ID: "USR-RES", Name: "Riley Resident", Role: models.RoleNormal},
		staff:    Actor{ID: "USR-STAFF", Name: "Sam Staff", Role: models.RoleStaff},
		outsider: Actor{ID: "USR-OUT", Name: "Olly Outsider", Role: models.RoleStaff},
		admin:    Actor{ID: "USR-ADM", Name: "Alex Admin", Role: models.RoleAdmin},
		center:   center,
	}
}

func validInput() CreateInput {
	return CreateInput{
		CenterID:            "RC-TEST",
		MaterialType:        models.MaterialPlastic,
		ItemDescription:     "Bottles",
		Quantity:            4,
		EstimatedWeight:     2.5,
		PickupLocation:      models.Address{FullText: "12 Elm Street"},
		PreferredPickupDate: time.Now().Add(48 * time.Hour),
	}
}

func TestCreateStartsPendingWithTracking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.engine.Create(ctx, f.resident, validInput())
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, req.Status)
	assert.Equal(t, models.PriorityMedium, req.Priority)
	assert.Equal(t, "USR-RES", req.UserID)

	tracking, err := f.store.ListTracking(ctx, req.RequestID)
	require.NoError(t, err)
	require.Len(t, tracking, 1)
	assert.Equal(t, models.TrackingSubmitted, tracking[0].Status)
	assert.Equal(t, "Request submitted successfully", tracking[0].Description)

	assert.Equal(t, []string{"USR-STAFF"}, f.notifier.submitted)
}

func TestCreateRejectsIncompatibleMaterial(t *testing.T) {
	f := newFixture(t)

	in := validInput()
	in.MaterialType = models.MaterialBattery

	_, err := f.engine.Create(context.Background(), f.resident, in)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "does not accept")
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"zero quantity", func(in *CreateInput) { in.Quantity = 0 }},
		{"negative weight", func(in *CreateInput) { in.EstimatedWeight = -1 }},
		{"unknown material", func(in *CreateInput) { in.MaterialType = "plutonium" }},
		{"blank address", func(in *CreateInput) { in.PickupLocation.FullText = "  " }},
		{"missing date", func(in *CreateInput) { in.PreferredPickupDate = time.Time{} }},
		{"unknown priority", func(in *CreateInput) { in.Priority = "extreme" }},
		{"unknown center", func(in *CreateInput) { in.CenterID = "RC-NOPE" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			_, err := f.engine.Create(ctx, f.resident, in)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestApproveByAssignedStaff(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.engine.Create(ctx, f.resident, validInput())
	require.NoError(t, err)

	approved, err := f.engine.Transition(ctx, f.staff, req.RequestID, ActionApprove, "see you friday")
	require.NoError(t, err)

	assert.Equal(t, models.StatusApproved, approved.Status)
	assert.Equal(t, "USR-STAFF", approved.ApprovedBy)
	require.NotNil(t, approved.ApprovedAt)
	assert.Equal(t, "see you friday", approved.StaffNotes)

	tracking, err := f.store.ListTracking(ctx, req.RequestID)
	require.NoError(t, err)
	require.Len(t, tracking, 2)
	assert.Equal(t, models.TrackingApproved, tracking[0].Status)

	assert.Equal(t, 1, f.notifier.approved)
}

func TestApproveByUnassignedStaffDenied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.engine.Create(ctx, f.resident, validInput())
	require.NoError(t, err)

	_, err = f.engine.Transition(ctx, f.outsider, req.RequestID, ActionApprove, "")
	var perr *PermissionError
	require.ErrorAs(t, err, &perr)

	got, err := f.store.GetRequestByID(ctx, req.RequestID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
}

func TestAdminActsOnAnyCenter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.engine.Create(ctx, f.resident, validInput())
	require.NoError(t, err)

	_, err = f.engine.Transition(ctx, f.admin, req.RequestID, ActionApprove, "")
	assert.NoError(t, err)
}

func TestRejectRequiresReason(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.engine.Create(ctx, f.resident, validInput())
	require.NoError(t, err)

	_, err = f.engine.Transition(ctx, f.staff, req.RequestID, ActionReject, "   ")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	// Nothing mutated.
	got, err := f.store.GetRequestByID(ctx, req.RequestID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
	tracking, err := f.store.ListTracking(ctx, req.RequestID)
	require.NoError(t, err)
	assert.Len(t, tracking, 1)
}

func TestRejectRecordsReason(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.engine.Create(ctx, f.resident, validInput())
	require.NoError(t, err)

	rejected, err := f.engine.Transition(ctx, f.staff, req.RequestID, ActionReject, "contaminated load")
	require.NoError(t, err)

	assert.Equal(t, models.StatusRejected, rejected.Status)
	assert.Equal(t, "contaminated load", rejected.StaffNotes)
	assert.Equal(t, "contaminated load", f.notifier.rejectMsg)

	tracking, err := f.store.ListTracking(ctx, req.RequestID)
	require.NoError(t, err)
	assert.Contains(t, tracking[0].Description, "Reason: contaminated load")
}

func TestCompleteCreditsTotalsAndLoad(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.engine.Create(ctx, f.resident, validInput())
	require.NoError(t, err)

	_, err = f.engine.Transition(ctx, f.staff, req.RequestID, ActionApprove, "")
	require.NoError(t, err)
	_, err = f.engine.Transition(ctx, f.staff, req.RequestID, ActionStart, "")
	require.NoError(t, err)
	completed, err := f.engine.Transition(ctx, f.staff, req.RequestID, ActionComplete, "")
	require.NoError(t, err)

	assert.Equal(t, models.StatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)

	user, err := f.store.GetUserByID(ctx, "USR-RES")
	require.NoError(t, err)
	assert.Equal(t, 4, user.TotalItemsRecycled)
	assert.InDelta(t, 2.5, user.TotalWeightRecycled, 1e-9)

	center, err := f.store.GetCenterByID(ctx, "RC-TEST")
	require.NoError(t, err)
	assert.Equal(t, 4, center.CurrentLoad)

	tracking, err := f.store.ListTracking(ctx, req.RequestID)
	require.NoError(t, err)
	assert.Len(t, tracking, 4)
	assert.Equal(t, 1, f.notifier.completed)
}

func TestCompleteTwiceIsIllegal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.engine.Create(ctx, f.resident, validInput())
	require.NoError(t, err)
	_, err = f.engine.Transition(ctx, f.staff, req.RequestID, ActionApprove, "")
	require.NoError(t, err)
	_, err = f.engine.Transition(ctx, f.staff, req.RequestID, ActionStart, "")
	require.NoError(t, err)
	_, err = f.engine.Transition(ctx, f.staff, req.RequestID, ActionComplete, "")
	require.NoError(t, err)

	_, err = f.engine.Transition(ctx, f.staff, req.RequestID, ActionComplete, "")
	var ierr *IllegalTransitionError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, models.StatusCompleted, ierr.Status)

	// Totals credited exactly once.
	user, err := f.store.GetUserByID(ctx, "USR-RES")
	require.NoError(t, err)
	assert.Equal(t, 4, user.TotalItemsRecycled)
}

func TestIllegalTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.engine.Create(ctx, f.resident, validInput())
	require.NoError(t, err)

	// pending -> complete and pending -> start skip states.
	for _, action := range []Action{ActionComplete, ActionStart} {
		_, err := f.engine.Transition(ctx, f.staff, req.RequestID, action, "")
		var ierr *IllegalTransitionError
		assert.ErrorAs(t, err, &ierr, "action %s", action)
	}

	// approved -> reject is too late.
	_, err = f.engine.Transition(ctx, f.staff, req.RequestID, ActionApprove, "")
	require.NoError(t, err)
	_, err = f.engine.Transition(ctx, f.staff, req.RequestID, ActionReject, "too late")
	var ierr *IllegalTransitionError
	assert.ErrorAs(t, err, &ierr)
}

func TestCancelBelongsToRequester(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.engine.Create(ctx, f.resident, validInput())
	require.NoError(t, err)

	_, err = f.engine.Transition(ctx, f.staff, req.RequestID, ActionCancel, "")
	var perr *PermissionError
	require.ErrorAs(t, err, &perr)

	cancelled, err := f.engine.Transition(ctx, f.resident, req.RequestID, ActionCancel, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Equal(t, []string{"USR-STAFF"}, f.notifier.cancelled)
}

func TestCancelAfterCompletionIsIllegal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.engine.Create(ctx, f.resident, validInput())
	require.NoError(t, err)
	_, err = f.engine.Transition(ctx, f.staff, req.RequestID, ActionApprove, "")
	require.NoError(t, err)
	_, err = f.engine.Transition(ctx, f.staff, req.RequestID, ActionStart, "")
	require.NoError(t, err)
	_, err = f.engine.Transition(ctx, f.staff, req.RequestID, ActionComplete, "")
	require.NoError(t, err)

	_, err = f.engine.Transition(ctx, f.resident, req.RequestID, ActionCancel, "")
	var ierr *IllegalTransitionError
	assert.ErrorAs(t, err, &ierr)
}

func TestTransitionUnknownRequest(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Transition(context.Background(), f.staff, "REQ-MISSING", ActionApprove, "")
	var nerr *NotFoundError
	assert.ErrorAs(t, err, &nerr)
}

func TestBulkApprovePartialSuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.engine.Create(ctx, f.resident, validInput())
	require.NoError(t, err)
	second, err := f.engine.Create(ctx, f.resident, validInput())
	require.NoError(t, err)

	// Second request is already approved; bulk approving both should only
	// move the first.
	_, err = f.engine.Transition(ctx, f.staff, second.RequestID, ActionApprove, "")
	require.NoError(t, err)

	result, err := f.engine.BulkTransition(ctx, f.staff, ActionApprove, []string{first.RequestID, second.RequestID}, "")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Succeeded)
	assert.Contains(t, result.Errors, second.RequestID)
	assert.NotContains(t, result.Errors, first.RequestID)
}

func TestBulkRejectWithoutNotesFailsWhole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.engine.Create(ctx, f.resident, validInput())
	require.NoError(t, err)

	_, err = f.engine.BulkTransition(ctx, f.staff, ActionReject, []string{req.RequestID}, "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	got, err := f.store.GetRequestByID(ctx, req.RequestID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
}

func TestBulkRejectsUnsupportedActions(t *testing.T) {
	f := newFixture(t)

	for _, action := range []Action{ActionComplete, ActionCancel} {
		_, err := f.engine.BulkTransition(context.Background(), f.staff, action, []string{"REQ-X"}, "n")
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr, "action %s", action)
	}

	_, err := f.engine.BulkTransition(context.Background(), f.staff, ActionApprove, nil, "")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestCreateOnInactiveCenter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inactive := false
	require.NoError(t, f.store.UpdateCenter(ctx, "RC-TEST", store.CenterUpdate{IsActive: &inactive}))

	_, err := f.engine.Create(ctx, f.resident, validInput())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "not active")
}
