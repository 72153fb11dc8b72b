// internal/notify/dispatcher_test.go
package notify

import (
	"context"
	"errors"
	"testing"

	"greencycle-api-server/internal/models"
	"greencycle-api-server/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPusher struct{}

func (failingPusher) Send(string, []byte) error { return errors.New("connection reset") }

func sampleRequest() *models.RecyclingRequest {
	return &models.RecyclingRequest{
		RequestID:    "REQ-TEST",
		UserID:       "USR-RES",
		MaterialType: models.MaterialGlass,
	}
}

func TestRequestSubmittedNotifiesEachStaffMember(t *testing.T) {
	st := store.NewMemory()
	d := NewDispatcher(st, nil)
	ctx := context.Background()

	d.RequestSubmitted(ctx, sampleRequest(), "Riley Resident", []string{"USR-S1", "USR-S2"})

	for _, staffID := range []string{"USR-S1", "USR-S2"} {
		list, err := st.ListNotifications(ctx, staffID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "New Recycling Request", list[0].Title)
		assert.Equal(t, "New recycling request for glass from Riley Resident", list[0].Message)
		assert.Equal(t, "REQ-TEST", list[0].RelatedRequestID)
		assert.False(t, list[0].IsRead)
	}
}

func TestLifecycleMessages(t *testing.T) {
	st := store.NewMemory()
	d := NewDispatcher(st, nil)
	ctx := context.Background()

	cases := []struct {
		name    string
		fire    func()
		title   string
		message string
	}{
		{
			name:    "approved",
			fire:    func() { d.RequestApproved(ctx, sampleRequest()) },
			title:   "Request Approved",
			message: "Your recycling request for glass has been approved!",
		},
		{
			name:    "rejected",
			fire:    func() { d.RequestRejected(ctx, sampleRequest(), "contaminated load") },
			title:   "Request Rejected",
			message: "Your recycling request for glass has been rejected. Reason: contaminated load",
		},
		{
			name:    "in progress",
			fire:    func() { d.RequestInProgress(ctx, sampleRequest()) },
			title:   "Pickup In Progress",
			message: "Your recycling request for glass is now in progress!",
		},
		{
			name:    "completed",
			fire:    func() { d.RequestCompleted(ctx, sampleRequest()) },
			title:   "Recycling Completed",
			message: "Your glass has been successfully recycled!",
		},
	}
	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.fire()
			list, err := st.ListNotifications(ctx, "USR-RES")
			require.NoError(t, err)
			require.Len(t, list, i+1)

			var found *models.Notification
			for j := range list {
				if list[j].Title == tc.title {
					found = &list[j]
					break
				}
			}
			require.NotNil(t, found, "notification %q not stored", tc.title)
			assert.Equal(t, tc.message, found.Message)
		})
	}
}

func TestRequestCancelledNotifiesStaff(t *testing.T) {
	st := store.NewMemory()
	d := NewDispatcher(st, nil)
	ctx := context.Background()

	d.RequestCancelled(ctx, sampleRequest(), []string{"USR-S1"})

	list, err := st.ListNotifications(ctx, "USR-S1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Request Cancelled", list[0].Title)
}

func TestPushFailureStillStoresNotification(t *testing.T) {
	st := store.NewMemory()
	d := NewDispatcher(st, failingPusher{})
	ctx := context.Background()

	d.RequestApproved(ctx, sampleRequest())

	list, err := st.ListNotifications(ctx, "USR-RES")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
