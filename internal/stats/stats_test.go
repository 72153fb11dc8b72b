// internal/stats/stats_test.go
package stats

import (
	"context"
	"testing"
	"time"

	"greencycle-api-server/internal/models"
	"greencycle-api-server/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, m *store.Memory, id, userID, material, status string) {
	t.Helper()
	now := time.Now()
	req := &models.RecyclingRequest{
		RequestID:    id,
		UserID:       userID,
		CenterID:     "RC-1",
		MaterialType: material,
		Quantity:     1,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	first := models.RequestTracking{RequestID: id, Status: models.TrackingSubmitted, Timestamp: now}
	require.NoError(t, m.CreateRequest(context.Background(), req, first))
}

func TestDashboard(t *testing.T) {
	m := store.NewMemory()
	seed(t, m, "REQ-1", "USR-1", models.MaterialPlastic, models.StatusPending)
	seed(t, m, "REQ-2", "USR-1", models.MaterialPlastic, models.StatusCompleted)
	seed(t, m, "REQ-3", "USR-2", models.MaterialGlass, models.StatusPending)

	d, err := NewAggregator(m).Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, d.Total)
	assert.Equal(t, 2, d.ByStatus[models.StatusPending])
	assert.Equal(t, 1, d.ByStatus[models.StatusCompleted])
	assert.Equal(t, 2, d.ByMaterial[models.MaterialPlastic])
	assert.Equal(t, 1, d.ByMaterial[models.MaterialGlass])
}

func TestUserSummary(t *testing.T) {
	m := store.NewMemory()
	seed(t, m, "REQ-1", "USR-1", models.MaterialPlastic, models.StatusPending)
	seed(t, m, "REQ-2", "USR-1", models.MaterialGlass, models.StatusCompleted)
	seed(t, m, "REQ-3", "USR-1", models.MaterialGlass, models.StatusRejected)
	seed(t, m, "REQ-4", "USR-2", models.MaterialGlass, models.StatusPending)

	s, err := NewAggregator(m).UserSummary(context.Background(), "USR-1")
	require.NoError(t, err)

	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 1, s.Pending)
	assert.Equal(t, 1, s.Completed)
}

func TestDashboardEmpty(t *testing.T) {
	d, err := NewAggregator(store.NewMemory()).Dashboard(context.Background())
	require.NoError(t, err)
	assert.Zero(t, d.Total)
	assert.Empty(t, d.ByStatus)
}
