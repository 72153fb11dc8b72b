// internal/stats/stats.go
//
// Package stats derives dashboard counts from the request collection. It is
// a read-only projection and never mutates state.
package stats

import (
	"context"
	"fmt"

	"greencycle-api-server/internal/models"
	"greencycle-api-server/internal/store"
)

type Aggregator struct {
	store store.Store
}

func NewAggregator(st store.Store) *Aggregator {
	return &Aggregator{store: st}
}

// Dashboard is the staff/admin view over all requests.
type Dashboard struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"byStatus"`
	ByMaterial map[string]int `json:"byMaterial"`
}

// UserSummary is the header of a resident's "my requests" page.
type UserSummary struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
}

func (a *Aggregator) Dashboard(ctx context.Context) (*Dashboard, error) {
	byStatus, err := a.store.CountRequestsByStatus(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("counting by status: %w", err)
	}
	byMaterial, err := a.store.CountRequestsByMaterial(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting by material: %w", err)
	}

	d := &Dashboard{ByStatus: byStatus, ByMaterial: byMaterial}
	for _, n := range byStatus {
		d.Total += n
	}
	return d, nil
}

func (a *Aggregator) UserSummary(ctx context.Context, userID string) (*UserSummary, error) {
	byStatus, err := a.store.CountRequestsByStatus(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("counting by status: %w", err)
	}
	s := &UserSummary{
		Pending:   byStatus[models.StatusPending],
		Completed: byStatus[models.StatusCompleted],
	}
	for _, n := range byStatus {
		s.Total += n
	}
	return s, nil
}
