// internal/models/request_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTerminalStatus(t *testing.T) {
	terminal := []string{StatusRejected, StatusCompleted, StatusCancelled}
	for _, s := range terminal {
		assert.True(t, IsTerminalStatus(s), s)
	}

	open := []string{StatusPending, StatusApproved, StatusInProgress}
	for _, s := range open {
		assert.False(t, IsTerminalStatus(s), s)
	}
}

func TestValidMaterial(t *testing.T) {
	for _, m := range MaterialTypes {
		assert.True(t, ValidMaterial(m), m)
	}
	assert.False(t, ValidMaterial("uranium"))
	assert.False(t, ValidMaterial(""))
}

func TestValidPriority(t *testing.T) {
	for _, p := range []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent} {
		assert.True(t, ValidPriority(p), p)
	}
	assert.False(t, ValidPriority("whenever"))
}
