// internal/api/handlers/common.go
package handlers

import (
	"errors"
	"net/http"

	"greencycle-api-server/internal/lifecycle"
	"greencycle-api-server/internal/store"

	"github.com/gin-gonic/gin"
)

// actorFrom rebuilds the lifecycle actor from the context values set by the
// Authenticate middleware.
func actorFrom(c *gin.Context) lifecycle.Actor {
	return lifecycle.Actor{
		ID:   c.GetString("user_id"),
		Name: c.GetString("user_name"),
		Role: c.GetString("user_role"),
	}
}

// respondError maps the lifecycle/store error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var (
		validationErr *lifecycle.ValidationError
		permissionErr *lifecycle.PermissionError
		notFoundErr   *lifecycle.NotFoundError
		illegalErr    *lifecycle.IllegalTransitionError
	)

	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.As(err, &validationErr):
		status, message = http.StatusBadRequest, validationErr.Error()
	case errors.As(err, &permissionErr):
		status, message = http.StatusForbidden, permissionErr.Error()
	case errors.As(err, &notFoundErr):
		status, message = http.StatusNotFound, notFoundErr.Error()
	case errors.As(err, &illegalErr):
		status, message = http.StatusConflict, illegalErr.Error()
	case errors.Is(err, store.ErrNotFound):
		status, message = http.StatusNotFound, "not found"
	case errors.Is(err, store.ErrDuplicate):
		status, message = http.StatusConflict, "already exists"
	}

	c.JSON(status, gin.H{"success": false, "error": message})
}
