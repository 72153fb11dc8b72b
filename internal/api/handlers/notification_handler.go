// internal/api/handlers/notification_handler.go
package handlers

import (
	"net/http"

	"greencycle-api-server/internal/store"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	Store store.Store
}

// ListNotifications returns the signed-in user's notifications, newest
// first, with the unread count.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID := c.GetString("user_id")

	notifications, err := h.Store.ListNotifications(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	unread, err := h.Store.CountUnreadNotifications(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications, "unreadCount": unread})
}

// MarkRead flags one of the user's notifications as read. Marking another
// user's notification is a 404, not a 403, so IDs cannot be probed.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	err := h.Store.MarkNotificationRead(c.Request.Context(), c.Param("id"), c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
