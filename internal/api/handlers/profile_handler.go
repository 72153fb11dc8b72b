// internal/api/handlers/profile_handler.go
package handlers

import (
	"net/http"

	"greencycle-api-server/internal/stats"
	"greencycle-api-server/internal/store"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	Store store.Store
	Stats *stats.Aggregator
}

// GetMe returns the signed-in user's profile.
func (h *ProfileHandler) GetMe(c *gin.Context) {
	user, err := h.Store.GetUserByID(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

type UpdateProfileRequest struct {
	Name               *string  `json:"name"`
	PhoneNumber        *string  `json:"phoneNumber"`
	Address            *string  `json:"address"`
	City               *string  `json:"city"`
	PostalCode         *string  `json:"postalCode"`
	Latitude           *float64 `json:"latitude"`
	Longitude          *float64 `json:"longitude"`
	EmailNotifications *bool    `json:"emailNotifications"`
	SMSNotifications   *bool    `json:"smsNotifications"`
	Newsletter         *bool    `json:"newsletter"`
	PublicProfile      *bool    `json:"publicProfile"`
	LocationSharing    *bool    `json:"locationSharing"`
}

// UpdateMe applies a partial profile update; omitted fields are untouched.
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("user_id")
	upd := store.ProfileUpdate{
		Name:               req.Name,
		PhoneNumber:        req.PhoneNumber,
		Address:            req.Address,
		City:               req.City,
		PostalCode:         req.PostalCode,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		EmailNotifications: req.EmailNotifications,
		SMSNotifications:   req.SMSNotifications,
		Newsletter:         req.Newsletter,
		PublicProfile:      req.PublicProfile,
		LocationSharing:    req.LocationSharing,
	}
	if err := h.Store.UpdateProfile(c.Request.Context(), userID, upd); err != nil {
		respondError(c, err)
		return
	}

	user, err := h.Store.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// GetMyStats returns the user's recycling totals and request counts.
func (h *ProfileHandler) GetMyStats(c *gin.Context) {
	userID := c.GetString("user_id")

	user, err := h.Store.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	summary, err := h.Stats.UserSummary(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totalItemsRecycled":  user.TotalItemsRecycled,
		"totalWeightRecycled": user.TotalWeightRecycled,
		"requests":            summary,
	})
}
