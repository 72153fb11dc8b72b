// internal/api/handlers/request_handler.go
package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"greencycle-api-server/internal/lifecycle"
	"greencycle-api-server/internal/models"
	"greencycle-api-server/internal/s3"
	"greencycle-api-server/internal/stats"
	"greencycle-api-server/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RequestHandler struct {
	Store    store.Store
	Engine   *lifecycle.Engine
	Stats    *stats.Aggregator
	Uploader *s3.Uploader
}

type CreateRequestRequest struct {
	CenterID            string    `json:"centerID" binding:"required"`
	MaterialType        string    `json:"materialType" binding:"required"`
	ItemDescription     string    `json:"itemDescription" binding:"required"`
	Quantity            int       `json:"quantity" binding:"required"`
	EstimatedWeight     float64   `json:"estimatedWeight" binding:"required"`
	PickupAddress       string    `json:"pickupAddress" binding:"required"`
	PickupLatitude      *float64  `json:"pickupLatitude"`
	PickupLongitude     *float64  `json:"pickupLongitude"`
	PreferredPickupDate time.Time `json:"preferredPickupDate" binding:"required"`
	Notes               string    `json:"notes"`
	Priority            string    `json:"priority"`
}

// CreateRequest submits a new pickup request for the signed-in resident.
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	var req CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := lifecycle.CreateInput{
		CenterID:        req.CenterID,
		MaterialType:    req.MaterialType,
		ItemDescription: req.ItemDescription,
		Quantity:        req.Quantity,
		EstimatedWeight: req.EstimatedWeight,
		PickupLocation: models.Address{
			FullText:  req.PickupAddress,
			Latitude:  req.PickupLatitude,
			Longitude: req.PickupLongitude,
		},
		PreferredPickupDate: req.PreferredPickupDate,
		Notes:               req.Notes,
		Priority:            req.Priority,
	}

	created, err := h.Engine.Create(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "request": created})
}

// GetRequest returns one request with its tracking history. Visible to its
// owner and to staff/admins.
func (h *RequestHandler) GetRequest(c *gin.Context) {
	req, err := h.Store.GetRequestByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	role := c.GetString("user_role")
	if req.UserID != c.GetString("user_id") && role != models.RoleStaff && role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to view this request"})
		return
	}

	tracking, err := h.Store.ListTracking(c.Request.Context(), req.RequestID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": req, "tracking": tracking})
}

// MyRequests lists the signed-in user's requests, optionally filtered by
// status, together with their summary counts.
func (h *RequestHandler) MyRequests(c *gin.Context) {
	userID := c.GetString("user_id")

	filter := store.RequestFilter{UserID: userID, Status: c.Query("status")}
	requests, err := h.Store.ListRequests(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	summary, err := h.Stats.UserSummary(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests, "counts": summary})
}

// StaffQueue lists the requests a staff member may act on: everything
// targeting a center they are assigned to. Admins see every center. The
// status filter defaults to pending.
func (h *RequestHandler) StaffQueue(c *gin.Context) {
	status := c.DefaultQuery("status", models.StatusPending)
	if status == "all" {
		status = ""
	}
	filter := store.RequestFilter{Status: status}

	if c.GetString("user_role") == models.RoleStaff {
		centers, err := h.Store.ListCentersByStaff(c.Request.Context(), c.GetString("user_id"))
		if err != nil {
			respondError(c, err)
			return
		}
		centerIDs := make([]string, 0, len(centers))
		for _, center := range centers {
			centerIDs = append(centerIDs, center.CenterID)
		}
		// Non-nil and possibly empty: a staff member assigned nowhere has an
		// empty queue, not an unscoped one.
		filter.CenterIDs = centerIDs
	}

	requests, err := h.Store.ListRequests(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

type ActionRequest struct {
	Notes string `json:"notes"`
}

// Approve moves a pending request to approved.
func (h *RequestHandler) Approve(c *gin.Context) {
	h.applyAction(c, lifecycle.ActionApprove)
}

// Reject moves a pending request to rejected. Notes are mandatory and become
// the rejection reason.
func (h *RequestHandler) Reject(c *gin.Context) {
	h.applyAction(c, lifecycle.ActionReject)
}

// Start moves an approved request to in_progress.
func (h *RequestHandler) Start(c *gin.Context) {
	h.applyAction(c, lifecycle.ActionStart)
}

// Complete moves an in_progress request to completed and credits the
// requester's recycling totals.
func (h *RequestHandler) Complete(c *gin.Context) {
	h.applyAction(c, lifecycle.ActionComplete)
}

// Cancel lets the requester withdraw their own request before completion.
func (h *RequestHandler) Cancel(c *gin.Context) {
	h.applyAction(c, lifecycle.ActionCancel)
}

func (h *RequestHandler) applyAction(c *gin.Context, action lifecycle.Action) {
	var body ActionRequest
	// The body is optional for everything except reject; the engine enforces
	// the reject-needs-notes rule.
	_ = c.ShouldBindJSON(&body)

	req, err := h.Engine.Transition(c.Request.Context(), actorFrom(c), c.Param("id"), action, body.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "request": req})
}

type BulkActionRequest struct {
	Action     string   `json:"action" binding:"required"`
	RequestIDs []string `json:"request_ids" binding:"required"`
	Notes      string   `json:"notes"`
}

// BulkAction applies approve, reject or mark_in_progress to a batch of
// requests. Failures are reported per request.
func (h *RequestHandler) BulkAction(c *gin.Context) {
	var body BulkActionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Engine.BulkTransition(c.Request.Context(), actorFrom(c), lifecycle.Action(body.Action), body.RequestIDs, body.Notes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   fmt.Sprintf("%d request(s) updated", result.Succeeded),
		"succeeded": result.Succeeded,
		"errors":    result.Errors,
	})
}

// UploadRequestImage attaches a photo to the caller's own request. The first
// upload becomes the item image; later ones go to the additional images.
func (h *RequestHandler) UploadRequestImage(c *gin.Context) {
	if h.Uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image uploads are not configured"})
		return
	}

	req, err := h.Store.GetRequestByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if req.UserID != c.GetString("user_id") {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to modify this request"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "An image file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	key := fmt.Sprintf("requests/%s/%s%s", req.RequestID, uuid.New().String(), filepath.Ext(fileHeader.Filename))
	url, err := h.Uploader.UploadFile(c.Request.Context(), file, key, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
		return
	}

	if err := h.Store.AttachRequestImage(c.Request.Context(), req.RequestID, url); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "imageURL": url})
}
