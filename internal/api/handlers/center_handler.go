// internal/api/handlers/center_handler.go
package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"greencycle-api-server/internal/geo"
	"greencycle-api-server/internal/models"
	"greencycle-api-server/internal/s3"
	"greencycle-api-server/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CenterHandler struct {
	Store    store.Store
	Uploader *s3.Uploader
}

// CenterView decorates a center with its derived fields for list/detail
// responses.
type CenterView struct {
	models.RecyclingCenter
	AvailabilityPercentage float64  `json:"availabilityPercentage"`
	Distance               *float64 `json:"distance,omitempty"` // km, 2 decimals
}

// ListCenters returns active centers filtered by material type and search
// text. When the caller shares coordinates, each center carries its
// distance and the list is sorted nearest-first; centers without usable
// coordinates sort last.
func (h *CenterHandler) ListCenters(c *gin.Context) {
	filter := store.CenterFilter{
		MaterialType: c.Query("material_type"),
		Search:       c.Query("search"),
		ActiveOnly:   true,
	}

	centers, err := h.Store.ListCenters(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query centers"})
		return
	}

	views := make([]CenterView, 0, len(centers))
	for _, center := range centers {
		views = append(views, CenterView{
			RecyclingCenter:        center,
			AvailabilityPercentage: center.Availability(),
		})
	}

	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr == nil && lonErr == nil {
		for i := range views {
			if !usableCoordinates(views[i].Latitude, views[i].Longitude) {
				continue
			}
			d := geo.RoundKm(geo.Distance(lat, lon, views[i].Latitude, views[i].Longitude))
			views[i].Distance = &d
		}
		sort.SliceStable(views, func(i, j int) bool {
			di, dj := views[i].Distance, views[j].Distance
			if di == nil {
				return false
			}
			if dj == nil {
				return true
			}
			return *di < *dj
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"centers":       views,
		"materialTypes": models.MaterialTypes,
	})
}

// GetCenter returns one active center with its derived availability.
func (h *CenterHandler) GetCenter(c *gin.Context) {
	center, err := h.Store.GetCenterByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !center.IsActive {
		c.JSON(http.StatusNotFound, gin.H{"error": "Center not found"})
		return
	}

	c.JSON(http.StatusOK, CenterView{
		RecyclingCenter:        *center,
		AvailabilityPercentage: center.Availability(),
	})
}

// CentersAPI serves the map markers: a compact JSON projection of every
// active center, optionally filtered by material type.
func (h *CenterHandler) CentersAPI(c *gin.Context) {
	filter := store.CenterFilter{
		MaterialType: c.Query("material_type"),
		ActiveOnly:   true,
	}
	centers, err := h.Store.ListCenters(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query centers"})
		return
	}

	markers := make([]gin.H, 0, len(centers))
	for _, center := range centers {
		materials := make([]string, 0, len(center.AcceptedMaterials))
		for _, m := range center.AcceptedMaterials {
			materials = append(materials, m.MaterialType)
		}
		markers = append(markers, gin.H{
			"centerID":               center.CenterID,
			"name":                   center.Name,
			"address":                center.Address,
			"latitude":               center.Latitude,
			"longitude":              center.Longitude,
			"phoneNumber":            center.PhoneNumber,
			"availabilityPercentage": center.Availability(),
			"acceptedMaterials":      materials,
		})
	}

	c.JSON(http.StatusOK, gin.H{"centers": markers})
}

type CreateCenterRequest struct {
	Name              string                    `json:"name" binding:"required"`
	Description       string                    `json:"description"`
	Address           string                    `json:"address" binding:"required"`
	Latitude          float64                   `json:"latitude" binding:"required,min=-90,max=90"`
	Longitude         float64                   `json:"longitude" binding:"required,min=-180,max=180"`
	PhoneNumber       string                    `json:"phoneNumber"`
	Email             string                    `json:"email"`
	Website           string                    `json:"website"`
	OpeningHours      string                    `json:"openingHours"`
	Capacity          int                       `json:"capacity" binding:"min=0"`
	AcceptedMaterials []models.AcceptedMaterial `json:"acceptedMaterials" binding:"required,dive"`
	StaffMembers      []string                  `json:"staffMembers"`
}

// CreateCenter registers a new recycling center (admin only).
func (h *CenterHandler) CreateCenter(c *gin.Context) {
	var req CreateCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for _, m := range req.AcceptedMaterials {
		if !models.ValidMaterial(m.MaterialType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown material type %q", m.MaterialType)})
			return
		}
	}

	now := time.Now()
	center := models.RecyclingCenter{
		CenterID:          fmt.Sprintf("RC-%s", strings.ToUpper(uuid.New().String()[:8])),
		Name:              req.Name,
		Description:       req.Description,
		Address:           req.Address,
		Latitude:          req.Latitude,
		Longitude:         req.Longitude,
		PhoneNumber:       req.PhoneNumber,
		Email:             req.Email,
		Website:           req.Website,
		OpeningHours:      req.OpeningHours,
		Capacity:          req.Capacity,
		AcceptedMaterials: req.AcceptedMaterials,
		StaffMembers:      req.StaffMembers,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if center.StaffMembers == nil {
		center.StaffMembers = []string{}
	}

	if err := h.Store.CreateCenter(c.Request.Context(), &center); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, center)
}

type UpdateCenterRequest struct {
	Name              *string                    `json:"name"`
	Description       *string                    `json:"description"`
	Address           *string                    `json:"address"`
	Latitude          *float64                   `json:"latitude"`
	Longitude         *float64                   `json:"longitude"`
	PhoneNumber       *string                    `json:"phoneNumber"`
	Email             *string                    `json:"email"`
	Website           *string                    `json:"website"`
	OpeningHours      *string                    `json:"openingHours"`
	Capacity          *int                       `json:"capacity"`
	AcceptedMaterials *[]models.AcceptedMaterial `json:"acceptedMaterials"`
	StaffMembers      *[]string                  `json:"staffMembers"`
	IsActive          *bool                      `json:"isActive"`
}

// UpdateCenter applies a partial update to a center (admin only).
func (h *CenterHandler) UpdateCenter(c *gin.Context) {
	var req UpdateCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.AcceptedMaterials != nil {
		for _, m := range *req.AcceptedMaterials {
			if !models.ValidMaterial(m.MaterialType) {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown material type %q", m.MaterialType)})
				return
			}
		}
	}

	upd := store.CenterUpdate{
		Name:              req.Name,
		Description:       req.Description,
		Address:           req.Address,
		Latitude:          req.Latitude,
		Longitude:         req.Longitude,
		PhoneNumber:       req.PhoneNumber,
		Email:             req.Email,
		Website:           req.Website,
		OpeningHours:      req.OpeningHours,
		Capacity:          req.Capacity,
		AcceptedMaterials: req.AcceptedMaterials,
		StaffMembers:      req.StaffMembers,
		IsActive:          req.IsActive,
	}
	if err := h.Store.UpdateCenter(c.Request.Context(), c.Param("id"), upd); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Center updated successfully"})
}

// DeactivateCenter soft-deletes a center. Centers are never removed; an
// inactive center just stops appearing to residents.
func (h *CenterHandler) DeactivateCenter(c *gin.Context) {
	inactive := false
	upd := store.CenterUpdate{IsActive: &inactive}
	if err := h.Store.UpdateCenter(c.Request.Context(), c.Param("id"), upd); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Center deactivated"})
}

// UploadCenterImage stores a center photo in S3 and saves its URL.
func (h *CenterHandler) UploadCenterImage(c *gin.Context) {
	if h.Uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image uploads are not configured"})
		return
	}

	centerID := c.Param("id")
	if _, err := h.Store.GetCenterByID(c.Request.Context(), centerID); err != nil {
		respondError(c, err)
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

	key := fmt.Sprintf("centers/%s/%s%s", centerID, uuid.New().String(), filepath.Ext(fileHeader.Filename))
	url, err := h.Uploader.UploadFile(c.Request.Context(), file, key, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
		return
	}

	if err := h.Store.SetCenterImage(c.Request.Context(), centerID, url); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "imageURL": url})
}

// usableCoordinates filters out the unset (0,0) point and out-of-range
// values before distance math.
func usableCoordinates(lat, lon float64) bool {
	if lat == 0 && lon == 0 {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
