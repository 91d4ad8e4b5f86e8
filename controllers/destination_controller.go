package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/elquelo/elquelo/models"
	"github.com/elquelo/elquelo/utils"
)

// DestinationController manages the time-windowed, prioritized destinations
// attached to a QR. Writes are owner/editor gated and must leave priority,
// window and active flag in a state the eligibility check can interpret; the
// sweeper trusts persisted rows.
type DestinationController struct {
	db *gorm.DB
}

// NewDestinationController creates a new DestinationController instance.
func NewDestinationController(db *gorm.DB) *DestinationController {
	return &DestinationController{db: db}
}

type destinationRequest struct {
	QRID      uint    `json:"qr_id" binding:"required"`
	Type      string  `json:"type" binding:"required"`
	Title     string  `json:"title"`
	TargetURL string  `json:"target_url"`
	IsActive  *bool   `json:"is_active"`
	StartAt   *string `json:"start_at"`
	EndAt     *string `json:"end_at"`
	Priority  *int    `json:"priority"`
}

// CreateDestination attaches a destination to a QR of the event.
func (d *DestinationController) CreateDestination(ctx *gin.Context) {
	eventID, _, ok := d.requireEditor(ctx, ctx.Param("id"))
	if !ok {
		return
	}

	var req destinationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}

	if !models.ValidType(req.Type) {
		utils.Error(ctx, http.StatusBadRequest, 40061, "invalid destination type")
		return
	}
	if req.Type == models.DestinationExternal && strings.TrimSpace(req.TargetURL) == "" {
		utils.Error(ctx, http.StatusBadRequest, 40062, "target_url required for external destinations")
		return
	}

	var qr models.QR
	if err := d.db.First(&qr, req.QRID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40404, "qr not found")
		return
	}
	if qr.EventID == nil || *qr.EventID != eventID {
		utils.Error(ctx, http.StatusBadRequest, 40063, "qr does not belong to this event")
		return
	}

	startAt, endAt, err := parseWindow(req.StartAt, req.EndAt)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40064, err.Error())
		return
	}

	dest := models.Destination{
		EventID:   eventID,
		QRID:      req.QRID,
		Type:      req.Type,
		Title:     utils.Sanitize(strings.TrimSpace(req.Title)),
		TargetURL: strings.TrimSpace(req.TargetURL),
		IsActive:  true,
		StartAt:   startAt,
		EndAt:     endAt,
	}
	if req.IsActive != nil {
		dest.IsActive = *req.IsActive
	}
	if req.Priority != nil {
		dest.Priority = *req.Priority
	} else {
		dest.Priority = 100
	}

	if !dest.WindowValid() {
		utils.Error(ctx, http.StatusBadRequest, 40065, "start_at must precede end_at")
		return
	}

	if err := d.db.Create(&dest).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to create destination")
		return
	}

	// Drop the redirect cache so the next sweep's result is picked up promptly.
	utils.CacheDelete(utils.RedirectCacheKey(qr.Code))

	utils.Success(ctx, gin.H{"destination": dest})
}

// ListDestinations returns the event's destinations, selection order first
// (priority ascending, then newest).
func (d *DestinationController) ListDestinations(ctx *gin.Context) {
	eventID, _, ok := d.requireRole(ctx, ctx.Param("id"), models.RoleViewer)
	if !ok {
		return
	}

	var destinations []models.Destination
	if err := d.db.Where("event_id = ?", eventID).
		Order("priority ASC, created_at DESC").
		Find(&destinations).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to list destinations")
		return
	}

	utils.Success(ctx, gin.H{"destinations": destinations})
}

// UpdateDestination replaces mutable fields of a destination.
func (d *DestinationController) UpdateDestination(ctx *gin.Context) {
	dest, ok := d.loadForEditor(ctx)
	if !ok {
		return
	}

	var req destinationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}

	if !models.ValidType(req.Type) {
		utils.Error(ctx, http.StatusBadRequest, 40061, "invalid destination type")
		return
	}
	if req.Type == models.DestinationExternal && strings.TrimSpace(req.TargetURL) == "" {
		utils.Error(ctx, http.StatusBadRequest, 40062, "target_url required for external destinations")
		return
	}

	startAt, endAt, err := parseWindow(req.StartAt, req.EndAt)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40064, err.Error())
		return
	}

	dest.Type = req.Type
	dest.Title = utils.Sanitize(strings.TrimSpace(req.Title))
	dest.TargetURL = strings.TrimSpace(req.TargetURL)
	dest.StartAt = startAt
	dest.EndAt = endAt
	if req.IsActive != nil {
		dest.IsActive = *req.IsActive
	}
	if req.Priority != nil {
		dest.Priority = *req.Priority
	}

	if !dest.WindowValid() {
		utils.Error(ctx, http.StatusBadRequest, 40065, "start_at must precede end_at")
		return
	}

	if err := d.db.Save(dest).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to update destination")
		return
	}

	d.invalidateQRCache(dest.QRID)
	utils.Success(ctx, gin.H{"destination": dest})
}

// PatchDestination updates only the provided fields. The common path for
// toggling is_active or adjusting priority from the dashboard.
func (d *DestinationController) PatchDestination(ctx *gin.Context) {
	dest, ok := d.loadForEditor(ctx)
	if !ok {
		return
	}

	var req struct {
		Title     *string `json:"title"`
		TargetURL *string `json:"target_url"`
		IsActive  *bool   `json:"is_active"`
		StartAt   *string `json:"start_at"`
		EndAt     *string `json:"end_at"`
		Priority  *int    `json:"priority"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}

	if req.Title != nil {
		dest.Title = utils.Sanitize(strings.TrimSpace(*req.Title))
	}
	if req.TargetURL != nil {
		dest.TargetURL = strings.TrimSpace(*req.TargetURL)
	}
	if req.IsActive != nil {
		dest.IsActive = *req.IsActive
	}
	if req.Priority != nil {
		dest.Priority = *req.Priority
	}
	if req.StartAt != nil {
		t, err := parseTimePtr(*req.StartAt)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40064, "invalid start_at")
			return
		}
		dest.StartAt = t
	}
	if req.EndAt != nil {
		t, err := parseTimePtr(*req.EndAt)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40064, "invalid end_at")
			return
		}
		dest.EndAt = t
	}

	if !dest.WindowValid() {
		utils.Error(ctx, http.StatusBadRequest, 40065, "start_at must precede end_at")
		return
	}

	if err := d.db.Save(dest).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to update destination")
		return
	}

	d.invalidateQRCache(dest.QRID)
	utils.Success(ctx, gin.H{"destination": dest})
}

// DeleteDestination removes a destination. The QR's cached pointer is left to
// the next sweep; the redirect cache entry is dropped immediately.
func (d *DestinationController) DeleteDestination(ctx *gin.Context) {
	dest, ok := d.loadForEditor(ctx)
	if !ok {
		return
	}

	if err := d.db.Delete(dest).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to delete destination")
		return
	}

	d.invalidateQRCache(dest.QRID)
	utils.Success(ctx, gin.H{"message": "destination deleted"})
}

// loadForEditor resolves :id to a destination the caller may edit.
func (d *DestinationController) loadForEditor(ctx *gin.Context) (*models.Destination, bool) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		utils.Error(ctx, http.StatusBadRequest, 40066, "invalid destination id")
		return nil, false
	}

	var dest models.Destination
	if err := d.db.First(&dest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40405, "destination not found")
		} else {
			utils.Error(ctx, http.StatusInternalServerError, 50064, "failed to load destination")
		}
		return nil, false
	}

	if _, _, ok := d.requireEditor(ctx, strconv.Itoa(int(dest.EventID))); !ok {
		return nil, false
	}
	return &dest, true
}

func (d *DestinationController) requireEditor(ctx *gin.Context, eventIDStr string) (uint, *models.EventMember, bool) {
	return d.requireRole(ctx, eventIDStr, models.RoleEditor)
}

// requireRole checks the caller holds at least the given role on the event.
func (d *DestinationController) requireRole(ctx *gin.Context, eventIDStr, minRole string) (uint, *models.EventMember, bool) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return 0, nil, false
	}

	id, err := strconv.Atoi(eventIDStr)
	if err != nil || id <= 0 {
		utils.Error(ctx, http.StatusBadRequest, 40027, "invalid event id")
		return 0, nil, false
	}

	var member models.EventMember
	if err := d.db.Where("event_id = ? AND user_id = ?", id, userID).First(&member).Error; err != nil {
		utils.Error(ctx, http.StatusForbidden, 40301, "not a member of this event")
		return 0, nil, false
	}
	if !roleAtLeast(member.Role, minRole) {
		utils.Error(ctx, http.StatusForbidden, 40302, "insufficient role")
		return 0, nil, false
	}

	return uint(id), &member, true
}

func (d *DestinationController) invalidateQRCache(qrID uint) {
	var qr models.QR
	if err := d.db.Select("code").First(&qr, qrID).Error; err == nil {
		utils.CacheDelete(utils.RedirectCacheKey(qr.Code))
	}
}

// parseWindow parses optional RFC3339 bounds.
func parseWindow(startStr, endStr *string) (*time.Time, *time.Time, error) {
	start, err := parseTimePtr(deref(startStr))
	if err != nil {
		return nil, nil, errors.New("invalid start_at")
	}
	end, err := parseTimePtr(deref(endStr))
	if err != nil {
		return nil, nil, errors.New("invalid end_at")
	}
	return start, end, nil
}

// parseTimePtr parses an RFC3339 timestamp; empty means unbounded.
func parseTimePtr(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
