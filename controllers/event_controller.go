package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/elquelo/elquelo/config"
	"github.com/elquelo/elquelo/models"
	"github.com/elquelo/elquelo/utils"
)

// EventController manages events and their memberships. The listing endpoint
// also backs the companion mobile app.
type EventController struct {
	db *gorm.DB
}

// NewEventController creates a new EventController instance.
func NewEventController(db *gorm.DB) *EventController {
	return &EventController{db: db}
}

// CreateEvent creates an event in draft status and grants the creator an
// owner membership.
func (e *EventController) CreateEvent(ctx *gin.Context) {
	var req struct {
		Name           string `json:"name" binding:"required,min=1,max=255"`
		Slug           string `json:"slug"`
		EventDate      string `json:"event_date" binding:"required"`
		ContentTTLDays int    `json:"content_ttl_days"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	eventDate, err := time.Parse(time.RFC3339, req.EventDate)
	if err != nil {
		// Accept plain dates as well
		eventDate, err = time.Parse("2006-01-02", req.EventDate)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40021, "invalid event_date")
			return
		}
	}

	ttl := req.ContentTTLDays
	if ttl <= 0 {
		ttl = config.Get().DefaultContentTTLDays
	}

	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = slugify(req.Name) + "-" + utils.GenerateQRCodeToken(6)
	}

	event := models.Event{
		UserID:         userID,
		Name:           utils.Sanitize(strings.TrimSpace(req.Name)),
		Slug:           slug,
		Status:         models.EventStatusDraft,
		EventDate:      eventDate,
		ContentTTLDays: ttl,
	}
	event.RecomputeExpiry()

	err = e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&event).Error; err != nil {
			return err
		}
		member := models.EventMember{
			EventID: event.ID,
			UserID:  userID,
			Role:    models.RoleOwner,
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create event")
		return
	}

	utils.Success(ctx, gin.H{"event": event})
}

// ListEvents returns the events the authenticated user is a member of,
// newest first. Used by both the web dashboard and the mobile app.
func (e *EventController) ListEvents(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	status := strings.TrimSpace(ctx.Query("status"))

	query := e.db.Model(&models.Event{}).
		Joins("JOIN event_members ON event_members.event_id = events.id").
		Where("event_members.user_id = ?", userID)
	if status != "" {
		query = query.Where("events.status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to count events")
		return
	}

	var events []models.Event
	if err := query.Order("events.created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&events).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list events")
		return
	}

	utils.Success(ctx, gin.H{
		"events":    events,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetEvent returns a single event with its QRs, membership gated.
func (e *EventController) GetEvent(ctx *gin.Context) {
	event, _, ok := e.loadEventForMember(ctx, models.RoleViewer)
	if !ok {
		return
	}

	if err := e.db.Preload("QRs").Preload("Members.User").First(event, event.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load event")
		return
	}

	utils.Success(ctx, gin.H{"event": event})
}

// UpdateEvent updates name, date and retention; the derived expiry is always
// recomputed, never stored stale.
func (e *EventController) UpdateEvent(ctx *gin.Context) {
	event, _, ok := e.loadEventForMember(ctx, models.RoleEditor)
	if !ok {
		return
	}

	var req struct {
		Name           *string `json:"name"`
		EventDate      *string `json:"event_date"`
		ContentTTLDays *int    `json:"content_ttl_days"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid request payload")
		return
	}

	if req.Name != nil {
		name := utils.Sanitize(strings.TrimSpace(*req.Name))
		if name == "" {
			utils.Error(ctx, http.StatusBadRequest, 40023, "name cannot be empty")
			return
		}
		event.Name = name
	}
	if req.EventDate != nil {
		d, err := time.Parse(time.RFC3339, *req.EventDate)
		if err != nil {
			d, err = time.Parse("2006-01-02", *req.EventDate)
			if err != nil {
				utils.Error(ctx, http.StatusBadRequest, 40021, "invalid event_date")
				return
			}
		}
		event.EventDate = d
	}
	if req.ContentTTLDays != nil {
		if *req.ContentTTLDays <= 0 {
			utils.Error(ctx, http.StatusBadRequest, 40024, "content_ttl_days must be positive")
			return
		}
		event.ContentTTLDays = *req.ContentTTLDays
	}
	event.RecomputeExpiry()

	if err := e.db.Save(event).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to update event")
		return
	}

	utils.Success(ctx, gin.H{"event": event})
}

// PublishEvent moves a draft event to live. Archived events cannot be
// republished.
func (e *EventController) PublishEvent(ctx *gin.Context) {
	event, _, ok := e.loadEventForMember(ctx, models.RoleOwner)
	if !ok {
		return
	}

	switch event.Status {
	case models.EventStatusLive:
		utils.Success(ctx, gin.H{"event": event})
		return
	case models.EventStatusArchived:
		utils.Error(ctx, http.StatusConflict, 40920, "archived events cannot be republished")
		return
	}

	event.Status = models.EventStatusLive
	if err := e.db.Save(event).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to publish event")
		return
	}

	utils.Success(ctx, gin.H{"event": event})
}

// DeleteEvent removes a draft event. Live and archived events are kept for
// printed QRs and analytics.
func (e *EventController) DeleteEvent(ctx *gin.Context) {
	event, _, ok := e.loadEventForMember(ctx, models.RoleOwner)
	if !ok {
		return
	}

	if event.Status != models.EventStatusDraft {
		utils.Error(ctx, http.StatusConflict, 40921, "only draft events can be deleted")
		return
	}

	if err := e.db.Delete(event).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to delete event")
		return
	}

	utils.Success(ctx, gin.H{"message": "event deleted"})
}

// AddMember grants a user a role on the event. Owner only.
func (e *EventController) AddMember(ctx *gin.Context) {
	event, _, ok := e.loadEventForMember(ctx, models.RoleOwner)
	if !ok {
		return
	}

	var req struct {
		UserID uint   `json:"user_id" binding:"required"`
		Role   string `json:"role" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40025, "invalid request payload")
		return
	}
	if req.Role != models.RoleOwner && req.Role != models.RoleEditor && req.Role != models.RoleViewer {
		utils.Error(ctx, http.StatusBadRequest, 40026, "invalid role")
		return
	}

	var user models.User
	if err := e.db.First(&user, req.UserID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40402, "user not found")
		return
	}

	member := models.EventMember{EventID: event.ID, UserID: req.UserID, Role: req.Role}
	if err := e.db.Where("event_id = ? AND user_id = ?", event.ID, req.UserID).
		FirstOrCreate(&member).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to add member")
		return
	}
	if member.Role != req.Role {
		member.Role = req.Role
		if err := e.db.Save(&member).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to update member role")
			return
		}
	}

	utils.Success(ctx, gin.H{"member": member})
}

// loadEventForMember resolves :id and checks the caller holds at least the
// given role on the event. Responds and returns ok=false on failure.
func (e *EventController) loadEventForMember(ctx *gin.Context, minRole string) (*models.Event, *models.EventMember, bool) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return nil, nil, false
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		utils.Error(ctx, http.StatusBadRequest, 40027, "invalid event id")
		return nil, nil, false
	}

	var event models.Event
	if err := e.db.First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40403, "event not found")
		} else {
			utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to load event")
		}
		return nil, nil, false
	}

	var member models.EventMember
	if err := e.db.Where("event_id = ? AND user_id = ?", event.ID, userID).
		First(&member).Error; err != nil {
		utils.Error(ctx, http.StatusForbidden, 40301, "not a member of this event")
		return nil, nil, false
	}

	if !roleAtLeast(member.Role, minRole) {
		utils.Error(ctx, http.StatusForbidden, 40302, "insufficient role")
		return nil, nil, false
	}

	return &event, &member, true
}

// roleAtLeast implements the owner > editor > viewer ordering.
func roleAtLeast(have, want string) bool {
	rank := map[string]int{
		models.RoleViewer: 1,
		models.RoleEditor: 2,
		models.RoleOwner:  3,
	}
	return rank[have] >= rank[want]
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
