package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/elquelo/elquelo/config"
	"github.com/elquelo/elquelo/models"
	"github.com/elquelo/elquelo/utils"
)

// QRController manages QR issuance and the scan redirect path. Redirects only
// read the cached active_destination_id written by the sweeper; selection is
// never run inline.
type QRController struct {
	db *gorm.DB
}

// NewQRController creates a new QRController instance.
func NewQRController(db *gorm.DB) *QRController {
	return &QRController{db: db}
}

// cachedRedirect is the Redis payload for one QR's resolved redirect.
type cachedRedirect struct {
	QRID          uint   `json:"qr_id"`
	DestinationID *uint  `json:"destination_id"`
	URL           string `json:"url"`
}

// CreateQR issues a new QR code for the authenticated user, optionally bound
// to an event they can edit.
func (q *QRController) CreateQR(ctx *gin.Context) {
	var req struct {
		Title   string `json:"title"`
		EventID *uint  `json:"event_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	if req.EventID != nil {
		var member models.EventMember
		if err := q.db.Where("event_id = ? AND user_id = ?", *req.EventID, userID).
			First(&member).Error; err != nil || !member.CanEdit() {
			utils.Error(ctx, http.StatusForbidden, 40303, "no editor access to this event")
			return
		}
	}

	qr := models.QR{
		Code:    utils.GenerateQRCodeToken(10),
		UserID:  userID,
		EventID: req.EventID,
		Title:   utils.Sanitize(strings.TrimSpace(req.Title)),
	}

	// Retry on the rare code collision
	for attempt := 0; attempt < 3; attempt++ {
		if err := q.db.Create(&qr).Error; err == nil {
			break
		} else if attempt == 2 {
			utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to create qr")
			return
		}
		qr.Code = utils.GenerateQRCodeToken(10)
	}

	utils.Success(ctx, gin.H{
		"qr":  qr,
		"url": config.Get().QRBaseURL + "/q/" + qr.Code,
	})
}

// ListQRs returns the authenticated user's QRs, newest first.
func (q *QRController) ListQRs(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var total int64
	query := q.db.Model(&models.QR{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to count qrs")
		return
	}

	var qrs []models.QR
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&qrs).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to list qrs")
		return
	}

	utils.Success(ctx, gin.H{
		"qrs":       qrs,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetQR returns one QR with its destinations, owner gated.
func (q *QRController) GetQR(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	code := ctx.Param("code")
	var qr models.QR
	if err := q.db.Preload("Destinations").Where("code = ?", code).First(&qr).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40404, "qr not found")
		return
	}
	if qr.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40304, "not your qr")
		return
	}

	utils.Success(ctx, gin.H{"qr": qr})
}

// Redirect handles a public scan: resolve the cached pointer (Redis first,
// then DB), record the scan aggregate, and 302 to the destination or the
// fallback page. No eligible destination is not an error.
func (q *QRController) Redirect(ctx *gin.Context) {
	code := ctx.Param("code")
	fallback := config.Get().FallbackURL

	if b, ok := utils.CacheGetBytes(utils.RedirectCacheKey(code)); ok {
		var cached cachedRedirect
		if err := json.Unmarshal(b, &cached); err == nil {
			q.recordScan(cached.QRID, cached.DestinationID)
			ctx.Redirect(http.StatusFound, cached.URL)
			return
		}
	}

	var qr models.QR
	if err := q.db.Where("code = ?", code).First(&qr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.Redirect(http.StatusFound, fallback)
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to resolve qr")
		return
	}

	url := fallback
	if qr.ActiveDestinationID != nil {
		var dest models.Destination
		if err := q.db.First(&dest, *qr.ActiveDestinationID).Error; err == nil {
			url = destinationURL(&dest, code)
		}
	}

	utils.CacheSetJSON(utils.RedirectCacheKey(code), cachedRedirect{
		QRID:          qr.ID,
		DestinationID: qr.ActiveDestinationID,
		URL:           url,
	}, utils.RedirectCacheTTL)

	q.recordScan(qr.ID, qr.ActiveDestinationID)
	ctx.Redirect(http.StatusFound, url)
}

// recordScan bumps the daily scan aggregate and the QR's lifetime counter.
// Best-effort: analytics failures never break a redirect.
func (q *QRController) recordScan(qrID uint, destID *uint) {
	now := time.Now().In(time.Local)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	_ = q.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}, {Name: "qr_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("count + 1"), "updated_at": time.Now()}),
	}).Create(&models.Scan{Date: midnight, QRID: qrID, DestinationID: destID, Count: 1}).Error

	_ = q.db.Model(&models.QR{}).Where("id = ?", qrID).
		UpdateColumn("scan_count", gorm.Expr("scan_count + 1")).Error
}

// destinationURL resolves a destination row to a redirect target. External
// destinations use their TargetURL; internal modules resolve to frontend
// paths keyed by QR code.
func destinationURL(d *models.Destination, code string) string {
	if d.Type == models.DestinationExternal && d.TargetURL != "" {
		return d.TargetURL
	}
	return config.Get().QRBaseURL + "/" + d.Type + "/" + code
}
