package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/elquelo/elquelo/models"
	"github.com/elquelo/elquelo/utils"
)

// StatsController aggregates scan analytics.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns aggregate counts for the authenticated user's QRs and
// events plus today's scans.
func (s *StatsController) GetStats(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var qrCount int64
	var eventCount int64
	var totalScans int64
	var todayScans int64

	if err := s.db.Model(&models.QR{}).Where("user_id = ?", userID).Count(&qrCount).Error; err != nil {
		qrCount = 0
	}
	if err := s.db.Model(&models.Event{}).
		Joins("JOIN event_members ON event_members.event_id = events.id").
		Where("event_members.user_id = ?", userID).
		Count(&eventCount).Error; err != nil {
		eventCount = 0
	}
	if err := s.db.Model(&models.QR{}).Where("user_id = ?", userID).
		Select("COALESCE(SUM(scan_count),0)").
		Scan(&totalScans).Error; err != nil {
		totalScans = 0
	}

	// String date equality avoids timezone/type mismatches with the DATE column
	today := time.Now().In(time.Local).Format("2006-01-02")
	if err := s.db.Model(&models.Scan{}).
		Joins("JOIN qrs ON qrs.id = scans.qr_id").
		Where("qrs.user_id = ? AND scans.date = ?", userID, today).
		Select("COALESCE(SUM(scans.count),0)").
		Scan(&todayScans).Error; err != nil {
		todayScans = 0
	}

	utils.Success(ctx, gin.H{
		"qr_count":    qrCount,
		"event_count": eventCount,
		"total_scans": totalScans,
		"today_scans": todayScans,
	})
}

// GetQRStats returns the scan history for one QR, owner gated.
func (s *StatsController) GetQRStats(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	code := ctx.Param("code")
	var qr models.QR
	if err := s.db.Where("code = ?", code).First(&qr).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40404, "qr not found")
		return
	}
	if qr.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40304, "not your qr")
		return
	}

	days := 30
	since := time.Now().In(time.Local).AddDate(0, 0, -days).Format("2006-01-02")

	var daily []models.Scan
	if err := s.db.Where("qr_id = ? AND date >= ?", qr.ID, since).
		Order("date ASC").
		Find(&daily).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to load scan history")
		return
	}

	utils.Success(ctx, gin.H{
		"qr_id":       qr.ID,
		"code":        qr.Code,
		"total_scans": qr.ScanCount,
		"daily":       daily,
	})
}
