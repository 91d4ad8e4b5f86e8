package controllers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/elquelo/elquelo/config"
	"github.com/elquelo/elquelo/models"
	"github.com/elquelo/elquelo/utils"
)

// WebhookController maps external platform callbacks onto order rows. Pure
// status pass-through; payment and fulfillment logic stay with the platforms.
type WebhookController struct {
	db *gorm.DB
}

// NewWebhookController creates a new WebhookController instance.
func NewWebhookController(db *gorm.DB) *WebhookController {
	return &WebhookController{db: db}
}

// Printful handles fulfillment status webhooks. Unknown statuses and unknown
// orders are acknowledged without changes so Printful does not retry forever.
func (w *WebhookController) Printful(ctx *gin.Context) {
	secret := config.Get().PrintfulWebhookSecret
	if secret != "" {
		provided := ctx.GetHeader("X-Printful-Secret")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			utils.Error(ctx, http.StatusUnauthorized, 40130, "invalid webhook secret")
			return
		}
	}

	var payload struct {
		Type string `json:"type"`
		Data struct {
			Order struct {
				ID     int64  `json:"id"`
				Status string `json:"status"`
			} `json:"order"`
		} `json:"data"`
	}
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40080, "invalid webhook payload")
		return
	}

	status := strings.ToLower(strings.TrimSpace(payload.Data.Order.Status))
	mapped, known := models.MapPrintfulStatus(status)
	if !known {
		utils.Sugar.Infow("printful webhook: unknown status ignored",
			"printful_order_id", payload.Data.Order.ID, "status", status)
		utils.Success(ctx, gin.H{"handled": false})
		return
	}

	res := w.db.Model(&models.Order{}).
		Where("printful_order_id = ?", payload.Data.Order.ID).
		Update("status", mapped)
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50090, "failed to update order")
		return
	}
	if res.RowsAffected == 0 {
		utils.Sugar.Warnw("printful webhook: order not found",
			"printful_order_id", payload.Data.Order.ID)
	}

	utils.Success(ctx, gin.H{"handled": true, "status": mapped})
}
