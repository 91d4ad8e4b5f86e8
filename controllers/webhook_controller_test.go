package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/elquelo/elquelo/config"
	"github.com/elquelo/elquelo/models"
)

func seedOrder(t *testing.T, db *gorm.DB, printfulID string) *models.Order {
	t.Helper()
	order := models.Order{
		UserID:          1,
		IdempotencyKey:  "idem-" + printfulID,
		PrintfulOrderID: printfulID,
		Status:          models.OrderStatusPaid,
		AmountCents:     2500,
	}
	require.NoError(t, db.Create(&order).Error)
	return &order
}

func printfulPayload(id int64, status string) map[string]interface{} {
	return map[string]interface{}{
		"type": "package_shipped",
		"data": map[string]interface{}{
			"order": map[string]interface{}{
				"id":     id,
				"status": status,
			},
		},
	}
}

func TestPrintfulWebhookUpdatesOrder(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)
	order := seedOrder(t, db, "4412")

	w := doJSON(t, r, http.MethodPost, "/api/v1/webhooks/printful", printfulPayload(4412, "shipped"), 0)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeData(t, w)
	assert.Equal(t, true, data["handled"])
	assert.Equal(t, models.OrderStatusShipped, data["status"])

	var got models.Order
	require.NoError(t, db.First(&got, order.ID).Error)
	assert.Equal(t, models.OrderStatusShipped, got.Status)
}

func TestPrintfulWebhookUnknownStatusAcknowledged(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)
	order := seedOrder(t, db, "4413")

	w := doJSON(t, r, http.MethodPost, "/api/v1/webhooks/printful", printfulPayload(4413, "teleported"), 0)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, false, data["handled"])

	var got models.Order
	require.NoError(t, db.First(&got, order.ID).Error)
	assert.Equal(t, models.OrderStatusPaid, got.Status)
}

func TestPrintfulWebhookUnknownOrderStillAcknowledged(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)

	w := doJSON(t, r, http.MethodPost, "/api/v1/webhooks/printful", printfulPayload(99999, "shipped"), 0)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, true, data["handled"])
}

func TestPrintfulWebhookRejectsBadSecret(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)
	cfg := config.Get()
	cfg.PrintfulWebhookSecret = "hunter2"
	config.SetForTesting(cfg)

	w := doJSON(t, r, http.MethodPost, "/api/v1/webhooks/printful", printfulPayload(1, "shipped"), 0)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/printful", nil)
	req.Header.Set("X-Printful-Secret", "hunter2")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "right secret but empty body")
}
