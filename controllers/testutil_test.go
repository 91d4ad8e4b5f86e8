package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/elquelo/elquelo/config"
	"github.com/elquelo/elquelo/middleware"
	"github.com/elquelo/elquelo/models"
	"github.com/elquelo/elquelo/resolver"
	"github.com/elquelo/elquelo/utils"
)

// testAuth injects the user id from the X-Test-UserID header, standing in for
// the JWT middleware.
func testAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uint(1)
		if v := c.GetHeader("X-Test-UserID"); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				id = uint(parsed)
			}
		}
		c.Set(middleware.ContextUserIDKey, id)
		c.Next()
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:ctl_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.EventMember{},
		&models.QR{},
		&models.Destination{},
		&models.Scan{},
		&models.Order{},
	))
	return db
}

func newTestRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	config.SetForTesting(config.AppConfig{
		AppPort:     "8080",
		JWTSecret:   "test-secret",
		QRBaseURL:   "https://elquelo.test",
		FallbackURL: "https://elquelo.test/fallback",
		GinMode:     "test",
		RedisHost:   "127.0.0.1",
		RedisPort:   6399, // nothing listens here; cache paths fall through
	})
	gin.SetMode(gin.TestMode)
	utils.Sugar = zap.NewNop().Sugar()

	eventController := NewEventController(db)
	qrController := NewQRController(db)
	destinationController := NewDestinationController(db)
	statsController := NewStatsController(db)
	sweepController := NewSweepController(resolver.NewSweeper(db, utils.Sugar, nil))
	webhookController := NewWebhookController(db)

	r := gin.New()
	r.GET("/q/:code", qrController.Redirect)
	r.POST("/api/v1/sweep", sweepController.Run)
	r.POST("/api/v1/webhooks/printful", webhookController.Printful)

	api := r.Group("/api/v1")
	api.Use(testAuth())
	api.POST("/events", eventController.CreateEvent)
	api.GET("/events", eventController.ListEvents)
	api.POST("/events/:id/publish", eventController.PublishEvent)
	api.GET("/events/:id/destinations", destinationController.ListDestinations)
	api.POST("/events/:id/destinations", destinationController.CreateDestination)
	api.PUT("/destinations/:id", destinationController.UpdateDestination)
	api.PATCH("/destinations/:id", destinationController.PatchDestination)
	api.DELETE("/destinations/:id", destinationController.DeleteDestination)
	api.POST("/qrs", qrController.CreateQR)
	api.GET("/qrs/:code/stats", statsController.GetQRStats)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}, userID uint) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set("X-Test-UserID", strconv.Itoa(int(userID)))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope struct {
		Code    int                    `json:"code"`
		Message string                 `json:"message"`
		Data    map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Data
}

func seedUser(t *testing.T, db *gorm.DB, id uint) *models.User {
	t.Helper()
	user := models.User{ID: id, Username: fmt.Sprintf("user%d", id), Email: fmt.Sprintf("user%d@test.dev", id)}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedEventWithMember(t *testing.T, db *gorm.DB, userID uint, role string) *models.Event {
	t.Helper()
	ev := models.Event{
		UserID:         userID,
		Name:           "despedida",
		Slug:           fmt.Sprintf("despedida-%s-%d", t.Name(), userID),
		Status:         models.EventStatusLive,
		EventDate:      mustTime(t, "2024-06-15T00:00:00Z"),
		ContentTTLDays: 30,
	}
	ev.RecomputeExpiry()
	require.NoError(t, db.Create(&ev).Error)
	require.NoError(t, db.Create(&models.EventMember{EventID: ev.ID, UserID: userID, Role: role}).Error)
	return &ev
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return parsed
}
