package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elquelo/elquelo/config"
	"github.com/elquelo/elquelo/models"
)

func TestSweepEndpointArchivesExpiredEvents(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)
	seedUser(t, db, 1)
	ev := seedEventWithMember(t, db, 1, models.RoleOwner)
	// Push the expiry into the past; the next sweep must archive the event.
	require.NoError(t, db.Model(ev).UpdateColumn("expires_at", mustTime(t, "2020-01-01T00:00:00Z")).Error)

	w := doJSON(t, r, http.MethodPost, "/api/v1/sweep", nil, 0)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeData(t, w)
	assert.Equal(t, float64(1), data["processed_events"])
	assert.Equal(t, float64(1), data["archived_events"])

	var got models.Event
	require.NoError(t, db.First(&got, ev.ID).Error)
	assert.Equal(t, models.EventStatusArchived, got.Status)
}

func TestSweepEndpointRequiresSecretWhenConfigured(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)
	cfg := config.Get()
	cfg.SweepSecret = "cron-secret"
	config.SetForTesting(cfg)

	w := doJSON(t, r, http.MethodPost, "/api/v1/sweep", nil, 0)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSweepEndpointAcceptsConfiguredSecret(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)
	cfg := config.Get()
	cfg.SweepSecret = "cron-secret"
	config.SetForTesting(cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sweep", nil)
	req.Header.Set("X-Sweep-Secret", "cron-secret")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
