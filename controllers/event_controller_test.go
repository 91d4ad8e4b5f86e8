package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elquelo/elquelo/models"
)

func TestCreateEvent(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)
	seedUser(t, db, 1)

	w := doJSON(t, r, http.MethodPost, "/api/v1/events", map[string]interface{}{
		"name":             "Despedida de Laura",
		"event_date":       "2026-09-12",
		"content_ttl_days": 60,
	}, 1)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeData(t, w)
	event := data["event"].(map[string]interface{})
	assert.Equal(t, models.EventStatusDraft, event["status"])
	assert.NotEmpty(t, event["slug"])
	assert.Equal(t, "2026-11-11T00:00:00Z", event["expires_at"], "expiry derives from date plus retention")

	var member models.EventMember
	eventID := uint(event["id"].(float64))
	require.NoError(t, db.Where("event_id = ? AND user_id = ?", eventID, 1).First(&member).Error)
	assert.Equal(t, models.RoleOwner, member.Role)
}

func TestPublishEventTransitions(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)
	seedUser(t, db, 1)
	ev := seedEventWithMember(t, db, 1, models.RoleOwner)
	require.NoError(t, db.Model(ev).UpdateColumn("status", models.EventStatusDraft).Error)

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/events/%d/publish", ev.ID), nil, 1)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got models.Event
	require.NoError(t, db.First(&got, ev.ID).Error)
	assert.Equal(t, models.EventStatusLive, got.Status)

	// Publishing a live event is a no-op success.
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/events/%d/publish", ev.ID), nil, 1)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPublishArchivedEventRejected(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)
	seedUser(t, db, 1)
	ev := seedEventWithMember(t, db, 1, models.RoleOwner)
	require.NoError(t, db.Model(ev).UpdateColumn("status", models.EventStatusArchived).Error)

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/events/%d/publish", ev.ID), nil, 1)
	assert.Equal(t, http.StatusConflict, w.Code)

	var got models.Event
	require.NoError(t, db.First(&got, ev.ID).Error)
	assert.Equal(t, models.EventStatusArchived, got.Status, "archival is terminal")
}

func TestPublishEventOwnerOnly(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)
	seedUser(t, db, 1)
	seedUser(t, db, 2)
	ev := seedEventWithMember(t, db, 1, models.RoleOwner)
	require.NoError(t, db.Create(&models.EventMember{EventID: ev.ID, UserID: 2, Role: models.RoleEditor}).Error)

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/events/%d/publish", ev.ID), nil, 2)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListEventsScopedToMembership(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)
	seedUser(t, db, 1)
	seedUser(t, db, 2)
	seedEventWithMember(t, db, 1, models.RoleOwner)

	w := doJSON(t, r, http.MethodGet, "/api/v1/events", nil, 1)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, float64(1), data["total"])

	w = doJSON(t, r, http.MethodGet, "/api/v1/events", nil, 2)
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeData(t, w)
	assert.Equal(t, float64(0), data["total"])
}
