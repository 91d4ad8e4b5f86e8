package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elquelo/elquelo/models"
)

func TestCreateDestination(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)
	seedUser(t, db, 1)
	ev := seedEventWithMember(t, db, 1, models.RoleOwner)
	qr := models.QR{Code: "dst001", UserID: 1, EventID: &ev.ID}
	require.NoError(t, db.Create(&qr).Error)

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/events/%d/destinations", ev.ID), map[string]interface{}{
		"qr_id":      qr.ID,
		"type":       "external",
		"title":      "after party",
		"target_url": "https://maps.example.com/venue",
		"priority":   1,
	}, 1)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeData(t, w)
	dest := data["destination"].(map[string]interface{})
	assert.Equal(t, "external", dest["type"])
	assert.Equal(t, true, dest["is_active"])
	assert.Equal(t, float64(1), dest["priority"])
}

func TestCreateDestinationDisabledStaysDisabled(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)
	seedUser(t, db, 1)
	ev := seedEventWithMember(t, db, 1, models.RoleOwner)
	qr := models.QR{Code: "dst011", UserID: 1, EventID: &ev.ID}
	require.NoError(t, db.Create(&qr).Error)

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/events/%d/destinations", ev.ID), map[string]interface{}{
		"qr_id":     qr.ID,
		"type":      "album",
		"is_active": false,
		"priority":  0,
	}, 1)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeData(t, w)
	id := uint(data["destination"].(map[string]interface{})["id"].(float64))

	// The stored row must keep the explicit zero values, not column defaults.
	var got models.Destination
	require.NoError(t, db.First(&got, id).Error)
	assert.False(t, got.IsActive)
	assert.Equal(t, 0, got.Priority)
}

func TestCreateDestinationRejectsInvalidWindow(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)
	seedUser(t, db, 1)
	ev := seedEventWithMember(t, db, 1, models.RoleOwner)
	qr := models.QR{Code: "dst002", UserID: 1, EventID: &ev.ID}
	require.NoError(t, db.Create(&qr).Error)

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/events/%d/destinations", ev.ID), map[string]interface{}{
		"qr_id":    qr.ID,
		"type":     "album",
		"start_at": "2024-06-02T00:00:00Z",
		"end_at":   "2024-06-01T00:00:00Z",
	}, 1)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateDestinationRequiresTargetURLForExternal(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)
	seedUser(t, db, 1)
	ev := seedEventWithMember(t, db, 1, models.RoleOwner)
	qr := models.QR{Code: "dst003", UserID: 1, EventID: &ev.ID}
	require.NoError(t, db.Create(&qr).Error)

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/events/%d/destinations", ev.ID), map[string]interface{}{
		"qr_id": qr.ID,
		"type":  "external",
	}, 1)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateDestinationRejectsUnknownType(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)
	seedUser(t, db, 1)
	ev := seedEventWithMember(t, db, 1, models.RoleOwner)
	qr := models.QR{Code: "dst004", UserID: 1, EventID: &ev.ID}
	require.NoError(t, db.Create(&qr).Error)

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/events/%d/destinations", ev.ID), map[string]interface{}{
		"qr_id": qr.ID,
		"type":  "carrier-pigeon",
	}, 1)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateDestinationForbiddenForViewer(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)
	seedUser(t, db, 1)
	seedUser(t, db, 2)
	ev := seedEventWithMember(t, db, 1, models.RoleOwner)
	require.NoError(t, db.Create(&models.EventMember{EventID: ev.ID, UserID: 2, Role: models.RoleViewer}).Error)
	qr := models.QR{Code: "dst005", UserID: 1, EventID: &ev.ID}
	require.NoError(t, db.Create(&qr).Error)

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/events/%d/destinations", ev.ID), map[string]interface{}{
		"qr_id": qr.ID,
		"type":  "album",
	}, 2)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateDestinationForbiddenForNonMember(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)
	seedUser(t, db, 1)
	seedUser(t, db, 3)
	ev := seedEventWithMember(t, db, 1, models.RoleOwner)
	qr := models.QR{Code: "dst006", UserID: 1, EventID: &ev.ID}
	require.NoError(t, db.Create(&qr).Error)

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/events/%d/destinations", ev.ID), map[string]interface{}{
		"qr_id": qr.ID,
		"type":  "album",
	}, 3)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPatchDestinationTogglesActive(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)
	seedUser(t, db, 1)
	ev := seedEventWithMember(t, db, 1, models.RoleEditor)
	qr := models.QR{Code: "dst007", UserID: 1, EventID: &ev.ID}
	require.NoError(t, db.Create(&qr).Error)
	dest := models.Destination{EventID: ev.ID, QRID: qr.ID, Type: models.DestinationAlbum, IsActive: true, Priority: 5}
	require.NoError(t, db.Create(&dest).Error)

	w := doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/v1/destinations/%d", dest.ID), map[string]interface{}{
		"is_active": false,
		"priority":  3,
	}, 1)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got models.Destination
	require.NoError(t, db.First(&got, dest.ID).Error)
	assert.False(t, got.IsActive)
	assert.Equal(t, 3, got.Priority)
}

func TestPatchDestinationRejectsInvertedWindow(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)
	seedUser(t, db, 1)
	ev := seedEventWithMember(t, db, 1, models.RoleEditor)
	qr := models.QR{Code: "dst008", UserID: 1, EventID: &ev.ID}
	require.NoError(t, db.Create(&qr).Error)
	end := mustTime(t, "2024-06-02T00:00:00Z")
	dest := models.Destination{EventID: ev.ID, QRID: qr.ID, Type: models.DestinationAlbum, IsActive: true, EndAt: &end}
	require.NoError(t, db.Create(&dest).Error)

	// Moving start past the existing end must be rejected.
	w := doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/v1/destinations/%d", dest.ID), map[string]interface{}{
		"start_at": "2024-06-03T00:00:00Z",
	}, 1)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteDestination(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)
	seedUser(t, db, 1)
	ev := seedEventWithMember(t, db, 1, models.RoleOwner)
	qr := models.QR{Code: "dst009", UserID: 1, EventID: &ev.ID}
	require.NoError(t, db.Create(&qr).Error)
	dest := models.Destination{EventID: ev.ID, QRID: qr.ID, Type: models.DestinationAlbum, IsActive: true}
	require.NoError(t, db.Create(&dest).Error)

	w := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/destinations/%d", dest.ID), nil, 1)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.Destination{}).Where("id = ?", dest.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestListDestinationsOrderedBySelectionPrecedence(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)
	seedUser(t, db, 1)
	ev := seedEventWithMember(t, db, 1, models.RoleViewer)
	qr := models.QR{Code: "dst010", UserID: 1, EventID: &ev.ID}
	require.NoError(t, db.Create(&qr).Error)
	require.NoError(t, db.Create(&models.Destination{EventID: ev.ID, QRID: qr.ID, Type: models.DestinationAlbum, Priority: 10, IsActive: true}).Error)
	require.NoError(t, db.Create(&models.Destination{EventID: ev.ID, QRID: qr.ID, Type: models.DestinationTimeline, Priority: 1, IsActive: true}).Error)

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/events/%d/destinations", ev.ID), nil, 1)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	destinations := data["destinations"].([]interface{})
	require.Len(t, destinations, 2)
	first := destinations[0].(map[string]interface{})
	assert.Equal(t, float64(1), first["priority"])
}
