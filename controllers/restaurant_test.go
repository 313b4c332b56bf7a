package controllers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant/models"
)

func newSettingsRouter(t *testing.T, rest *fakeRestaurant, audit *fakeAuditLog) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	sc := NewSettingsController(rest, audit, nil)

	r := gin.New()
	r.GET("/restaurant", sc.GetRestaurant)
	r.PUT("/restaurant", sc.UpdateRestaurant)
	r.GET("/audit-logs", sc.AuditLogs)
	return r
}

func getRestaurant(t *testing.T, r *gin.Engine) models.Restaurant {
	t.Helper()
	w := send(r, http.MethodGet, "/restaurant", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var rest models.Restaurant
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rest))
	return rest
}

func TestRestaurantDefaultsBeforeFirstSave(t *testing.T) {
	r := newSettingsRouter(t, &fakeRestaurant{}, &fakeAuditLog{})

	rest := getRestaurant(t, r)
	assert.Equal(t, "Restaurant", rest.Name)
	assert.Equal(t, "USD", rest.Currency)
}

func TestRestaurantUpsertKeepsSingleDocument(t *testing.T) {
	repo := &fakeRestaurant{}
	r := newSettingsRouter(t, repo, &fakeAuditLog{})

	w := send(r, http.MethodPut, "/restaurant", gin.H{"name": "  Himalayan Kitchen ", "currency": "npr"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var first models.Restaurant
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	assert.Equal(t, "Himalayan Kitchen", first.Name)
	assert.Equal(t, "NPR", first.Currency)

	w = send(r, http.MethodPut, "/restaurant", gin.H{"name": "Himalayan Kitchen", "phone": "555-0100"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var second models.Restaurant
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "USD", second.Currency)
	assert.Equal(t, "555-0100", second.Phone)

	assert.Equal(t, second, getRestaurant(t, r))
}

func TestRestaurantUpdateValidation(t *testing.T) {
	repo := &fakeRestaurant{}
	r := newSettingsRouter(t, repo, &fakeAuditLog{})

	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodPut, "/restaurant", gin.H{"name": " "}).Code)
	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodPut, "/restaurant", gin.H{"name": "Cafe", "email": "not-an-email"}).Code)
	assert.Nil(t, repo.saved)
}

func TestAuditLogsLimit(t *testing.T) {
	audit := &fakeAuditLog{entries: []models.AuditLog{
		{Action: "POST /api/order", Status: 201},
		{Action: "DELETE /api/order/:id", Status: 200},
		{Action: "PUT /api/restaurant", Status: 200},
	}}
	r := newSettingsRouter(t, &fakeRestaurant{}, audit)

	var entries []models.AuditLog
	w := send(r, http.MethodGet, "/audit-logs?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	assert.Len(t, entries, 2)

	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodGet, "/audit-logs?limit=0", nil).Code)
}
