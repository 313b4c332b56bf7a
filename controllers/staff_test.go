package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"restaurant/middleware"
	"restaurant/models"
)

func TestAttendanceFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	active := models.Staff{ID: primitive.NewObjectID(), Name: "Ana", Email: "ana@example.com", Role: models.RoleChef, IsActive: true}
	inactive := models.Staff{ID: primitive.NewObjectID(), Name: "Bo", Email: "bo@example.com", Role: models.RoleWaiter}
	attendance := &fakeAttendance{}

	sc := NewStaffController(newFakeStaff(active, inactive), attendance, nil, time.UTC)
	clock := time.Date(2024, 6, 3, 10, 30, 0, 0, time.UTC)
	sc.now = func() time.Time { return clock }

	r := gin.New()
	r.POST("/check-in", sc.CheckIn)
	r.POST("/check-out", sc.CheckOut)
	r.GET("/attendance", sc.ListAttendance)

	send := func(path string, staff primitive.ObjectID) *httptest.ResponseRecorder {
		raw, _ := json.Marshal(gin.H{"staffId": staff.Hex()})
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusNotFound, send("/check-out", active.ID).Code)

	w := send("/check-in", active.ID)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var in models.Attendance
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &in))
	assert.Equal(t, "2024-06-03", in.Date)
	assert.Equal(t, models.AttendanceLate, in.Status)

	assert.Equal(t, http.StatusConflict, send("/check-in", active.ID).Code)
	assert.Equal(t, http.StatusConflict, send("/check-in", inactive.ID).Code)
	assert.Equal(t, http.StatusNotFound, send("/check-in", primitive.NewObjectID()).Code)

	clock = clock.Add(2 * time.Hour)
	w = send("/check-out", active.ID)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out models.Attendance
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.InDelta(t, 2.0, out.HoursWorked, 0.001)
	assert.Equal(t, models.AttendanceHalfDay, out.Status)

	assert.Equal(t, http.StatusConflict, send("/check-out", active.ID).Code)

	req := httptest.NewRequest(http.MethodGet, "/attendance?date=2024-06-03", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Attendance
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	req = httptest.NewRequest(http.MethodGet, "/attendance?date=June", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAttendanceOnlyForOwnAccount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	waiter := models.Staff{ID: primitive.NewObjectID(), Name: "Cy", Email: "cy@example.com", Role: models.RoleWaiter, IsActive: true}
	other := models.Staff{ID: primitive.NewObjectID(), Name: "Di", Email: "di@example.com", Role: models.RoleChef, IsActive: true}

	sc := NewStaffController(newFakeStaff(waiter, other), &fakeAttendance{}, nil, time.UTC)
	sc.now = func() time.Time { return time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC) }

	send := func(path string, caller models.Staff, staff primitive.ObjectID) *httptest.ResponseRecorder {
		r := gin.New()
		r.Use(func(c *gin.Context) {
			c.Set(middleware.AccountIDKey, caller.ID.Hex())
			c.Set(middleware.RoleKey, caller.Role)
			c.Set(middleware.KindKey, models.KindStaff)
		})
		r.POST("/check-in", sc.CheckIn)
		r.POST("/check-out", sc.CheckOut)

		raw, _ := json.Marshal(gin.H{"staffId": staff.Hex()})
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusForbidden, send("/check-in", waiter, other.ID).Code)
	assert.Equal(t, http.StatusForbidden, send("/check-out", waiter, other.ID).Code)
	assert.Equal(t, http.StatusCreated, send("/check-in", waiter, waiter.ID).Code)

	manager := models.Staff{ID: primitive.NewObjectID(), Role: models.RoleManager}
	assert.Equal(t, http.StatusCreated, send("/check-in", manager, other.ID).Code)
}
