package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"restaurant/middleware"
	"restaurant/models"
	"restaurant/utils"
)

type authFixture struct {
	router   *gin.Engine
	users    *fakeUsers
	sessions *fakeSessions
	jwt      *utils.JWT
}

func newAuthFixture(t *testing.T, staff ...models.Staff) *authFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := &authFixture{users: newFakeUsers(), sessions: &fakeSessions{}, jwt: utils.NewJWT("secret", time.Hour)}

	ac := NewAuthController(f.users, newFakeStaff(staff...), f.sessions, f.jwt, time.Hour, false, zerolog.Nop())
	uc := NewUserController(f.users)

	r := gin.New()
	r.POST("/api/auth/login", ac.Login)
	r.POST("/api/auth/register", ac.Register)
	r.GET("/api/auth/me", middleware.AuthMiddleware(f.jwt), ac.Me)
	r.DELETE("/api/users/:id", middleware.AuthMiddleware(f.jwt, models.RoleAdmin), uc.Delete)
	f.router = r
	return f
}

func (f *authFixture) post(t *testing.T, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *authFixture) login(t *testing.T, email, password string) (string, account) {
	t.Helper()
	w := f.post(t, "/api/auth/login", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out struct {
		Token string  `json:"token"`
		User  account `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out.Token, out.User
}

func TestRegisterOnlyBootstrapsFirstAdmin(t *testing.T) {
	f := newAuthFixture(t)

	w := f.post(t, "/api/auth/register", gin.H{"name": "Owner", "email": "Owner@Example.com", "password": "secret1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "password")

	created, err := f.users.GetByEmail(context.Background(), "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, created.Role)
	assert.NoError(t, utils.VerifyPassword(created.Password, "secret1"))

	w = f.post(t, "/api/auth/register", gin.H{"name": "Other", "email": "other@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRegisterValidates(t *testing.T) {
	f := newAuthFixture(t)

	assert.Equal(t, http.StatusBadRequest, f.post(t, "/api/auth/register", gin.H{"name": "A", "email": "bad", "password": "secret1"}).Code)
	assert.Equal(t, http.StatusBadRequest, f.post(t, "/api/auth/register", gin.H{"name": "A", "email": "a@b.co", "password": "123"}).Code)
	assert.Equal(t, http.StatusBadRequest, f.post(t, "/api/auth/register", gin.H{"name": "A", "email": "a@b.co"}).Code)
}

func TestLoginUserAndMe(t *testing.T) {
	f := newAuthFixture(t)
	require.Equal(t, http.StatusCreated, f.post(t, "/api/auth/register", gin.H{"name": "Owner", "email": "owner@example.com", "password": "secret1"}).Code)

	token, acc := f.login(t, "OWNER@example.com", "secret1")
	assert.Equal(t, models.KindUser, acc.Kind)
	assert.Equal(t, models.RoleAdmin, acc.Role)
	require.Len(t, f.sessions.sessions, 1)
	assert.Equal(t, acc.ID, f.sessions.sessions[0].AccountID.Hex())

	stored, err := f.users.GetByEmail(context.Background(), "owner@example.com")
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLogin)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var me account
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, acc, me)
}

func TestLoginStaff(t *testing.T) {
	hash, err := utils.HashPassword("waiter1")
	require.NoError(t, err)
	waiter := models.Staff{ID: primitive.NewObjectID(), Name: "Sam", Email: "sam@example.com", Password: hash, Role: models.RoleWaiter, IsActive: true}
	noPassword := models.Staff{ID: primitive.NewObjectID(), Name: "Kim", Email: "kim@example.com", Role: models.RoleChef, IsActive: true}
	f := newAuthFixture(t, waiter, noPassword)

	_, acc := f.login(t, "sam@example.com", "waiter1")
	assert.Equal(t, models.KindStaff, acc.Kind)
	assert.Equal(t, models.RoleWaiter, acc.Role)

	assert.Equal(t, http.StatusUnauthorized, f.post(t, "/api/auth/login", gin.H{"email": "sam@example.com", "password": "nope123"}).Code)
	assert.Equal(t, http.StatusUnauthorized, f.post(t, "/api/auth/login", gin.H{"email": "kim@example.com", "password": "anything"}).Code)
	assert.Equal(t, http.StatusUnauthorized, f.post(t, "/api/auth/login", gin.H{"email": "ghost@example.com", "password": "anything"}).Code)
	assert.Equal(t, http.StatusBadRequest, f.post(t, "/api/auth/login", gin.H{"email": "sam@example.com"}).Code)
}

func TestAdminCannotDeleteSelf(t *testing.T) {
	f := newAuthFixture(t)
	require.Equal(t, http.StatusCreated, f.post(t, "/api/auth/register", gin.H{"name": "Owner", "email": "owner@example.com", "password": "secret1"}).Code)
	token, acc := f.login(t, "owner@example.com", "secret1")

	req := httptest.NewRequest(http.MethodDelete, "/api/users/"+acc.ID, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
}
