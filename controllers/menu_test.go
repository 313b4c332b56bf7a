package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"restaurant/models"
	"restaurant/store/memstore"
)

func newMenuRouter(t *testing.T) (*gin.Engine, primitive.ObjectID) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mains := models.Category{ID: primitive.NewObjectID(), Name: "Mains", IsActive: true}
	mc := NewMenuController(memstore.New().Menu(), newFakeCategories(mains), nil)

	r := gin.New()
	r.GET("/menu", mc.List)
	r.POST("/menu", mc.Create)
	r.PATCH("/menu/:id/stock", mc.UpdateStock)
	r.PATCH("/menu/:id/availability", mc.UpdateAvailability)
	r.DELETE("/menu/categories/:id", mc.DeleteCategory)
	return r, mains.ID
}

func send(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMenuCreateValidation(t *testing.T) {
	r, category := newMenuRouter(t)

	cases := []struct {
		name string
		body gin.H
		want int
	}{
		{"ok", gin.H{"name": "Dal Bhat", "price": 8.5, "category": category.Hex(), "stock": 4}, http.StatusCreated},
		{"missing name", gin.H{"price": 8.5, "category": category.Hex()}, http.StatusBadRequest},
		{"zero price", gin.H{"name": "Tea", "price": 0, "category": category.Hex()}, http.StatusBadRequest},
		{"negative stock", gin.H{"name": "Tea", "price": 1, "category": category.Hex(), "stock": -1}, http.StatusBadRequest},
		{"bad category id", gin.H{"name": "Tea", "price": 1, "category": "x"}, http.StatusBadRequest},
		{"unknown category", gin.H{"name": "Tea", "price": 1, "category": primitive.NewObjectID().Hex()}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := send(r, http.MethodPost, "/menu", tc.body)
			assert.Equal(t, tc.want, w.Code, w.Body.String())
		})
	}
}

func TestMenuStockAndAvailability(t *testing.T) {
	r, category := newMenuRouter(t)

	w := send(r, http.MethodPost, "/menu", gin.H{"name": "Momo", "price": 6, "category": category.Hex(), "stock": 0})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var item models.MenuItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &item))
	assert.True(t, item.IsAvailable)

	var list []models.MenuItem
	require.NoError(t, json.Unmarshal(send(r, http.MethodGet, "/menu?inStock=true", nil).Body.Bytes(), &list))
	assert.Empty(t, list)

	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodPatch, "/menu/"+item.ID.Hex()+"/stock", gin.H{"stock": -2}).Code)
	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodPatch, "/menu/"+item.ID.Hex()+"/stock", gin.H{}).Code)
	assert.Equal(t, http.StatusNotFound, send(r, http.MethodPatch, "/menu/"+primitive.NewObjectID().Hex()+"/stock", gin.H{"stock": 1}).Code)

	w = send(r, http.MethodPatch, "/menu/"+item.ID.Hex()+"/stock", gin.H{"stock": 12})
	require.Equal(t, http.StatusOK, w.Code)
	list = nil
	require.NoError(t, json.Unmarshal(send(r, http.MethodGet, "/menu?inStock=true", nil).Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, 12, list[0].Stock)

	w = send(r, http.MethodPatch, "/menu/"+item.ID.Hex()+"/availability", gin.H{"isAvailable": false})
	require.Equal(t, http.StatusOK, w.Code)
	list = nil
	require.NoError(t, json.Unmarshal(send(r, http.MethodGet, "/menu?available=true", nil).Body.Bytes(), &list))
	assert.Empty(t, list)
}

func TestDeleteCategoryInUse(t *testing.T) {
	r, category := newMenuRouter(t)
	require.Equal(t, http.StatusCreated, send(r, http.MethodPost, "/menu", gin.H{"name": "Thukpa", "price": 7, "category": category.Hex()}).Code)

	assert.Equal(t, http.StatusConflict, send(r, http.MethodDelete, "/menu/categories/"+category.Hex(), nil).Code)
	assert.Equal(t, http.StatusNotFound, send(r, http.MethodDelete, "/menu/categories/"+primitive.NewObjectID().Hex(), nil).Code)
}
