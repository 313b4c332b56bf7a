package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"restaurant/middleware"
	"restaurant/orders"
	"restaurant/store"
)

const requestTimeout = 10 * time.Second

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// respondError maps workflow and store errors to status codes. Anything it
// does not recognise is logged by the request logger and answered with a
// generic 500.
func respondError(c *gin.Context, err error) {
	var status int
	switch orders.KindOf(err) {
	case orders.KindValidation:
		status = http.StatusBadRequest
	case orders.KindNotFound:
		status = http.StatusNotFound
	case orders.KindConflict:
		status = http.StatusConflict
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// respondStoreError answers repository errors for simple CRUD handlers.
func respondStoreError(c *gin.Context, err error, entity string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": entity + " not found"})
	case errors.Is(err, store.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": entity + " already exists"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func paramID(c *gin.Context, name, entity string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + entity + " ID"})
		return primitive.NilObjectID, false
	}
	return id, true
}

func queryID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return primitive.NilObjectID, true
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " filter"})
		return primitive.NilObjectID, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, def, min, max int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min || n > max {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be between " + strconv.Itoa(min) + " and " + strconv.Itoa(max)})
		return 0, false
	}
	return n, true
}

func currentAccount(c *gin.Context) string {
	return c.GetString(middleware.AccountIDKey)
}
