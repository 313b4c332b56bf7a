package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"restaurant/models"
	"restaurant/utils"
)

type RestaurantStore interface {
	Get(ctx context.Context) (*models.Restaurant, error)
	Save(ctx context.Context, r *models.Restaurant) (*models.Restaurant, error)
}

type AuditLister interface {
	List(ctx context.Context, limit int64) ([]models.AuditLog, error)
}

type SettingsController struct {
	restaurant RestaurantStore
	audit      AuditLister
	images     utils.ImageStore
}

func NewSettingsController(restaurant RestaurantStore, audit AuditLister, images utils.ImageStore) *SettingsController {
	return &SettingsController{restaurant: restaurant, audit: audit, images: images}
}

func (sc *SettingsController) GetRestaurant(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	rest, err := sc.restaurant.Get(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rest)
}

func (sc *SettingsController) UpdateRestaurant(c *gin.Context) {
	var input struct {
		Name         string `json:"name" form:"name"`
		Address      string `json:"address" form:"address"`
		Phone        string `json:"phone" form:"phone"`
		Email        string `json:"email" form:"email"`
		Currency     string `json:"currency" form:"currency"`
		OpeningHours string `json:"openingHours" form:"openingHours"`
	}
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if strings.TrimSpace(input.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	}
	if input.Email != "" && !validEmail(input.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email"})
		return
	}
	if input.Currency == "" {
		input.Currency = "USD"
	}

	rest := &models.Restaurant{
		Name:         strings.TrimSpace(input.Name),
		Address:      input.Address,
		Phone:        input.Phone,
		Email:        input.Email,
		Currency:     strings.ToUpper(input.Currency),
		OpeningHours: input.OpeningHours,
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if !saveUpload(ctx, c, sc.images, "logo", "restaurant", &rest.Logo) {
		return
	}
	saved, err := sc.restaurant.Save(ctx, rest)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (sc *SettingsController) AuditLogs(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 100, 1, 1000)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	entries, err := sc.audit.List(ctx, int64(limit))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
