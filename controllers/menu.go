package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"restaurant/models"
	"restaurant/store"
	"restaurant/utils"
)

type MenuStore interface {
	Create(ctx context.Context, item *models.MenuItem) error
	GetItem(ctx context.Context, id primitive.ObjectID) (*models.MenuItem, error)
	List(ctx context.Context, f store.MenuFilter) ([]models.MenuItem, error)
	Update(ctx context.Context, item *models.MenuItem) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	SetStock(ctx context.Context, id primitive.ObjectID, stock int) (*models.MenuItem, error)
	SetAvailability(ctx context.Context, id primitive.ObjectID, available bool) (*models.MenuItem, error)
	CountByCategory(ctx context.Context, category primitive.ObjectID) (int64, error)
}

type CategoryStore interface {
	Create(ctx context.Context, c *models.Category) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type MenuController struct {
	menu       MenuStore
	categories CategoryStore
	images     utils.ImageStore
}

func NewMenuController(menu MenuStore, categories CategoryStore, images utils.ImageStore) *MenuController {
	return &MenuController{menu: menu, categories: categories, images: images}
}

// menuInput binds from JSON or multipart form fields.
type menuInput struct {
	Name            *string  `json:"name" form:"name"`
	Description     *string  `json:"description" form:"description"`
	Price           *float64 `json:"price" form:"price"`
	Category        *string  `json:"category" form:"category"`
	Stock           *int     `json:"stock" form:"stock"`
	IsAvailable     *bool    `json:"isAvailable" form:"isAvailable"`
	PreparationTime *int     `json:"preparationTime" form:"preparationTime"`
}

// apply copies the supplied fields onto item and reports the first invalid one.
func (in menuInput) apply(item *models.MenuItem) string {
	if in.Name != nil {
		item.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	if in.Price != nil {
		item.Price = *in.Price
	}
	if in.Category != nil {
		id, err := primitive.ObjectIDFromHex(*in.Category)
		if err != nil {
			return "Invalid category ID"
		}
		item.Category = id
	}
	if in.Stock != nil {
		item.Stock = *in.Stock
	}
	if in.IsAvailable != nil {
		item.IsAvailable = *in.IsAvailable
	}
	if in.PreparationTime != nil {
		item.PreparationTime = *in.PreparationTime
	}

	switch {
	case item.Name == "":
		return "Name is required"
	case item.Price <= 0:
		return "Price must be greater than zero"
	case item.Category.IsZero():
		return "Category is required"
	case item.Stock < 0:
		return "Stock cannot be negative"
	case item.PreparationTime < 0:
		return "Preparation time cannot be negative"
	}
	return ""
}

func (mc *MenuController) List(c *gin.Context) {
	category, ok := queryID(c, "category")
	if !ok {
		return
	}
	filter := store.MenuFilter{
		Category:    category,
		OnlyInStock: c.Query("inStock") == "true",
		Search:      strings.TrimSpace(c.Query("search")),
	}
	if raw := c.Query("available"); raw != "" {
		available := raw == "true"
		filter.Available = &available
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	items, err := mc.menu.List(ctx, filter)
	if err != nil {
		respondStoreError(c, err, "Menu item")
		return
	}
	c.JSON(http.StatusOK, items)
}

func (mc *MenuController) Get(c *gin.Context) {
	id, ok := paramID(c, "id", "menu item")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	item, err := mc.menu.GetItem(ctx, id)
	if err != nil {
		respondStoreError(c, err, "Menu item")
		return
	}
	c.JSON(http.StatusOK, item)
}

func (mc *MenuController) Create(c *gin.Context) {
	var input menuInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	now := time.Now()
	item := &models.MenuItem{IsAvailable: true, CreatedAt: now, UpdatedAt: now}
	if msg := input.apply(item); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if !mc.categoryExists(ctx, c, item.Category) {
		return
	}
	if !mc.saveImage(ctx, c, "menu", &item.Image) {
		return
	}
	if err := mc.menu.Create(ctx, item); err != nil {
		respondStoreError(c, err, "Menu item")
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (mc *MenuController) Update(c *gin.Context) {
	id, ok := paramID(c, "id", "menu item")
	if !ok {
		return
	}
	var input menuInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	item, err := mc.menu.GetItem(ctx, id)
	if err != nil {
		respondStoreError(c, err, "Menu item")
		return
	}
	previousCategory := item.Category
	if msg := input.apply(item); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	if item.Category != previousCategory && !mc.categoryExists(ctx, c, item.Category) {
		return
	}
	if !mc.saveImage(ctx, c, "menu", &item.Image) {
		return
	}
	if err := mc.menu.Update(ctx, item); err != nil {
		respondStoreError(c, err, "Menu item")
		return
	}
	c.JSON(http.StatusOK, item)
}

func (mc *MenuController) Delete(c *gin.Context) {
	id, ok := paramID(c, "id", "menu item")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := mc.menu.Delete(ctx, id); err != nil {
		respondStoreError(c, err, "Menu item")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted successfully"})
}

func (mc *MenuController) UpdateStock(c *gin.Context) {
	id, ok := paramID(c, "id", "menu item")
	if !ok {
		return
	}
	var input struct {
		Stock *int `json:"stock"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.Stock == nil || *input.Stock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stock must be a non-negative number"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	item, err := mc.menu.SetStock(ctx, id, *input.Stock)
	if err != nil {
		respondStoreError(c, err, "Menu item")
		return
	}
	c.JSON(http.StatusOK, item)
}

func (mc *MenuController) UpdateAvailability(c *gin.Context) {
	id, ok := paramID(c, "id", "menu item")
	if !ok {
		return
	}
	var input struct {
		IsAvailable *bool `json:"isAvailable"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.IsAvailable == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "isAvailable is required"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	item, err := mc.menu.SetAvailability(ctx, id, *input.IsAvailable)
	if err != nil {
		respondStoreError(c, err, "Menu item")
		return
	}
	c.JSON(http.StatusOK, item)
}

func (mc *MenuController) ListCategories(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	categories, err := mc.categories.List(ctx)
	if err != nil {
		respondStoreError(c, err, "Category")
		return
	}
	c.JSON(http.StatusOK, categories)
}

type categoryInput struct {
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description"`
	IsActive    *bool  `json:"isActive" form:"isActive"`
	SortOrder   int    `json:"sortOrder" form:"sortOrder"`
}

func (mc *MenuController) CreateCategory(c *gin.Context) {
	var input categoryInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	}

	now := time.Now()
	category := &models.Category{
		Name:        name,
		Description: input.Description,
		IsActive:    input.IsActive == nil || *input.IsActive,
		SortOrder:   input.SortOrder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if !mc.saveImage(ctx, c, "categories", &category.Image) {
		return
	}
	if err := mc.categories.Create(ctx, category); err != nil {
		respondStoreError(c, err, "Category")
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (mc *MenuController) UpdateCategory(c *gin.Context) {
	id, ok := paramID(c, "id", "category")
	if !ok {
		return
	}
	var input categoryInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	category, err := mc.categories.Get(ctx, id)
	if err != nil {
		respondStoreError(c, err, "Category")
		return
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		category.Name = name
	}
	if input.Description != "" {
		category.Description = input.Description
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}
	category.SortOrder = input.SortOrder
	if !mc.saveImage(ctx, c, "categories", &category.Image) {
		return
	}
	if err := mc.categories.Update(ctx, category); err != nil {
		respondStoreError(c, err, "Category")
		return
	}
	c.JSON(http.StatusOK, category)
}

func (mc *MenuController) DeleteCategory(c *gin.Context) {
	id, ok := paramID(c, "id", "category")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	n, err := mc.menu.CountByCategory(ctx, id)
	if err != nil {
		respondStoreError(c, err, "Category")
		return
	}
	if n > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Category still has menu items"})
		return
	}
	if err := mc.categories.Delete(ctx, id); err != nil {
		respondStoreError(c, err, "Category")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}

func (mc *MenuController) categoryExists(ctx context.Context, c *gin.Context, id primitive.ObjectID) bool {
	if _, err := mc.categories.Get(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Category does not exist"})
		} else {
			respondStoreError(c, err, "Category")
		}
		return false
	}
	return true
}

// saveImage stores the optional "image" upload and writes its URL to dst.
func (mc *MenuController) saveImage(ctx context.Context, c *gin.Context, folder string, dst *string) bool {
	return saveUpload(ctx, c, mc.images, "image", folder, dst)
}

func saveUpload(ctx context.Context, c *gin.Context, images utils.ImageStore, field, folder string, dst *string) bool {
	file, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return true
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + field + " upload"})
		return false
	}
	url, err := images.Save(ctx, folder, file)
	if err != nil {
		uploadError(c, err)
		return false
	}
	*dst = url
	return true
}

func uploadError(c *gin.Context, err error) {
	if errors.Is(err, utils.ErrImageTooLarge) || errors.Is(err, utils.ErrUnsupportedType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save image"})
}
