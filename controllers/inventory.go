package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"restaurant/models"
)

type InventoryStore interface {
	Create(ctx context.Context, item *models.InventoryItem) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.InventoryItem, error)
	List(ctx context.Context, lowStock bool) ([]models.InventoryItem, error)
	Update(ctx context.Context, item *models.InventoryItem) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Restock(ctx context.Context, id primitive.ObjectID, quantity float64, at time.Time) (*models.InventoryItem, error)
}

type InventoryController struct {
	inventory InventoryStore
}

func NewInventoryController(inventory InventoryStore) *InventoryController {
	return &InventoryController{inventory: inventory}
}

type inventoryInput struct {
	Name         string   `json:"name"`
	Unit         string   `json:"unit"`
	Quantity     *float64 `json:"quantity"`
	ReorderLevel *float64 `json:"reorderLevel"`
	CostPerUnit  *float64 `json:"costPerUnit"`
	Supplier     *string  `json:"supplier"`
}

func (in inventoryInput) apply(item *models.InventoryItem) string {
	if v := strings.TrimSpace(in.Name); v != "" {
		item.Name = v
	}
	if v := strings.TrimSpace(in.Unit); v != "" {
		item.Unit = v
	}
	if in.Quantity != nil {
		item.Quantity = *in.Quantity
	}
	if in.ReorderLevel != nil {
		item.ReorderLevel = *in.ReorderLevel
	}
	if in.CostPerUnit != nil {
		item.CostPerUnit = *in.CostPerUnit
	}
	if in.Supplier != nil {
		item.Supplier = *in.Supplier
	}

	switch {
	case item.Name == "":
		return "Name is required"
	case item.Unit == "":
		return "Unit is required"
	case item.Quantity < 0 || item.ReorderLevel < 0 || item.CostPerUnit < 0:
		return "Quantities and cost cannot be negative"
	}
	return ""
}

func (ic *InventoryController) List(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	items, err := ic.inventory.List(ctx, c.Query("lowStock") == "true")
	if err != nil {
		respondStoreError(c, err, "Inventory item")
		return
	}
	c.JSON(http.StatusOK, items)
}

func (ic *InventoryController) Get(c *gin.Context) {
	id, ok := paramID(c, "id", "inventory item")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	item, err := ic.inventory.Get(ctx, id)
	if err != nil {
		respondStoreError(c, err, "Inventory item")
		return
	}
	c.JSON(http.StatusOK, item)
}

func (ic *InventoryController) Create(c *gin.Context) {
	var input inventoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	now := time.Now()
	item := &models.InventoryItem{CreatedAt: now, UpdatedAt: now}
	if msg := input.apply(item); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := ic.inventory.Create(ctx, item); err != nil {
		respondStoreError(c, err, "Inventory item")
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (ic *InventoryController) Update(c *gin.Context) {
	id, ok := paramID(c, "id", "inventory item")
	if !ok {
		return
	}
	var input inventoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	item, err := ic.inventory.Get(ctx, id)
	if err != nil {
		respondStoreError(c, err, "Inventory item")
		return
	}
	if msg := input.apply(item); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	if err := ic.inventory.Update(ctx, item); err != nil {
		respondStoreError(c, err, "Inventory item")
		return
	}
	c.JSON(http.StatusOK, item)
}

func (ic *InventoryController) Delete(c *gin.Context) {
	id, ok := paramID(c, "id", "inventory item")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := ic.inventory.Delete(ctx, id); err != nil {
		respondStoreError(c, err, "Inventory item")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Inventory item deleted successfully"})
}

func (ic *InventoryController) Restock(c *gin.Context) {
	id, ok := paramID(c, "id", "inventory item")
	if !ok {
		return
	}
	var input struct {
		Quantity float64 `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity must be greater than zero"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	item, err := ic.inventory.Restock(ctx, id, input.Quantity, time.Now())
	if err != nil {
		respondStoreError(c, err, "Inventory item")
		return
	}
	c.JSON(http.StatusOK, item)
}
