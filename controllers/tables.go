package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"restaurant/models"
	"restaurant/store"
)

type TableStore interface {
	Create(ctx context.Context, t *models.Table) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.Table, error)
	List(ctx context.Context, status string) ([]models.Table, error)
	Update(ctx context.Context, t *models.Table) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	SetStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Table, error)
}

type TableController struct {
	tables TableStore
}

func NewTableController(tables TableStore) *TableController {
	return &TableController{tables: tables}
}

type tableInput struct {
	Number   int    `json:"number"`
	Capacity int    `json:"capacity"`
	Location string `json:"location"`
	Status   string `json:"status"`
}

func (in tableInput) validate() string {
	if in.Number < 1 {
		return "Table number must be positive"
	}
	if in.Capacity < 1 {
		return "Capacity must be at least 1"
	}
	if in.Status != "" && !models.IsTableStatus(in.Status) {
		return "Invalid table status"
	}
	return ""
}

func (tc *TableController) List(c *gin.Context) {
	status := c.Query("status")
	if status != "" && !models.IsTableStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	tables, err := tc.tables.List(ctx, status)
	if err != nil {
		respondStoreError(c, err, "Table")
		return
	}
	c.JSON(http.StatusOK, tables)
}

func (tc *TableController) Get(c *gin.Context) {
	id, ok := paramID(c, "tableId", "table")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	table, err := tc.tables.Get(ctx, id)
	if err != nil {
		respondStoreError(c, err, "Table")
		return
	}
	c.JSON(http.StatusOK, table)
}

func (tc *TableController) Create(c *gin.Context) {
	var input tableInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if msg := input.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	// occupancy is driven by orders only
	if input.Status == "" || input.Status == models.TableOccupied {
		input.Status = models.TableAvailable
	}

	now := time.Now()
	table := &models.Table{
		Number:    input.Number,
		Capacity:  input.Capacity,
		Location:  input.Location,
		Status:    input.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := tc.tables.Create(ctx, table); err != nil {
		respondStoreError(c, err, "Table number")
		return
	}
	c.JSON(http.StatusCreated, table)
}

func (tc *TableController) Update(c *gin.Context) {
	id, ok := paramID(c, "tableId", "table")
	if !ok {
		return
	}
	var input tableInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if msg := input.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	err := tc.tables.Update(ctx, &models.Table{ID: id, Number: input.Number, Capacity: input.Capacity, Location: input.Location})
	if err != nil {
		respondStoreError(c, err, "Table number")
		return
	}
	table, err := tc.tables.Get(ctx, id)
	if err != nil {
		respondStoreError(c, err, "Table")
		return
	}
	c.JSON(http.StatusOK, table)
}

func (tc *TableController) Delete(c *gin.Context) {
	id, ok := paramID(c, "tableId", "table")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	err := tc.tables.Delete(ctx, id)
	if errors.Is(err, store.ErrStale) {
		c.JSON(http.StatusConflict, gin.H{"error": "Table has active orders"})
		return
	}
	if err != nil {
		respondStoreError(c, err, "Table")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Table deleted successfully"})
}

func (tc *TableController) UpdateStatus(c *gin.Context) {
	id, ok := paramID(c, "tableId", "table")
	if !ok {
		return
	}
	var input struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || !models.IsTableStatus(input.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid table status"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	table, err := tc.tables.SetStatus(ctx, id, input.Status)
	if errors.Is(err, store.ErrStale) {
		c.JSON(http.StatusConflict, gin.H{"error": "Table has active orders"})
		return
	}
	if err != nil {
		respondStoreError(c, err, "Table")
		return
	}
	c.JSON(http.StatusOK, table)
}
