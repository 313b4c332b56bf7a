package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"restaurant/models"
	"restaurant/store"
)

type DashboardStore interface {
	Stats(ctx context.Context, from, to time.Time, day string, lowStock int) (*store.DashboardStats, error)
	Sales(ctx context.Context, days int, loc *time.Location) ([]store.DailySales, error)
	TopItems(ctx context.Context, limit int) ([]store.TopItem, error)
}

type LowStockLister interface {
	LowStock(ctx context.Context, threshold int) ([]models.MenuItem, error)
}

type DashboardController struct {
	stats     DashboardStore
	menu      LowStockLister
	location  *time.Location
	threshold int
}

func NewDashboardController(stats DashboardStore, menu LowStockLister, location *time.Location, threshold int) *DashboardController {
	return &DashboardController{stats: stats, menu: menu, location: location, threshold: threshold}
}

func (dc *DashboardController) Stats(c *gin.Context) {
	now := time.Now().In(dc.location)
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, dc.location)

	ctx, cancel := requestContext(c)
	defer cancel()

	stats, err := dc.stats.Stats(ctx, from, from.AddDate(0, 0, 1), from.Format("2006-01-02"), dc.threshold)
	if err != nil {
		respondError(c, err)
		return
	}
	lowStock, err := dc.menu.LowStock(ctx, dc.threshold)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":          from.Format("2006-01-02"),
		"stats":         stats,
		"lowStockItems": lowStock,
	})
}

func (dc *DashboardController) Sales(c *gin.Context) {
	days, ok := queryInt(c, "days", 7, 1, 365)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	sales, err := dc.stats.Sales(ctx, days, dc.location)
	if err != nil {
		respondError(c, err)
		return
	}

	var revenue float64
	var count int64
	for _, d := range sales {
		revenue += d.Revenue
		count += d.Orders
	}
	c.JSON(http.StatusOK, gin.H{
		"days":         days,
		"totalRevenue": revenue,
		"totalOrders":  count,
		"daily":        sales,
	})
}

func (dc *DashboardController) TopItems(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 10, 1, 100)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	items, err := dc.stats.TopItems(ctx, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
