package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"restaurant/middleware"
	"restaurant/models"
	"restaurant/orders"
)

type OrderController struct {
	service *orders.Service
}

func NewOrderController(service *orders.Service) *OrderController {
	return &OrderController{service: service}
}

type tableRef struct {
	ID     primitive.ObjectID `json:"id"`
	Number int                `json:"number,omitempty"`
	Status string             `json:"status,omitempty"`
}

// orderView is an order with its table populated.
type orderView struct {
	*models.Order
	Table tableRef `json:"table"`
}

func (oc *OrderController) populate(ctx context.Context, list []models.Order) []orderView {
	tables := map[primitive.ObjectID]tableRef{}
	views := make([]orderView, 0, len(list))
	for i := range list {
		o := &list[i]
		ref, ok := tables[o.Table]
		if !ok {
			ref = tableRef{ID: o.Table}
			if t, err := oc.service.Table(ctx, o.Table); err == nil {
				ref.Number, ref.Status = t.Number, t.Status
			}
			tables[o.Table] = ref
		}
		views = append(views, orderView{Order: o, Table: ref})
	}
	return views
}

func (oc *OrderController) respondOrder(ctx context.Context, c *gin.Context, status int, order *models.Order) {
	c.JSON(status, oc.populate(ctx, []models.Order{*order})[0])
}

func (oc *OrderController) List(c *gin.Context) {
	filter := models.OrderFilter{
		Status:        c.Query("status"),
		PaymentStatus: c.Query("paymentStatus"),
	}
	if filter.Status != "" && !models.IsOrderStatus(filter.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
		return
	}
	if filter.PaymentStatus != "" && !models.IsPaymentStatus(filter.PaymentStatus) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid paymentStatus filter"})
		return
	}
	table, ok := queryID(c, "table")
	if !ok {
		return
	}
	filter.Table = table
	limit, ok := queryInt(c, "limit", 0, 0, 1000)
	if !ok {
		return
	}
	filter.Limit = int64(limit)

	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := oc.service.List(ctx, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, oc.populate(ctx, list))
}

func (oc *OrderController) ListByTable(c *gin.Context) {
	tableID, ok := paramID(c, "tableId", "table")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := oc.service.Table(ctx, tableID); err != nil {
		respondError(c, err)
		return
	}
	list, err := oc.service.List(ctx, models.OrderFilter{Table: tableID, Status: c.Query("status")})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, oc.populate(ctx, list))
}

func (oc *OrderController) Get(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := oc.service.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	oc.respondOrder(ctx, c, http.StatusOK, order)
}

func (oc *OrderController) Create(c *gin.Context) {
	var input orders.CreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	input.CreatedBy = currentAccount(c)

	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := oc.service.Create(ctx, input)
	if err != nil {
		respondError(c, err)
		return
	}
	oc.respondOrder(ctx, c, http.StatusCreated, order)
}

func (oc *OrderController) UpdateStatus(c *gin.Context) {
	var input orders.StatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if input.PaymentStatus != "" && !middleware.HasRole(c, models.RoleAdmin, models.RoleManager, models.RoleCashier) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only cashiers can change the payment status"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := oc.service.UpdateStatus(ctx, c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	oc.respondOrder(ctx, c, http.StatusOK, order)
}

func (oc *OrderController) AddItems(c *gin.Context) {
	var input struct {
		Items []orders.LineInput `json:"items"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := oc.service.AddItems(ctx, c.Param("id"), input.Items)
	if err != nil {
		respondError(c, err)
		return
	}
	oc.respondOrder(ctx, c, http.StatusOK, order)
}

func (oc *OrderController) Update(c *gin.Context) {
	var input orders.UpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := oc.service.Update(ctx, c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	oc.respondOrder(ctx, c, http.StatusOK, order)
}

func (oc *OrderController) Delete(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := oc.service.Delete(ctx, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
}
