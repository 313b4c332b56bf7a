package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"restaurant/models"
	"restaurant/orders"
)

type PaymentLister interface {
	List(ctx context.Context, method string, limit int64) ([]models.Payment, error)
}

type PaymentController struct {
	service  *orders.Service
	payments PaymentLister
}

func NewPaymentController(service *orders.Service, payments PaymentLister) *PaymentController {
	return &PaymentController{service: service, payments: payments}
}

func (pc *PaymentController) Cash(c *gin.Context) {
	var input orders.CashPayment
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	input.ProcessedBy = currentAccount(c)

	ctx, cancel := requestContext(c)
	defer cancel()

	payment, err := pc.service.PayCash(ctx, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (pc *PaymentController) QR(c *gin.Context) {
	var input orders.QRPayment
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	input.ProcessedBy = currentAccount(c)

	ctx, cancel := requestContext(c)
	defer cancel()

	payment, err := pc.service.PayQR(ctx, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (pc *PaymentController) List(c *gin.Context) {
	method := c.Query("method")
	if method != "" && method != models.PaymentMethodCash && method != models.PaymentMethodQR {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid method filter"})
		return
	}
	limit, ok := queryInt(c, "limit", 100, 1, 1000)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := pc.payments.List(ctx, method, int64(limit))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (pc *PaymentController) ByOrder(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	payment, err := pc.service.PaymentForOrder(ctx, c.Param("orderId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}
