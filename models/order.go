package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OrderPending    = "pending"
	OrderInProgress = "in-progress"
	OrderCompleted  = "completed"
	OrderCancelled  = "cancelled"

	PaymentUnpaid = "unpaid"
	PaymentPaid   = "paid"
)

// OrderItem is a line of an order. Name and Price are copied from the menu
// item when the line is added and never re-derived.
type OrderItem struct {
	MenuItem primitive.ObjectID `bson:"menuItem" json:"menuItem"`
	Name     string             `bson:"name" json:"name"`
	Quantity int                `bson:"quantity" json:"quantity"`
	Price    float64            `bson:"price" json:"price"`
	Notes    string             `bson:"notes,omitempty" json:"notes,omitempty"`
}

type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderNumber   string             `bson:"orderNumber" json:"orderNumber"`
	Table         primitive.ObjectID `bson:"table" json:"table"`
	Items         []OrderItem        `bson:"items" json:"items"`
	Subtotal      float64            `bson:"subtotal" json:"subtotal"`
	Tax           float64            `bson:"tax" json:"tax"`
	Total         float64            `bson:"total" json:"total"`
	Status        string             `bson:"status" json:"status"`
	PaymentStatus string             `bson:"paymentStatus" json:"paymentStatus"`
	CustomerName  string             `bson:"customerName,omitempty" json:"customerName,omitempty"`
	Notes         string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedBy     string             `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
	CompletedAt   *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

// IsActive reports whether the order still holds its table.
func (o *Order) IsActive() bool {
	return IsActiveOrderStatus(o.Status)
}

func (o *Order) Totals() Totals {
	return Totals{Subtotal: o.Subtotal, Tax: o.Tax, Total: o.Total}
}

func IsActiveOrderStatus(s string) bool {
	return s == OrderPending || s == OrderInProgress
}

func IsTerminalOrderStatus(s string) bool {
	return s == OrderCompleted || s == OrderCancelled
}

func IsOrderStatus(s string) bool {
	return IsActiveOrderStatus(s) || IsTerminalOrderStatus(s)
}

func IsPaymentStatus(s string) bool {
	return s == PaymentUnpaid || s == PaymentPaid
}

const (
	PaymentMethodCash = "cash"
	PaymentMethodQR   = "qr"

	PaymentRecordCompleted = "completed"
)

type Payment struct {
	ID                 primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	OrderID            primitive.ObjectID     `bson:"orderId" json:"orderId"`
	PaymentMethod      string                 `bson:"paymentMethod" json:"paymentMethod"`
	PaymentStatus      string                 `bson:"paymentStatus" json:"paymentStatus"`
	Amount             float64                `bson:"amount" json:"amount"`
	TransactionDetails map[string]interface{} `bson:"transactionDetails,omitempty" json:"transactionDetails,omitempty"`
	ProcessedBy        string                 `bson:"processedBy,omitempty" json:"processedBy,omitempty"`
	CreatedAt          time.Time              `bson:"createdAt" json:"createdAt"`
}

type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// OrderFilter narrows order listings; zero fields are ignored.
type OrderFilter struct {
	Status        string
	PaymentStatus string
	Table         primitive.ObjectID
	Limit         int64
}
