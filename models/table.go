package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	TableAvailable   = "available"
	TableOccupied    = "occupied"
	TableReserved    = "reserved"
	TableMaintenance = "maintenance"
)

type Table struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Number       int                 `bson:"number" json:"number"`
	Capacity     int                 `bson:"capacity" json:"capacity"`
	Location     string              `bson:"location,omitempty" json:"location,omitempty"`
	Status       string              `bson:"status" json:"status"`
	CurrentOrder *primitive.ObjectID `bson:"currentOrder,omitempty" json:"currentOrder,omitempty"`
	// ActiveOrders counts pending and in-progress orders seated at the table.
	ActiveOrders int       `bson:"activeOrders" json:"activeOrders"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

func IsTableStatus(s string) bool {
	switch s {
	case TableAvailable, TableOccupied, TableReserved, TableMaintenance:
		return true
	}
	return false
}
