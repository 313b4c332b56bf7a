package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	SortOrder   int                `bson:"sortOrder" json:"sortOrder"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type MenuItem struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	Price           float64            `bson:"price" json:"price"`
	Category        primitive.ObjectID `bson:"category" json:"category"`
	Stock           int                `bson:"stock" json:"stock"`
	Image           string             `bson:"image,omitempty" json:"image,omitempty"`
	IsAvailable     bool               `bson:"isAvailable" json:"isAvailable"`
	PreparationTime int                `bson:"preparationTime,omitempty" json:"preparationTime,omitempty"` // minutes
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type InventoryItem struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Unit          string             `bson:"unit" json:"unit"`
	Quantity      float64            `bson:"quantity" json:"quantity"`
	ReorderLevel  float64            `bson:"reorderLevel" json:"reorderLevel"`
	CostPerUnit   float64            `bson:"costPerUnit" json:"costPerUnit"`
	Supplier      string             `bson:"supplier,omitempty" json:"supplier,omitempty"`
	LastRestocked *time.Time         `bson:"lastRestocked,omitempty" json:"lastRestocked,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Restaurant holds the single settings document shown on receipts and the landing page.
type Restaurant struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Address      string             `bson:"address,omitempty" json:"address,omitempty"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Email        string             `bson:"email,omitempty" json:"email,omitempty"`
	Logo         string             `bson:"logo,omitempty" json:"logo,omitempty"`
	Currency     string             `bson:"currency" json:"currency"`
	OpeningHours string             `bson:"openingHours,omitempty" json:"openingHours,omitempty"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
