package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"restaurant/models"
)

type InventoryRepo struct {
	collection *mongo.Collection
}

func NewInventoryRepo(collection *mongo.Collection) *InventoryRepo {
	return &InventoryRepo{collection: collection}
}

func (r *InventoryRepo) Create(ctx context.Context, item *models.InventoryItem) error {
	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, item); err != nil {
		return fmt.Errorf("cannot create inventory item: %w", duplicate(err))
	}
	return nil
}

func (r *InventoryRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

// List returns every item, or only those at or below their reorder level.
func (r *InventoryRepo) List(ctx context.Context, lowStock bool) ([]models.InventoryItem, error) {
	filter := bson.M{}
	if lowStock {
		filter["$expr"] = bson.M{"$lte": bson.A{"$quantity", "$reorderLevel"}}
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("cannot list inventory: %w", err)
	}
	defer cursor.Close(ctx)

	items := []models.InventoryItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("cannot decode inventory: %w", err)
	}
	return items, nil
}

func (r *InventoryRepo) Update(ctx context.Context, item *models.InventoryItem) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": item.ID}, bson.M{"$set": bson.M{
		"name":         item.Name,
		"unit":         item.Unit,
		"quantity":     item.Quantity,
		"reorderLevel": item.ReorderLevel,
		"costPerUnit":  item.CostPerUnit,
		"supplier":     item.Supplier,
		"updatedAt":    time.Now(),
	}})
	if err != nil {
		return fmt.Errorf("cannot update inventory item: %w", duplicate(err))
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *InventoryRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("cannot delete inventory item: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Restock adds quantity atomically and stamps lastRestocked.
func (r *InventoryRepo) Restock(ctx context.Context, id primitive.ObjectID, quantity float64, at time.Time) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"quantity": quantity},
			"$set": bson.M{"lastRestocked": at, "updatedAt": at},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&item)
	if err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}
