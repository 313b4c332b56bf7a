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

type TableRepo struct {
	collection *mongo.Collection
}

func NewTableRepo(collection *mongo.Collection) *TableRepo {
	return &TableRepo{collection: collection}
}

func (r *TableRepo) Create(ctx context.Context, table *models.Table) error {
	if table.ID.IsZero() {
		table.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, table); err != nil {
		return fmt.Errorf("cannot create table: %w", duplicate(err))
	}
	return nil
}

func (r *TableRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.Table, error) {
	var table models.Table
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&table); err != nil {
		return nil, notFound(err)
	}
	return &table, nil
}

func (r *TableRepo) List(ctx context.Context, status string) ([]models.Table, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "number", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("cannot list tables: %w", err)
	}
	defer cursor.Close(ctx)

	tables := []models.Table{}
	if err := cursor.All(ctx, &tables); err != nil {
		return nil, fmt.Errorf("cannot decode tables: %w", err)
	}
	return tables, nil
}

// Update writes the admin-editable fields only; status and occupancy are
// owned by the order workflow and SetStatus.
func (r *TableRepo) Update(ctx context.Context, table *models.Table) error {
	update := bson.M{"$set": bson.M{
		"number":    table.Number,
		"capacity":  table.Capacity,
		"location":  table.Location,
		"updatedAt": time.Now(),
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": table.ID}, update)
	if err != nil {
		return fmt.Errorf("cannot update table: %w", duplicate(err))
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a table that holds no active order.
func (r *TableRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "activeOrders": bson.M{"$lte": 0}})
	if err != nil {
		return fmt.Errorf("cannot delete table: %w", err)
	}
	if res.DeletedCount == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
		return ErrStale
	}
	return nil
}

// SetStatus applies a manual status change. A table cannot be marked available
// while it still holds active orders.
func (r *TableRepo) SetStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Table, error) {
	filter := bson.M{"_id": id}
	if status == models.TableAvailable {
		filter["activeOrders"] = bson.M{"$lte": 0}
	}
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}}
	if status == models.TableAvailable {
		update["$unset"] = bson.M{"currentOrder": ""}
	}
	return r.findOneAndUpdate(ctx, id, filter, update)
}

// Occupy registers a new active order on the table and flips an available
// table to occupied in the same write.
func (r *TableRepo) Occupy(ctx context.Context, id, orderID primitive.ObjectID) (*models.Table, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "activeOrders", Value: bson.D{{Key: "$add", Value: bson.A{
				bson.D{{Key: "$ifNull", Value: bson.A{"$activeOrders", 0}}}, 1,
			}}}},
			{Key: "currentOrder", Value: orderID},
			{Key: "status", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$eq", Value: bson.A{"$status", models.TableAvailable}}},
				models.TableOccupied,
				"$status",
			}}}},
			{Key: "updatedAt", Value: time.Now()},
		}}},
	}
	return r.findOneAndUpdate(ctx, id, bson.M{"_id": id}, pipeline)
}

// Release drops one active order from the table. When none remain an occupied
// table becomes available again.
func (r *TableRepo) Release(ctx context.Context, id primitive.ObjectID) (*models.Table, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "activeOrders", Value: bson.D{{Key: "$max", Value: bson.A{
				0,
				bson.D{{Key: "$subtract", Value: bson.A{
					bson.D{{Key: "$ifNull", Value: bson.A{"$activeOrders", 0}}}, 1,
				}}},
			}}}},
		}}},
		{{Key: "$set", Value: bson.D{
			{Key: "status", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$and", Value: bson.A{
					bson.D{{Key: "$eq", Value: bson.A{"$activeOrders", 0}}},
					bson.D{{Key: "$eq", Value: bson.A{"$status", models.TableOccupied}}},
				}}},
				models.TableAvailable,
				"$status",
			}}}},
			{Key: "currentOrder", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$eq", Value: bson.A{"$activeOrders", 0}}},
				"$$REMOVE",
				"$currentOrder",
			}}}},
			{Key: "updatedAt", Value: time.Now()},
		}}},
	}
	return r.findOneAndUpdate(ctx, id, bson.M{"_id": id}, pipeline)
}

func (r *TableRepo) findOneAndUpdate(ctx context.Context, id primitive.ObjectID, filter bson.M, update interface{}) (*models.Table, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var table models.Table
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&table)
	if err == nil {
		return &table, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("cannot update table: %w", err)
	}
	if len(filter) == 1 {
		return nil, ErrNotFound
	}
	if _, gerr := r.Get(ctx, id); gerr != nil {
		return nil, gerr
	}
	return nil, ErrStale
}
