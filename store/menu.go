package store

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"restaurant/models"
)

type MenuRepo struct {
	collection *mongo.Collection
}

func NewMenuRepo(collection *mongo.Collection) *MenuRepo {
	return &MenuRepo{collection: collection}
}

type MenuFilter struct {
	Category    primitive.ObjectID
	OnlyInStock bool
	Available   *bool
	Search      string
}

func (r *MenuRepo) Create(ctx context.Context, item *models.MenuItem) error {
	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, item); err != nil {
		return fmt.Errorf("cannot create menu item: %w", duplicate(err))
	}
	return nil
}

func (r *MenuRepo) GetItem(ctx context.Context, id primitive.ObjectID) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (r *MenuRepo) List(ctx context.Context, f MenuFilter) ([]models.MenuItem, error) {
	filter := bson.M{}
	if !f.Category.IsZero() {
		filter["category"] = f.Category
	}
	if f.OnlyInStock {
		filter["stock"] = bson.M{"$gt": 0}
	}
	if f.Available != nil {
		filter["isAvailable"] = *f.Available
	}
	if f.Search != "" {
		filter["name"] = bson.M{"$regex": primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}}
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("cannot list menu items: %w", err)
	}
	defer cursor.Close(ctx)

	items := []models.MenuItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("cannot decode menu items: %w", err)
	}
	return items, nil
}

// LowStock returns items whose stock is at or below threshold.
func (r *MenuRepo) LowStock(ctx context.Context, threshold int) ([]models.MenuItem, error) {
	cursor, err := r.collection.Find(ctx,
		bson.M{"stock": bson.M{"$lte": threshold}},
		options.Find().SetSort(bson.D{{Key: "stock", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot list low stock items: %w", err)
	}
	defer cursor.Close(ctx)

	items := []models.MenuItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("cannot decode menu items: %w", err)
	}
	return items, nil
}

func (r *MenuRepo) Update(ctx context.Context, item *models.MenuItem) error {
	set := bson.M{
		"name":            item.Name,
		"description":     item.Description,
		"price":           item.Price,
		"category":        item.Category,
		"stock":           item.Stock,
		"isAvailable":     item.IsAvailable,
		"preparationTime": item.PreparationTime,
		"updatedAt":       time.Now(),
	}
	if item.Image != "" {
		set["image"] = item.Image
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": item.ID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("cannot update menu item: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MenuRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("cannot delete menu item: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MenuRepo) SetStock(ctx context.Context, id primitive.ObjectID, stock int) (*models.MenuItem, error) {
	return r.set(ctx, id, bson.M{"stock": stock})
}

func (r *MenuRepo) SetAvailability(ctx context.Context, id primitive.ObjectID, available bool) (*models.MenuItem, error) {
	return r.set(ctx, id, bson.M{"isAvailable": available})
}

func (r *MenuRepo) CountByCategory(ctx context.Context, category primitive.ObjectID) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"category": category})
	if err != nil {
		return 0, fmt.Errorf("cannot count menu items: %w", err)
	}
	return n, nil
}

// DecrementStock takes qty from the item's stock in a single conditional
// write. It reports false when the item holds less than qty (or is missing).
func (r *MenuRepo) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "stock": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"stock": -qty}, "$set": bson.M{"updatedAt": time.Now()}},
	)
	if err != nil {
		return false, fmt.Errorf("cannot decrement stock: %w", err)
	}
	return res.MatchedCount == 1, nil
}

func (r *MenuRepo) IncrementStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"stock": qty}, "$set": bson.M{"updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("cannot increment stock: %w", err)
	}
	return nil
}

func (r *MenuRepo) set(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.MenuItem, error) {
	fields["updatedAt"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var item models.MenuItem
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&item)
	if err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}
