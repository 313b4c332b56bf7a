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

type CategoryRepo struct {
	collection *mongo.Collection
}

func NewCategoryRepo(collection *mongo.Collection) *CategoryRepo {
	return &CategoryRepo{collection: collection}
}

func (r *CategoryRepo) Create(ctx context.Context, c *models.Category) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("cannot create category: %w", duplicate(err))
	}
	return nil
}

func (r *CategoryRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	var c models.Category
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *CategoryRepo) List(ctx context.Context) ([]models.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sortOrder", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot list categories: %w", err)
	}
	defer cursor.Close(ctx)

	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("cannot decode categories: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepo) Update(ctx context.Context, c *models.Category) error {
	set := bson.M{
		"name":        c.Name,
		"description": c.Description,
		"isActive":    c.IsActive,
		"sortOrder":   c.SortOrder,
		"updatedAt":   time.Now(),
	}
	if c.Image != "" {
		set["image"] = c.Image
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": c.ID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("cannot update category: %w", duplicate(err))
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CategoryRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("cannot delete category: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
