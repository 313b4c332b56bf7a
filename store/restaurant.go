package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"restaurant/models"
)

type RestaurantRepo struct {
	collection *mongo.Collection
}

func NewRestaurantRepo(collection *mongo.Collection) *RestaurantRepo {
	return &RestaurantRepo{collection: collection}
}

// Get returns the settings document, or defaults when none was saved yet.
func (r *RestaurantRepo) Get(ctx context.Context) (*models.Restaurant, error) {
	var rest models.Restaurant
	err := r.collection.FindOne(ctx, bson.M{}).Decode(&rest)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &models.Restaurant{Name: "Restaurant", Currency: "USD"}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot load restaurant: %w", err)
	}
	return &rest, nil
}

// Save upserts the single settings document.
func (r *RestaurantRepo) Save(ctx context.Context, rest *models.Restaurant) (*models.Restaurant, error) {
	rest.UpdatedAt = time.Now()
	set := bson.M{
		"name":         rest.Name,
		"address":      rest.Address,
		"phone":        rest.Phone,
		"email":        rest.Email,
		"currency":     rest.Currency,
		"openingHours": rest.OpeningHours,
		"updatedAt":    rest.UpdatedAt,
	}
	if rest.Logo != "" {
		set["logo"] = rest.Logo
	}

	var saved models.Restaurant
	err := r.collection.FindOneAndUpdate(ctx, bson.M{}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&saved)
	if err != nil {
		return nil, fmt.Errorf("cannot save restaurant: %w", err)
	}
	return &saved, nil
}
