package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"restaurant/models"
)

type PaymentRepo struct {
	collection *mongo.Collection
}

func NewPaymentRepo(collection *mongo.Collection) *PaymentRepo {
	return &PaymentRepo{collection: collection}
}

// Insert stores a payment; a second payment for the same order fails with
// ErrDuplicate through the unique orderId index.
func (r *PaymentRepo) Insert(ctx context.Context, p *models.Payment) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("cannot create payment: %w", duplicate(err))
	}
	return nil
}

func (r *PaymentRepo) GetByOrder(ctx context.Context, orderID primitive.ObjectID) (*models.Payment, error) {
	var p models.Payment
	if err := r.collection.FindOne(ctx, bson.M{"orderId": orderID}).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *PaymentRepo) List(ctx context.Context, method string, limit int64) ([]models.Payment, error) {
	filter := bson.M{}
	if method != "" {
		filter["paymentMethod"] = method
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot list payments: %w", err)
	}
	defer cursor.Close(ctx)

	payments := []models.Payment{}
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("cannot decode payments: %w", err)
	}
	return payments, nil
}
