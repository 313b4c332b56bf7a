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

type OrderRepo struct {
	collection *mongo.Collection
}

func NewOrderRepo(collection *mongo.Collection) *OrderRepo {
	return &OrderRepo{collection: collection}
}

func (r *OrderRepo) Insert(ctx context.Context, order *models.Order) error {
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("cannot create order: %w", duplicate(err))
	}
	return nil
}

func (r *OrderRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

func (r *OrderRepo) List(ctx context.Context, f models.OrderFilter) ([]models.Order, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.PaymentStatus != "" {
		filter["paymentStatus"] = f.PaymentStatus
	}
	if !f.Table.IsZero() {
		filter["table"] = f.Table
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot list orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("cannot decode orders: %w", err)
	}
	return orders, nil
}

// AppendItems pushes lines and stores the new totals, provided the order is
// still active and its totals still equal prev. It returns ErrStale when
// either guard fails.
func (r *OrderRepo) AppendItems(ctx context.Context, id primitive.ObjectID, items []models.OrderItem, prev, next models.Totals) (*models.Order, error) {
	filter := bson.M{
		"_id":      id,
		"status":   bson.M{"$in": bson.A{models.OrderPending, models.OrderInProgress}},
		"subtotal": prev.Subtotal,
		"total":    prev.Total,
	}
	update := bson.M{
		"$push": bson.M{"items": bson.M{"$each": items}},
		"$set": bson.M{
			"subtotal":  next.Subtotal,
			"tax":       next.Tax,
			"total":     next.Total,
			"updatedAt": time.Now(),
		},
	}
	return r.findOneAndUpdate(ctx, filter, update)
}

// ReplaceItems overwrites the line list and totals of an active order.
func (r *OrderRepo) ReplaceItems(ctx context.Context, id primitive.ObjectID, items []models.OrderItem, totals models.Totals) (*models.Order, error) {
	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$in": bson.A{models.OrderPending, models.OrderInProgress}},
	}
	update := bson.M{"$set": bson.M{
		"items":     items,
		"subtotal":  totals.Subtotal,
		"tax":       totals.Tax,
		"total":     totals.Total,
		"updatedAt": time.Now(),
	}}
	return r.findOneAndUpdate(ctx, filter, update)
}

// TransitionStatus moves the order from one status to another only if it is
// still in the expected status. It returns ErrStale when it is not.
func (r *OrderRepo) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to string, at time.Time) (*models.Order, error) {
	set := bson.M{"status": to, "updatedAt": at}
	if to == models.OrderCompleted {
		set["completedAt"] = at
	}
	return r.findOneAndUpdate(ctx, bson.M{"_id": id, "status": from}, bson.M{"$set": set})
}

func (r *OrderRepo) SetPaymentStatus(ctx context.Context, id primitive.ObjectID, from, to string) (*models.Order, error) {
	filter := bson.M{"_id": id, "paymentStatus": from}
	update := bson.M{"$set": bson.M{"paymentStatus": to, "updatedAt": time.Now()}}
	return r.findOneAndUpdate(ctx, filter, update)
}

// Delete removes an order that has not been paid and returns it as it was at
// removal time. A paid order yields ErrStale.
func (r *OrderRepo) Delete(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	filter := bson.M{"_id": id, "paymentStatus": bson.M{"$ne": models.PaymentPaid}}

	var order models.Order
	err := r.collection.FindOneAndDelete(ctx, filter).Decode(&order)
	if err == nil {
		return &order, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("cannot delete order: %w", err)
	}
	return nil, r.missingOrStale(ctx, id)
}

func (r *OrderRepo) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.Order, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order models.Order
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&order)
	if err == nil {
		return &order, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("cannot update order: %w", err)
	}
	return nil, r.missingOrStale(ctx, filter["_id"])
}

// missingOrStale distinguishes a missing order from one whose guard no longer
// holds.
func (r *OrderRepo) missingOrStale(ctx context.Context, id interface{}) error {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("cannot look up order: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrStale
}
