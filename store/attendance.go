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

type AttendanceRepo struct {
	collection *mongo.Collection
}

func NewAttendanceRepo(collection *mongo.Collection) *AttendanceRepo {
	return &AttendanceRepo{collection: collection}
}

// CheckIn inserts the day's record. The (staff, date) unique index turns a
// second check-in into ErrDuplicate.
func (r *AttendanceRepo) CheckIn(ctx context.Context, a *models.Attendance) error {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, a); err != nil {
		return fmt.Errorf("cannot check in: %w", duplicate(err))
	}
	return nil
}

func (r *AttendanceRepo) Find(ctx context.Context, staff primitive.ObjectID, date string) (*models.Attendance, error) {
	var a models.Attendance
	err := r.collection.FindOne(ctx, bson.M{"staff": staff, "date": date}).Decode(&a)
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// CheckOut stores a closed record. It only matches records that are still
// open, so a second check-out returns ErrStale.
func (r *AttendanceRepo) CheckOut(ctx context.Context, a *models.Attendance) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": a.ID, "checkOut": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{
			"checkOut":    a.CheckOut,
			"hoursWorked": a.HoursWorked,
			"status":      a.Status,
			"autoClosed":  a.AutoClosed,
		}},
	)
	if err != nil {
		return fmt.Errorf("cannot check out: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrStale
	}
	return nil
}

func (r *AttendanceRepo) List(ctx context.Context, date string, staff primitive.ObjectID) ([]models.Attendance, error) {
	filter := bson.M{}
	if date != "" {
		filter["date"] = date
	}
	if !staff.IsZero() {
		filter["staff"] = staff
	}
	return r.find(ctx, filter)
}

// Open returns every record on or before date that has no check-out.
func (r *AttendanceRepo) Open(ctx context.Context, date string) ([]models.Attendance, error) {
	return r.find(ctx, bson.M{
		"date":     bson.M{"$lte": date},
		"checkOut": bson.M{"$exists": false},
	})
}

func (r *AttendanceRepo) CountDate(ctx context.Context, date string) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"date": date})
	if err != nil {
		return 0, fmt.Errorf("cannot count attendance: %w", err)
	}
	return n, nil
}

func (r *AttendanceRepo) find(ctx context.Context, filter bson.M) ([]models.Attendance, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "checkIn", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot list attendance: %w", err)
	}
	defer cursor.Close(ctx)

	records := []models.Attendance{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("cannot decode attendance: %w", err)
	}
	return records, nil
}
