package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"restaurant/models"
)

type UserRepo struct {
	collection *mongo.Collection
}

func NewUserRepo(collection *mongo.Collection) *UserRepo {
	return &UserRepo{collection: collection}
}

func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("cannot count users: %w", err)
	}
	return n, nil
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.Email = strings.ToLower(user.Email)
	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("cannot create user: %w", duplicate(err))
	}
	return nil
}

func (r *UserRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (r *UserRepo) List(ctx context.Context) ([]models.User, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("cannot list users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("cannot decode users: %w", err)
	}
	return users, nil
}

// Update writes profile fields; the password is replaced only when set.
func (r *UserRepo) Update(ctx context.Context, user *models.User) error {
	set := bson.M{
		"name":      user.Name,
		"email":     strings.ToLower(user.Email),
		"role":      user.Role,
		"isActive":  user.IsActive,
		"updatedAt": time.Now(),
	}
	if user.Password != "" {
		set["password"] = user.Password
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("cannot update user: %w", duplicate(err))
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("cannot delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepo) TouchLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"lastLogin": at}})
	if err != nil {
		return fmt.Errorf("cannot update last login: %w", err)
	}
	return nil
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

type StaffRepo struct {
	collection *mongo.Collection
}

func NewStaffRepo(collection *mongo.Collection) *StaffRepo {
	return &StaffRepo{collection: collection}
}

func (r *StaffRepo) Create(ctx context.Context, s *models.Staff) error {
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	s.Email = strings.ToLower(s.Email)
	if _, err := r.collection.InsertOne(ctx, s); err != nil {
		return fmt.Errorf("cannot create staff: %w", duplicate(err))
	}
	return nil
}

func (r *StaffRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.Staff, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *StaffRepo) GetByEmail(ctx context.Context, email string) (*models.Staff, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (r *StaffRepo) List(ctx context.Context, role string, activeOnly bool) ([]models.Staff, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}
	if activeOnly {
		filter["isActive"] = true
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("cannot list staff: %w", err)
	}
	defer cursor.Close(ctx)

	staff := []models.Staff{}
	if err := cursor.All(ctx, &staff); err != nil {
		return nil, fmt.Errorf("cannot decode staff: %w", err)
	}
	return staff, nil
}

// Update writes profile fields. Password and photo are replaced only when set.
func (r *StaffRepo) Update(ctx context.Context, s *models.Staff) error {
	set := bson.M{
		"name":      s.Name,
		"email":     strings.ToLower(s.Email),
		"phone":     s.Phone,
		"role":      s.Role,
		"salary":    s.Salary,
		"isActive":  s.IsActive,
		"updatedAt": time.Now(),
	}
	if s.Password != "" {
		set["password"] = s.Password
	}
	if s.Photo != "" {
		set["photo"] = s.Photo
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": s.ID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("cannot update staff: %w", duplicate(err))
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *StaffRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("cannot delete staff: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *StaffRepo) findOne(ctx context.Context, filter bson.M) (*models.Staff, error) {
	var s models.Staff
	if err := r.collection.FindOne(ctx, filter).Decode(&s); err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}
