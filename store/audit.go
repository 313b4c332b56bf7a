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

type AuditRepo struct {
	sessions *mongo.Collection
	logs     *mongo.Collection
}

func NewAuditRepo(sessions, logs *mongo.Collection) *AuditRepo {
	return &AuditRepo{sessions: sessions, logs: logs}
}

func (r *AuditRepo) RecordSession(ctx context.Context, s *models.Session) error {
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	if _, err := r.sessions.InsertOne(ctx, s); err != nil {
		return fmt.Errorf("cannot record session: %w", err)
	}
	return nil
}

func (r *AuditRepo) Record(ctx context.Context, entry *models.AuditLog) error {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	if _, err := r.logs.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("cannot record audit log: %w", err)
	}
	return nil
}

func (r *AuditRepo) List(ctx context.Context, limit int64) ([]models.AuditLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := r.logs.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot list audit logs: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []models.AuditLog{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("cannot decode audit logs: %w", err)
	}
	return entries, nil
}
