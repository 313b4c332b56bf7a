package config

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Database struct {
	Client *mongo.Client
	DB     *mongo.Database

	Users       *mongo.Collection
	Sessions    *mongo.Collection
	Staff       *mongo.Collection
	Attendance  *mongo.Collection
	Tables      *mongo.Collection
	Categories  *mongo.Collection
	MenuItems   *mongo.Collection
	Orders      *mongo.Collection
	Payments    *mongo.Collection
	Inventory   *mongo.Collection
	Restaurants *mongo.Collection
	AuditLogs   *mongo.Collection
}

func ConnectDatabase(ctx context.Context, s *Settings) (*Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Client().ApplyURI(s.MongoURI).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("cannot ping MongoDB: %w", err)
	}

	db := client.Database(s.MongoDB)
	d := &Database{
		Client:      client,
		DB:          db,
		Users:       db.Collection("users"),
		Sessions:    db.Collection("sessions"),
		Staff:       db.Collection("staff"),
		Attendance:  db.Collection("attendance"),
		Tables:      db.Collection("tables"),
		Categories:  db.Collection("categories"),
		MenuItems:   db.Collection("menuitems"),
		Orders:      db.Collection("orders"),
		Payments:    db.Collection("payments"),
		Inventory:   db.Collection("inventory"),
		Restaurants: db.Collection("restaurants"),
		AuditLogs:   db.Collection("auditlogs"),
	}

	if err := d.ensureIndexes(ctx); err != nil {
		return nil, err
	}

	log.Info().Str("database", s.MongoDB).Msg("connected to MongoDB")
	return d, nil
}

func (d *Database) ensureIndexes(ctx context.Context) error {
	unique := func(keys bson.D) mongo.IndexModel {
		return mongo.IndexModel{Keys: keys, Options: options.Index().SetUnique(true)}
	}
	plain := func(keys bson.D) mongo.IndexModel {
		return mongo.IndexModel{Keys: keys}
	}

	indexes := []struct {
		coll   *mongo.Collection
		models []mongo.IndexModel
	}{
		{d.Users, []mongo.IndexModel{unique(bson.D{{Key: "email", Value: 1}})}},
		{d.Staff, []mongo.IndexModel{unique(bson.D{{Key: "email", Value: 1}})}},
		{d.Attendance, []mongo.IndexModel{unique(bson.D{{Key: "staff", Value: 1}, {Key: "date", Value: 1}})}},
		{d.Tables, []mongo.IndexModel{unique(bson.D{{Key: "number", Value: 1}})}},
		{d.Categories, []mongo.IndexModel{unique(bson.D{{Key: "name", Value: 1}})}},
		{d.MenuItems, []mongo.IndexModel{plain(bson.D{{Key: "category", Value: 1}})}},
		{d.Orders, []mongo.IndexModel{
			plain(bson.D{{Key: "table", Value: 1}, {Key: "status", Value: 1}}),
			plain(bson.D{{Key: "createdAt", Value: -1}}),
		}},
		{d.Payments, []mongo.IndexModel{unique(bson.D{{Key: "orderId", Value: 1}})}},
		{d.Inventory, []mongo.IndexModel{unique(bson.D{{Key: "name", Value: 1}})}},
		{d.AuditLogs, []mongo.IndexModel{plain(bson.D{{Key: "createdAt", Value: -1}})}},
	}

	for _, ix := range indexes {
		if _, err := ix.coll.Indexes().CreateMany(ctx, ix.models); err != nil {
			return fmt.Errorf("cannot create indexes on %s: %w", ix.coll.Name(), err)
		}
	}
	return nil
}

func (d *Database) Disconnect(ctx context.Context) error {
	if err := d.Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("cannot disconnect from MongoDB: %w", err)
	}
	log.Info().Msg("disconnected from MongoDB")
	return nil
}
