package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session records a successful login.
type Session struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AccountID primitive.ObjectID `bson:"accountId" json:"accountId"`
	Kind      string             `bson:"kind" json:"kind"`
	Role      string             `bson:"role" json:"role"`
	IP        string             `bson:"ip" json:"ip"`
	Device    string             `bson:"device" json:"device"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

type AuditLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ActorID   string             `bson:"actorId" json:"actorId"`
	Role      string             `bson:"role" json:"role"`
	Action    string             `bson:"action" json:"action"`
	Method    string             `bson:"method" json:"method"`
	Path      string             `bson:"path" json:"path"`
	Status    int                `bson:"status" json:"status"`
	IP        string             `bson:"ip" json:"ip"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
