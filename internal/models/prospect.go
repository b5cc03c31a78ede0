package models

import (
	"time"
)

// Prospect is the account an activity is logged against.
// Collection: prospects
type Prospect struct {
	ID          string     `bson:"_id,omitempty" json:"id"`
	Name        string     `bson:"name" json:"name"`
	Company     string     `bson:"company,omitempty" json:"company,omitempty"`
	Email       string     `bson:"email,omitempty" json:"email,omitempty"`
	Phone       string     `bson:"phone,omitempty" json:"phone,omitempty"`
	Status      string     `bson:"status,omitempty" json:"status,omitempty"`
	Owner       string     `bson:"owner" json:"owner"`
	Region      string     `bson:"region,omitempty" json:"region,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updatedAt"`
	DeletedAt   *time.Time `bson:"deleted_at,omitempty" json:"deletedAt,omitempty"`
}
