package models

import (
	"time"
)

type UserRole string

const (
	UserRoleAdmin    UserRole = "admin"
	UserRoleSalesRep UserRole = "sales_rep"
	UserRoleManager  UserRole = "manager"
)

// User represents a sales team member.
// Collection: users
type User struct {
	ID          string     `bson:"_id,omitempty" json:"id"`
	Email       string     `bson:"email" json:"email"`
	Name        string     `bson:"name" json:"name"`
	Phone       string     `bson:"phone,omitempty" json:"phone,omitempty"`
	Role        UserRole   `bson:"role" json:"role"`
	Region      string     `bson:"region,omitempty" json:"region,omitempty"`
	Team        string     `bson:"team,omitempty" json:"team,omitempty"`
	IsActive    bool       `bson:"is_active" json:"isActive"`
	CreatedAt   time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updatedAt"`
	LastLoginAt *time.Time `bson:"last_login_at,omitempty" json:"lastLoginAt,omitempty"`
}
