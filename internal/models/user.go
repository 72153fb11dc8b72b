// internal/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles. Staff are scoped to the centers listing them in
// staffMembers; admins are unrestricted.
const (
	RoleNormal = "normal"
	RoleStaff  = "staff"
	RoleAdmin  = "admin"
)

// ValidRole reports whether r is a known role.
func ValidRole(r string) bool {
	return r == RoleNormal || r == RoleStaff || r == RoleAdmin
}

// UserProfile matches the user document in MongoDB. Password holds the
// bcrypt hash and is never serialized to JSON.
type UserProfile struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID   string             `bson:"userID" json:"userID"` // e.g. "USR-91B04E22"
	Email    string             `bson:"email" json:"email"`
	Name     string             `bson:"name" json:"name"`
	Password string             `bson:"password" json:"-"`
	Role     string             `bson:"role" json:"role"`

	PhoneNumber string   `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	Address     string   `bson:"address,omitempty" json:"address,omitempty"`
	City        string   `bson:"city,omitempty" json:"city,omitempty"`
	PostalCode  string   `bson:"postalCode,omitempty" json:"postalCode,omitempty"`
	Latitude    *float64 `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude   *float64 `bson:"longitude,omitempty" json:"longitude,omitempty"`

	// Recycling statistics, incremented when a request completes.
	TotalItemsRecycled  int     `bson:"totalItemsRecycled" json:"totalItemsRecycled"`
	TotalWeightRecycled float64 `bson:"totalWeightRecycled" json:"totalWeightRecycled"` // kg

	// Notification preferences.
	EmailNotifications bool `bson:"emailNotifications" json:"emailNotifications"`
	SMSNotifications   bool `bson:"smsNotifications" json:"smsNotifications"`
	Newsletter         bool `bson:"newsletter" json:"newsletter"`

	// Privacy settings.
	PublicProfile   bool `bson:"publicProfile" json:"publicProfile"`
	LocationSharing bool `bson:"locationSharing" json:"locationSharing"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
