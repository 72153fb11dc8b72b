// internal/models/center.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Center statuses are modeled with a simple active flag. Centers are never
// hard-deleted; deactivation hides them from residents.

// AcceptedMaterial describes one material category a center takes in.
type AcceptedMaterial struct {
	MaterialType string `bson:"materialType" json:"materialType"`
	Description  string `bson:"description,omitempty" json:"description,omitempty"`
}

type RecyclingCenter struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	CenterID     string             `bson:"centerID" json:"centerID"` // user-friendly unique ID, e.g. "RC-4F2A91B3"
	Name         string             `bson:"name" json:"name"`
	Description  string             `bson:"description" json:"description"`
	Address      string             `bson:"address" json:"address"`
	Latitude     float64            `bson:"latitude" json:"latitude"`
	Longitude    float64            `bson:"longitude" json:"longitude"`
	PhoneNumber  string             `bson:"phoneNumber" json:"phoneNumber"`
	Email        string             `bson:"email" json:"email"`
	Website      string             `bson:"website,omitempty" json:"website,omitempty"`
	OpeningHours string             `bson:"openingHours" json:"openingHours"`

	// Capacity is the daily intake capacity; CurrentLoad is how much of it
	// has been consumed by completed pickups.
	Capacity    int `bson:"capacity" json:"capacity"`
	CurrentLoad int `bson:"currentLoad" json:"currentLoad"`

	AcceptedMaterials []AcceptedMaterial `bson:"acceptedMaterials" json:"acceptedMaterials"`
	StaffMembers      []string           `bson:"staffMembers" json:"staffMembers"` // user IDs with the staff role
	ImageURL          string             `bson:"imageURL,omitempty" json:"imageURL,omitempty"`
	IsActive          bool               `bson:"isActive" json:"isActive"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Availability returns the percentage of unused capacity, clamped to
// [0, 100]. A center with zero capacity reports 0.
func (c *RecyclingCenter) Availability() float64 {
	if c.Capacity == 0 {
		return 0
	}
	pct := float64(c.Capacity-c.CurrentLoad) / float64(c.Capacity) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// Accepts reports whether the center takes in the given material category.
func (c *RecyclingCenter) Accepts(materialType string) bool {
	for _, m := range c.AcceptedMaterials {
		if m.MaterialType == materialType {
			return true
		}
	}
	return false
}

// HasStaff reports whether the given user is assigned to this center.
func (c *RecyclingCenter) HasStaff(userID string) bool {
	for _, id := range c.StaffMembers {
		if id == userID {
			return true
		}
	}
	return false
}
