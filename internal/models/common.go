// internal/models/common.go
package models

// Address is a structured object for location information. Coordinates are
// optional; nil latitude/longitude means the caller did not share them.
type Address struct {
	FullText  string   `bson:"fullText" json:"fullText"`
	Latitude  *float64 `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude *float64 `bson:"longitude,omitempty" json:"longitude,omitempty"`
}

// HasCoordinates reports whether both coordinates are present.
func (a Address) HasCoordinates() bool {
	return a.Latitude != nil && a.Longitude != nil
}
