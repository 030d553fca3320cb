package domain

import "time"

// Coordinates is a resolved geographic position.
type Coordinates struct {
	Lat float64
	Lng float64
}

// Place is a directory listing created by a user.
type Place struct {
	ID          int64
	Title       string
	Description string
	Address     string
	Location    Coordinates
	// Image is the stored path of the uploaded place image.
	Image     string
	CreatorID int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOwnedBy reports whether userID created the place.
func (p *Place) IsOwnedBy(userID int64) bool {
	return p.CreatorID == userID
}
