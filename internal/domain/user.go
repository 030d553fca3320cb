package domain

import "time"

// User represents a registered account that owns places.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	ImageURL     string
	// Places lists the ids of the places this user created, in creation order.
	Places    []int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OwnsPlace reports whether placeID is present in the user's place list.
func (u *User) OwnsPlace(placeID int64) bool {
	for _, id := range u.Places {
		if id == placeID {
			return true
		}
	}
	return false
}
