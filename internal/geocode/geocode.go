// Package geocode resolves free-text addresses to coordinates.
package geocode

import (
	"context"
	"errors"

	"places-api/internal/domain"
)

// ErrNoResults is returned when the provider cannot place the address.
var ErrNoResults = errors.New("no geocoding results")

// Geocoder resolves a single address to a latitude/longitude pair.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)
}
