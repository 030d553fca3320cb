// Package repository declares the persistence contracts used by the services.
package repository

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate record")
)

// Repositories groups the repositories bound to one unit of work.
type Repositories struct {
	Users  UserRepository
	Places PlaceRepository
}

// UnitOfWork runs a set of writes spanning users and places atomically.
// The function's repositories are bound to a single transaction which is
// committed when fn returns nil and rolled back otherwise.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
