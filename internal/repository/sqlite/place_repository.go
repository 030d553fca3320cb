package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"places-api/internal/domain"
	"places-api/internal/repository"
)

const createPlacesTable = `
CREATE TABLE IF NOT EXISTS places (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	address TEXT NOT NULL,
	lat REAL NOT NULL,
	lng REAL NOT NULL,
	image TEXT NOT NULL DEFAULT '',
	creator_id INTEGER NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY(creator_id) REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_places_creator_id ON places(creator_id);
`

const selectPlaceColumns = `p.id, p.title, p.description, p.address, p.lat, p.lng, p.image, p.creator_id, p.created_at, p.updated_at`

type PlaceRepository struct {
	db querier
}

func NewPlaceRepository(db *sql.DB) *PlaceRepository {
	return &PlaceRepository{db: db}
}

func (r *PlaceRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createPlacesTable); err != nil {
		return fmt.Errorf("create places table: %w", err)
	}
	return nil
}

func (r *PlaceRepository) Create(ctx context.Context, place *domain.Place) (int64, error) {
	now := time.Now().UTC()
	place.CreatedAt = now
	place.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO places (title, description, address, lat, lng, image, creator_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		place.Title,
		place.Description,
		place.Address,
		place.Location.Lat,
		place.Location.Lng,
		place.Image,
		place.CreatorID,
		place.CreatedAt,
		place.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert place: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id: %w", err)
	}
	place.ID = id
	return id, nil
}

func (r *PlaceRepository) Get(ctx context.Context, id int64) (*domain.Place, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+selectPlaceColumns+`
FROM places p
WHERE p.id=?`,
		id,
	)
	return scanPlace(row)
}

func (r *PlaceRepository) GetWithCreator(ctx context.Context, id int64) (*domain.Place, *domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+selectPlaceColumns+`,
	u.id, u.name, u.email, u.password_hash, u.image_url, u.created_at, u.updated_at
FROM places p
JOIN users u ON u.id = p.creator_id
WHERE p.id=?`,
		id,
	)

	var (
		place domain.Place
		user  domain.User
	)
	if err := row.Scan(
		&place.ID,
		&place.Title,
		&place.Description,
		&place.Address,
		&place.Location.Lat,
		&place.Location.Lng,
		&place.Image,
		&place.CreatorID,
		&place.CreatedAt,
		&place.UpdatedAt,
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.ImageURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, fmt.Errorf("place %d: %w", id, repository.ErrNotFound)
		}
		return nil, nil, fmt.Errorf("scan place with creator: %w", err)
	}

	ids, err := listPlaceIDs(ctx, r.db, user.ID)
	if err != nil {
		return nil, nil, err
	}
	user.Places = ids
	return &place, &user, nil
}

func (r *PlaceRepository) ListByCreator(ctx context.Context, creatorID int64) ([]domain.Place, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+selectPlaceColumns+`
FROM places p
WHERE p.creator_id=?
ORDER BY p.id ASC`, creatorID)
	if err != nil {
		return nil, fmt.Errorf("query places by creator: %w", err)
	}
	defer rows.Close()

	places := []domain.Place{}
	for rows.Next() {
		place, err := scanPlace(rows)
		if err != nil {
			return nil, err
		}
		places = append(places, *place)
	}

	return places, rows.Err()
}

func (r *PlaceRepository) Update(ctx context.Context, place *domain.Place) error {
	place.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
UPDATE places
SET title=?, description=?, updated_at=?
WHERE id=?`,
		place.Title,
		place.Description,
		place.UpdatedAt,
		place.ID,
	)
	if err != nil {
		return fmt.Errorf("update place: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("place update rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("place %d: %w", place.ID, repository.ErrNotFound)
	}
	return nil
}

func (r *PlaceRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM places WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete place: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("place delete rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("place %d: %w", id, repository.ErrNotFound)
	}
	return nil
}

func scanPlace(scanner interface {
	Scan(dest ...any) error
}) (*domain.Place, error) {
	var place domain.Place
	if err := scanner.Scan(
		&place.ID,
		&place.Title,
		&place.Description,
		&place.Address,
		&place.Location.Lat,
		&place.Location.Lng,
		&place.Image,
		&place.CreatorID,
		&place.CreatedAt,
		&place.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("place: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan place: %w", err)
	}
	return &place, nil
}

var _ repository.PlaceRepository = (*PlaceRepository)(nil)
