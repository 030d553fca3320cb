package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"places-api/internal/domain"
	"places-api/internal/repository"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	image_url TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS user_places (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	place_id INTEGER NOT NULL,
	UNIQUE(user_id, place_id),
	FOREIGN KEY(user_id) REFERENCES users(id),
	FOREIGN KEY(place_id) REFERENCES places(id)
);
CREATE INDEX IF NOT EXISTS idx_user_places_user_id ON user_places(user_id);
`

type UserRepository struct {
	db querier
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO users (name, email, password_hash, image_url, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.ImageURL,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return 0, fmt.Errorf("user %s: %w", user.Email, repository.ErrDuplicate)
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user last insert id: %w", err)
	}
	user.ID = id
	if user.Places == nil {
		user.Places = []int64{}
	}
	return id, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, email, password_hash, image_url, created_at, updated_at
FROM users
WHERE email = ?`,
		email,
	)
	user, err := scanUser(row)
	if err != nil {
		return nil, err
	}
	if user.Places, err = r.placeIDs(ctx, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, email, password_hash, image_url, created_at, updated_at
FROM users
WHERE id = ?`,
		id,
	)
	user, err := scanUser(row)
	if err != nil {
		return nil, err
	}
	if user.Places, err = r.placeIDs(ctx, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, email, password_hash, image_url, created_at, updated_at
FROM users
ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	// release the connection before the per-user queries below
	rows.Close()

	for i := range users {
		ids, err := r.placeIDs(ctx, users[i].ID)
		if err != nil {
			return nil, err
		}
		users[i].Places = ids
	}
	return users, nil
}

func (r *UserRepository) AddPlace(ctx context.Context, userID, placeID int64) error {
	if _, err := r.db.ExecContext(ctx, `
INSERT INTO user_places (user_id, place_id)
VALUES (?, ?)`,
		userID,
		placeID,
	); err != nil {
		return fmt.Errorf("add place %d to user %d: %w", placeID, userID, err)
	}

	if _, err := r.db.ExecContext(ctx, `UPDATE users SET updated_at=? WHERE id=?`, time.Now().UTC(), userID); err != nil {
		return fmt.Errorf("touch user %d: %w", userID, err)
	}
	return nil
}

func (r *UserRepository) RemovePlace(ctx context.Context, userID, placeID int64) error {
	if _, err := r.db.ExecContext(ctx, `
DELETE FROM user_places
WHERE user_id=? AND place_id=?`,
		userID,
		placeID,
	); err != nil {
		return fmt.Errorf("remove place %d from user %d: %w", placeID, userID, err)
	}

	if _, err := r.db.ExecContext(ctx, `UPDATE users SET updated_at=? WHERE id=?`, time.Now().UTC(), userID); err != nil {
		return fmt.Errorf("touch user %d: %w", userID, err)
	}
	return nil
}

func (r *UserRepository) placeIDs(ctx context.Context, userID int64) ([]int64, error) {
	return listPlaceIDs(ctx, r.db, userID)
}

func listPlaceIDs(ctx context.Context, db querier, userID int64) ([]int64, error) {
	rows, err := db.QueryContext(ctx, `
SELECT place_id
FROM user_places
WHERE user_id=?
ORDER BY id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query user places: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user place: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanUser(row interface {
	Scan(dest ...any) error
}) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.ImageURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
