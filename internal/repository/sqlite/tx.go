package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"places-api/internal/repository"
)

// UnitOfWork runs repository work inside a single sqlite transaction.
type UnitOfWork struct {
	db     *sql.DB
	logger logrus.FieldLogger
}

func NewUnitOfWork(db *sql.DB, logger logrus.FieldLogger) *UnitOfWork {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &UnitOfWork{db: db, logger: logger}
}

// Do commits when fn returns nil and rolls back on error or panic.
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			u.logger.WithError(rbErr).Error("rollback tx")
		}
		if p := recover(); p != nil {
			u.logger.WithField("panic", p).Error("rolled back tx after panic")
			panic(p)
		}
	}()

	repos := repository.Repositories{
		Users:  &UserRepository{db: tx},
		Places: &PlaceRepository{db: tx},
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}

var _ repository.UnitOfWork = (*UnitOfWork)(nil)
