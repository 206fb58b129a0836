// backend-go/internal/repository/postgres/item_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/restoops/backend-go/internal/domain"
	"github.com/restoops/backend-go/internal/repository"
)

type itemRepository struct {
	db *DB
}

func NewItemRepository(db *DB) *itemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	query := `
		SELECT id, name, unit, category, current_stock,
		       COALESCE(par_low, 0) AS par_low,
		       COALESCE(par_high, 0) AS par_high,
		       COALESCE(lead_time_days, 0) AS lead_time_days,
		       active, created_at, updated_at
		FROM items
		WHERE id = $1
	`

	var item domain.Item
	if err := sqlx.GetContext(ctx, r.db, &item, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item %d: %w", id, err)
	}

	return &item, nil
}

func (r *itemRepository) ListActiveItems(ctx context.Context) ([]*domain.Item, error) {
	query := `
		SELECT id, name, unit, category, current_stock,
		       COALESCE(par_low, 0) AS par_low,
		       COALESCE(par_high, 0) AS par_high,
		       COALESCE(lead_time_days, 0) AS lead_time_days,
		       active, created_at, updated_at
		FROM items
		WHERE active = TRUE
		ORDER BY name
	`

	var items []*domain.Item
	if err := sqlx.SelectContext(ctx, r.db, &items, query); err != nil {
		return nil, fmt.Errorf("failed to list active items: %w", err)
	}

	return items, nil
}

func (r *itemRepository) UpdateParLevels(ctx context.Context, id int64, parLow, parHigh float64) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE items
			SET par_low = $2, par_high = $3, updated_at = NOW()
			WHERE id = $1
		`

		res, err := tx.ExecContext(ctx, query, id, parLow, parHigh)
		if err != nil {
			return fmt.Errorf("failed to update par levels for item %d: %w", id, err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read update result: %w", err)
		}
		if affected == 0 {
			return repository.ErrItemNotFound
		}

		return nil
	})
}
