// backend-go/internal/repository/postgres/movement_repository.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/restoops/backend-go/internal/domain"
)

type movementRepository struct {
	db *DB
}

func NewMovementRepository(db *DB) *movementRepository {
	return &movementRepository{db: db}
}

func (r *movementRepository) ListOutbound(ctx context.Context, itemID int64, start, end time.Time) ([]domain.UsageEvent, error) {
	query := `
		SELECT id, item_id, quantity, direction, movement_type, occurred_at
		FROM movements
		WHERE item_id = $1
		  AND direction = 'out'
		  AND occurred_at >= $2
		  AND occurred_at < $3
		ORDER BY occurred_at ASC
	`

	// end is inclusive at day granularity; the query bound is the next midnight.
	upper := end.AddDate(0, 0, 1)

	var events []domain.UsageEvent
	if err := sqlx.SelectContext(ctx, r.db, &events, query, itemID, start, upper); err != nil {
		return nil, fmt.Errorf("failed to list movements for item %d: %w", itemID, err)
	}

	return events, nil
}

func (r *movementRepository) RecordMovement(ctx context.Context, event *domain.UsageEvent) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO movements (item_id, quantity, direction, movement_type, occurred_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`

		err := tx.QueryRowContext(
			ctx,
			query,
			event.ItemID,
			event.Quantity,
			event.Direction,
			event.MovementType,
			event.OccurredAt,
		).Scan(&event.ID)
		if err != nil {
			return fmt.Errorf("failed to insert movement: %w", err)
		}

		return nil
	})
}
