// backend-go/internal/repository/repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/restoops/backend-go/internal/domain"
)

// ErrItemNotFound is returned when an item id does not exist or is inactive.
var ErrItemNotFound = errors.New("repository: item not found")

type MovementRepository interface {
	// ListOutbound returns outbound movements for one item whose occurred_at
	// falls inside [start, end], oldest first.
	ListOutbound(ctx context.Context, itemID int64, start, end time.Time) ([]domain.UsageEvent, error)
	RecordMovement(ctx context.Context, event *domain.UsageEvent) error
}

type ItemRepository interface {
	GetItem(ctx context.Context, id int64) (*domain.Item, error)
	ListActiveItems(ctx context.Context) ([]*domain.Item, error)
	UpdateParLevels(ctx context.Context, id int64, parLow, parHigh float64) error
}
