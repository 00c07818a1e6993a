package services

import (
	"fmt"

	"github.com/uconn-hacklab/inventory-tracking/pkg/app"
	"github.com/uconn-hacklab/inventory-tracking/pkg/cache"
	"github.com/uconn-hacklab/inventory-tracking/services/inventory/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for the inventory
// bounded context.
type Services struct {
	Ledger *LedgerService
}

// New wires the ledger to PostgreSQL, the event bus and, when configured,
// the Redis item cache.
func New(a *app.Application) (*Services, error) {
	var itemCache ItemCache
	if a.Redis != nil {
		itemCache = cache.NewItemCache(a.Redis)
	}

	ledger, err := NewLedgerService(
		postgres.NewItemRepository(a.Db, a.EventBus),
		postgres.NewTransactionRepository(a.Db, a.EventBus),
		itemCache,
		a.Logger,
	)
	if err != nil {
		return nil, fmt.Errorf("inventory services: %w", err)
	}
	return &Services{Ledger: ledger}, nil
}
