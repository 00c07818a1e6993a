package app

import (
	"github.com/uconn-hacklab/inventory-tracking/pkg/cache"
	"github.com/uconn-hacklab/inventory-tracking/pkg/database"
	"github.com/uconn-hacklab/inventory-tracking/pkg/events"
	"github.com/uconn-hacklab/inventory-tracking/pkg/logger"
)

// Application holds the process-wide infrastructure handed to every bounded
// context. It is built once in cmd/* and never stored in a package variable.
//
// Logger is trace-aware; prefer the Context methods inside request scope:
//
//	app.Logger.InfoContext(ctx, "transaction recorded", "item_uuid", id)
//
// EventBus and Redis may be nil; services degrade to uncached reads and
// unpublished events respectively.
type Application struct {
	Db       *database.Database
	Logger   logger.Logger
	EventBus *events.EventBus
	Redis    *cache.RedisClient
}
