package postgres

import (
	"log/slog"

	"inspections-server/internal/shared/database"
)

// Store is the multi-table implementation of the inspection repository: one
// table per entity, children fetched by foreign key, rows scoped to their
// owner and to the parent chain named in the request. Cascades run in the
// database via ON DELETE CASCADE.
type Store struct {
	db     *database.DB
	logger *slog.Logger
}

func NewStore(db *database.DB, logger *slog.Logger) *Store {
	logger.Debug("Initializing postgres inspection store")

	return &Store{
		db:     db,
		logger: logger,
	}
}
