package schedule

import (
	"log/slog"

	"github.com/gnu-lorien/workoutdistributor/internal/errors"
	"github.com/gnu-lorien/workoutdistributor/internal/sqlite"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.NewSentinel("not found")

// baseRepository holds the dependencies shared by all repositories.
type baseRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newBaseRepository(db *sqlite.Database, logger *slog.Logger) baseRepository {
	return baseRepository{
		db:     db,
		logger: logger,
	}
}

// repository bundles the per-entity repositories used by the service.
type repository struct {
	plans   *sqlitePlanRepository
	actions *sqliteActionRepository
}

// repositoryFactory creates the repositories backed by a shared database.
type repositoryFactory struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newRepositoryFactory(db *sqlite.Database, logger *slog.Logger) repositoryFactory {
	return repositoryFactory{
		db:     db,
		logger: logger,
	}
}

func (f repositoryFactory) newRepository() *repository {
	return &repository{
		plans:   newSQLitePlanRepository(f.db, f.logger),
		actions: newSQLiteActionRepository(f.db, f.logger),
	}
}
