package postgres

import (
	"embed"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/medlens/reviewsignal/internal/config"
	"github.com/medlens/reviewsignal/internal/infrastructure/monitoring/logging"
	"github.com/medlens/reviewsignal/pkg/errors"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate applies all pending schema migrations.  Already being at the
// latest version is not an error.
func Migrate(cfg config.DatabaseConfig, logger logging.Logger) error {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return errors.Wrap(err, errors.CodeMigrationError, "load embedded migrations")
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, BuildDSN(cfg))
	if err != nil {
		return errors.Wrap(err, errors.CodeMigrationError, "initialise migrator")
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, errors.CodeMigrationError, "apply migrations")
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return errors.Wrap(err, errors.CodeMigrationError, "read schema version")
	}
	logger.Info("schema migrations applied",
		logging.Any("version", version),
		logging.Bool("dirty", dirty),
	)
	return nil
}
