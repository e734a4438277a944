// The initialization package contains functions that set up the storage backend selected by the configuration.
package initialization

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate"
	"github.com/golang-migrate/migrate/database/sqlite3"
	_ "github.com/golang-migrate/migrate/source/file"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/gosocial/internal/config"
	"github.com/sidereusnuntius/gosocial/internal/storage"
	"github.com/sidereusnuntius/gosocial/internal/storage/filestore"
	"github.com/sidereusnuntius/gosocial/internal/storage/sqlstore"
)

var ErrWrongDriver = errors.New("migrations only apply to the sqlite driver")

// SetupDB applies all remaining migrations found in folder. The connection is left open.
func SetupDB(db *sql.DB, folder, dbname string) error {
	log.Info().Str("folder", folder).Msg("starting migrations")
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		log.Error().Err(err).Msg("failed to create sqlite3 migration driver")
		return err
	}

	mig, err := migrate.NewWithDatabaseInstance(
		"file://"+folder,
		dbname,
		driver,
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to create Migrate object")
		return err
	}

	err = mig.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info().Msg("database schema is up to date")
		return nil
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to run migrations")
		return err
	}

	log.Info().Msg("migrations applied")
	return nil
}

func OpenDB(connString string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", connString)
	if err != nil {
		log.Error().Err(err).Str("connection string", connString).Msg("failed to open database")
		return nil, err
	}

	if err = db.Ping(); err != nil {
		db.Close()
		log.Error().Err(err).Str("connection string", connString).Msg("failed to connect to database")
		return nil, err
	}
	return db, nil
}

// OpenStore builds the storage backend named by cfg.Driver.
func OpenStore(cfg *config.Configuration) (storage.Store, error) {
	switch cfg.Driver {
	case config.DriverFS:
		return filestore.New(cfg.FsRoot)
	case config.DriverSQLite:
		db, err := OpenDB(cfg.DbUrl)
		if err != nil {
			return nil, err
		}
		return sqlstore.New(db), nil
	}
	return nil, fmt.Errorf("%w: %q", config.ErrDriver, cfg.Driver)
}

// Migrate opens the configured SQLite database and brings its schema up to date.
func Migrate(cfg *config.Configuration) error {
	if cfg.Driver != config.DriverSQLite {
		return ErrWrongDriver
	}

	db, err := OpenDB(cfg.DbUrl)
	if err != nil {
		return err
	}
	defer db.Close()

	return SetupDB(db, cfg.MigrationsFolder, cfg.DbUrl)
}
