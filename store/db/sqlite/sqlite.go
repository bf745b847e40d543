package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	// Import the SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/hrygo/promptdeck/internal/profile"
	"github.com/hrygo/promptdeck/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens the SQLite database at the profile DSN.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	// Sane defaults for a small single-writer database:
	// - busy_timeout prevents immediate SQLITE_BUSY under write contention.
	// - WAL journal mode prevents readers blocking the writer.
	// With the `modernc.org/sqlite` driver each pragma is passed as a
	// `_pragma=` query parameter.
	dsn := profile.DSN
	separator := "?"
	if strings.Contains(dsn, "?") {
		separator = "&"
	}
	dsn += separator + "_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)"

	sqliteDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	// A single connection is optimal for SQLite with WAL.
	sqliteDB.SetMaxOpenConns(1)
	sqliteDB.SetMaxIdleConns(1)
	sqliteDB.SetConnMaxLifetime(0)
	sqliteDB.SetConnMaxIdleTime(0)

	return &DB{db: sqliteDB, profile: profile}, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Migrate(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS system_prompt (
			id TEXT PRIMARY KEY,
			prompt TEXT NOT NULL DEFAULT '',
			updated_ts BIGINT NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		return errors.Wrap(err, "failed to create system_prompt table")
	}
	return nil
}
