// Package migrate drives the goose migrations that ship with the storefront.
// The SQL files are embedded so the API binary can apply them without the
// source tree on disk.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/pressly/goose/v3"

	"github.com/baxeinwear/storefront-backend/pkg/config"
)

const DefaultDir = "pkg/migrate/migrations"

//go:embed migrations/*.sql
var embedded embed.FS

// Dialect maps the configured DB driver to a goose dialect name.
func Dialect(driver string) string {
	if strings.EqualFold(strings.TrimSpace(driver), config.DriverSQLite) {
		return "sqlite3"
	}
	return "postgres"
}

// Runner applies migrations from either the embedded set or a directory on
// disk. Goose keeps its dialect and base FS globally, so a Runner must not be
// used concurrently with another one.
type Runner struct {
	db      *sql.DB
	dialect string
	dir     string
	fsys    fs.FS
}

// Embedded returns a Runner over the migrations compiled into the binary.
func Embedded(db *sql.DB, driver string) *Runner {
	return &Runner{db: db, dialect: Dialect(driver), dir: "migrations", fsys: embedded}
}

// FromDir returns a Runner reading migrations from dir at call time.
func FromDir(db *sql.DB, driver, dir string) *Runner {
	return &Runner{db: db, dialect: Dialect(driver), dir: dir}
}

func (r *Runner) prepare() error {
	if r.db == nil {
		return errors.New("migrate: nil database handle")
	}
	if r.dir == "" {
		return errors.New("migrate: empty migrations dir")
	}
	goose.SetBaseFS(r.fsys)
	if err := goose.SetDialect(r.dialect); err != nil {
		return fmt.Errorf("goose dialect %q: %w", r.dialect, err)
	}
	return nil
}

// Exec runs a plain goose command such as up, down or status.
func (r *Runner) Exec(ctx context.Context, command string, args ...string) error {
	if err := r.prepare(); err != nil {
		return err
	}
	if err := goose.RunContext(ctx, command, r.db, r.dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// To moves the schema up or down until it sits at version.
func (r *Runner) To(ctx context.Context, version string) error {
	target, err := strconv.ParseInt(strings.TrimSpace(version), 10, 64)
	if err != nil {
		return fmt.Errorf("version %q is not a YYYYMMDDHHMMSS stamp: %w", version, err)
	}
	if err := r.prepare(); err != nil {
		return err
	}

	current, err := goose.GetDBVersionContext(ctx, r.db)
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if current < target {
		err = goose.UpToContext(ctx, r.db, r.dir, target)
	} else if current > target {
		err = goose.DownToContext(ctx, r.db, r.dir, target)
	}
	if err != nil {
		return fmt.Errorf("moving schema %d -> %d: %w", current, target, err)
	}
	return nil
}
