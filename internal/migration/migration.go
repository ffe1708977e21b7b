// Package migration applies the numbered SQL files under migrations/ and
// tracks the applied version in a single-row schema_version table.
package migration

import (
	"cmp"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"
)

var (
	ErrSchemaTooNew = errors.New("database schema is newer than this build of streaklit")
	ErrSchemaBehind = errors.New("database schema is out of date")
)

// Dialect holds the per-driver SQL differences
type Dialect struct {
	Name        string
	placeholder string
}

var (
	SQLite   = Dialect{Name: "sqlite", placeholder: "?"}
	Postgres = Dialect{Name: "postgres", placeholder: "$1"}
)

func (d Dialect) setVersionSQL() string {
	return "INSERT INTO schema_version (version) VALUES (" + d.placeholder + ")"
}

type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Plan is the difference between the database and the embedded files
type Plan struct {
	Current int
	Latest  int
	Pending []Migration
}

type Runner struct {
	db      *sql.DB
	fsys    fs.FS
	dialect Dialect
}

func NewRunner(db *sql.DB, fsys fs.FS, d Dialect) *Runner {
	return &Runner{db: db, fsys: fsys, dialect: d}
}

// parseFileName splits "003_add_shop.sql" into 3 and "add_shop"
func parseFileName(name string) (int, string, error) {
	stem := strings.TrimSuffix(name, ".sql")
	num, label, ok := strings.Cut(stem, "_")
	if !ok || label == "" {
		return 0, "", fmt.Errorf("invalid migration filename %s (expected NNN_name.sql)", name)
	}
	version, err := strconv.Atoi(num)
	if err != nil {
		return 0, "", fmt.Errorf("invalid version number in filename %s: %w", name, err)
	}
	if version < 1 {
		return 0, "", fmt.Errorf("invalid version number in filename %s: must be at least 1", name)
	}
	return version, label, nil
}

// Load reads every .sql file at the root of fsys, ordered by version
func Load(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var list []Migration
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".sql" {
			continue
		}
		version, label, err := parseFileName(e.Name())
		if err != nil {
			return nil, err
		}
		body, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", e.Name(), err)
		}
		list = append(list, Migration{Version: version, Name: label, SQL: string(body)})
	}

	slices.SortFunc(list, func(a, b Migration) int { return cmp.Compare(a.Version, b.Version) })
	for i := 1; i < len(list); i++ {
		if list[i].Version == list[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version %d", list[i].Version)
		}
	}
	return list, nil
}

func (r *Runner) ensureTable() error {
	_, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	return nil
}

// Version returns the applied schema version, 0 for a fresh database
func (r *Runner) Version() (int, error) {
	if err := r.ensureTable(); err != nil {
		return 0, err
	}
	var v int
	err := r.db.QueryRow("SELECT version FROM schema_version").Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

func (r *Runner) writeVersion(tx *sql.Tx, version int) error {
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return fmt.Errorf("failed to clear schema version: %w", err)
	}
	if _, err := tx.Exec(r.dialect.setVersionSQL(), version); err != nil {
		return fmt.Errorf("failed to write schema version: %w", err)
	}
	return nil
}

// SetVersion overwrites the recorded version without running any SQL files
func (r *Runner) SetVersion(version int) error {
	if err := r.ensureTable(); err != nil {
		return err
	}
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := r.writeVersion(tx, version); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *Runner) Plan() (Plan, error) {
	current, err := r.Version()
	if err != nil {
		return Plan{}, err
	}
	all, err := Load(r.fsys)
	if err != nil {
		return Plan{}, err
	}

	plan := Plan{Current: current}
	if len(all) > 0 {
		plan.Latest = all[len(all)-1].Version
	}
	if current > plan.Latest {
		return plan, fmt.Errorf("%w (database %d, supported %d), upgrade streaklit", ErrSchemaTooNew, current, plan.Latest)
	}
	for _, m := range all {
		if m.Version > current {
			plan.Pending = append(plan.Pending, m)
		}
	}
	return plan, nil
}

// Apply runs each pending migration in its own transaction together with
// the version bump, stopping at the first failure. logFn may be nil.
func (r *Runner) Apply(logFn func(string)) (int, error) {
	if logFn == nil {
		logFn = func(string) {}
	}

	plan, err := r.Plan()
	if err != nil {
		return 0, err
	}
	if len(plan.Pending) == 0 {
		logFn(fmt.Sprintf("Database schema is up to date (version %d)", plan.Current))
		return 0, nil
	}

	logFn(fmt.Sprintf("Migrating %s schema from version %d to %d", r.dialect.Name, plan.Current, plan.Latest))
	start := time.Now()

	for i, m := range plan.Pending {
		if err := r.applyOne(m); err != nil {
			return i, err
		}
		logFn(fmt.Sprintf("  ✓ %03d %s", m.Version, m.Name))
	}

	logFn(fmt.Sprintf("Applied %d migration(s) in %v", len(plan.Pending), time.Since(start).Round(time.Millisecond)))
	return len(plan.Pending), nil
}

func (r *Runner) applyOne(m Migration) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
	}
	if _, err := tx.Exec(m.SQL); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
	}
	if err := r.writeVersion(tx, m.Version); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("migration %d: %w", m.Version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
	}
	return nil
}

// Check returns ErrSchemaTooNew or ErrSchemaBehind unless the database is
// exactly at the latest version
func (r *Runner) Check() error {
	plan, err := r.Plan()
	if err != nil {
		return err
	}
	if len(plan.Pending) > 0 {
		return fmt.Errorf("%w (database %d, latest %d)", ErrSchemaBehind, plan.Current, plan.Latest)
	}
	return nil
}
