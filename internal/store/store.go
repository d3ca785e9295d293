package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaTemplate string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Current layout (audit + status tables with query indexes)
const currentSchemaVersion = 1

// Default table names, overridable through Options for deployments that share
// the database file with other tooling.
const (
	DefaultAuditTable  = "file_operations"
	DefaultStatusTable = "file_status"
)

// identifierRE restricts configurable table names to plain SQL identifiers.
// Table names are substituted into DDL/DML text, so anything else is refused.
var identifierRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Options configures a Store at open time.
type Options struct {
	AuditTable  string // defaults to DefaultAuditTable
	StatusTable string // defaults to DefaultStatusTable
}

// Store provides durable storage for the audit ledger and file status table.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db          *sql.DB
	auditTable  string
	statusTable string
}

// Open creates or opens a SQLite database at the given path, creating
// parent directories as needed.
// Applies required pragmas and migrations automatically.
//
// This function is idempotent - safe to call multiple times.
func Open(path string, opts Options) (*Store, error) {
	auditTable := opts.AuditTable
	if auditTable == "" {
		auditTable = DefaultAuditTable
	}
	statusTable := opts.StatusTable
	if statusTable == "" {
		statusTable = DefaultStatusTable
	}
	for _, name := range []string{auditTable, statusTable} {
		if !identifierRE.MatchString(name) {
			return nil, fmt.Errorf("invalid table name %q", name)
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db, auditTable, statusTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db, auditTable: auditTable, statusTable: statusTable}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and records the schema
// version. Idempotent.
func applySchema(db *sql.DB, auditTable, statusTable string) error {
	ddl := fmt.Sprintf(schemaTemplate, auditTable, statusTable)
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version < currentSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}

	return nil
}
