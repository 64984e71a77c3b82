package library

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// Database stores catalog snapshots in a SQLite file.
type Database struct {
	db *sql.DB

	insertBookStmt *sql.Stmt
}

// NewDatabase opens (or creates) the SQLite database at dbPath, applies schema
// migrations, and prepares common statements.
func NewDatabase(dbPath string) (*Database, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create db dir")
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	database := &Database{db: db}
	if err := database.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return database, nil
}

// Close releases prepared statements and closes the DB.
func (d *Database) Close() error {
	if d.insertBookStmt != nil {
		d.insertBookStmt.Close()
	}
	return d.db.Close()
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func applyMigrations(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return errors.Wrap(err, "enable WAL")
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return errors.Wrap(err, "create meta")
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS books (
            position INTEGER NOT NULL,
            id TEXT PRIMARY KEY,
            title TEXT NOT NULL,
            author TEXT NOT NULL,
            genre TEXT NOT NULL,
            available BOOLEAN NOT NULL DEFAULT 1,
            due_date TEXT,
            checkouts INTEGER NOT NULL DEFAULT 0 CHECK (checkouts >= 0)
        );`,
		`CREATE INDEX IF NOT EXISTS idx_books_position ON books(position);`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return errors.Wrap(err, "apply migration")
		}
	}
	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
            ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, schemaVersion); err != nil {
		return errors.Wrap(err, "record schema version")
	}

	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Prepared statements
// ---------------------------------------------------------------------------

func (d *Database) prepareStatements() error {
	var err error
	if d.insertBookStmt, err = d.db.Prepare(`INSERT INTO books(position,id,title,author,genre,available,due_date,checkouts) VALUES(?,?,?,?,?,?,?,?)`); err != nil {
		return errors.Wrap(err, "prepare insert")
	}
	return nil
}

// ---------------------------------------------------------------------------
// Snapshots
// ---------------------------------------------------------------------------

// SaveSnapshot replaces the stored catalog with snaps in one transaction.
func (d *Database) SaveSnapshot(snaps []BookSnapshot) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM books`); err != nil {
		return errors.Wrap(err, "clear books")
	}

	insert := tx.Stmt(d.insertBookStmt)
	defer insert.Close()
	for i, s := range snaps {
		var due sql.NullString
		if s.DueDate != nil {
			due = sql.NullString{String: FormatDate(s.DueDate), Valid: true}
		}
		if _, err := insert.Exec(i, s.ID, s.Title, s.Author, s.Genre, s.Available, due, s.Checkouts); err != nil {
			return errors.Wrapf(err, "insert book %q", s.ID)
		}
	}
	return tx.Commit()
}

// LoadSnapshot returns the stored catalog in its original order.
func (d *Database) LoadSnapshot() ([]BookSnapshot, error) {
	return loadSnapshot(d.db)
}

// ReadSnapshotFile reads a snapshot database without creating or migrating
// anything, so a foreign SQLite file is rejected untouched.
func ReadSnapshotFile(dbPath string) ([]BookSnapshot, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, errors.Wrap(err, "open snapshot db")
	}

	// mode=rw refuses to create a missing file.
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=rw&_busy_timeout=5000", dbPath))
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	defer db.Close()

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='books'`).Scan(&n); err != nil {
		return nil, errors.Wrap(err, "inspect snapshot db")
	}
	if n == 0 {
		return nil, errors.Errorf("%s is not a catalog snapshot: no books table", dbPath)
	}
	return loadSnapshot(db)
}

func loadSnapshot(db *sql.DB) ([]BookSnapshot, error) {
	rows, err := db.Query(`SELECT id,title,author,genre,available,due_date,checkouts FROM books ORDER BY position`)
	if err != nil {
		return nil, errors.Wrap(err, "query books")
	}
	defer rows.Close()

	var snaps []BookSnapshot
	for rows.Next() {
		var (
			s   BookSnapshot
			due sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.Title, &s.Author, &s.Genre, &s.Available, &due, &s.Checkouts); err != nil {
			return nil, err
		}
		if due.Valid {
			d, err := ParseDate(due.String)
			if err != nil {
				return nil, errors.Wrapf(err, "book %q due_date", s.ID)
			}
			s.DueDate = &d
		}
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}
