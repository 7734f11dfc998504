package library

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

// Sentinel results for business-rule failures. The service layer folds
// these into boolean outcomes; anything else is a storage fault.
var (
	ErrDuplicate       = errors.New("row already exists")
	ErrUnknownBook     = errors.New("unknown book title")
	ErrUnknownUser     = errors.New("unknown username")
	ErrBookUnavailable = errors.New("book is already borrowed")
	ErrLoanNotFound    = errors.New("no matching loan")
)

// Database provides transaction-scoped helpers around the SQLite store.
// Every operation acquires its own transaction, performs one logical
// unit of work, and commits or rolls back atomically.
type Database struct {
	db *sqlx.DB
}

// Open opens (or creates) the SQLite database at dbPath.
func Open(dbPath string) (*Database, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	// Enable busy_timeout and foreign keys.
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", dbPath)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return &Database{db: db}, nil
}

// Close closes the underlying connection.
func (d *Database) Close() error { return d.db.Close() }

// ---------------------------------------------------------------------------
// Schema and seed data
// ---------------------------------------------------------------------------

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        username TEXT UNIQUE NOT NULL,
        password TEXT NOT NULL,
        role TEXT NOT NULL
    );`,
	`CREATE TABLE IF NOT EXISTS books (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        title TEXT UNIQUE NOT NULL
    );`,
	`CREATE TABLE IF NOT EXISTS borrowed (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        book_id INTEGER REFERENCES books(id),
        user_id INTEGER REFERENCES users(id)
    );`,
	`CREATE TABLE IF NOT EXISTS history (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        username TEXT,
        action TEXT
    );`,
}

// Initialize creates the four tables if absent and plants the seed rows:
// the admin account when no row with that username exists, and the
// default catalog when the books table is empty. Safe to call on every
// startup. Callers must treat any returned error as fatal since the
// application cannot function without its schema.
func (d *Database) Initialize(seed Seed, codec CredentialCodec) error {
	tx, err := d.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range schema {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	var count int
	if err := tx.Get(&count, `SELECT COUNT(*) FROM users WHERE username=?`, seed.AdminUsername); err != nil {
		return fmt.Errorf("check admin: %w", err)
	}
	if count == 0 {
		stored, err := codec.Encode(seed.AdminPassword)
		if err != nil {
			return fmt.Errorf("encode admin credential: %w", err)
		}
		if _, err := tx.Exec(`INSERT INTO users (username, password, role) VALUES (?, ?, ?)`,
			seed.AdminUsername, stored, RoleAdmin); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
	}

	if err := tx.Get(&count, `SELECT COUNT(*) FROM books`); err != nil {
		return fmt.Errorf("check catalog: %w", err)
	}
	if count == 0 {
		for _, title := range seed.Catalog {
			if _, err := tx.Exec(`INSERT INTO books (title) VALUES (?)`, title); err != nil {
				return fmt.Errorf("seed catalog: %w", err)
			}
		}
	}

	return tx.Commit()
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure
// from the sqlite driver.
func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			serr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

// InsertUser creates an account. Returns ErrDuplicate when the username
// is already taken.
func (d *Database) InsertUser(username, password string, role Role) error {
	_, err := d.db.Exec(`INSERT INTO users (username, password, role) VALUES (?, ?, ?)`,
		username, password, role)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// GetUser fetches one account by username. Returns ErrUnknownUser when
// no such account exists.
func (d *Database) GetUser(username string) (*User, error) {
	var u User
	err := d.db.Get(&u, `SELECT id, username, password, role FROM users WHERE username=?`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnknownUser
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UserID resolves a username to its generated id.
func (d *Database) UserID(username string) (int64, error) {
	var id int64
	err := d.db.Get(&id, `SELECT id FROM users WHERE username=?`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUnknownUser
	}
	return id, err
}

// ---------------------------------------------------------------------------
// Catalog
// ---------------------------------------------------------------------------

// InsertBook adds a title to the catalog. Returns ErrDuplicate when the
// title already exists.
func (d *Database) InsertBook(title string) error {
	_, err := d.db.Exec(`INSERT INTO books (title) VALUES (?)`, title)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// AvailableTitles returns titles of books with no active loan, in
// storage order.
func (d *Database) AvailableTitles() ([]string, error) {
	titles := []string{}
	err := d.db.Select(&titles, `
        SELECT title FROM books
        WHERE id NOT IN (SELECT book_id FROM borrowed)`)
	return titles, err
}

// ---------------------------------------------------------------------------
// Circulation
// ---------------------------------------------------------------------------

// Borrow records the loan and its history line in one transaction, so a
// borrow either creates both rows or neither. The availability check
// runs inside the same transaction as the insert; a book already out
// yields ErrBookUnavailable.
func (d *Database) Borrow(title, username string) error {
	tx, err := d.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var bookID int64
	err = tx.Get(&bookID, `SELECT id FROM books WHERE title=?`, title)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUnknownBook
	}
	if err != nil {
		return err
	}

	var userID int64
	err = tx.Get(&userID, `SELECT id FROM users WHERE username=?`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUnknownUser
	}
	if err != nil {
		return err
	}

	var out bool
	if err := tx.Get(&out, `SELECT EXISTS(SELECT 1 FROM borrowed WHERE book_id=?)`, bookID); err != nil {
		return err
	}
	if out {
		return ErrBookUnavailable
	}

	if _, err := tx.Exec(`INSERT INTO borrowed (book_id, user_id) VALUES (?, ?)`, bookID, userID); err != nil {
		if isUniqueViolation(err) {
			return ErrBookUnavailable
		}
		return err
	}
	if _, err := tx.Exec(`INSERT INTO history (username, action) VALUES (?, ?)`,
		username, fmt.Sprintf("Borrowed '%s'", title)); err != nil {
		return err
	}

	return tx.Commit()
}

// Return deletes the loan matching exactly that (book, user) pair and
// appends the history line, atomically. When the pair holds no loan,
// nothing is written and ErrLoanNotFound comes back.
func (d *Database) Return(title, username string) error {
	tx, err := d.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var bookID int64
	err = tx.Get(&bookID, `SELECT id FROM books WHERE title=?`, title)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUnknownBook
	}
	if err != nil {
		return err
	}

	var userID int64
	err = tx.Get(&userID, `SELECT id FROM users WHERE username=?`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUnknownUser
	}
	if err != nil {
		return err
	}

	res, err := tx.Exec(`DELETE FROM borrowed WHERE book_id=? AND user_id=?`, bookID, userID)
	if err != nil {
		return err
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrLoanNotFound
	}

	if _, err := tx.Exec(`INSERT INTO history (username, action) VALUES (?, ?)`,
		username, fmt.Sprintf("Returned '%s'", title)); err != nil {
		return err
	}

	return tx.Commit()
}

// ---------------------------------------------------------------------------
// History and reporting
// ---------------------------------------------------------------------------

// History returns all action strings recorded for username in insert order.
func (d *Database) History(username string) ([]string, error) {
	actions := []string{}
	err := d.db.Select(&actions, `SELECT action FROM history WHERE username=? ORDER BY id`, username)
	return actions, err
}

// ActiveLoans joins borrowed rows with their user and book for the report.
func (d *Database) ActiveLoans() ([]ActiveLoan, error) {
	loans := []ActiveLoan{}
	err := d.db.Select(&loans, `
        SELECT u.username AS username, b.title AS title
        FROM borrowed br
        JOIN users u ON br.user_id = u.id
        JOIN books b ON br.book_id = b.id
        ORDER BY br.id`)
	return loans, err
}
