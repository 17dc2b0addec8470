package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3" // registers "sqlite3"
	_ "modernc.org/sqlite"          // registers "sqlite"
)

// SqliteStore keeps the list in a single SQLite table. Rows are returned in
// insertion order.
//
// Table:
//
//	shopping_list(item TEXT, description TEXT)
type SqliteStore struct {
	db *sql.DB
}

// NewSqliteStore opens dbPath with the given database/sql driver name
// ("sqlite3" for mattn/go-sqlite3, "sqlite" for modernc.org/sqlite) and
// creates the table if it is absent.
func NewSqliteStore(dbPath, driver string) (*SqliteStore, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if driver == "" {
		driver = "sqlite3"
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := sql.Open(driver, filepath.Clean(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS shopping_list (
		item TEXT,
		description TEXT
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}
	return &SqliteStore{db: db}, nil
}

func (s *SqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SqliteStore) Load(ctx context.Context) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT item, description FROM shopping_list ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("query shopping list: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var name, desc sql.NullString
		if err := rows.Scan(&name, &desc); err != nil {
			return nil, fmt.Errorf("scan shopping list row: %w", err)
		}
		items = append(items, Item{Name: name.String, Description: desc.String})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read shopping list rows: %w", err)
	}
	return items, nil
}

// Save deletes every row and reinserts items in one transaction.
func (s *SqliteStore) Save(ctx context.Context, items []Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM shopping_list"); err != nil {
		return fmt.Errorf("clear shopping list: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO shopping_list (item, description) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for _, it := range items {
		if _, err := stmt.ExecContext(ctx, it.Name, it.Description); err != nil {
			return fmt.Errorf("insert %q: %w", it.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
