package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"floorplan-editor/internal/editor/session"
)

// ============================================================
// SQLite Blob Store
// ============================================================

//go:embed schema.sql
var embeddedSchema string

type Repository struct {
	db *sql.DB
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Init применяет миграцию из файла. При пустом пути берётся встроенная схема.
func (r *Repository) Init(ctx context.Context, migrationsPath string) error {
	if err := r.runMigrations(ctx, migrationsPath); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}

// Load возвращает blob по имени или session.ErrNotFound.
func (r *Repository) Load(ctx context.Context, key string) ([]byte, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT payload
        FROM layout_blobs
        WHERE name = ?
    `, key)

	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, session.ErrNotFound
		}
		return nil, err
	}
	return payload, nil
}

// Save перезаписывает blob целиком.
func (r *Repository) Save(ctx context.Context, key string, data []byte) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO layout_blobs (name, payload, updated_at)
        VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
        ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
    `, key, data)
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Delete удаляет blob. Отсутствие записи не считается ошибкой.
func (r *Repository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM layout_blobs WHERE name = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// List возвращает имена раскладок с префиксом.
func (r *Repository) List(ctx context.Context, prefix string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT name
        FROM layout_blobs
        WHERE substr(name, 1, length(?)) = ?
        ORDER BY name
    `, prefix, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ============================================================
// Migrations
// ============================================================

func (r *Repository) runMigrations(ctx context.Context, migrationsPath string) error {
	sqlText := embeddedSchema
	if migrationsPath != "" {
		data, err := os.ReadFile(migrationsPath)
		if err != nil {
			return fmt.Errorf("read migration: %w", err)
		}
		sqlText = string(data)
	}
	if strings.TrimSpace(sqlText) == "" {
		return fmt.Errorf("empty migration")
	}
	if _, err := r.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}

// OpenSQLite открывает sqlite по указанному пути.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
