package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cbodonnell/galplayer/pkg/repositories/models"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (creating if needed) the database at path and
// applies the embedded migrations.
func NewSQLiteRepository(ctx context.Context, path string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %v", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}
	// sqlite serializes writers anyway; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	ms, err := loadMigrations("sqlite")
	if err != nil {
		db.Close()
		return nil, err
	}
	for _, m := range ms {
		if _, err := db.ExecContext(ctx, m.sql); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute migration %s: %v", m.name, err)
		}
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) SaveProgress(ctx context.Context, save *models.Save) error {
	q := `
	INSERT INTO saves (session_id, story, scene_id, content_index, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (session_id) DO UPDATE SET
		story = excluded.story,
		scene_id = excluded.scene_id,
		content_index = excluded.content_index,
		updated_at = excluded.updated_at;
	`
	_, err := r.db.ExecContext(ctx, q, save.SessionID.String(), save.Story, save.SceneID, save.Index, save.CreatedAt, save.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save progress: %v", err)
	}

	return nil
}

func (r *SQLiteRepository) LatestSave(ctx context.Context, story string) (*models.Save, error) {
	q := `
	SELECT session_id, story, scene_id, content_index, created_at, updated_at
	FROM saves WHERE story = ? ORDER BY updated_at DESC LIMIT 1;
	`
	save, err := scanSQLiteSave(r.db.QueryRowContext(ctx, q, story))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan save: %v", err)
	}

	return save, nil
}

func (r *SQLiteRepository) ListSaves(ctx context.Context, story string, limit int) ([]*models.Save, error) {
	if limit <= 0 {
		limit = -1
	}
	q := `
	SELECT session_id, story, scene_id, content_index, created_at, updated_at
	FROM saves WHERE (? = '' OR story = ?) ORDER BY updated_at DESC LIMIT ?;
	`
	rows, err := r.db.QueryContext(ctx, q, story, story, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query saves: %v", err)
	}
	defer rows.Close()

	var saves []*models.Save
	for rows.Next() {
		save, err := scanSQLiteSave(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan save: %v", err)
		}
		saves = append(saves, save)
	}

	return saves, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLiteSave(row scanner) (*models.Save, error) {
	var (
		session string
		save    models.Save
	)
	if err := row.Scan(&session, &save.Story, &save.SceneID, &save.Index, &save.CreatedAt, &save.UpdatedAt); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(session)
	if err != nil {
		return nil, fmt.Errorf("invalid session id %q: %w", session, err)
	}
	save.SessionID = id
	return &save, nil
}
