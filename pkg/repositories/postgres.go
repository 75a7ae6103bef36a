package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/cbodonnell/galplayer/pkg/log"
	"github.com/cbodonnell/galplayer/pkg/repositories/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PostgresRepository struct {
	conn *pgx.Conn
}

// NewPostgresRepository connects to connStr and applies the embedded
// migrations. The caller is responsible for calling Close() on the repository.
func NewPostgresRepository(ctx context.Context, connStr string) (*PostgresRepository, error) {
	conn, err := connectDb(ctx, connStr)
	if err != nil {
		return nil, err
	}

	ms, err := loadMigrations("postgres")
	if err != nil {
		conn.Close(ctx)
		return nil, err
	}
	for _, m := range ms {
		if _, err := conn.Exec(ctx, m.sql); err != nil {
			conn.Close(ctx)
			return nil, fmt.Errorf("failed to execute migration %s: %v", m.name, err)
		}
	}

	return &PostgresRepository{
		conn: conn,
	}, nil
}

func connectDb(ctx context.Context, connStr string) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	var username string
	var database string
	err = conn.QueryRow(ctx, "SELECT current_user, current_database()").Scan(&username, &database)
	if err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("unable to query database: %v", err)
	}

	log.Info("Connected to %s as %s", database, username)

	return conn, nil
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	return r.conn.Close(ctx)
}

func (r *PostgresRepository) SaveProgress(ctx context.Context, save *models.Save) error {
	q := `
	INSERT INTO saves (session_id, story, scene_id, content_index, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (session_id) DO UPDATE SET story = $2, scene_id = $3, content_index = $4, updated_at = $6;
	`
	_, err := r.conn.Exec(ctx, q, save.SessionID.String(), save.Story, save.SceneID, save.Index, save.CreatedAt, save.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save progress: %v", err)
	}

	return nil
}

func (r *PostgresRepository) LatestSave(ctx context.Context, story string) (*models.Save, error) {
	q := `
	SELECT session_id::text, story, scene_id, content_index, created_at, updated_at
	FROM saves WHERE story = $1 ORDER BY updated_at DESC LIMIT 1;
	`
	save, err := scanPostgresSave(r.conn.QueryRow(ctx, q, story))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan save: %v", err)
	}

	return save, nil
}

func (r *PostgresRepository) ListSaves(ctx context.Context, story string, limit int) ([]*models.Save, error) {
	q := `
	SELECT session_id::text, story, scene_id, content_index, created_at, updated_at
	FROM saves WHERE ($1 = '' OR story = $1) ORDER BY updated_at DESC LIMIT $2;
	`
	var limitArg any
	if limit > 0 {
		limitArg = limit
	}
	rows, err := r.conn.Query(ctx, q, story, limitArg)
	if err != nil {
		return nil, fmt.Errorf("failed to query saves: %v", err)
	}
	defer rows.Close()

	var saves []*models.Save
	for rows.Next() {
		save, err := scanPostgresSave(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan save: %v", err)
		}
		saves = append(saves, save)
	}

	return saves, rows.Err()
}

func scanPostgresSave(row pgx.Row) (*models.Save, error) {
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
