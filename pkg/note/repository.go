package note

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var ErrNoteNotFound = errors.New("note not found")

type Repository interface {
	// Store persists a new note and assigns its id.
	Store(ctx context.Context, note Note) (Note, error)
	GetAll(ctx context.Context, projectId string) ([]Note, error)
	Get(ctx context.Context, id string) (Note, error)
	Update(ctx context.Context, note Note) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r RepositoryImpl) Store(ctx context.Context, note Note) (Note, error) {
	note.Id = uuid.NewString()

	query := `INSERT INTO note (id, title, content, is_pinned, color, project_id, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query,
		note.Id,
		note.Title,
		note.Content,
		note.IsPinned,
		string(note.Color),
		note.ProjectId,
		note.CreatedAt.UnixMilli(),
		note.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		err := fmt.Errorf("could not store note: %w", err)
		log.Error(err)
		return Note{}, err
	}

	return note, nil
}

func (r RepositoryImpl) GetAll(ctx context.Context, projectId string) ([]Note, error) {
	query := `SELECT id, title, content, is_pinned, color, project_id, created_at, updated_at
			  FROM note WHERE project_id = $1 ORDER BY updated_at DESC`
	args := []any{projectId}
	if projectId == "" {
		query = `SELECT id, title, content, is_pinned, color, project_id, created_at, updated_at
				 FROM note ORDER BY updated_at DESC`
		args = nil
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query notes: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		note, err := scanNote(rows.Scan)
		if err != nil {
			log.Error(err)
			return nil, err
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}

	return notes, nil
}

func (r RepositoryImpl) Get(ctx context.Context, id string) (Note, error) {
	query := `SELECT id, title, content, is_pinned, color, project_id, created_at, updated_at
			  FROM note WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	note, err := scanNote(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Note{}, ErrNoteNotFound
	}
	if err != nil {
		log.Error(err)
		return Note{}, err
	}
	return note, nil
}

func (r RepositoryImpl) Update(ctx context.Context, note Note) (bool, error) {
	query := `UPDATE note SET title = $1, content = $2, is_pinned = $3, color = $4, updated_at = $5
			  WHERE id = $6`
	result, err := r.db.ExecContext(ctx, query,
		note.Title,
		note.Content,
		note.IsPinned,
		string(note.Color),
		note.UpdatedAt.UnixMilli(),
		note.Id,
	)
	if err != nil {
		err := fmt.Errorf("could not update note: %w", err)
		log.Error(err)
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return false, err
	}
	return rowsAffected == 1, nil
}

func (r RepositoryImpl) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM note WHERE id = $1`, id)
	if err != nil {
		err := fmt.Errorf("could not delete note: %w", err)
		log.Error(err)
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return false, err
	}
	return rowsAffected == 1, nil
}

func scanNote(scan func(...any) error) (Note, error) {
	var note Note
	var color string
	var createdAtMillis, updatedAtMillis int64
	if err := scan(
		&note.Id,
		&note.Title,
		&note.Content,
		&note.IsPinned,
		&color,
		&note.ProjectId,
		&createdAtMillis,
		&updatedAtMillis,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Note{}, err
		}
		return Note{}, fmt.Errorf("could not scan note: %w", err)
	}
	note.Color = Color(color)
	note.CreatedAt = time.UnixMilli(createdAtMillis)
	note.UpdatedAt = time.UnixMilli(updatedAtMillis)
	return note, nil
}
