package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var ErrTaskNotFound = errors.New("task not found")

type Repository interface {
	// Store persists a new task and assigns its id.
	Store(ctx context.Context, t Task) (Task, error)
	GetAll(ctx context.Context, projectId string) ([]Task, error)
	Get(ctx context.Context, id string) (Task, error)
	Update(ctx context.Context, t Task) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r RepositoryImpl) Store(ctx context.Context, t Task) (Task, error) {
	t.Id = uuid.NewString()

	inCharge, err := EncodeAssignees(t.InCharge)
	if err != nil {
		return Task{}, fmt.Errorf("could not encode assignees: %w", err)
	}
	updates, err := EncodeUpdates(t.Updates)
	if err != nil {
		return Task{}, fmt.Errorf("could not encode updates: %w", err)
	}

	query := `INSERT INTO task (id, title, status, in_charge, updates, project_id, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.db.ExecContext(ctx, query,
		t.Id,
		t.Title,
		string(t.Status),
		string(inCharge),
		string(updates),
		t.ProjectId,
		t.CreatedAt.UnixMilli(),
	)
	if err != nil {
		err := fmt.Errorf("could not store task: %w", err)
		log.Error(err)
		return Task{}, err
	}

	return t, nil
}

func (r RepositoryImpl) GetAll(ctx context.Context, projectId string) ([]Task, error) {
	query := `SELECT id, title, status, in_charge, updates, project_id, created_at
			  FROM task WHERE project_id = $1 ORDER BY created_at DESC`
	args := []any{projectId}
	if projectId == "" {
		query = `SELECT id, title, status, in_charge, updates, project_id, created_at
				 FROM task ORDER BY created_at DESC`
		args = nil
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query tasks: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			log.Error(err)
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}

	return tasks, nil
}

func (r RepositoryImpl) Get(ctx context.Context, id string) (Task, error) {
	query := `SELECT id, title, status, in_charge, updates, project_id, created_at
			  FROM task WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	t, err := scanTask(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, ErrTaskNotFound
	}
	if err != nil {
		log.Error(err)
		return Task{}, err
	}
	return t, nil
}

func (r RepositoryImpl) Update(ctx context.Context, t Task) (bool, error) {
	inCharge, err := EncodeAssignees(t.InCharge)
	if err != nil {
		return false, fmt.Errorf("could not encode assignees: %w", err)
	}
	updates, err := EncodeUpdates(t.Updates)
	if err != nil {
		return false, fmt.Errorf("could not encode updates: %w", err)
	}

	query := `UPDATE task SET title = $1, status = $2, in_charge = $3, updates = $4 WHERE id = $5`
	result, err := r.db.ExecContext(ctx, query,
		t.Title,
		string(t.Status),
		string(inCharge),
		string(updates),
		t.Id,
	)
	if err != nil {
		err := fmt.Errorf("could not update task: %w", err)
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
	result, err := r.db.ExecContext(ctx, `DELETE FROM task WHERE id = $1`, id)
	if err != nil {
		err := fmt.Errorf("could not delete task: %w", err)
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

func scanTask(scan func(...any) error) (Task, error) {
	var t Task
	var status string
	var inChargeRaw, updatesRaw []byte
	var createdAtMillis int64
	if err := scan(&t.Id, &t.Title, &status, &inChargeRaw, &updatesRaw, &t.ProjectId, &createdAtMillis); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Task{}, err
		}
		return Task{}, fmt.Errorf("could not scan task: %w", err)
	}
	t.Status = Status(status)
	t.CreatedAt = time.UnixMilli(createdAtMillis)

	inCharge, err := DecodeAssignees(inChargeRaw)
	if err != nil {
		return Task{}, fmt.Errorf("could not decode assignees for task %s: %w", t.Id, err)
	}
	t.InCharge = inCharge

	updates, err := DecodeUpdates(updatesRaw, t.CreatedAt)
	if err != nil {
		return Task{}, fmt.Errorf("could not decode updates for task %s: %w", t.Id, err)
	}
	t.Updates = updates

	return t, nil
}
