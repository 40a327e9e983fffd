package preset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var ErrPresetNotFound = errors.New("preset not found")

type Repository interface {
	// Store persists a new preset and assigns its id.
	Store(ctx context.Context, preset Preset) (Preset, error)
	GetAll(ctx context.Context) ([]Preset, error)
	Get(ctx context.Context, id string) (Preset, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r RepositoryImpl) Store(ctx context.Context, preset Preset) (Preset, error) {
	preset.Id = uuid.NewString()

	people, err := EncodePeople(preset.People)
	if err != nil {
		return Preset{}, fmt.Errorf("could not encode people: %w", err)
	}

	query := `INSERT INTO people_preset (id, name, people, created_at) VALUES ($1, $2, $3, $4)`
	_, err = r.db.ExecContext(ctx, query,
		preset.Id,
		preset.Name,
		string(people),
		preset.CreatedAt.UnixMilli(),
	)
	if err != nil {
		err := fmt.Errorf("could not store preset: %w", err)
		log.Error(err)
		return Preset{}, err
	}

	return preset, nil
}

func (r RepositoryImpl) GetAll(ctx context.Context) ([]Preset, error) {
	query := `SELECT id, name, people, created_at FROM people_preset ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not query presets: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var presets []Preset
	for rows.Next() {
		preset, err := scanPreset(rows.Scan)
		if err != nil {
			log.Error(err)
			return nil, err
		}
		presets = append(presets, preset)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}

	return presets, nil
}

func (r RepositoryImpl) Get(ctx context.Context, id string) (Preset, error) {
	query := `SELECT id, name, people, created_at FROM people_preset WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	preset, err := scanPreset(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Preset{}, ErrPresetNotFound
	}
	if err != nil {
		log.Error(err)
		return Preset{}, err
	}
	return preset, nil
}

func (r RepositoryImpl) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM people_preset WHERE id = $1`, id)
	if err != nil {
		err := fmt.Errorf("could not delete preset: %w", err)
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

func scanPreset(scan func(...any) error) (Preset, error) {
	var preset Preset
	var peopleRaw []byte
	var createdAtMillis int64
	if err := scan(
		&preset.Id,
		&preset.Name,
		&peopleRaw,
		&createdAtMillis,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Preset{}, err
		}
		return Preset{}, fmt.Errorf("could not scan preset: %w", err)
	}
	preset.CreatedAt = time.UnixMilli(createdAtMillis)

	people, err := DecodePeople(peopleRaw)
	if err != nil {
		return Preset{}, fmt.Errorf("could not decode people for preset %s: %w", preset.Id, err)
	}
	preset.People = people

	return preset, nil
}
