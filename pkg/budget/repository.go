package budget

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var ErrItemNotFound = errors.New("budget item not found")

type Repository interface {
	// Store persists a new budget item and assigns its id.
	Store(ctx context.Context, item BudgetItem) (BudgetItem, error)
	GetAll(ctx context.Context, projectId string) ([]BudgetItem, error)
	Get(ctx context.Context, id string) (BudgetItem, error)
	Update(ctx context.Context, item BudgetItem) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r RepositoryImpl) Store(ctx context.Context, item BudgetItem) (BudgetItem, error) {
	item.Id = uuid.NewString()

	payers, err := EncodePayers(item.Payers)
	if err != nil {
		return BudgetItem{}, fmt.Errorf("could not encode payers: %w", err)
	}

	query := `INSERT INTO budget_item (
					id,
					name,
					item_type,
					cost,
					quantity,
					other_fee,
					has_labor_fee,
					labor_fee,
					total,
					link,
					payers,
					project_id,
					created_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err = r.db.ExecContext(ctx, query,
		item.Id,
		item.Name,
		string(item.Type),
		item.Cost,
		item.Quantity,
		item.OtherFee,
		item.HasLaborFee,
		item.LaborFee,
		item.Total,
		item.Link,
		string(payers),
		item.ProjectId,
		item.CreatedAt.UnixMilli(),
	)
	if err != nil {
		err := fmt.Errorf("could not store budget item: %w", err)
		log.Error(err)
		return BudgetItem{}, err
	}

	return item, nil
}

func (r RepositoryImpl) GetAll(ctx context.Context, projectId string) ([]BudgetItem, error) {
	query := `SELECT id, name, item_type, cost, quantity, other_fee, has_labor_fee, labor_fee, total, link, payers, project_id, created_at
			  FROM budget_item WHERE project_id = $1 ORDER BY created_at DESC`
	args := []any{projectId}
	if projectId == "" {
		query = `SELECT id, name, item_type, cost, quantity, other_fee, has_labor_fee, labor_fee, total, link, payers, project_id, created_at
				 FROM budget_item ORDER BY created_at DESC`
		args = nil
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query budget items: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var items []BudgetItem
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			log.Error(err)
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}

	return items, nil
}

func (r RepositoryImpl) Get(ctx context.Context, id string) (BudgetItem, error) {
	query := `SELECT id, name, item_type, cost, quantity, other_fee, has_labor_fee, labor_fee, total, link, payers, project_id, created_at
			  FROM budget_item WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	item, err := scanItem(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return BudgetItem{}, ErrItemNotFound
	}
	if err != nil {
		log.Error(err)
		return BudgetItem{}, err
	}
	return item, nil
}

func (r RepositoryImpl) Update(ctx context.Context, item BudgetItem) (bool, error) {
	payers, err := EncodePayers(item.Payers)
	if err != nil {
		return false, fmt.Errorf("could not encode payers: %w", err)
	}

	query := `UPDATE budget_item SET
				  name = $1,
				  item_type = $2,
				  cost = $3,
				  quantity = $4,
				  other_fee = $5,
				  has_labor_fee = $6,
				  labor_fee = $7,
				  total = $8,
				  link = $9,
				  payers = $10
			  WHERE id = $11`
	result, err := r.db.ExecContext(ctx, query,
		item.Name,
		string(item.Type),
		item.Cost,
		item.Quantity,
		item.OtherFee,
		item.HasLaborFee,
		item.LaborFee,
		item.Total,
		item.Link,
		string(payers),
		item.Id,
	)
	if err != nil {
		err := fmt.Errorf("could not update budget item: %w", err)
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
	result, err := r.db.ExecContext(ctx, `DELETE FROM budget_item WHERE id = $1`, id)
	if err != nil {
		err := fmt.Errorf("could not delete budget item: %w", err)
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

func scanItem(scan func(...any) error) (BudgetItem, error) {
	var item BudgetItem
	var itemType string
	var payersRaw []byte
	var createdAtMillis int64
	if err := scan(
		&item.Id,
		&item.Name,
		&itemType,
		&item.Cost,
		&item.Quantity,
		&item.OtherFee,
		&item.HasLaborFee,
		&item.LaborFee,
		&item.Total,
		&item.Link,
		&payersRaw,
		&item.ProjectId,
		&createdAtMillis,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return BudgetItem{}, err
		}
		return BudgetItem{}, fmt.Errorf("could not scan budget item: %w", err)
	}
	item.Type = ItemType(itemType)
	item.CreatedAt = time.UnixMilli(createdAtMillis)

	payers, err := DecodePayers(payersRaw)
	if err != nil {
		return BudgetItem{}, fmt.Errorf("could not decode payers for item %s: %w", item.Id, err)
	}
	item.Payers = payers

	return item, nil
}
