package budget

import (
	"context"
	"errors"
	"strings"

	"github.com/crewdeck/crewdeck/internal/event_bus"
	"github.com/crewdeck/crewdeck/internal/utils"
	log "github.com/sirupsen/logrus"
)

var (
	ErrNameRequired         = errors.New("item name is required")
	ErrInvalidItemType      = errors.New("invalid item type")
	ErrInvalidQuantity      = errors.New("quantity must be at least 1")
	ErrNegativeAmount       = errors.New("amounts must not be negative")
	ErrPayerNotFound        = errors.New("payer not found on this item")
	ErrPayerNameRequired    = errors.New("payer name is required")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
	ErrInvalidPaymentType   = errors.New("invalid payment type")
)

// PayerChange is a partial edit of one payer. Editing the paid amount
// re-derives the status; setting the status directly marks it as a manual
// override.
type PayerChange struct {
	AmountPaid  *float64
	Status      *PaymentStatus
	PaymentType *PaymentType
}

type Service interface {
	Create(ctx context.Context, item BudgetItem, payerNames []string) (BudgetItem, error)
	Get(ctx context.Context, id string) (BudgetItem, error)
	List(ctx context.Context, projectId string, filter Filter, sortBy SortBy) ([]BudgetItem, error)
	PersonView(ctx context.Context, projectId string, people []string) ([]PayerRow, error)
	Update(ctx context.Context, item BudgetItem) (BudgetItem, error)
	SetPayers(ctx context.Context, id string, names []string) (BudgetItem, error)
	AddPayer(ctx context.Context, id string, name string) (BudgetItem, error)
	RemovePayer(ctx context.Context, id string, name string) (BudgetItem, error)
	UpdatePayer(ctx context.Context, id string, name string, change PayerChange) (BudgetItem, error)
	Delete(ctx context.Context, id string) error
}

type ServiceImpl struct {
	repo  Repository
	bus   *event_bus.EventBus
	clock utils.Clock
}

func NewService(repo Repository, bus *event_bus.EventBus, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, bus: bus, clock: clock}
}

func (s *ServiceImpl) Create(ctx context.Context, item BudgetItem, payerNames []string) (BudgetItem, error) {
	if err := validateItem(&item); err != nil {
		return BudgetItem{}, err
	}

	now := s.clock.Now()
	item.Total = ItemTotal(item.Cost, item.Quantity, item.OtherFee, item.HasLaborFee, item.LaborFee)
	item.Payers = SplitAmong(item.Total, payerNames, now)
	item.CreatedAt = now

	created, err := s.repo.Store(ctx, item)
	if err != nil {
		return BudgetItem{}, err
	}
	s.publish(ctx, event_bus.ActionCreated, created)
	return created, nil
}

func (s *ServiceImpl) Get(ctx context.Context, id string) (BudgetItem, error) {
	return s.repo.Get(ctx, id)
}

// List returns the project's items, filtered first and then sorted.
func (s *ServiceImpl) List(ctx context.Context, projectId string, filter Filter, sortBy SortBy) ([]BudgetItem, error) {
	items, err := s.repo.GetAll(ctx, projectId)
	if err != nil {
		return nil, err
	}
	return SortItems(FilterItems(items, filter), sortBy), nil
}

// PersonView flattens matching (item, payer) pairs into per-person rows.
func (s *ServiceImpl) PersonView(ctx context.Context, projectId string, people []string) ([]PayerRow, error) {
	items, err := s.repo.GetAll(ctx, projectId)
	if err != nil {
		return nil, err
	}
	return PersonRows(items, people), nil
}

// Update replaces the item's editable fields. The total is recomputed from
// the new cost fields, and when it changed, every payer's share is recomputed
// over the unchanged roster.
func (s *ServiceImpl) Update(ctx context.Context, item BudgetItem) (BudgetItem, error) {
	if err := validateItem(&item); err != nil {
		return BudgetItem{}, err
	}

	existing, err := s.repo.Get(ctx, item.Id)
	if err != nil {
		return BudgetItem{}, err
	}
	existing.Name = item.Name
	existing.Type = item.Type
	existing.Cost = item.Cost
	existing.Quantity = item.Quantity
	existing.OtherFee = item.OtherFee
	existing.HasLaborFee = item.HasLaborFee
	existing.LaborFee = item.LaborFee
	existing.Link = item.Link

	newTotal := ItemTotal(existing.Cost, existing.Quantity, existing.OtherFee, existing.HasLaborFee, existing.LaborFee)
	if newTotal != existing.Total {
		existing.Total = newTotal
		existing.Payers = Resplit(existing.Payers, newTotal)
	}

	return s.saveUpdated(ctx, existing)
}

// SetPayers replaces the whole roster with a fresh equal split, discarding
// recorded payments. This backs the select-all / clear / preset-load actions.
func (s *ServiceImpl) SetPayers(ctx context.Context, id string, names []string) (BudgetItem, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return BudgetItem{}, err
	}
	existing.Payers = SplitAmong(existing.Total, names, s.clock.Now())
	return s.saveUpdated(ctx, existing)
}

func (s *ServiceImpl) AddPayer(ctx context.Context, id string, name string) (BudgetItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return BudgetItem{}, ErrPayerNameRequired
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return BudgetItem{}, err
	}
	payers, err := AddPayer(existing.Payers, name, existing.Total, s.clock.Now())
	if err != nil {
		return BudgetItem{}, err
	}
	existing.Payers = payers
	return s.saveUpdated(ctx, existing)
}

func (s *ServiceImpl) RemovePayer(ctx context.Context, id string, name string) (BudgetItem, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return BudgetItem{}, err
	}
	if existing.payerIndex(name) == -1 {
		return BudgetItem{}, ErrPayerNotFound
	}
	existing.Payers = RemovePayer(existing.Payers, name, existing.Total)
	return s.saveUpdated(ctx, existing)
}

func (s *ServiceImpl) UpdatePayer(ctx context.Context, id string, name string, change PayerChange) (BudgetItem, error) {
	if change.Status != nil && !change.Status.IsValid() {
		return BudgetItem{}, ErrInvalidPaymentStatus
	}
	if change.PaymentType != nil && !change.PaymentType.IsValid() {
		return BudgetItem{}, ErrInvalidPaymentType
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return BudgetItem{}, err
	}
	idx := existing.payerIndex(name)
	if idx == -1 {
		return BudgetItem{}, ErrPayerNotFound
	}

	payer := &existing.Payers[idx]
	if change.AmountPaid != nil {
		if *change.AmountPaid < 0 {
			return BudgetItem{}, ErrNegativeAmount
		}
		payer.AmountPaid = *change.AmountPaid
		payer.Status = StatusFor(payer.AmountToPay, payer.AmountPaid)
		payer.ManualStatus = false
	}
	if change.Status != nil {
		payer.Status = *change.Status
		payer.ManualStatus = true
	}
	if change.PaymentType != nil {
		payer.PaymentType = *change.PaymentType
	}
	payer.LastUpdated = s.clock.Now()

	return s.saveUpdated(ctx, existing)
}

func (s *ServiceImpl) Delete(ctx context.Context, id string) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrItemNotFound
	}
	s.publishDeleted(ctx, existing)
	return nil
}

func validateItem(item *BudgetItem) error {
	if strings.TrimSpace(item.Name) == "" {
		return ErrNameRequired
	}
	if item.Type == "" {
		item.Type = ItemTypeProp
	}
	if !item.Type.IsValid() {
		return ErrInvalidItemType
	}
	if item.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if item.Cost < 0 || item.OtherFee < 0 || item.LaborFee < 0 {
		return ErrNegativeAmount
	}
	if !item.HasLaborFee {
		item.LaborFee = 0
	}
	return nil
}

func (s *ServiceImpl) saveUpdated(ctx context.Context, item BudgetItem) (BudgetItem, error) {
	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		return BudgetItem{}, err
	}
	if !updated {
		log.Warnf("budget item %s not updated, probably because it no longer exists", item.Id)
		return BudgetItem{}, ErrItemNotFound
	}
	s.publish(ctx, event_bus.ActionUpdated, item)
	return item, nil
}

func (s *ServiceImpl) publish(ctx context.Context, action event_bus.Action, item BudgetItem) {
	event := event_bus.NewEvent(ctx, event_bus.CollectionBudget, event_bus.RecordChanged{
		Collection: event_bus.CollectionBudget,
		Action:     action,
		Id:         item.Id,
		ProjectId:  item.ProjectId,
		Record:     ToDTO(item),
	})
	if err := s.bus.Publish(event); err != nil {
		log.Errorf("failed to publish budget item change: %v", err)
	}
}

func (s *ServiceImpl) publishDeleted(ctx context.Context, item BudgetItem) {
	event := event_bus.NewEvent(ctx, event_bus.CollectionBudget, event_bus.RecordChanged{
		Collection: event_bus.CollectionBudget,
		Action:     event_bus.ActionDeleted,
		Id:         item.Id,
		ProjectId:  item.ProjectId,
	})
	if err := s.bus.Publish(event); err != nil {
		log.Errorf("failed to publish budget item deletion: %v", err)
	}
}
