package task

import (
	"context"
	"errors"
	"strings"

	"github.com/crewdeck/crewdeck/internal/event_bus"
	"github.com/crewdeck/crewdeck/internal/utils"
	log "github.com/sirupsen/logrus"
)

var (
	ErrTitleRequired = errors.New("task title is required")
	ErrNoAssignees   = errors.New("task must have at least one assignee")
	ErrInvalidStatus = errors.New("invalid task status")
	ErrEmptyUpdate   = errors.New("update text is required")
)

type Service interface {
	Create(ctx context.Context, t Task) (Task, error)
	Get(ctx context.Context, id string) (Task, error)
	List(ctx context.Context, projectId string, filter Filter, sortBy SortBy) ([]Task, error)
	Update(ctx context.Context, t Task) (Task, error)
	SetStatus(ctx context.Context, id string, status Status) (Task, error)
	SetAssignees(ctx context.Context, id string, people []string) (Task, error)
	AddUpdate(ctx context.Context, id string, text string) (Task, error)
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

func (s *ServiceImpl) Create(ctx context.Context, t Task) (Task, error) {
	if strings.TrimSpace(t.Title) == "" {
		return Task{}, ErrTitleRequired
	}
	if len(t.InCharge) == 0 {
		return Task{}, ErrNoAssignees
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	if !t.Status.IsValid() {
		return Task{}, ErrInvalidStatus
	}

	now := s.clock.Now()
	t.CreatedAt = now
	for i := range t.Updates {
		if t.Updates[i].Timestamp.IsZero() {
			t.Updates[i].Timestamp = now
		}
	}

	created, err := s.repo.Store(ctx, t)
	if err != nil {
		return Task{}, err
	}
	s.publish(ctx, event_bus.ActionCreated, created)
	return created, nil
}

func (s *ServiceImpl) Get(ctx context.Context, id string) (Task, error) {
	return s.repo.Get(ctx, id)
}

// List returns the project's tasks, filtered first and then sorted. Both
// steps are pure and never mutate stored state.
func (s *ServiceImpl) List(ctx context.Context, projectId string, filter Filter, sortBy SortBy) ([]Task, error) {
	tasks, err := s.repo.GetAll(ctx, projectId)
	if err != nil {
		return nil, err
	}
	return SortTasks(FilterTasks(tasks, filter), sortBy), nil
}

func (s *ServiceImpl) Update(ctx context.Context, t Task) (Task, error) {
	if strings.TrimSpace(t.Title) == "" {
		return Task{}, ErrTitleRequired
	}
	if len(t.InCharge) == 0 {
		return Task{}, ErrNoAssignees
	}
	if !t.Status.IsValid() {
		return Task{}, ErrInvalidStatus
	}

	existing, err := s.repo.Get(ctx, t.Id)
	if err != nil {
		return Task{}, err
	}
	existing.Title = t.Title
	existing.Status = t.Status
	existing.InCharge = t.InCharge

	return s.saveUpdated(ctx, existing)
}

func (s *ServiceImpl) SetStatus(ctx context.Context, id string, status Status) (Task, error) {
	if !status.IsValid() {
		return Task{}, ErrInvalidStatus
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Task{}, err
	}
	existing.Status = status
	return s.saveUpdated(ctx, existing)
}

// SetAssignees replaces the assignee set. An empty set is refused so a task
// always has someone in charge.
func (s *ServiceImpl) SetAssignees(ctx context.Context, id string, people []string) (Task, error) {
	if len(people) == 0 {
		return Task{}, ErrNoAssignees
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Task{}, err
	}
	existing.InCharge = people
	return s.saveUpdated(ctx, existing)
}

// AddUpdate prepends a progress note, keeping the history newest-first.
func (s *ServiceImpl) AddUpdate(ctx context.Context, id string, text string) (Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Task{}, ErrEmptyUpdate
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Task{}, err
	}
	update := Update{Text: text, Timestamp: s.clock.Now()}
	existing.Updates = append([]Update{update}, existing.Updates...)
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
		return ErrTaskNotFound
	}
	s.publishDeleted(ctx, existing)
	return nil
}

func (s *ServiceImpl) saveUpdated(ctx context.Context, t Task) (Task, error) {
	updated, err := s.repo.Update(ctx, t)
	if err != nil {
		return Task{}, err
	}
	if !updated {
		log.Warnf("task %s not updated, probably because it no longer exists", t.Id)
		return Task{}, ErrTaskNotFound
	}
	s.publish(ctx, event_bus.ActionUpdated, t)
	return t, nil
}

func (s *ServiceImpl) publish(ctx context.Context, action event_bus.Action, t Task) {
	event := event_bus.NewEvent(ctx, event_bus.CollectionTasks, event_bus.RecordChanged{
		Collection: event_bus.CollectionTasks,
		Action:     action,
		Id:         t.Id,
		ProjectId:  t.ProjectId,
		Record:     ToDTO(t),
	})
	if err := s.bus.Publish(event); err != nil {
		log.Errorf("failed to publish task change: %v", err)
	}
}

func (s *ServiceImpl) publishDeleted(ctx context.Context, t Task) {
	event := event_bus.NewEvent(ctx, event_bus.CollectionTasks, event_bus.RecordChanged{
		Collection: event_bus.CollectionTasks,
		Action:     event_bus.ActionDeleted,
		Id:         t.Id,
		ProjectId:  t.ProjectId,
	})
	if err := s.bus.Publish(event); err != nil {
		log.Errorf("failed to publish task deletion: %v", err)
	}
}
