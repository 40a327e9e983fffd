package preset

import (
	"context"
	"errors"
	"strings"

	"github.com/crewdeck/crewdeck/internal/event_bus"
	"github.com/crewdeck/crewdeck/internal/utils"
	log "github.com/sirupsen/logrus"
)

var (
	ErrNameRequired   = errors.New("preset name is required")
	ErrPeopleRequired = errors.New("preset must contain at least one person")
)

type Service interface {
	Create(ctx context.Context, preset Preset) (Preset, error)
	Get(ctx context.Context, id string) (Preset, error)
	List(ctx context.Context) ([]Preset, error)
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

func (s *ServiceImpl) Create(ctx context.Context, preset Preset) (Preset, error) {
	preset.Name = strings.TrimSpace(preset.Name)
	if preset.Name == "" {
		return Preset{}, ErrNameRequired
	}
	people := make([]string, 0, len(preset.People))
	for _, person := range preset.People {
		if name := strings.TrimSpace(person); name != "" {
			people = append(people, name)
		}
	}
	if len(people) == 0 {
		return Preset{}, ErrPeopleRequired
	}
	preset.People = people
	preset.CreatedAt = s.clock.Now()

	created, err := s.repo.Store(ctx, preset)
	if err != nil {
		return Preset{}, err
	}
	s.publish(ctx, event_bus.ActionCreated, created)
	return created, nil
}

func (s *ServiceImpl) Get(ctx context.Context, id string) (Preset, error) {
	return s.repo.Get(ctx, id)
}

// List returns all presets ordered by name.
func (s *ServiceImpl) List(ctx context.Context) ([]Preset, error) {
	return s.repo.GetAll(ctx)
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
		return ErrPresetNotFound
	}
	s.publishDeleted(ctx, existing)
	return nil
}

func (s *ServiceImpl) publish(ctx context.Context, action event_bus.Action, preset Preset) {
	event := event_bus.NewEvent(ctx, event_bus.CollectionPresets, event_bus.RecordChanged{
		Collection: event_bus.CollectionPresets,
		Action:     action,
		Id:         preset.Id,
		Record:     ToDTO(preset),
	})
	if err := s.bus.Publish(event); err != nil {
		log.Errorf("failed to publish preset change: %v", err)
	}
}

func (s *ServiceImpl) publishDeleted(ctx context.Context, preset Preset) {
	event := event_bus.NewEvent(ctx, event_bus.CollectionPresets, event_bus.RecordChanged{
		Collection: event_bus.CollectionPresets,
		Action:     event_bus.ActionDeleted,
		Id:         preset.Id,
	})
	if err := s.bus.Publish(event); err != nil {
		log.Errorf("failed to publish preset deletion: %v", err)
	}
}
