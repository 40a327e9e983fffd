package note

import (
	"context"
	"errors"
	"strings"

	"github.com/crewdeck/crewdeck/internal/event_bus"
	"github.com/crewdeck/crewdeck/internal/utils"
	log "github.com/sirupsen/logrus"
)

var (
	ErrInvalidColor = errors.New("invalid note color")
	ErrEmptyNote    = errors.New("note must have a title or content")
)

type Service interface {
	Create(ctx context.Context, note Note) (Note, error)
	Get(ctx context.Context, id string) (Note, error)
	List(ctx context.Context, projectId string) ([]Note, error)
	Update(ctx context.Context, note Note) (Note, error)
	TogglePin(ctx context.Context, id string) (Note, error)
	SetColor(ctx context.Context, id string, color Color) (Note, error)
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

func (s *ServiceImpl) Create(ctx context.Context, note Note) (Note, error) {
	if strings.TrimSpace(note.Title) == "" && strings.TrimSpace(note.Content) == "" {
		return Note{}, ErrEmptyNote
	}
	if strings.TrimSpace(note.Title) == "" {
		note.Title = "Untitled"
	}
	if note.Color == "" {
		note.Color = ColorDefault
	}
	if !note.Color.IsValid() {
		return Note{}, ErrInvalidColor
	}

	now := s.clock.Now()
	note.CreatedAt = now
	note.UpdatedAt = now

	created, err := s.repo.Store(ctx, note)
	if err != nil {
		return Note{}, err
	}
	s.publish(ctx, event_bus.ActionCreated, created)
	return created, nil
}

func (s *ServiceImpl) Get(ctx context.Context, id string) (Note, error) {
	return s.repo.Get(ctx, id)
}

// List returns the project's notes, pinned first, then most recently updated.
func (s *ServiceImpl) List(ctx context.Context, projectId string) ([]Note, error) {
	notes, err := s.repo.GetAll(ctx, projectId)
	if err != nil {
		return nil, err
	}
	return SortNotes(notes), nil
}

func (s *ServiceImpl) Update(ctx context.Context, note Note) (Note, error) {
	if note.Color != "" && !note.Color.IsValid() {
		return Note{}, ErrInvalidColor
	}

	existing, err := s.repo.Get(ctx, note.Id)
	if err != nil {
		return Note{}, err
	}
	existing.Title = note.Title
	if strings.TrimSpace(existing.Title) == "" {
		existing.Title = "Untitled"
	}
	existing.Content = note.Content
	existing.IsPinned = note.IsPinned
	if note.Color != "" {
		existing.Color = note.Color
	}
	existing.UpdatedAt = s.clock.Now()

	return s.saveUpdated(ctx, existing)
}

// TogglePin flips the pinned flag. Pinning counts as an edit, so the updated
// timestamp moves too.
func (s *ServiceImpl) TogglePin(ctx context.Context, id string) (Note, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Note{}, err
	}
	existing.IsPinned = !existing.IsPinned
	existing.UpdatedAt = s.clock.Now()
	return s.saveUpdated(ctx, existing)
}

// SetColor changes just the color, leaving title and content alone.
func (s *ServiceImpl) SetColor(ctx context.Context, id string, color Color) (Note, error) {
	if !color.IsValid() {
		return Note{}, ErrInvalidColor
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Note{}, err
	}
	existing.Color = color
	existing.UpdatedAt = s.clock.Now()
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
		return ErrNoteNotFound
	}
	s.publishDeleted(ctx, existing)
	return nil
}

func (s *ServiceImpl) saveUpdated(ctx context.Context, note Note) (Note, error) {
	updated, err := s.repo.Update(ctx, note)
	if err != nil {
		return Note{}, err
	}
	if !updated {
		log.Warnf("note %s not updated, probably because it no longer exists", note.Id)
		return Note{}, ErrNoteNotFound
	}
	s.publish(ctx, event_bus.ActionUpdated, note)
	return note, nil
}

func (s *ServiceImpl) publish(ctx context.Context, action event_bus.Action, note Note) {
	event := event_bus.NewEvent(ctx, event_bus.CollectionNotes, event_bus.RecordChanged{
		Collection: event_bus.CollectionNotes,
		Action:     action,
		Id:         note.Id,
		ProjectId:  note.ProjectId,
		Record:     ToDTO(note),
	})
	if err := s.bus.Publish(event); err != nil {
		log.Errorf("failed to publish note change: %v", err)
	}
}

func (s *ServiceImpl) publishDeleted(ctx context.Context, note Note) {
	event := event_bus.NewEvent(ctx, event_bus.CollectionNotes, event_bus.RecordChanged{
		Collection: event_bus.CollectionNotes,
		Action:     event_bus.ActionDeleted,
		Id:         note.Id,
		ProjectId:  note.ProjectId,
	})
	if err := s.bus.Publish(event); err != nil {
		log.Errorf("failed to publish note deletion: %v", err)
	}
}
