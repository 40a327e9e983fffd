package note

import (
	"context"
	"fmt"
	"sort"
)

type StubRepository struct {
	nextId int
	data   map[string]Note
}

func NewStubRepository() *StubRepository {
	return &StubRepository{data: map[string]Note{}}
}

func (s *StubRepository) Store(ctx context.Context, note Note) (Note, error) {
	s.nextId++
	note.Id = fmt.Sprintf("note-%d", s.nextId)
	s.data[note.Id] = note
	return note, nil
}

func (s *StubRepository) GetAll(ctx context.Context, projectId string) ([]Note, error) {
	notes := make([]Note, 0, len(s.data))
	for _, note := range s.data {
		if projectId == "" || note.ProjectId == projectId {
			notes = append(notes, note)
		}
	}
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
	})
	return notes, nil
}

func (s *StubRepository) Get(ctx context.Context, id string) (Note, error) {
	note, ok := s.data[id]
	if !ok {
		return Note{}, ErrNoteNotFound
	}
	return note, nil
}

func (s *StubRepository) Update(ctx context.Context, note Note) (bool, error) {
	if _, ok := s.data[note.Id]; !ok {
		return false, nil
	}
	s.data[note.Id] = note
	return true, nil
}

func (s *StubRepository) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := s.data[id]; !ok {
		return false, nil
	}
	delete(s.data, id)
	return true, nil
}

func (s *StubRepository) Cleanup() {
	s.data = map[string]Note{}
}
