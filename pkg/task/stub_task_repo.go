package task

import (
	"context"
	"fmt"
	"sort"
)

type StubRepository struct {
	nextId int
	data   map[string]Task
}

func NewStubRepository() *StubRepository {
	return &StubRepository{data: map[string]Task{}}
}

func (s *StubRepository) Store(ctx context.Context, t Task) (Task, error) {
	s.nextId++
	t.Id = fmt.Sprintf("task-%d", s.nextId)
	s.data[t.Id] = t
	return t, nil
}

func (s *StubRepository) GetAll(ctx context.Context, projectId string) ([]Task, error) {
	tasks := make([]Task, 0, len(s.data))
	for _, t := range s.data {
		if projectId == "" || t.ProjectId == projectId {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (s *StubRepository) Get(ctx context.Context, id string) (Task, error) {
	t, ok := s.data[id]
	if !ok {
		return Task{}, ErrTaskNotFound
	}
	return t, nil
}

func (s *StubRepository) Update(ctx context.Context, t Task) (bool, error) {
	if _, ok := s.data[t.Id]; !ok {
		return false, nil
	}
	s.data[t.Id] = t
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
	s.data = map[string]Task{}
}
