package budget

import (
	"context"
	"fmt"
	"sort"
)

type StubRepository struct {
	nextId int
	data   map[string]BudgetItem
}

func NewStubRepository() *StubRepository {
	return &StubRepository{data: map[string]BudgetItem{}}
}

func (s *StubRepository) Store(ctx context.Context, item BudgetItem) (BudgetItem, error) {
	s.nextId++
	item.Id = fmt.Sprintf("item-%d", s.nextId)
	s.data[item.Id] = item
	return item, nil
}

func (s *StubRepository) GetAll(ctx context.Context, projectId string) ([]BudgetItem, error) {
	items := make([]BudgetItem, 0, len(s.data))
	for _, item := range s.data {
		if projectId == "" || item.ProjectId == projectId {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *StubRepository) Get(ctx context.Context, id string) (BudgetItem, error) {
	item, ok := s.data[id]
	if !ok {
		return BudgetItem{}, ErrItemNotFound
	}
	return item, nil
}

func (s *StubRepository) Update(ctx context.Context, item BudgetItem) (bool, error) {
	if _, ok := s.data[item.Id]; !ok {
		return false, nil
	}
	s.data[item.Id] = item
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
	s.data = map[string]BudgetItem{}
}
