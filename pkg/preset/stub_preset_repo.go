package preset

import (
	"context"
	"fmt"
	"sort"
)

type StubRepository struct {
	nextId int
	data   map[string]Preset
}

func NewStubRepository() *StubRepository {
	return &StubRepository{data: map[string]Preset{}}
}

func (s *StubRepository) Store(ctx context.Context, preset Preset) (Preset, error) {
	s.nextId++
	preset.Id = fmt.Sprintf("preset-%d", s.nextId)
	s.data[preset.Id] = preset
	return preset, nil
}

func (s *StubRepository) GetAll(ctx context.Context) ([]Preset, error) {
	presets := make([]Preset, 0, len(s.data))
	for _, preset := range s.data {
		presets = append(presets, preset)
	}
	sort.Slice(presets, func(i, j int) bool {
		return presets[i].Name < presets[j].Name
	})
	return presets, nil
}

func (s *StubRepository) Get(ctx context.Context, id string) (Preset, error) {
	preset, ok := s.data[id]
	if !ok {
		return Preset{}, ErrPresetNotFound
	}
	return preset, nil
}

func (s *StubRepository) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := s.data[id]; !ok {
		return false, nil
	}
	delete(s.data, id)
	return true, nil
}

func (s *StubRepository) Cleanup() {
	s.data = map[string]Preset{}
}
