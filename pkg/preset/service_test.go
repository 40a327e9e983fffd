package preset

import (
	"context"
	"testing"
	"time"

	"github.com/crewdeck/crewdeck/internal/event_bus"
	"github.com/crewdeck/crewdeck/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

var presetRepoStub = NewStubRepository()
var mockClock = &utils.MockClock{FixedNow: time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)}

var service Service

func setup(t *testing.T) func() {
	service = NewService(presetRepoStub, event_bus.NewEventBus(), mockClock)
	return func() {
		t.Log("Teardown after test")
		presetRepoStub.Cleanup()
	}
}

func TestServiceImpl_Create(t *testing.T) {
	t.Run("should create a preset and trim its people", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		created, err := service.Create(ctx, Preset{Name: "Core crew", People: []string{" Mika ", "Ella", "  "}})

		// then
		require.NoError(t, err)
		assert.NotEmpty(t, created.Id)
		assert.Equal(t, []string{"Mika", "Ella"}, created.People)
		assert.Equal(t, mockClock.Now(), created.CreatedAt)
	})

	t.Run("should reject a preset without name or people", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.Create(ctx, Preset{People: []string{"Mika"}})
		assert.ErrorIs(t, err, ErrNameRequired)

		_, err = service.Create(ctx, Preset{Name: "Empty"})
		assert.ErrorIs(t, err, ErrPeopleRequired)

		_, err = service.Create(ctx, Preset{Name: "Blank", People: []string{"  "}})
		assert.ErrorIs(t, err, ErrPeopleRequired)
	})
}

func TestServiceImpl_List(t *testing.T) {
	t.Run("should list presets ordered by name", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		_, err := service.Create(ctx, Preset{Name: "Stage crew", People: []string{"Joan"}})
		require.NoError(t, err)
		_, err = service.Create(ctx, Preset{Name: "Core crew", People: []string{"Mika"}})
		require.NoError(t, err)

		// when
		presets, err := service.List(ctx)

		// then
		require.NoError(t, err)
		require.Len(t, presets, 2)
		assert.Equal(t, "Core crew", presets[0].Name)
		assert.Equal(t, "Stage crew", presets[1].Name)
	})
}

func TestServiceImpl_Delete(t *testing.T) {
	t.Run("should delete a preset and report missing ones", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, Preset{Name: "Temp", People: []string{"Mika"}})
		require.NoError(t, err)

		// when
		err = service.Delete(ctx, created.Id)

		// then
		require.NoError(t, err)
		_, err = service.Get(ctx, created.Id)
		assert.ErrorIs(t, err, ErrPresetNotFound)

		err = service.Delete(ctx, "missing")
		assert.ErrorIs(t, err, ErrPresetNotFound)
	})
}
