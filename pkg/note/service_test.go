package note

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

var noteRepoStub = NewStubRepository()
var mockClock = &utils.MockClock{FixedNow: time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)}

var service Service

func setup(t *testing.T) func() {
	service = NewService(noteRepoStub, event_bus.NewEventBus(), mockClock)
	return func() {
		t.Log("Teardown after test")
		noteRepoStub.Cleanup()
	}
}

func TestServiceImpl_Create(t *testing.T) {
	t.Run("should create a note with timestamps and a default color", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		created, err := service.Create(ctx, Note{Title: "Shopping list", Content: "lanterns, glue", ProjectId: "lantern"})

		// then
		require.NoError(t, err)
		assert.NotEmpty(t, created.Id)
		assert.Equal(t, ColorDefault, created.Color)
		assert.Equal(t, mockClock.Now(), created.CreatedAt)
		assert.Equal(t, mockClock.Now(), created.UpdatedAt)
	})

	t.Run("should fall back to an untitled note", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		created, err := service.Create(ctx, Note{Content: "some scribbles", ProjectId: "lantern"})

		require.NoError(t, err)
		assert.Equal(t, "Untitled", created.Title)
	})

	t.Run("should reject a fully empty note", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.Create(ctx, Note{ProjectId: "lantern"})
		assert.ErrorIs(t, err, ErrEmptyNote)

		_, err = service.Create(ctx, Note{Title: "  ", Content: "   ", ProjectId: "lantern"})
		assert.ErrorIs(t, err, ErrEmptyNote)
	})

	t.Run("should reject an unknown color", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.Create(ctx, Note{Title: "Bad", Color: "magenta"})

		assert.ErrorIs(t, err, ErrInvalidColor)
	})
}

func TestServiceImpl_Update(t *testing.T) {
	t.Run("should stamp the updated time", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, Note{Title: "Draft", ProjectId: "lantern"})
		require.NoError(t, err)
		mockClock.SetNow(mockClock.Now().Add(time.Hour))

		// when
		created.Content = "finished text"
		updated, err := service.Update(ctx, created)

		// then
		require.NoError(t, err)
		assert.Equal(t, "finished text", updated.Content)
		assert.Equal(t, mockClock.Now(), updated.UpdatedAt)
		assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))
	})

	t.Run("should keep the stored color when none is given", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		created, err := service.Create(ctx, Note{Title: "Colored", Color: ColorYellow, ProjectId: "lantern"})
		require.NoError(t, err)

		created.Color = ""
		updated, err := service.Update(ctx, created)

		require.NoError(t, err)
		assert.Equal(t, ColorYellow, updated.Color)
	})
}

func TestServiceImpl_TogglePin(t *testing.T) {
	t.Run("should flip the pin flag back and forth", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, Note{Title: "Pin me", ProjectId: "lantern"})
		require.NoError(t, err)

		// when
		pinned, err := service.TogglePin(ctx, created.Id)
		require.NoError(t, err)
		assert.True(t, pinned.IsPinned)

		unpinned, err := service.TogglePin(ctx, created.Id)
		require.NoError(t, err)
		assert.False(t, unpinned.IsPinned)
	})

	t.Run("should stamp the updated time like any other edit", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, Note{Title: "Pin me", ProjectId: "lantern"})
		require.NoError(t, err)
		mockClock.SetNow(mockClock.Now().Add(time.Hour))

		// when
		pinned, err := service.TogglePin(ctx, created.Id)

		// then
		require.NoError(t, err)
		assert.Equal(t, mockClock.Now(), pinned.UpdatedAt)
		assert.True(t, pinned.UpdatedAt.After(created.UpdatedAt))
	})
}

func TestServiceImpl_SetColor(t *testing.T) {
	t.Run("should change only the color", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, Note{Title: "Draft", Content: "keep me", ProjectId: "lantern"})
		require.NoError(t, err)

		// when
		updated, err := service.SetColor(ctx, created.Id, ColorPink)

		// then
		require.NoError(t, err)
		assert.Equal(t, ColorPink, updated.Color)
		assert.Equal(t, "Draft", updated.Title)
		assert.Equal(t, "keep me", updated.Content)
	})

	t.Run("should reject an unknown color", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		created, err := service.Create(ctx, Note{Title: "Draft", ProjectId: "lantern"})
		require.NoError(t, err)

		_, err = service.SetColor(ctx, created.Id, "magenta")
		assert.ErrorIs(t, err, ErrInvalidColor)
	})
}

func TestServiceImpl_List(t *testing.T) {
	t.Run("should order pinned notes first then by recency", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		older, err := service.Create(ctx, Note{Title: "Older", ProjectId: "lantern"})
		require.NoError(t, err)
		mockClock.SetNow(mockClock.Now().Add(time.Minute))
		_, err = service.Create(ctx, Note{Title: "Newer", ProjectId: "lantern"})
		require.NoError(t, err)
		_, err = service.TogglePin(ctx, older.Id)
		require.NoError(t, err)

		// when
		notes, err := service.List(ctx, "lantern")

		// then
		require.NoError(t, err)
		require.Len(t, notes, 2)
		assert.Equal(t, "Older", notes[0].Title)
		assert.Equal(t, "Newer", notes[1].Title)
	})
}

func TestServiceImpl_Delete(t *testing.T) {
	t.Run("should delete a note and report missing ones", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, Note{Title: "Temp", ProjectId: "lantern"})
		require.NoError(t, err)

		// when
		err = service.Delete(ctx, created.Id)

		// then
		require.NoError(t, err)
		_, err = service.Get(ctx, created.Id)
		assert.ErrorIs(t, err, ErrNoteNotFound)

		err = service.Delete(ctx, "missing")
		assert.ErrorIs(t, err, ErrNoteNotFound)
	})
}
