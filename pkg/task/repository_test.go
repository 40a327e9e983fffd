package task

import (
	"context"
	"testing"
	"time"

	"github.com/crewdeck/crewdeck/internal/test_utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepository(t *testing.T) (context.Context, Repository) {
	db := test_utils.SetupTestDB(t)
	return context.Background(), NewRepository(db)
}

func storedTask() Task {
	now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	return Task{
		Title:    "Buy lanterns",
		Status:   StatusInProgress,
		InCharge: []string{"Mika", "Ella"},
		Updates: []Update{
			{Text: "order confirmed", Timestamp: now},
			{Text: "called the supplier", Timestamp: now.Add(-time.Hour)},
		},
		ProjectId: "lantern",
		CreatedAt: now.Add(-2 * time.Hour),
	}
}

func TestRepositoryImpl_StoreAndGet(t *testing.T) {
	// given
	ctx, repo := setupTestRepository(t)

	// when
	stored, err := repo.Store(ctx, storedTask())
	require.NoError(t, err)
	require.NotEmpty(t, stored.Id)

	// then
	loaded, err := repo.Get(ctx, stored.Id)
	require.NoError(t, err)
	assert.Equal(t, "Buy lanterns", loaded.Title)
	assert.Equal(t, StatusInProgress, loaded.Status)
	assert.Equal(t, []string{"Mika", "Ella"}, loaded.InCharge)
	require.Len(t, loaded.Updates, 2)
	assert.Equal(t, "order confirmed", loaded.Updates[0].Text)
	assert.Equal(t, stored.CreatedAt.UnixMilli(), loaded.CreatedAt.UnixMilli())
}

func TestRepositoryImpl_Get_NotFound(t *testing.T) {
	ctx, repo := setupTestRepository(t)

	_, err := repo.Get(ctx, "missing")

	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestRepositoryImpl_GetAll(t *testing.T) {
	// given
	ctx, repo := setupTestRepository(t)
	first := storedTask()
	second := storedTask()
	second.Title = "Hang decorations"
	second.CreatedAt = second.CreatedAt.Add(time.Hour)
	other := storedTask()
	other.Title = "Book the DJ"
	other.ProjectId = "hiphop"
	_, err := repo.Store(ctx, first)
	require.NoError(t, err)
	_, err = repo.Store(ctx, second)
	require.NoError(t, err)
	_, err = repo.Store(ctx, other)
	require.NoError(t, err)

	// when
	tasks, err := repo.GetAll(ctx, "lantern")

	// then: newest first, other project excluded
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Hang decorations", tasks[0].Title)
	assert.Equal(t, "Buy lanterns", tasks[1].Title)
}

func TestRepositoryImpl_Update(t *testing.T) {
	// given
	ctx, repo := setupTestRepository(t)
	stored, err := repo.Store(ctx, storedTask())
	require.NoError(t, err)

	// when
	stored.Title = "Buy silk lanterns"
	stored.Status = StatusCompleted
	stored.InCharge = []string{"Joan"}
	updated, err := repo.Update(ctx, stored)

	// then
	require.NoError(t, err)
	assert.True(t, updated)
	loaded, err := repo.Get(ctx, stored.Id)
	require.NoError(t, err)
	assert.Equal(t, "Buy silk lanterns", loaded.Title)
	assert.Equal(t, StatusCompleted, loaded.Status)
	assert.Equal(t, []string{"Joan"}, loaded.InCharge)
}

func TestRepositoryImpl_Update_Missing(t *testing.T) {
	ctx, repo := setupTestRepository(t)
	task := storedTask()
	task.Id = "missing"

	updated, err := repo.Update(ctx, task)

	require.NoError(t, err)
	assert.False(t, updated)
}

func TestRepositoryImpl_Delete(t *testing.T) {
	// given
	ctx, repo := setupTestRepository(t)
	stored, err := repo.Store(ctx, storedTask())
	require.NoError(t, err)

	// when
	deleted, err := repo.Delete(ctx, stored.Id)

	// then
	require.NoError(t, err)
	assert.True(t, deleted)
	_, err = repo.Get(ctx, stored.Id)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	deleted, err = repo.Delete(ctx, stored.Id)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestRepositoryImpl_LegacyColumns(t *testing.T) {
	// Records imported from early clients store a single assignee and a
	// free-text update as JSON strings.
	ctx := context.Background()
	db := test_utils.SetupTestDB(t)
	repo := NewRepository(db)

	createdAt := time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC)
	_, err := db.ExecContext(ctx,
		`INSERT INTO task (id, title, status, in_charge, updates, project_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		"legacy-1", "Old record", "Pending", `"Mika"`, `"waiting for paint"`, "lantern", createdAt.UnixMilli(),
	)
	require.NoError(t, err)

	loaded, err := repo.Get(ctx, "legacy-1")

	require.NoError(t, err)
	assert.Equal(t, []string{"Mika"}, loaded.InCharge)
	require.Len(t, loaded.Updates, 1)
	assert.Equal(t, "waiting for paint", loaded.Updates[0].Text)
	assert.Equal(t, createdAt.UnixMilli(), loaded.Updates[0].Timestamp.UnixMilli())
}
