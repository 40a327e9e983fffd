package app

import (
	"database/sql"

	"github.com/crewdeck/crewdeck/internal/config"
	"github.com/crewdeck/crewdeck/internal/event_bus"
	"github.com/crewdeck/crewdeck/internal/utils"
	"github.com/crewdeck/crewdeck/pkg/budget"
	"github.com/crewdeck/crewdeck/pkg/note"
	"github.com/crewdeck/crewdeck/pkg/preset"
	"github.com/crewdeck/crewdeck/pkg/project"
	"github.com/crewdeck/crewdeck/pkg/stream"
	"github.com/crewdeck/crewdeck/pkg/task"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus
	Clock    utils.Clock

	TaskRepo    task.Repository
	TaskService task.Service
	TaskHandler *task.Handler

	BudgetRepo    budget.Repository
	BudgetService budget.Service
	BudgetHandler *budget.Handler

	NoteRepo    note.Repository
	NoteService note.Service
	NoteHandler *note.Handler

	PresetRepo    preset.Repository
	PresetService preset.Service
	PresetHandler *preset.Handler

	ProjectHandler *project.Handler
	StreamHandler  *stream.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *sql.DB, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.EventBus = event_bus.NewEventBus()
	deps.Clock = &utils.SystemClock{}

	deps.TaskRepo = task.NewRepository(db)
	deps.TaskService = task.NewService(deps.TaskRepo, deps.EventBus, deps.Clock)
	deps.TaskHandler = task.NewHandler(deps.TaskService)

	deps.BudgetRepo = budget.NewRepository(db)
	deps.BudgetService = budget.NewService(deps.BudgetRepo, deps.EventBus, deps.Clock)
	deps.BudgetHandler = budget.NewHandler(deps.BudgetService)

	deps.NoteRepo = note.NewRepository(db)
	deps.NoteService = note.NewService(deps.NoteRepo, deps.EventBus, deps.Clock)
	deps.NoteHandler = note.NewHandler(deps.NoteService)

	deps.PresetRepo = preset.NewRepository(db)
	deps.PresetService = preset.NewService(deps.PresetRepo, deps.EventBus, deps.Clock)
	deps.PresetHandler = preset.NewHandler(deps.PresetService)

	deps.ProjectHandler = project.NewHandler(cfg.Projects, cfg.People)
	deps.StreamHandler = stream.NewHandler(deps.EventBus)

	return deps
}
