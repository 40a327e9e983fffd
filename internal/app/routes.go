package app

import (
	"github.com/crewdeck/crewdeck/internal/config"
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Task
	r.HandleFunc("/api/task", deps.TaskHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/task", deps.TaskHandler.Create).Methods("POST")
	r.HandleFunc("/api/task/{taskId}", deps.TaskHandler.Get).Methods("GET")
	r.HandleFunc("/api/task/{taskId}", deps.TaskHandler.Update).Methods("PUT")
	r.HandleFunc("/api/task/{taskId}", deps.TaskHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/task/{taskId}/status", deps.TaskHandler.SetStatus).Methods("PATCH")
	r.HandleFunc("/api/task/{taskId}/assignees", deps.TaskHandler.SetAssignees).Methods("PUT")
	r.HandleFunc("/api/task/{taskId}/update", deps.TaskHandler.AddUpdate).Methods("POST")

	// Budget Item
	r.HandleFunc("/api/budget", deps.BudgetHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/budget", deps.BudgetHandler.Create).Methods("POST")
	r.HandleFunc("/api/budget/{itemId}", deps.BudgetHandler.Get).Methods("GET")
	r.HandleFunc("/api/budget/{itemId}", deps.BudgetHandler.Update).Methods("PUT")
	r.HandleFunc("/api/budget/{itemId}", deps.BudgetHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/budget/{itemId}/payers", deps.BudgetHandler.SetPayers).Methods("PUT")
	r.HandleFunc("/api/budget/{itemId}/payer", deps.BudgetHandler.AddPayer).Methods("POST")
	r.HandleFunc("/api/budget/{itemId}/payer/{payerName}", deps.BudgetHandler.RemovePayer).Methods("DELETE")
	r.HandleFunc("/api/budget/{itemId}/payer/{payerName}", deps.BudgetHandler.UpdatePayer).Methods("PATCH")

	// Note
	r.HandleFunc("/api/note", deps.NoteHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/note", deps.NoteHandler.Create).Methods("POST")
	r.HandleFunc("/api/note/{noteId}", deps.NoteHandler.Get).Methods("GET")
	r.HandleFunc("/api/note/{noteId}", deps.NoteHandler.Update).Methods("PUT")
	r.HandleFunc("/api/note/{noteId}", deps.NoteHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/note/{noteId}/pin", deps.NoteHandler.TogglePin).Methods("PATCH")
	r.HandleFunc("/api/note/{noteId}/color", deps.NoteHandler.SetColor).Methods("PATCH")

	// People preset
	r.HandleFunc("/api/preset", deps.PresetHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/preset", deps.PresetHandler.Create).Methods("POST")
	r.HandleFunc("/api/preset/{presetId}", deps.PresetHandler.Get).Methods("GET")
	r.HandleFunc("/api/preset/{presetId}", deps.PresetHandler.Delete).Methods("DELETE")

	// Projects and people roster (read-only configuration)
	r.HandleFunc("/api/project", deps.ProjectHandler.GetProjects).Methods("GET")
	r.HandleFunc("/api/people", deps.ProjectHandler.GetPeople).Methods("GET")

	// Live change stream
	r.HandleFunc("/api/stream", deps.StreamHandler.Subscribe).Methods("GET")
}
