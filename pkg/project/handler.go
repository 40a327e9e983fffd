package project

import (
	"encoding/json"
	"net/http"

	"github.com/crewdeck/crewdeck/internal/config"
)

type ProjectDTO struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

// Handler serves the fixed project list and the people roster. Both come from
// configuration and have no write operations.
type Handler struct {
	projects []config.Project
	people   []string
}

func NewHandler(projects []config.Project, people []string) *Handler {
	return &Handler{projects: projects, people: people}
}

func (h *Handler) GetProjects(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	dtos := make([]ProjectDTO, 0, len(h.projects))
	for _, p := range h.projects {
		dtos = append(dtos, ProjectDTO{Id: p.Id, Name: p.Name})
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetPeople(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	people := h.people
	if people == nil {
		people = []string{}
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(people); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
