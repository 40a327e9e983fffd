package task

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type UpdateDTO struct {
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

type TaskDTO struct {
	Id       string      `json:"id,omitempty"`
	Title    string      `json:"title"`
	Status   string      `json:"status"`
	InCharge []string    `json:"inCharge"`
	Updates  []UpdateDTO `json:"updates"`
	// LatestUpdate mirrors the newest update's text. On create it may be set
	// instead of Updates, matching what older clients send.
	LatestUpdate string `json:"latestUpdate,omitempty"`
	ProjectId    string `json:"projectId"`
	CreatedAt    int64  `json:"createdAt,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new task")
	w.Header().Set("Content-Type", "application/json")

	var dto TaskDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), DTOToTask(dto))
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(ToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	query := r.URL.Query()
	filter := Filter{
		Status: Status(query.Get("status")),
		People: query["person"],
	}
	tasks, err := h.service.List(r.Context(), query.Get("projectId"), filter, SortBy(query.Get("sortBy")))
	if err != nil {
		writeError(w, err)
		return
	}

	dtos := make([]TaskDTO, 0, len(tasks))
	for _, t := range tasks {
		dtos = append(dtos, ToDTO(t))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	t, err := h.service.Get(r.Context(), mux.Vars(r)["taskId"])
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ToDTO(t)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto TaskDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	t := DTOToTask(dto)
	t.Id = mux.Vars(r)["taskId"]

	updated, err := h.service.Update(r.Context(), t)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.service.SetStatus(r.Context(), mux.Vars(r)["taskId"], Status(body.Status))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) SetAssignees(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var body struct {
		InCharge []string `json:"inCharge"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.service.SetAssignees(r.Context(), mux.Vars(r)["taskId"], body.InCharge)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) AddUpdate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.service.AddUpdate(r.Context(), mux.Vars(r)["taskId"], body.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), mux.Vars(r)["taskId"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrTaskNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrNoAssignees):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrTitleRequired), errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrEmptyUpdate):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func ToDTO(t Task) TaskDTO {
	updates := make([]UpdateDTO, 0, len(t.Updates))
	for _, u := range t.Updates {
		updates = append(updates, UpdateDTO{Text: u.Text, Timestamp: u.Timestamp.UnixMilli()})
	}
	latest := ""
	if len(t.Updates) > 0 {
		latest = t.Updates[0].Text
	}
	return TaskDTO{
		Id:           t.Id,
		Title:        t.Title,
		Status:       string(t.Status),
		InCharge:     t.InCharge,
		Updates:      updates,
		LatestUpdate: latest,
		ProjectId:    t.ProjectId,
		CreatedAt:    t.CreatedAt.UnixMilli(),
	}
}

func DTOToTask(dto TaskDTO) Task {
	updates := make([]Update, 0, len(dto.Updates))
	for _, u := range dto.Updates {
		var ts time.Time
		if u.Timestamp != 0 {
			ts = time.UnixMilli(u.Timestamp)
		}
		updates = append(updates, Update{Text: u.Text, Timestamp: ts})
	}
	if len(updates) == 0 && dto.LatestUpdate != "" {
		updates = []Update{{Text: dto.LatestUpdate}}
	}
	return Task{
		Id:        dto.Id,
		Title:     dto.Title,
		Status:    Status(dto.Status),
		InCharge:  dto.InCharge,
		Updates:   updates,
		ProjectId: dto.ProjectId,
	}
}
