package note

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type NoteDTO struct {
	Id        string `json:"id,omitempty"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	IsPinned  bool   `json:"isPinned"`
	Color     string `json:"color"`
	ProjectId string `json:"projectId"`
	CreatedAt int64  `json:"createdAt,omitempty"`
	UpdatedAt int64  `json:"updatedAt,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new note")
	w.Header().Set("Content-Type", "application/json")

	var dto NoteDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), DTOToNote(dto))
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

	notes, err := h.service.List(r.Context(), r.URL.Query().Get("projectId"))
	if err != nil {
		writeError(w, err)
		return
	}

	dtos := make([]NoteDTO, 0, len(notes))
	for _, n := range notes {
		dtos = append(dtos, ToDTO(n))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	note, err := h.service.Get(r.Context(), mux.Vars(r)["noteId"])
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ToDTO(note)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto NoteDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	note := DTOToNote(dto)
	note.Id = mux.Vars(r)["noteId"]

	updated, err := h.service.Update(r.Context(), note)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) TogglePin(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	updated, err := h.service.TogglePin(r.Context(), mux.Vars(r)["noteId"])
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) SetColor(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var body struct {
		Color string `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.service.SetColor(r.Context(), mux.Vars(r)["noteId"], Color(body.Color))
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
	if err := h.service.Delete(r.Context(), mux.Vars(r)["noteId"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNoteNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidColor), errors.Is(err, ErrEmptyNote):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func ToDTO(note Note) NoteDTO {
	return NoteDTO{
		Id:        note.Id,
		Title:     note.Title,
		Content:   note.Content,
		IsPinned:  note.IsPinned,
		Color:     string(note.Color),
		ProjectId: note.ProjectId,
		CreatedAt: note.CreatedAt.UnixMilli(),
		UpdatedAt: note.UpdatedAt.UnixMilli(),
	}
}

func DTOToNote(dto NoteDTO) Note {
	return Note{
		Id:        dto.Id,
		Title:     dto.Title,
		Content:   dto.Content,
		IsPinned:  dto.IsPinned,
		Color:     Color(dto.Color),
		ProjectId: dto.ProjectId,
	}
}
