package preset

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type PresetDTO struct {
	Id        string   `json:"id,omitempty"`
	Name      string   `json:"name"`
	People    []string `json:"people"`
	CreatedAt int64    `json:"createdAt,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new people preset")
	w.Header().Set("Content-Type", "application/json")

	var dto PresetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), DTOToPreset(dto))
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

	presets, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	dtos := make([]PresetDTO, 0, len(presets))
	for _, p := range presets {
		dtos = append(dtos, ToDTO(p))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	preset, err := h.service.Get(r.Context(), mux.Vars(r)["presetId"])
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ToDTO(preset)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), mux.Vars(r)["presetId"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrPresetNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrNameRequired), errors.Is(err, ErrPeopleRequired):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func ToDTO(preset Preset) PresetDTO {
	return PresetDTO{
		Id:        preset.Id,
		Name:      preset.Name,
		People:    preset.People,
		CreatedAt: preset.CreatedAt.UnixMilli(),
	}
}

func DTOToPreset(dto PresetDTO) Preset {
	return Preset{
		Id:     dto.Id,
		Name:   dto.Name,
		People: dto.People,
	}
}
