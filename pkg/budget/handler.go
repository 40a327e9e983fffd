package budget

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type PayerPaymentDTO struct {
	Name         string  `json:"name"`
	AmountToPay  float64 `json:"amountToPay"`
	AmountPaid   float64 `json:"amountPaid"`
	LastUpdated  int64   `json:"lastUpdated"`
	Status       string  `json:"status"`
	PaymentType  string  `json:"paymentType"`
	ManualStatus bool    `json:"manualStatus,omitempty"`
}

type BudgetItemDTO struct {
	Id          string            `json:"id,omitempty"`
	Name        string            `json:"name"`
	Type        string            `json:"type"`
	Cost        float64           `json:"cost"`
	Quantity    int               `json:"quantity"`
	OtherFee    float64           `json:"otherFee"`
	HasLaborFee bool              `json:"hasLaborFee"`
	LaborFee    float64           `json:"laborFee"`
	Total       float64           `json:"total"`
	Link        string            `json:"link,omitempty"`
	Payers      []PayerPaymentDTO `json:"payers"`
	// SelectedPayers names the people to split the total across on create.
	SelectedPayers []string `json:"selectedPayers,omitempty"`
	ProjectId      string   `json:"projectId"`
	CreatedAt      int64    `json:"createdAt,omitempty"`
}

type PayerRowDTO struct {
	ItemId   string          `json:"itemId"`
	ItemName string          `json:"itemName"`
	ItemType string          `json:"itemType"`
	Payer    PayerPaymentDTO `json:"payer"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new budget item")
	w.Header().Set("Content-Type", "application/json")

	var dto BudgetItemDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), DTOToItem(dto), dto.SelectedPayers)
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
	projectId := query.Get("projectId")
	people := query["person"]

	// The person view flattens matching (item, payer) pairs into rows.
	if query.Get("view") == "person" {
		rows, err := h.service.PersonView(r.Context(), projectId, people)
		if err != nil {
			writeError(w, err)
			return
		}
		dtos := make([]PayerRowDTO, 0, len(rows))
		for _, row := range rows {
			dtos = append(dtos, PayerRowDTO{
				ItemId:   row.ItemId,
				ItemName: row.ItemName,
				ItemType: string(row.ItemType),
				Payer:    payerToDTO(row.Payer),
			})
		}
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(dtos); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	filter := Filter{
		Type:   ItemType(query.Get("type")),
		People: people,
	}
	items, err := h.service.List(r.Context(), projectId, filter, SortBy(query.Get("sortBy")))
	if err != nil {
		writeError(w, err)
		return
	}

	dtos := make([]BudgetItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, ToDTO(item))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	item, err := h.service.Get(r.Context(), mux.Vars(r)["itemId"])
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ToDTO(item)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto BudgetItemDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	item := DTOToItem(dto)
	item.Id = mux.Vars(r)["itemId"]

	updated, err := h.service.Update(r.Context(), item)
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
	if err := h.service.Delete(r.Context(), mux.Vars(r)["itemId"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetPayers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var body struct {
		People []string `json:"people"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.service.SetPayers(r.Context(), mux.Vars(r)["itemId"], body.People)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) AddPayer(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.service.AddPayer(r.Context(), mux.Vars(r)["itemId"], body.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) RemovePayer(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	vars := mux.Vars(r)
	updated, err := h.service.RemovePayer(r.Context(), vars["itemId"], vars["payerName"])
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) UpdatePayer(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var body struct {
		AmountPaid  *float64 `json:"amountPaid"`
		Status      *string  `json:"status"`
		PaymentType *string  `json:"paymentType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	change := PayerChange{AmountPaid: body.AmountPaid}
	if body.Status != nil {
		status := PaymentStatus(*body.Status)
		change.Status = &status
	}
	if body.PaymentType != nil {
		paymentType := PaymentType(*body.PaymentType)
		change.PaymentType = &paymentType
	}

	vars := mux.Vars(r)
	updated, err := h.service.UpdatePayer(r.Context(), vars["itemId"], vars["payerName"], change)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrItemNotFound), errors.Is(err, ErrPayerNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrPayerExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrNameRequired),
		errors.Is(err, ErrPayerNameRequired),
		errors.Is(err, ErrInvalidItemType),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrNegativeAmount),
		errors.Is(err, ErrInvalidPaymentStatus),
		errors.Is(err, ErrInvalidPaymentType):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func payerToDTO(p PayerPayment) PayerPaymentDTO {
	return PayerPaymentDTO{
		Name:         p.Name,
		AmountToPay:  p.AmountToPay,
		AmountPaid:   p.AmountPaid,
		LastUpdated:  p.LastUpdated.UnixMilli(),
		Status:       string(p.Status),
		PaymentType:  string(p.PaymentType),
		ManualStatus: p.ManualStatus,
	}
}

func ToDTO(item BudgetItem) BudgetItemDTO {
	payers := make([]PayerPaymentDTO, 0, len(item.Payers))
	for _, p := range item.Payers {
		payers = append(payers, payerToDTO(p))
	}
	return BudgetItemDTO{
		Id:          item.Id,
		Name:        item.Name,
		Type:        string(item.Type),
		Cost:        item.Cost,
		Quantity:    item.Quantity,
		OtherFee:    item.OtherFee,
		HasLaborFee: item.HasLaborFee,
		LaborFee:    item.LaborFee,
		Total:       item.Total,
		Link:        item.Link,
		Payers:      payers,
		ProjectId:   item.ProjectId,
		CreatedAt:   item.CreatedAt.UnixMilli(),
	}
}

func DTOToItem(dto BudgetItemDTO) BudgetItem {
	return BudgetItem{
		Id:          dto.Id,
		Name:        dto.Name,
		Type:        ItemType(dto.Type),
		Cost:        dto.Cost,
		Quantity:    dto.Quantity,
		OtherFee:    dto.OtherFee,
		HasLaborFee: dto.HasLaborFee,
		LaborFee:    dto.LaborFee,
		Link:        dto.Link,
		ProjectId:   dto.ProjectId,
	}
}
