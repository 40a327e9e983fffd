package budget

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

type ItemType string

const (
	ItemTypeProp       ItemType = "prop"
	ItemTypeAssistance ItemType = "assistance"
)

func (t ItemType) IsValid() bool {
	return t == ItemTypeProp || t == ItemTypeAssistance
}

type PaymentStatus string

const (
	PaymentStatusDue     PaymentStatus = "due"
	PaymentStatusDelayed PaymentStatus = "delayed"
	PaymentStatusPaid    PaymentStatus = "paid"
)

func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusDue || s == PaymentStatusDelayed || s == PaymentStatusPaid
}

type PaymentType string

const (
	PaymentTypeGcash PaymentType = "gcash"
	PaymentTypeCash  PaymentType = "cash"
)

func (t PaymentType) IsValid() bool {
	return t == PaymentTypeGcash || t == PaymentTypeCash
}

// PayerPayment tracks one person's share of an item and what they have paid
// so far. Names are unique within an item.
type PayerPayment struct {
	Name        string
	AmountToPay float64
	AmountPaid  float64
	LastUpdated time.Time
	Status      PaymentStatus
	PaymentType PaymentType
	// ManualStatus marks a status set directly by a user. A manual status is
	// kept as-is when shares are recomputed; it is cleared the next time the
	// paid amount is edited.
	ManualStatus bool
}

type BudgetItem struct {
	Id          string
	Name        string
	Type        ItemType
	Cost        float64
	Quantity    int
	OtherFee    float64
	HasLaborFee bool
	LaborFee    float64
	// Total is recomputed from the cost fields on every edit, so it never
	// drifts from the formula.
	Total     float64
	Link      string
	Payers    []PayerPayment
	ProjectId string
	CreatedAt time.Time
}

// TotalPaid sums what every payer has paid so far.
func (i BudgetItem) TotalPaid() float64 {
	var paid float64
	for _, p := range i.Payers {
		paid += p.AmountPaid
	}
	return paid
}

// TotalLeft sums the outstanding amount across all payers.
func (i BudgetItem) TotalLeft() float64 {
	var left float64
	for _, p := range i.Payers {
		left += p.AmountToPay - p.AmountPaid
	}
	return left
}

// CompletionFraction is the paid share of the total, 0 for items with no total.
func (i BudgetItem) CompletionFraction() float64 {
	if i.Total == 0 {
		return 0
	}
	return i.TotalPaid() / i.Total
}

// HasAnyPayerOf reports whether at least one of the given people is a payer.
func (i BudgetItem) HasAnyPayerOf(people []string) bool {
	for _, person := range people {
		for _, p := range i.Payers {
			if p.Name == person {
				return true
			}
		}
	}
	return false
}

func (i BudgetItem) payerIndex(name string) int {
	for idx, p := range i.Payers {
		if p.Name == name {
			return idx
		}
	}
	return -1
}

type SortBy string

const (
	SortByCompletion SortBy = "completion"
	SortByTotal      SortBy = "total"
	SortByCreated    SortBy = "created"
)

type Filter struct {
	// Type filters by item type when set.
	Type ItemType
	// People keeps items where any of the given people is a payer.
	People []string
}

// FilterItems returns a new slice with items matching the filter, preserving order.
func FilterItems(items []BudgetItem, filter Filter) []BudgetItem {
	result := make([]BudgetItem, 0, len(items))
	for _, item := range items {
		if filter.Type != "" && item.Type != filter.Type {
			continue
		}
		if len(filter.People) > 0 && !item.HasAnyPayerOf(filter.People) {
			continue
		}
		result = append(result, item)
	}
	return result
}

// SortItems returns a new slice ordered by the given key, all descending. The
// sort is stable, so re-sorting an already sorted slice is a no-op.
func SortItems(items []BudgetItem, by SortBy) []BudgetItem {
	result := make([]BudgetItem, len(items))
	copy(result, items)
	switch by {
	case SortByCompletion:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].CompletionFraction() > result[j].CompletionFraction()
		})
	case SortByTotal:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Total > result[j].Total
		})
	default: // SortByCreated
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		})
	}
	return result
}

// PayerRow is one (item, payer) pair in the person view.
type PayerRow struct {
	ItemId   string
	ItemName string
	ItemType ItemType
	Payer    PayerPayment
}

// PersonRows flattens all (item, payer) pairs for the given people into rows
// ordered by payer name, then item name.
func PersonRows(items []BudgetItem, people []string) []PayerRow {
	if len(people) == 0 {
		return nil
	}
	selected := make(map[string]bool, len(people))
	for _, p := range people {
		selected[p] = true
	}

	var rows []PayerRow
	for _, item := range items {
		for _, payer := range item.Payers {
			if selected[payer.Name] {
				rows = append(rows, PayerRow{
					ItemId:   item.Id,
					ItemName: item.Name,
					ItemType: item.Type,
					Payer:    payer,
				})
			}
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Payer.Name != rows[j].Payer.Name {
			return rows[i].Payer.Name < rows[j].Payer.Name
		}
		return rows[i].ItemName < rows[j].ItemName
	})
	return rows
}

type payerRecord struct {
	Name         string  `json:"name"`
	AmountToPay  float64 `json:"amountToPay"`
	AmountPaid   float64 `json:"amountPaid"`
	LastUpdated  int64   `json:"lastUpdated"`
	Status       string  `json:"status"`
	PaymentType  string  `json:"paymentType"`
	ManualStatus bool    `json:"manualStatus,omitempty"`
}

// DecodePayers parses a stored payers column.
func DecodePayers(raw []byte) ([]PayerPayment, error) {
	var records []payerRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("unrecognized payers encoding: %w", err)
	}
	payers := make([]PayerPayment, 0, len(records))
	for _, r := range records {
		payers = append(payers, PayerPayment{
			Name:         r.Name,
			AmountToPay:  r.AmountToPay,
			AmountPaid:   r.AmountPaid,
			LastUpdated:  time.UnixMilli(r.LastUpdated),
			Status:       PaymentStatus(r.Status),
			PaymentType:  PaymentType(r.PaymentType),
			ManualStatus: r.ManualStatus,
		})
	}
	return payers, nil
}

func EncodePayers(payers []PayerPayment) ([]byte, error) {
	records := make([]payerRecord, 0, len(payers))
	for _, p := range payers {
		records = append(records, payerRecord{
			Name:         p.Name,
			AmountToPay:  p.AmountToPay,
			AmountPaid:   p.AmountPaid,
			LastUpdated:  p.LastUpdated.UnixMilli(),
			Status:       string(p.Status),
			PaymentType:  string(p.PaymentType),
			ManualStatus: p.ManualStatus,
		})
	}
	return json.Marshal(records)
}
