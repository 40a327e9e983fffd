package budget

import (
	"errors"
	"time"
)

var ErrPayerExists = errors.New("payer already exists on this item")

// ItemTotal computes an item's total: unit cost times quantity, plus the flat
// fee, plus the labor fee when enabled.
func ItemTotal(cost float64, quantity int, otherFee float64, hasLaborFee bool, laborFee float64) float64 {
	total := cost*float64(quantity) + otherFee
	if hasLaborFee {
		total += laborFee
	}
	return total
}

// StatusFor derives a payment status from the amounts: paid once the share is
// covered (over-payment included), delayed while partially paid, due otherwise.
func StatusFor(amountToPay, amountPaid float64) PaymentStatus {
	switch {
	case amountPaid >= amountToPay:
		return PaymentStatusPaid
	case amountPaid > 0:
		return PaymentStatusDelayed
	default:
		return PaymentStatusDue
	}
}

// NewPayer creates a fresh payer with nothing paid yet.
func NewPayer(name string, amountToPay float64, now time.Time) PayerPayment {
	return PayerPayment{
		Name:        name,
		AmountToPay: amountToPay,
		AmountPaid:  0,
		LastUpdated: now,
		Status:      PaymentStatusDue,
		PaymentType: PaymentTypeGcash,
	}
}

// SplitAmong divides the total equally across the given names, producing
// fresh payers. An empty roster yields an empty list. Division is plain
// floating point; shares are not rounded to cents.
func SplitAmong(total float64, names []string, now time.Time) []PayerPayment {
	if len(names) == 0 {
		return nil
	}
	share := total / float64(len(names))
	payers := make([]PayerPayment, 0, len(names))
	for _, name := range names {
		payers = append(payers, NewPayer(name, share, now))
	}
	return payers
}

// Resplit recomputes every payer's share after the total or the roster
// changed, preserving paid amounts and payment types. Statuses are re-derived
// from the new share unless manually overridden.
func Resplit(payers []PayerPayment, total float64) []PayerPayment {
	if len(payers) == 0 {
		return nil
	}
	share := total / float64(len(payers))
	result := make([]PayerPayment, 0, len(payers))
	for _, p := range payers {
		p.AmountToPay = share
		if !p.ManualStatus {
			p.Status = StatusFor(share, p.AmountPaid)
		}
		result = append(result, p)
	}
	return result
}

// AddPayer adds a new payer and recomputes every share over the grown roster.
func AddPayer(payers []PayerPayment, name string, total float64, now time.Time) ([]PayerPayment, error) {
	for _, p := range payers {
		if p.Name == name {
			return nil, ErrPayerExists
		}
	}
	grown := make([]PayerPayment, 0, len(payers)+1)
	grown = append(grown, payers...)
	grown = append(grown, NewPayer(name, 0, now))
	return Resplit(grown, total), nil
}

// RemovePayer removes the named payer and recomputes the remaining shares.
// Removing the last payer leaves an empty roster, no recompute needed.
func RemovePayer(payers []PayerPayment, name string, total float64) []PayerPayment {
	remaining := make([]PayerPayment, 0, len(payers))
	for _, p := range payers {
		if p.Name != name {
			remaining = append(remaining, p)
		}
	}
	if len(remaining) == 0 {
		return nil
	}
	return Resplit(remaining, total)
}
