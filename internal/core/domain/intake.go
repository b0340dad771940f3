package domain

import "time"

type IntakeStatus string

const (
	IntakeOpen IntakeStatus = "open"
	IntakeDone IntakeStatus = "done"
)

// Intake is one tax case: a client crossed with a fiscal year. It owns its
// checklist items and documents; status is always derived from checklist
// state, never set directly by callers.
type Intake struct {
	ID         string       `json:"id"`
	ClientID   string       `json:"client_id"`
	FiscalYear int          `json:"fiscal_year"`
	Status     IntakeStatus `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
}

// DeriveIntakeStatus computes intake status from its checklist items. An
// intake with zero items is never done: a missing requirement set means a
// misconfigured tier, not a finished case.
func DeriveIntakeStatus(items []ChecklistItem) IntakeStatus {
	if len(items) == 0 {
		return IntakeOpen
	}
	for _, item := range items {
		if item.Status != ItemReceived {
			return IntakeOpen
		}
	}
	return IntakeDone
}
