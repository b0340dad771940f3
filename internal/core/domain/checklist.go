package domain

type ItemStatus string

const (
	ItemMissing  ItemStatus = "missing"
	ItemReceived ItemStatus = "received"
)

// ChecklistItem tracks one required document kind for an intake. There is
// exactly one item per (intake, kind), and the kind is never KindUnknown.
// QuantityReceived is a recomputed fact, not a counter: reconciliation
// recounts it from the intake's documents, so an item can move back to
// missing if extracted data is later cleared.
type ChecklistItem struct {
	ID               string     `json:"id"`
	IntakeID         string     `json:"intake_id"`
	Kind             DocKind    `json:"doc_kind"`
	Status           ItemStatus `json:"status"`
	QuantityExpected int        `json:"quantity_expected"`
	QuantityReceived int        `json:"quantity_received"`
}

func (i *ChecklistItem) Complete() bool {
	return i.QuantityReceived >= i.QuantityExpected
}

// SetReceived applies a recounted received quantity and re-derives status.
func (i *ChecklistItem) SetReceived(count int) {
	i.QuantityReceived = count
	if i.Complete() {
		i.Status = ItemReceived
	} else {
		i.Status = ItemMissing
	}
}

func (i *ChecklistItem) Progress() float64 {
	if i.QuantityExpected == 0 {
		return 0.0
	}
	return float64(i.QuantityReceived) / float64(i.QuantityExpected) * 100.0
}
