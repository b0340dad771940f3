package domain

// ChecklistItemView is the per-item slice of the checklist read view.
type ChecklistItemView struct {
	ID               string     `json:"id"`
	IntakeID         string     `json:"intake_id"`
	Kind             DocKind    `json:"doc_kind"`
	Status           ItemStatus `json:"status"`
	QuantityExpected int        `json:"quantity_expected"`
	QuantityReceived int        `json:"quantity_received"`
	Complete         bool       `json:"is_complete"`
	Progress         float64    `json:"progress_percentage"`
}

type ChecklistView struct {
	IntakeID        string              `json:"intake_id"`
	IntakeStatus    IntakeStatus        `json:"intake_status"`
	Complete        bool                `json:"is_complete"`
	Items           []ChecklistItemView `json:"items"`
	TotalExpected   int                 `json:"total_expected"`
	TotalReceived   int                 `json:"total_received"`
	OverallProgress float64             `json:"overall_progress"`
}

// BuildChecklistView is the pure read transformation over an intake and its
// checklist items. Overall progress is 0 when nothing is expected.
func BuildChecklistView(intake *Intake, items []ChecklistItem) *ChecklistView {
	view := &ChecklistView{
		IntakeID:     intake.ID,
		IntakeStatus: intake.Status,
		Complete:     DeriveIntakeStatus(items) == IntakeDone,
		Items:        make([]ChecklistItemView, 0, len(items)),
	}
	for i := range items {
		item := &items[i]
		view.Items = append(view.Items, ChecklistItemView{
			ID:               item.ID,
			IntakeID:         item.IntakeID,
			Kind:             item.Kind,
			Status:           item.Status,
			QuantityExpected: item.QuantityExpected,
			QuantityReceived: item.QuantityReceived,
			Complete:         item.Complete(),
			Progress:         item.Progress(),
		})
		view.TotalExpected += item.QuantityExpected
		view.TotalReceived += item.QuantityReceived
	}
	if view.TotalExpected > 0 {
		view.OverallProgress = float64(view.TotalReceived) / float64(view.TotalExpected) * 100.0
	}
	return view
}

// ClassificationResult reports one classified document in a batch run.
type ClassificationResult struct {
	DocumentID string  `json:"document_id"`
	Kind       DocKind `json:"doc_kind"`
}

// ExtractionResult reports one extracted document in a batch run.
type ExtractionResult struct {
	DocumentID      string  `json:"document_id"`
	Kind            DocKind `json:"doc_kind"`
	FieldsExtracted int     `json:"fields_extracted"`
}
