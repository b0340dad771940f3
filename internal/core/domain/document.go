package domain

import "time"

type DocKind string

const (
	KindTaxForm        DocKind = "tax_form"
	KindIdentification DocKind = "identification"
	KindReceipt        DocKind = "receipt"
	KindUnknown        DocKind = "unknown"
)

// Valid reports whether k is a recognized classification result.
// KindUnknown is valid for a document but never for a checklist item.
func (k DocKind) Valid() bool {
	switch k {
	case KindTaxForm, KindIdentification, KindReceipt, KindUnknown:
		return true
	}
	return false
}

// FieldMap holds extracted document fields. Individual values may be nil:
// partial extraction is expected and valid.
type FieldMap map[string]any

type Document struct {
	ID          string    `json:"id"`
	IntakeID    string    `json:"intake_id"`
	Filename    string    `json:"filename"`
	SHA256      string    `json:"sha256"`
	MimeType    string    `json:"mime_type"`
	SizeBytes   int64     `json:"size_bytes"`
	PageCount   int       `json:"page_count,omitempty"`
	StoragePath string    `json:"storage_path"`
	Kind        DocKind   `json:"doc_kind"`
	Extracted   FieldMap  `json:"extracted_data,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (d *Document) Classified() bool {
	return d.Kind != KindUnknown
}

// HasExtraction reports whether the document carries usable extracted data.
// An empty field map does not count; only documents for which this is true
// contribute to checklist recounts.
func (d *Document) HasExtraction() bool {
	return len(d.Extracted) > 0
}
