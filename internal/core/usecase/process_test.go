package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/OSH212/phmarcel-rpg/internal/core/domain"
)

type processDocsFake struct {
	docs        map[string]*domain.Document
	kindSaves   map[string]domain.DocKind
	fieldSaves  map[string]domain.FieldMap
	saveKindErr error
}

func newProcessDocsFake(docs ...*domain.Document) *processDocsFake {
	f := &processDocsFake{
		docs:       map[string]*domain.Document{},
		kindSaves:  map[string]domain.DocKind{},
		fieldSaves: map[string]domain.FieldMap{},
	}
	for _, d := range docs {
		f.docs[d.ID] = d
	}
	return f
}

func (f *processDocsFake) Create(context.Context, *domain.Document) error {
	return errors.New("not implemented")
}

func (f *processDocsFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get document", errors.New(id))
	}
	copyDoc := *doc
	return &copyDoc, nil
}

func (f *processDocsFake) FindByFingerprint(context.Context, string, string) (*domain.Document, error) {
	return nil, errors.New("not implemented")
}

func (f *processDocsFake) ListByIntake(_ context.Context, intakeID string) ([]domain.Document, error) {
	var out []domain.Document
	for _, d := range f.docs {
		if d.IntakeID == intakeID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *processDocsFake) UpdateKind(_ context.Context, id string, kind domain.DocKind) error {
	if f.saveKindErr != nil {
		return f.saveKindErr
	}
	f.kindSaves[id] = kind
	f.docs[id].Kind = kind
	return nil
}

func (f *processDocsFake) SaveExtraction(_ context.Context, id string, fields domain.FieldMap) error {
	f.fieldSaves[id] = fields
	f.docs[id].Extracted = fields
	return nil
}

func (f *processDocsFake) CountExtracted(context.Context, string, domain.DocKind) (int, error) {
	return 0, errors.New("not implemented")
}

type annotatorFake struct {
	kinds       map[string]domain.DocKind
	fields      map[domain.DocKind]domain.FieldMap
	classifyErr error
	extractErr  map[string]error
}

func (f *annotatorFake) Classify(_ context.Context, path string) (domain.DocKind, error) {
	if f.classifyErr != nil {
		return "", f.classifyErr
	}
	return f.kinds[path], nil
}

func (f *annotatorFake) Extract(_ context.Context, path string, kind domain.DocKind) (domain.FieldMap, error) {
	if err := f.extractErr[path]; err != nil {
		return nil, err
	}
	return f.fields[kind], nil
}

type reconcilerSpy struct {
	docs []*domain.Document
	err  error
}

func (f *reconcilerSpy) DocumentExtracted(_ context.Context, doc *domain.Document) error {
	if f.err != nil {
		return f.err
	}
	copyDoc := *doc
	f.docs = append(f.docs, &copyDoc)
	return nil
}

func TestClassifyByIDSavesKind(t *testing.T) {
	docs := newProcessDocsFake(&domain.Document{ID: "doc-1", StoragePath: "p/1", Kind: domain.KindUnknown})
	annotator := &annotatorFake{kinds: map[string]domain.DocKind{"p/1": domain.KindTaxForm}}
	uc := NewProcessDocumentUseCase(&intakeRepoFake{}, docs, annotator, &reconcilerSpy{})

	doc, err := uc.ClassifyByID(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("ClassifyByID() error = %v", err)
	}
	if doc.Kind != domain.KindTaxForm || docs.kindSaves["doc-1"] != domain.KindTaxForm {
		t.Fatalf("classification not persisted: %+v", doc)
	}
}

func TestClassifyByIDModelFailureLeavesDocument(t *testing.T) {
	docs := newProcessDocsFake(&domain.Document{ID: "doc-1", StoragePath: "p/1", Kind: domain.KindUnknown})
	annotator := &annotatorFake{classifyErr: errors.New("model overloaded")}
	uc := NewProcessDocumentUseCase(&intakeRepoFake{}, docs, annotator, &reconcilerSpy{})

	_, err := uc.ClassifyByID(context.Background(), "doc-1")
	if !domain.IsKind(err, domain.ErrExternal) {
		t.Fatalf("expected ErrExternal, got %v", err)
	}
	if len(docs.kindSaves) != 0 {
		t.Fatalf("failed classification must not mutate the document")
	}
	if docs.docs["doc-1"].Kind != domain.KindUnknown {
		t.Fatalf("document kind must stay unknown")
	}
}

func TestClassifyByIDRejectsOutOfEnumKind(t *testing.T) {
	docs := newProcessDocsFake(&domain.Document{ID: "doc-1", StoragePath: "p/1", Kind: domain.KindUnknown})
	annotator := &annotatorFake{kinds: map[string]domain.DocKind{"p/1": domain.DocKind("w2")}}
	uc := NewProcessDocumentUseCase(&intakeRepoFake{}, docs, annotator, &reconcilerSpy{})

	_, err := uc.ClassifyByID(context.Background(), "doc-1")
	if !domain.IsKind(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if len(docs.kindSaves) != 0 {
		t.Fatalf("rejected classification must not mutate the document")
	}
}

func TestExtractByIDRequiresClassification(t *testing.T) {
	docs := newProcessDocsFake(&domain.Document{ID: "doc-1", StoragePath: "p/1", Kind: domain.KindUnknown})
	uc := NewProcessDocumentUseCase(&intakeRepoFake{}, docs, &annotatorFake{}, &reconcilerSpy{})

	_, err := uc.ExtractByID(context.Background(), "doc-1")
	if !domain.IsKind(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestExtractByIDPersistsAndReconciles(t *testing.T) {
	docs := newProcessDocsFake(&domain.Document{ID: "doc-1", IntakeID: "intake-1", StoragePath: "p/1", Kind: domain.KindTaxForm})
	annotator := &annotatorFake{fields: map[domain.DocKind]domain.FieldMap{
		domain.KindTaxForm: {"employer_name": "Ready Plan Go Inc.", "box_14": "4209.90"},
	}}
	reconciler := &reconcilerSpy{}
	uc := NewProcessDocumentUseCase(&intakeRepoFake{}, docs, annotator, reconciler)

	doc, err := uc.ExtractByID(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("ExtractByID() error = %v", err)
	}
	if len(docs.fieldSaves["doc-1"]) != 2 {
		t.Fatalf("extraction not persisted: %+v", docs.fieldSaves)
	}
	if len(reconciler.docs) != 1 || reconciler.docs[0].ID != "doc-1" {
		t.Fatalf("expected reconciliation after extraction, got %+v", reconciler.docs)
	}
	if !doc.HasExtraction() {
		t.Fatalf("returned document must carry the field map")
	}
}

func TestExtractByIDExternalFailureLeavesDocument(t *testing.T) {
	docs := newProcessDocsFake(&domain.Document{ID: "doc-1", StoragePath: "p/1", Kind: domain.KindReceipt})
	annotator := &annotatorFake{extractErr: map[string]error{"p/1": errors.New("model timeout")}}
	reconciler := &reconcilerSpy{}
	uc := NewProcessDocumentUseCase(&intakeRepoFake{}, docs, annotator, reconciler)

	_, err := uc.ExtractByID(context.Background(), "doc-1")
	if !domain.IsKind(err, domain.ErrExternal) {
		t.Fatalf("expected ErrExternal, got %v", err)
	}
	if len(docs.fieldSaves) != 0 || len(reconciler.docs) != 0 {
		t.Fatalf("failed extraction must not persist or reconcile")
	}
}

func TestProcessByIDRunsFullPipeline(t *testing.T) {
	docs := newProcessDocsFake(&domain.Document{ID: "doc-1", IntakeID: "intake-1", StoragePath: "p/1", Kind: domain.KindUnknown})
	annotator := &annotatorFake{
		kinds:  map[string]domain.DocKind{"p/1": domain.KindIdentification},
		fields: map[domain.DocKind]domain.FieldMap{domain.KindIdentification: {"full_name": "PRIME OPTIMUS"}},
	}
	reconciler := &reconcilerSpy{}
	uc := NewProcessDocumentUseCase(&intakeRepoFake{}, docs, annotator, reconciler)

	if err := uc.ProcessByID(context.Background(), "doc-1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}
	if docs.docs["doc-1"].Kind != domain.KindIdentification {
		t.Fatalf("pipeline must classify first")
	}
	if len(reconciler.docs) != 1 {
		t.Fatalf("pipeline must extract and reconcile")
	}
}

func TestProcessByIDStopsOnUnknownVerdict(t *testing.T) {
	docs := newProcessDocsFake(&domain.Document{ID: "doc-1", StoragePath: "p/1", Kind: domain.KindUnknown})
	annotator := &annotatorFake{kinds: map[string]domain.DocKind{"p/1": domain.KindUnknown}}
	reconciler := &reconcilerSpy{}
	uc := NewProcessDocumentUseCase(&intakeRepoFake{}, docs, annotator, reconciler)

	if err := uc.ProcessByID(context.Background(), "doc-1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}
	if len(reconciler.docs) != 0 {
		t.Fatalf("unknown verdict must not reach extraction")
	}
}

func TestClassifyIntakeRequiresUnknownDocuments(t *testing.T) {
	intakes := &intakeRepoFake{intake: &domain.Intake{ID: "intake-1"}}
	docs := newProcessDocsFake(&domain.Document{ID: "doc-1", IntakeID: "intake-1", Kind: domain.KindTaxForm})
	uc := NewProcessDocumentUseCase(intakes, docs, &annotatorFake{}, &reconcilerSpy{})

	_, err := uc.ClassifyIntake(context.Background(), "intake-1")
	if !domain.IsKind(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestExtractIntakeSkipsFailuresAndContinues(t *testing.T) {
	intakes := &intakeRepoFake{intake: &domain.Intake{ID: "intake-1"}}
	docs := newProcessDocsFake(
		&domain.Document{ID: "doc-1", IntakeID: "intake-1", StoragePath: "p/1", Kind: domain.KindReceipt},
		&domain.Document{ID: "doc-2", IntakeID: "intake-1", StoragePath: "p/2", Kind: domain.KindReceipt},
	)
	annotator := &annotatorFake{
		fields:     map[domain.DocKind]domain.FieldMap{domain.KindReceipt: {"merchant_name": "Maple Hardware", "total_amount": nil}},
		extractErr: map[string]error{"p/1": errors.New("model timeout")},
	}
	reconciler := &reconcilerSpy{}
	uc := NewProcessDocumentUseCase(intakes, docs, annotator, reconciler)

	results, err := uc.ExtractIntake(context.Background(), "intake-1")
	if err != nil {
		t.Fatalf("ExtractIntake() error = %v", err)
	}
	if len(results) != 1 || results[0].DocumentID != "doc-2" {
		t.Fatalf("expected doc-2 extracted despite doc-1 failure, got %+v", results)
	}
	if results[0].FieldsExtracted != 1 {
		t.Fatalf("nil fields must not count as extracted, got %d", results[0].FieldsExtracted)
	}
	if len(reconciler.docs) != 1 {
		t.Fatalf("only the successful extraction reconciles")
	}
}
