package inspect

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/OSH212/phmarcel-rpg/internal/core/domain"
)

// mimeByExt is the upload allowlist. Anything else is rejected before
// bytes reach storage.
var mimeByExt = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// Inspector validates uploads and reports their mime type and, for PDFs,
// the page count.
type Inspector struct{}

func New() *Inspector {
	return &Inspector{}
}

func (i *Inspector) Inspect(filename string, data []byte) (string, int, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	mimeType, ok := mimeByExt[ext]
	if !ok {
		return "", 0, domain.WrapError(domain.ErrInvalidState, "inspect upload",
			fmt.Errorf("unsupported file type %q, accepted: pdf, png, jpg, jpeg", ext))
	}
	if len(data) == 0 {
		return "", 0, domain.WrapError(domain.ErrInvalidState, "inspect upload",
			fmt.Errorf("empty file %q", filename))
	}

	if mimeType != "application/pdf" {
		return mimeType, 0, nil
	}

	pages, err := countPDFPages(data)
	if err != nil {
		return "", 0, domain.WrapError(domain.ErrInvalidState, "inspect upload",
			fmt.Errorf("unreadable pdf %q: %w", filename, err))
	}
	return mimeType, pages, nil
}

// countPDFPages parses just enough of the document to read the page tree.
// The parser panics on some malformed inputs, hence the recover.
func countPDFPages(data []byte) (pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("parse pdf: %w", err)
	}
	return reader.NumPage(), nil
}
