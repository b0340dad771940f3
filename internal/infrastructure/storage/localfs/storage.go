package localfs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/OSH212/phmarcel-rpg/internal/core/ports"
)

// Storage keeps document blobs on local disk under
// <base>/<intakeID>/<sha256><ext>. Content addressing makes duplicate
// uploads land on the same path, so re-saving the same bytes is harmless.
type Storage struct {
	basePath string
}

func New(basePath string) (*Storage, error) {
	if basePath == "" {
		basePath = "./data/blobs"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Storage{basePath: basePath}, nil
}

func (s *Storage) Save(_ context.Context, intakeID, filename string, data io.Reader) (ports.StoredBlob, error) {
	dir := filepath.Join(s.basePath, intakeID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ports.StoredBlob{}, fmt.Errorf("create intake dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return ports.StoredBlob{}, fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(tmp, hasher), data)
	if err != nil {
		return ports.StoredBlob{}, fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return ports.StoredBlob{}, fmt.Errorf("close temp file: %w", err)
	}

	fingerprint := hex.EncodeToString(hasher.Sum(nil))
	path := filepath.Join(dir, fingerprint+strings.ToLower(filepath.Ext(filename)))
	if err := os.Rename(tmp.Name(), path); err != nil {
		return ports.StoredBlob{}, fmt.Errorf("place blob: %w", err)
	}
	return ports.StoredBlob{Fingerprint: fingerprint, Path: path, Size: size}, nil
}

func (s *Storage) Open(_ context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open blob: %w", err)
	}
	return f, nil
}
