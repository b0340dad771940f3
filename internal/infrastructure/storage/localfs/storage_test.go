package localfs

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveIsContentAddressed(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	content := []byte("%PDF-1.4 fake payload")
	sum := sha256.Sum256(content)
	want := hex.EncodeToString(sum[:])

	blob, err := store.Save(context.Background(), "intake-1", "T4.PDF", bytes.NewReader(content))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if blob.Fingerprint != want {
		t.Fatalf("fingerprint = %s, want %s", blob.Fingerprint, want)
	}
	if blob.Size != int64(len(content)) {
		t.Fatalf("size = %d, want %d", blob.Size, len(content))
	}
	if filepath.Base(blob.Path) != want+".pdf" {
		t.Fatalf("path = %s, want basename %s.pdf", blob.Path, want)
	}
	if !strings.Contains(blob.Path, "intake-1") {
		t.Fatalf("path %s not under intake dir", blob.Path)
	}

	rc, err := store.Open(context.Background(), blob.Path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read blob: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Fatalf("round trip mismatch")
	}
}

func TestSaveSameBytesTwiceLandsOnSamePath(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	first, err := store.Save(context.Background(), "intake-1", "a.png", bytes.NewReader([]byte("pixels")))
	if err != nil {
		t.Fatalf("first Save() error = %v", err)
	}
	second, err := store.Save(context.Background(), "intake-1", "b.png", bytes.NewReader([]byte("pixels")))
	if err != nil {
		t.Fatalf("second Save() error = %v", err)
	}
	if first.Path != second.Path {
		t.Fatalf("paths differ: %s vs %s", first.Path, second.Path)
	}
}
