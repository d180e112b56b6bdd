package artifacts

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestObjectKey(t *testing.T) {
	key := ObjectKey("ses-1", "exh-9", "abc123", "motion.pdf")
	want := "sessions/ses-1/exhibits/exh-9/abc123/motion.pdf"
	if key != want {
		t.Errorf("ObjectKey = %q, want %q", key, want)
	}
}

func TestObjectKey_StripsPathComponents(t *testing.T) {
	tests := []struct {
		filename string
		wantLast string
	}{
		{"../../etc/passwd", "passwd"},
		{"dir/sub/file.pdf", "file.pdf"},
		{`C:\docs\brief.pdf`, "brief.pdf"},
		{"..", "exhibit"},
		{"", "exhibit"},
	}
	for _, tc := range tests {
		key := ObjectKey("ses-1", "exh-1", "h", tc.filename)
		if got := key[strings.LastIndex(key, "/")+1:]; got != tc.wantLast {
			t.Errorf("ObjectKey(..., %q) last segment = %q, want %q", tc.filename, got, tc.wantLast)
		}
	}
}

func TestLocalStore_PutGet(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	ctx := context.Background()
	key := ObjectKey("ses-1", "exh-1", "hash1", "brief.pdf")
	data := []byte("%PDF-1.7 fake body")

	if err := store.Put(ctx, key, data, "application/pdf"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("Get = %q, want %q", got, data)
	}
}

func TestLocalStore_PutOverwrites(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	ctx := context.Background()
	key := "sessions/ses-1/exhibits/exh-1/h/a.pdf"
	if err := store.Put(ctx, key, []byte("one"), "application/pdf"); err != nil {
		t.Fatalf("first Put: %v", err)
	}
	if err := store.Put(ctx, key, []byte("two"), "application/pdf"); err != nil {
		t.Fatalf("second Put: %v", err)
	}
	got, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "two" {
		t.Errorf("Get = %q, want %q", got, "two")
	}
}

func TestLocalStore_GetMissing(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	if _, err := store.Get(context.Background(), "sessions/ses-x/exhibits/exh-x/h/f"); err == nil {
		t.Error("expected error for missing key")
	}
}

func TestLocalStore_RejectsEscapingKeys(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(filepath.Join(dir, "blobs"))
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	ctx := context.Background()
	for _, key := range []string{"../outside", "/abs/path", "..", "."} {
		if err := store.Put(ctx, key, []byte("x"), "application/pdf"); err == nil {
			t.Errorf("Put(%q) succeeded, want error", key)
		}
	}

	// Nothing may have been written outside the root.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "blobs" {
		t.Errorf("unexpected entries outside root: %v", entries)
	}
}

func TestStoreImplementations(t *testing.T) {
	var _ Store = (*LocalStore)(nil)
	var _ Store = (*S3Store)(nil)
}
