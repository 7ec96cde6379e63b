package storage

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestLocalBackendRoundTrip(t *testing.T) {
	backend := NewLocalBackend(t.TempDir())

	content := []byte("lecture slides")
	ref, err := backend.Store(content, "materials", "slides.pdf")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if !strings.HasPrefix(ref, "materials/") {
		t.Errorf("ref %q not under materials/", ref)
	}
	if !strings.HasSuffix(ref, ".pdf") {
		t.Errorf("ref %q lost its extension", ref)
	}
	if strings.Contains(ref, "\\") {
		t.Errorf("ref %q contains backslashes", ref)
	}

	reader, err := backend.Resolve(ref)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	defer reader.Close()

	got, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content = %q, want %q", got, content)
	}
}

func TestLocalBackendResolveMissing(t *testing.T) {
	backend := NewLocalBackend(t.TempDir())

	_, err := backend.Resolve("materials/2026/01/nope.pdf")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve missing file = %v, want ErrNotFound", err)
	}
}

func TestLocalBackendRemove(t *testing.T) {
	backend := NewLocalBackend(t.TempDir())

	ref, err := backend.Store([]byte("x"), "recordings", "clip.mp4")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	if err := backend.Remove(ref); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := backend.Resolve(ref); !errors.Is(err, ErrNotFound) {
		t.Errorf("file still resolvable after Remove: %v", err)
	}

	// Removing twice is not an error
	if err := backend.Remove(ref); err != nil {
		t.Errorf("second Remove: %v", err)
	}
}

func TestLocalBackendRejectsTraversal(t *testing.T) {
	backend := NewLocalBackend(t.TempDir())

	for _, ref := range []string{"../etc/passwd", "/etc/passwd", "materials/../../x"} {
		if _, err := backend.Resolve(ref); err == nil || errors.Is(err, ErrNotFound) {
			t.Errorf("Resolve(%q) did not reject the reference: %v", ref, err)
		}
		if err := backend.Remove(ref); err == nil {
			t.Errorf("Remove(%q) did not reject the reference", ref)
		}
	}
}
