package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRunRebuildsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.gala")
	other := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("fn main() =\n    return 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	fw, err := New([]string{path})
	if err != nil {
		t.Fatal(err)
	}
	defer fw.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	builds := make(chan []string, 8)
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, fw, 50*time.Millisecond, func(changed []string) {
			builds <- changed
		})
	}()

	first := <-builds
	if first != nil {
		t.Fatalf("expected the initial build to have no changed files, got %v", first)
	}

	if err := os.WriteFile(other, []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("fn main() =\n    return 2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case changed := <-builds:
		abs, _ := filepath.Abs(path)
		if len(changed) != 1 || changed[0] != abs {
			t.Errorf("expected a rebuild for %s, got %v", abs, changed)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for a rebuild")
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNewMissingDirectory(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "missing", "main.gala")})
	if err == nil {
		t.Errorf("expected an error for a file in a missing directory")
	}
}
