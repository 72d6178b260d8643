package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStorage_SaveAndRead(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "exports"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	path, err := s.SaveFile("a.txt", []byte("hello"))
	if err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}
	if filepath.Base(path) != "a.txt" {
		t.Errorf("SaveFile() path = %q, want base a.txt", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("ReadFile() = %q, want %q", data, "hello")
	}

	stats, err := s.GetFileStats("a.txt")
	if err != nil {
		t.Fatalf("GetFileStats() error = %v", err)
	}
	if stats.SizeBytes != 5 {
		t.Errorf("SizeBytes = %d, want 5", stats.SizeBytes)
	}
}

func TestStorage_ReplaceFileLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for _, content := range []string{"first", "second"} {
		if _, err := s.ReplaceFile("summary.html", []byte(content)); err != nil {
			t.Fatalf("ReplaceFile() error = %v", err)
		}
	}

	data, err := os.ReadFile(s.Path("summary.html"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "second" {
		t.Errorf("ReadFile() = %q, want %q", data, "second")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1", len(entries))
	}
}

func TestStorage_MissingFile(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := s.GetFileStats("nope"); err == nil {
		t.Error("GetFileStats() error = nil, want error")
	}
}
