package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.json", "b.json", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("[]"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := collectFiles("", dir)
	if err != nil {
		t.Fatalf("collectFiles() error = %v", err)
	}
	if len(files) != 2 {
		t.Errorf("collectFiles() = %v, want the two .json files", files)
	}
}

func TestLoadChunks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunks.json")
	payload := `[{"subject": "Mathematics", "grade_level": "Primary 4", "topic": "Fractions", "content": "Fractions name equal parts of a whole."}]`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}

	chunks, err := loadChunks(path)
	if err != nil {
		t.Fatalf("loadChunks() error = %v", err)
	}
	if len(chunks) != 1 || chunks[0].Topic != "Fractions" {
		t.Errorf("loadChunks() = %+v", chunks)
	}
}

func TestLoadChunks_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := loadChunks(path); err == nil {
		t.Error("loadChunks() should fail on malformed JSON")
	}
}
