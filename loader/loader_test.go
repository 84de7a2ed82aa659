package loader

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadScriptReturnsContents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.lox")
	want := `print "hello";` + "\n"

	if err := os.WriteFile(path, []byte(want), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	got, err := ReadScript(path)
	if err != nil {
		t.Fatalf("ReadScript returned error: %v", err)
	}
	if got != want {
		t.Errorf("ReadScript() = %q, want %q", got, want)
	}
}

func TestReadScriptMissingFileIsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing.lox")

	if _, err := ReadScript(path); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}
