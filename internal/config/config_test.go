package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/barnettlynn/rooster/internal/generator"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	tmp := t.TempDir()
	prefs, err := Load(filepath.Join(tmp, "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if prefs.Generator.Length != 32 || prefs.Generator.Alphabet != "alnum" {
		t.Fatalf("unexpected defaults: %+v", prefs.Generator)
	}
}

func TestLoadValidFile(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "prefs.yaml")
	contents := "generator:\n  length: 40\n  alphabet: full\nclipboard:\n  clear_after_seconds: 15\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	prefs, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if prefs.Generator.Length != 40 {
		t.Fatalf("Length = %d, want 40", prefs.Generator.Length)
	}
	if prefs.GeneratorAlphabet() != generator.Full {
		t.Fatal("expected Full alphabet")
	}
	if prefs.Clipboard.ClearAfterSeconds != 15 {
		t.Fatalf("ClearAfterSeconds = %d, want 15", prefs.Clipboard.ClearAfterSeconds)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "prefs.yaml")
	if err := os.WriteFile(path, []byte("generator:\n  typo_field: true\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestLoadRejectsOutOfRangeLength(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "prefs.yaml")
	if err := os.WriteFile(path, []byte("generator:\n  length: 1000\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for out-of-range length")
	}
}

func TestLoadScryptOverride(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "prefs.yaml")
	if err := os.WriteFile(path, []byte("scrypt:\n  log2n: 15\n  r: 8\n  p: 1\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	prefs, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !prefs.ScryptOverridden() {
		t.Fatal("expected ScryptOverridden to be true")
	}
	params := prefs.Scrypt.ScryptParams()
	if params.Log2N != 15 || params.R != 8 || params.P != 1 {
		t.Fatalf("unexpected params: %+v", params)
	}
}

func TestLoadRejectsWeakScryptOverride(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "prefs.yaml")
	if err := os.WriteFile(path, []byte("scrypt:\n  log2n: 4\n  r: 8\n  p: 1\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for weak scrypt override")
	}
}

func TestDefaultHasNoScryptOverride(t *testing.T) {
	if Default().ScryptOverridden() {
		t.Fatal("expected Default() to leave scrypt parameters unoverridden")
	}
}
