package ranges

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoaderLoad(t *testing.T) {
	tmpDir := t.TempDir()
	yamlPath := filepath.Join(tmpDir, "ranges.yaml")

	yamlContent := `---
ranges:
  - "routing!A:G"
  - " 'Hoja 1'!A:G "
  - "routing!A:G"
  - ""
`

	err := os.WriteFile(yamlPath, []byte(yamlContent), 0o644)
	if err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}

	got, err := NewLoader(yamlPath).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []string{"routing!A:G", "'Hoja 1'!A:G"}
	if len(got) != len(want) {
		t.Fatalf("Load() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Load()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLoaderDefaults(t *testing.T) {
	got, err := NewLoader("").Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 7 {
		t.Fatalf("Load() returned %d ranges, want 7", len(got))
	}
	if got[0] != "tap_content!A:G" {
		t.Errorf("first default = %q", got[0])
	}

	// Callers must not be able to alter the package defaults.
	got[0] = "changed"
	if Defaults[0] != "tap_content!A:G" {
		t.Error("Load() returned the Defaults backing array")
	}
}

func TestLoaderEmptyFile(t *testing.T) {
	yamlPath := filepath.Join(t.TempDir(), "ranges.yaml")
	if err := os.WriteFile(yamlPath, []byte("ranges: []\n"), 0o644); err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}

	if _, err := NewLoader(yamlPath).Load(); err == nil {
		t.Error("Load() with no ranges should return error")
	}
}

func TestLoaderLoadFileNotFound(t *testing.T) {
	loader := NewLoader("/nonexistent/path/ranges.yaml")
	_, err := loader.Load()
	if err == nil {
		t.Error("Load() with non-existent file should return error")
	}
}

func TestLoaderInvalidYAML(t *testing.T) {
	yamlPath := filepath.Join(t.TempDir(), "ranges.yaml")
	if err := os.WriteFile(yamlPath, []byte("ranges: [unterminated\n"), 0o644); err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}

	if _, err := NewLoader(yamlPath).Load(); err == nil {
		t.Error("Load() with invalid yaml should return error")
	}
}
