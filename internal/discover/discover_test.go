package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/phobologic/schemagen/internal/node"
)

func TestDiscoverSchemaFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "order.json", `{"type": "object"}`)
	writeFile(t, dir, "common/address.yaml", "type: object\n")
	writeFile(t, dir, "common/phone.yml", "type: object\n")
	// Unsupported extension should be ignored
	writeFile(t, dir, "readme.txt", "hello")
	// Hidden file should be ignored
	writeFile(t, dir, ".hidden.json", "{}")

	entries, err := Files(dir, nil)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}

	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}

	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d: %v", len(entries), paths)
	}

	// Should be sorted
	want := []struct {
		path   string
		format node.Format
	}{
		{filepath.Join("common", "address.yaml"), node.FormatYAML},
		{filepath.Join("common", "phone.yml"), node.FormatYAML},
		{"order.json", node.FormatJSON},
	}
	for i, w := range want {
		if entries[i].Path != w.path {
			t.Errorf("entry %d: got %q, want %q", i, entries[i].Path, w.path)
		}
		if entries[i].Format != w.format {
			t.Errorf("entry %q: format = %q, want %q", entries[i].Path, entries[i].Format, w.format)
		}
	}
	if entries[2].Size != int64(len(`{"type": "object"}`)) {
		t.Errorf("order.json size = %d", entries[2].Size)
	}
}

func TestDiscoverSkipDirs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "main.json", "{}")
	writeFile(t, dir, "node_modules/pkg.json", "{}")
	writeFile(t, dir, "vendor/dep.json", "{}")
	writeFile(t, dir, ".hidden/secret.json", "{}")

	entries, err := Files(dir, nil)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Path != "main.json" {
		t.Errorf("expected main.json, got %q", entries[0].Path)
	}
}

func TestDiscoverFormatFilter(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "a.json", "{}")
	writeFile(t, dir, "b.json", "{}")
	writeFile(t, dir, "c.yaml", "{}")

	entries, err := Files(dir, []node.Format{node.FormatJSON})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries for json filter, got %d", len(entries))
	}

	entries, err = Files(dir, []node.Format{node.FormatYAML})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(entries) != 1 || entries[0].Path != "c.yaml" {
		t.Fatalf("expected c.yaml for yaml filter, got %+v", entries)
	}
}

func TestDiscoverIgnoreFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, ".gitignore", "generated/\n")
	writeFile(t, dir, IgnoreFile, "*.draft.json\n")
	writeFile(t, dir, "keep.json", "{}")
	writeFile(t, dir, "wip.draft.json", "{}")
	writeFile(t, dir, "generated/out.json", "{}")

	entries, err := Files(dir, nil)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(entries) != 1 || entries[0].Path != "keep.json" {
		t.Fatalf("expected only keep.json, got %+v", entries)
	}
}

func TestDiscoverSymlinksSkipped(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "real.json", "{}")

	// Create symlink
	err := os.Symlink(filepath.Join(dir, "real.json"), filepath.Join(dir, "link.json"))
	if err != nil {
		t.Skip("symlinks not supported")
	}

	entries, err := Files(dir, nil)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry (no symlink), got %d", len(entries))
	}
	if entries[0].Path != "real.json" {
		t.Errorf("expected real.json, got %q", entries[0].Path)
	}
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
