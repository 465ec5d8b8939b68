package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/phobologic/schemagen/internal/discover"
)

const (
	sentinelStart = "# schemagen:start"
	sentinelEnd   = "# schemagen:end"
)

// runInit implements the `schemagen init` subcommand, which writes (or
// updates) a managed block of ignore patterns in a schema directory's
// .schemagenignore file.
func runInit(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("schemagen init", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var dryRun bool
	fs.BoolVar(&dryRun, "dry-run", false, "print what would be written without modifying the file")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: schemagen init [flags] [schema-dir]

Write the default ignore patterns to schema-dir/%s. The patterns keep
package manifests and editor settings, which are JSON but not schemas, out of
the reference table. The block is wrapped in sentinel comments so it can be
updated in place without touching patterns added by hand. Creates the file if
it does not exist.

schema-dir defaults to the current directory.

Flags:
`, discover.IgnoreFile)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	section := generateSection()

	dir := "."
	if fs.NArg() > 0 {
		dir = fs.Arg(0)
	}
	path := filepath.Join(dir, discover.IgnoreFile)

	existing, _ := os.ReadFile(path)
	updated := applySection(string(existing), section)

	if dryRun {
		_, _ = fmt.Fprint(stdout, updated)
		return nil
	}

	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(stderr, "wrote schemagen section to %s\n", path)
	return nil
}

// generateSection returns the sentinel-wrapped block of default patterns.
func generateSection() string {
	body := `# Managed by schemagen init; edits inside this block are overwritten.
package.json
package-lock.json
composer.json
tsconfig*.json
*.draft.json
*.draft.yaml
fixtures/`

	return sentinelStart + "\n" + body + "\n" + sentinelEnd
}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not. It is a pure function for easy testing.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}

	// Append, ensuring a blank line separator.
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if len(content) == 0 {
		return section + "\n"
	}
	return content + "\n" + section + "\n"
}
