// schemagen generates random JSON fixtures from a directory of JSON Schema
// definitions, or lists the definitions it found in TOON format.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"

	"github.com/phobologic/schemagen/internal/discover"
	"github.com/phobologic/schemagen/internal/graph"
	"github.com/phobologic/schemagen/internal/logging"
	"github.com/phobologic/schemagen/internal/node"
	"github.com/phobologic/schemagen/internal/ranking"
	"github.com/phobologic/schemagen/internal/schema"
	"github.com/phobologic/schemagen/internal/synth"
	"github.com/phobologic/schemagen/internal/toon"
)

var version = "dev"

const defaultMaxFileSize = 1_000_000 // 1 MB

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	definition  string
	count       int
	pretty      bool
	compact     bool
	list        bool
	filter      string
	top         int
	formats     string
	seed        uint64
	maxFileSize int
	maxRetries  int
	logLevel    string
	verbose     bool
	showVersion bool
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 && args[0] == "init" {
		return runInit(args[1:], stdout, stderr)
	}

	fs := flag.NewFlagSet("schemagen", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var o options
	fs.StringVar(&o.definition, "d", "", "definition to generate (local name or qualified key)")
	fs.StringVar(&o.definition, "definition", "", "definition to generate (local name or qualified key)")
	fs.IntVar(&o.count, "n", 1, "number of payloads to generate")
	fs.IntVar(&o.count, "count", 1, "number of payloads to generate")
	fs.BoolVar(&o.pretty, "p", false, "pretty-print payloads (default when stdout is a terminal)")
	fs.BoolVar(&o.pretty, "pretty", false, "pretty-print payloads (default when stdout is a terminal)")
	fs.BoolVar(&o.compact, "compact", false, "write one payload per line")
	fs.BoolVar(&o.list, "list", false, "list definitions instead of generating")
	fs.StringVar(&o.filter, "filter", "", "list only definitions whose name contains this substring")
	fs.IntVar(&o.top, "top", 0, "list only the top N ranked definitions")
	fs.StringVar(&o.formats, "formats", "", "comma-separated schema formats to load (json,yaml)")
	fs.Uint64Var(&o.seed, "seed", 0, "random seed (0 picks one from the clock)")
	fs.IntVar(&o.maxFileSize, "max-file-size", defaultMaxFileSize, "skip files larger than this many bytes")
	fs.IntVar(&o.maxRetries, "max-retries", synth.DefaultMaxPatternAttempts, "attempts per pattern before giving up")
	fs.StringVar(&o.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	fs.BoolVar(&o.verbose, "v", false, "log at info level")
	fs.BoolVar(&o.verbose, "verbose", false, "log at info level")
	fs.BoolVar(&o.showVersion, "V", false, "show version and exit")
	fs.BoolVar(&o.showVersion, "version", false, "show version and exit")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: schemagen [flags] <schema-dir>
       schemagen init [flags] [schema-dir]

Generate random JSON payloads for a definition found in schema-dir, or list
the definitions when -d is not given.

Flags:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	if o.showVersion {
		_, _ = fmt.Fprintf(stdout, "schemagen %s\n", version)
		return nil
	}

	level := o.logLevel
	if o.verbose && level == "warn" {
		level = "info"
	}
	log, err := logging.New(stderr, level)
	if err != nil {
		return err
	}

	if o.count < 0 {
		return fmt.Errorf("count must not be negative, got %d", o.count)
	}
	if o.maxRetries <= 0 {
		return fmt.Errorf("max-retries must be positive, got %d", o.maxRetries)
	}
	if o.pretty && o.compact {
		return errors.New("-pretty and -compact are mutually exclusive")
	}
	if o.list && o.definition != "" {
		return errors.New("-list and -definition are mutually exclusive")
	}
	if !o.pretty && !o.compact {
		o.pretty = isTerminal(stdout)
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing schema directory")
	}
	root, err := filepath.Abs(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("resolving root: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: not a directory", root)
	}

	var formatFilter []node.Format
	if o.formats != "" {
		for _, name := range strings.Split(o.formats, ",") {
			f := node.Format(strings.TrimSpace(name))
			if f != node.FormatJSON && f != node.FormatYAML {
				return fmt.Errorf("unsupported format %q", name)
			}
			formatFilter = append(formatFilter, f)
		}
	}

	// Discover files
	files, err := discover.Files(root, formatFilter)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no schema files found")
	}
	log.WithField("files", len(files)).Debug("discovered schema files")

	// Filter by size
	files = filterBySize(files, o.maxFileSize, log)
	if len(files) == 0 {
		return fmt.Errorf("no schema files found (all exceeded size limit)")
	}

	// Parse files concurrently, then fold in path order
	docs := parseFilesConcurrent(root, files, log)
	table := buildTable(docs, log)
	if table.Len() == 0 {
		return fmt.Errorf("no definitions could be loaded")
	}
	log.WithField("definitions", table.Len()).Debug("built reference table")

	if o.definition == "" {
		return list(stdout, filepath.Base(root), table, o)
	}
	return generate(stdout, table, o, log)
}

func list(stdout io.Writer, root string, table *schema.Table, o options) error {
	cat := graph.Build(root, table)
	if o.filter != "" {
		cat = ranking.FilterByName(cat, o.filter)
	}
	if o.top > 0 {
		cat = ranking.SelectTop(cat, o.top)
	}
	_, err := fmt.Fprintln(stdout, toon.Encode(cat))
	return err
}

func generate(stdout io.Writer, table *schema.Table, o options, log *logrus.Logger) error {
	key, _, err := table.Resolve(o.definition)
	if err != nil {
		return err
	}

	seed := o.seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	log.WithFields(logrus.Fields{"definition": key, "seed": seed, "count": o.count}).Info("generating payloads")

	gen := synth.New(synth.NewSource(seed), table, synth.WithMaxPatternAttempts(o.maxRetries))

	emit := func(payload any) error {
		var data []byte
		var err error
		if o.pretty {
			data, err = json.MarshalIndent(payload, "", "  ")
		} else {
			data, err = json.Marshal(payload)
		}
		if err != nil {
			return fmt.Errorf("encoding payload: %w", err)
		}
		_, err = stdout.Write(append(data, '\n'))
		return err
	}
	skip := func(f synth.Failure) {
		log.WithError(f.Err).WithField("payload", f.Index).Warn("payload skipped")
	}

	skipped, err := gen.Batch(key, o.count, emit, skip)
	if skipped > 0 {
		log.WithFields(logrus.Fields{"definition": key, "seed": seed}).
			Warnf("skipped %d of %d payloads", skipped, o.count)
	}
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func filterBySize(files []discover.FileEntry, maxSize int, log *logrus.Logger) []discover.FileEntry {
	var kept []discover.FileEntry
	for _, f := range files {
		if f.Size > int64(maxSize) {
			log.WithFields(logrus.Fields{"file": f.Path, "size": f.Size}).
				Warnf("skipped (>%d bytes)", maxSize)
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

func parseFilesConcurrent(root string, files []discover.FileEntry, log *logrus.Logger) []*schema.Document {
	type result struct {
		index int
		doc   *schema.Document
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make(chan result, len(files))

	var wg sync.WaitGroup

	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for idx := range work {
				f := files[idx]
				doc, err := parseFile(root, f)
				if err != nil {
					log.WithError(err).WithField("file", f.Path).Warn("skipping schema file")
					continue
				}
				results <- result{index: idx, doc: doc}
			}
		}()
	}

	for i := range files {
		work <- i
	}
	close(work)

	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect results in original order
	indexed := make([]*schema.Document, len(files))
	for r := range results {
		indexed[r.index] = r.doc
	}

	var docs []*schema.Document
	for _, d := range indexed {
		if d != nil {
			docs = append(docs, d)
		}
	}

	return docs
}

func parseFile(root string, f discover.FileEntry) (*schema.Document, error) {
	data, err := os.ReadFile(filepath.Join(root, f.Path))
	if err != nil {
		return nil, err
	}
	n, err := node.Decode(f.Format, data)
	if err != nil {
		return nil, err
	}
	return schema.ParseDocument(n, filepath.Base(f.Path))
}

// buildTable folds documents into the reference table in order. A document
// clashing with an earlier one is logged and left out.
func buildTable(docs []*schema.Document, log *logrus.Logger) *schema.Table {
	b := schema.NewTableBuilder()
	for _, doc := range docs {
		if err := b.Add(doc); err != nil {
			log.WithError(err).WithField("file", doc.SourceID).Warn("skipping schema file")
		}
	}
	return b.Build()
}

// flagsWithValue lists flags that take a value argument.
var flagsWithValue = map[string]bool{
	"-d": true, "--d": true,
	"-definition": true, "--definition": true,
	"-n": true, "--n": true,
	"-count": true, "--count": true,
	"-filter": true, "--filter": true,
	"-top": true, "--top": true,
	"-formats": true, "--formats": true,
	"-seed": true, "--seed": true,
	"-max-file-size": true, "--max-file-size": true,
	"-max-retries": true, "--max-retries": true,
	"-log-level": true, "--log-level": true,
}

// reorderArgs moves positional arguments after all flags so Go's flag package
// can parse them correctly (it stops at the first non-flag arg).
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(args[i]) > 0 && args[i][0] == '-' {
			flags = append(flags, args[i])
			if flagsWithValue[args[i]] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}
