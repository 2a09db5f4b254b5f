package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// binarySniffLen is how many leading bytes IsBinary inspects.
const binarySniffLen = 1024

// Collector walks a directory tree once and builds a Report.
type Collector struct {
	// Progress, when set, receives a "Reading: <path>" line per recorded entry.
	Progress io.Writer

	logger *zap.Logger
}

// NewCollector returns a Collector that logs per-entry problems to logger.
func NewCollector(logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{logger: logger}
}

// Run walks opts.Start and returns every visited entry in traversal order.
// Only a start path that cannot be accessed fails the run; unreadable entries
// below it are logged and skipped.
func (c *Collector) Run(opts Options) (*Report, error) {
	root := opts.Start
	if root == "" {
		root = "."
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("error accessing path %s: %w", root, err)
	}

	report := &Report{Entries: []Entry{}}

	if !info.IsDir() {
		c.collectFile(report, root, root, opts)
		return report, nil
	}

	rules := newIgnoreRules(root, opts, c.logger)

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// A directory whose listing failed was already reported on the first call.
			c.logger.Warn("Skipping entry", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}

		isDir := d.IsDir()
		if rules.Ignored(path, isDir) {
			c.logger.Debug("Ignored", zap.String("path", path))
			if isDir {
				return fs.SkipDir
			}
			return nil
		}

		display := displayPath(root, path)
		if isDir {
			c.record(report, Entry{Path: display, Kind: KindDir})
			rules.enterDir(path)
			return nil
		}

		if !isRegularFile(path, d) {
			// Devices, sockets and dangling or directory symlinks are listed bare.
			c.record(report, Entry{Path: display, Kind: KindFile})
			return nil
		}
		c.collectFile(report, path, display, opts)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory %s: %w", root, err)
	}

	return report, nil
}

// collectFile records a single file, reading its content when it passes the
// extension filter, content is enabled and the file looks textual.
func (c *Collector) collectFile(report *Report, path, display string, opts Options) {
	entry := Entry{Path: display, Kind: KindFile}
	if !MatchesExtension(path, opts.Extensions) {
		c.record(report, entry)
		return
	}
	report.Processed++

	if opts.IncludeContent {
		entry.Content = c.readText(path)
	}
	c.record(report, entry)
}

func (c *Collector) record(report *Report, entry Entry) {
	if c.Progress != nil {
		fmt.Fprintf(c.Progress, "Reading: %s\n", entry.Path)
	}
	report.Entries = append(report.Entries, entry)
}

// displayPath renders a walked path as reached from the start argument, so a
// start of "." lists "./a.txt" rather than the cleaned "a.txt".
func displayPath(start, path string) string {
	rel, err := filepath.Rel(start, path)
	if err != nil || rel == "." {
		return start
	}
	if strings.HasSuffix(start, string(filepath.Separator)) {
		return start + rel
	}
	return start + string(filepath.Separator) + rel
}

// readText returns the file's content, or nil when the file is binary,
// unreadable or not valid UTF-8.
func (c *Collector) readText(path string) *string {
	binary, err := IsBinary(path)
	if err != nil {
		c.logger.Warn("Could not inspect file", zap.String("path", path), zap.Error(err))
		return nil
	}
	if binary {
		c.logger.Debug("Skipping binary file", zap.String("path", path))
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		c.logger.Warn("Could not read file", zap.String("path", path), zap.Error(err))
		return nil
	}
	if !utf8.Valid(data) {
		c.logger.Debug("Skipping file that is not valid UTF-8", zap.String("path", path))
		return nil
	}
	content := string(data)
	return &content
}

// isRegularFile reports whether d is a regular file, following a symlink once.
func isRegularFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// IsBinary reports whether any of the first 1024 bytes of the file is zero.
func IsBinary(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer file.Close()

	buffer := make([]byte, binarySniffLen)
	n, err := io.ReadFull(file, buffer)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return false, err
	}
	return bytes.IndexByte(buffer[:n], 0) >= 0, nil
}

// MatchesExtension reports whether path carries one of the filter extensions.
// An empty filter matches everything. Comparison is case-sensitive and the
// filters are given without the leading dot.
func MatchesExtension(path string, filters []string) bool {
	if len(filters) == 0 {
		return true
	}
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == "" || ext == base {
		// No dot, or a dotfile such as ".env" which has a name but no extension.
		return false
	}
	ext = ext[1:]
	for _, f := range filters {
		if f == ext {
			return true
		}
	}
	return false
}
