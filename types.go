package main

import (
	"fmt"
	"strings"
)

// EntryKind distinguishes files from directories in a Report.
type EntryKind int

const (
	KindFile EntryKind = iota
	KindDir
)

func (k EntryKind) String() string {
	if k == KindDir {
		return "dir"
	}
	return "file"
}

// Entry is one path discovered during the walk.
type Entry struct {
	Path    string
	Kind    EntryKind
	Content *string // nil unless content was requested, the file is text and it decoded as UTF-8
}

// HasContent reports whether the entry carries file content.
func (e Entry) HasContent() bool {
	return e.Content != nil
}

// Report holds the entries of a single walk in traversal order.
type Report struct {
	Entries   []Entry
	Processed int // files that passed the extension filter
}

// OutputFormat selects how a Report is rendered.
type OutputFormat int

const (
	FormatPlain OutputFormat = iota
	FormatJSON
	FormatYAML
)

func (f OutputFormat) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "plain"
	}
}

// ParseOutputFormat maps a config or flag value to an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "plain", "text":
		return FormatPlain, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return FormatPlain, fmt.Errorf("unsupported output format: %s. Use 'plain', 'json' or 'yaml'", s)
	}
}

// Options controls a single Collector run.
type Options struct {
	Start          string
	RespectIgnore  bool
	Extensions     []string // without leading dot; empty means no filter
	IncludeContent bool
	Format         OutputFormat
	Hidden         bool
}
