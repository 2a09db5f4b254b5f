package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// listHeader opens the plain report.
const listHeader = "=== File & Directory List ===\n"

// record is the structured form of an Entry.
type record struct {
	Path    string  `json:"path" yaml:"path"`
	Content *string `json:"content" yaml:"content"`
}

// Format renders the report in the requested output format.
func Format(report *Report, format OutputFormat) (string, error) {
	switch format {
	case FormatPlain:
		return formatPlain(report), nil
	case FormatJSON:
		return formatJSON(report)
	case FormatYAML:
		return formatYAML(report)
	default:
		return "", fmt.Errorf("unsupported output format: %v", format)
	}
}

// formatPlain lists every path, then appends one block per captured file.
func formatPlain(report *Report) string {
	var list, contents strings.Builder
	list.WriteString(listHeader)
	for _, entry := range report.Entries {
		list.WriteString(entry.Path)
		list.WriteString("\n")
		if entry.Content != nil {
			contents.WriteString(fmt.Sprintf("\n=== %s ===\n%s\n", entry.Path, *entry.Content))
		}
	}
	return list.String() + "\n" + contents.String()
}

func records(report *Report) []record {
	out := make([]record, 0, len(report.Entries))
	for _, entry := range report.Entries {
		out = append(out, record{Path: entry.Path, Content: entry.Content})
	}
	return out
}

func formatJSON(report *Report) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records(report)); err != nil {
		return "", fmt.Errorf("failed to encode report as JSON: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func formatYAML(report *Report) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(records(report)); err != nil {
		return "", fmt.Errorf("failed to encode report as YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode report as YAML: %w", err)
	}
	return buf.String(), nil
}
