package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/fatih/color"
)

// clipboardWriteAll is replaced in tests; the real clipboard needs a display.
var clipboardWriteAll = clipboard.WriteAll

// sleep is replaced in tests to skip the clipboard hold delay.
var sleep = time.Sleep

// deliveryConfig says where a rendered report goes.
type deliveryConfig struct {
	OutputFile     string
	NoClipboard    bool
	ClipboardDelay time.Duration
	Stdout         io.Writer
}

// deliver copies output to the clipboard and optionally saves it to a file.
// Either failure aborts the run.
func deliver(output string, cfg deliveryConfig) error {
	stdout := cfg.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	if !cfg.NoClipboard {
		if err := clipboardWriteAll(output); err != nil {
			return fmt.Errorf("error writing to clipboard: %w", err)
		}
	}

	if cfg.OutputFile != "" {
		if err := writeOutputFile(cfg.OutputFile, output); err != nil {
			return err
		}
	}

	if cfg.NoClipboard && cfg.OutputFile == "" {
		fmt.Fprintln(stdout, output)
	}

	// Some clipboard backends serve the data from this process, so stay alive briefly.
	if !cfg.NoClipboard && cfg.ClipboardDelay > 0 {
		sleep(cfg.ClipboardDelay)
	}
	return nil
}

// writeOutputFile creates or truncates path and writes output verbatim.
func writeOutputFile(path, output string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating output file %s: %w", path, err)
	}
	if _, err := file.WriteString(output); err != nil {
		file.Close()
		return fmt.Errorf("error writing to file %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("error writing to file %s: %w", path, err)
	}
	return nil
}

// summaryLine describes what was delivered in one line.
func summaryLine(report *Report, opts Options, cfg deliveryConfig) string {
	var b strings.Builder
	switch {
	case !cfg.NoClipboard:
		b.WriteString("Copied file list")
	case cfg.OutputFile != "":
		b.WriteString("Saved file list")
	default:
		b.WriteString("Printed file list")
	}
	if opts.IncludeContent {
		b.WriteString(" with content")
	}
	if !cfg.NoClipboard {
		b.WriteString(" to clipboard")
	}
	if cfg.OutputFile != "" {
		if !cfg.NoClipboard {
			b.WriteString(" and")
		}
		fmt.Fprintf(&b, " to %s", cfg.OutputFile)
	}

	filters := "none"
	if len(opts.Extensions) > 0 {
		filters = strings.Join(opts.Extensions, ", ")
	}
	fmt.Fprintf(&b, " (%d files processed, filters: %s).", report.Processed, filters)
	return b.String()
}

// printSummary writes the summary line in green when stdout is a terminal.
func printSummary(w io.Writer, line string) {
	color.New(color.FgGreen).Fprintln(w, line)
}
