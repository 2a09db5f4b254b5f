package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClipboard swaps the clipboard and sleep hooks for the duration of a test.
type fakeClipboard struct {
	payloads []string
	delays   []time.Duration
	err      error
}

func installFakeClipboard(t *testing.T) *fakeClipboard {
	t.Helper()
	fake := &fakeClipboard{}
	origWrite, origSleep := clipboardWriteAll, sleep
	clipboardWriteAll = func(text string) error {
		if fake.err != nil {
			return fake.err
		}
		fake.payloads = append(fake.payloads, text)
		return nil
	}
	sleep = func(d time.Duration) { fake.delays = append(fake.delays, d) }
	t.Cleanup(func() {
		clipboardWriteAll, sleep = origWrite, origSleep
	})
	return fake
}

func TestDeliverClipboardAndFile(t *testing.T) {
	fake := installFakeClipboard(t)
	out := filepath.Join(t.TempDir(), "listing.txt")
	require.NoError(t, os.WriteFile(out, []byte("stale content that is longer than the payload"), 0644))

	payload := "=== File & Directory List ===\n.\n\n"
	var stdout bytes.Buffer
	err := deliver(payload, deliveryConfig{OutputFile: out, ClipboardDelay: 2 * time.Second, Stdout: &stdout})
	require.NoError(t, err)

	require.Len(t, fake.payloads, 1)
	saved, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, fake.payloads[0], string(saved))
	assert.Equal(t, []time.Duration{2 * time.Second}, fake.delays)
	assert.Empty(t, stdout.String())
}

func TestDeliverClipboardFailure(t *testing.T) {
	fake := installFakeClipboard(t)
	fake.err = errors.New("no clipboard utilities available")
	out := filepath.Join(t.TempDir(), "listing.txt")

	err := deliver("payload", deliveryConfig{OutputFile: out, ClipboardDelay: time.Second})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error writing to clipboard")
	assert.NoFileExists(t, out)
	assert.Empty(t, fake.delays)
}

func TestDeliverOutputFileFailure(t *testing.T) {
	installFakeClipboard(t)
	out := filepath.Join(t.TempDir(), "missing-dir", "listing.txt")

	err := deliver("payload", deliveryConfig{OutputFile: out})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error creating output file")
}

func TestDeliverWithoutClipboard(t *testing.T) {
	fake := installFakeClipboard(t)

	var stdout bytes.Buffer
	err := deliver("payload", deliveryConfig{NoClipboard: true, ClipboardDelay: time.Second, Stdout: &stdout})
	require.NoError(t, err)

	assert.Equal(t, "payload\n", stdout.String())
	assert.Empty(t, fake.payloads)
	assert.Empty(t, fake.delays)
}

func TestSummaryLine(t *testing.T) {
	report := &Report{Processed: 3}

	tests := []struct {
		name string
		opts Options
		cfg  deliveryConfig
		want string
	}{
		{
			name: "clipboard with content",
			opts: Options{IncludeContent: true},
			want: "Copied file list with content to clipboard (3 files processed, filters: none).",
		},
		{
			name: "clipboard and file with filters",
			opts: Options{Extensions: []string{"go", "mod"}},
			cfg:  deliveryConfig{OutputFile: "out.txt"},
			want: "Copied file list to clipboard and to out.txt (3 files processed, filters: go, mod).",
		},
		{
			name: "file only",
			opts: Options{IncludeContent: true},
			cfg:  deliveryConfig{NoClipboard: true, OutputFile: "out.txt"},
			want: "Saved file list with content to out.txt (3 files processed, filters: none).",
		},
		{
			name: "stdout",
			cfg:  deliveryConfig{NoClipboard: true},
			want: "Printed file list (3 files processed, filters: none).",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, summaryLine(report, tt.opts, tt.cfg))
		})
	}
}
