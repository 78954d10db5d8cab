package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"samplerank/internal/library"
	"samplerank/internal/tournament"
)

// Format names an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatM3U  Format = "m3u"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat is returned for an unrecognised format name.
var ErrUnknownFormat = errors.New("unknown export format")

// Record is one exported leaderboard row.
type Record struct {
	Rank        int     `json:"rank" yaml:"rank"`
	Path        string  `json:"path" yaml:"path"`
	Filename    string  `json:"filename" yaml:"filename"`
	Score       int     `json:"score" yaml:"score"`
	Comparisons int     `json:"comparisons" yaml:"comparisons"`
	WinRate     float64 `json:"winRate" yaml:"win_rate"`
}

// Filter keeps items whose score is at least minScore, preserving order.
func Filter(results []tournament.Item, minScore int) []tournament.Item {
	kept := make([]tournament.Item, 0, len(results))
	for _, it := range results {
		if it.Score >= minScore {
			kept = append(kept, it)
		}
	}
	return kept
}

// ParseFormat maps a user-supplied name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text", "txt":
		return FormatText, nil
	case "m3u", "m3u8":
		return FormatM3U, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// FormatForPath infers a Format from a file extension, defaulting to text.
func FormatForPath(path string) Format {
	format, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return FormatText
	}
	return format
}

// Extension returns the conventional file extension for f, with the dot.
func (f Format) Extension() string {
	switch f {
	case FormatM3U:
		return ".m3u"
	case FormatJSON:
		return ".json"
	case FormatYAML:
		return ".yaml"
	default:
		return ".txt"
	}
}

// Records converts items to ranked rows, rank starting at 1.
func Records(items []tournament.Item) []Record {
	records := make([]Record, 0, len(items))
	for i, it := range items {
		records = append(records, Record{
			Rank:        i + 1,
			Path:        it.Path,
			Filename:    it.Filename,
			Score:       it.Score,
			Comparisons: it.Comparisons,
			WinRate:     it.WinRate(),
		})
	}
	return records
}

// Write renders items to w in format.
func Write(w io.Writer, items []tournament.Item, format Format) error {
	switch format {
	case FormatText, "":
		paths := make([]string, 0, len(items))
		for _, it := range items {
			paths = append(paths, it.Path)
		}
		_, err := io.WriteString(w, strings.Join(paths, "\n"))
		return err
	case FormatM3U:
		return writeM3U(w, items)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(Records(items))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(Records(items)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func writeM3U(w io.Writer, items []tournament.Item) error {
	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	for _, it := range items {
		fmt.Fprintf(&b, "#EXTINF:-1,%s\n%s\n", library.DisplayTitle(it.Filename), it.Path)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteFile renders items into path, creating parent directories.
func WriteFile(path string, items []tournament.Item, format Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := Write(f, items, format); err != nil {
		f.Close()
		return fmt.Errorf("write export file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}
	return nil
}
