package logs

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const maxLineBytes = 1024 * 1024

// Query selects log lines. Empty fields match everything.
type Query struct {
	SessionID string
	EventType string
	Level     string
}

func (q Query) empty() bool {
	return q.SessionID == "" && q.EventType == "" && q.Level == ""
}

// Matches reports whether line satisfies q. JSON lines are matched on their
// session_id, event_type and level fields; console lines fall back to a
// substring search.
func (q Query) Matches(line string) bool {
	if q.empty() {
		return true
	}
	var record map[string]any
	if strings.HasPrefix(line, "{") && json.Unmarshal([]byte(line), &record) == nil {
		return fieldIs(record, "session_id", q.SessionID) &&
			fieldIs(record, "event_type", q.EventType) &&
			fieldIs(record, "level", strings.ToLower(q.Level))
	}
	for _, want := range []string{q.SessionID, q.EventType} {
		if want != "" && !strings.Contains(line, want) {
			return false
		}
	}
	return q.Level == "" || strings.Contains(strings.ToUpper(line), strings.ToUpper(q.Level))
}

func fieldIs(record map[string]any, key, want string) bool {
	if want == "" {
		return true
	}
	got, _ := record[key].(string)
	return got == want
}

// Last returns up to limit matching lines from the end of path and the offset
// just past the last byte read. A missing file yields no lines.
func Last(path string, limit int, q Query) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if info, err := file.Stat(); err != nil {
		return nil, 0, fmt.Errorf("stat log file: %w", err)
	} else if info.IsDir() {
		return nil, 0, fmt.Errorf("log path %q is a directory", path)
	}

	var ring []string
	if limit > 0 {
		ring = make([]string, 0, limit)
	}
	offset, err := scan(file, func(line string) {
		if limit <= 0 || !q.Matches(line) {
			return
		}
		if len(ring) == limit {
			ring = append(ring[1:], line)
			return
		}
		ring = append(ring, line)
	})
	if err != nil {
		return nil, 0, err
	}
	return ring, offset, nil
}

// Follow polls path from offset and calls emit for each new matching line
// until ctx is done. A file that shrinks is read again from the start.
func Follow(ctx context.Context, path string, offset int64, q Query, poll time.Duration, emit func(string)) error {
	if poll <= 0 {
		poll = 250 * time.Millisecond
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		next, err := readFrom(path, offset, func(line string) {
			if q.Matches(line) {
				emit(line)
			}
		})
		if err != nil {
			return err
		}
		offset = next

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func readFrom(path string, offset int64, fn func(string)) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return offset, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return offset, fmt.Errorf("stat log file: %w", err)
	}
	if offset > info.Size() {
		offset = 0
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset, fmt.Errorf("seek log file: %w", err)
	}
	read, err := scan(file, fn)
	if err != nil {
		return offset, err
	}
	return offset + read, nil
}

// scan feeds complete lines to fn and returns the bytes consumed. A trailing
// partial line is left for the next read.
func scan(r io.Reader, fn func(string)) (int64, error) {
	reader := bufio.NewReaderSize(r, 64*1024)
	var consumed int64
	for {
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			return consumed, nil
		}
		if err != nil {
			return consumed, fmt.Errorf("read log file: %w", err)
		}
		consumed += int64(len(line))
		if len(line) > maxLineBytes {
			continue
		}
		fn(strings.TrimRight(line, "\r\n"))
	}
}
