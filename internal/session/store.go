package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"samplerank/internal/config"
	"samplerank/internal/textutil"
	"samplerank/internal/tournament"
)

// Store is the SQLite-backed session catalog.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond

	sessionColumns = "id, name, source_dir, state_json, created_at, updated_at"

	// Fixed-width so updated_at sorts lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Open initializes or connects to the session catalog in paths.data_dir.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the catalog file location.
func (s *Store) Path() string {
	return s.path
}

// Create stores a new session. An empty name defaults to the source
// directory's base name plus a short ID suffix.
func (s *Store) Create(ctx context.Context, name string, state tournament.State) (*Session, error) {
	return s.insert(ctx, uuid.NewString(), name, state)
}

// Import stores state under an existing session ID, as when restoring a
// backup onto a machine that has never seen the session.
func (s *Store) Import(ctx context.Context, id, name string, state tournament.State) (*Session, error) {
	if err := uuid.Validate(id); err != nil {
		return nil, fmt.Errorf("import session: invalid id %q: %w", id, err)
	}
	return s.insert(ctx, id, name, state)
}

func (s *Store) insert(ctx context.Context, id, name string, state tournament.State) (*Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultName(state.SourceDirectory, id)
	}
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}

	now := time.Now().UTC()
	timestamp := now.Format(timeLayout)
	_, err = s.execWithRetry(ctx,
		`INSERT INTO sessions (id, name, source_dir, state_json, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		id, name, state.SourceDirectory, string(data), timestamp, timestamp,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err, "sessions.name"):
			return nil, fmt.Errorf("%w: %q", ErrNameTaken, name)
		case isUniqueViolation(err, "sessions.id"):
			return nil, fmt.Errorf("insert session: %s already exists", id)
		}
		return nil, fmt.Errorf("insert session: %w", err)
	}

	return &Session{
		ID:        id,
		Name:      name,
		SourceDir: state.SourceDirectory,
		State:     state,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Get fetches a session by ID.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	return scanOne(row, id)
}

// GetByName fetches a session by its unique name.
func (s *Store) GetByName(ctx context.Context, name string) (*Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE name = ?`, name)
	return scanOne(row, name)
}

// Resolve finds a session by full ID, exact name, or an unambiguous ID prefix
// of at least four characters.
func (s *Store) Resolve(ctx context.Context, ref string) (*Session, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty reference", ErrNotFound)
	}
	if sess, err := s.Get(ctx, ref); err == nil || !errors.Is(err, ErrNotFound) {
		return sess, err
	}
	if sess, err := s.GetByName(ctx, ref); err == nil || !errors.Is(err, ErrNotFound) {
		return sess, err
	}
	if len(ref) < 4 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, ref)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM sessions WHERE id LIKE ? || '%' LIMIT 2`, ref)
	if err != nil {
		return nil, fmt.Errorf("resolve session prefix: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session ids: %w", err)
	}
	switch len(ids) {
	case 0:
		return nil, fmt.Errorf("%w: %q", ErrNotFound, ref)
	case 1:
		return s.Get(ctx, ids[0])
	default:
		return nil, fmt.Errorf("%w: prefix %q is ambiguous", ErrNotFound, ref)
	}
}

// Save persists the session's current state and bumps UpdatedAt.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	if sess == nil {
		return errors.New("session is nil")
	}
	data, err := json.Marshal(sess.State)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	sess.UpdatedAt = time.Now().UTC()
	res, err := s.execWithRetry(ctx,
		`UPDATE sessions SET name = ?, state_json = ?, updated_at = ? WHERE id = ?`,
		sess.Name, string(data), sess.UpdatedAt.Format(timeLayout), sess.ID,
	)
	if err != nil {
		if isUniqueViolation(err, "sessions.name") {
			return fmt.Errorf("%w: %q", ErrNameTaken, sess.Name)
		}
		return fmt.Errorf("update session: %w", err)
	}
	return requireAffected(res, sess.ID)
}

// List returns every session, most recently updated first.
func (s *Store) List(ctx context.Context) ([]*Session, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sessionColumns+` FROM sessions ORDER BY updated_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// Delete removes a session by ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.execWithRetry(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return requireAffected(res, id)
}

func scanOne(row *sql.Row, ref string) (*Session, error) {
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, ref)
	}
	return sess, err
}

func scanSession(scanner interface{ Scan(dest ...any) error }) (*Session, error) {
	var (
		sess       Session
		stateJSON  string
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(&sess.ID, &sess.Name, &sess.SourceDir, &stateJSON, &createdRaw, &updatedRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	state, err := DecodeState([]byte(stateJSON))
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sess.ID, err)
	}
	sess.State = state
	sess.CreatedAt = parseTime(createdRaw)
	sess.UpdatedAt = parseTime(updatedRaw)
	return &sess, nil
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return nil
}

func defaultName(sourceDir, id string) string {
	base := strings.TrimSpace(sourceDir)
	if idx := strings.LastIndexAny(base, `/\`); idx >= 0 {
		base = base[idx+1:]
	}
	base = textutil.SanitizeToken(base)
	if base == "unknown" {
		base = "session"
	}
	short, _, _ := strings.Cut(id, "-")
	return base + "-" + short
}

func isUniqueViolation(err error, column string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, column)
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code()&0xff == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}
