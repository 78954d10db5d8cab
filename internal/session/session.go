package session

import (
	"errors"
	"time"

	"samplerank/internal/tournament"
)

var (
	// ErrNotFound is returned when no session matches an ID or name.
	ErrNotFound = errors.New("session not found")
	// ErrNameTaken is returned when creating or renaming onto an existing name.
	ErrNameTaken = errors.New("session name already in use")
	// ErrSessionLocked is returned when another process holds the session lock.
	ErrSessionLocked = errors.New("session is locked by another samplerank process")
)

// Session is one persisted tournament.
type Session struct {
	ID        string
	Name      string
	SourceDir string
	State     tournament.State
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Summary is the listing view of a session.
type Summary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	SourceDir   string    `json:"sourceDir"`
	Round       int       `json:"round"`
	Items       int       `json:"items"`
	ActiveItems int       `json:"activeItems"`
	Complete    bool      `json:"complete"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Summarize builds the listing view of s.
func (s *Session) Summarize() Summary {
	return Summary{
		ID:          s.ID,
		Name:        s.Name,
		SourceDir:   s.SourceDir,
		Round:       s.State.CurrentRound,
		Items:       len(s.State.Items),
		ActiveItems: s.State.ActiveCount(),
		Complete:    s.State.IsTournamentComplete(),
		UpdatedAt:   s.UpdatedAt,
	}
}
