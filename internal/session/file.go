package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"samplerank/internal/tournament"
)

// SaveFile writes state as indented JSON, replacing path atomically.
func SaveFile(path string, state any) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create session file directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".samplerank-*.json")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod session file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

// LoadFile reads a state document written by SaveFile and validates it.
func LoadFile(path string) (tournament.State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tournament.State{}, fmt.Errorf("read session file: %w", err)
	}
	state, err := DecodeState(data)
	if err != nil {
		return tournament.State{}, fmt.Errorf("load %s: %w", path, err)
	}
	return state, nil
}
