package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"samplerank/internal/tournament"
)

var validate = validator.New()

// ValidationError lists every problem found in a state document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid session state: " + strings.Join(e.Problems, "; ")
}

// Validate checks field constraints and the tournament's structural invariants.
func Validate(state tournament.State) error {
	var problems []string
	if err := validate.Struct(state); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validate state: %w", err)
		}
		for _, fe := range fieldErrs {
			problems = append(problems, describeFieldError(fe))
		}
	}
	if err := state.Verify(); err != nil {
		problems = append(problems, strings.TrimPrefix(err.Error(), "invalid tournament state: "))
	}
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "State.")
	if fe.Param() != "" {
		return fmt.Sprintf("%s fails %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value())
	}
	return fmt.Sprintf("%s fails %s", field, fe.Tag())
}

// DecodeState parses a state document and validates it.
func DecodeState(data []byte) (tournament.State, error) {
	var state tournament.State
	if err := json.Unmarshal(data, &state); err != nil {
		return tournament.State{}, fmt.Errorf("decode state: %w", err)
	}
	if err := Validate(state); err != nil {
		return tournament.State{}, err
	}
	return state, nil
}
