package prompt

import (
	"context"
	"errors"
)

// ErrInterrupted is returned when the person aborts a prompt (ctrl+c).
var ErrInterrupted = errors.New("prompt interrupted")

type Choice struct {
	Key   string
	Label string
}

// Prompter collects answers from a person.
type Prompter interface {
	Input(ctx context.Context, message string) (string, error)
	Confirm(ctx context.Context, message string, defaultYes bool) (bool, error)
	// MultiSelect returns the keys of the chosen entries in choice order.
	MultiSelect(ctx context.Context, message string, choices []Choice) ([]string, error)
}

// Reporter shows progress and results to a person.
type Reporter interface {
	Info(message string)
	Success(message string)
	Warn(message string)
	Error(message string)
	Table(headers []string, rows [][]string)
}
