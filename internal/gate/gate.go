// Package gate implements the interactive prompt, validate and confirm loop
// used to resolve every identity a person has to pick.
//
// A Gate moves through PROMPT -> VALIDATE -> CONFIRM and ends in ACCEPTED
// only after an explicit yes. Validation failures and rejections both return
// to PROMPT; there is no attempt limit, each retry is announced instead.
package gate

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"peer-review-assigner/internal/prompt"
)

const DefaultConfirmMessage = "Is this correct?"

type State int

const (
	StatePrompt State = iota
	StateValidate
	StateConfirm
	StateAccepted
)

func (s State) String() string {
	switch s {
	case StatePrompt:
		return "PROMPT"
	case StateValidate:
		return "VALIDATE"
	case StateConfirm:
		return "CONFIRM"
	case StateAccepted:
		return "ACCEPTED"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ValidationError marks a candidate the person can correct. Message is shown
// verbatim before prompting again.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func Invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Confirmer asks a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, message string, defaultYes bool) (bool, error)
}

// Gate resolves a K typed by a person into a validated T.
type Gate[K, T any] struct {
	// Name identifies the gate in messages and logs, e.g. "course".
	Name     string
	Prompt   func(ctx context.Context) (K, error)
	Validate func(ctx context.Context, key K) (T, error)
	Summary  func(entity T) string
	// ConfirmMessage defaults to DefaultConfirmMessage.
	ConfirmMessage string

	Confirmer Confirmer
	Reporter  prompt.Reporter
	Logger    *zap.Logger

	// OnTransition, when set, observes every state change.
	OnTransition func(from, to State)
}

// Run loops until the person accepts a validated entity. Errors other than
// *ValidationError returned by Validate end the loop and are returned as is.
func (g *Gate[K, T]) Run(ctx context.Context) (T, error) {
	var zero T
	if g.Prompt == nil || g.Validate == nil || g.Confirmer == nil || g.Reporter == nil {
		return zero, fmt.Errorf("gate %s: prompt, validate, confirmer and reporter are required", g.Name)
	}

	log := g.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("gate", g.Name))

	confirmMessage := g.ConfirmMessage
	if confirmMessage == "" {
		confirmMessage = DefaultConfirmMessage
	}

	var (
		state   = StatePrompt
		attempt = 1
		key     K
		entity  T
	)

	move := func(to State) {
		log.Debug("gate transition", zap.Stringer("from", state), zap.Stringer("to", to), zap.Int("attempt", attempt))
		if g.OnTransition != nil {
			g.OnTransition(state, to)
		}
		state = to
	}

	retry := func() {
		attempt++
		g.Reporter.Warn(fmt.Sprintf("Enter the %s again (attempt %d).", g.Name, attempt))
		move(StatePrompt)
	}

	for {
		switch state {
		case StatePrompt:
			k, err := g.Prompt(ctx)
			if err != nil {
				return zero, fmt.Errorf("%s prompt: %w", g.Name, err)
			}
			key = k
			move(StateValidate)

		case StateValidate:
			e, err := g.Validate(ctx, key)
			if err != nil {
				var validationErr *ValidationError
				if errors.As(err, &validationErr) {
					log.Info("candidate rejected by validation", zap.String("reason", validationErr.Message))
					g.Reporter.Error("Error: " + validationErr.Message)
					retry()
					continue
				}

				log.Error("validation failed", zap.Error(err))
				return zero, fmt.Errorf("validate %s: %w", g.Name, err)
			}
			entity = e
			move(StateConfirm)

		case StateConfirm:
			if g.Summary != nil {
				g.Reporter.Success(g.Summary(entity))
			}

			ok, err := g.Confirmer.Confirm(ctx, confirmMessage, false)
			if err != nil {
				return zero, fmt.Errorf("%s confirmation: %w", g.Name, err)
			}
			if !ok {
				log.Info("candidate rejected by user")
				retry()
				continue
			}

			move(StateAccepted)
			log.Info("candidate accepted", zap.Int("attempts", attempt))
			return entity, nil

		default:
			return zero, fmt.Errorf("gate %s: unexpected state %s", g.Name, state)
		}
	}
}
