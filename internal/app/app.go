// Package app wires the assignment workflow: resolve identities, allocate
// submissions round-robin and issue the peer reviews.
package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"peer-review-assigner/internal/allocation"
	"peer-review-assigner/internal/directory"
	"peer-review-assigner/internal/domain"
	"peer-review-assigner/internal/issuance"
	"peer-review-assigner/internal/prompt"
	"peer-review-assigner/internal/resolver"
)

const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitInterrupted = 130
)

type Application struct {
	issuance issuance.Config
	dir      directory.Directory
	prompter prompt.Prompter
	reporter prompt.Reporter
	logger   *zap.Logger
}

func New(cfg issuance.Config, dir directory.Directory, prompter prompt.Prompter, reporter prompt.Reporter, logger *zap.Logger) *Application {
	return &Application{
		issuance: cfg,
		dir:      dir,
		prompter: prompter,
		reporter: reporter,
		logger:   logger,
	}
}

// Run performs one complete assignment run.
func (a *Application) Run(ctx context.Context) ([]domain.IssuanceResult, error) {
	const op = "app.Run"

	log := a.logger.With(zap.String("run_id", uuid.NewString()))
	log.Info(op + ": run started")

	res, err := resolver.New(a.dir, a.prompter, a.reporter, log).Resolve(ctx)
	if err != nil {
		return nil, err
	}

	subs, err := a.dir.ListSubmissions(ctx, res.Course.ID, res.Assignment.ID)
	if err != nil {
		log.Error(op+": failed to fetch submissions", zap.Int64("assignment_id", res.Assignment.ID), zap.Error(err))
		a.reporter.Error("Error: " + directory.Message(err))
		return nil, fmt.Errorf("fetch submissions: %w", err)
	}

	alloc, err := allocation.Plan(res.Roster, res.Reviewers, subs)
	if err != nil {
		return nil, fmt.Errorf("allocate: %w", err)
	}

	log.Info(op+": allocation planned",
		zap.Int("submissions", len(subs)),
		zap.Int("reviewers", len(alloc.Reviewers)),
		zap.Int("pairings", alloc.Size()),
	)
	a.summarize(res.Roster, alloc)

	results, err := issuance.New(a.issuance, a.dir, a.prompter, a.reporter, log).Run(ctx, issuance.Plan{
		Course:     res.Course,
		Assignment: res.Assignment,
		Roster:     res.Roster,
		Allocation: alloc,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %w", err, ctxErr)
		}
		log.Info(op+": run finished", zap.Error(err))
		return results, err
	}

	log.Info(op+": run finished", zap.Int("issued", len(results)))
	return results, nil
}

func (a *Application) summarize(roster *domain.Roster, alloc *domain.Allocation) {
	rows := make([][]string, 0, len(alloc.Reviewers))
	for _, id := range alloc.Reviewers {
		rows = append(rows, []string{roster.DisplayName(id), strconv.Itoa(len(alloc.Assigned[id]))})
	}

	a.reporter.Info(fmt.Sprintf("%d submissions to review among %d reviewers:", alloc.Size(), len(alloc.Reviewers)))
	a.reporter.Table([]string{"Reviewer", "Submissions"}, rows)
}

// ExitCode maps the outcome of Run to a process exit status. A batch the
// person declined is not a failure.
func ExitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, issuance.ErrCancelled):
		return ExitOK
	case errors.Is(err, prompt.ErrInterrupted), errors.Is(err, context.Canceled):
		return ExitInterrupted
	default:
		return ExitFailure
	}
}
