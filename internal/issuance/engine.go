// Package issuance turns an accepted allocation into peer reviews on the
// platform.
package issuance

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"peer-review-assigner/internal/directory"
	"peer-review-assigner/internal/domain"
	"peer-review-assigner/internal/gate"
	"peer-review-assigner/internal/prompt"
)

var (
	ErrCancelled      = errors.New("issuance cancelled by user")
	ErrIssuanceFailed = errors.New("some peer reviews were not issued")
)

type Config struct {
	Concurrency int `yaml:"concurrency" env:"ISSUANCE_CONCURRENCY" env-default:"4" env-description:"Peer reviews created in parallel"`
}

// Plan is what gets issued: every pairing of Allocation within Assignment.
type Plan struct {
	Course     domain.Course
	Assignment domain.Assignment
	Roster     *domain.Roster
	Allocation *domain.Allocation
}

type Engine struct {
	dir         directory.Directory
	confirmer   gate.Confirmer
	reporter    prompt.Reporter
	logger      *zap.Logger
	concurrency int
}

func New(cfg Config, dir directory.Directory, confirmer gate.Confirmer, reporter prompt.Reporter, logger *zap.Logger) *Engine {
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	return &Engine{
		dir:         dir,
		confirmer:   confirmer,
		reporter:    reporter,
		logger:      logger.With(zap.String("component", "issuance")),
		concurrency: concurrency,
	}
}

// Run previews every request, asks once for the whole batch and then creates
// one peer review per pairing. A failed pairing never stops the others.
//
// Results are in reviewer-then-submission order. ErrCancelled is returned
// without any remote call when the batch is rejected, ErrIssuanceFailed
// together with the results when at least one pairing failed.
func (e *Engine) Run(ctx context.Context, plan Plan) ([]domain.IssuanceResult, error) {
	const op = "issuance.Run"

	pairings := plan.Allocation.Pairings()
	if len(pairings) == 0 {
		e.logger.Info(op+": nothing to issue", zap.Int64("assignment_id", plan.Assignment.ID))
		e.reporter.Warn("No submissions to assign. Nothing was issued.")
		return []domain.IssuanceResult{}, nil
	}

	e.preview(plan, pairings)

	ok, err := e.confirmer.Confirm(ctx, fmt.Sprintf("Issue %d peer reviews?", len(pairings)), false)
	if err != nil {
		return nil, fmt.Errorf("batch confirmation: %w", err)
	}
	if !ok {
		e.logger.Info(op+": batch rejected", zap.Int("pairings", len(pairings)))
		e.reporter.Warn("Cancelled. No peer reviews were issued.")
		return nil, ErrCancelled
	}

	results := e.issue(ctx, plan, pairings)

	failed := e.report(plan, results)
	if failed > 0 {
		return results, fmt.Errorf("%w: %d of %d", ErrIssuanceFailed, failed, len(results))
	}

	return results, nil
}

func (e *Engine) preview(plan Plan, pairings []domain.Pairing) {
	rows := make([][]string, 0, len(pairings))
	for _, p := range pairings {
		rows = append(rows, []string{
			plan.Roster.DisplayName(p.ReviewerID),
			strconv.FormatInt(p.SubmissionID, 10),
			e.dir.DescribePeerReview(plan.Course.ID, plan.Assignment.ID, p.SubmissionID, p.ReviewerID),
		})
	}

	e.reporter.Info(fmt.Sprintf("The following %d requests will be sent:", len(pairings)))
	e.reporter.Table([]string{"Reviewer", "Submission", "Request"}, rows)
}

func (e *Engine) issue(ctx context.Context, plan Plan, pairings []domain.Pairing) []domain.IssuanceResult {
	const op = "issuance.issue"

	results := make([]domain.IssuanceResult, len(pairings))
	var issued atomic.Int64

	var g errgroup.Group
	g.SetLimit(e.concurrency)

	for i, p := range pairings {
		g.Go(func() error {
			results[i] = domain.IssuanceResult{Pairing: p}

			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}

			review, err := e.dir.CreatePeerReview(ctx, plan.Course.ID, plan.Assignment.ID, p.SubmissionID, p.ReviewerID)
			if err != nil {
				e.logger.Error(op+": failed to create peer review",
					zap.Int64("reviewer_id", p.ReviewerID),
					zap.Int64("submission_id", p.SubmissionID),
					zap.Error(err),
				)
				results[i].Err = err
				return nil
			}

			results[i].ReviewID = review.ID
			e.logger.Debug(op+": peer review created",
				zap.Int64("reviewer_id", p.ReviewerID),
				zap.Int64("submission_id", p.SubmissionID),
				zap.Int64("review_id", review.ID),
				zap.Int64("issued", issued.Add(1)),
			)
			return nil
		})
	}

	_ = g.Wait()

	return results
}

// report shows the outcome table and returns the number of failures.
func (e *Engine) report(plan Plan, results []domain.IssuanceResult) int {
	failed := 0
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := "ok"
		reviewID := "-"
		if r.Succeeded() {
			reviewID = strconv.FormatInt(r.ReviewID, 10)
		} else {
			failed++
			status = directory.Message(r.Err)
		}

		rows = append(rows, []string{
			plan.Roster.DisplayName(r.Pairing.ReviewerID),
			strconv.FormatInt(r.Pairing.SubmissionID, 10),
			reviewID,
			status,
		})
	}

	e.reporter.Table([]string{"Reviewer", "Submission", "Review id", "Status"}, rows)

	e.logger.Info("issuance finished",
		zap.Int64("assignment_id", plan.Assignment.ID),
		zap.Int("issued", len(results)-failed),
		zap.Int("failed", failed),
	)

	if failed > 0 {
		e.reporter.Error(fmt.Sprintf("%d of %d peer reviews failed.", failed, len(results)))
	} else {
		e.reporter.Success(fmt.Sprintf("Issued %d peer reviews.", len(results)))
	}

	return failed
}
