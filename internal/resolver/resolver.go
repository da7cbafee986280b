package resolver

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"peer-review-assigner/internal/directory"
	"peer-review-assigner/internal/domain"
	"peer-review-assigner/internal/gate"
	"peer-review-assigner/internal/prompt"
)

var ErrEmptyRoster = errors.New("course has no students")

// Resolution is everything the person confirmed before allocation.
type Resolution struct {
	Course     domain.Course
	Assignment domain.Assignment
	Roster     *domain.Roster
	Reviewers  domain.ReviewerSet
}

type Resolver struct {
	dir      directory.Directory
	prompter prompt.Prompter
	reporter prompt.Reporter
	logger   *zap.Logger
}

func New(dir directory.Directory, prompter prompt.Prompter, reporter prompt.Reporter, logger *zap.Logger) *Resolver {
	return &Resolver{
		dir:      dir,
		prompter: prompter,
		reporter: reporter,
		logger:   logger.With(zap.String("component", "resolver")),
	}
}

// Resolve runs the course, assignment and reviewer gates in order. A failed
// roster fetch is fatal.
func (r *Resolver) Resolve(ctx context.Context) (*Resolution, error) {
	course, err := r.ResolveCourse(ctx)
	if err != nil {
		return nil, err
	}

	assignment, err := r.ResolveAssignment(ctx, course)
	if err != nil {
		return nil, err
	}

	roster, err := r.FetchRoster(ctx, course)
	if err != nil {
		return nil, err
	}

	reviewers, err := r.ResolveReviewers(ctx, roster)
	if err != nil {
		return nil, err
	}

	r.reporter.Info(fmt.Sprintf("Allocating among %d reviewers.", reviewers.Len()))

	return &Resolution{
		Course:     course,
		Assignment: assignment,
		Roster:     roster,
		Reviewers:  reviewers,
	}, nil
}

func (r *Resolver) ResolveCourse(ctx context.Context) (domain.Course, error) {
	g := &gate.Gate[string, domain.Course]{
		Name: "course id",
		Prompt: func(ctx context.Context) (string, error) {
			return r.prompter.Input(ctx, "Course id:")
		},
		Validate: func(ctx context.Context, key string) (domain.Course, error) {
			id, err := parseID(key)
			if err != nil {
				return domain.Course{}, err
			}

			course, err := r.dir.GetCourse(ctx, id)
			if err != nil {
				return domain.Course{}, r.remoteError(err)
			}
			return *course, nil
		},
		Summary: func(c domain.Course) string {
			return fmt.Sprintf("Course found: %s.", c.Name)
		},
		Confirmer: r.prompter,
		Reporter:  r.reporter,
		Logger:    r.logger,
	}

	course, err := g.Run(ctx)
	if err != nil {
		return domain.Course{}, err
	}

	r.logger.Info("course resolved", zap.Int64("course_id", course.ID), zap.String("course_name", course.Name))
	return course, nil
}

func (r *Resolver) ResolveAssignment(ctx context.Context, course domain.Course) (domain.Assignment, error) {
	g := &gate.Gate[string, domain.Assignment]{
		Name: "assignment id",
		Prompt: func(ctx context.Context) (string, error) {
			return r.prompter.Input(ctx, "Assignment id:")
		},
		Validate: func(ctx context.Context, key string) (domain.Assignment, error) {
			id, err := parseID(key)
			if err != nil {
				return domain.Assignment{}, err
			}

			assignment, err := r.dir.GetAssignment(ctx, course.ID, id)
			if err != nil {
				return domain.Assignment{}, r.remoteError(err)
			}
			return *assignment, nil
		},
		Summary: func(a domain.Assignment) string {
			return fmt.Sprintf("Assignment found: %s.", a.Name)
		},
		Confirmer: r.prompter,
		Reporter:  r.reporter,
		Logger:    r.logger,
	}

	assignment, err := g.Run(ctx)
	if err != nil {
		return domain.Assignment{}, err
	}

	r.logger.Info("assignment resolved",
		zap.Int64("course_id", course.ID),
		zap.Int64("assignment_id", assignment.ID),
		zap.String("assignment_name", assignment.Name),
	)
	return assignment, nil
}

// FetchRoster loads the students of course and shows them as a table.
func (r *Resolver) FetchRoster(ctx context.Context, course domain.Course) (*domain.Roster, error) {
	users, err := r.dir.ListStudents(ctx, course.ID)
	if err != nil {
		r.logger.Error("failed to fetch roster", zap.Int64("course_id", course.ID), zap.Error(err))
		r.reporter.Error("Error: " + directory.Message(err))
		return nil, fmt.Errorf("fetch roster: %w", err)
	}

	roster, err := domain.NewRoster(users)
	if err != nil {
		return nil, fmt.Errorf("build roster: %w", err)
	}
	if roster.Len() == 0 {
		r.reporter.Error(fmt.Sprintf("Error: %s has no students.", course.Name))
		return nil, fmt.Errorf("%w: %d", ErrEmptyRoster, course.ID)
	}

	rows := make([][]string, 0, roster.Len())
	for _, u := range roster.Users() {
		rows = append(rows, []string{u.ShortName, strconv.FormatInt(u.ID, 10)})
	}
	r.reporter.Info(fmt.Sprintf("Users of %s:", course.Name))
	r.reporter.Table([]string{"Name", "User id"}, rows)

	return roster, nil
}

func (r *Resolver) ResolveReviewers(ctx context.Context, roster *domain.Roster) (domain.ReviewerSet, error) {
	users := roster.Users()
	choices := make([]prompt.Choice, 0, len(users))
	for _, u := range users {
		choices = append(choices, prompt.Choice{Key: strconv.FormatInt(u.ID, 10), Label: u.ShortName})
	}

	g := &gate.Gate[[]string, domain.ReviewerSet]{
		Name: "reviewers",
		Prompt: func(ctx context.Context) ([]string, error) {
			return r.prompter.MultiSelect(ctx, "Select reviewers", choices)
		},
		Validate: func(ctx context.Context, keys []string) (domain.ReviewerSet, error) {
			if len(keys) == 0 {
				return domain.ReviewerSet{}, gate.Invalid("select at least one reviewer")
			}

			ids := make([]int64, 0, len(keys))
			for _, k := range keys {
				id, err := strconv.ParseInt(k, 10, 64)
				if err != nil {
					return domain.ReviewerSet{}, gate.Invalid("%q is not a user id", k)
				}
				ids = append(ids, id)
			}

			set, err := domain.NewReviewerSet(roster, ids)
			if err != nil {
				return domain.ReviewerSet{}, &gate.ValidationError{Message: err.Error(), Err: err}
			}
			return set, nil
		},
		Summary: func(set domain.ReviewerSet) string {
			names := make([]string, 0, set.Len())
			for _, id := range set.IDs() {
				names = append(names, roster.DisplayName(id))
			}
			return "Selected reviewers: " + strings.Join(names, ", ")
		},
		Confirmer: r.prompter,
		Reporter:  r.reporter,
		Logger:    r.logger,
	}

	set, err := g.Run(ctx)
	if err != nil {
		return domain.ReviewerSet{}, err
	}

	r.logger.Info("reviewers resolved", zap.Int64s("reviewer_ids", set.IDs()))
	return set, nil
}

func parseID(key string) (int64, error) {
	key = strings.TrimSpace(key)
	id, err := strconv.ParseInt(key, 10, 64)
	if err != nil || id <= 0 {
		return 0, gate.Invalid("%q is not a valid id", key)
	}
	return id, nil
}

// remoteError turns errors a person can fix by entering another id into
// validation errors. Everything else, a rejected token included, is shown
// once and ends the run.
func (r *Resolver) remoteError(err error) error {
	if directory.IsRecoverable(err) {
		return &gate.ValidationError{Message: directory.Message(err), Err: err}
	}

	r.reporter.Error("Error: " + directory.Message(err))
	return err
}
