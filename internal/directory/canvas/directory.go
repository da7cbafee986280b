package canvas

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"peer-review-assigner/internal/api"
	"peer-review-assigner/internal/directory"
	"peer-review-assigner/internal/domain"
)

var _ directory.Directory = (*Client)(nil)

func (c *Client) GetCourse(ctx context.Context, courseID int64) (*domain.Course, error) {
	var course api.Course
	err := c.Fetch(ctx, coursePath(courseID), nil, &course)
	if err != nil {
		return nil, fmt.Errorf("get course %d: %w", courseID, err)
	}

	if course.ID == nil || course.Name == nil {
		c.logger.Warn("course payload has no name", zap.Int64("course_id", courseID))
		return nil, missingField("course", courseID, "name")
	}

	return &domain.Course{ID: *course.ID, Name: *course.Name}, nil
}

func (c *Client) GetAssignment(ctx context.Context, courseID, assignmentID int64) (*domain.Assignment, error) {
	var assignment api.Assignment
	err := c.Fetch(ctx, assignmentPath(courseID, assignmentID), nil, &assignment)
	if err != nil {
		return nil, fmt.Errorf("get assignment %d: %w", assignmentID, err)
	}

	if assignment.ID == nil || assignment.Name == nil {
		c.logger.Warn("assignment payload has no name",
			zap.Int64("course_id", courseID),
			zap.Int64("assignment_id", assignmentID),
		)
		return nil, missingField("assignment", assignmentID, "name")
	}

	return &domain.Assignment{ID: *assignment.ID, CourseID: courseID, Name: *assignment.Name}, nil
}

func (c *Client) ListStudents(ctx context.Context, courseID int64) ([]domain.User, error) {
	query := url.Values{
		"enrollment_type": {"student"},
		"per_page":        {strconv.Itoa(c.perPage)},
	}

	users, err := fetchAll[api.User](ctx, c, usersPath(courseID), query)
	if err != nil {
		return nil, fmt.Errorf("list students of course %d: %w", courseID, err)
	}

	out := make([]domain.User, 0, len(users))
	for _, u := range users {
		out = append(out, domain.User{ID: u.ID, ShortName: u.ShortName})
	}

	c.logger.Info("fetched course roster", zap.Int64("course_id", courseID), zap.Int("users", len(out)))
	return out, nil
}

func (c *Client) ListSubmissions(ctx context.Context, courseID, assignmentID int64) ([]domain.Submission, error) {
	query := url.Values{"per_page": {strconv.Itoa(c.perPage)}}

	submissions, err := fetchAll[api.Submission](ctx, c, submissionsPath(courseID, assignmentID), query)
	if err != nil {
		return nil, fmt.Errorf("list submissions of assignment %d: %w", assignmentID, err)
	}

	out := make([]domain.Submission, 0, len(submissions))
	for _, s := range submissions {
		out = append(out, domain.Submission{ID: s.ID, UserID: s.UserID})
	}

	c.logger.Info("fetched submissions",
		zap.Int64("course_id", courseID),
		zap.Int64("assignment_id", assignmentID),
		zap.Int("submissions", len(out)),
	)
	return out, nil
}

func (c *Client) CreatePeerReview(ctx context.Context, courseID, assignmentID, submissionID, reviewerID int64) (*domain.PeerReview, error) {
	form := url.Values{"user_id": {formatID(reviewerID)}}

	var review api.PeerReview
	err := c.Submit(ctx, PeerReviewsPath(courseID, assignmentID, submissionID), form, &review)
	if err != nil {
		return nil, fmt.Errorf("create peer review of submission %d for user %d: %w", submissionID, reviewerID, err)
	}

	if review.ID == 0 {
		return nil, missingField("peer review for submission", submissionID, "id")
	}

	return &domain.PeerReview{
		ID:            review.ID,
		AssessorID:    review.AssessorID,
		AssetID:       review.AssetID,
		WorkflowState: review.WorkflowState,
	}, nil
}

func missingField(entity string, id int64, field string) error {
	return &directory.RemoteError{
		Kind:    directory.ErrMissingField,
		Message: fmt.Sprintf("%s %d: response has no %q field", entity, id, field),
	}
}

func (c *Client) DescribePeerReview(courseID, assignmentID, submissionID, reviewerID int64) string {
	return peerReviewRequest(courseID, assignmentID, submissionID, reviewerID)
}
