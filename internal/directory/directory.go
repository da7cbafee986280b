package directory

import (
	"context"

	"peer-review-assigner/internal/domain"
)

// Directory is the grading platform as seen by the assignment workflow.
type Directory interface {
	GetCourse(ctx context.Context, courseID int64) (*domain.Course, error)
	GetAssignment(ctx context.Context, courseID, assignmentID int64) (*domain.Assignment, error)
	ListStudents(ctx context.Context, courseID int64) ([]domain.User, error)
	ListSubmissions(ctx context.Context, courseID, assignmentID int64) ([]domain.Submission, error)
	CreatePeerReview(ctx context.Context, courseID, assignmentID, submissionID, reviewerID int64) (*domain.PeerReview, error)
	// DescribePeerReview renders the request CreatePeerReview would send.
	DescribePeerReview(courseID, assignmentID, submissionID, reviewerID int64) string
}
