package sandbox

import (
	"errors"
	"sync"

	"peer-review-assigner/internal/api"
)

var (
	ErrCourseNotFound     = errors.New("course not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrSelfReview         = errors.New("self review")
	ErrAlreadyAssigned    = errors.New("peer review already assigned")
	ErrReviewRejected     = errors.New("peer review rejected")
)

// Store holds the sandbox platform state. It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	courses map[int64]*course
	reviews []api.PeerReview
	nextID  int64
}

type course struct {
	id          int64
	name        string
	students    []api.User
	studentIDs  map[int64]struct{}
	assignments map[int64]*assignment
}

type assignment struct {
	id          int64
	name        string
	submissions []api.Submission
	byID        map[int64]api.Submission
	rejected    map[int64]struct{}
	assigned    map[[2]int64]struct{}
}

func NewStore(fixture *Fixture) *Store {
	s := &Store{
		courses: make(map[int64]*course, len(fixture.Courses)),
		nextID:  1,
	}

	for _, cf := range fixture.Courses {
		c := &course{
			id:          cf.ID,
			name:        cf.Name,
			studentIDs:  make(map[int64]struct{}, len(cf.Students)),
			assignments: make(map[int64]*assignment, len(cf.Assignments)),
		}
		for _, st := range cf.Students {
			c.students = append(c.students, api.User{ID: st.ID, Name: st.ShortName, ShortName: st.ShortName})
			c.studentIDs[st.ID] = struct{}{}
		}

		for _, af := range cf.Assignments {
			a := &assignment{
				id:       af.ID,
				name:     af.Name,
				byID:     make(map[int64]api.Submission, len(af.Submissions)),
				rejected: make(map[int64]struct{}, len(af.RejectReviewsFor)),
				assigned: make(map[[2]int64]struct{}),
			}
			for _, sf := range af.Submissions {
				sub := api.Submission{ID: sf.ID, UserID: sf.UserID, AssignmentID: af.ID, State: "submitted"}
				a.submissions = append(a.submissions, sub)
				a.byID[sf.ID] = sub
			}
			for _, id := range af.RejectReviewsFor {
				a.rejected[id] = struct{}{}
			}
			c.assignments[af.ID] = a
		}

		s.courses[cf.ID] = c
	}

	return s
}

func (s *Store) Course(courseID int64) (api.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.courses[courseID]
	if !ok {
		return api.Course{}, ErrCourseNotFound
	}

	return api.Course{ID: &c.id, Name: &c.name}, nil
}

func (s *Store) Assignment(courseID, assignmentID int64) (api.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.assignment(courseID, assignmentID)
	if err != nil {
		return api.Assignment{}, err
	}

	return api.Assignment{ID: &a.id, CourseID: courseID, Name: &a.name}, nil
}

func (s *Store) Students(courseID int64) ([]api.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.courses[courseID]
	if !ok {
		return nil, ErrCourseNotFound
	}

	out := make([]api.User, len(c.students))
	copy(out, c.students)
	return out, nil
}

func (s *Store) Submissions(courseID, assignmentID int64) ([]api.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.assignment(courseID, assignmentID)
	if err != nil {
		return nil, err
	}

	out := make([]api.Submission, len(a.submissions))
	copy(out, a.submissions)
	return out, nil
}

// CreatePeerReview assigns reviewerID to review submissionID.
func (s *Store) CreatePeerReview(courseID, assignmentID, submissionID, reviewerID int64) (api.PeerReview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.assignment(courseID, assignmentID)
	if err != nil {
		return api.PeerReview{}, err
	}

	sub, ok := a.byID[submissionID]
	if !ok {
		return api.PeerReview{}, ErrSubmissionNotFound
	}
	if _, ok = s.courses[courseID].studentIDs[reviewerID]; !ok {
		return api.PeerReview{}, ErrUserNotFound
	}
	if sub.UserID == reviewerID {
		return api.PeerReview{}, ErrSelfReview
	}
	if _, ok = a.rejected[submissionID]; ok {
		return api.PeerReview{}, ErrReviewRejected
	}

	key := [2]int64{submissionID, reviewerID}
	if _, ok = a.assigned[key]; ok {
		return api.PeerReview{}, ErrAlreadyAssigned
	}
	a.assigned[key] = struct{}{}

	review := api.PeerReview{
		ID:            s.nextID,
		UserID:        sub.UserID,
		AssetID:       submissionID,
		AssetType:     "Submission",
		AssessorID:    reviewerID,
		WorkflowState: api.PeerReviewStateAssigned,
	}
	s.nextID++
	s.reviews = append(s.reviews, review)

	return review, nil
}

// PeerReviews returns every review created so far, in creation order.
func (s *Store) PeerReviews() []api.PeerReview {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]api.PeerReview, len(s.reviews))
	copy(out, s.reviews)
	return out
}

func (s *Store) assignment(courseID, assignmentID int64) (*assignment, error) {
	c, ok := s.courses[courseID]
	if !ok {
		return nil, ErrCourseNotFound
	}

	a, ok := c.assignments[assignmentID]
	if !ok {
		return nil, ErrAssignmentNotFound
	}

	return a, nil
}
