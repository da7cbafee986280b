package domain

type Course struct {
	ID   int64
	Name string
}

type Assignment struct {
	ID       int64
	CourseID int64
	Name     string
}

type User struct {
	ID        int64
	ShortName string
}

type Submission struct {
	ID     int64
	UserID int64
}

type PeerReview struct {
	ID            int64
	AssessorID    int64
	AssetID       int64
	WorkflowState string
}

// Pairing is one planned peer review: the reviewer assesses the submission.
type Pairing struct {
	ReviewerID   int64
	SubmissionID int64
}

// IssuanceResult is the outcome of creating the review for a single pairing.
// Err is nil on success, in which case ReviewID holds the server-assigned id.
type IssuanceResult struct {
	Pairing  Pairing
	ReviewID int64
	Err      error
}

func (r IssuanceResult) Succeeded() bool {
	return r.Err == nil
}
