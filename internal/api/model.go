package api

type Course struct {
	ID   *int64  `json:"id,omitempty"`
	Name *string `json:"name,omitempty"`
}

type Assignment struct {
	ID       *int64  `json:"id,omitempty"`
	CourseID int64   `json:"course_id,omitempty"`
	Name     *string `json:"name,omitempty"`
}

type User struct {
	ID        int64  `json:"id"`
	Name      string `json:"name,omitempty"`
	ShortName string `json:"short_name"`
}

type Submission struct {
	ID           int64  `json:"id"`
	UserID       int64  `json:"user_id"`
	AssignmentID int64  `json:"assignment_id,omitempty"`
	State        string `json:"workflow_state,omitempty"`
}

const (
	PeerReviewStateAssigned  = "assigned"
	PeerReviewStateCompleted = "completed"
)

type PeerReview struct {
	ID            int64  `json:"id"`
	UserID        int64  `json:"user_id"`
	AssetID       int64  `json:"asset_id"`
	AssetType     string `json:"asset_type"`
	AssessorID    int64  `json:"assessor_id"`
	WorkflowState string `json:"workflow_state"`
}
