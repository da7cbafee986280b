package canvas

import "fmt"

const apiPrefix = "/api/v1"

func coursePath(courseID int64) string {
	return fmt.Sprintf("/courses/%d", courseID)
}

func assignmentPath(courseID, assignmentID int64) string {
	return fmt.Sprintf("/courses/%d/assignments/%d", courseID, assignmentID)
}

func usersPath(courseID int64) string {
	return fmt.Sprintf("/courses/%d/users", courseID)
}

func submissionsPath(courseID, assignmentID int64) string {
	return fmt.Sprintf("/courses/%d/assignments/%d/submissions", courseID, assignmentID)
}

// PeerReviewsPath is the resource that creates a peer review for a submission.
func PeerReviewsPath(courseID, assignmentID, submissionID int64) string {
	return fmt.Sprintf("/courses/%d/assignments/%d/submissions/%d/peer_reviews", courseID, assignmentID, submissionID)
}

func peerReviewRequest(courseID, assignmentID, submissionID, reviewerID int64) string {
	return fmt.Sprintf("POST %s%s user_id=%d", apiPrefix, PeerReviewsPath(courseID, assignmentID, submissionID), reviewerID)
}
