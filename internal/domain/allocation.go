package domain

// Allocation maps each reviewer, in round-robin position order, to the
// submissions assigned to them.
type Allocation struct {
	Reviewers []int64
	Assigned  map[int64][]int64
}

// Pairings flattens the allocation in reviewer-then-submission order.
func (a *Allocation) Pairings() []Pairing {
	if a == nil {
		return nil
	}

	pairings := make([]Pairing, 0, a.Size())
	for _, reviewerID := range a.Reviewers {
		for _, submissionID := range a.Assigned[reviewerID] {
			pairings = append(pairings, Pairing{ReviewerID: reviewerID, SubmissionID: submissionID})
		}
	}

	return pairings
}

// Size is the total number of assigned submissions.
func (a *Allocation) Size() int {
	if a == nil {
		return 0
	}

	n := 0
	for _, subs := range a.Assigned {
		n += len(subs)
	}
	return n
}
