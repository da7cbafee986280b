// Package allocation partitions submissions across reviewers.
//
// The candidate pool is every submission owned by a roster user who is not a
// reviewer, in the order the platform returned them. Candidate i goes to the
// reviewer at position i mod k, so for n candidates and k reviewers each
// reviewer receives n/k or n/k+1 submissions and the first n mod k reviewers
// receive the larger share.
package allocation

import (
	"peer-review-assigner/internal/domain"
)

// Candidates filters submissions down to the pool the reviewers will review.
func Candidates(roster *domain.Roster, reviewers domain.ReviewerSet, submissions []domain.Submission) []domain.Submission {
	pool := make([]domain.Submission, 0, len(submissions))
	for _, s := range submissions {
		if !roster.Contains(s.UserID) || reviewers.Contains(s.UserID) {
			continue
		}
		pool = append(pool, s)
	}
	return pool
}

// Assign distributes candidates round-robin over reviewers.
//
// Submissions are never reordered and a submission id seen twice is assigned
// once. Every reviewer is present in the result, possibly with no submissions.
func Assign(reviewers []int64, candidates []domain.Submission) (*domain.Allocation, error) {
	if len(reviewers) == 0 {
		return nil, domain.ErrNoReviewers
	}

	alloc := &domain.Allocation{
		Reviewers: append([]int64(nil), reviewers...),
		Assigned:  make(map[int64][]int64, len(reviewers)),
	}
	for _, r := range reviewers {
		alloc.Assigned[r] = []int64{}
	}

	seen := make(map[int64]struct{}, len(candidates))
	i := 0
	for _, c := range candidates {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}

		reviewer := reviewers[i%len(reviewers)]
		alloc.Assigned[reviewer] = append(alloc.Assigned[reviewer], c.ID)
		i++
	}

	return alloc, nil
}

// Plan builds the candidate pool and assigns it in one step.
func Plan(roster *domain.Roster, reviewers domain.ReviewerSet, submissions []domain.Submission) (*domain.Allocation, error) {
	return Assign(reviewers.IDs(), Candidates(roster, reviewers, submissions))
}
