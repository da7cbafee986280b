package domain

import (
	"errors"
	"fmt"
)

var ErrNoReviewers = errors.New("reviewer set is empty")

// ReviewerSet is the ordered selection of reviewers. Order is the order the
// ids were given in and fixes their round-robin positions.
type ReviewerSet struct {
	ids     []int64
	members map[int64]struct{}
}

// NewReviewerSet validates ids against the roster and drops repeated ids,
// keeping the first occurrence.
func NewReviewerSet(roster *Roster, ids []int64) (ReviewerSet, error) {
	if len(ids) == 0 {
		return ReviewerSet{}, ErrNoReviewers
	}

	set := ReviewerSet{
		ids:     make([]int64, 0, len(ids)),
		members: make(map[int64]struct{}, len(ids)),
	}
	for _, id := range ids {
		if !roster.Contains(id) {
			return ReviewerSet{}, fmt.Errorf("%w: %d", ErrUnknownUser, id)
		}
		if _, ok := set.members[id]; ok {
			continue
		}
		set.members[id] = struct{}{}
		set.ids = append(set.ids, id)
	}

	return set, nil
}

func (s ReviewerSet) IDs() []int64 {
	out := make([]int64, len(s.ids))
	copy(out, s.ids)
	return out
}

func (s ReviewerSet) Len() int {
	return len(s.ids)
}

func (s ReviewerSet) Contains(id int64) bool {
	_, ok := s.members[id]
	return ok
}
