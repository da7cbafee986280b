package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateUser = errors.New("duplicate user id in roster")
	ErrUnknownUser   = errors.New("user is not in roster")
)

// Roster is the set of users fetched for a course. It keeps the id->name and
// name->id projections built together so they can never drift apart.
// A Roster is immutable after NewRoster returns.
type Roster struct {
	users    []User
	nameByID map[int64]string
	idByName map[string]int64
}

// NewRoster builds both projections from users in the order given.
// Short names shared by several users are suffixed with the user id so the
// name->id projection stays a bijection.
func NewRoster(users []User) (*Roster, error) {
	r := &Roster{
		users:    make([]User, 0, len(users)),
		nameByID: make(map[int64]string, len(users)),
		idByName: make(map[string]int64, len(users)),
	}

	counts := make(map[string]int, len(users))
	for _, u := range users {
		counts[u.ShortName]++
	}

	for _, u := range users {
		if _, ok := r.nameByID[u.ID]; ok {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateUser, u.ID)
		}

		name := u.ShortName
		if counts[name] > 1 || name == "" {
			name = fmt.Sprintf("%s (%d)", u.ShortName, u.ID)
		}

		r.users = append(r.users, User{ID: u.ID, ShortName: name})
		r.nameByID[u.ID] = name
		r.idByName[name] = u.ID
	}

	return r, nil
}

// Users returns the roster in fetch order.
func (r *Roster) Users() []User {
	out := make([]User, len(r.users))
	copy(out, r.users)
	return out
}

func (r *Roster) Len() int {
	return len(r.users)
}

func (r *Roster) Contains(id int64) bool {
	_, ok := r.nameByID[id]
	return ok
}

func (r *Roster) Name(id int64) (string, bool) {
	name, ok := r.nameByID[id]
	return name, ok
}

func (r *Roster) ID(name string) (int64, bool) {
	id, ok := r.idByName[name]
	return id, ok
}

// DisplayName returns the roster name, or the bare id for users outside it.
func (r *Roster) DisplayName(id int64) string {
	if name, ok := r.nameByID[id]; ok {
		return name
	}
	return fmt.Sprintf("user %d", id)
}
