package sandbox

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrInvalidFixture = errors.New("invalid fixture")

func LoadFixture(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}

	return ParseFixture(raw)
}

func ParseFixture(raw []byte) (*Fixture, error) {
	var fixture Fixture

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&fixture); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFixture, err)
	}

	if err := fixture.validate(); err != nil {
		return nil, err
	}

	return &fixture, nil
}

func (f *Fixture) validate() error {
	courses := make(map[int64]struct{}, len(f.Courses))
	submissions := make(map[int64]struct{})

	for _, c := range f.Courses {
		if _, ok := courses[c.ID]; ok {
			return fmt.Errorf("%w: duplicate course %d", ErrInvalidFixture, c.ID)
		}
		courses[c.ID] = struct{}{}

		students := make(map[int64]struct{}, len(c.Students))
		for _, s := range c.Students {
			if _, ok := students[s.ID]; ok {
				return fmt.Errorf("%w: duplicate student %d in course %d", ErrInvalidFixture, s.ID, c.ID)
			}
			students[s.ID] = struct{}{}
		}

		assignments := make(map[int64]struct{}, len(c.Assignments))
		for _, a := range c.Assignments {
			if _, ok := assignments[a.ID]; ok {
				return fmt.Errorf("%w: duplicate assignment %d in course %d", ErrInvalidFixture, a.ID, c.ID)
			}
			assignments[a.ID] = struct{}{}

			for _, s := range a.Submissions {
				if _, ok := submissions[s.ID]; ok {
					return fmt.Errorf("%w: duplicate submission %d", ErrInvalidFixture, s.ID)
				}
				submissions[s.ID] = struct{}{}
			}
		}
	}

	return nil
}
