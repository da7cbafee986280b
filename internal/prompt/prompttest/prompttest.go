// Package prompttest provides a scripted Prompter and a recording Reporter
// for driving interactive flows in tests.
package prompttest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"peer-review-assigner/internal/prompt"
)

// Answer is one scripted reply. Exactly one of the fields is used, depending
// on which prompt consumes it.
type Answer struct {
	Text     string
	Yes      bool
	Selected []string
	Err      error
}

func Text(s string) Answer         { return Answer{Text: s} }
func Yes() Answer                  { return Answer{Yes: true} }
func No() Answer                   { return Answer{Yes: false} }
func Select(keys ...string) Answer { return Answer{Selected: keys} }
func Fail(err error) Answer        { return Answer{Err: err} }

// Script replays answers in order. Running out of answers fails the prompt.
type Script struct {
	mu      sync.Mutex
	answers []Answer
	asked   []string
}

var _ prompt.Prompter = (*Script)(nil)

func NewScript(answers ...Answer) *Script {
	return &Script{answers: answers}
}

func (s *Script) Input(ctx context.Context, message string) (string, error) {
	a, err := s.next(ctx, "input", message)
	if err != nil {
		return "", err
	}
	return a.Text, a.Err
}

func (s *Script) Confirm(ctx context.Context, message string, defaultYes bool) (bool, error) {
	a, err := s.next(ctx, "confirm", message)
	if err != nil {
		return false, err
	}
	return a.Yes, a.Err
}

func (s *Script) MultiSelect(ctx context.Context, message string, choices []prompt.Choice) ([]string, error) {
	a, err := s.next(ctx, "select", message)
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(choices))
	for _, c := range choices {
		known[c.Key] = struct{}{}
	}
	for _, key := range a.Selected {
		if _, ok := known[key]; !ok {
			return nil, fmt.Errorf("prompttest: %q is not among the choices", key)
		}
	}

	return a.Selected, a.Err
}

// Asked lists every prompt shown so far as "kind: message".
func (s *Script) Asked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.asked...)
}

// Remaining is the number of unused answers.
func (s *Script) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers)
}

func (s *Script) next(ctx context.Context, kind, message string) (Answer, error) {
	if err := ctx.Err(); err != nil {
		return Answer{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.asked = append(s.asked, kind+": "+message)
	if len(s.answers) == 0 {
		return Answer{}, fmt.Errorf("prompttest: no answer left for %s %q", kind, message)
	}

	a := s.answers[0]
	s.answers = s.answers[1:]
	return a, nil
}

// Entry is one recorded Reporter call.
type Entry struct {
	Level   string
	Message string
	Headers []string
	Rows    [][]string
}

// Recorder keeps every report for later assertions.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

var _ prompt.Reporter = (*Recorder)(nil)

func (r *Recorder) Info(message string)    { r.add(Entry{Level: "info", Message: message}) }
func (r *Recorder) Success(message string) { r.add(Entry{Level: "success", Message: message}) }
func (r *Recorder) Warn(message string)    { r.add(Entry{Level: "warn", Message: message}) }
func (r *Recorder) Error(message string)   { r.add(Entry{Level: "error", Message: message}) }

func (r *Recorder) Table(headers []string, rows [][]string) {
	r.add(Entry{Level: "table", Headers: headers, Rows: rows})
}

func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Messages returns the messages reported at level.
func (r *Recorder) Messages(level string) []string {
	var out []string
	for _, e := range r.Entries() {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

// Tables returns every reported table in order.
func (r *Recorder) Tables() []Entry {
	var out []Entry
	for _, e := range r.Entries() {
		if e.Level == "table" {
			out = append(out, e)
		}
	}
	return out
}

// Contains reports whether any message at level contains substr.
func (r *Recorder) Contains(level, substr string) bool {
	for _, m := range r.Messages(level) {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func (r *Recorder) add(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}
