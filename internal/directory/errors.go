package directory

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrDecodeFailure = errors.New("response is not valid json")
	ErrPlatform      = errors.New("platform returned an error")
	ErrMissingField  = errors.New("expected field is missing")
	ErrUnauthorized  = errors.New("access token was rejected")
)

// RemoteError is a failed call to the platform. Kind is one of the sentinel
// errors above and is what errors.Is matches against.
type RemoteError struct {
	Kind       error
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	switch {
	case e.Message != "" && e.StatusCode != 0:
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.StatusCode, e.Message)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s (status %d)", e.Kind, e.StatusCode)
	}
	return e.Kind.Error()
}

func (e *RemoteError) Unwrap() error {
	return e.Kind
}

// UserMessage is the text shown to a person: the platform's own message when
// it sent one, otherwise a description of the failure.
func (e *RemoteError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (%d %s)", e.Kind, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return e.Kind.Error()
}

// IsRecoverable reports whether a person can fix err by entering another id:
// the platform answered in a well-formed way but rejected the request. A
// rejected token is never recoverable.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrPlatform) || errors.Is(err, ErrMissingField)
}

// Message extracts the user-facing text of err.
func Message(err error) string {
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr.UserMessage()
	}
	return err.Error()
}
