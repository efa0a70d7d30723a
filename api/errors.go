package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed operation into the five outcomes the clients and
// the basket engine act on.
type Kind int

const (
	// KindUnclassified is any failure without a more specific mapping,
	// including transport-level errors.
	KindUnclassified Kind = iota
	// KindNotFound means the requested named resource does not exist.
	KindNotFound
	// KindConflict means the mutation is inconsistent with current server
	// state: duplicate create, stale checkout, removal of an absent entry.
	KindConflict
	// KindForbidden means the acting identity is not authorized for the
	// target resource.
	KindForbidden
	// KindCapacity means the server reported an internal/storage error.
	KindCapacity
)

// MsgServerCapacity is the fixed message for KindCapacity, regardless of
// which operation triggered it.
const MsgServerCapacity = "Server storage limit exceeded!"

// StatusError is a non-2xx server response.
type StatusError struct {
	Code int
	Body string
}

func newStatusError(code int, body []byte) *StatusError {
	s := string(body)
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return &StatusError{Code: code, Body: s}
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("server returned status %d", e.Code)
	}
	return fmt.Sprintf("server returned status %d: %s", e.Code, e.Body)
}

// Classify maps an operation failure to its Kind. Transport errors and
// unmapped status codes are KindUnclassified.
func Classify(err error) Kind {
	var status *StatusError
	if !errors.As(err, &status) {
		return KindUnclassified
	}
	switch status.Code {
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusInternalServerError:
		return KindCapacity
	default:
		return KindUnclassified
	}
}
