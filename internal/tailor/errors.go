package tailor

import (
	"errors"
	"fmt"
)

var ErrUnknownArtifact = errors.New("unknown artifact kind")

// StatusError reports a non-2xx answer from the backend.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("tailor backend %s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("tailor backend %s: status %d: %s", e.Op, e.StatusCode, e.Body)
}
