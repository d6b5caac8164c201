package store

import (
	"errors"
	"fmt"
)

// ErrConflict means the remote file changed since the sha we hold was
// fetched. The caller must reload and re-apply or discard its mutation;
// the client never retries on its own.
var ErrConflict = errors.New("revision conflict: remote file has been modified")

// UnavailableError covers every remote failure that is not a conflict or
// a missing file: transport errors, auth rejections, server errors.
type UnavailableError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("store unavailable: %v", e.Err)
	}
	return fmt.Sprintf("store unavailable: github api returned %d: %s", e.StatusCode, e.Body)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}
