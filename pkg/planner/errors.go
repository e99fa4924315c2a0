package planner

import (
	"errors"
	"fmt"
)

// ErrConstraint is the sentinel wrapped by every planning error caused
// by a platform limit that no packaging strategy can satisfy.
var ErrConstraint = errors.New("platform constraint cannot be satisfied")

// ItemTooLargeError reports a planned item whose size exceeds the
// platform's per-item limit.
type ItemTooLargeError struct {
	Path  string
	Bytes int64
	Limit int64
}

func (e *ItemTooLargeError) Error() string {
	return fmt.Sprintf("%s is %d bytes, exceeds the per-item limit of %d bytes", e.Path, e.Bytes, e.Limit)
}

func (e *ItemTooLargeError) Unwrap() error { return ErrConstraint }

// TooManyItemsError reports a plan that still exceeds the platform's
// item cap after every applicable reduction step.
type TooManyItemsError struct {
	Items int
	Limit int
}

func (e *TooManyItemsError) Error() string {
	return fmt.Sprintf("plan needs %d items but the platform allows %d", e.Items, e.Limit)
}

func (e *TooManyItemsError) Unwrap() error { return ErrConstraint }
