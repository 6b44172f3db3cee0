package model

import "errors"

// Sentinel errors returned by Graph operations. Wrapped with fmt.Errorf by
// callers that need to attach an id or other context.
var (
	ErrElementNotFound = errors.New("model: element not found")
	ErrSpaceNotFound   = errors.New("model: space not found")
	ErrCyclicSpace     = errors.New("model: cyclic space parent chain")
	ErrElementDeleted  = errors.New("model: element already deleted")
	ErrCrossSpace      = errors.New("model: elements belong to different spaces")
)
