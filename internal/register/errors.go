package register

import "codeberg.org/mutker/gputemps/internal/errors"

const (
	ErrMapFailed     = errors.ErrMap
	ErrReadFailed    = errors.ErrRead
	ErrOutOfRange    = errors.ErrOutOfRange
	ErrUnknownOffset = errors.ErrOutOfRange
	ErrPageBounds    = errors.ErrorCode("register_page_bounds")
)
