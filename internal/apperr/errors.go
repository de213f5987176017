package apperr

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrNotApplied = errors.New("not applied")
	ErrInvalid    = errors.New("invalid request")
)
