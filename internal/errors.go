package internal

import "errors"

var (
	// ErrTransfer is returned when the remote resource answers with a non-success status.
	ErrTransfer = errors.New("transfer failed")
	// ErrFileNotFound is returned when an expected input file is missing.
	ErrFileNotFound = errors.New("file not found")
	// ErrInvalidFormat is returned when a tabular corpus header does not name the expected languages.
	ErrInvalidFormat = errors.New("invalid format")
	// ErrEmptyInput is returned when a tabular corpus has no rows at all.
	ErrEmptyInput = errors.New("empty input")
	// ErrMalformedRow is returned when a cleaned corpus row does not have exactly two fields.
	ErrMalformedRow = errors.New("malformed row")
)
