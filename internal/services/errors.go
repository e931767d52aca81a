package services

import "errors"

var (
	// ErrIDMismatch is returned when the id in the path and the body differ.
	ErrIDMismatch = errors.New("id mismatch")

	// ErrImageStorageDisabled is returned when no object storage is configured.
	ErrImageStorageDisabled = errors.New("image storage is not configured")

	// ErrInvalidImage is returned for uploads that are not images.
	ErrInvalidImage = errors.New("invalid image")
)
