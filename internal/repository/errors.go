package repository

import "errors"

var (
	// ErrUploadNotFound indicates no upload record matched
	ErrUploadNotFound = errors.New("upload not found")

	// ErrRepositoryUnavailable indicates the repository is unavailable
	ErrRepositoryUnavailable = errors.New("repository unavailable")
)
