// Package common defines shared constants and sentinel errors used across
// brightstudy components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound  = errors.New("not found")
	ErrPersistence = errors.New("persistence error")

	// Sync protocol errors.
	ErrDiscoveryFailed     = errors.New("discovery failed")
	ErrItemFetchFailed     = errors.New("item fetch failed")
	ErrAssetDownloadFailed = errors.New("asset download failed")
	ErrSyncInProgress      = errors.New("sync already in progress")
	ErrDependencyMissing   = errors.New("dependency not installed")

	// Validation / item-specific errors.
	ErrInvalidPayload = errors.New("invalid payload")
	ErrUnknownKind    = errors.New("unknown content kind")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
