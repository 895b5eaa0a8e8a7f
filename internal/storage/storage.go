package storage

import (
	"context"
	"errors"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// ArchiveStorage is the object store used for review artifacts.
type ArchiveStorage interface {
	// PutObject uploads body under objectKey.
	PutObject(ctx context.Context, objectKey, contentType string, body []byte) error

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for downloading an archived object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)
}

var ErrArchiveDisabled = errors.New("archive storage is disabled")

// disabledStorage is used when s3.enabled is false.
type disabledStorage struct{}

// Disabled returns an ArchiveStorage that rejects every call with ErrArchiveDisabled.
func Disabled() ArchiveStorage { return disabledStorage{} }

func (disabledStorage) PutObject(context.Context, string, string, []byte) error {
	return ErrArchiveDisabled
}

func (disabledStorage) GeneratePresignedDownloadURL(context.Context, string, time.Duration) (string, error) {
	return "", ErrArchiveDisabled
}
