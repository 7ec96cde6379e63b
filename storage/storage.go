package storage

import (
	"errors"
	"io"

	"learnhub_go/config"

	"github.com/sirupsen/logrus"
)

// ErrNotFound is returned by Resolve when no file exists for a reference.
var ErrNotFound = errors.New("file not found")

// Backend maps logical file references to physical storage. References are
// opaque strings recorded on Material/Lecture rows; only the backend that
// produced a reference can resolve it.
type Backend interface {
	// Store persists data under folder and returns the stored reference.
	Store(data []byte, folder, filename string) (string, error)
	// Resolve opens the stored file for reading, or returns ErrNotFound.
	Resolve(ref string) (io.ReadCloser, error)
	// Remove deletes the stored file. Callers treat failures as best-effort.
	Remove(ref string) error
}

// New selects the backend from configuration. The s3 backend needs AWS
// credentials; without them it falls back to local so uploads keep working.
func New() Backend {
	switch config.AppConfig.StorageBackend {
	case "s3":
		if config.AppConfig.AWSAccessKeyID == "" || config.AppConfig.AWSSecretAccessKey == "" {
			logrus.Warn("STORAGE_BACKEND=s3 but AWS credentials are missing; falling back to local storage")
			return NewLocalBackend(config.AppConfig.LocalStorageRoot)
		}
		backend, err := NewS3Backend()
		if err != nil {
			logrus.WithError(err).Warn("Failed to initialize S3 backend; falling back to local storage")
			return NewLocalBackend(config.AppConfig.LocalStorageRoot)
		}
		return backend
	default:
		return NewLocalBackend(config.AppConfig.LocalStorageRoot)
	}
}
