// Package seedsource defines where initial datasets are read from. Concrete
// drivers live in the fs, memory and s3 subpackages.
package seedsource

import (
	"context"
	"io"
	"path"
	"strings"
	"time"

	"github.com/juju/errors"
)

// Driver identifies a seed source backend.
type Driver string

const (
	// DriverNone disables seeding.
	DriverNone Driver = "none"
	// DriverFilesystem reads seed files from a local directory.
	DriverFilesystem Driver = "fs"
	// DriverS3 reads seed objects from an S3 or MinIO bucket.
	DriverS3 Driver = "s3"
	// DriverMemory keeps seed documents in process memory (tests).
	DriverMemory Driver = "memory"
)

// Info describes a stored seed document.
type Info struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size_bytes"`
	ContentType  string    `json:"content_type,omitempty"`
	ETag         string    `json:"etag,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// Source is a minimal key/document store. Open on a missing key returns a
// NotFound error; Put on an existing key returns AlreadyExists.
type Source interface {
	Open(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Put(ctx context.Context, key string, r io.Reader, contentType string) (Info, error)
	List(ctx context.Context, prefix string) ([]Info, error)
	Driver() Driver
}

// CleanKey rejects empty, absolute and escaping keys and returns the
// slash-separated normal form.
func CleanKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", errors.NotValidf("empty key")
	}
	if strings.HasPrefix(key, "/") || strings.HasPrefix(key, `\`) {
		return "", errors.NotValidf("absolute key %q", key)
	}
	clean := path.Clean(strings.ReplaceAll(key, `\`, "/"))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", errors.NotValidf("key %q escaping root", key)
	}
	return clean, nil
}

// ContentTypeFor guesses a content type from the key extension.
func ContentTypeFor(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".json":
		return "application/json"
	case ".yaml", ".yml":
		return "application/yaml"
	}
	return "application/octet-stream"
}
