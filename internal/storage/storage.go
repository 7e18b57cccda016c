// Package storage keeps post image attachments.
package storage

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidKey = errors.New("invalid storage key")

// ImageStore persists binary attachments addressed by a relative key.
type ImageStore interface {
	Save(ctx context.Context, key, contentType string, data []byte) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// NewImageKey returns a fresh key under posts/ with the given extension.
func NewImageKey(ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return "posts/" + uuid.NewString() + ext
}

// cleanKey rejects absolute keys and any attempt to climb out of the root.
func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

func joinURL(prefix, key string) string {
	return strings.TrimSuffix(prefix, "/") + "/" + key
}
