// Package storage abstracts where document bytes live. The pipeline only
// needs Get; backends are interchangeable.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

// ErrNotFound is returned when the requested path does not exist in the
// backing store.
var ErrNotFound = errors.New("document not found")

// Store reads document bytes by storage location.
type Store interface {
	Get(ctx context.Context, path string) ([]byte, error)
}

// LocalStore serves documents from a directory on disk.
type LocalStore struct {
	root string
}

// NewLocalStore creates a store rooted at dir.
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{root: dir}
}

// Get reads the file at path, resolved relative to the store root. Paths
// escaping the root are rejected.
func (s *LocalStore) Get(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	full := path
	if s.root != "" && !filepath.IsAbs(path) {
		full = filepath.Join(s.root, path)
	}
	if s.root != "" {
		rel, err := filepath.Rel(s.root, full)
		if err != nil || strings.HasPrefix(rel, "..") {
			return nil, fmt.Errorf("path %q outside storage root", path)
		}
	}

	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// RetryingStore wraps a Store with bounded retries for transient read
// failures. NotFound is terminal and never retried.
type RetryingStore struct {
	inner    Store
	attempts uint
	delay    time.Duration
}

// NewRetryingStore wraps inner with the given retry budget.
func NewRetryingStore(inner Store, attempts uint, delay time.Duration) *RetryingStore {
	if attempts == 0 {
		attempts = 3
	}
	if delay == 0 {
		delay = 250 * time.Millisecond
	}
	return &RetryingStore{inner: inner, attempts: attempts, delay: delay}
}

// Get reads from the inner store, retrying transient failures.
func (s *RetryingStore) Get(ctx context.Context, path string) ([]byte, error) {
	var data []byte
	err := retry.Do(
		func() error {
			var err error
			data, err = s.inner.Get(ctx, path)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(s.attempts),
		retry.Delay(s.delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, ErrNotFound)
		}),
	)
	if err != nil {
		return nil, err
	}
	return data, nil
}
