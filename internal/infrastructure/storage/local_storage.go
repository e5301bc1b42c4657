package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	regapp "github.com/ippis/backend/internal/application/registration"
	"github.com/ippis/backend/internal/domain/shared"
)

// DefaultLocalURLPrefix prefixes the URLs recorded for locally stored documents.
// Nothing is served under it; reviewers fetch files through the admin API.
const DefaultLocalURLPrefix = "/uploads"

var _ regapp.DocumentStorage = (*LocalDocumentStorage)(nil)

// LocalDocumentStorage writes documents to a billy filesystem rooted at the upload directory
type LocalDocumentStorage struct {
	fs        billy.Filesystem
	urlPrefix string
}

// NewLocalDocumentStorage stores documents under dir on local disk
func NewLocalDocumentStorage(dir, urlPrefix string) *LocalDocumentStorage {
	return NewFilesystemDocumentStorage(osfs.New(dir), urlPrefix)
}

// NewMemoryDocumentStorage keeps documents in memory
func NewMemoryDocumentStorage() *LocalDocumentStorage {
	return NewFilesystemDocumentStorage(memfs.New(), DefaultLocalURLPrefix)
}

// NewFilesystemDocumentStorage stores documents on fs
func NewFilesystemDocumentStorage(fs billy.Filesystem, urlPrefix string) *LocalDocumentStorage {
	if urlPrefix == "" {
		urlPrefix = DefaultLocalURLPrefix
	}
	return &LocalDocumentStorage{fs: fs, urlPrefix: strings.TrimRight(urlPrefix, "/")}
}

// Store writes the document and returns its URL
func (s *LocalDocumentStorage) Store(ctx context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := s.fs.MkdirAll(path.Dir(key), 0o755); err != nil {
		return "", fmt.Errorf("failed to create document directory: %w", err)
	}

	f, err := s.fs.OpenFile(key, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create document: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(key)
		return "", fmt.Errorf("failed to write document: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write document: %w", err)
	}
	return s.urlPrefix + "/" + key, nil
}

// Delete removes a document; deleting a missing key succeeds
func (s *LocalDocumentStorage) Delete(_ context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := s.fs.Remove(key); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// Open returns a stored document for reading
func (s *LocalDocumentStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := s.fs.Open(key)
	if errors.Is(err, os.ErrNotExist) {
		return nil, shared.ErrNotFound.WithMessage("Document file not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	return f, nil
}

// validateKey rejects empty, absolute and escaping keys
func validateKey(key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	if strings.HasPrefix(key, "/") || path.Clean(key) != key || strings.HasPrefix(key, "..") {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}
