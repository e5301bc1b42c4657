package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ippis/backend/internal/domain/shared"
	"github.com/ippis/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalDocumentStorage_MemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryDocumentStorage()
	key := "registrations/IPPIS-123456-7890/profile_image/p.png"

	url, err := s.Store(ctx, key, strings.NewReader("png-bytes"), 9, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/"+key, url)

	f, err := s.Open(ctx, key)
	require.NoError(t, err)
	body, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "png-bytes", string(body))

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Open(ctx, key)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	assert.NoError(t, s.Delete(ctx, key), "deleting a missing key succeeds")
}

func TestLocalDocumentStorage_Overwrite(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryDocumentStorage()
	key := "registrations/r/signature/s.png"

	_, err := s.Store(ctx, key, strings.NewReader("first-version"), 13, "image/png")
	require.NoError(t, err)
	_, err = s.Store(ctx, key, strings.NewReader("second"), 6, "image/png")
	require.NoError(t, err)

	f, err := s.Open(ctx, key)
	require.NoError(t, err)
	defer f.Close()
	body, _ := io.ReadAll(f)
	assert.Equal(t, "second", string(body))
}

func TestLocalDocumentStorage_Disk(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalDocumentStorage(dir, "https://files.example.com/uploads/")
	key := "registrations/r/appointment_letter/a.pdf"

	url, err := s.Store(context.Background(), key, strings.NewReader("%PDF"), 4, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://files.example.com/uploads/"+key, url)

	raw, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(raw))
}

func TestLocalDocumentStorage_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryDocumentStorage().Store(ctx, "a/b.pdf", strings.NewReader("x"), 1, "application/pdf")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValidateKey(t *testing.T) {
	assert.NoError(t, validateKey("registrations/r/slot/f.pdf"))
	for _, bad := range []string{"", "/abs/path.pdf", "../up.pdf", "a/../../b.pdf", "a//b.pdf", "a/./b.pdf"} {
		assert.Error(t, validateKey(bad), bad)
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("local driver", func(t *testing.T) {
		s, err := New(ctx, &config.StorageConfig{Driver: "local", LocalDir: t.TempDir()}, zap.NewNop())
		require.NoError(t, err)
		assert.IsType(t, &LocalDocumentStorage{}, s)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := New(ctx, &config.StorageConfig{Driver: "ftp"}, zap.NewNop())
		assert.Error(t, err)
	})
}
