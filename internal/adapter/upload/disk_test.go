package upload

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/sm8ta/webike_rental_service/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["image"][0]
}

func TestSaveAndRemove(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewDiskStorage(dir, 1024)
	require.NoError(t, err)

	path, err := storage.Save(context.Background(), fileHeader(t, "bike.JPG", []byte("jpeg-bytes")))
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^/uploads/\d+-[0-9a-f]{8}\.jpg$`), path)

	stored := filepath.Join(dir, strings.TrimPrefix(path, PublicPrefix))
	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	require.NoError(t, storage.Remove(path))
	_, err = os.Stat(stored)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, storage.Remove(path))
}

func TestSaveRejectsExtension(t *testing.T) {
	storage, err := NewDiskStorage(t.TempDir(), 1024)
	require.NoError(t, err)

	_, err = storage.Save(context.Background(), fileHeader(t, "bike.exe", []byte("x")))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSaveRejectsOversized(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewDiskStorage(dir, 4)
	require.NoError(t, err)

	_, err = storage.Save(context.Background(), fileHeader(t, "bike.png", []byte("too large")))
	assert.ErrorIs(t, err, domain.ErrValidation)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRemoveIgnoresForeignPaths(t *testing.T) {
	storage, err := NewDiskStorage(t.TempDir(), 1024)
	require.NoError(t, err)
	assert.NoError(t, storage.Remove("https://example.com/bike.png"))
	assert.NoError(t, storage.Remove(""))
}
