package upload_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Natalia-54/sistema-academico-jfk/internal/upload"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x1 transparent PNG
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func fileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="foto"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := writer.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	_, header, err := req.FormFile("foto")
	require.NoError(t, err)
	return header
}

func TestStore_Save(t *testing.T) {
	t.Run("StoresImage", func(t *testing.T) {
		dir := t.TempDir()
		store, err := upload.NewStore(dir, "/uploads", 5*1024*1024)
		require.NoError(t, err)

		ref, err := store.Save(fileHeader(t, "Foto.PNG", "image/png", pngBytes))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(ref, "/uploads/"))
		assert.True(t, strings.HasSuffix(ref, ".png"))

		stored, err := os.ReadFile(filepath.Join(dir, filepath.Base(ref)))
		require.NoError(t, err)
		assert.Equal(t, pngBytes, stored)
	})

	t.Run("RejectsDeclaredNonImage", func(t *testing.T) {
		store, err := upload.NewStore(t.TempDir(), "/uploads", 5*1024*1024)
		require.NoError(t, err)

		_, err = store.Save(fileHeader(t, "notes.txt", "text/plain", []byte("hello")))
		assert.ErrorIs(t, err, upload.ErrNotImage)
	})

	t.Run("RejectsDisguisedNonImage", func(t *testing.T) {
		dir := t.TempDir()
		store, err := upload.NewStore(dir, "/uploads", 5*1024*1024)
		require.NoError(t, err)

		_, err = store.Save(fileHeader(t, "photo.png", "image/png", []byte("#!/bin/sh\necho hi\n")))
		assert.ErrorIs(t, err, upload.ErrNotImage)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("RejectsTooLarge", func(t *testing.T) {
		store, err := upload.NewStore(t.TempDir(), "/uploads", 16)
		require.NoError(t, err)

		_, err = store.Save(fileHeader(t, "photo.png", "image/png", pngBytes))
		assert.ErrorIs(t, err, upload.ErrTooLarge)
	})
}

func TestStore_Remove(t *testing.T) {
	dir := t.TempDir()
	store, err := upload.NewStore(dir, "/uploads", 5*1024*1024)
	require.NoError(t, err)

	ref, err := store.Save(fileHeader(t, "photo.png", "image/png", pngBytes))
	require.NoError(t, err)

	require.NoError(t, store.Remove(ref))
	_, err = os.Stat(filepath.Join(dir, filepath.Base(ref)))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Remove(ref))
	assert.NoError(t, store.Remove(""))
	assert.NoError(t, store.Remove("/elsewhere/file.png"))
}
