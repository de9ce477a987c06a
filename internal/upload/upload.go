package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrNotImage = errors.New("only image files are allowed")
	ErrTooLarge = errors.New("file exceeds the maximum allowed size")
)

// Store writes uploaded photos into a directory served under publicPrefix and
// returns the public reference of each stored file.
type Store struct {
	dir          string
	publicPrefix string
	maxBytes     int64
}

func NewStore(dir, publicPrefix string, maxBytes int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{
		dir:          dir,
		publicPrefix: strings.TrimRight(publicPrefix, "/"),
		maxBytes:     maxBytes,
	}, nil
}

func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

// Save validates the declared and sniffed MIME type and the size, then writes
// the file under a random name keeping the original extension.
func (s *Store) Save(header *multipart.FileHeader) (string, error) {
	if header.Size > s.maxBytes {
		return "", ErrTooLarge
	}
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		return "", ErrNotImage
	}

	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	detected, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("detect upload type: %w", err)
	}
	if !strings.HasPrefix(detected.String(), "image/") {
		return "", ErrNotImage
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		ext = detected.Extension()
	}
	name := uuid.NewString() + ext

	dst, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	written, err := io.Copy(dst, io.LimitReader(src, s.maxBytes+1))
	closeErr := dst.Close()
	if err == nil && written > s.maxBytes {
		err = ErrTooLarge
	}
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(filepath.Join(s.dir, name))
		if errors.Is(err, ErrTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("write upload: %w", err)
	}

	return path.Join(s.publicPrefix, name), nil
}

// Remove deletes a file previously returned by Save. Unknown references are
// ignored.
func (s *Store) Remove(ref string) error {
	if ref == "" || !strings.HasPrefix(ref, s.publicPrefix+"/") {
		return nil
	}
	name := path.Base(ref)
	err := os.Remove(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
