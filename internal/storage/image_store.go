// Package storage keeps uploaded post images on the local filesystem.
package storage

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
	// ErrNotAnImage is returned when the upload does not sniff as an image.
	ErrNotAnImage = errors.New("uploaded file is not an image")
	// ErrTooLarge is returned when the upload exceeds the configured limit.
	ErrTooLarge = errors.New("uploaded file is too large")
)

// StoredImage describes a file written by ImageStore.Save.
type StoredImage struct {
	// PublicPath is the server-relative URL the image is served from.
	PublicPath string
	// OriginalName is the client-supplied filename, kept for display only.
	OriginalName string
	MimeType     string
	Size         int64
}

// ImageStore writes uploads under Dir and serves them below URLPrefix.
type ImageStore struct {
	Dir       string
	URLPrefix string
	MaxBytes  int64
}

// NewImageStore creates a new ImageStore.
func NewImageStore(dir, urlPrefix string, maxBytes int64) *ImageStore {
	return &ImageStore{
		Dir:       dir,
		URLPrefix: "/" + strings.Trim(urlPrefix, "/"),
		MaxBytes:  maxBytes,
	}
}

// Save validates and stores an uploaded file under a generated name. The
// client filename never becomes part of the storage path.
func (s *ImageStore) Save(fh *multipart.FileHeader) (*StoredImage, error) {
	if s.MaxBytes > 0 && fh.Size > s.MaxBytes {
		return nil, ErrTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return nil, fmt.Errorf("detect upload type: %w", err)
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, ErrNotAnImage
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind upload: %w", err)
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.NewString() + mtype.Extension()
	dst, err := os.OpenFile(filepath.Join(s.Dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create image file: %w", err)
	}

	var reader io.Reader = src
	if s.MaxBytes > 0 {
		reader = io.LimitReader(src, s.MaxBytes+1)
	}
	written, err := io.Copy(dst, reader)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err == nil && s.MaxBytes > 0 && written > s.MaxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.Dir, name))
		if errors.Is(err, ErrTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("write image file: %w", err)
	}

	return &StoredImage{
		PublicPath:   path.Join(s.URLPrefix, name),
		OriginalName: filepath.Base(fh.Filename),
		MimeType:     mtype.String(),
		Size:         written,
	}, nil
}

// Remove deletes a previously stored image given its public path.
func (s *ImageStore) Remove(publicPath string) error {
	name := path.Base(publicPath)
	if name == "." || name == "/" || !strings.HasPrefix(publicPath, s.URLPrefix+"/") {
		return fmt.Errorf("not a stored image path: %q", publicPath)
	}
	err := os.Remove(filepath.Join(s.Dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
