package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"

	"github.com/twinside/backend/internal/config"
)

var (
	ErrFileTooLarge  = errors.New("file too large")
	ErrInvalidImage  = errors.New("invalid image")
	ErrImageTooSmall = errors.New("image too small")
)

// urlPrefix is the public base under which saved files are served. Stored
// paths always use it so the database never sees the on-disk directory.
const urlPrefix = "/uploads/"

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ImageStore writes validated upload images to local disk. Files land under
// <dir>/<category>/ with random names; the returned path is the public URL
// path /uploads/<category>/<name>, served by the static mount.
type ImageStore struct {
	dir         string
	maxFileSize int64
	minWidth    int
	minHeight   int
}

// NewImageStore creates an image store from config.
func NewImageStore(cfg config.UploadsConfig) (*ImageStore, error) {
	for _, category := range []string{"avatars", "verify"} {
		if err := os.MkdirAll(filepath.Join(cfg.Dir, category), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create upload directory: %w", err)
		}
	}

	return &ImageStore{
		dir:         cfg.Dir,
		maxFileSize: cfg.MaxFileSize,
		minWidth:    cfg.MinWidth,
		minHeight:   cfg.MinHeight,
	}, nil
}

// Save validates the uploaded image and writes it under the given category.
// Returns the URL path to store on the account.
func (s *ImageStore) Save(fileHeader *multipart.FileHeader, category string) (string, error) {
	if fileHeader.Size > s.maxFileSize {
		return "", ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedExtensions[ext] {
		return "", ErrInvalidImage
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.maxFileSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxFileSize {
		return "", ErrFileTooLarge
	}

	if err := s.checkDimensions(data); err != nil {
		return "", err
	}

	name := uuid.New().String() + ext
	if err := os.WriteFile(filepath.Join(s.dir, category, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	return urlPrefix + category + "/" + name, nil
}

// Resolve maps a stored URL path back to the file on disk. Paths outside
// /uploads/ or containing traversal segments are rejected.
func (s *ImageStore) Resolve(urlPath string) (string, error) {
	rel, ok := strings.CutPrefix(urlPath, urlPrefix)
	if !ok || rel == "" || strings.Contains(rel, "..") {
		return "", fmt.Errorf("not an upload path: %q", urlPath)
	}
	return filepath.Join(s.dir, filepath.FromSlash(rel)), nil
}

// Remove deletes a previously saved file by its URL path. Missing files are
// not an error.
func (s *ImageStore) Remove(urlPath string) error {
	if urlPath == "" {
		return nil
	}
	diskPath, err := s.Resolve(urlPath)
	if err != nil {
		return err
	}
	if err := os.Remove(diskPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove upload: %w", err)
	}
	return nil
}

// Dir returns the root upload directory, used to mount the static route.
func (s *ImageStore) Dir() string {
	return s.dir
}

func (s *ImageStore) checkDimensions(data []byte) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ErrInvalidImage
	}

	if cfg.Width < s.minWidth || cfg.Height < s.minHeight {
		return ErrImageTooSmall
	}

	return nil
}
