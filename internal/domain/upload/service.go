// internal/domain/upload/service.go
package upload

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/your-org/shopfront/internal/config"
	"github.com/your-org/shopfront/internal/pkg/apperror"
)

const (
	// URLPrefix is where the HTTP server exposes LocalPath
	URLPrefix = "/uploads"

	productFolder = "products"
)

// Service stores product images on the local filesystem
type Service struct {
	localPath  string
	baseURL    string
	maxSize    int64
	extensions map[string]bool
	log        logrus.FieldLogger
}

// NewService creates a new upload service
func NewService(cfg *config.Config, log logrus.FieldLogger) *Service {
	extensions := make(map[string]bool, len(cfg.Upload.AllowedExtensions))
	for _, ext := range cfg.Upload.AllowedExtensions {
		extensions[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}
	return &Service{
		localPath:  cfg.Storage.LocalPath,
		baseURL:    strings.TrimRight(cfg.Storage.BaseURL, "/"),
		maxSize:    cfg.Upload.MaxSize,
		extensions: extensions,
		log:        log,
	}
}

// LocalPath is the directory served under URLPrefix
func (s *Service) LocalPath() string {
	return s.localPath
}

// MaxSize is the largest accepted upload in bytes
func (s *Service) MaxSize() int64 {
	return s.maxSize
}

// SaveImage validates and stores an uploaded product image
func (s *Service) SaveImage(ctx context.Context, header *multipart.FileHeader) (*StoredImage, error) {
	if header == nil {
		return nil, apperror.Validation("No image uploaded")
	}
	if header.Size > s.maxSize {
		return nil, apperror.Validation("Image exceeds the %d byte limit", s.maxSize)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(header.Filename), "."))
	if !s.extensions[ext] {
		return nil, apperror.Validation("File type .%s is not allowed", ext)
	}

	src, err := header.Open()
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to read upload")
	}
	defer src.Close()

	cfg, format, err := image.DecodeConfig(src)
	if err != nil {
		return nil, apperror.Validation("File is not a valid image")
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, apperror.Wrap(err, "Failed to read upload")
	}

	filename := fmt.Sprintf("%s.%s", uuid.New().String(), ext)
	dir := filepath.Join(s.localPath, productFolder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperror.Wrap(err, "Failed to prepare storage")
	}

	fullPath := filepath.Join(dir, filename)
	dst, err := os.Create(fullPath)
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to save image")
	}

	written, err := io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(fullPath)
		return nil, apperror.Wrap(err, "Failed to save image")
	}

	stored := &StoredImage{
		URL:          s.fileURL(filename),
		Filename:     filename,
		OriginalName: header.Filename,
		Size:         written,
		Width:        cfg.Width,
		Height:       cfg.Height,
		Format:       format,
	}

	s.log.WithFields(logrus.Fields{
		"file":   filename,
		"size":   stored.FormattedSize(),
		"format": format,
	}).Info("product image stored")

	return stored, nil
}

// Delete removes an image previously returned by SaveImage. URLs this
// store does not own are ignored, as is an already missing file.
func (s *Service) Delete(ctx context.Context, url string) error {
	filename, ok := s.ownedFilename(url)
	if !ok {
		return nil
	}

	err := os.Remove(filepath.Join(s.localPath, productFolder, filename))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", filename, err)
	}
	return nil
}

func (s *Service) fileURL(filename string) string {
	return s.baseURL + path.Join(URLPrefix, productFolder, filename)
}

func (s *Service) ownedFilename(url string) (string, bool) {
	prefix := s.baseURL + path.Join(URLPrefix, productFolder) + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	name := strings.TrimPrefix(url, prefix)
	if name == "" || strings.ContainsAny(name, `/\`) || name == ".." {
		return "", false
	}
	return name, true
}
