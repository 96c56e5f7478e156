// Package files stores uploaded assets (recipe pictures) on disk and tracks
// their metadata.
package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/quentinlb/cocktaild/core/apperrors"
	"github.com/quentinlb/cocktaild/core/logger"
	"github.com/quentinlb/cocktaild/core/model"
	"github.com/quentinlb/cocktaild/core/store"
)

type Service struct {
	files store.FileStore
	dir   string
	log   logger.Logger
}

// NewService creates a Service writing file bytes under dir, creating it if
// needed.
func NewService(files store.FileStore, dir string, log logger.Logger) (*Service, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create files dir: %w", err)
	}
	return &Service{files: files, dir: dir, log: log}, nil
}

// Dir returns the directory served as static content.
func (s *Service) Dir() string { return s.dir }

func (s *Service) Find(ctx context.Context) ([]model.File, error) {
	return s.files.Find(ctx)
}

func (s *Service) FindByID(ctx context.Context, id string) (model.File, error) {
	f, err := s.files.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return model.File{}, apperrors.NewNotFound("file not found", apperrors.SlugFileNotFound)
	}
	return f, err
}

// Save streams the uploaded content to disk under a generated name and
// persists the metadata. The original name is kept for display only; the
// on-disk name is the id plus the original extension.
func (s *Service) Save(ctx context.Context, name string, r io.Reader) (model.File, error) {
	if name == "" {
		return model.File{}, apperrors.NewIncorrectInput("file name is required", apperrors.SlugIncorrectInput)
	}
	id := uuid.NewString()
	path := id + filepath.Ext(name)

	dst, err := os.Create(filepath.Join(s.dir, path))
	if err != nil {
		return model.File{}, fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		_ = os.Remove(dst.Name())
		return model.File{}, fmt.Errorf("write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return model.File{}, fmt.Errorf("close file: %w", err)
	}

	now := time.Now().UTC()
	f := model.File{
		ID:        id,
		Name:      filepath.Base(name),
		Path:      path,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.files.Create(ctx, f); err != nil {
		_ = os.Remove(filepath.Join(s.dir, path))
		return model.File{}, err
	}
	s.log.Infof("file %s stored as %s", f.Name, f.Path)
	return f, nil
}

// Delete removes the metadata and the bytes. A missing disk file is not an
// error; the metadata is authoritative.
func (s *Service) Delete(ctx context.Context, id string) error {
	f, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.files.Delete(ctx, id); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, f.Path)); err != nil && !os.IsNotExist(err) {
		s.log.Warnf("file %s deleted from store but not from disk: %v", id, err)
	}
	return nil
}
