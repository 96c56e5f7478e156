package dispenser

import (
	"context"
	"errors"

	"github.com/quentinlb/cocktaild/core/apperrors"
	"github.com/quentinlb/cocktaild/core/model"
	"github.com/quentinlb/cocktaild/core/store"
)

// SettingService exposes the singleton dispenser timing settings. The first
// read creates the document with defaults.
type SettingService struct {
	settings store.SettingStore
}

// NewSettingService creates a SettingService.
func NewSettingService(settings store.SettingStore) *SettingService {
	return &SettingService{settings: settings}
}

// Get returns the settings, persisting the defaults when none exist yet.
func (s *SettingService) Get(ctx context.Context) (model.Setting, error) {
	setting, err := s.settings.Get(ctx)
	if errors.Is(err, store.ErrNotFound) {
		setting = model.DefaultSetting
		if err := s.settings.Put(ctx, setting); err != nil {
			return model.Setting{}, err
		}
		return setting, nil
	}
	return setting, err
}

// Update replaces the settings.
func (s *SettingService) Update(ctx context.Context, setting model.Setting) (model.Setting, error) {
	if setting.DispenserEmptyingTime <= 0 || setting.DispenserFillingTime <= 0 {
		return model.Setting{}, apperrors.NewIncorrectInput(
			"dispenser timings must be positive",
			apperrors.SlugIncorrectInput,
		)
	}
	if err := s.settings.Put(ctx, setting); err != nil {
		return model.Setting{}, err
	}
	return setting, nil
}
