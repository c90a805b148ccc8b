package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/persistence"
	"github.com/spec-kit/commerce-service/internal/repository"
	apperrors "github.com/spec-kit/commerce-service/pkg/util/errorutil"
)

const (
	settingsCacheTTL = 10 * time.Minute
	settingsCacheKey = "settings:all"
)

// SettingValue is a resolved setting: the effective value plus whether it is
// the hardcoded default or a stored override.
type SettingValue struct {
	Key       domain.SettingKey `json:"key"`
	Value     json.RawMessage   `json:"value"`
	IsDefault bool              `json:"isDefault"`
	UpdatedBy *string           `json:"updatedBy,omitempty"`
	UpdatedAt *time.Time        `json:"updatedAt,omitempty"`
}

// SettingsService resolves the closed set of site settings, layering stored
// overrides on top of hardcoded defaults.
type SettingsService struct {
	settings repository.SettingRepository
	cache    *persistence.Redis
	logger   *zap.Logger
}

// NewSettingsService builds the service. The cache may be nil.
func NewSettingsService(settings repository.SettingRepository, cache *persistence.Redis, logger *zap.Logger) *SettingsService {
	return &SettingsService{settings: settings, cache: cache, logger: logger}
}

// Get resolves one setting.
func (s *SettingsService) Get(ctx context.Context, key domain.SettingKey) (*SettingValue, error) {
	if !domain.ValidSettingKey(key) {
		return nil, unknownKeyError(key)
	}

	stored, err := s.settings.Get(ctx, key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			value, _ := domain.DefaultSettingValue(key)
			return &SettingValue{Key: key, Value: value, IsDefault: true}, nil
		}
		return nil, err
	}
	updatedAt := stored.UpdatedAt
	return &SettingValue{
		Key:       key,
		Value:     stored.Value,
		UpdatedBy: stored.UpdatedBy,
		UpdatedAt: &updatedAt,
	}, nil
}

// GetAll resolves every known setting, served from cache when possible.
func (s *SettingsService) GetAll(ctx context.Context) (map[domain.SettingKey]SettingValue, error) {
	if data, ok := s.cache.GetCached(ctx, settingsCacheKey); ok {
		var cached map[domain.SettingKey]SettingValue
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	result := make(map[domain.SettingKey]SettingValue, len(domain.SettingKeys()))
	for _, key := range domain.SettingKeys() {
		value, _ := domain.DefaultSettingValue(key)
		result[key] = SettingValue{Key: key, Value: value, IsDefault: true}
	}

	stored, err := s.settings.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, setting := range stored {
		if !domain.ValidSettingKey(setting.Key) {
			continue
		}
		updatedAt := setting.UpdatedAt
		result[setting.Key] = SettingValue{
			Key:       setting.Key,
			Value:     setting.Value,
			UpdatedBy: setting.UpdatedBy,
			UpdatedAt: &updatedAt,
		}
	}

	if data, err := json.Marshal(result); err == nil {
		s.cache.SetCached(ctx, settingsCacheKey, data, settingsCacheTTL)
	}
	return result, nil
}

// Update stores an override after validating the value against the key's
// typed schema. Unknown fields are rejected.
func (s *SettingsService) Update(ctx context.Context, key domain.SettingKey, value json.RawMessage, actor *domain.User) (*SettingValue, error) {
	if !domain.ValidSettingKey(key) {
		return nil, unknownKeyError(key)
	}
	if err := validateSettingValue(key, value); err != nil {
		return nil, err
	}

	actorID := actor.ID
	setting := &domain.Setting{Key: key, Value: value, UpdatedBy: &actorID}
	if err := s.settings.Upsert(ctx, setting); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, settingsCacheKey)
	s.logger.Info("setting updated",
		zap.String("key", string(key)),
		zap.String("actor_email", actor.Email),
	)

	updatedAt := setting.UpdatedAt
	return &SettingValue{
		Key:       key,
		Value:     setting.Value,
		UpdatedBy: setting.UpdatedBy,
		UpdatedAt: &updatedAt,
	}, nil
}

// Reset drops the stored override so the default applies again.
func (s *SettingsService) Reset(ctx context.Context, key domain.SettingKey, actor *domain.User) (*SettingValue, error) {
	if !domain.ValidSettingKey(key) {
		return nil, unknownKeyError(key)
	}
	if err := s.settings.Delete(ctx, key); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, settingsCacheKey)
	s.logger.Info("setting reset to default",
		zap.String("key", string(key)),
		zap.String("actor_email", actor.Email),
	)

	value, _ := domain.DefaultSettingValue(key)
	return &SettingValue{Key: key, Value: value, IsDefault: true}, nil
}

func validateSettingValue(key domain.SettingKey, value json.RawMessage) error {
	if len(value) == 0 {
		return apperrors.NewValidationError("value is required", nil)
	}

	var target any
	switch key {
	case domain.SettingSiteColors:
		target = &domain.SiteColors{}
	case domain.SettingBanners:
		target = &domain.Banners{}
	default:
		return unknownKeyError(key)
	}

	dec := json.NewDecoder(bytes.NewReader(value))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return apperrors.NewValidationError(
			fmt.Sprintf("value does not match the %s schema: %v", key, err), nil)
	}
	return nil
}

func unknownKeyError(key domain.SettingKey) error {
	return apperrors.NewValidationError(
		fmt.Sprintf("unknown setting %q", key),
		map[string]any{"validKeys": domain.SettingKeys()},
	)
}
