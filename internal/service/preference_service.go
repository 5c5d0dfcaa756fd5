package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/dayflow-app/dayflow-api/internal/dto"
	"github.com/dayflow-app/dayflow-api/internal/models"
	"github.com/dayflow-app/dayflow-api/internal/scheduler"
	appErrors "github.com/dayflow-app/dayflow-api/pkg/errors"
)

type userPreferenceRepo interface {
	GetByUser(ctx context.Context, userID string) (*models.UserPreference, error)
	Upsert(ctx context.Context, pref *models.UserPreference) error
}

// PreferenceService handles user scheduling preference logic.
type PreferenceService struct {
	repo      userPreferenceRepo
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPreferenceService builds the service.
func NewPreferenceService(repo userPreferenceRepo, validate *validator.Validate, logger *zap.Logger) *PreferenceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreferenceService{repo: repo, validator: validate, logger: logger}
}

// Get returns stored preferences or the documented defaults.
func (s *PreferenceService) Get(ctx context.Context, userID string) (*dto.PreferenceResponse, error) {
	pref, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			fallback := models.DefaultPreference(userID)
			pref = &fallback
		} else {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load preferences")
		}
	}
	return preferenceResponse(pref), nil
}

// Update validates and stores a user's preferences.
func (s *PreferenceService) Update(ctx context.Context, userID string, req dto.UpdatePreferenceRequest) (*dto.PreferenceResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid preference payload")
	}
	for _, clock := range []string{req.WakeTime, req.SleepTime} {
		if _, err := scheduler.ParseClock(clock); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "wake and sleep times must be HH:MM")
		}
	}
	if (req.EatingStart == nil) != (req.EatingEnd == nil) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "eating window requires both start and end")
	}
	if req.EatingStart != nil {
		for _, clock := range []string{*req.EatingStart, *req.EatingEnd} {
			if _, err := scheduler.ParseClock(clock); err != nil {
				return nil, appErrors.Clone(appErrors.ErrValidation, "eating window times must be HH:MM")
			}
		}
	}

	tags := types.JSONText("[]")
	if len(req.PriorityTags) > 0 {
		raw, err := json.Marshal(req.PriorityTags)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid priority tags")
		}
		tags = types.JSONText(raw)
	}

	payload := &models.UserPreference{
		UserID:           userID,
		WakeTime:         req.WakeTime,
		SleepTime:        req.SleepTime,
		EnergyPeak:       valueOrDefault(req.EnergyPeak, "morning"),
		FlexibilityLevel: models.FlexibilityLevel(valueOrDefault(req.FlexibilityLevel, string(models.FlexibilityBalanced))),
		EatingStart:      req.EatingStart,
		EatingEnd:        req.EatingEnd,
		CalendarSync:     req.CalendarSync,
		PriorityTags:     tags,
	}

	existing, err := s.repo.GetByUser(ctx, userID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load preferences")
	}
	if existing != nil {
		payload.ID = existing.ID
		payload.CreatedAt = existing.CreatedAt
	}

	if err := s.repo.Upsert(ctx, payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store preferences")
	}
	return preferenceResponse(payload), nil
}

func preferenceResponse(pref *models.UserPreference) *dto.PreferenceResponse {
	var tags []string
	if len(pref.PriorityTags) > 0 {
		_ = json.Unmarshal(pref.PriorityTags, &tags)
	}
	return &dto.PreferenceResponse{
		WakeTime:         pref.WakeTime,
		SleepTime:        pref.SleepTime,
		EnergyPeak:       pref.EnergyPeak,
		FlexibilityLevel: string(pref.FlexibilityLevel),
		EatingStart:      pref.EatingStart,
		EatingEnd:        pref.EatingEnd,
		CalendarSync:     pref.CalendarSync,
		PriorityTags:     tags,
	}
}

func valueOrDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
