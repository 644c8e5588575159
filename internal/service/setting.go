package service

import (
	"context"

	"github.com/Payphone-Digital/customer-service/internal/constants"
	"github.com/Payphone-Digital/customer-service/internal/dto"
	apperrors "github.com/Payphone-Digital/customer-service/internal/errors"
	"github.com/Payphone-Digital/customer-service/internal/model"
	"github.com/Payphone-Digital/customer-service/internal/repository"
	"github.com/Payphone-Digital/customer-service/internal/ssosync"
	ctxutil "github.com/Payphone-Digital/customer-service/pkg/context"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
)

type SettingService struct {
	settings *repository.SettingRepository
}

func NewSettingService(settings *repository.SettingRepository) *SettingService {
	return &SettingService{settings: settings}
}

// List returns every setting, or those whose name starts with prefix.
func (s *SettingService) List(ctx context.Context, prefix string) ([]dto.SettingResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Setting.List")
	settings, err := s.settings.FindByPattern(ctx, prefix)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return toSettingResponses(settings), nil
}

func (s *SettingService) Get(ctx context.Context, name string) (*dto.SettingResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Setting.Get")
	setting, err := s.settings.GetByName(ctx, name)
	if err != nil {
		return nil, repoError(err, apperrors.ErrSettingNotFound.WithField("name", name))
	}
	resp := toSettingResponse(setting)
	return &resp, nil
}

// BulkUpdate upserts every pair. The watermark is owned by the sync loop
// and is rejected here.
func (s *SettingService) BulkUpdate(ctx context.Context, req *dto.BulkUpdateSettingsRequest) ([]dto.SettingResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Setting.BulkUpdate")

	values := make(map[string]string, len(req.Settings))
	names := make([]string, 0, len(req.Settings))
	for _, item := range req.Settings {
		if item.Name == constants.SettingSSOLastUpdate {
			return nil, apperrors.ErrForbidden.WithField("name", item.Name)
		}
		if _, dup := values[item.Name]; !dup {
			names = append(names, item.Name)
		}
		values[item.Name] = item.Value
	}

	if err := s.settings.UpsertMany(ctx, values); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	logger.InfoWithContext(ctx, "Settings updated").Int("count", len(values)).Log()

	settings, err := s.settings.GetByNames(ctx, names)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return toSettingResponses(settings), nil
}

// Public returns the contact and legal settings, empty strings for missing ones.
func (s *SettingService) Public(ctx context.Context) (map[string]string, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Setting.Public")
	values, err := s.settings.GetValues(ctx, constants.PublicSettingNames)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	out := make(map[string]string, len(constants.PublicSettingNames))
	for _, name := range constants.PublicSettingNames {
		out[name] = values[name]
	}
	return out, nil
}

// SSOConfig is the typed view of the sync settings.
func (s *SettingService) SSOConfig(ctx context.Context) (*dto.SyncConfigResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Setting.SSOConfig")
	values, err := s.settings.GetValues(ctx, ssosync.SettingNames)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	resp := toSyncConfigResponse(ssosync.ParseConfig(values, ssosync.DefaultConfig()))
	return &resp, nil
}

// UpdateSSOConfig stores the typed values as strings. A running loop picks
// them up on its next reload tick.
func (s *SettingService) UpdateSSOConfig(ctx context.Context, req *dto.UpdateSSOSettingsRequest) (*dto.SyncConfigResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Setting.UpdateSSOConfig")

	cfg := ssosync.Config{
		Enabled:       *req.Enabled,
		Timespan:      req.Timespan,
		DataLimit:     req.DataLimit,
		RefreshConfig: req.RefreshConfig,
	}
	if err := s.settings.UpsertMany(ctx, cfg.Values()); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	logger.InfoWithContext(ctx, "SSO settings updated").
		Bool("enabled", cfg.Enabled).
		Int("timespan", cfg.Timespan).
		Int("data_limit", cfg.DataLimit).
		Int("refresh_config", cfg.RefreshConfig).
		Log()
	return s.SSOConfig(ctx)
}

func toSettingResponse(s *model.Setting) dto.SettingResponse {
	return dto.SettingResponse{Name: s.Name, Value: s.Value, UpdatedAt: s.UpdatedAt}
}

func toSettingResponses(settings []model.Setting) []dto.SettingResponse {
	resp := make([]dto.SettingResponse, 0, len(settings))
	for i := range settings {
		resp = append(resp, toSettingResponse(&settings[i]))
	}
	return resp
}
