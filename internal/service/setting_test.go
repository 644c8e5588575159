package service

import (
	"context"
	"testing"

	"github.com/Payphone-Digital/customer-service/internal/constants"
	"github.com/Payphone-Digital/customer-service/internal/dto"
	apperrors "github.com/Payphone-Digital/customer-service/internal/errors"
	"github.com/Payphone-Digital/customer-service/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingService(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, database.SeedSettings(f.db))
	svc := NewSettingService(f.settings)
	ctx := context.Background()

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, len(constants.DefaultSettings))

	sso, err := svc.List(ctx, constants.SettingPrefixSSO)
	require.NoError(t, err)
	assert.Len(t, sso, 5)

	_, err = svc.Get(ctx, "tidak_ada")
	requireKind(t, err, apperrors.KindSettingNotFound)

	updated, err := svc.BulkUpdate(ctx, &dto.BulkUpdateSettingsRequest{Settings: []dto.SettingItem{
		{Name: constants.SettingContactEmail, Value: "halo@example.com"},
		{Name: "banner_text", Value: "Promo"},
	}})
	require.NoError(t, err)
	assert.Len(t, updated, 2)

	_, err = svc.BulkUpdate(ctx, &dto.BulkUpdateSettingsRequest{Settings: []dto.SettingItem{
		{Name: constants.SettingSSOLastUpdate, Value: "2030-01-01 00:00:00.000"},
	}})
	requireKind(t, err, apperrors.KindForbidden)

	public, err := svc.Public(ctx)
	require.NoError(t, err)
	assert.Equal(t, "halo@example.com", public[constants.SettingContactEmail])
	assert.Len(t, public, len(constants.PublicSettingNames))
	assert.NotContains(t, public, "banner_text")
}

func TestSettingService_SSOConfig(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, database.SeedSettings(f.db))
	svc := NewSettingService(f.settings)
	ctx := context.Background()

	cfg, err := svc.SSOConfig(ctx)
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 60, cfg.Timespan)
	assert.Equal(t, "1970-01-01 07:00:00.000", cfg.LastUpdate)

	enabled := true
	cfg, err = svc.UpdateSSOConfig(ctx, &dto.UpdateSSOSettingsRequest{Enabled: &enabled, Timespan: 10, DataLimit: 50, RefreshConfig: 30})
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 10, cfg.Timespan)
	assert.Equal(t, 50, cfg.DataLimit)
	assert.Equal(t, 30, cfg.RefreshConfig)
	assert.Equal(t, "1970-01-01 07:00:00.000", cfg.LastUpdate)

	raw, err := f.settings.GetByName(ctx, constants.SettingSSOProcess)
	require.NoError(t, err)
	assert.Equal(t, "1", raw.Value)
}
