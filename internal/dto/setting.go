package dto

import "time"

type SettingResponse struct {
	Name      string    `json:"name"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SettingItem struct {
	Name  string `json:"name" binding:"required,max=100"`
	Value string `json:"value"`
}

type BulkUpdateSettingsRequest struct {
	Settings []SettingItem `json:"settings" binding:"required,min=1,dive"`
}

// UpdateSSOSettingsRequest is the typed view of the sso_* settings.
type UpdateSSOSettingsRequest struct {
	Enabled       *bool `json:"enabled" binding:"required"`
	Timespan      int   `json:"timespan" binding:"required,min=1"`
	DataLimit     int   `json:"data_limit" binding:"required,min=1,max=1000"`
	RefreshConfig int   `json:"refresh_config" binding:"required,min=1"`
}
