package dto

type SSOLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SSOTokenRequest struct {
	SSOToken string `json:"sso_token" binding:"required"`
}

type SSORefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type SSOTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type SSOAuthResponse struct {
	TokenPair
	SSO      *SSOTokens       `json:"sso,omitempty"`
	Customer CustomerResponse `json:"customer"`
}

type SyncConfigResponse struct {
	Enabled       bool   `json:"enabled"`
	Timespan      int    `json:"timespan"`
	DataLimit     int    `json:"data_limit"`
	RefreshConfig int    `json:"refresh_config"`
	LastUpdate    string `json:"last_update"`
}

type SyncStatusResponse struct {
	Config     SyncConfigResponse `json:"config"`
	Iteration  int                `json:"iteration"`
	Offset     int                `json:"offset"`
	TotalData  int64              `json:"total_data"`
	Running    bool               `json:"running"`
	LastTickAt *string            `json:"last_tick_at"`
	LastPassAt *string            `json:"last_pass_at"`
	LastError  string             `json:"last_error,omitempty"`
	PassesDone int64              `json:"passes_completed"`
	RowsPushed int64              `json:"rows_pushed"`
	RowsFailed int64              `json:"rows_failed"`
}
