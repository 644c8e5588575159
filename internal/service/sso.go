package service

import (
	"context"
	"errors"
	"time"

	"github.com/Payphone-Digital/customer-service/internal/client"
	"github.com/Payphone-Digital/customer-service/internal/dto"
	apperrors "github.com/Payphone-Digital/customer-service/internal/errors"
	"github.com/Payphone-Digital/customer-service/internal/model"
	"github.com/Payphone-Digital/customer-service/internal/repository"
	"github.com/Payphone-Digital/customer-service/internal/ssosync"
	"github.com/Payphone-Digital/customer-service/pkg/clock"
	ctxutil "github.com/Payphone-Digital/customer-service/pkg/context"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
	"gorm.io/gorm"
)

// IdentityProvider is the federation part of the auth service.
type IdentityProvider interface {
	Login(ctx context.Context, username, password string) (*client.SSOTokens, error)
	VerifyToken(ctx context.Context, token string) (*client.SSOUser, error)
	Refresh(ctx context.Context, refreshToken string) (*client.SSOTokens, error)
	SyncUser(ctx context.Context, req client.SyncUserRequest) (*client.SyncUserResponse, error)
}

// StatusSource exposes the sync loop state.
type StatusSource interface {
	Snapshot() ssosync.Status
}

type SSOService struct {
	customers *repository.CustomerRepository
	settings  *repository.SettingRepository
	idp       IdentityProvider
	jwt       *JWTService
	clock     clock.Clock
	status    StatusSource
}

func NewSSOService(
	customers *repository.CustomerRepository,
	settings *repository.SettingRepository,
	idp IdentityProvider,
	jwt *JWTService,
	c clock.Clock,
) *SSOService {
	if c == nil {
		c = clock.System
	}
	return &SSOService{customers: customers, settings: settings, idp: idp, jwt: jwt, clock: c}
}

// AttachRunner makes SyncStatus report live cursor state.
func (s *SSOService) AttachRunner(src StatusSource) {
	s.status = src
}

// Login authenticates against the identity provider and signs the local
// customer in, linking the profile on first use.
func (s *SSOService) Login(ctx context.Context, req *dto.SSOLoginRequest) (*dto.SSOAuthResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "SSO.Login")

	tokens, err := s.idp.Login(ctx, req.Username, req.Password)
	if err != nil {
		logger.WarnWithContext(ctx, "SSO login rejected").String("username", req.Username).Err(err).Log()
		return nil, client.ToDomain(err)
	}

	user := tokens.User
	if user == nil {
		if user, err = s.idp.VerifyToken(ctx, tokens.AccessToken); err != nil {
			return nil, client.ToDomain(err)
		}
	}

	resp, err := s.signIn(ctx, user)
	if err != nil {
		return nil, err
	}
	resp.SSO = &dto.SSOTokens{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken, ExpiresIn: tokens.ExpiresIn}
	return resp, nil
}

// Token exchanges an identity provider access token for a local pair.
func (s *SSOService) Token(ctx context.Context, req *dto.SSOTokenRequest) (*dto.SSOAuthResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "SSO.Token")

	user, err := s.idp.VerifyToken(ctx, req.SSOToken)
	if err != nil {
		logger.WarnWithContext(ctx, "SSO token rejected").Err(err).Log()
		return nil, client.ToDomain(err)
	}
	return s.signIn(ctx, user)
}

func (s *SSOService) Refresh(ctx context.Context, req *dto.SSORefreshRequest) (*dto.SSOTokens, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "SSO.Refresh")

	tokens, err := s.idp.Refresh(ctx, req.RefreshToken)
	if err != nil {
		logger.WarnWithContext(ctx, "SSO refresh rejected").Err(err).Log()
		return nil, client.ToDomain(err)
	}
	return &dto.SSOTokens{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken, ExpiresIn: tokens.ExpiresIn}, nil
}

func (s *SSOService) signIn(ctx context.Context, user *client.SSOUser) (*dto.SSOAuthResponse, error) {
	customer, err := s.resolve(ctx, user)
	if err != nil {
		return nil, err
	}
	if !customer.IsActive {
		return nil, apperrors.ErrCustomerInactive
	}

	if customer.SSOID == nil && user.ID != "" {
		if err := s.customers.SetSSOID(ctx, customer.ID, user.ID); err != nil {
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
		id := user.ID
		customer.SSOID = &id
		logger.InfoWithContext(ctx, "Customer linked to SSO").Uint("customer_id", customer.ID).String("sso_id", user.ID).Log()
	}

	now := s.clock.Now()
	if err := s.customers.UpdateLastLogin(ctx, customer.ID, now); err == nil {
		customer.LastLoginAt = &now
	}

	pair, err := issuePair(s.jwt, customer)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return &dto.SSOAuthResponse{TokenPair: *pair, Customer: toCustomerResponse(customer)}, nil
}

// resolve finds the local profile by sso id, then phone, then email. A
// phone or email match already linked to another sso id is refused.
func (s *SSOService) resolve(ctx context.Context, user *client.SSOUser) (*model.CustomerProfile, error) {
	lookups := []struct {
		by  string
		key string
		get func(context.Context, string) (*model.CustomerProfile, error)
	}{
		{"sso_id", user.ID, s.customers.GetBySSOID},
		{"phone", user.Phone, s.customers.GetByPhone},
		{"email", user.Email, s.customers.GetByEmail},
	}
	for _, l := range lookups {
		if l.key == "" {
			continue
		}
		customer, err := l.get(ctx, l.key)
		if err == nil {
			if customer.SSOID != nil && *customer.SSOID != user.ID {
				logger.WarnWithContext(ctx, "SSO user matches a profile linked to another account").
					String("matched_by", l.by).
					String("sso_id", user.ID).
					Uint("customer_id", customer.ID).
					Log()
				return nil, apperrors.ErrForbidden
			}
			return customer, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
	}
	logger.WarnWithContext(ctx, "No local profile for SSO user").String("sso_id", user.ID).Log()
	return nil, apperrors.ErrCustomerNotFound
}

// Push sends one customer row to the identity provider.
func (s *SSOService) Push(ctx context.Context, customer *model.CustomerProfile) (string, error) {
	req := client.SyncUserRequest{
		CustomerID:    customer.ID,
		SSOID:         customer.SSOID,
		Phone:         customer.Phone,
		Email:         customer.Email,
		Name:          customer.Name,
		IsActive:      customer.IsActive,
		Deleted:       customer.DeletedAt.Valid,
		EmailVerified: customer.EmailVerifiedAt != nil,
		PhoneVerified: customer.PhoneVerifiedAt != nil,
		UpdatedAt:     customer.UpdatedAt.UTC().Format(time.RFC3339),
		PasswordHash:  customer.Password,
		ReferralCode:  customer.ReferralCode,
	}
	resp, err := s.idp.SyncUser(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.SSOID, nil
}

// SyncStatus reports the loop state, or the stored config when no loop runs
// in this process.
func (s *SSOService) SyncStatus(ctx context.Context) (*dto.SyncStatusResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "SSO.SyncStatus")

	var st ssosync.Status
	if s.status != nil {
		st = s.status.Snapshot()
	} else {
		values, err := s.settings.GetValues(ctx, ssosync.SettingNames)
		if err != nil {
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
		st.Config = ssosync.ParseConfig(values, ssosync.DefaultConfig())
	}

	resp := &dto.SyncStatusResponse{
		Config:     toSyncConfigResponse(st.Config),
		Iteration:  st.Cursor.Iteration,
		Offset:     st.Cursor.Offset,
		TotalData:  st.Cursor.TotalData,
		Running:    st.Running,
		LastTickAt: formatOptional(st.LastTickAt),
		LastPassAt: formatOptional(st.LastPassAt),
		LastError:  st.LastError,
		PassesDone: st.PassesDone,
		RowsPushed: st.RowsPushed,
		RowsFailed: st.RowsFailed,
	}
	return resp, nil
}

func toSyncConfigResponse(cfg ssosync.Config) dto.SyncConfigResponse {
	return dto.SyncConfigResponse{
		Enabled:       cfg.Enabled,
		Timespan:      cfg.Timespan,
		DataLimit:     cfg.DataLimit,
		RefreshConfig: cfg.RefreshConfig,
		LastUpdate:    clock.FormatWatermark(cfg.LastUpdate),
	}
}

func formatOptional(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := clock.FormatWatermark(t)
	return &s
}
