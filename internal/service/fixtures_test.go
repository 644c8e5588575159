package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Payphone-Digital/customer-service/internal/client"
	apperrors "github.com/Payphone-Digital/customer-service/internal/errors"
	"github.com/Payphone-Digital/customer-service/internal/jobs"
	"github.com/Payphone-Digital/customer-service/internal/model"
	"github.com/Payphone-Digital/customer-service/internal/repository"
	"github.com/Payphone-Digital/customer-service/internal/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2024, 5, 17, 3, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type recordingDispatcher struct {
	sms    []jobs.SendSMSPayload
	emails []jobs.SendEmailPayload
	err    error
}

func (d *recordingDispatcher) DispatchSMS(_ context.Context, p jobs.SendSMSPayload) error {
	if d.err != nil {
		return d.err
	}
	d.sms = append(d.sms, p)
	return nil
}

func (d *recordingDispatcher) DispatchEmail(_ context.Context, p jobs.SendEmailPayload) error {
	if d.err != nil {
		return d.err
	}
	d.emails = append(d.emails, p)
	return nil
}

type fixture struct {
	db        *gorm.DB
	clock     *testClock
	customers *repository.CustomerRepository
	otps      *repository.OTPRepository
	addresses *repository.AddressRepository
	settings  *repository.SettingRepository
	admins    *repository.AdminRepository
	jwt       *JWTService
	notify    *recordingDispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	clk := newTestClock()
	return &fixture{
		db:        db,
		clock:     clk,
		customers: repository.NewCustomerRepository(db),
		otps:      repository.NewOTPRepository(db),
		addresses: repository.NewAddressRepository(db),
		settings:  repository.NewSettingRepository(db),
		admins:    repository.NewAdminRepository(db),
		jwt: NewJWTService(JWTConfig{
			Secret:          "customer-secret",
			AdminSecret:     "admin-secret",
			AccessDuration:  15 * time.Minute,
			RefreshDuration: 24 * time.Hour,
		}, clk),
		notify: &recordingDispatcher{},
	}
}

// seedCustomer inserts an active customer with password "Rahasia123".
func (f *fixture) seedCustomer(t *testing.T, phone, email string) *model.CustomerProfile {
	t.Helper()
	hash, err := hashPassword("Rahasia123")
	require.NoError(t, err)
	c := &model.CustomerProfile{Phone: phone, Name: "Dewi Lestari", Password: hash, IsActive: true, TokenVersion: 1}
	if email != "" {
		c.Email = &email
	}
	require.NoError(t, f.customers.Create(context.Background(), c))
	return c
}

func requireKind(t *testing.T, err error, kind apperrors.Kind) {
	t.Helper()
	require.Error(t, err)
	d := apperrors.GetDomainError(err)
	require.NotNil(t, d, "expected a domain error, got %v", err)
	require.Equal(t, kind, d.Kind, "got %v", err)
}

type fakeCities struct {
	cities map[uint]client.City
	err    error
}

func (f *fakeCities) GetCity(_ context.Context, id uint) (*client.City, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.cities[id]
	if !ok {
		return nil, &client.UpstreamError{Service: client.ServiceAdmin, Status: 404, Message: "city not found"}
	}
	return &c, nil
}

func (f *fakeCities) SearchCities(_ context.Context, q string) ([]client.City, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []client.City{}
	for _, c := range f.cities {
		out = append(out, c)
	}
	return out, nil
}

var errTransport = errors.New("dial tcp: connection refused")
