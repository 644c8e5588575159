package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Payphone-Digital/customer-service/internal/model"
	"github.com/Payphone-Digital/customer-service/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }

func createCustomer(t *testing.T, repo *CustomerRepository, phone string, email *string) *model.CustomerProfile {
	t.Helper()
	c := &model.CustomerProfile{Phone: phone, Email: email, Name: "Budi " + phone, IsActive: true, TokenVersion: 1}
	require.NoError(t, repo.Create(context.Background(), c))
	return c
}

func TestSettingRepository_UpsertAndPattern(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingRepository(testutil.NewDB(t))

	require.NoError(t, repo.UpsertMany(ctx, map[string]string{
		"sso_process":   "0",
		"sso_timespan":  "60",
		"contact_email": "cs@example.com",
		"ssoX":          "literal",
	}))
	require.NoError(t, repo.Upsert(ctx, "sso_process", "1"))

	s, err := repo.GetByName(ctx, "sso_process")
	require.NoError(t, err)
	assert.Equal(t, "1", s.Value)

	matched, err := repo.FindByPattern(ctx, "sso_")
	require.NoError(t, err)
	names := make([]string, 0, len(matched))
	for _, m := range matched {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"sso_process", "sso_timespan"}, names)

	values, err := repo.GetValues(ctx, []string{"sso_timespan", "missing"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"sso_timespan": "60"}, values)

	_, err = repo.GetByName(ctx, "missing")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestAddressRepository_ActivateExclusive(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := NewAddressRepository(db)
	customers := NewCustomerRepository(db)
	createCustomer(t, customers, "081200000001", nil)
	createCustomer(t, customers, "081200000002", nil)

	addr := func(customerID uint) *model.Address {
		a := &model.Address{CustomerID: customerID, Name: "Rumah", Address: "Jl. Merdeka 1", CityID: 10}
		require.NoError(t, repo.CreateForCustomer(ctx, a))
		return a
	}
	a1 := addr(1)
	a2 := addr(1)
	a3 := addr(1)
	other := addr(2)
	require.True(t, a1.IsActive)
	require.True(t, other.IsActive)

	require.NoError(t, repo.ActivateExclusive(ctx, 1, a3.ID))

	list, err := repo.ListByCustomer(ctx, 1)
	require.NoError(t, err)
	active := 0
	for _, a := range list {
		if a.IsActive {
			active++
			assert.Equal(t, a3.ID, a.ID)
		}
	}
	assert.Equal(t, 1, active)
	assert.NotEqual(t, a1.ID, a2.ID)

	o, err := repo.GetByID(ctx, 2, other.ID)
	require.NoError(t, err)
	assert.True(t, o.IsActive)

	err = repo.ActivateExclusive(ctx, 1, other.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	got, err := repo.GetByID(ctx, 1, a3.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive, "failed activation must roll back")
}

func TestAddressRepository_ScopedToCustomer(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := NewAddressRepository(db)
	createCustomer(t, NewCustomerRepository(db), "081200000001", nil)
	createCustomer(t, NewCustomerRepository(db), "081200000002", nil)
	a := &model.Address{CustomerID: 1, Name: "Kantor", Address: "Jl. Sudirman", CityID: 3}
	require.NoError(t, repo.CreateForCustomer(ctx, a))

	_, err := repo.GetByID(ctx, 2, a.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.Update(ctx, 2, a.ID, map[string]any{"name": "x"}), gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, 2, a.ID), gorm.ErrRecordNotFound)
	require.NoError(t, repo.Delete(ctx, 1, a.ID))

	list, err := repo.ListByCustomer(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAddressRepository_CreateForCustomer(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := NewAddressRepository(db)
	owner := createCustomer(t, NewCustomerRepository(db), "081200000001", nil)

	first := &model.Address{CustomerID: owner.ID, Name: "Rumah", Address: "Jl. Merdeka 1", CityID: 10}
	require.NoError(t, repo.CreateForCustomer(ctx, first))
	assert.True(t, first.IsActive)

	second := &model.Address{CustomerID: owner.ID, Name: "Kantor", Address: "Jl. Sudirman", CityID: 10, IsActive: true}
	require.NoError(t, repo.CreateForCustomer(ctx, second))
	assert.False(t, second.IsActive)

	orphan := &model.Address{CustomerID: 404, Name: "Rumah", Address: "Jl. Merdeka 1", CityID: 10}
	assert.ErrorIs(t, repo.CreateForCustomer(ctx, orphan), gorm.ErrRecordNotFound)
}

func TestCustomerRepository_ListFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewCustomerRepository(testutil.NewDB(t))

	a := createCustomer(t, repo, "081200000001", strPtr("andi@example.com"))
	b := createCustomer(t, repo, "081200000002", nil)
	c := createCustomer(t, repo, "081200000003", strPtr("citra@example.com"))
	require.NoError(t, repo.Update(ctx, b.ID, map[string]any{"is_active": false}))
	require.NoError(t, repo.SoftDelete(ctx, c.ID))

	all, total, err := repo.List(ctx, CustomerFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)

	_, total, err = repo.List(ctx, CustomerFilter{WithDeleted: true})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	inactive := false
	list, _, err := repo.List(ctx, CustomerFilter{IsActive: &inactive})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)

	list, _, err = repo.List(ctx, CustomerFilter{Search: "ANDI"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)

	list, total, err = repo.List(ctx, CustomerFilter{WithDeleted: true, Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)
}

func TestCustomerRepository_UniquenessAndRestore(t *testing.T) {
	ctx := context.Background()
	repo := NewCustomerRepository(testutil.NewDB(t))
	a := createCustomer(t, repo, "081211110000", strPtr("Sari@Example.com"))

	taken, err := repo.EmailTaken(ctx, "sari@example.com", 0)
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = repo.EmailTaken(ctx, "sari@example.com", a.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	require.NoError(t, repo.SoftDelete(ctx, a.ID))
	_, err = repo.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	taken, err = repo.PhoneTaken(ctx, a.Phone, 0)
	require.NoError(t, err)
	assert.True(t, taken)

	got, err := repo.GetByIDWithDeleted(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.DeletedAt.Valid)

	require.NoError(t, repo.Restore(ctx, a.ID))
	_, err = repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Restore(ctx, a.ID), gorm.ErrRecordNotFound)
}

func TestCustomerRepository_TokenVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewCustomerRepository(testutil.NewDB(t))
	a := createCustomer(t, repo, "081222220000", nil)

	require.NoError(t, repo.UpdateTokenVersion(ctx, a.ID))
	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TokenVersion)
	assert.ErrorIs(t, repo.UpdateTokenVersion(ctx, 999), gorm.ErrRecordNotFound)
}

func TestCustomerRepository_SyncQueries(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := NewCustomerRepository(db)

	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	watermark := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	insert := func(phone string, ts time.Time, ssoID *string) *model.CustomerProfile {
		c := &model.CustomerProfile{Phone: phone, Name: phone, IsActive: true, TokenVersion: 1, SSOID: ssoID, CreatedAt: ts, UpdatedAt: ts}
		require.NoError(t, db.Create(c).Error)
		return c
	}
	insert("0811", old, strPtr("s-1"))
	unlinkedOld := insert("0812", old, nil)
	linkedRecent := insert("0813", recent, strPtr("s-3"))
	deleted := insert("0814", old, strPtr("s-4"))
	require.NoError(t, db.Model(&model.CustomerProfile{}).Where("id = ?", deleted.ID).
		UpdateColumn("deleted_at", recent).Error)

	total, err := repo.CountForSync(ctx, watermark)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	page, err := repo.FindForSync(ctx, watermark, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, unlinkedOld.ID, page[0].ID)
	assert.Equal(t, linkedRecent.ID, page[1].ID)

	page, err = repo.FindForSync(ctx, watermark, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, deleted.ID, page[0].ID)
	assert.True(t, page[0].DeletedAt.Valid)

	// The watermark is accepted in any zone.
	total, err = repo.CountForSync(ctx, watermark.In(time.FixedZone("WIB", 7*3600)))
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	require.NoError(t, repo.SetSSOID(ctx, unlinkedOld.ID, "s-2"))
	got, err := repo.GetByID(ctx, unlinkedOld.ID)
	require.NoError(t, err)
	assert.Equal(t, "s-2", got.SSOIDValue())
	assert.True(t, got.UpdatedAt.Equal(old), "linking must not touch updated_at")
}

func TestCustomerRepository_Summary(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := NewCustomerRepository(db)

	now := time.Now().UTC()
	a := createCustomer(t, repo, "0821", strPtr("a@example.com"))
	b := createCustomer(t, repo, "0822", nil)
	c := createCustomer(t, repo, "0823", nil)
	require.NoError(t, repo.Update(ctx, a.ID, map[string]any{"email_verified_at": now, "phone_verified_at": now}))
	require.NoError(t, repo.Update(ctx, b.ID, map[string]any{"is_active": false}))
	require.NoError(t, repo.SetSSOID(ctx, a.ID, "sso-a"))
	require.NoError(t, repo.SoftDelete(ctx, c.ID))

	s, err := repo.Summary(ctx, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, CustomerSummary{Total: 2, Active: 1, Inactive: 1, Deleted: 1, EmailVerified: 1, PhoneVerified: 1, SSOLinked: 1}, *s)

	times, err := repo.CreatedTimes(ctx, nil, nil)
	require.NoError(t, err)
	assert.Len(t, times, 2)
}

func TestOTPRepository_LatestAndAttempts(t *testing.T) {
	ctx := context.Background()
	repo := NewOTPRepository(testutil.NewDB(t))
	exp := time.Now().Add(5 * time.Minute)

	require.NoError(t, repo.Create(ctx, &model.OTP{Phone: "0812", Code: "1111", ExpiresAt: exp}))
	second := &model.OTP{Phone: "0812", Code: "2222", ExpiresAt: exp}
	require.NoError(t, repo.Create(ctx, second))

	latest, err := repo.GetLatestByPhone(ctx, "0812")
	require.NoError(t, err)
	assert.Equal(t, "2222", latest.Code)

	require.NoError(t, repo.IncrementAttempts(ctx, second.ID))
	latest, err = repo.GetLatestByPhone(ctx, "0812")
	require.NoError(t, err)
	assert.Equal(t, 1, latest.Attempts)

	require.NoError(t, repo.DeleteByPhone(ctx, "0812"))
	_, err = repo.GetLatestByPhone(ctx, "0812")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
