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

func TestUserService_ListAndStatus(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.customers)
	ctx := context.Background()

	a := f.seedCustomer(t, "081400000001", "ani@example.com")
	f.seedCustomer(t, "081400000002", "")
	f.seedCustomer(t, "081400000003", "")

	page, err := svc.List(ctx, UserListParams{Pagination: constants.PaginationParams{Page: 1, Limit: 2, Offset: 0}})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.PageTotal)

	found, err := svc.List(ctx, UserListParams{Search: "ANI@", Pagination: constants.PaginationParams{Page: 1, Limit: 10}})
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, a.ID, found.Items[0].ID)

	resp, err := svc.UpdateStatus(ctx, a.ID, false)
	require.NoError(t, err)
	assert.False(t, resp.IsActive)
	stored, err := f.customers.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.TokenVersion)

	inactive := false
	filtered, err := svc.List(ctx, UserListParams{IsActive: &inactive, Pagination: constants.PaginationParams{Page: 1, Limit: 10}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, filtered.Total)

	_, err = svc.UpdateStatus(ctx, 999, true)
	requireKind(t, err, apperrors.KindCustomerNotFound)
}

func TestUserService_DeleteRestore(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.customers)
	ctx := context.Background()
	c := f.seedCustomer(t, "081400000009", "")

	require.NoError(t, svc.Delete(ctx, c.ID))
	got, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.DeletedAt)

	live, err := svc.List(ctx, UserListParams{Pagination: constants.PaginationParams{Page: 1, Limit: 10}})
	require.NoError(t, err)
	assert.Zero(t, live.Total)
	withDeleted, err := svc.List(ctx, UserListParams{WithDeleted: true, Pagination: constants.PaginationParams{Page: 1, Limit: 10}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, withDeleted.Total)

	restored, err := svc.Restore(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, restored.DeletedAt)

	requireKind(t, svc.Delete(ctx, 404), apperrors.KindCustomerNotFound)
}

func TestAdminService(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, database.SeedAdmins(f.db))
	svc := NewAdminService(f.admins, f.jwt)
	ctx := context.Background()
	def := database.GetDefaultAdmin()

	_, err := svc.Login(ctx, &dto.AdminLoginRequest{Email: def.Email, Password: "salah"})
	requireKind(t, err, apperrors.KindInvalidCredentials)
	_, err = svc.Login(ctx, &dto.AdminLoginRequest{Email: "x@y.z", Password: def.Password})
	requireKind(t, err, apperrors.KindInvalidCredentials)

	resp, err := svc.Login(ctx, &dto.AdminLoginRequest{Email: def.Email, Password: def.Password})
	require.NoError(t, err)
	assert.Equal(t, 900, resp.ExpiresIn)
	claims, err := f.jwt.ValidateAdminToken(resp.Token)
	require.NoError(t, err)

	me, err := svc.Me(ctx, claims.AdminID)
	require.NoError(t, err)
	assert.Equal(t, def.Email, me.Email)
	assert.NotNil(t, me.LastLogin)

	require.NoError(t, svc.Logout(ctx, claims.AdminID))
	version, err := svc.TokenVersion(ctx, claims.AdminID)
	require.NoError(t, err)
	assert.Error(t, CheckVersion(claims.TokenVersion, version))
}
