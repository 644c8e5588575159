package service

import (
	"context"

	"github.com/Payphone-Digital/customer-service/internal/constants"
	"github.com/Payphone-Digital/customer-service/internal/dto"
	apperrors "github.com/Payphone-Digital/customer-service/internal/errors"
	"github.com/Payphone-Digital/customer-service/internal/repository"
	ctxutil "github.com/Payphone-Digital/customer-service/pkg/context"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
)

// UserListParams is the internal customer list query.
type UserListParams struct {
	Search      string
	IsActive    *bool
	WithDeleted bool
	Pagination  constants.PaginationParams
}

// UserListResult is one page of customers.
type UserListResult struct {
	Items     []dto.CustomerResponse
	Total     int64
	Page      int
	PageTotal int
}

// UserService manages customers on behalf of internal callers.
type UserService struct {
	customers *repository.CustomerRepository
}

func NewUserService(customers *repository.CustomerRepository) *UserService {
	return &UserService{customers: customers}
}

func (s *UserService) List(ctx context.Context, p UserListParams) (*UserListResult, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "User.List")

	logger.InfoWithContext(ctx, "Listing customers").
		String("search", p.Search).
		Bool("with_deleted", p.WithDeleted).
		Int("page", p.Pagination.Page).
		Int("limit", p.Pagination.Limit).
		Log()

	customers, total, err := s.customers.List(ctx, repository.CustomerFilter{
		Search:      p.Search,
		IsActive:    p.IsActive,
		WithDeleted: p.WithDeleted,
		Limit:       p.Pagination.Limit,
		Offset:      p.Pagination.Offset,
	})
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	items := make([]dto.CustomerResponse, 0, len(customers))
	for i := range customers {
		items = append(items, toCustomerResponse(&customers[i]))
	}
	return &UserListResult{
		Items:     items,
		Total:     total,
		Page:      p.Pagination.Page,
		PageTotal: constants.PageTotal(total, p.Pagination.Limit),
	}, nil
}

// Get also returns soft-deleted customers.
func (s *UserService) Get(ctx context.Context, id uint) (*dto.CustomerResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "User.Get")
	customer, err := s.customers.GetByIDWithDeleted(ctx, id)
	if err != nil {
		return nil, repoError(err, apperrors.ErrCustomerNotFound)
	}
	resp := toCustomerResponse(customer)
	return &resp, nil
}

// UpdateStatus toggles is_active. Deactivation revokes issued tokens.
func (s *UserService) UpdateStatus(ctx context.Context, id uint, active bool) (*dto.CustomerResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "User.UpdateStatus")

	if err := s.customers.Update(ctx, id, map[string]any{"is_active": active}); err != nil {
		return nil, repoError(err, apperrors.ErrCustomerNotFound)
	}
	if !active {
		if err := s.customers.UpdateTokenVersion(ctx, id); err != nil {
			return nil, repoError(err, apperrors.ErrCustomerNotFound)
		}
	}
	logger.InfoWithContext(ctx, "Customer status changed").Uint("customer_id", id).Bool("is_active", active).Log()
	return s.Get(ctx, id)
}

func (s *UserService) Delete(ctx context.Context, id uint) error {
	ctx = ctxutil.WithFunction(ctx, "service", "User.Delete")
	if err := s.customers.SoftDelete(ctx, id); err != nil {
		return repoError(err, apperrors.ErrCustomerNotFound)
	}
	if err := s.customers.UpdateTokenVersion(ctx, id); err != nil {
		logger.WarnWithContext(ctx, "Failed to revoke tokens of deleted customer").Uint("customer_id", id).Err(err).Log()
	}
	return nil
}

func (s *UserService) Restore(ctx context.Context, id uint) (*dto.CustomerResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "User.Restore")
	if err := s.customers.Restore(ctx, id); err != nil {
		return nil, repoError(err, apperrors.ErrCustomerNotFound)
	}
	return s.Get(ctx, id)
}
