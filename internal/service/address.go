package service

import (
	"context"
	"errors"

	"github.com/Payphone-Digital/customer-service/internal/client"
	"github.com/Payphone-Digital/customer-service/internal/dto"
	apperrors "github.com/Payphone-Digital/customer-service/internal/errors"
	"github.com/Payphone-Digital/customer-service/internal/model"
	"github.com/Payphone-Digital/customer-service/internal/repository"
	ctxutil "github.com/Payphone-Digital/customer-service/pkg/context"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
)

// CityLookup resolves cities in the admin service.
type CityLookup interface {
	GetCity(ctx context.Context, id uint) (*client.City, error)
	SearchCities(ctx context.Context, query string) ([]client.City, error)
}

type AddressService struct {
	addresses *repository.AddressRepository
	cities    CityLookup
}

func NewAddressService(addresses *repository.AddressRepository, cities CityLookup) *AddressService {
	return &AddressService{addresses: addresses, cities: cities}
}

// List enriches each address with its city. Lookup failures leave city null.
func (s *AddressService) List(ctx context.Context, customerID uint) ([]dto.AddressResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Address.List")

	addresses, err := s.addresses.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	resp := make([]dto.AddressResponse, 0, len(addresses))
	for i := range addresses {
		resp = append(resp, toAddressResponse(&addresses[i], s.cityOrNil(ctx, addresses[i].CityID)))
	}
	return resp, nil
}

func (s *AddressService) Get(ctx context.Context, customerID, id uint) (*dto.AddressResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Address.Get")

	address, err := s.addresses.GetByID(ctx, customerID, id)
	if err != nil {
		return nil, repoError(err, apperrors.ErrAddressNotFound)
	}
	resp := toAddressResponse(address, s.cityOrNil(ctx, address.CityID))
	return &resp, nil
}

// Create stores a new address. The first address of a customer is active.
func (s *AddressService) Create(ctx context.Context, customerID uint, req *dto.CreateAddressRequest) (*dto.AddressResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Address.Create")

	city, err := s.requireCity(ctx, req.CityID)
	if err != nil {
		return nil, err
	}

	address := &model.Address{
		CustomerID:    customerID,
		Name:          req.Name,
		ReceiverName:  req.ReceiverName,
		ReceiverPhone: req.ReceiverPhone,
		Address:       req.Address,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		PostalCode:    req.PostalCode,
		CityID:        req.CityID,
	}
	if err := s.addresses.CreateForCustomer(ctx, address); err != nil {
		return nil, repoError(err, apperrors.ErrCustomerNotFound)
	}

	resp := toAddressResponse(address, city)
	return &resp, nil
}

func (s *AddressService) Update(ctx context.Context, customerID, id uint, req *dto.UpdateAddressRequest) (*dto.AddressResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Address.Update")

	current, err := s.addresses.GetByID(ctx, customerID, id)
	if err != nil {
		return nil, repoError(err, apperrors.ErrAddressNotFound)
	}

	updates := map[string]any{}
	if req.CityID != nil && *req.CityID != current.CityID {
		if _, err := s.requireCity(ctx, *req.CityID); err != nil {
			return nil, err
		}
		updates["city_id"] = *req.CityID
	}
	setIfPresent(updates, "name", req.Name)
	setIfPresent(updates, "receiver_name", req.ReceiverName)
	setIfPresent(updates, "receiver_phone", req.ReceiverPhone)
	setIfPresent(updates, "address", req.Address)
	setIfPresent(updates, "postal_code", req.PostalCode)
	setIfPresent(updates, "latitude", req.Latitude)
	setIfPresent(updates, "longitude", req.Longitude)

	if err := s.addresses.Update(ctx, customerID, id, updates); err != nil {
		return nil, repoError(err, apperrors.ErrAddressNotFound)
	}
	return s.Get(ctx, customerID, id)
}

func (s *AddressService) Delete(ctx context.Context, customerID, id uint) error {
	ctx = ctxutil.WithFunction(ctx, "service", "Address.Delete")
	if err := s.addresses.Delete(ctx, customerID, id); err != nil {
		return repoError(err, apperrors.ErrAddressNotFound)
	}
	return nil
}

// Activate makes id the only active address of the customer.
func (s *AddressService) Activate(ctx context.Context, customerID, id uint) (*dto.AddressResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Address.Activate")
	if err := s.addresses.ActivateExclusive(ctx, customerID, id); err != nil {
		return nil, repoError(err, apperrors.ErrAddressNotFound)
	}
	return s.Get(ctx, customerID, id)
}

// SearchCities proxies the admin service city search.
func (s *AddressService) SearchCities(ctx context.Context, query string) ([]dto.CityResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Address.SearchCities")

	cities, err := s.cities.SearchCities(ctx, query)
	if err != nil {
		return nil, client.ToDomain(err)
	}
	resp := make([]dto.CityResponse, 0, len(cities))
	for _, c := range cities {
		resp = append(resp, dto.CityResponse{ID: c.ID, Name: c.Name, Province: c.Province})
	}
	return resp, nil
}

// requireCity fails with 400 for any lookup failure.
func (s *AddressService) requireCity(ctx context.Context, id uint) (*dto.CityResponse, error) {
	city, err := s.cities.GetCity(ctx, id)
	if err != nil {
		logger.WarnWithContext(ctx, "City validation failed").Uint("city_id", id).Err(err).Log()
		var ue *client.UpstreamError
		if errors.As(err, &ue) {
			if d := apperrors.GetDomainError(client.ToDomain(err)); d != nil {
				return nil, d.WithField("city_id", id)
			}
		}
		return nil, apperrors.Wrap(apperrors.KindCityInvalid, err).WithField("city_id", id)
	}
	return &dto.CityResponse{ID: city.ID, Name: city.Name, Province: city.Province}, nil
}

func (s *AddressService) cityOrNil(ctx context.Context, id uint) *dto.CityResponse {
	city, err := s.cities.GetCity(ctx, id)
	if err != nil {
		logger.DebugWithContext(ctx, "City enrichment skipped").Uint("city_id", id).Err(err).Log()
		return nil
	}
	return &dto.CityResponse{ID: city.ID, Name: city.Name, Province: city.Province}
}

func setIfPresent[T any](updates map[string]any, column string, value *T) {
	if value != nil {
		updates[column] = *value
	}
}
