package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Payphone-Digital/customer-service/internal/constants"
	"github.com/Payphone-Digital/customer-service/pkg/cache"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
)

type City struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Province string `json:"province"`
}

type AdminClient struct {
	up    *Upstream
	cache cache.Store
	ttl   time.Duration
}

// NewAdminClient caches city lookups in store for ttl. A nil store disables caching.
func NewAdminClient(up *Upstream, store cache.Store, ttl time.Duration) *AdminClient {
	return &AdminClient{up: up, cache: store, ttl: ttl}
}

// GetCity returns the city by id. Cache errors are logged and ignored.
func (c *AdminClient) GetCity(ctx context.Context, id uint) (*City, error) {
	key := constants.CacheKeyCity + strconv.FormatUint(uint64(id), 10)

	if c.cache != nil {
		raw, err := c.cache.Get(ctx, key)
		switch {
		case err == nil:
			var city City
			if jsonErr := json.Unmarshal(raw, &city); jsonErr == nil {
				return &city, nil
			}
		case !errors.Is(err, cache.ErrMiss):
			logger.WarnWithContext(ctx, "City cache read failed").Uint("city_id", id).Err(err).Log()
		}
	}

	var city City
	if err := c.up.Do(ctx, http.MethodGet, fmt.Sprintf("/cities/%d", id), nil, &city, nil); err != nil {
		return nil, err
	}

	if c.cache != nil {
		if raw, err := json.Marshal(city); err == nil {
			if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
				logger.WarnWithContext(ctx, "City cache write failed").Uint("city_id", id).Err(err).Log()
			}
		}
	}
	return &city, nil
}

func (c *AdminClient) SearchCities(ctx context.Context, query string) ([]City, error) {
	query = strings.TrimSpace(query)
	key := constants.CacheKeyCitySearch + strings.ToLower(query)

	if c.cache != nil {
		if raw, err := c.cache.Get(ctx, key); err == nil {
			var cities []City
			if json.Unmarshal(raw, &cities) == nil {
				return cities, nil
			}
		}
	}

	var cities []City
	path := "/cities?search=" + url.QueryEscape(query)
	if err := c.up.Do(ctx, http.MethodGet, path, nil, &cities, nil); err != nil {
		return nil, err
	}
	if cities == nil {
		cities = []City{}
	}

	if c.cache != nil {
		if raw, err := json.Marshal(cities); err == nil {
			_ = c.cache.Set(ctx, key, raw, c.ttl)
		}
	}
	return cities, nil
}

func (c *AdminClient) Health(ctx context.Context) error {
	return c.up.Health(ctx)
}
