package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nextserve/booking-core-api/internal/integrations/eligibility"
	"github.com/nextserve/booking-core-api/internal/models"
	appErrors "github.com/nextserve/booking-core-api/pkg/errors"
)

type eligibilityClient interface {
	Fetch(ctx context.Context, businessID string) eligibility.Result
}

type catalogReader interface {
	ListConfiguredServices(ctx context.Context, businessID string) ([]models.ConfiguredService, error)
	ListUnconfiguredServices(ctx context.Context, businessID string) ([]models.CatalogService, error)
	ListActiveAddons(ctx context.Context) ([]models.CatalogAddon, error)
}

type resultCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type resolutionObserver interface {
	ObserveEligibilityResolution(source models.EligibilitySource)
}

// EligibilityService resolves the service-eligibility partition for a
// business. The primary path is a managed remote function prone to
// intermittent failures; any primary failure triggers one local fallback
// reconstruction, never a retry. The result is always well-formed: when even
// the fallback queries fail it degrades to an empty set flagged unavailable
// rather than surfacing the error.
type EligibilityService struct {
	client   eligibilityClient
	catalog  catalogReader
	cache    resultCache
	metrics  resolutionObserver
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewEligibilityService builds the service. Cache and metrics may be nil.
func NewEligibilityService(client eligibilityClient, catalog catalogReader, cache resultCache, metrics resolutionObserver, cacheTTL time.Duration, logger *zap.Logger) *EligibilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EligibilityService{
		client:   client,
		catalog:  catalog,
		cache:    cache,
		metrics:  metrics,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Resolve computes the eligibility partition for a business.
func (s *EligibilityService) Resolve(ctx context.Context, businessID string) (*models.EligibilityResult, error) {
	if businessID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "business_id is required")
	}

	cacheKey := fmt.Sprintf("eligibility:%s", businessID)
	if s.cache != nil {
		var cached models.EligibilityResult
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("eligibility.cache_read_failed", zap.String("business_id", businessID), zap.Error(err))
		}
	}

	result := s.resolve(ctx, businessID)

	if s.metrics != nil {
		s.metrics.ObserveEligibilityResolution(result.Source)
	}
	if s.cache != nil && result.Source != models.SourceUnavailable {
		if err := s.cache.Set(ctx, cacheKey, result, s.cacheTTL); err != nil {
			s.logger.Warn("eligibility.cache_write_failed", zap.String("business_id", businessID), zap.Error(err))
		}
	}

	return result, nil
}

func (s *EligibilityService) resolve(ctx context.Context, businessID string) *models.EligibilityResult {
	primary := s.client.Fetch(ctx, businessID)
	if primary.OK {
		return &models.EligibilityResult{Set: primary.Set, Source: models.SourcePrimary}
	}

	s.logger.Warn("eligibility.primary_failed",
		zap.String("business_id", businessID),
		zap.String("kind", string(primary.Failure)),
		zap.Error(primary.Err))

	set, err := s.reconstruct(ctx, businessID)
	if err != nil {
		s.logger.Error("eligibility.fallback_failed", zap.String("business_id", businessID), zap.Error(err))
		empty := models.EmptyEligibleServiceSet()
		return &models.EligibilityResult{Set: empty, Source: models.SourceUnavailable}
	}

	return &models.EligibilityResult{Set: set, Source: models.SourceFallback}
}

// reconstruct rebuilds the partition from local tables. Configured means
// presence of a junction row; displayed price is the configured business price
// when present, else the catalog floor price. The add-on compatibility map is
// not reconstructable locally, so it degrades to a single general bucket.
func (s *EligibilityService) reconstruct(ctx context.Context, businessID string) (models.EligibleServiceSet, error) {
	set := models.EmptyEligibleServiceSet()

	configured, err := s.catalog.ListConfiguredServices(ctx, businessID)
	if err != nil {
		return set, fmt.Errorf("load configured services: %w", err)
	}
	for _, svc := range configured {
		price := svc.FloorPrice
		if svc.BusinessPrice != nil {
			price = *svc.BusinessPrice
		}
		entry := models.EligibleService{
			ID:         svc.ID,
			Name:       svc.Name,
			Category:   svc.Category,
			Price:      price,
			Configured: true,
		}
		if svc.DeliveryType != nil {
			entry.DeliveryType = *svc.DeliveryType
		}
		set.Configured = append(set.Configured, entry)
	}

	available, err := s.catalog.ListUnconfiguredServices(ctx, businessID)
	if err != nil {
		return set, fmt.Errorf("load unconfigured services: %w", err)
	}
	for _, svc := range available {
		set.Available = append(set.Available, models.EligibleService{
			ID:       svc.ID,
			Name:     svc.Name,
			Category: svc.Category,
			Price:    svc.FloorPrice,
		})
	}

	addons, err := s.catalog.ListActiveAddons(ctx)
	if err != nil {
		return set, fmt.Errorf("load addons: %w", err)
	}
	general := make([]models.EligibleAddon, 0, len(addons))
	for _, addon := range addons {
		entry := models.EligibleAddon{ID: addon.ID, Name: addon.Name, Price: addon.Price}
		set.Addons = append(set.Addons, entry)
		general = append(general, entry)
	}
	if len(general) > 0 {
		set.ServiceAddonMap[models.AddonBucketGeneral] = general
	}

	return set, nil
}
