package service

import (
	"context"
	"errors"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	auditdomain "github.com/smallbiznis/courierfare/internal/audit/domain"
	"github.com/smallbiznis/courierfare/internal/config"
	distancedomain "github.com/smallbiznis/courierfare/internal/distance/domain"
	"github.com/smallbiznis/courierfare/internal/geo"
	"github.com/smallbiznis/courierfare/internal/observability/metrics"
	ruledomain "github.com/smallbiznis/courierfare/internal/pricingrule/domain"
	"github.com/smallbiznis/courierfare/internal/quote/domain"
)

type service struct {
	log      *zap.Logger
	origin   geo.Location
	defaults config.DeliveryConfig
	rules    ruledomain.Service
	cache    distancedomain.Service
	audit    auditdomain.Service
	metrics  *metrics.QuoteMetrics
}

func NewService(
	logger *zap.Logger,
	cfg config.Config,
	rules ruledomain.Service,
	cache distancedomain.Service,
	audit auditdomain.Service,
	m *metrics.QuoteMetrics,
) domain.Service {
	return &service{
		log:      logger.Named("quote.service"),
		origin:   geo.Location{Lat: cfg.Delivery.OriginLat, Lng: cfg.Delivery.OriginLng},
		defaults: cfg.Delivery,
		rules:    rules,
		cache:    cache,
		audit:    audit,
		metrics:  m,
	}
}

func (s *service) Quote(ctx context.Context, orderType domain.OrderType, destination geo.Location) (domain.Quote, error) {
	if !orderType.Valid() {
		return domain.Quote{}, domain.ErrInvalidOrderType
	}

	if orderType == domain.OrderTypePickup {
		s.metrics.RecordQuote(string(orderType), false)
		return domain.Quote{OrderType: domain.OrderTypePickup}, nil
	}

	requestID := uuid.NewString()

	lookup, err := s.cache.Get(ctx, s.origin, destination)
	if err != nil {
		var perr *distancedomain.ProviderError
		if !errors.As(err, &perr) {
			return domain.Quote{}, err
		}
		return s.degraded(ctx, requestID, perr), nil
	}

	quote := domain.Quote{
		RequestID:       requestID,
		OrderType:       domain.OrderTypeDelivery,
		DistanceKm:      round2(lookup.DistanceKm()),
		Provider:        lookup.Provider,
		DurationSeconds: lookup.DurationSeconds,
		CacheHit:        lookup.CacheHit,
		FallbackUsed:    lookup.FallbackUsed,
	}

	baseFee := s.defaults.DefaultBaseFee
	perKmFee := s.defaults.DefaultPerKmFee
	surcharge := 0.0

	rule, err := s.rules.Match(ctx, lookup.DistanceKm())
	if err != nil {
		return domain.Quote{}, err
	}
	if rule != nil {
		baseFee = rule.BaseFee
		perKmFee = rule.PerKmFee
		surcharge = rule.SurchargePercent
		ruleID := rule.ID
		quote.RuleID = &ruleID
		quote.RuleName = rule.Name
	}

	quote.DeliveryFee = Fee(baseFee, perKmFee, lookup.DistanceKm(), surcharge)

	s.metrics.RecordQuote(string(orderType), false)
	s.record(ctx, quote, lookup, nil)
	return quote, nil
}

// Fee applies the surcharge to the distance-scaled fee and rounds half up
// to two decimals.
func Fee(baseFee, perKmFee, distanceKm, surchargePercent float64) float64 {
	fee := (baseFee + perKmFee*distanceKm) * (1 + surchargePercent/100)
	return round2(fee)
}

func (s *service) degraded(ctx context.Context, requestID string, perr *distancedomain.ProviderError) domain.Quote {
	s.log.Warn("distance resolution failed, serving default fee",
		zap.String("request_id", requestID),
		zap.Error(perr))

	quote := domain.Quote{
		RequestID:   requestID,
		OrderType:   domain.OrderTypeDelivery,
		DeliveryFee: round2(s.defaults.DefaultBaseFee),
		Provider:    perr.Provider,
		Degraded:    true,
	}
	s.metrics.RecordQuote(string(domain.OrderTypeDelivery), true)
	s.record(ctx, quote, distancedomain.Lookup{}, map[string]interface{}{
		"degraded": true,
		"error":    perr.Error(),
	})
	return quote
}

func (s *service) record(ctx context.Context, quote domain.Quote, lookup distancedomain.Lookup, metadata map[string]interface{}) {
	record := &auditdomain.QuoteAuditRecord{
		RequestID:    quote.RequestID,
		Provider:     quote.Provider,
		RuleID:       quote.RuleID,
		FeeApplied:   quote.DeliveryFee,
		APICalls:     lookup.APICalls,
		CacheHit:     lookup.CacheHit,
		FallbackUsed: lookup.FallbackUsed,
	}
	if lookup.DistanceMeters > 0 {
		meters := lookup.DistanceMeters
		record.DistanceMeters = &meters
		record.DurationSeconds = lookup.DurationSeconds
	}
	if metadata != nil {
		record.Metadata = datatypes.JSONMap(metadata)
	}
	s.audit.Record(ctx, record)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
