package pricing

import (
	"context"
	"errors"

	"romuo/internal/modules/catalog"
	"romuo/internal/modules/zone"
	"romuo/internal/types"
)

var (
	ErrUnknownClass   = catalog.ErrUnknownClass
	ErrPassengerCount = errors.New("passenger count out of range for vehicle class")
)

// HourWindow is a half-open local-hour interval [From, To).
type HourWindow struct {
	From int
	To   int
}

// Config holds the discount rules. It is passed at construction so tests can
// supply isolated fixtures instead of mutating package state.
type Config struct {
	YouthAgeLimit   int     // strictly-below cutoff
	YouthPct        float64 // percentage points
	RideSharePct    float64
	OffPeakPct      float64
	MaxDiscountPct  float64
	PeakWindows     []HourWindow
	AverageSpeedKmh float64 // duration estimate when the caller omits it
}

func DefaultConfig() Config {
	return Config{
		YouthAgeLimit:   26,
		YouthPct:        15,
		RideSharePct:    25,
		OffPeakPct:      10,
		MaxDiscountPct:  50,
		PeakWindows:     []HourWindow{{From: 7, To: 9}, {From: 17, To: 19}},
		AverageSpeedKmh: 40,
	}
}

// ZoneMatcher is the fixed-zone collaborator; nil disables zone pricing.
type ZoneMatcher interface {
	Match(ctx context.Context, pickup, dest types.Point, classID string) (*zone.Match, error)
}

// Service computes price quotes. It is pure over its inputs plus the
// reference data it was built with: no side effects, idempotent.
type Service struct {
	classes *catalog.Catalog
	zones   ZoneMatcher
	cfg     Config
}

func NewService(classes *catalog.Catalog, zones ZoneMatcher, cfg Config) *Service {
	return &Service{classes: classes, zones: zones, cfg: cfg}
}

// Quote resolves the base price (fixed zone when both endpoints match an
// active zone, hybrid tariff otherwise), applies the discount stack and
// returns the rounded breakdown.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (PriceBreakdown, error) {
	cls, err := s.classes.Get(req.VehicleClassID)
	if err != nil {
		return PriceBreakdown{}, err
	}
	if !cls.Fits(req.Passengers) {
		return PriceBreakdown{}, ErrPassengerCount
	}

	durationMin := s.estimateDuration(req)

	bd := PriceBreakdown{
		Method:      MethodHybrid,
		Currency:    "CHF",
		DistanceKm:  req.DistanceKm,
		DurationMin: durationMin,
	}

	base := cls.BaseFare + req.DistanceKm*cls.RatePerKm + durationMin*cls.RatePerMinute
	if s.zones != nil && req.Pickup != nil && req.Destination != nil {
		m, err := s.zones.Match(ctx, *req.Pickup, *req.Destination, cls.ID)
		if err != nil {
			return PriceBreakdown{}, err
		}
		if m != nil {
			base = m.Price
			bd.Method = MethodFixedZone
			bd.ZoneID = m.ZoneID
		}
	}

	pct, applied := s.discounts(req)
	bd.BasePrice = types.RoundCHF(base)
	bd.FinalPrice = types.RoundCHF(base * (1 - pct/100))
	bd.DiscountPct = pct
	bd.Applied = applied
	return bd, nil
}

func (s *Service) estimateDuration(req QuoteRequest) float64 {
	if req.DurationMin != nil {
		return *req.DurationMin
	}
	if s.cfg.AverageSpeedKmh <= 0 {
		return 0
	}
	return req.DistanceKm / s.cfg.AverageSpeedKmh * 60
}

// discounts returns the capped combined percentage and the applied tags.
// Each rule triggers independently; percentages add before the cap.
func (s *Service) discounts(req QuoteRequest) (float64, []string) {
	var pct float64
	var applied []string

	if req.RiderAge != nil && *req.RiderAge < s.cfg.YouthAgeLimit {
		pct += s.cfg.YouthPct
		applied = append(applied, DiscountYouth)
	}
	if req.RideSharing {
		pct += s.cfg.RideSharePct
		applied = append(applied, DiscountRideSharing)
	}
	if req.ScheduledAt != nil && !s.inPeak(req.ScheduledAt.Hour()) {
		pct += s.cfg.OffPeakPct
		applied = append(applied, DiscountOffPeak)
	}
	if pct > s.cfg.MaxDiscountPct {
		pct = s.cfg.MaxDiscountPct
	}
	return pct, applied
}

func (s *Service) inPeak(hour int) bool {
	for _, w := range s.cfg.PeakWindows {
		if hour >= w.From && hour < w.To {
			return true
		}
	}
	return false
}
