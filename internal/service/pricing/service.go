package pricing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/shearbook/booking-api/internal/model"
	"github.com/shearbook/booking-api/internal/repository"
	apperrors "github.com/shearbook/booking-api/pkg/errors"
)

// DepositThresholdCents: totals at or below this require no deposit.
// DepositRate: otherwise the deposit is 30% of the total, rounded half up.
const (
	DepositThresholdCents int64 = 2500
	depositRateNumerator  int64 = 30
)

// Quote is the server-derived money and time for one booking. Client-supplied
// totals are never trusted; every booking re-derives its quote here.
type Quote struct {
	TotalCents      int64  `json:"total_cents"`
	DepositCents    int64  `json:"deposit_cents"`
	DurationMinutes int    `json:"duration_minutes"`
	ServiceSummary  string `json:"service_summary"`
}

type Service struct {
	services repository.ServiceRepository
	cache    *gocache.Cache
}

func NewService(services repository.ServiceRepository) *Service {
	return &Service{
		services: services,
		// Price rows are read-mostly reference data; a short TTL keeps admin
		// edits visible without hitting the store on every quote.
		cache: gocache.New(time.Minute, 5*time.Minute),
	}
}

// Resolve computes the authoritative quote for the primary service plus
// addons. A missing or inactive price row for any requested service is a
// NotFound error; prices are never silently defaulted.
func (s *Service) Resolve(ctx context.Context, stylistID, primaryServiceID uuid.UUID, addonServiceIDs []uuid.UUID) (*Quote, error) {
	allIDs := append([]uuid.UUID{primaryServiceID}, addonServiceIDs...)

	rows, err := s.stylistServices(ctx, stylistID, allIDs)
	if err != nil {
		return nil, err
	}

	priced := make(map[uuid.UUID]*model.StylistService, len(rows))
	for _, row := range rows {
		priced[row.ServiceID] = row
	}

	var totalCents int64
	var totalMinutes int
	names := make([]string, 0, len(allIDs))
	for _, id := range allIDs {
		row, ok := priced[id]
		if !ok {
			return nil, apperrors.NotFound(
				fmt.Sprintf("pricing for service %s with this stylist", id), nil)
		}
		totalCents += row.PriceCents
		totalMinutes += row.DurationMinutes

		svc, err := s.service(ctx, id)
		if err != nil {
			return nil, err
		}
		names = append(names, svc.Name)
	}

	return &Quote{
		TotalCents:      totalCents,
		DepositCents:    Deposit(totalCents),
		DurationMinutes: totalMinutes,
		ServiceSummary:  summary(names),
	}, nil
}

// Deposit applies the fixed tiering rule in integer cents: zero at or below
// the threshold, otherwise 30% rounded half up.
func Deposit(totalCents int64) int64 {
	if totalCents <= DepositThresholdCents {
		return 0
	}
	return (totalCents*depositRateNumerator + 50) / 100
}

func (s *Service) stylistServices(ctx context.Context, stylistID uuid.UUID, ids []uuid.UUID) ([]*model.StylistService, error) {
	key := cacheKey(stylistID, ids)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]*model.StylistService), nil
	}

	rows, err := s.services.GetStylistServices(ctx, stylistID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve stylist pricing: %w", err)
	}
	s.cache.SetDefault(key, rows)
	return rows, nil
}

func (s *Service) service(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	key := "service:" + id.String()
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*model.Service), nil
	}

	svc, err := s.services.Get(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NotFound(fmt.Sprintf("service %s", id), err)
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	s.cache.SetDefault(key, svc)
	return svc, nil
}

// summary renders "Primary + Addon1, Addon2" for the booking row.
func summary(names []string) string {
	if len(names) == 0 {
		return ""
	}
	if len(names) == 1 {
		return names[0]
	}
	return names[0] + " + " + strings.Join(names[1:], ", ")
}

func cacheKey(stylistID uuid.UUID, ids []uuid.UUID) string {
	var b strings.Builder
	b.WriteString("prices:")
	b.WriteString(stylistID.String())
	for _, id := range ids {
		b.WriteByte(':')
		b.WriteString(id.String())
	}
	return b.String()
}
