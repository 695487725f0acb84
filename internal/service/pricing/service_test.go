package pricing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shearbook/booking-api/internal/model"
	"github.com/shearbook/booking-api/internal/repository"
	apperrors "github.com/shearbook/booking-api/pkg/errors"
)

type fakeServiceRepo struct {
	services map[uuid.UUID]*model.Service
	prices   map[uuid.UUID]*model.StylistService
}

func (f *fakeServiceRepo) Create(context.Context, *model.Service) error { return nil }

func (f *fakeServiceRepo) Get(_ context.Context, id uuid.UUID) (*model.Service, error) {
	if svc, ok := f.services[id]; ok {
		return svc, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeServiceRepo) List(context.Context) ([]*model.Service, error) { return nil, nil }

func (f *fakeServiceRepo) GetStylistServices(_ context.Context, _ uuid.UUID, serviceIDs []uuid.UUID) ([]*model.StylistService, error) {
	var rows []*model.StylistService
	for _, id := range serviceIDs {
		if row, ok := f.prices[id]; ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (f *fakeServiceRepo) UpsertStylistService(context.Context, *model.StylistService) error {
	return nil
}

func newFakeRepo() (*fakeServiceRepo, uuid.UUID, uuid.UUID) {
	primary := uuid.New()
	addon := uuid.New()
	repo := &fakeServiceRepo{
		services: map[uuid.UUID]*model.Service{
			primary: {ID: primary, Name: "Balayage"},
			addon:   {ID: addon, Name: "Gloss"},
		},
		prices: map[uuid.UUID]*model.StylistService{
			primary: {ServiceID: primary, PriceCents: 18000, DurationMinutes: 120, Active: true},
			addon:   {ServiceID: addon, PriceCents: 4500, DurationMinutes: 30, Active: true},
		},
	}
	return repo, primary, addon
}

func TestResolveQuote(t *testing.T) {
	repo, primary, addon := newFakeRepo()
	svc := NewService(repo)

	quote, err := svc.Resolve(context.Background(), uuid.New(), primary, []uuid.UUID{addon})
	require.NoError(t, err)

	assert.Equal(t, int64(22500), quote.TotalCents)
	assert.Equal(t, int64(6750), quote.DepositCents)
	assert.Equal(t, 150, quote.DurationMinutes)
	assert.Equal(t, "Balayage + Gloss", quote.ServiceSummary)
}

func TestResolvePrimaryOnlySummary(t *testing.T) {
	repo, primary, _ := newFakeRepo()
	svc := NewService(repo)

	quote, err := svc.Resolve(context.Background(), uuid.New(), primary, nil)
	require.NoError(t, err)
	assert.Equal(t, "Balayage", quote.ServiceSummary)
	assert.Equal(t, int64(18000), quote.TotalCents)
}

func TestResolveMissingPriceRow(t *testing.T) {
	repo, primary, _ := newFakeRepo()
	svc := NewService(repo)

	_, err := svc.Resolve(context.Background(), uuid.New(), primary, []uuid.UUID{uuid.New()})
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

func TestDeposit(t *testing.T) {
	tests := []struct {
		total int64
		want  int64
	}{
		{0, 0},
		{1000, 0},
		{2500, 0},  // at the threshold: no deposit
		{2501, 750}, // 750.3 rounds down
		{10000, 3000},
		{2505, 752}, // 751.5 rounds half up
		{22500, 6750},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Deposit(tt.total), "total=%d", tt.total)
	}
}
