package catalog

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

type fakeStylistRepo struct {
	stylist *model.Stylist
}

func (f *fakeStylistRepo) Create(context.Context, *model.Stylist) error { return nil }

func (f *fakeStylistRepo) Get(_ context.Context, id uuid.UUID) (*model.Stylist, error) {
	if f.stylist == nil || f.stylist.ID != id {
		return nil, repository.ErrNotFound
	}
	return f.stylist, nil
}

func (f *fakeStylistRepo) Update(context.Context, *model.Stylist) error { return nil }
func (f *fakeStylistRepo) List(context.Context) ([]*model.Stylist, error) {
	return nil, nil
}

type weeklyKey struct {
	stylist uuid.UUID
	dow     int
}

// fakeScheduleRepo mirrors the upsert contract of the postgres repository:
// the id written back to the rule is always the persisted row's id, never a
// fresh one when the row already exists.
type fakeScheduleRepo struct {
	weekly map[weeklyKey]*model.WeeklySchedule
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{weekly: make(map[weeklyKey]*model.WeeklySchedule)}
}

func (f *fakeScheduleRepo) GetWeekly(_ context.Context, stylistID uuid.UUID, dayOfWeek int) (*model.WeeklySchedule, error) {
	if rule, ok := f.weekly[weeklyKey{stylistID, dayOfWeek}]; ok {
		return rule, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeScheduleRepo) GetOverride(context.Context, uuid.UUID, string) (*model.ScheduleOverride, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeScheduleRepo) UpsertWeekly(_ context.Context, rule *model.WeeklySchedule) error {
	key := weeklyKey{rule.StylistID, rule.DayOfWeek}
	if existing, ok := f.weekly[key]; ok {
		rule.ID = existing.ID
	} else {
		rule.ID = uuid.New()
	}
	cp := *rule
	f.weekly[key] = &cp
	return nil
}

func (f *fakeScheduleRepo) UpsertOverride(_ context.Context, override *model.ScheduleOverride) error {
	override.ID = uuid.New()
	return nil
}

func (f *fakeScheduleRepo) ListWeekly(context.Context, uuid.UUID) ([]*model.WeeklySchedule, error) {
	return nil, nil
}

func TestValidateWindow(t *testing.T) {
	// Closed days skip the minute checks entirely.
	assert.NoError(t, validateWindow(true, 0, 0, 0))

	assert.NoError(t, validateWindow(false, 540, 1020, 960))
	assert.NoError(t, validateWindow(false, 540, 1020, 540))
	assert.NoError(t, validateWindow(false, 540, 1020, 1020))

	tests := []struct {
		name                string
		open, close, latest int
	}{
		{"close before open", 1020, 540, 600},
		{"close equals open", 540, 540, 540},
		{"latest before open", 540, 1020, 500},
		{"latest after close", 540, 1020, 1080},
	}
	for _, tt := range tests {
		err := validateWindow(false, tt.open, tt.close, tt.latest)
		assert.Error(t, err, tt.name)
		appErr, ok := err.(*apperrors.AppError)
		assert.True(t, ok, tt.name)
		assert.Equal(t, apperrors.ErrBadRequest, appErr.Code, tt.name)
	}
}

func TestUpsertWeeklyScheduleKeepsPersistedID(t *testing.T) {
	stylist := &model.Stylist{ID: uuid.New(), Name: "Dana", Active: true}
	svc := NewService(&fakeStylistRepo{stylist: stylist}, nil, newFakeScheduleRepo())

	req := &model.UpsertWeeklyScheduleRequest{
		DayOfWeek:         1,
		OpenMinute:        540,
		CloseMinute:       1020,
		LatestStartMinute: 960,
	}

	first, err := svc.UpsertWeeklySchedule(context.Background(), stylist.ID, req)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, first.ID)

	// A second upsert for the same day updates the existing row; the
	// returned rule carries that row's id, not a fresh one.
	req.OpenMinute = 600
	second, err := svc.UpsertWeeklySchedule(context.Background(), stylist.ID, req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 600, second.OpenMinute)
}
