package schedule

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shearbook/booking-api/internal/model"
	"github.com/shearbook/booking-api/internal/repository"
)

type fakeScheduleRepo struct {
	weekly    map[int]*model.WeeklySchedule
	overrides map[string]*model.ScheduleOverride
}

func (f *fakeScheduleRepo) GetWeekly(_ context.Context, _ uuid.UUID, dayOfWeek int) (*model.WeeklySchedule, error) {
	if rule, ok := f.weekly[dayOfWeek]; ok {
		return rule, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeScheduleRepo) GetOverride(_ context.Context, _ uuid.UUID, dayDate string) (*model.ScheduleOverride, error) {
	if o, ok := f.overrides[dayDate]; ok {
		return o, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeScheduleRepo) UpsertWeekly(context.Context, *model.WeeklySchedule) error { return nil }
func (f *fakeScheduleRepo) UpsertOverride(context.Context, *model.ScheduleOverride) error {
	return nil
}
func (f *fakeScheduleRepo) ListWeekly(context.Context, uuid.UUID) ([]*model.WeeklySchedule, error) {
	return nil, nil
}

func TestResolveWeeklyFallback(t *testing.T) {
	repo := &fakeScheduleRepo{
		// 2026-03-02 is a Monday
		weekly: map[int]*model.WeeklySchedule{
			1: {DayOfWeek: 1, OpenMinute: 540, CloseMinute: 1020, LatestStartMinute: 960},
		},
		overrides: map[string]*model.ScheduleOverride{},
	}
	resolver := NewResolver(repo)

	window, err := resolver.Resolve(context.Background(), uuid.New(), "2026-03-02")
	require.NoError(t, err)

	assert.Equal(t, SourceWeekly, window.Source)
	assert.False(t, window.Closed)
	assert.Equal(t, 540, window.OpenMinute)
	assert.Equal(t, 960, window.LatestStartMinute)
	assert.True(t, window.Bookable())
}

func TestResolveOverrideShadowsWeekly(t *testing.T) {
	repo := &fakeScheduleRepo{
		weekly: map[int]*model.WeeklySchedule{
			1: {DayOfWeek: 1, OpenMinute: 540, CloseMinute: 1020, LatestStartMinute: 960},
		},
		overrides: map[string]*model.ScheduleOverride{
			"2026-03-02": {DayDate: "2026-03-02", OpenMinute: 600, CloseMinute: 900, LatestStartMinute: 840},
		},
	}
	resolver := NewResolver(repo)

	window, err := resolver.Resolve(context.Background(), uuid.New(), "2026-03-02")
	require.NoError(t, err)

	assert.Equal(t, SourceOverride, window.Source)
	assert.Equal(t, 600, window.OpenMinute)
	assert.Equal(t, 840, window.LatestStartMinute)
}

func TestResolveClosedOverrideShadowsOpenWeekly(t *testing.T) {
	repo := &fakeScheduleRepo{
		weekly: map[int]*model.WeeklySchedule{
			1: {DayOfWeek: 1, OpenMinute: 540, CloseMinute: 1020, LatestStartMinute: 960},
		},
		overrides: map[string]*model.ScheduleOverride{
			"2026-03-02": {DayDate: "2026-03-02", Closed: true},
		},
	}
	resolver := NewResolver(repo)

	window, err := resolver.Resolve(context.Background(), uuid.New(), "2026-03-02")
	require.NoError(t, err)

	assert.Equal(t, SourceOverride, window.Source)
	assert.True(t, window.Closed)
	assert.False(t, window.Bookable())
}

func TestResolveNoRuleAtAll(t *testing.T) {
	repo := &fakeScheduleRepo{
		weekly:    map[int]*model.WeeklySchedule{},
		overrides: map[string]*model.ScheduleOverride{},
	}
	resolver := NewResolver(repo)

	window, err := resolver.Resolve(context.Background(), uuid.New(), "2026-03-02")
	require.NoError(t, err)

	assert.Equal(t, SourceNone, window.Source)
	assert.True(t, window.Closed)
	assert.False(t, window.Bookable())
}

func TestDayOfWeekUTC(t *testing.T) {
	tests := []struct {
		date string
		want int
	}{
		{"2026-03-01", 0}, // Sunday
		{"2026-03-02", 1}, // Monday
		{"2026-03-07", 6}, // Saturday
	}
	for _, tt := range tests {
		got, err := DayOfWeekUTC(tt.date)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.date)
	}

	_, err := DayOfWeekUTC("03/02/2026")
	assert.Error(t, err)
}
