package availability

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shearbook/booking-api/internal/model"
	"github.com/shearbook/booking-api/internal/repository"
	"github.com/shearbook/booking-api/internal/service/schedule"
	"github.com/shearbook/booking-api/pkg/metrics"
)

var testMetrics = metrics.NewMetrics("availability_test")

type fakeScheduleRepo struct {
	weekly   *model.WeeklySchedule
	override *model.ScheduleOverride
}

func (f *fakeScheduleRepo) GetWeekly(context.Context, uuid.UUID, int) (*model.WeeklySchedule, error) {
	if f.weekly == nil {
		return nil, repository.ErrNotFound
	}
	return f.weekly, nil
}

func (f *fakeScheduleRepo) GetOverride(context.Context, uuid.UUID, string) (*model.ScheduleOverride, error) {
	if f.override == nil {
		return nil, repository.ErrNotFound
	}
	return f.override, nil
}

func (f *fakeScheduleRepo) UpsertWeekly(context.Context, *model.WeeklySchedule) error { return nil }
func (f *fakeScheduleRepo) UpsertOverride(context.Context, *model.ScheduleOverride) error {
	return nil
}
func (f *fakeScheduleRepo) ListWeekly(context.Context, uuid.UUID) ([]*model.WeeklySchedule, error) {
	return nil, nil
}

type fakeRanges struct {
	ranges []model.TimeRange
}

func (f *fakeRanges) ActiveRangesOn(context.Context, uuid.UUID, time.Time, time.Time) ([]model.TimeRange, error) {
	return f.ranges, nil
}

func newTestService(weekly *model.WeeklySchedule, ranges []model.TimeRange) *Service {
	resolver := schedule.NewResolver(&fakeScheduleRepo{weekly: weekly})
	return NewService(resolver, &fakeRanges{ranges: ranges}, time.UTC, testMetrics)
}

func slotTimes(slots []model.Slot) []string {
	times := make([]string, len(slots))
	for i, s := range slots {
		times[i] = s.Time
	}
	return times
}

func TestGetSlotsOpenDay(t *testing.T) {
	// 09:00 to 17:00, latest start 16:00, 60-minute service: 09:00 through
	// 16:00 on the half hour is 15 slots.
	svc := newTestService(&model.WeeklySchedule{
		OpenMinute: 540, CloseMinute: 1020, LatestStartMinute: 960,
	}, nil)

	slots, err := svc.GetSlots(context.Background(), uuid.New(), "2026-03-02", 60)
	require.NoError(t, err)

	require.Len(t, slots, 15)
	assert.Equal(t, "9:00 AM", slots[0].Time)
	assert.Equal(t, "4:00 PM", slots[14].Time)
	for _, s := range slots {
		assert.False(t, s.Squeeze)
	}
}

func TestGetSlotsExcludesBookedOverlaps(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	// Existing booking 10:00-11:00 removes the 09:30, 10:00 and 10:30
	// candidates for a 60-minute service.
	svc := newTestService(&model.WeeklySchedule{
		OpenMinute: 540, CloseMinute: 1020, LatestStartMinute: 960,
	}, []model.TimeRange{
		{Start: day.Add(10 * time.Hour), End: day.Add(11 * time.Hour)},
	})

	slots, err := svc.GetSlots(context.Background(), uuid.New(), "2026-03-02", 60)
	require.NoError(t, err)

	times := slotTimes(slots)
	assert.NotContains(t, times, "9:30 AM")
	assert.NotContains(t, times, "10:00 AM")
	assert.NotContains(t, times, "10:30 AM")
	// Touching endpoints do not conflict.
	assert.Contains(t, times, "9:00 AM")
	assert.Contains(t, times, "11:00 AM")
	assert.Len(t, slots, 12)
}

func TestGetSlotsClosedDay(t *testing.T) {
	svc := newTestService(&model.WeeklySchedule{
		Closed: true, OpenMinute: 540, CloseMinute: 1020, LatestStartMinute: 960,
	}, nil)

	slots, err := svc.GetSlots(context.Background(), uuid.New(), "2026-03-02", 60)
	require.NoError(t, err)
	assert.Empty(t, slots)
	assert.NotNil(t, slots)
}

func TestGetSlotsNoScheduleRule(t *testing.T) {
	svc := newTestService(nil, nil)

	slots, err := svc.GetSlots(context.Background(), uuid.New(), "2026-03-02", 60)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGetSlotsRejectsNonPositiveDuration(t *testing.T) {
	svc := newTestService(&model.WeeklySchedule{
		OpenMinute: 540, CloseMinute: 1020, LatestStartMinute: 960,
	}, nil)

	_, err := svc.GetSlots(context.Background(), uuid.New(), "2026-03-02", 0)
	assert.Error(t, err)
	_, err = svc.GetSlots(context.Background(), uuid.New(), "2026-03-02", -30)
	assert.Error(t, err)
}

func TestSlotsLongDurationSpillsPastClose(t *testing.T) {
	// The latest-start boundary is what limits candidates, not the close
	// time: a 180-minute service may still start at the latest start minute.
	window := schedule.ResolvedSchedule{
		Source: schedule.SourceWeekly, OpenMinute: 540, LatestStartMinute: 960,
	}
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	slots := Slots(window, day, 180, nil)
	require.NotEmpty(t, slots)
	assert.Equal(t, "4:00 PM", slots[len(slots)-1].Time)
}

func TestSlotsLateBookingBlocksLongService(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	window := schedule.ResolvedSchedule{
		Source: schedule.SourceWeekly, OpenMinute: 540, LatestStartMinute: 960,
	}
	// Booking at 16:30-17:30 blocks any 120-minute start from 14:31 onward.
	booked := []model.TimeRange{
		{Start: day.Add(16*time.Hour + 30*time.Minute), End: day.Add(17*time.Hour + 30*time.Minute)},
	}

	slots := Slots(window, day, 120, booked)
	times := slotTimes(slots)
	assert.Contains(t, times, "2:30 PM")
	assert.NotContains(t, times, "3:00 PM")
	assert.NotContains(t, times, "4:00 PM")
}
