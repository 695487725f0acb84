// Package availability computes bookable start times for a stylist on a
// given day. The computation is a pure function of the resolved schedule
// window, the day's active bookings, and the requested duration; queries are
// read-only snapshots and may be stale by the time a booking attempt is
// made, which the booking guard's conflict path handles.
package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shearbook/booking-api/internal/model"
	"github.com/shearbook/booking-api/internal/service/schedule"
	"github.com/shearbook/booking-api/pkg/metrics"
)

// SlotStrideMinutes is the fixed spacing between candidate start times.
const SlotStrideMinutes = 30

type BookingRanges interface {
	ActiveRangesOn(ctx context.Context, stylistID uuid.UUID, dayStart, dayEnd time.Time) ([]model.TimeRange, error)
}

type Service struct {
	resolver *schedule.Resolver
	bookings BookingRanges
	loc      *time.Location
	metrics  *metrics.Metrics
}

func NewService(resolver *schedule.Resolver, bookings BookingRanges, loc *time.Location, m *metrics.Metrics) *Service {
	return &Service{resolver: resolver, bookings: bookings, loc: loc, metrics: m}
}

// GetSlots returns the ordered bookable start times for the stylist on
// dayDate (YYYY-MM-DD) for a service of the given duration. Closed days and
// days without any schedule rule both return an empty list.
func (s *Service) GetSlots(ctx context.Context, stylistID uuid.UUID, dayDate string, durationMinutes int) ([]model.Slot, error) {
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %d", durationMinutes)
	}
	defer func(start time.Time) {
		s.metrics.AvailabilityLatency.Observe(time.Since(start).Seconds())
	}(time.Now())

	window, err := s.resolver.Resolve(ctx, stylistID, dayDate)
	if err != nil {
		return nil, err
	}
	if !window.Bookable() {
		return []model.Slot{}, nil
	}

	dayStart, err := time.ParseInLocation("2006-01-02", dayDate, s.loc)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", dayDate, err)
	}
	dayEnd := dayStart.Add(24 * time.Hour)

	booked, err := s.bookings.ActiveRangesOn(ctx, stylistID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	return Slots(window, dayStart, durationMinutes, booked), nil
}

// Slots enumerates candidate starts every SlotStrideMinutes from the
// window's open minute through its latest-start minute inclusive, keeping
// each candidate s iff no booked range [bStart, bEnd) overlaps [s, s+d)
// under the half-open test bStart < slotEnd && bEnd > slotStart. Touching
// endpoints do not conflict. Deterministic and side-effect free.
func Slots(window schedule.ResolvedSchedule, dayStart time.Time, durationMinutes int, booked []model.TimeRange) []model.Slot {
	slots := []model.Slot{}
	if !window.Bookable() {
		return slots
	}

	duration := time.Duration(durationMinutes) * time.Minute
	for m := window.OpenMinute; m <= window.LatestStartMinute; m += SlotStrideMinutes {
		slotStart := dayStart.Add(time.Duration(m) * time.Minute)
		slotEnd := slotStart.Add(duration)

		if overlapsAny(slotStart, slotEnd, booked) {
			continue
		}
		slots = append(slots, model.Slot{
			Time:    slotStart.Format("3:04 PM"),
			Squeeze: false,
		})
	}
	return slots
}

func overlapsAny(start, end time.Time, booked []model.TimeRange) bool {
	for _, b := range booked {
		if b.Start.Before(end) && b.End.After(start) {
			return true
		}
	}
	return false
}
