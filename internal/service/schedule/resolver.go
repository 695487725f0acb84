package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shearbook/booking-api/internal/repository"
)

// Source records which schedule tier produced the resolved window.
type Source string

const (
	SourceNone     Source = "none"
	SourceWeekly   Source = "weekly"
	SourceOverride Source = "override"
)

// ResolvedSchedule is the effective working window for one stylist and one
// calendar date. A Source of SourceNone means no rule exists at all; it
// yields zero slots just like an explicit closed day, but stays
// distinguishable for diagnostics.
type ResolvedSchedule struct {
	Source            Source
	Closed            bool
	OpenMinute        int
	LatestStartMinute int
}

// Bookable reports whether any slots can exist in this window.
func (s ResolvedSchedule) Bookable() bool {
	return s.Source != SourceNone && !s.Closed
}

type Resolver struct {
	repo repository.ScheduleRepository
}

func NewResolver(repo repository.ScheduleRepository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve looks up the date override first and uses it exclusively when
// present, including its closed flag. Otherwise it falls back to the weekly
// rule keyed by the date's UTC day-of-week, so the weekday never shifts with
// the server's local timezone.
func (r *Resolver) Resolve(ctx context.Context, stylistID uuid.UUID, dayDate string) (ResolvedSchedule, error) {
	override, err := r.repo.GetOverride(ctx, stylistID, dayDate)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return ResolvedSchedule{}, fmt.Errorf("failed to resolve override: %w", err)
	}
	if override != nil {
		return ResolvedSchedule{
			Source:            SourceOverride,
			Closed:            override.Closed,
			OpenMinute:        override.OpenMinute,
			LatestStartMinute: override.LatestStartMinute,
		}, nil
	}

	dow, err := DayOfWeekUTC(dayDate)
	if err != nil {
		return ResolvedSchedule{}, err
	}

	weekly, err := r.repo.GetWeekly(ctx, stylistID, dow)
	if errors.Is(err, repository.ErrNotFound) {
		return ResolvedSchedule{Source: SourceNone, Closed: true}, nil
	}
	if err != nil {
		return ResolvedSchedule{}, fmt.Errorf("failed to resolve weekly schedule: %w", err)
	}

	return ResolvedSchedule{
		Source:            SourceWeekly,
		Closed:            weekly.Closed,
		OpenMinute:        weekly.OpenMinute,
		LatestStartMinute: weekly.LatestStartMinute,
	}, nil
}

// DayOfWeekUTC returns 0 (Sunday) through 6 (Saturday) for a YYYY-MM-DD
// date, computed in UTC.
func DayOfWeekUTC(dayDate string) (int, error) {
	t, err := time.ParseInLocation("2006-01-02", dayDate, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", dayDate, err)
	}
	return int(t.Weekday()), nil
}
