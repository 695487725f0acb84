package model

import (
	"time"

	"github.com/google/uuid"
)

// WeeklySchedule is a stylist's recurring rule for one day of the week
// (0 = Sunday .. 6 = Saturday). Times are minutes since midnight in the
// salon's timezone; LatestStartMinute is the last minute a booking may
// begin, independent of CloseMinute.
type WeeklySchedule struct {
	ID                uuid.UUID `db:"id" json:"id"`
	StylistID         uuid.UUID `db:"stylist_id" json:"stylist_id"`
	DayOfWeek         int       `db:"day_of_week" json:"day_of_week"`
	Closed            bool      `db:"closed" json:"closed"`
	OpenMinute        int       `db:"open_minute" json:"open_minute"`
	CloseMinute       int       `db:"close_minute" json:"close_minute"`
	LatestStartMinute int       `db:"latest_start_minute" json:"latest_start_minute"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// ScheduleOverride replaces the weekly rule for one calendar date,
// including its closed flag. At most one override per (stylist, date).
type ScheduleOverride struct {
	ID                uuid.UUID `db:"id" json:"id"`
	StylistID         uuid.UUID `db:"stylist_id" json:"stylist_id"`
	DayDate           string    `db:"day_date" json:"day_date"` // YYYY-MM-DD
	Closed            bool      `db:"closed" json:"closed"`
	OpenMinute        int       `db:"open_minute" json:"open_minute"`
	CloseMinute       int       `db:"close_minute" json:"close_minute"`
	LatestStartMinute int       `db:"latest_start_minute" json:"latest_start_minute"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

type UpsertWeeklyScheduleRequest struct {
	DayOfWeek         int  `json:"day_of_week" binding:"min=0,max=6"`
	Closed            bool `json:"closed"`
	OpenMinute        int  `json:"open_minute" binding:"min=0,max=1439"`
	CloseMinute       int  `json:"close_minute" binding:"min=0,max=1439"`
	LatestStartMinute int  `json:"latest_start_minute" binding:"min=0,max=1439"`
}

type UpsertScheduleOverrideRequest struct {
	DayDate           string `json:"day_date" binding:"required,datetime=2006-01-02"`
	Closed            bool   `json:"closed"`
	OpenMinute        int    `json:"open_minute" binding:"min=0,max=1439"`
	CloseMinute       int    `json:"close_minute" binding:"min=0,max=1439"`
	LatestStartMinute int    `json:"latest_start_minute" binding:"min=0,max=1439"`
}
