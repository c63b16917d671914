package model

import "time"

// ResourceType enumerates the kinds of bookable units offered by a
// coworking location.
const (
	ResourceOpenDesk    = "open-desk"
	ResourceBooth       = "booth"
	ResourceMeetingRoom = "meeting-room"
)

// Resource represents a bookable physical unit (desk, booth or meeting
// room).  Rates are stored in cents; a zero rate means the tier is not
// offered for this resource.  Resources referenced by reservations are
// never deleted, only disabled via the Available flag.
//
// Fields:
//  ID               – primary key identifier.
//  Name             – human readable name (e.g. "Booth B2").
//  Type             – one of open-desk, booth, meeting-room.
//  Capacity         – maximum participant count per reservation.
//  HourlyRateCents  – price per started hour.
//  DailyRateCents   – price per full day (0 when not offered).
//  MonthlyRateCents – price per calendar month (0 when not offered).
//  Available        – whether the resource accepts new reservations.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Resource struct {
	ID               uint64    // resources.id
	Name             string    // resources.name
	Type             string    // resources.type
	Capacity         uint32    // resources.capacity
	HourlyRateCents  int64     // resources.hourly_rate_cents
	DailyRateCents   int64     // resources.daily_rate_cents
	MonthlyRateCents int64     // resources.monthly_rate_cents
	Available        bool      // resources.available
	CreatedAt        time.Time // resources.created_at
	UpdatedAt        time.Time // resources.updated_at
}
