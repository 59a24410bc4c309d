/*
Package calendar provides the holiday calendar consumed by the leave engine.

PURPOSE:
  Supplies, for any date range, which dates are Gazetted or Restricted
  holidays. The engine uses this to flag Permission-eligible days (weekend
  or Gazetted) and to validate Restricted Leave alignment. Read-only and
  side-effect-free: the calendar imposes no ordering constraint beyond
  being consulted before validation.

IMPLEMENTATIONS:
  Calendar: backed by a HolidayStore (the sqlite store in production)
  Memory:   fixture calendar for tests
*/
package calendar

import (
	"context"

	"github.com/surajpratapsingh112/signal-office-management-sub000/leave"
)

// =============================================================================
// HOLIDAY MODEL
// =============================================================================

type Kind string

const (
	KindGazetted   Kind = "gazetted"
	KindRestricted Kind = "restricted"
)

type Holiday struct {
	ID   string
	Date leave.Date
	Name string
	Kind Kind
}

// HolidayStore is the persistence the calendar reads from.
type HolidayStore interface {
	HolidaysInRange(ctx context.Context, from, to leave.Date) ([]Holiday, error)
	HolidaysByYear(ctx context.Context, year int) ([]Holiday, error)
}

// =============================================================================
// STORE-BACKED CALENDAR
// =============================================================================

// Calendar implements leave.HolidayCalendar over a HolidayStore.
type Calendar struct {
	store HolidayStore
}

func New(store HolidayStore) *Calendar {
	return &Calendar{store: store}
}

func (c *Calendar) RangeLookup(ctx context.Context, from, to leave.Date) (*leave.HolidayRange, error) {
	holidays, err := c.store.HolidaysInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return buildRange(holidays), nil
}

// Holidays lists a year's holidays for the presentation layer.
func (c *Calendar) Holidays(ctx context.Context, year int) ([]Holiday, error) {
	return c.store.HolidaysByYear(ctx, year)
}

// =============================================================================
// MEMORY CALENDAR - Test fixture
// =============================================================================

// Memory is an in-memory calendar for tests and seeding.
type Memory struct {
	holidays []Holiday
}

func NewMemory(holidays ...Holiday) *Memory {
	return &Memory{holidays: holidays}
}

func (m *Memory) Add(date leave.Date, name string, kind Kind) {
	m.holidays = append(m.holidays, Holiday{Date: date, Name: name, Kind: kind})
}

func (m *Memory) RangeLookup(_ context.Context, from, to leave.Date) (*leave.HolidayRange, error) {
	var inRange []Holiday
	for _, h := range m.holidays {
		if h.Date.AfterOrEqual(from) && h.Date.BeforeOrEqual(to) {
			inRange = append(inRange, h)
		}
	}
	return buildRange(inRange), nil
}

// =============================================================================
// HELPERS
// =============================================================================

func buildRange(holidays []Holiday) *leave.HolidayRange {
	var gazetted, restricted []leave.Date
	for _, h := range holidays {
		switch h.Kind {
		case KindGazetted:
			gazetted = append(gazetted, h.Date)
		case KindRestricted:
			restricted = append(restricted, h.Date)
		}
	}
	return leave.NewHolidayRange(gazetted, restricted)
}
