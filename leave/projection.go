/*
projection.go - Read-only views over the leave record store

PURPOSE:
  The reporting surface consumed by the presentation layer. Projections
  never mutate state; they fold the live records and enrich them with
  employee identity from the directory (display only - the directory is
  never a validation input).
*/
package leave

import (
	"context"
	"sort"
)

// =============================================================================
// PROJECTION ROWS
// =============================================================================

// LeaveView is a record enriched with employee identity for display.
type LeaveView struct {
	Record   *LeaveRecord
	Employee *Employee
}

// Projections serves the read-only reporting surface.
type Projections struct {
	store Store
	dir   Directory
}

func NewProjections(store Store, dir Directory) *Projections {
	return &Projections{store: store, dir: dir}
}

// =============================================================================
// VIEWS
// =============================================================================

// CurrentlyOnLeave lists employees away on asOf: records still ON_LEAVE
// whose span (including any medical rest) covers the day.
func (p *Projections) CurrentlyOnLeave(ctx context.Context, asOf Date) ([]LeaveView, error) {
	records, err := p.store.Leaves(ctx)
	if err != nil {
		return nil, err
	}

	var out []LeaveView
	for _, r := range records {
		if r.Status != StatusOnLeave {
			continue
		}
		if asOf.Before(r.StartDate) || asOf.After(r.EffectiveEndDate()) {
			continue
		}
		view, err := p.enrich(ctx, r)
		if err != nil {
			return nil, err
		}
		out = append(out, view)
	}
	sortViews(out)
	return out, nil
}

// Arrivals lists records whose arrival date falls in [from, to]: who is
// expected back, and when.
func (p *Projections) Arrivals(ctx context.Context, from, to Date) ([]LeaveView, error) {
	if to.Before(from) {
		return nil, &ValidationError{Field: "window", Message: "window end is before window start"}
	}
	records, err := p.store.Leaves(ctx)
	if err != nil {
		return nil, err
	}

	var out []LeaveView
	for _, r := range records {
		if r.Status != StatusOnLeave {
			continue
		}
		arrival := r.ArrivalDate()
		if arrival.Before(from) || arrival.After(to) {
			continue
		}
		view, err := p.enrich(ctx, r)
		if err != nil {
			return nil, err
		}
		out = append(out, view)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Record.ArrivalDate().Before(out[j].Record.ArrivalDate())
	})
	return out, nil
}

// PendingMedicalApprovals lists records whose medical rest still awaits
// the CRK decision.
func (p *Projections) PendingMedicalApprovals(ctx context.Context) ([]LeaveView, error) {
	records, err := p.store.Leaves(ctx)
	if err != nil {
		return nil, err
	}

	var out []LeaveView
	for _, r := range records {
		if r.Medical == nil || r.Medical.Approval != ApprovalPending {
			continue
		}
		view, err := p.enrich(ctx, r)
		if err != nil {
			return nil, err
		}
		out = append(out, view)
	}
	sortViews(out)
	return out, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (p *Projections) enrich(ctx context.Context, r *LeaveRecord) (LeaveView, error) {
	emp, err := p.dir.Employee(ctx, r.EmployeeID)
	if err != nil {
		return LeaveView{}, err
	}
	return LeaveView{Record: r, Employee: emp}, nil
}

func sortViews(views []LeaveView) {
	sort.Slice(views, func(i, j int) bool {
		a, b := views[i].Record, views[j].Record
		if !a.StartDate.Equal(b.StartDate) {
			return a.StartDate.Before(b.StartDate)
		}
		return a.ID < b.ID
	})
}
