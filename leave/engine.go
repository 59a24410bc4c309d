/*
engine.go - Leave lifecycle engine

PURPOSE:
  Orchestrates every operator action on leave records: creation, CL
  extension, medical-rest attachment and extension, CRK approval,
  return marking, date correction and deletion. Each operation validates
  against the Holiday Calendar and the Balance Ledger, then commits the
  record mutation and its journal entries as one atomic unit.

OPERATION FLOW:
  1. Load the record (creation: resolve the employee)
  2. Acquire the employee's lock (check-then-act must be serialized)
  3. Re-load under the lock and check preconditions
  4. Validate input and balances - failures return before any write
  5. Build the mutated record and its journal entries
  6. Store.Commit (all-or-nothing)

CONCURRENCY:
  Operations on different employees are independent. Operations on the
  same employee are serialized through a per-employee mutex so two
  concurrent extensions cannot both pass a balance check computed from a
  stale read.

ERROR BEHAVIOUR:
  All errors return synchronously; nothing is retried or swallowed. A
  failed check never partially commits.

SEE ALSO:
  - journal.go: Store contract and entry construction
  - balance.go: Footprint and replay math
  - projection.go: Read-only views
*/
package leave

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// ENGINE
// =============================================================================

type Engine struct {
	store    Store
	calendar HolidayCalendar
	dir      Directory

	locks keyedLocks
	now   func() time.Time
}

type Option func(*Engine)

// WithClock overrides the engine's clock. Tests use this to pin record
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(store Store, calendar HolidayCalendar, dir Directory, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		calendar: calendar,
		dir:      dir,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// keyedLocks serializes operations per employee.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[EmployeeID]*sync.Mutex
}

func (k *keyedLocks) lock(id EmployeeID) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[EmployeeID]*sync.Mutex)
	}
	l, ok := k.locks[id]
	if !ok {
		l = &sync.Mutex{}
		k.locks[id] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// =============================================================================
// CREATION
// =============================================================================

type CreateLeaveInput struct {
	EmployeeID      EmployeeID
	Type            LeaveType
	StartDate       Date
	EndDate         Date
	PermissionDates []Date
	Remarks         string
}

// CreateLeave validates and persists a new leave period, debiting the
// balance ledger per the record's type.
func (e *Engine) CreateLeave(ctx context.Context, in CreateLeaveInput) (*LeaveRecord, error) {
	if !in.Type.Valid() {
		return nil, &ValidationError{Field: "leaveType", Message: fmt.Sprintf("unknown leave type %q", in.Type)}
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return nil, &ValidationError{Field: "startDate", Message: "start and end dates are required"}
	}
	if in.EndDate.Before(in.StartDate) {
		return nil, &ValidationError{Field: "endDate", Message: "end date is before start date"}
	}
	if len(in.PermissionDates) > 0 && in.Type != TypeCL {
		return nil, &ValidationError{Field: "permissionDates", Message: "permissions apply to casual leave only"}
	}

	emp, err := e.dir.Employee(ctx, in.EmployeeID)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, fmt.Errorf("employee %s: %w", in.EmployeeID, ErrEmployeeNotFound)
	}

	unlock := e.locks.lock(in.EmployeeID)
	defer unlock()

	now := e.now()
	totalDays := DaysInclusive(in.StartDate, in.EndDate)

	rec := &LeaveRecord{
		ID:                newLeaveID(),
		EmployeeID:        in.EmployeeID,
		Type:              in.Type,
		StartDate:         in.StartDate,
		EndDate:           in.EndDate,
		TotalDays:         totalDays,
		Remarks:           in.Remarks,
		PermissionDates:   normalizeDates(in.PermissionDates),
		Status:            StatusOnLeave,
		OriginalStartDate: in.StartDate,
		OriginalEndDate:   in.EndDate,
		OriginalTotalDays: totalDays,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := e.validateSpan(ctx, rec, nil); err != nil {
		return nil, err
	}

	entries := debitEntries(rec, DebitFootprint(rec), "leave created", now)
	if err := e.store.Commit(ctx, Mutation{Save: rec, Journal: entries}); err != nil {
		return nil, err
	}
	return rec, nil
}

// validateSpan runs the type-specific calendar and balance validation for
// a record's current span. previous, when non-nil, is the committed state
// being replaced by a date correction: its footprint is handed back before
// the new debit is checked.
func (e *Engine) validateSpan(ctx context.Context, rec *LeaveRecord, previous *LeaveRecord) error {
	rng, err := e.calendar.RangeLookup(ctx, rec.StartDate, rec.EndDate)
	if err != nil {
		return fmt.Errorf("holiday lookup: %w", err)
	}

	switch rec.Type {
	case TypeCL:
		if err := validatePermissionDates(rec, rng); err != nil {
			return err
		}
	case TypeRL:
		var offending []Date
		for _, d := range DatesInRange(rec.StartDate, rec.EndDate) {
			if !rng.IsRestricted(d) {
				offending = append(offending, d)
			}
		}
		if len(offending) > 0 {
			return &RLDateError{Offending: offending}
		}
	}

	footprint := DebitFootprint(rec)
	needsCheck := false
	for _, c := range meteredCategories() {
		if _, ok := footprint[c]; ok {
			needsCheck = true
		}
	}
	if !needsCheck {
		return nil
	}

	bal, err := journalBalance(ctx, e.store, rec.EmployeeID, rec.StartDate.Year())
	if err != nil {
		return err
	}

	var restored map[Category]decimal.Decimal
	if previous != nil && previous.StartDate.Year() == rec.StartDate.Year() {
		restored = DebitFootprint(previous)
	}

	for _, c := range meteredCategories() {
		required, ok := footprint[c]
		if !ok {
			continue
		}
		available := bal.Remaining(c)
		if restored != nil {
			if back, ok := restored[c]; ok {
				available = available.Add(back)
			}
		}
		if required.GreaterThan(available) {
			return &InsufficientBalanceError{Category: c, Required: required, Available: available}
		}
	}
	return nil
}

func validatePermissionDates(rec *LeaveRecord, rng *HolidayRange) error {
	seen := make(map[string]bool, len(rec.PermissionDates))
	for _, d := range rec.PermissionDates {
		if seen[d.String()] {
			return &ValidationError{Field: "permissionDates", Message: fmt.Sprintf("%s listed twice", d)}
		}
		seen[d.String()] = true
		if d.Before(rec.StartDate) || d.After(rec.EndDate) {
			return &ValidationError{Field: "permissionDates", Message: fmt.Sprintf("%s is outside the leave span", d)}
		}
		if !rng.CanTakePermission(d) {
			return &ValidationError{Field: "permissionDates", Message: fmt.Sprintf("%s is neither a weekend nor a gazetted holiday", d)}
		}
	}
	return nil
}

// =============================================================================
// CL EXTENSION
// =============================================================================

// ExtendCL pushes a casual-leave record's end date forward, debiting the
// extra days. Only permitted before any medical rest is attached.
func (e *Engine) ExtendCL(ctx context.Context, id LeaveID, extendedDays int, reason string) (*LeaveRecord, error) {
	if extendedDays < 1 {
		return nil, &ValidationError{Field: "extendedDays", Message: "must be at least 1"}
	}

	return e.mutate(ctx, id, func(rec *LeaveRecord) (*Mutation, error) {
		if rec.Status != StatusOnLeave {
			return nil, &StateTransitionError{LeaveID: id, Operation: "extend", Reason: "record is no longer on leave"}
		}
		if rec.Type != TypeCL {
			return nil, &StateTransitionError{LeaveID: id, Operation: "extend", Reason: "only casual leave can be extended"}
		}
		if rec.Medical != nil {
			return nil, &StateTransitionError{LeaveID: id, Operation: "extend", Reason: "medical rest already attached"}
		}

		required := decimalFromInt(extendedDays)
		bal, err := journalBalance(ctx, e.store, rec.EmployeeID, rec.StartDate.Year())
		if err != nil {
			return nil, err
		}
		if required.GreaterThan(bal.CasualLeave.Remaining) {
			return nil, &InsufficientBalanceError{
				Category:  CategoryCasual,
				Required:  required,
				Available: bal.CasualLeave.Remaining,
			}
		}

		now := e.now()
		newEnd := rec.EndDate.AddDays(extendedDays)
		rec.Extensions = append(rec.Extensions, Extension{
			ExtendedDays: extendedDays,
			NewEndDate:   newEnd,
			Reason:       reason,
			At:           now,
		})
		rec.EndDate = newEnd
		rec.TotalDays += extendedDays
		rec.UpdatedAt = now

		entry := newEntry(rec, CategoryCasual, required, EntryDebit, "casual leave extended", now)
		return &Mutation{Save: rec, Journal: []JournalEntry{entry}}, nil
	})
}

// =============================================================================
// MEDICAL REST
// =============================================================================

// AddMedicalRest reclassifies the remainder of a CL period as pending
// medical rest. asOf is the reference day: CL through asOf stays consumed,
// the rest is provisionally restored until CRK approval finalizes it.
func (e *Engine) AddMedicalRest(ctx context.Context, id LeaveID, medicalDays int, reason string, asOf Date) (*LeaveRecord, error) {
	if medicalDays < 1 {
		return nil, &ValidationError{Field: "medicalDays", Message: "must be at least 1"}
	}
	if reason == "" {
		return nil, &ValidationError{Field: "reason", Message: "reason is required for medical rest"}
	}

	return e.mutate(ctx, id, func(rec *LeaveRecord) (*Mutation, error) {
		if rec.Status != StatusOnLeave {
			return nil, &StateTransitionError{LeaveID: id, Operation: "addMedicalRest", Reason: "record is no longer on leave"}
		}
		if rec.Type != TypeCL {
			return nil, &StateTransitionError{LeaveID: id, Operation: "addMedicalRest", Reason: "medical rest attaches to casual leave only"}
		}
		if rec.Medical != nil {
			return nil, &StateTransitionError{LeaveID: id, Operation: "addMedicalRest", Reason: "medical rest already attached"}
		}
		if asOf.Before(rec.OriginalStartDate) {
			return nil, &ValidationError{Field: "asOf", Message: "reference day is before the leave started"}
		}

		availed := DaysInclusive(rec.OriginalStartDate, asOf)
		cancelled := rec.TotalDays - availed
		if cancelled < 1 {
			return nil, &ValidationError{Field: "asOf", Message: "no casual leave days remain to convert"}
		}

		now := e.now()
		before := DebitFootprint(rec)

		restStart := asOf.AddDays(1)
		rec.Medical = &MedicalRest{
			RestStartDate:   restStart,
			RestEndDate:     restStart.AddDays(medicalDays - 1),
			RestDays:        medicalDays,
			Reason:          reason,
			CLDaysAvailed:   availed,
			CLDaysCancelled: cancelled,
			Approval:        ApprovalPending,
		}
		rec.UpdatedAt = now

		// Credit exactly what the overlay removed from the footprint: the
		// CL days of the cancelled suffix, plus any permission dates that
		// fell inside it.
		entries := creditEntries(rec, footprintDiff(before, DebitFootprint(rec)),
			"leave restored pending medical approval", now)
		return &Mutation{Save: rec, Journal: entries}, nil
	})
}

// ExtendMedical lengthens a pending medical rest. No balance effect: the
// medical portion is charged only on approval.
func (e *Engine) ExtendMedical(ctx context.Context, id LeaveID, additionalDays int, reason string) (*LeaveRecord, error) {
	if additionalDays < 1 {
		return nil, &ValidationError{Field: "additionalDays", Message: "must be at least 1"}
	}

	return e.mutate(ctx, id, func(rec *LeaveRecord) (*Mutation, error) {
		if rec.Medical == nil {
			return nil, &StateTransitionError{LeaveID: id, Operation: "extendMedical", Reason: "no medical rest attached"}
		}
		if rec.Medical.Approval != ApprovalPending {
			return nil, &StateTransitionError{LeaveID: id, Operation: "extendMedical", Reason: "medical rest already approved"}
		}

		rec.Medical.RestEndDate = rec.Medical.RestEndDate.AddDays(additionalDays)
		rec.Medical.RestDays += additionalDays
		if reason != "" {
			rec.Medical.Reason = rec.Medical.Reason + "; " + reason
		}
		rec.UpdatedAt = e.now()

		return &Mutation{Save: rec}, nil
	})
}

// ApproveMedical is the CRK step: it converts a pending medical rest into
// EL or MEDICAL leave days. One-way; there is no un-approve.
func (e *Engine) ApproveMedical(ctx context.Context, id LeaveID, convertTo LeaveType, remarks string) (*LeaveRecord, error) {
	if convertTo != TypeEL && convertTo != TypeMedical {
		return nil, &ValidationError{Field: "convertTo", Message: "must be EL or MEDICAL"}
	}

	return e.mutate(ctx, id, func(rec *LeaveRecord) (*Mutation, error) {
		if rec.Medical == nil {
			return nil, &StateTransitionError{LeaveID: id, Operation: "approveMedical", Reason: "no medical rest attached"}
		}
		if rec.Medical.Approval != ApprovalPending {
			return nil, &StateTransitionError{LeaveID: id, Operation: "approveMedical", Reason: "medical rest already approved"}
		}

		now := e.now()
		rec.Medical.Approval = ApprovalApproved
		rec.Medical.ConvertedTo = convertTo
		rec.Medical.ApprovalRemarks = remarks
		rec.UpdatedAt = now

		m := &Mutation{Save: rec}
		if convertTo == TypeEL {
			// EL is usage-only: the debit always succeeds.
			m.Journal = []JournalEntry{newEntry(rec, CategoryEarned,
				decimalFromInt(rec.Medical.RestDays), EntryDebit,
				"medical rest converted to earned leave", now)}
		}
		return m, nil
	})
}

// =============================================================================
// RETURN / EDIT / DELETE
// =============================================================================

// MarkReturned closes the record. Terminal: no further mutation and no
// balance change.
func (e *Engine) MarkReturned(ctx context.Context, id LeaveID) (*LeaveRecord, error) {
	return e.mutate(ctx, id, func(rec *LeaveRecord) (*Mutation, error) {
		if rec.Status != StatusOnLeave {
			return nil, &StateTransitionError{LeaveID: id, Operation: "markReturned", Reason: "record is no longer on leave"}
		}
		rec.Status = StatusReturned
		rec.UpdatedAt = e.now()
		return &Mutation{Save: rec}, nil
	})
}

// UpdateDates corrects the record's span: the old footprint is credited,
// the new one debited, in one commit. Disallowed once a medical rest
// exists - the overlay's availed/cancelled split is derived from the
// original span and would not survive the move.
func (e *Engine) UpdateDates(ctx context.Context, id LeaveID, start, end Date, remarks string) (*LeaveRecord, error) {
	if start.IsZero() || end.IsZero() {
		return nil, &ValidationError{Field: "startDate", Message: "start and end dates are required"}
	}
	if end.Before(start) {
		return nil, &ValidationError{Field: "endDate", Message: "end date is before start date"}
	}

	return e.mutate(ctx, id, func(rec *LeaveRecord) (*Mutation, error) {
		if rec.Status != StatusOnLeave {
			return nil, &StateTransitionError{LeaveID: id, Operation: "updateDates", Reason: "record is no longer on leave"}
		}
		if rec.Medical != nil {
			return nil, &StateTransitionError{LeaveID: id, Operation: "updateDates", Reason: "medical rest already attached"}
		}

		previous := rec.Clone()

		now := e.now()
		rec.StartDate = start
		rec.EndDate = end
		rec.TotalDays = DaysInclusive(start, end)
		if remarks != "" {
			rec.Remarks = remarks
		}
		rec.UpdatedAt = now

		if err := e.validateSpan(ctx, rec, previous); err != nil {
			return nil, err
		}

		entries := creditEntries(previous, DebitFootprint(previous), "dates corrected", now)
		entries = append(entries, debitEntries(rec, DebitFootprint(rec), "dates corrected", now)...)
		return &Mutation{Save: rec, Journal: entries}, nil
	})
}

// DeleteLeave removes the record and credits back every debit it ever
// applied. The restoration is the record's current footprint, not a
// re-derivation from history: extensions and medical attachments have
// already folded their effects into it.
func (e *Engine) DeleteLeave(ctx context.Context, id LeaveID) error {
	_, err := e.mutate(ctx, id, func(rec *LeaveRecord) (*Mutation, error) {
		if rec.Status != StatusOnLeave {
			return nil, &StateTransitionError{LeaveID: id, Operation: "delete", Reason: "record is no longer on leave"}
		}
		entries := creditEntries(rec, DebitFootprint(rec), "leave deleted", e.now())
		return &Mutation{Remove: id, Journal: entries}, nil
	})
	return err
}

// =============================================================================
// READS
// =============================================================================

// Leave returns a single record.
func (e *Engine) Leave(ctx context.Context, id LeaveID) (*LeaveRecord, error) {
	rec, err := e.store.Leave(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("leave %s: %w", id, ErrLeaveNotFound)
	}
	return rec, nil
}

// GetBalance returns the journal-maintained balance for an employee-year.
func (e *Engine) GetBalance(ctx context.Context, employeeID EmployeeID, year int) (*EmployeeBalance, error) {
	emp, err := e.dir.Employee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, fmt.Errorf("employee %s: %w", employeeID, ErrEmployeeNotFound)
	}
	return journalBalance(ctx, e.store, employeeID, year)
}

// ReplayBalance recomputes the balance from the live records. Must always
// equal GetBalance; used by reconciliation checks and tests.
func (e *Engine) ReplayBalance(ctx context.Context, employeeID EmployeeID, year int) (*EmployeeBalance, error) {
	settings, err := e.store.Settings(ctx, year)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return nil, ErrSettingsNotFound
	}
	records, err := e.store.LeavesByEmployee(ctx, employeeID, year)
	if err != nil {
		return nil, err
	}
	return ComputeBalance(employeeID, *settings, records), nil
}

// UpdateSettings upserts the annual entitlements for a year. Affects only
// computations performed after the update.
func (e *Engine) UpdateSettings(ctx context.Context, s LeaveSettings) error {
	if s.Year < 1900 || s.Year > 3000 {
		return &ValidationError{Field: "year", Message: "implausible year"}
	}
	if s.CasualLeaveAnnual < 0 || s.PermissionsAnnual < 0 || s.RestrictedLeaveAnnual < 0 {
		return &ValidationError{Field: "annual", Message: "entitlements must not be negative"}
	}
	return e.store.PutSettings(ctx, s)
}

// =============================================================================
// INTERNALS
// =============================================================================

// mutate loads a record, serializes on its employee, re-loads under the
// lock, applies fn and commits the resulting mutation.
func (e *Engine) mutate(ctx context.Context, id LeaveID, fn func(*LeaveRecord) (*Mutation, error)) (*LeaveRecord, error) {
	rec, err := e.store.Leave(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("leave %s: %w", id, ErrLeaveNotFound)
	}

	unlock := e.locks.lock(rec.EmployeeID)
	defer unlock()

	// Re-load under the lock: the record may have changed between the
	// first read and lock acquisition.
	rec, err = e.store.Leave(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("leave %s: %w", id, ErrLeaveNotFound)
	}

	work := rec.Clone()
	m, err := fn(work)
	if err != nil {
		return nil, err
	}
	if err := e.store.Commit(ctx, *m); err != nil {
		return nil, err
	}
	return work, nil
}

func newLeaveID() LeaveID { return LeaveID(uuid.NewString()) }

func decimalFromInt(n int) decimal.Decimal { return decimal.NewFromInt(int64(n)) }

// meteredCategories are the categories with an enforced ceiling. Earned
// Leave is excluded: only its usage is tracked.
func meteredCategories() []Category {
	return []Category{CategoryCasual, CategoryPermission, CategoryRestricted}
}

func normalizeDates(dates []Date) []Date {
	out := make([]Date, len(dates))
	for i, d := range dates {
		out[i] = DateOf(d.Time)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
