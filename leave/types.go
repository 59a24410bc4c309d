/*
Package leave implements the leave lifecycle and balance engine.

PURPOSE:
  This package contains the domain model and orchestration logic for an
  office leave-accounting subsystem: per-employee annual entitlements
  (Casual Leave, Permissions, Restricted Leave, Earned Leave usage), the
  leave-record state machine (creation, extension, medical-rest overlay,
  CRK approval, return, edit, deletion) and the balance journal that keeps
  the numbers consistent under every mutation.

KEY CONCEPTS IN THIS FILE (types.go):
  - LeaveType/Status: The record's classification and lifecycle state
  - LeaveRecord: The central entity, with a frozen original span and an
    append-only extension history
  - MedicalRest: The optional overlay that reclassifies the suffix of a
    CL record as pending medical rest
  - LeaveSettings: Per-year annual entitlements

DESIGN PRINCIPLES:
  1. Immutability of history: originals and extensions are never rewritten
  2. Precision: decimal.Decimal for all balance arithmetic
  3. Determinism: a record's net ledger effect is computable from its
     current fields alone (see balance.go DebitFootprint)

SEE ALSO:
  - engine.go: Lifecycle operations
  - balance.go: Entitlement math and replay computation
  - journal.go: Append-only balance journal
*/
package leave

import (
	"context"
	"time"
)

// =============================================================================
// ENUMS
// =============================================================================

type LeaveType string

const (
	TypeCL        LeaveType = "CL"
	TypeRL        LeaveType = "RL"
	TypeEL        LeaveType = "EL"
	TypeMedical   LeaveType = "MEDICAL"
	TypeMaternity LeaveType = "MATERNITY"
	TypeCCL       LeaveType = "CCL"
)

func (t LeaveType) Valid() bool {
	switch t {
	case TypeCL, TypeRL, TypeEL, TypeMedical, TypeMaternity, TypeCCL:
		return true
	}
	return false
}

type Status string

const (
	StatusOnLeave  Status = "ON_LEAVE"
	StatusReturned Status = "RETURNED"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type LeaveID string
type EmployeeID string

// =============================================================================
// LEAVE RECORD - The central entity
// =============================================================================

// LeaveRecord is one period of leave for one employee. The current span
// (StartDate..EndDate) moves as the record is extended or corrected; the
// Original* fields preserve what was sanctioned at creation and are never
// mutated afterwards.
type LeaveRecord struct {
	ID         LeaveID
	EmployeeID EmployeeID

	Type      LeaveType
	StartDate Date
	EndDate   Date
	TotalDays int
	Remarks   string

	// CL only: dates within the span consumed as Permissions instead of
	// CL days. Each must fall on a weekend or a Gazetted holiday.
	PermissionDates []Date

	Status Status

	// Frozen at creation.
	OriginalStartDate Date
	OriginalEndDate   Date
	OriginalTotalDays int

	// Append-only CL extension history.
	Extensions []Extension

	// Present only once a medical rest has been attached.
	Medical *MedicalRest

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PermissionsUsed returns how many Permission units this record consumes.
func (r *LeaveRecord) PermissionsUsed() int { return len(r.PermissionDates) }

// ArrivalDate is the first day the employee is expected back: the day
// after the period ends, or after the medical rest ends once one exists.
func (r *LeaveRecord) ArrivalDate() Date {
	if r.Medical != nil {
		return r.Medical.RestEndDate.AddDays(1)
	}
	return r.EndDate.AddDays(1)
}

// EffectiveEndDate is the last day the employee is away.
func (r *LeaveRecord) EffectiveEndDate() Date {
	if r.Medical != nil {
		return r.Medical.RestEndDate
	}
	return r.EndDate
}

// Clone returns a deep copy. The engine mutates copies and only commits
// them once every validation has passed.
func (r *LeaveRecord) Clone() *LeaveRecord {
	cp := *r
	cp.PermissionDates = append([]Date(nil), r.PermissionDates...)
	cp.Extensions = append([]Extension(nil), r.Extensions...)
	if r.Medical != nil {
		m := *r.Medical
		cp.Medical = &m
	}
	return &cp
}

// Extension records one CL-extension event. Immutable once appended.
type Extension struct {
	ExtendedDays int
	NewEndDate   Date
	Reason       string
	At           time.Time
}

// MedicalRest is the overlay attached when an employee on CL falls ill
// partway through: the availed prefix stays consumed as CL, the suffix is
// provisionally restored and re-charged only on CRK approval.
type MedicalRest struct {
	RestStartDate   Date
	RestEndDate     Date
	RestDays        int
	Reason          string
	CLDaysAvailed   int
	CLDaysCancelled int
	Approval        ApprovalStatus

	// Set on approval: which category the rest was converted into.
	ConvertedTo     LeaveType
	ApprovalRemarks string
}

// =============================================================================
// SETTINGS - Per-year annual entitlements
// =============================================================================

// LeaveSettings configures the annual entitlements for one calendar year.
// Earned Leave has no entitlement here: only its usage is tracked, the
// accrual side lives in an external HR system.
type LeaveSettings struct {
	Year                  int
	CasualLeaveAnnual     int
	PermissionsAnnual     int
	RestrictedLeaveAnnual int
}

// =============================================================================
// EXTERNAL COLLABORATORS (read-only)
// =============================================================================

// Employee is directory data used for display enrichment only. It is never
// a validation input.
type Employee struct {
	ID   EmployeeID
	Name string
	Rank string
	Unit string
}

// Directory is the externally-owned employee roster.
type Directory interface {
	Employee(ctx context.Context, id EmployeeID) (*Employee, error)
	Employees(ctx context.Context) ([]*Employee, error)
}

// HolidayRange is the calendar's answer for a date range: which dates are
// Gazetted and which are Restricted holidays.
type HolidayRange struct {
	gazetted   map[string]bool
	restricted map[string]bool
}

func NewHolidayRange(gazetted, restricted []Date) *HolidayRange {
	hr := &HolidayRange{
		gazetted:   make(map[string]bool, len(gazetted)),
		restricted: make(map[string]bool, len(restricted)),
	}
	for _, d := range gazetted {
		hr.gazetted[d.String()] = true
	}
	for _, d := range restricted {
		hr.restricted[d.String()] = true
	}
	return hr
}

func (hr *HolidayRange) IsGazetted(d Date) bool   { return hr.gazetted[d.String()] }
func (hr *HolidayRange) IsRestricted(d Date) bool { return hr.restricted[d.String()] }

// CanTakePermission reports whether a Permission may substitute for a CL
// day on this date: weekends and Gazetted holidays only.
func (hr *HolidayRange) CanTakePermission(d Date) bool {
	return d.IsWeekend() || hr.IsGazetted(d)
}

// HolidayCalendar supplies holiday data for validation. Read-only and
// side-effect-free.
type HolidayCalendar interface {
	RangeLookup(ctx context.Context, from, to Date) (*HolidayRange, error)
}
