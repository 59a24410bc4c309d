/*
journal.go - Append-only balance journal and the storage contract

PURPOSE:
  The journal is the incrementally-maintained side of the Balance Ledger.
  Every operation that changes a record's debit footprint appends signed
  entries (debits positive, credits negative, in "used" terms); the
  balance for an employee/year is the configured entitlements minus the
  journal sum. Entries are never updated or deleted - corrections are new
  credit entries.

ATOMICITY:
  Store.Commit applies one Mutation - a record upsert or removal plus its
  journal entries - in a single transaction. A failed balance check never
  reaches Commit, and Commit never partially applies (all-or-nothing per
  operation).

SEE ALSO:
  - balance.go: The replay computation the journal must always agree with
  - engine.go: The only writer of journal entries
  - store/sqlite: The persistent implementation
*/
package leave

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// JOURNAL ENTRIES
// =============================================================================

type EntryKind string

const (
	EntryDebit  EntryKind = "debit"
	EntryCredit EntryKind = "credit"
)

// JournalEntry is one immutable change to an employee-year balance.
// Delta is expressed in "used" terms: positive for debits (consumption),
// negative for credits (restoration).
type JournalEntry struct {
	ID         string
	EmployeeID EmployeeID
	Year       int
	Category   Category
	Delta      decimal.Decimal
	Kind       EntryKind
	LeaveID    LeaveID
	Reason     string
	CreatedAt  time.Time
}

func newEntry(r *LeaveRecord, c Category, amount decimal.Decimal, kind EntryKind, reason string, at time.Time) JournalEntry {
	delta := amount
	if kind == EntryCredit {
		delta = amount.Neg()
	}
	return JournalEntry{
		ID:         uuid.NewString(),
		EmployeeID: r.EmployeeID,
		Year:       r.StartDate.Year(),
		Category:   c,
		Delta:      delta,
		Kind:       kind,
		LeaveID:    r.ID,
		Reason:     reason,
		CreatedAt:  at,
	}
}

// debitEntries builds one debit entry per category in the footprint.
func debitEntries(r *LeaveRecord, footprint map[Category]decimal.Decimal, reason string, at time.Time) []JournalEntry {
	var entries []JournalEntry
	for _, c := range Categories() {
		if amount, ok := footprint[c]; ok && amount.IsPositive() {
			entries = append(entries, newEntry(r, c, amount, EntryDebit, reason, at))
		}
	}
	return entries
}

// creditEntries builds one credit entry per category in the footprint.
func creditEntries(r *LeaveRecord, footprint map[Category]decimal.Decimal, reason string, at time.Time) []JournalEntry {
	var entries []JournalEntry
	for _, c := range Categories() {
		if amount, ok := footprint[c]; ok && amount.IsPositive() {
			entries = append(entries, newEntry(r, c, amount, EntryCredit, reason, at))
		}
	}
	return entries
}

// =============================================================================
// STORAGE CONTRACT
// =============================================================================

// Mutation is the atomic unit of change: at most one record write or
// removal, plus the journal entries that account for it.
type Mutation struct {
	Save    *LeaveRecord
	Remove  LeaveID
	Journal []JournalEntry
}

// Store persists leave records, settings and the journal. Implementations
// must apply Commit transactionally.
type Store interface {
	// Leave returns the record or (nil, nil) when the id is unknown.
	Leave(ctx context.Context, id LeaveID) (*LeaveRecord, error)

	// LeavesByEmployee returns all live records for an employee whose
	// start date falls in the given year.
	LeavesByEmployee(ctx context.Context, employeeID EmployeeID, year int) ([]*LeaveRecord, error)

	// Leaves returns every live record, for projections.
	Leaves(ctx context.Context) ([]*LeaveRecord, error)

	// Commit applies a mutation atomically.
	Commit(ctx context.Context, m Mutation) error

	// Settings returns the entitlements for a year or (nil, nil).
	Settings(ctx context.Context, year int) (*LeaveSettings, error)

	// PutSettings upserts the entitlements for a year. Affects only
	// computations performed after the update.
	PutSettings(ctx context.Context, s LeaveSettings) error

	// JournalTotals returns the summed journal delta per category for an
	// employee-year.
	JournalTotals(ctx context.Context, employeeID EmployeeID, year int) (map[Category]decimal.Decimal, error)

	// JournalEntries returns the full entry history for an employee-year,
	// oldest first.
	JournalEntries(ctx context.Context, employeeID EmployeeID, year int) ([]JournalEntry, error)
}

// =============================================================================
// JOURNAL BALANCE VIEW
// =============================================================================

// journalBalance assembles the incrementally-maintained balance from the
// settings and the journal sums.
func journalBalance(ctx context.Context, store Store, employeeID EmployeeID, year int) (*EmployeeBalance, error) {
	settings, err := store.Settings(ctx, year)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return nil, ErrSettingsNotFound
	}

	totals, err := store.JournalTotals(ctx, employeeID, year)
	if err != nil {
		return nil, err
	}
	used := func(c Category) decimal.Decimal {
		if v, ok := totals[c]; ok {
			return v
		}
		return decimal.Zero
	}

	return &EmployeeBalance{
		EmployeeID:      employeeID,
		Year:            year,
		CasualLeave:     newCategoryBalance(settings.CasualLeaveAnnual, used(CategoryCasual)),
		Permissions:     newCategoryBalance(settings.PermissionsAnnual, used(CategoryPermission)),
		RestrictedLeave: newCategoryBalance(settings.RestrictedLeaveAnnual, used(CategoryRestricted)),
		EarnedLeave:     EarnedLeaveUsage{Used: used(CategoryEarned)},
	}, nil
}
