/*
balance.go - Entitlement math and balance computation

PURPOSE:
  Defines the balance categories and the two ways a balance can be
  produced:

  1. Replay: ComputeBalance folds the debit footprint of every live record
     into the year's configured entitlements. Deterministic, used by tests
     and reconciliation.
  2. Journal: the incrementally-maintained view served by the engine
     (see journal.go). The two must always agree.

DEBIT FOOTPRINT:
  A record's net effect on the ledger is computable from its current
  fields alone - not from its mutation history. This is what makes delete
  and edit implementable as "credit old footprint, debit new footprint"
  without drift:

    CL record:   without a medical rest, the whole span is charged:
                 casual = totalDays - permissions, permission = count of
                 permission dates. With one, only the availed prefix is:
                 casual = clDaysAvailed - permissions in the prefix,
                 permission = permissions in the prefix (dates in the
                 cancelled suffix were cancelled along with it).
                 earned += medicalRestDays once approved as EL
    RL record:   restricted = totalDays
    EL record:   earned = totalDays
    Others:      no ledger effect (no category is metered for them)
*/
package leave

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// CATEGORIES
// =============================================================================

type Category string

const (
	CategoryCasual     Category = "casual_leave"
	CategoryPermission Category = "permission"
	CategoryRestricted Category = "restricted_leave"
	CategoryEarned     Category = "earned_leave"
)

// Categories lists every metered category in a stable order.
func Categories() []Category {
	return []Category{CategoryCasual, CategoryPermission, CategoryRestricted, CategoryEarned}
}

// =============================================================================
// BALANCES
// =============================================================================

// CategoryBalance is the remaining/used view of one category.
// Invariant: Remaining = Total - Used, Used >= 0.
type CategoryBalance struct {
	Total     decimal.Decimal
	Used      decimal.Decimal
	Remaining decimal.Decimal
}

func newCategoryBalance(total int, used decimal.Decimal) CategoryBalance {
	t := decimal.NewFromInt(int64(total))
	return CategoryBalance{Total: t, Used: used, Remaining: t.Sub(used)}
}

// EarnedLeaveUsage is usage-only: Earned Leave has no entitlement ceiling
// in this system (accrual is owned by an external HR process).
type EarnedLeaveUsage struct {
	Used decimal.Decimal
}

// EmployeeBalance is the full ledger view for one employee and year.
type EmployeeBalance struct {
	EmployeeID EmployeeID
	Year       int

	CasualLeave     CategoryBalance
	Permissions     CategoryBalance
	RestrictedLeave CategoryBalance
	EarnedLeave     EarnedLeaveUsage
}

// Remaining returns the remaining amount for a metered category. Earned
// Leave reports a zero remaining since it carries no ceiling.
func (b *EmployeeBalance) Remaining(c Category) decimal.Decimal {
	switch c {
	case CategoryCasual:
		return b.CasualLeave.Remaining
	case CategoryPermission:
		return b.Permissions.Remaining
	case CategoryRestricted:
		return b.RestrictedLeave.Remaining
	default:
		return decimal.Zero
	}
}

// Used returns the used amount for a category.
func (b *EmployeeBalance) Used(c Category) decimal.Decimal {
	switch c {
	case CategoryCasual:
		return b.CasualLeave.Used
	case CategoryPermission:
		return b.Permissions.Used
	case CategoryRestricted:
		return b.RestrictedLeave.Used
	case CategoryEarned:
		return b.EarnedLeave.Used
	default:
		return decimal.Zero
	}
}

// =============================================================================
// DEBIT FOOTPRINT
// =============================================================================

// DebitFootprint returns the record's current net debit per category, in
// days. Always non-negative per category; crediting exactly this map
// reverses every ledger effect the record has ever had.
func DebitFootprint(r *LeaveRecord) map[Category]decimal.Decimal {
	fp := make(map[Category]decimal.Decimal)

	switch r.Type {
	case TypeCL:
		perms := r.PermissionsUsed()
		clDays := r.TotalDays - perms
		if r.Medical != nil {
			// Only the availed prefix stays charged. Permission dates in
			// the cancelled suffix are cancelled with it.
			prefixPerms := 0
			for _, d := range r.PermissionDates {
				if d.Before(r.Medical.RestStartDate) {
					prefixPerms++
				}
			}
			clDays = r.Medical.CLDaysAvailed - prefixPerms
			perms = prefixPerms
		}
		if clDays > 0 {
			fp[CategoryCasual] = decimal.NewFromInt(int64(clDays))
		}
		if perms > 0 {
			fp[CategoryPermission] = decimal.NewFromInt(int64(perms))
		}
		if r.Medical != nil && r.Medical.Approval == ApprovalApproved && r.Medical.ConvertedTo == TypeEL {
			fp[CategoryEarned] = decimal.NewFromInt(int64(r.Medical.RestDays))
		}
	case TypeRL:
		fp[CategoryRestricted] = decimal.NewFromInt(int64(r.TotalDays))
	case TypeEL:
		fp[CategoryEarned] = decimal.NewFromInt(int64(r.TotalDays))
	}
	// MEDICAL, MATERNITY and CCL periods are tracked but not metered.

	return fp
}

// footprintDiff returns the per-category amount by which a exceeds b.
// Crediting the diff moves the ledger from footprint a to footprint b.
func footprintDiff(a, b map[Category]decimal.Decimal) map[Category]decimal.Decimal {
	out := make(map[Category]decimal.Decimal)
	for c, amount := range a {
		if diff := amount.Sub(b[c]); diff.IsPositive() {
			out[c] = diff
		}
	}
	return out
}

// =============================================================================
// REPLAY COMPUTATION
// =============================================================================

// ComputeBalance derives an employee's balance for a year by replaying the
// footprints of all live records. Records of other employees or years are
// the caller's responsibility to exclude.
func ComputeBalance(employeeID EmployeeID, settings LeaveSettings, records []*LeaveRecord) *EmployeeBalance {
	used := map[Category]decimal.Decimal{}
	for _, c := range Categories() {
		used[c] = decimal.Zero
	}

	for _, r := range records {
		for c, amount := range DebitFootprint(r) {
			used[c] = used[c].Add(amount)
		}
	}

	return &EmployeeBalance{
		EmployeeID:      employeeID,
		Year:            settings.Year,
		CasualLeave:     newCategoryBalance(settings.CasualLeaveAnnual, used[CategoryCasual]),
		Permissions:     newCategoryBalance(settings.PermissionsAnnual, used[CategoryPermission]),
		RestrictedLeave: newCategoryBalance(settings.RestrictedLeaveAnnual, used[CategoryRestricted]),
		EarnedLeave:     EarnedLeaveUsage{Used: used[CategoryEarned]},
	}
}
