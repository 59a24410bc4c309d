package leave_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surajpratapsingh112/signal-office-management-sub000/calendar"
	"github.com/surajpratapsingh112/signal-office-management-sub000/leave"
	"github.com/surajpratapsingh112/signal-office-management-sub000/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

const testEmployee = leave.EmployeeID("emp-1")

func newTestEngine(t *testing.T) (*leave.Engine, *sqlite.Store, *calendar.Memory) {
	t.Helper()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	require.NoError(t, store.SaveEmployee(ctx, leave.Employee{
		ID:   testEmployee,
		Name: "R. Sharma",
		Rank: "Havildar",
		Unit: "HQ Coy",
	}))
	require.NoError(t, store.PutSettings(ctx, leave.LeaveSettings{
		Year:                  2025,
		CasualLeaveAnnual:     30,
		PermissionsAnnual:     12,
		RestrictedLeaveAnnual: 2,
	}))

	cal := calendar.NewMemory()
	engine := leave.NewEngine(store, cal, store)
	return engine, store, cal
}

func date(y int, m time.Month, d int) leave.Date {
	return leave.NewDate(y, m, d)
}

// createCL files a casual leave 2025-01-10 (Fri) through 2025-01-14 (Tue),
// five inclusive days, the baseline record most tests mutate.
func createCL(t *testing.T, e *leave.Engine) *leave.LeaveRecord {
	t.Helper()
	rec, err := e.CreateLeave(context.Background(), leave.CreateLeaveInput{
		EmployeeID: testEmployee,
		Type:       leave.TypeCL,
		StartDate:  date(2025, time.January, 10),
		EndDate:    date(2025, time.January, 14),
		Remarks:    "family function",
	})
	require.NoError(t, err)
	return rec
}

func assertDays(t *testing.T, want int, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, got.Equal(decimal.NewFromInt(int64(want))),
		"want %d days, got %s (%v)", want, got, msgAndArgs)
}

// assertLedgerConsistent checks the invariant the whole design rests on:
// the journal-maintained balance and a full replay from live records must
// agree after every mutation.
func assertLedgerConsistent(t *testing.T, e *leave.Engine, year int) {
	t.Helper()
	ctx := context.Background()

	journal, err := e.GetBalance(ctx, testEmployee, year)
	require.NoError(t, err)
	replay, err := e.ReplayBalance(ctx, testEmployee, year)
	require.NoError(t, err)

	assert.True(t, journal.CasualLeave.Used.Equal(replay.CasualLeave.Used),
		"casual used diverged: journal %s, replay %s", journal.CasualLeave.Used, replay.CasualLeave.Used)
	assert.True(t, journal.Permissions.Used.Equal(replay.Permissions.Used),
		"permission used diverged: journal %s, replay %s", journal.Permissions.Used, replay.Permissions.Used)
	assert.True(t, journal.RestrictedLeave.Used.Equal(replay.RestrictedLeave.Used),
		"restricted used diverged: journal %s, replay %s", journal.RestrictedLeave.Used, replay.RestrictedLeave.Used)
	assert.True(t, journal.EarnedLeave.Used.Equal(replay.EarnedLeave.Used),
		"earned used diverged: journal %s, replay %s", journal.EarnedLeave.Used, replay.EarnedLeave.Used)
}

// =============================================================================
// CREATION
// =============================================================================

func TestCreateLeave_CasualLeave_DebitsBalance(t *testing.T) {
	// GIVEN: 30 CL days configured for 2025
	// WHEN: Filing a 5-day casual leave
	// THEN: 5 days are debited, 25 remain, span fields are frozen

	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	rec := createCL(t, engine)

	assert.Equal(t, 5, rec.TotalDays)
	assert.Equal(t, leave.StatusOnLeave, rec.Status)
	assert.Equal(t, rec.StartDate, rec.OriginalStartDate)
	assert.Equal(t, 5, rec.OriginalTotalDays)
	assert.Equal(t, date(2025, time.January, 15), rec.ArrivalDate())

	bal, err := engine.GetBalance(ctx, testEmployee, 2025)
	require.NoError(t, err)
	assertDays(t, 5, bal.CasualLeave.Used)
	assertDays(t, 25, bal.CasualLeave.Remaining)
	assertLedgerConsistent(t, engine, 2025)
}

func TestCreateLeave_UnknownEmployee_Rejected(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	_, err := engine.CreateLeave(context.Background(), leave.CreateLeaveInput{
		EmployeeID: "no-such",
		Type:       leave.TypeCL,
		StartDate:  date(2025, time.January, 10),
		EndDate:    date(2025, time.January, 12),
	})
	assert.ErrorIs(t, err, leave.ErrEmployeeNotFound)
}

func TestCreateLeave_EndBeforeStart_Rejected(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	_, err := engine.CreateLeave(context.Background(), leave.CreateLeaveInput{
		EmployeeID: testEmployee,
		Type:       leave.TypeCL,
		StartDate:  date(2025, time.January, 14),
		EndDate:    date(2025, time.January, 10),
	})
	assert.ErrorIs(t, err, leave.ErrValidation)
}

func TestCreateLeave_InsufficientBalance_Rejected(t *testing.T) {
	// GIVEN: 30 CL days configured
	// WHEN: Filing a 31-day casual leave
	// THEN: Rejected with the category and shortfall; nothing was debited

	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.CreateLeave(ctx, leave.CreateLeaveInput{
		EmployeeID: testEmployee,
		Type:       leave.TypeCL,
		StartDate:  date(2025, time.January, 1),
		EndDate:    date(2025, time.January, 31),
	})

	var balErr *leave.InsufficientBalanceError
	require.ErrorAs(t, err, &balErr)
	assert.Equal(t, leave.CategoryCasual, balErr.Category)
	assertDays(t, 31, balErr.Required)
	assertDays(t, 30, balErr.Available)

	bal, err := engine.GetBalance(ctx, testEmployee, 2025)
	require.NoError(t, err)
	assertDays(t, 0, bal.CasualLeave.Used)
}

func TestCreateLeave_NoSettingsForYear_Rejected(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	_, err := engine.CreateLeave(context.Background(), leave.CreateLeaveInput{
		EmployeeID: testEmployee,
		Type:       leave.TypeCL,
		StartDate:  date(2031, time.January, 10),
		EndDate:    date(2031, time.January, 12),
	})
	assert.ErrorIs(t, err, leave.ErrSettingsNotFound)
}

// =============================================================================
// PERMISSIONS
// =============================================================================

func TestCreateLeave_WeekendPermissions_SplitTheDebit(t *testing.T) {
	// GIVEN: A 5-day CL span covering Sat Jan 11 and Sun Jan 12
	// WHEN: Both weekend days are marked as Permissions
	// THEN: 3 days debit CL, 2 debit the Permission quota

	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	rec, err := engine.CreateLeave(ctx, leave.CreateLeaveInput{
		EmployeeID:      testEmployee,
		Type:            leave.TypeCL,
		StartDate:       date(2025, time.January, 10),
		EndDate:         date(2025, time.January, 14),
		PermissionDates: []leave.Date{date(2025, time.January, 11), date(2025, time.January, 12)},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, rec.PermissionsUsed())

	bal, err := engine.GetBalance(ctx, testEmployee, 2025)
	require.NoError(t, err)
	assertDays(t, 3, bal.CasualLeave.Used)
	assertDays(t, 2, bal.Permissions.Used)
	assertDays(t, 10, bal.Permissions.Remaining)
	assertLedgerConsistent(t, engine, 2025)
}

func TestCreateLeave_PermissionOnGazettedHoliday_Allowed(t *testing.T) {
	engine, _, cal := newTestEngine(t)
	cal.Add(date(2025, time.January, 13), "Lohri", calendar.KindGazetted)

	_, err := engine.CreateLeave(context.Background(), leave.CreateLeaveInput{
		EmployeeID:      testEmployee,
		Type:            leave.TypeCL,
		StartDate:       date(2025, time.January, 10),
		EndDate:         date(2025, time.January, 14),
		PermissionDates: []leave.Date{date(2025, time.January, 13)},
	})
	assert.NoError(t, err)
}

func TestCreateLeave_PermissionOnWorkingDay_Rejected(t *testing.T) {
	// Monday Jan 13 with no holiday configured is a plain working day.
	engine, _, _ := newTestEngine(t)

	_, err := engine.CreateLeave(context.Background(), leave.CreateLeaveInput{
		EmployeeID:      testEmployee,
		Type:            leave.TypeCL,
		StartDate:       date(2025, time.January, 10),
		EndDate:         date(2025, time.January, 14),
		PermissionDates: []leave.Date{date(2025, time.January, 13)},
	})
	assert.ErrorIs(t, err, leave.ErrValidation)
}

func TestCreateLeave_PermissionOutsideSpan_Rejected(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	_, err := engine.CreateLeave(context.Background(), leave.CreateLeaveInput{
		EmployeeID:      testEmployee,
		Type:            leave.TypeCL,
		StartDate:       date(2025, time.January, 10),
		EndDate:         date(2025, time.January, 14),
		PermissionDates: []leave.Date{date(2025, time.January, 18)},
	})
	assert.ErrorIs(t, err, leave.ErrValidation)
}

func TestCreateLeave_DuplicatePermissionDate_Rejected(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	_, err := engine.CreateLeave(context.Background(), leave.CreateLeaveInput{
		EmployeeID:      testEmployee,
		Type:            leave.TypeCL,
		StartDate:       date(2025, time.January, 10),
		EndDate:         date(2025, time.January, 14),
		PermissionDates: []leave.Date{date(2025, time.January, 11), date(2025, time.January, 11)},
	})
	assert.ErrorIs(t, err, leave.ErrValidation)
}

func TestCreateLeave_PermissionsOnRestrictedLeave_Rejected(t *testing.T) {
	engine, _, cal := newTestEngine(t)
	cal.Add(date(2025, time.January, 11), "Guru Gobind Singh Jayanti", calendar.KindRestricted)

	_, err := engine.CreateLeave(context.Background(), leave.CreateLeaveInput{
		EmployeeID:      testEmployee,
		Type:            leave.TypeRL,
		StartDate:       date(2025, time.January, 11),
		EndDate:         date(2025, time.January, 11),
		PermissionDates: []leave.Date{date(2025, time.January, 11)},
	})
	assert.ErrorIs(t, err, leave.ErrValidation)
}

// =============================================================================
// RESTRICTED LEAVE
// =============================================================================

func TestCreateLeave_RestrictedLeave_AllDatesRestricted(t *testing.T) {
	engine, _, cal := newTestEngine(t)
	cal.Add(date(2025, time.January, 14), "Makar Sankranti", calendar.KindRestricted)

	_, err := engine.CreateLeave(context.Background(), leave.CreateLeaveInput{
		EmployeeID: testEmployee,
		Type:       leave.TypeRL,
		StartDate:  date(2025, time.January, 14),
		EndDate:    date(2025, time.January, 14),
	})
	require.NoError(t, err)

	bal, err := engine.GetBalance(context.Background(), testEmployee, 2025)
	require.NoError(t, err)
	assertDays(t, 1, bal.RestrictedLeave.Used)
	assertDays(t, 1, bal.RestrictedLeave.Remaining)
	assertLedgerConsistent(t, engine, 2025)
}

func TestCreateLeave_RestrictedLeave_PlainDate_RejectedWithOffenders(t *testing.T) {
	// GIVEN: Only Jan 14 is a Restricted holiday
	// WHEN: Filing RL for Jan 14-15
	// THEN: Rejected, and the error names Jan 15 specifically

	engine, _, cal := newTestEngine(t)
	cal.Add(date(2025, time.January, 14), "Makar Sankranti", calendar.KindRestricted)

	_, err := engine.CreateLeave(context.Background(), leave.CreateLeaveInput{
		EmployeeID: testEmployee,
		Type:       leave.TypeRL,
		StartDate:  date(2025, time.January, 14),
		EndDate:    date(2025, time.January, 15),
	})

	var rlErr *leave.RLDateError
	require.ErrorAs(t, err, &rlErr)
	require.Len(t, rlErr.Offending, 1)
	assert.Equal(t, date(2025, time.January, 15), rlErr.Offending[0])
}

func TestCreateLeave_RestrictedLeave_GazettedDate_Rejected(t *testing.T) {
	// A Gazetted holiday does not satisfy the Restricted requirement.
	engine, _, cal := newTestEngine(t)
	cal.Add(date(2025, time.January, 26), "Republic Day", calendar.KindGazetted)

	_, err := engine.CreateLeave(context.Background(), leave.CreateLeaveInput{
		EmployeeID: testEmployee,
		Type:       leave.TypeRL,
		StartDate:  date(2025, time.January, 26),
		EndDate:    date(2025, time.January, 26),
	})
	assert.ErrorIs(t, err, leave.ErrInvalidRLDate)
}

func TestCreateLeave_RestrictedLeave_QuotaExceeded(t *testing.T) {
	// GIVEN: 2 RL days configured, both already taken
	// WHEN: Filing a third RL day
	// THEN: Rejected for insufficient restricted balance

	engine, _, cal := newTestEngine(t)
	ctx := context.Background()
	cal.Add(date(2025, time.January, 14), "Makar Sankranti", calendar.KindRestricted)
	cal.Add(date(2025, time.March, 14), "Holi Dahan", calendar.KindRestricted)
	cal.Add(date(2025, time.August, 9), "Raksha Bandhan", calendar.KindRestricted)

	for _, d := range []leave.Date{date(2025, time.January, 14), date(2025, time.March, 14)} {
		_, err := engine.CreateLeave(ctx, leave.CreateLeaveInput{
			EmployeeID: testEmployee,
			Type:       leave.TypeRL,
			StartDate:  d,
			EndDate:    d,
		})
		require.NoError(t, err)
	}

	_, err := engine.CreateLeave(ctx, leave.CreateLeaveInput{
		EmployeeID: testEmployee,
		Type:       leave.TypeRL,
		StartDate:  date(2025, time.August, 9),
		EndDate:    date(2025, time.August, 9),
	})

	var balErr *leave.InsufficientBalanceError
	require.ErrorAs(t, err, &balErr)
	assert.Equal(t, leave.CategoryRestricted, balErr.Category)
}

// =============================================================================
// UNMETERED TYPES
// =============================================================================

func TestCreateLeave_EarnedLeave_UsageOnly(t *testing.T) {
	// EL has no ceiling: a span longer than any entitlement still files.
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.CreateLeave(ctx, leave.CreateLeaveInput{
		EmployeeID: testEmployee,
		Type:       leave.TypeEL,
		StartDate:  date(2025, time.February, 1),
		EndDate:    date(2025, time.March, 31),
	})
	require.NoError(t, err)

	bal, err := engine.GetBalance(ctx, testEmployee, 2025)
	require.NoError(t, err)
	assertDays(t, 59, bal.EarnedLeave.Used)
	assertLedgerConsistent(t, engine, 2025)
}

func TestCreateLeave_MaternityLeave_NotMetered(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.CreateLeave(ctx, leave.CreateLeaveInput{
		EmployeeID: testEmployee,
		Type:       leave.TypeMaternity,
		StartDate:  date(2025, time.February, 1),
		EndDate:    date(2025, time.July, 31),
	})
	require.NoError(t, err)

	bal, err := engine.GetBalance(ctx, testEmployee, 2025)
	require.NoError(t, err)
	assertDays(t, 0, bal.CasualLeave.Used)
	assertDays(t, 0, bal.EarnedLeave.Used)
}

// =============================================================================
// CL EXTENSION
// =============================================================================

func TestExtendCL_DebitsExtraDays(t *testing.T) {
	// GIVEN: A 5-day CL ending Jan 14
	// WHEN: Extending by 2 days
	// THEN: End moves to Jan 16, 7 days are consumed, history is kept

	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	rec := createCL(t, engine)

	updated, err := engine.ExtendCL(ctx, rec.ID, 2, "transport delayed")
	require.NoError(t, err)

	assert.Equal(t, date(2025, time.January, 16), updated.EndDate)
	assert.Equal(t, 7, updated.TotalDays)
	assert.Equal(t, 5, updated.OriginalTotalDays)
	require.Len(t, updated.Extensions, 1)
	assert.Equal(t, 2, updated.Extensions[0].ExtendedDays)
	assert.Equal(t, date(2025, time.January, 16), updated.Extensions[0].NewEndDate)

	bal, err := engine.GetBalance(ctx, testEmployee, 2025)
	require.NoError(t, err)
	assertDays(t, 7, bal.CasualLeave.Used)
	assertLedgerConsistent(t, engine, 2025)
}

func TestExtendCL_InsufficientBalance_Rejected(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	rec, err := engine.CreateLeave(ctx, leave.CreateLeaveInput{
		EmployeeID: testEmployee,
		Type:       leave.TypeCL,
		StartDate:  date(2025, time.January, 1),
		EndDate:    date(2025, time.January, 28),
	})
	require.NoError(t, err)

	_, err = engine.ExtendCL(ctx, rec.ID, 3, "")
	var balErr *leave.InsufficientBalanceError
	require.ErrorAs(t, err, &balErr)
	assertDays(t, 3, balErr.Required)
	assertDays(t, 2, balErr.Available)
}

func TestExtendCL_ZeroDays_Rejected(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	rec := createCL(t, engine)

	_, err := engine.ExtendCL(context.Background(), rec.ID, 0, "")
	assert.ErrorIs(t, err, leave.ErrValidation)
}

func TestExtendCL_NonCasualRecord_Rejected(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	rec, err := engine.CreateLeave(ctx, leave.CreateLeaveInput{
		EmployeeID: testEmployee,
		Type:       leave.TypeEL,
		StartDate:  date(2025, time.February, 1),
		EndDate:    date(2025, time.February, 10),
	})
	require.NoError(t, err)

	_, err = engine.ExtendCL(ctx, rec.ID, 2, "")
	assert.ErrorIs(t, err, leave.ErrInvalidStateTransition)
}

func TestExtendCL_AfterMedicalRest_Rejected(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	rec := createCL(t, engine)

	_, err := engine.AddMedicalRest(ctx, rec.ID, 10, "fracture", date(2025, time.January, 12))
	require.NoError(t, err)

	_, err = engine.ExtendCL(ctx, rec.ID, 2, "")
	assert.ErrorIs(t, err, leave.ErrInvalidStateTransition)
}

func TestExtendCL_UnknownRecord_NotFound(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	_, err := engine.ExtendCL(context.Background(), "no-such", 1, "")
	assert.ErrorIs(t, err, leave.ErrLeaveNotFound)
}

// =============================================================================
// MEDICAL REST
// =============================================================================

func TestAddMedicalRest_SplitsAvailedAndCancelled(t *testing.T) {
	// GIVEN: A CL Jan 10-14 extended to Jan 16 (7 days total)
	// WHEN: The employee reports sick on Jan 13 with 10 days rest advised
	// THEN: 4 CL days stay availed (Jan 10-13), 3 are restored, and the
	//       rest runs Jan 14-23 pending approval

	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	rec := createCL(t, engine)
	_, err := engine.ExtendCL(ctx, rec.ID, 2, "")
	require.NoError(t, err)

	updated, err := engine.AddMedicalRest(ctx, rec.ID, 10, "dengue", date(2025, time.January, 13))
	require.NoError(t, err)

	require.NotNil(t, updated.Medical)
	assert.Equal(t, 4, updated.Medical.CLDaysAvailed)
	assert.Equal(t, 3, updated.Medical.CLDaysCancelled)
	assert.Equal(t, date(2025, time.January, 14), updated.Medical.RestStartDate)
	assert.Equal(t, date(2025, time.January, 23), updated.Medical.RestEndDate)
	assert.Equal(t, 10, updated.Medical.RestDays)
	assert.Equal(t, leave.ApprovalPending, updated.Medical.Approval)
	assert.Equal(t, date(2025, time.January, 24), updated.ArrivalDate())

	bal, err := engine.GetBalance(ctx, testEmployee, 2025)
	require.NoError(t, err)
	assertDays(t, 4, bal.CasualLeave.Used)
	assertDays(t, 0, bal.EarnedLeave.Used)
	assertLedgerConsistent(t, engine, 2025)
}

func TestAddMedicalRest_PermissionsInCancelledSuffix_AlsoRestored(t *testing.T) {
	// GIVEN: A 9-day CL (Sat Jan 11 - Sun Jan 19) with all four weekend
	//        days taken as Permissions: 5 CL days and 4 permissions debited
	// WHEN: The employee reports sick on Jan 12
	// THEN: The cancelled suffix gives back its 5 CL days AND the two
	//       permission dates inside it; the prefix keeps its 2 permissions.
	//       Nothing is credited that was never debited.

	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	rec, err := engine.CreateLeave(ctx, leave.CreateLeaveInput{
		EmployeeID: testEmployee,
		Type:       leave.TypeCL,
		StartDate:  date(2025, time.January, 11),
		EndDate:    date(2025, time.January, 19),
		PermissionDates: []leave.Date{
			date(2025, time.January, 11), date(2025, time.January, 12),
			date(2025, time.January, 18), date(2025, time.January, 19),
		},
	})
	require.NoError(t, err)

	bal, err := engine.GetBalance(ctx, testEmployee, 2025)
	require.NoError(t, err)
	assertDays(t, 5, bal.CasualLeave.Used)
	assertDays(t, 4, bal.Permissions.Used)

	updated, err := engine.AddMedicalRest(ctx, rec.ID, 10, "dengue", date(2025, time.January, 12))
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Medical.CLDaysAvailed)
	assert.Equal(t, 7, updated.Medical.CLDaysCancelled)

	bal, err = engine.GetBalance(ctx, testEmployee, 2025)
	require.NoError(t, err)
	assertDays(t, 0, bal.CasualLeave.Used)
	assertDays(t, 2, bal.Permissions.Used)

	// Remaining never exceeds the annual total in either category.
	assert.False(t, bal.CasualLeave.Remaining.GreaterThan(bal.CasualLeave.Total),
		"casual remaining %s exceeds total %s", bal.CasualLeave.Remaining, bal.CasualLeave.Total)
	assert.False(t, bal.Permissions.Remaining.GreaterThan(bal.Permissions.Total),
		"permission remaining %s exceeds total %s", bal.Permissions.Remaining, bal.Permissions.Total)
	assertLedgerConsistent(t, engine, 2025)

	// Approval and deletion still reverse cleanly on top of the split.
	_, err = engine.ApproveMedical(ctx, rec.ID, leave.TypeEL, "")
	require.NoError(t, err)
	assertLedgerConsistent(t, engine, 2025)

	require.NoError(t, engine.DeleteLeave(ctx, rec.ID))
	bal, err = engine.GetBalance(ctx, testEmployee, 2025)
	require.NoError(t, err)
	assertDays(t, 0, bal.CasualLeave.Used)
	assertDays(t, 0, bal.Permissions.Used)
	assertDays(t, 0, bal.EarnedLeave.Used)
	assertLedgerConsistent(t, engine, 2025)
}

func TestAddMedicalRest_AsOfBeforeStart_Rejected(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	rec := createCL(t, engine)

	_, err := engine.AddMedicalRest(context.Background(), rec.ID, 5, "fever", date(2025, time.January, 9))
	assert.ErrorIs(t, err, leave.ErrValidation)
}

func TestAddMedicalRest_NothingLeftToConvert_Rejected(t *testing.T) {
	// asOf on the last day leaves no CL suffix to restore.
	engine, _, _ := newTestEngine(t)
	rec := createCL(t, engine)

	_, err := engine.AddMedicalRest(context.Background(), rec.ID, 5, "fever", date(2025, time.January, 14))
	assert.ErrorIs(t, err, leave.ErrValidation)
}

func TestAddMedicalRest_MissingReason_Rejected(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	rec := createCL(t, engine)

	_, err := engine.AddMedicalRest(context.Background(), rec.ID, 5, "", date(2025, time.January, 12))
	assert.ErrorIs(t, err, leave.ErrValidation)
}

func TestAddMedicalRest_Twice_Rejected(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	rec := createCL(t, engine)

	_, err := engine.AddMedicalRest(ctx, rec.ID, 5, "fever", date(2025, time.January, 12))
	require.NoError(t, err)

	_, err = engine.AddMedicalRest(ctx, rec.ID, 5, "relapse", date(2025, time.January, 13))
	assert.ErrorIs(t, err, leave.ErrInvalidStateTransition)
}

func TestAddMedicalRest_NonCasualRecord_Rejected(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	rec, err := engine.CreateLeave(ctx, leave.CreateLeaveInput{
		EmployeeID: testEmployee,
		Type:       leave.TypeEL,
		StartDate:  date(2025, time.February, 1),
		EndDate:    date(2025, time.February, 10),
	})
	require.NoError(t, err)

	_, err = engine.AddMedicalRest(ctx, rec.ID, 5, "fever", date(2025, time.February, 5))
	assert.ErrorIs(t, err, leave.ErrInvalidStateTransition)
}

func TestExtendMedical_WhilePending_ExtendsRest(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	rec := createCL(t, engine)

	_, err := engine.AddMedicalRest(ctx, rec.ID, 10, "dengue", date(2025, time.January, 12))
	require.NoError(t, err)

	updated, err := engine.ExtendMedical(ctx, rec.ID, 5, "platelet count still low")
	require.NoError(t, err)

	assert.Equal(t, 15, updated.Medical.RestDays)
	assert.Equal(t, date(2025, time.January, 27), updated.Medical.RestEndDate)

	// No ledger effect until approval.
	bal, err := engine.GetBalance(ctx, testEmployee, 2025)
	require.NoError(t, err)
	assertDays(t, 0, bal.EarnedLeave.Used)
	assertLedgerConsistent(t, engine, 2025)
}

func TestApproveMedical_AsEarnedLeave_ChargesRestDays(t *testing.T) {
	// GIVEN: A pending 10-day medical rest
	// WHEN: CRK approves it as EL
	// THEN: 10 EL days are charged and the overlay is finalized

	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	rec := createCL(t, engine)

	_, err := engine.AddMedicalRest(ctx, rec.ID, 10, "dengue", date(2025, time.January, 12))
	require.NoError(t, err)

	updated, err := engine.ApproveMedical(ctx, rec.ID, leave.TypeEL, "medical board cleared")
	require.NoError(t, err)

	assert.Equal(t, leave.ApprovalApproved, updated.Medical.Approval)
	assert.Equal(t, leave.TypeEL, updated.Medical.ConvertedTo)
	assert.Equal(t, "medical board cleared", updated.Medical.ApprovalRemarks)

	bal, err := engine.GetBalance(ctx, testEmployee, 2025)
	require.NoError(t, err)
	assertDays(t, 3, bal.CasualLeave.Used)
	assertDays(t, 10, bal.EarnedLeave.Used)
	assertLedgerConsistent(t, engine, 2025)
}

func TestApproveMedical_AsMedicalLeave_NoLedgerEffect(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	rec := createCL(t, engine)

	_, err := engine.AddMedicalRest(ctx, rec.ID, 10, "dengue", date(2025, time.January, 12))
	require.NoError(t, err)

	updated, err := engine.ApproveMedical(ctx, rec.ID, leave.TypeMedical, "")
	require.NoError(t, err)
	assert.Equal(t, leave.TypeMedical, updated.Medical.ConvertedTo)

	bal, err := engine.GetBalance(ctx, testEmployee, 2025)
	require.NoError(t, err)
	assertDays(t, 0, bal.EarnedLeave.Used)
	assertLedgerConsistent(t, engine, 2025)
}

func TestApproveMedical_InvalidConversion_Rejected(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	rec := createCL(t, engine)

	_, err := engine.ApproveMedical(context.Background(), rec.ID, leave.TypeCL, "")
	assert.ErrorIs(t, err, leave.ErrValidation)
}

func TestApproveMedical_ThenExtendMedical_Rejected(t *testing.T) {
	// Approval is terminal for the overlay: no further extension.
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	rec := createCL(t, engine)

	_, err := engine.AddMedicalRest(ctx, rec.ID, 10, "dengue", date(2025, time.January, 12))
	require.NoError(t, err)
	_, err = engine.ApproveMedical(ctx, rec.ID, leave.TypeEL, "")
	require.NoError(t, err)

	_, err = engine.ExtendMedical(ctx, rec.ID, 5, "")
	assert.ErrorIs(t, err, leave.ErrInvalidStateTransition)

	_, err = engine.ApproveMedical(ctx, rec.ID, leave.TypeMedical, "")
	assert.ErrorIs(t, err, leave.ErrInvalidStateTransition)
}

// =============================================================================
// RETURN / EDIT / DELETE
// =============================================================================

func TestMarkReturned_Terminal(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	rec := createCL(t, engine)

	updated, err := engine.MarkReturned(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusReturned, updated.Status)

	_, err = engine.MarkReturned(ctx, rec.ID)
	assert.ErrorIs(t, err, leave.ErrInvalidStateTransition)
	_, err = engine.ExtendCL(ctx, rec.ID, 1, "")
	assert.ErrorIs(t, err, leave.ErrInvalidStateTransition)

	// Return itself never touches the ledger.
	bal, err := engine.GetBalance(ctx, testEmployee, 2025)
	require.NoError(t, err)
	assertDays(t, 5, bal.CasualLeave.Used)
	assertLedgerConsistent(t, engine, 2025)
}

func TestUpdateDates_CreditsOldDebitsNew(t *testing.T) {
	// GIVEN: A 5-day CL consuming 5 days
	// WHEN: Correcting the span to 3 days
	// THEN: The ledger nets out at 3 used

	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	rec := createCL(t, engine)

	updated, err := engine.UpdateDates(ctx, rec.ID,
		date(2025, time.January, 10), date(2025, time.January, 12), "orders amended")
	require.NoError(t, err)

	assert.Equal(t, 3, updated.TotalDays)
	assert.Equal(t, date(2025, time.January, 10), updated.OriginalStartDate)
	assert.Equal(t, 5, updated.OriginalTotalDays)

	bal, err := engine.GetBalance(ctx, testEmployee, 2025)
	require.NoError(t, err)
	assertDays(t, 3, bal.CasualLeave.Used)
	assertLedgerConsistent(t, engine, 2025)
}

func TestUpdateDates_RestoredFootprintCountsAsAvailable(t *testing.T) {
	// GIVEN: A single 28-day CL, 2 remaining of 30
	// WHEN: Correcting it to a 30-day span
	// THEN: Accepted: the 28 days being replaced come back before the check

	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	rec, err := engine.CreateLeave(ctx, leave.CreateLeaveInput{
		EmployeeID: testEmployee,
		Type:       leave.TypeCL,
		StartDate:  date(2025, time.January, 1),
		EndDate:    date(2025, time.January, 28),
	})
	require.NoError(t, err)

	_, err = engine.UpdateDates(ctx, rec.ID,
		date(2025, time.January, 1), date(2025, time.January, 30), "")
	require.NoError(t, err)

	bal, err := engine.GetBalance(ctx, testEmployee, 2025)
	require.NoError(t, err)
	assertDays(t, 30, bal.CasualLeave.Used)
	assertDays(t, 0, bal.CasualLeave.Remaining)
	assertLedgerConsistent(t, engine, 2025)
}

func TestUpdateDates_BeyondEntitlement_Rejected(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	rec := createCL(t, engine)

	_, err := engine.UpdateDates(ctx, rec.ID,
		date(2025, time.January, 1), date(2025, time.January, 31), "")

	var balErr *leave.InsufficientBalanceError
	require.ErrorAs(t, err, &balErr)

	// Failed correction leaves the original debit intact.
	bal, err := engine.GetBalance(ctx, testEmployee, 2025)
	require.NoError(t, err)
	assertDays(t, 5, bal.CasualLeave.Used)
	assertLedgerConsistent(t, engine, 2025)
}

func TestUpdateDates_AfterMedicalRest_Rejected(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	rec := createCL(t, engine)

	_, err := engine.AddMedicalRest(ctx, rec.ID, 5, "fever", date(2025, time.January, 12))
	require.NoError(t, err)

	_, err = engine.UpdateDates(ctx, rec.ID,
		date(2025, time.January, 10), date(2025, time.January, 13), "")
	assert.ErrorIs(t, err, leave.ErrInvalidStateTransition)
}

func TestDeleteLeave_RestoresFullFootprint(t *testing.T) {
	// GIVEN: A 5-day CL with 2 weekend permissions
	// WHEN: Deleting it
	// THEN: Both categories return to untouched and the record is gone

	engine, store, _ := newTestEngine(t)
	ctx := context.Background()

	rec, err := engine.CreateLeave(ctx, leave.CreateLeaveInput{
		EmployeeID:      testEmployee,
		Type:            leave.TypeCL,
		StartDate:       date(2025, time.January, 10),
		EndDate:         date(2025, time.January, 14),
		PermissionDates: []leave.Date{date(2025, time.January, 11), date(2025, time.January, 12)},
	})
	require.NoError(t, err)

	require.NoError(t, engine.DeleteLeave(ctx, rec.ID))

	gone, err := store.Leave(ctx, rec.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	bal, err := engine.GetBalance(ctx, testEmployee, 2025)
	require.NoError(t, err)
	assertDays(t, 0, bal.CasualLeave.Used)
	assertDays(t, 30, bal.CasualLeave.Remaining)
	assertDays(t, 0, bal.Permissions.Used)
	assertLedgerConsistent(t, engine, 2025)
}

func TestDeleteLeave_WithApprovedMedical_RestoresEverything(t *testing.T) {
	// The footprint folds in the medical split and the EL conversion, so a
	// single credit pass undoes the whole history.

	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	rec := createCL(t, engine)

	_, err := engine.AddMedicalRest(ctx, rec.ID, 10, "dengue", date(2025, time.January, 12))
	require.NoError(t, err)
	_, err = engine.ApproveMedical(ctx, rec.ID, leave.TypeEL, "")
	require.NoError(t, err)

	require.NoError(t, engine.DeleteLeave(ctx, rec.ID))

	bal, err := engine.GetBalance(ctx, testEmployee, 2025)
	require.NoError(t, err)
	assertDays(t, 0, bal.CasualLeave.Used)
	assertDays(t, 0, bal.EarnedLeave.Used)
	assertLedgerConsistent(t, engine, 2025)
}

func TestDeleteLeave_AfterReturn_Rejected(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	rec := createCL(t, engine)

	_, err := engine.MarkReturned(ctx, rec.ID)
	require.NoError(t, err)

	err = engine.DeleteLeave(ctx, rec.ID)
	assert.ErrorIs(t, err, leave.ErrInvalidStateTransition)
}

// =============================================================================
// SETTINGS
// =============================================================================

func TestUpdateSettings_ChangesLaterComputations(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	createCL(t, engine)

	require.NoError(t, engine.UpdateSettings(ctx, leave.LeaveSettings{
		Year:                  2025,
		CasualLeaveAnnual:     20,
		PermissionsAnnual:     12,
		RestrictedLeaveAnnual: 2,
	}))

	// Usage is untouched; only the ceiling moved.
	bal, err := engine.GetBalance(ctx, testEmployee, 2025)
	require.NoError(t, err)
	assertDays(t, 5, bal.CasualLeave.Used)
	assertDays(t, 15, bal.CasualLeave.Remaining)
	assertLedgerConsistent(t, engine, 2025)
}

func TestUpdateSettings_NegativeEntitlement_Rejected(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	err := engine.UpdateSettings(context.Background(), leave.LeaveSettings{
		Year:              2025,
		CasualLeaveAnnual: -1,
	})
	assert.ErrorIs(t, err, leave.ErrValidation)
}

func TestGetBalance_NoSettings_NotFound(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	_, err := engine.GetBalance(context.Background(), testEmployee, 2030)
	assert.ErrorIs(t, err, leave.ErrSettingsNotFound)
}

func TestGetBalance_UnknownEmployee_NotFound(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	_, err := engine.GetBalance(context.Background(), "no-such", 2025)
	assert.ErrorIs(t, err, leave.ErrEmployeeNotFound)
}

// =============================================================================
// FULL LIFECYCLE
// =============================================================================

func TestLifecycle_LedgerStaysConsistentThroughout(t *testing.T) {
	// Runs the whole CL lifecycle, checking after every step that the
	// journal view and a replay from live records agree.

	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	rec := createCL(t, engine)
	assertLedgerConsistent(t, engine, 2025)

	_, err := engine.ExtendCL(ctx, rec.ID, 2, "transport delayed")
	require.NoError(t, err)
	assertLedgerConsistent(t, engine, 2025)

	_, err = engine.AddMedicalRest(ctx, rec.ID, 10, "dengue", date(2025, time.January, 13))
	require.NoError(t, err)
	assertLedgerConsistent(t, engine, 2025)

	_, err = engine.ExtendMedical(ctx, rec.ID, 4, "follow-up advised")
	require.NoError(t, err)
	assertLedgerConsistent(t, engine, 2025)

	_, err = engine.ApproveMedical(ctx, rec.ID, leave.TypeEL, "board cleared")
	require.NoError(t, err)
	assertLedgerConsistent(t, engine, 2025)

	_, err = engine.MarkReturned(ctx, rec.ID)
	require.NoError(t, err)
	assertLedgerConsistent(t, engine, 2025)

	bal, err := engine.GetBalance(ctx, testEmployee, 2025)
	require.NoError(t, err)
	assertDays(t, 4, bal.CasualLeave.Used)
	assertDays(t, 14, bal.EarnedLeave.Used)
}
