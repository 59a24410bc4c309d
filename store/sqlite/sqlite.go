/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements leave.Store, leave.Directory and calendar.HolidayStore on a
  single database. In production the same patterns apply to PostgreSQL -
  only minor SQL dialect differences.

APPEND-ONLY ENFORCEMENT:
  The leave_journal table is append-only: no UPDATE or DELETE statements
  exist for it. Balance corrections are new credit entries. Deleting a
  leave removes the record and its extensions; the journal keeps the full
  debit/credit history so sums stay exact.

KEY TABLES:
  employees:        Directory data (read-only collaborator)
  leave_settings:   Per-year annual entitlements
  leave_records:    Current state of every leave period
  leave_extensions: Append-only CL extension history
  leave_journal:    Immutable balance journal
  holidays:         Gazetted / Restricted holiday calendar

CONCURRENCY:
  Opened in WAL mode. A sync.RWMutex serializes writers; the engine
  additionally serializes per employee, so Commit never interleaves
  mutations for one employee-year.

USAGE:
  store, err := sqlite.New("./data/office.db")   // ":memory:" for tests
  defer store.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/surajpratapsingh112/signal-office-management-sub000/calendar"
	"github.com/surajpratapsingh112/signal-office-management-sub000/leave"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		rank TEXT,
		unit TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS leave_settings (
		year INTEGER PRIMARY KEY,
		casual_leave_annual INTEGER NOT NULL,
		permissions_annual INTEGER NOT NULL,
		restricted_leave_annual INTEGER NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS leave_records (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		total_days INTEGER NOT NULL,
		remarks TEXT,
		permission_dates TEXT NOT NULL DEFAULT '[]',
		status TEXT NOT NULL,
		original_start_date TEXT NOT NULL,
		original_end_date TEXT NOT NULL,
		original_total_days INTEGER NOT NULL,
		medical_rest_start TEXT,
		medical_rest_end TEXT,
		medical_rest_days INTEGER,
		medical_reason TEXT,
		cl_days_availed INTEGER,
		cl_days_cancelled INTEGER,
		medical_approval TEXT,
		medical_converted_to TEXT,
		medical_approval_remarks TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_leave_records_employee
		ON leave_records(employee_id, start_date);
	CREATE INDEX IF NOT EXISTS idx_leave_records_status
		ON leave_records(status);

	CREATE TABLE IF NOT EXISTS leave_extensions (
		leave_id TEXT NOT NULL REFERENCES leave_records(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		extended_days INTEGER NOT NULL,
		new_end_date TEXT NOT NULL,
		reason TEXT,
		at TEXT NOT NULL,
		PRIMARY KEY (leave_id, seq)
	);

	-- Append-only balance journal. No UPDATE or DELETE ever runs here.
	CREATE TABLE IF NOT EXISTS leave_journal (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		category TEXT NOT NULL,
		delta TEXT NOT NULL,
		kind TEXT NOT NULL,
		leave_id TEXT NOT NULL,
		reason TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_journal_employee_year
		ON leave_journal(employee_id, year);
	CREATE INDEX IF NOT EXISTS idx_journal_leave
		ON leave_journal(leave_id);

	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		kind TEXT NOT NULL CHECK (kind IN ('gazetted', 'restricted'))
	);

	CREATE INDEX IF NOT EXISTS idx_holidays_date ON holidays(date);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LEAVE RECORDS (leave.Store)
// =============================================================================

const leaveColumns = `id, employee_id, leave_type, start_date, end_date, total_days,
	remarks, permission_dates, status, original_start_date, original_end_date,
	original_total_days, medical_rest_start, medical_rest_end, medical_rest_days,
	medical_reason, cl_days_availed, cl_days_cancelled, medical_approval,
	medical_converted_to, medical_approval_remarks, created_at, updated_at`

// Leave returns the record or (nil, nil) when the id is unknown.
func (s *Store) Leave(ctx context.Context, id leave.LeaveID) (*leave.LeaveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+leaveColumns+` FROM leave_records WHERE id = ?`, string(id))
	rec, err := scanLeave(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadExtensions(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// LeavesByEmployee returns all live records for an employee whose start
// date falls in the given year.
func (s *Store) LeavesByEmployee(ctx context.Context, employeeID leave.EmployeeID, year int) ([]*leave.LeaveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+leaveColumns+` FROM leave_records
		 WHERE employee_id = ? AND substr(start_date, 1, 4) = ?
		 ORDER BY start_date`,
		string(employeeID), fmt.Sprintf("%04d", year))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.collectLeaves(ctx, rows)
}

// Leaves returns every record, for projections.
func (s *Store) Leaves(ctx context.Context) ([]*leave.LeaveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+leaveColumns+` FROM leave_records ORDER BY start_date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.collectLeaves(ctx, rows)
}

// Commit applies a mutation in a single transaction.
func (s *Store) Commit(ctx context.Context, m leave.Mutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if m.Remove != "" {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM leave_extensions WHERE leave_id = ?`, string(m.Remove)); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM leave_records WHERE id = ?`, string(m.Remove)); err != nil {
			return err
		}
	}

	if m.Save != nil {
		if err := saveLeave(ctx, tx, m.Save); err != nil {
			return err
		}
	}

	for _, entry := range m.Journal {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO leave_journal (id, employee_id, year, category, delta, kind, leave_id, reason, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			entry.ID, string(entry.EmployeeID), entry.Year, string(entry.Category),
			entry.Delta.String(), string(entry.Kind), string(entry.LeaveID),
			entry.Reason, entry.CreatedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func saveLeave(ctx context.Context, tx *sql.Tx, rec *leave.LeaveRecord) error {
	permJSON, err := marshalDates(rec.PermissionDates)
	if err != nil {
		return err
	}

	var (
		medStart, medEnd, medReason, medApproval, medConverted, medRemarks sql.NullString
		medDays, availed, cancelled                                        sql.NullInt64
	)
	if m := rec.Medical; m != nil {
		medStart = nullStr(m.RestStartDate.String())
		medEnd = nullStr(m.RestEndDate.String())
		medDays = sql.NullInt64{Int64: int64(m.RestDays), Valid: true}
		medReason = nullStr(m.Reason)
		availed = sql.NullInt64{Int64: int64(m.CLDaysAvailed), Valid: true}
		cancelled = sql.NullInt64{Int64: int64(m.CLDaysCancelled), Valid: true}
		medApproval = nullStr(string(m.Approval))
		medConverted = nullStr(string(m.ConvertedTo))
		medRemarks = nullStr(m.ApprovalRemarks)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO leave_records (`+leaveColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			leave_type = excluded.leave_type,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			total_days = excluded.total_days,
			remarks = excluded.remarks,
			permission_dates = excluded.permission_dates,
			status = excluded.status,
			medical_rest_start = excluded.medical_rest_start,
			medical_rest_end = excluded.medical_rest_end,
			medical_rest_days = excluded.medical_rest_days,
			medical_reason = excluded.medical_reason,
			cl_days_availed = excluded.cl_days_availed,
			cl_days_cancelled = excluded.cl_days_cancelled,
			medical_approval = excluded.medical_approval,
			medical_converted_to = excluded.medical_converted_to,
			medical_approval_remarks = excluded.medical_approval_remarks,
			updated_at = excluded.updated_at`,
		string(rec.ID), string(rec.EmployeeID), string(rec.Type),
		rec.StartDate.String(), rec.EndDate.String(), rec.TotalDays,
		rec.Remarks, permJSON, string(rec.Status),
		rec.OriginalStartDate.String(), rec.OriginalEndDate.String(), rec.OriginalTotalDays,
		medStart, medEnd, medDays, medReason, availed, cancelled,
		medApproval, medConverted, medRemarks,
		rec.CreatedAt.UTC().Format(time.RFC3339), rec.UpdatedAt.UTC().Format(time.RFC3339),
	); err != nil {
		return err
	}

	// Extension history is rewritten from the record; the engine only ever
	// appends to it.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM leave_extensions WHERE leave_id = ?`, string(rec.ID)); err != nil {
		return err
	}
	for i, ext := range rec.Extensions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO leave_extensions (leave_id, seq, extended_days, new_end_date, reason, at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			string(rec.ID), i, ext.ExtendedDays, ext.NewEndDate.String(),
			ext.Reason, ext.At.UTC().Format(time.RFC3339)); err != nil {
			return err
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLeave(row rowScanner) (*leave.LeaveRecord, error) {
	var (
		rec                                                                leave.LeaveRecord
		id, employeeID, leaveType, startDate, endDate, status              string
		remarks, permJSON                                                  string
		origStart, origEnd                                                 string
		createdAt, updatedAt                                               string
		medStart, medEnd, medReason, medApproval, medConverted, medRemarks sql.NullString
		medDays, availed, cancelled                                        sql.NullInt64
	)

	if err := row.Scan(&id, &employeeID, &leaveType, &startDate, &endDate, &rec.TotalDays,
		&remarks, &permJSON, &status, &origStart, &origEnd, &rec.OriginalTotalDays,
		&medStart, &medEnd, &medDays, &medReason, &availed, &cancelled,
		&medApproval, &medConverted, &medRemarks, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	rec.ID = leave.LeaveID(id)
	rec.EmployeeID = leave.EmployeeID(employeeID)
	rec.Type = leave.LeaveType(leaveType)
	rec.Status = leave.Status(status)
	rec.Remarks = remarks

	var err error
	if rec.StartDate, err = leave.ParseDate(startDate); err != nil {
		return nil, fmt.Errorf("bad start_date %q: %w", startDate, err)
	}
	if rec.EndDate, err = leave.ParseDate(endDate); err != nil {
		return nil, fmt.Errorf("bad end_date %q: %w", endDate, err)
	}
	if rec.OriginalStartDate, err = leave.ParseDate(origStart); err != nil {
		return nil, err
	}
	if rec.OriginalEndDate, err = leave.ParseDate(origEnd); err != nil {
		return nil, err
	}
	if rec.PermissionDates, err = unmarshalDates(permJSON); err != nil {
		return nil, err
	}
	if rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, err
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, err
	}

	if medApproval.Valid {
		m := &leave.MedicalRest{
			RestDays:        int(medDays.Int64),
			Reason:          medReason.String,
			CLDaysAvailed:   int(availed.Int64),
			CLDaysCancelled: int(cancelled.Int64),
			Approval:        leave.ApprovalStatus(medApproval.String),
			ConvertedTo:     leave.LeaveType(medConverted.String),
			ApprovalRemarks: medRemarks.String,
		}
		if m.RestStartDate, err = leave.ParseDate(medStart.String); err != nil {
			return nil, err
		}
		if m.RestEndDate, err = leave.ParseDate(medEnd.String); err != nil {
			return nil, err
		}
		rec.Medical = m
	}

	return &rec, nil
}

func (s *Store) collectLeaves(ctx context.Context, rows *sql.Rows) ([]*leave.LeaveRecord, error) {
	var records []*leave.LeaveRecord
	for rows.Next() {
		rec, err := scanLeave(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, rec := range records {
		if err := s.loadExtensions(ctx, rec); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (s *Store) loadExtensions(ctx context.Context, rec *leave.LeaveRecord) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT extended_days, new_end_date, reason, at
		 FROM leave_extensions WHERE leave_id = ? ORDER BY seq`, string(rec.ID))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ext          leave.Extension
			newEnd, atTS string
		)
		if err := rows.Scan(&ext.ExtendedDays, &newEnd, &ext.Reason, &atTS); err != nil {
			return err
		}
		if ext.NewEndDate, err = leave.ParseDate(newEnd); err != nil {
			return err
		}
		if ext.At, err = time.Parse(time.RFC3339, atTS); err != nil {
			return err
		}
		rec.Extensions = append(rec.Extensions, ext)
	}
	return rows.Err()
}

// =============================================================================
// SETTINGS
// =============================================================================

// Settings returns the entitlements for a year or (nil, nil).
func (s *Store) Settings(ctx context.Context, year int) (*leave.LeaveSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var settings leave.LeaveSettings
	err := s.db.QueryRowContext(ctx,
		`SELECT year, casual_leave_annual, permissions_annual, restricted_leave_annual
		 FROM leave_settings WHERE year = ?`, year).
		Scan(&settings.Year, &settings.CasualLeaveAnnual,
			&settings.PermissionsAnnual, &settings.RestrictedLeaveAnnual)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// PutSettings upserts the entitlements for a year.
func (s *Store) PutSettings(ctx context.Context, settings leave.LeaveSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_settings (year, casual_leave_annual, permissions_annual, restricted_leave_annual, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(year) DO UPDATE SET
			casual_leave_annual = excluded.casual_leave_annual,
			permissions_annual = excluded.permissions_annual,
			restricted_leave_annual = excluded.restricted_leave_annual,
			updated_at = excluded.updated_at`,
		settings.Year, settings.CasualLeaveAnnual, settings.PermissionsAnnual,
		settings.RestrictedLeaveAnnual, time.Now().UTC().Format(time.RFC3339))
	return err
}

// =============================================================================
// JOURNAL
// =============================================================================

// JournalTotals sums the journal delta per category for an employee-year.
// Folding happens in Go to keep decimal arithmetic exact.
func (s *Store) JournalTotals(ctx context.Context, employeeID leave.EmployeeID, year int) (map[leave.Category]decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT category, delta FROM leave_journal WHERE employee_id = ? AND year = ?`,
		string(employeeID), year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[leave.Category]decimal.Decimal)
	for rows.Next() {
		var category, deltaStr string
		if err := rows.Scan(&category, &deltaStr); err != nil {
			return nil, err
		}
		delta, err := decimal.NewFromString(deltaStr)
		if err != nil {
			return nil, fmt.Errorf("bad journal delta %q: %w", deltaStr, err)
		}
		c := leave.Category(category)
		totals[c] = totals[c].Add(delta)
	}
	return totals, rows.Err()
}

// JournalEntries returns the full entry history for an employee-year,
// oldest first.
func (s *Store) JournalEntries(ctx context.Context, employeeID leave.EmployeeID, year int) ([]leave.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, employee_id, year, category, delta, kind, leave_id, reason, created_at
		 FROM leave_journal WHERE employee_id = ? AND year = ?
		 ORDER BY rowid`,
		string(employeeID), year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []leave.JournalEntry
	for rows.Next() {
		var (
			e                                            leave.JournalEntry
			empID, category, deltaStr, kind, leaveID, ts string
		)
		if err := rows.Scan(&e.ID, &empID, &e.Year, &category, &deltaStr, &kind, &leaveID, &e.Reason, &ts); err != nil {
			return nil, err
		}
		e.EmployeeID = leave.EmployeeID(empID)
		e.Category = leave.Category(category)
		e.Kind = leave.EntryKind(kind)
		e.LeaveID = leave.LeaveID(leaveID)
		if e.Delta, err = decimal.NewFromString(deltaStr); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339, ts); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// EMPLOYEES (leave.Directory)
// =============================================================================

// Employee returns directory data or (nil, nil) when unknown.
func (s *Store) Employee(ctx context.Context, id leave.EmployeeID) (*leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var emp leave.Employee
	var empID string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, rank, unit FROM employees WHERE id = ?`, string(id)).
		Scan(&empID, &emp.Name, &emp.Rank, &emp.Unit)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	emp.ID = leave.EmployeeID(empID)
	return &emp, nil
}

// Employees lists the directory.
func (s *Store) Employees(ctx context.Context) ([]*leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, rank, unit FROM employees ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []*leave.Employee
	for rows.Next() {
		var emp leave.Employee
		var empID string
		if err := rows.Scan(&empID, &emp.Name, &emp.Rank, &emp.Unit); err != nil {
			return nil, err
		}
		emp.ID = leave.EmployeeID(empID)
		employees = append(employees, &emp)
	}
	return employees, rows.Err()
}

// SaveEmployee upserts directory data. The directory is externally owned;
// this exists for seeding and the roster import path.
func (s *Store) SaveEmployee(ctx context.Context, emp leave.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, rank, unit, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, rank = excluded.rank, unit = excluded.unit`,
		string(emp.ID), emp.Name, emp.Rank, emp.Unit,
		time.Now().UTC().Format(time.RFC3339))
	return err
}

// =============================================================================
// HOLIDAYS (calendar.HolidayStore)
// =============================================================================

// HolidaysInRange returns holidays with date in [from, to].
func (s *Store) HolidaysInRange(ctx context.Context, from, to leave.Date) ([]calendar.Holiday, error) {
	return s.queryHolidays(ctx,
		`SELECT id, date, name, kind FROM holidays WHERE date >= ? AND date <= ? ORDER BY date`,
		from.String(), to.String())
}

// HolidaysByYear returns a calendar year's holidays.
func (s *Store) HolidaysByYear(ctx context.Context, year int) ([]calendar.Holiday, error) {
	return s.queryHolidays(ctx,
		`SELECT id, date, name, kind FROM holidays WHERE substr(date, 1, 4) = ? ORDER BY date`,
		fmt.Sprintf("%04d", year))
}

// SaveHoliday upserts one holiday.
func (s *Store) SaveHoliday(ctx context.Context, h calendar.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO holidays (id, date, name, kind)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date, name = excluded.name, kind = excluded.kind`,
		h.ID, h.Date.String(), h.Name, string(h.Kind))
	return err
}

func (s *Store) queryHolidays(ctx context.Context, query string, args ...any) ([]calendar.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []calendar.Holiday
	for rows.Next() {
		var (
			h       calendar.Holiday
			dateStr string
			kind    string
		)
		if err := rows.Scan(&h.ID, &dateStr, &h.Name, &kind); err != nil {
			return nil, err
		}
		if h.Date, err = leave.ParseDate(dateStr); err != nil {
			return nil, err
		}
		h.Kind = calendar.Kind(kind)
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func marshalDates(dates []leave.Date) (string, error) {
	strs := make([]string, len(dates))
	for i, d := range dates {
		strs[i] = d.String()
	}
	b, err := json.Marshal(strs)
	return string(b), err
}

func unmarshalDates(s string) ([]leave.Date, error) {
	var strs []string
	if err := json.Unmarshal([]byte(s), &strs); err != nil {
		return nil, err
	}
	if len(strs) == 0 {
		return nil, nil
	}
	dates := make([]leave.Date, len(strs))
	for i, str := range strs {
		d, err := leave.ParseDate(str)
		if err != nil {
			return nil, err
		}
		dates[i] = d
	}
	return dates, nil
}
