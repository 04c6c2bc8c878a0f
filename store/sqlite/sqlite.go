/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements shifts.TxStore using SQLite. In production the same patterns
  apply to PostgreSQL - only minor SQL dialect differences.

INVARIANTS ENFORCED IN SCHEMA:
  idx_assignment_occurrence: at most one assignee per (slot_id, slot_date).
    This is the backstop behind the assignment engine's exclusive section;
    a violation maps to shifts.ErrOccurrenceTaken.
  idx_rejection_unique: at most one rejection per (slot_id, slot_date,
    user_id). A violation maps to shifts.ErrDuplicateRejection, which the
    workflow treats as already-recorded.
  idx_leave_unique_pending: no duplicate pending leave for the same
    (assignment, user, leave_type).

OWNERSHIP CASCADES:
  Shift owns its slots; a slot owns its assignments, interests and
  rejections. Deletes cascade through foreign keys (enabled via
  _foreign_keys=on).

CONCURRENCY:
  A sync.RWMutex serializes writers in-process; WithTx holds the write lock
  for the whole function, giving callers the exclusive read-modify-write
  window the assignment sequence needs. Reveal counters are incremented
  relatively in SQL (n = n + 1), never read-then-written.

WAL MODE:
  SQLite is opened with WAL for better concurrency: readers don't block,
  single writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/shifts.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - shifts/store.go:        Interface definitions and contracts
  - shifts/store/memory.go: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/locumbase/shift-engine/shifts"
)

// Store implements shifts.TxStore using SQLite.
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
	// A second pool connection to ":memory:" would see an empty database.
	db.SetMaxOpenConns(1)

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
	-- Shifts (postings)
	CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY,
		pharmacy_id TEXT NOT NULL,
		posted_by TEXT NOT NULL,
		posted_by_org_admin BOOLEAN NOT NULL DEFAULT FALSE,
		role_needed TEXT NOT NULL,
		employment_type TEXT NOT NULL,
		workload_tags TEXT,
		rate_type TEXT,
		fixed_rate TEXT,
		owner_adjusted_rate TEXT,
		escalation_level INTEGER NOT NULL DEFAULT 0,
		escalate_owner_chain_at TEXT,
		escalate_org_chain_at TEXT,
		escalate_platform_at TEXT,
		single_user_only BOOLEAN NOT NULL DEFAULT FALSE,
		reveal_quota INTEGER NOT NULL DEFAULT 0,
		reveal_count INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_shifts_pharmacy ON shifts(pharmacy_id);

	-- Slots (time windows, owned by a shift)
	CREATE TABLE IF NOT EXISTS shift_slots (
		id TEXT PRIMARY KEY,
		shift_id TEXT NOT NULL REFERENCES shifts(id) ON DELETE CASCADE,
		date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		recurring BOOLEAN NOT NULL DEFAULT FALSE,
		recurring_days TEXT,
		recurring_end_date TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_slots_shift ON shift_slots(shift_id);

	-- Assignments: one worker per concrete occurrence, rate locked in-row
	CREATE TABLE IF NOT EXISTS slot_assignments (
		id TEXT PRIMARY KEY,
		slot_id TEXT NOT NULL REFERENCES shift_slots(id) ON DELETE CASCADE,
		slot_date TEXT NOT NULL,
		user_id TEXT NOT NULL,
		unit_rate TEXT NOT NULL,
		rate_reason_json TEXT NOT NULL,
		assigned_by TEXT,
		created_at TEXT NOT NULL
	);

	-- CRITICAL: at most one assignee per (slot, slot_date)
	CREATE UNIQUE INDEX IF NOT EXISTS idx_assignment_occurrence
		ON slot_assignments(slot_id, slot_date);
	CREATE INDEX IF NOT EXISTS idx_assignments_user
		ON slot_assignments(user_id);

	-- Interests
	CREATE TABLE IF NOT EXISTS shift_interests (
		id TEXT PRIMARY KEY,
		shift_id TEXT NOT NULL REFERENCES shifts(id) ON DELETE CASCADE,
		slot_id TEXT REFERENCES shift_slots(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL,
		revealed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_interests_shift ON shift_interests(shift_id);
	CREATE INDEX IF NOT EXISTS idx_interests_user ON shift_interests(user_id);

	-- Rejections: never re-offer a declined occurrence
	CREATE TABLE IF NOT EXISTS shift_rejections (
		id TEXT PRIMARY KEY,
		slot_id TEXT NOT NULL REFERENCES shift_slots(id) ON DELETE CASCADE,
		slot_date TEXT NOT NULL,
		user_id TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_rejection_unique
		ON shift_rejections(slot_id, slot_date, user_id);

	-- Leave requests against assignments
	CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		assignment_id TEXT NOT NULL REFERENCES slot_assignments(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING',
		note TEXT,
		decided_by TEXT,
		decided_at TEXT,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_leave_unique_pending
		ON leave_requests(assignment_id, user_id, leave_type)
		WHERE status = 'PENDING';

	-- Swap/cover requests
	CREATE TABLE IF NOT EXISTS swap_requests (
		id TEXT PRIMARY KEY,
		assignment_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING',
		note TEXT,
		created_shift_id TEXT,
		decided_by TEXT,
		decided_at TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_swaps_assignment ON swap_requests(assignment_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// queryer is satisfied by both *sql.DB and *sql.Tx so the same helpers
// serve locked top-level calls and in-transaction calls.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// SHIFT STORE
// =============================================================================

func (s *Store) SaveShift(ctx context.Context, sh *shifts.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveShift(ctx, s.db, sh)
}

func saveShift(ctx context.Context, q queryer, sh *shifts.Shift) error {
	tagsJSON, _ := json.Marshal(sh.WorkloadTags)

	query := `
		INSERT INTO shifts
		(id, pharmacy_id, posted_by, posted_by_org_admin, role_needed,
		 employment_type, workload_tags,
		 rate_type, fixed_rate, owner_adjusted_rate, escalation_level,
		 escalate_owner_chain_at, escalate_org_chain_at, escalate_platform_at,
		 single_user_only, reveal_quota, reveal_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			role_needed = excluded.role_needed,
			employment_type = excluded.employment_type,
			workload_tags = excluded.workload_tags,
			rate_type = excluded.rate_type,
			fixed_rate = excluded.fixed_rate,
			owner_adjusted_rate = excluded.owner_adjusted_rate,
			escalation_level = excluded.escalation_level,
			escalate_owner_chain_at = excluded.escalate_owner_chain_at,
			escalate_org_chain_at = excluded.escalate_org_chain_at,
			escalate_platform_at = excluded.escalate_platform_at,
			single_user_only = excluded.single_user_only,
			reveal_quota = excluded.reveal_quota
	`

	_, err := q.ExecContext(ctx, query,
		sh.ID, sh.PharmacyID, sh.PostedBy, sh.PostedByOrgAdmin,
		sh.RoleNeeded, sh.EmploymentType,
		string(tagsJSON),
		nullRateType(sh.RateType),
		nullDecimal(sh.FixedRate),
		nullDecimal(sh.OwnerAdjustedRate),
		sh.EscalationLevel,
		nullTime(sh.EscalateOwnerChainAt),
		nullTime(sh.EscalateOrgChainAt),
		nullTime(sh.EscalatePlatformAt),
		sh.SingleUserOnly, sh.RevealQuota, sh.RevealCount,
		sh.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save shift: %w", err)
	}
	return nil
}

const shiftColumns = `id, pharmacy_id, posted_by, posted_by_org_admin, role_needed, employment_type, workload_tags,
	rate_type, fixed_rate, owner_adjusted_rate, escalation_level,
	escalate_owner_chain_at, escalate_org_chain_at, escalate_platform_at,
	single_user_only, reveal_quota, reveal_count, created_at`

func (s *Store) GetShift(ctx context.Context, id shifts.ShiftID) (*shifts.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getShift(ctx, s.db, id)
}

func getShift(ctx context.Context, q queryer, id shifts.ShiftID) (*shifts.Shift, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+shiftColumns+" FROM shifts WHERE id = ?", id)
	sh, err := scanShift(row)
	if err == sql.ErrNoRows {
		return nil, shifts.ErrShiftNotFound
	}
	return sh, err
}

func (s *Store) ListShifts(ctx context.Context, pharmacyID shifts.PharmacyID) ([]*shifts.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listShifts(ctx, s.db, pharmacyID)
}

func listShifts(ctx context.Context, q queryer, pharmacyID shifts.PharmacyID) ([]*shifts.Shift, error) {
	query := "SELECT " + shiftColumns + " FROM shifts"
	var args []any
	if pharmacyID != "" {
		query += " WHERE pharmacy_id = ?"
		args = append(args, pharmacyID)
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*shifts.Shift
	for rows.Next() {
		sh, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, sh)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShift(row rowScanner) (*shifts.Shift, error) {
	var (
		sh            shifts.Shift
		tagsJSON      sql.NullString
		rateType      sql.NullString
		fixedRate     sql.NullString
		ownerAdjusted sql.NullString
		escOwner      sql.NullString
		escOrg        sql.NullString
		escPlatform   sql.NullString
		createdAt     string
	)

	err := row.Scan(
		&sh.ID, &sh.PharmacyID, &sh.PostedBy, &sh.PostedByOrgAdmin,
		&sh.RoleNeeded, &sh.EmploymentType,
		&tagsJSON, &rateType, &fixedRate, &ownerAdjusted, &sh.EscalationLevel,
		&escOwner, &escOrg, &escPlatform,
		&sh.SingleUserOnly, &sh.RevealQuota, &sh.RevealCount, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	if tagsJSON.Valid && tagsJSON.String != "" {
		json.Unmarshal([]byte(tagsJSON.String), &sh.WorkloadTags)
	}
	if rateType.Valid {
		rt := shifts.RateType(rateType.String)
		sh.RateType = &rt
	}
	sh.FixedRate = parseNullDecimal(fixedRate)
	sh.OwnerAdjustedRate = parseNullDecimal(ownerAdjusted)
	sh.EscalateOwnerChainAt = parseNullTime(escOwner)
	sh.EscalateOrgChainAt = parseNullTime(escOrg)
	sh.EscalatePlatformAt = parseNullTime(escPlatform)
	sh.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &sh, nil
}

func (s *Store) SaveSlot(ctx context.Context, sl *shifts.ShiftSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveSlot(ctx, s.db, sl)
}

func saveSlot(ctx context.Context, q queryer, sl *shifts.ShiftSlot) error {
	var daysJSON *string
	if len(sl.RecurringDays) > 0 {
		ints := make([]int, len(sl.RecurringDays))
		for i, d := range sl.RecurringDays {
			ints[i] = int(d)
		}
		b, _ := json.Marshal(ints)
		str := string(b)
		daysJSON = &str
	}

	var endDate *string
	if sl.RecurringEndDate != nil {
		str := sl.RecurringEndDate.String()
		endDate = &str
	}

	query := `
		INSERT INTO shift_slots
		(id, shift_id, date, start_time, end_time, recurring, recurring_days, recurring_end_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			recurring = excluded.recurring,
			recurring_days = excluded.recurring_days,
			recurring_end_date = excluded.recurring_end_date
	`

	_, err := q.ExecContext(ctx, query,
		sl.ID, sl.ShiftID, sl.Date.String(),
		sl.StartTime.String(), sl.EndTime.String(),
		sl.Recurring, daysJSON, endDate,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return shifts.ErrShiftNotFound
		}
		return fmt.Errorf("failed to save slot: %w", err)
	}
	return nil
}

const slotColumns = `id, shift_id, date, start_time, end_time, recurring, recurring_days, recurring_end_date`

func (s *Store) GetSlot(ctx context.Context, id shifts.SlotID) (*shifts.ShiftSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getSlot(ctx, s.db, id)
}

func getSlot(ctx context.Context, q queryer, id shifts.SlotID) (*shifts.ShiftSlot, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+slotColumns+" FROM shift_slots WHERE id = ?", id)
	sl, err := scanSlot(row)
	if err == sql.ErrNoRows {
		return nil, shifts.ErrSlotNotFound
	}
	return sl, err
}

func (s *Store) SlotsByShift(ctx context.Context, shiftID shifts.ShiftID) ([]*shifts.ShiftSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slotsByShift(ctx, s.db, shiftID)
}

func slotsByShift(ctx context.Context, q queryer, shiftID shifts.ShiftID) ([]*shifts.ShiftSlot, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT "+slotColumns+" FROM shift_slots WHERE shift_id = ? ORDER BY date, id", shiftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*shifts.ShiftSlot
	for rows.Next() {
		sl, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, sl)
	}
	return result, rows.Err()
}

func scanSlot(row rowScanner) (*shifts.ShiftSlot, error) {
	var (
		sl        shifts.ShiftSlot
		date      string
		startTime string
		endTime   string
		daysJSON  sql.NullString
		endDate   sql.NullString
	)

	err := row.Scan(&sl.ID, &sl.ShiftID, &date, &startTime, &endTime,
		&sl.Recurring, &daysJSON, &endDate)
	if err != nil {
		return nil, err
	}

	sl.Date, _ = shifts.ParseDate(date)
	sl.StartTime, _ = shifts.ParseClockTime(startTime)
	sl.EndTime, _ = shifts.ParseClockTime(endTime)
	if daysJSON.Valid && daysJSON.String != "" {
		var ints []int
		json.Unmarshal([]byte(daysJSON.String), &ints)
		for _, i := range ints {
			sl.RecurringDays = append(sl.RecurringDays, time.Weekday(i))
		}
	}
	if endDate.Valid {
		d, err := shifts.ParseDate(endDate.String)
		if err == nil {
			sl.RecurringEndDate = &d
		}
	}
	return &sl, nil
}

func (s *Store) SetEscalationLevel(ctx context.Context, id shifts.ShiftID, level int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return setEscalationLevel(ctx, s.db, id, level)
}

func setEscalationLevel(ctx context.Context, q queryer, id shifts.ShiftID, level int) error {
	res, err := q.ExecContext(ctx,
		"UPDATE shifts SET escalation_level = ? WHERE id = ?", level, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return shifts.ErrShiftNotFound
	}
	return nil
}

func (s *Store) IncrementRevealCount(ctx context.Context, id shifts.ShiftID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return incrementRevealCount(ctx, s.db, id)
}

// incrementRevealCount is a relative increment in SQL; the count is never
// read, modified and written back from Go.
func incrementRevealCount(ctx context.Context, q queryer, id shifts.ShiftID) (int, error) {
	res, err := q.ExecContext(ctx,
		"UPDATE shifts SET reveal_count = reveal_count + 1 WHERE id = ?", id)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return 0, shifts.ErrShiftNotFound
	}

	var count int
	err = q.QueryRowContext(ctx,
		"SELECT reveal_count FROM shifts WHERE id = ?", id).Scan(&count)
	return count, err
}

// =============================================================================
// ASSIGNMENT STORE
// =============================================================================

func (s *Store) PutAssignment(ctx context.Context, a *shifts.ShiftSlotAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return putAssignment(ctx, s.db, a)
}

func putAssignment(ctx context.Context, q queryer, a *shifts.ShiftSlotAssignment) error {
	reasonJSON, _ := json.Marshal(a.RateReason)

	query := `
		INSERT INTO slot_assignments
		(id, slot_id, slot_date, user_id, unit_rate, rate_reason_json, assigned_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := q.ExecContext(ctx, query,
		a.ID, a.SlotID, a.SlotDate.String(), a.UserID,
		a.UnitRate.String(), string(reasonJSON), a.AssignedBy,
		a.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			taken := &shifts.OccurrenceTakenError{SlotID: a.SlotID, SlotDate: a.SlotDate}
			if existing, gerr := getAssignment(ctx, q, a.SlotID, a.SlotDate); gerr == nil {
				taken.AssignedTo = existing.UserID
			}
			return taken
		}
		if isForeignKeyError(err) {
			return shifts.ErrSlotNotFound
		}
		return fmt.Errorf("failed to put assignment: %w", err)
	}
	return nil
}

const assignmentColumns = `id, slot_id, slot_date, user_id, unit_rate, rate_reason_json, assigned_by, created_at`

func (s *Store) GetAssignment(ctx context.Context, slotID shifts.SlotID, slotDate shifts.Date) (*shifts.ShiftSlotAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getAssignment(ctx, s.db, slotID, slotDate)
}

func getAssignment(ctx context.Context, q queryer, slotID shifts.SlotID, slotDate shifts.Date) (*shifts.ShiftSlotAssignment, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+assignmentColumns+" FROM slot_assignments WHERE slot_id = ? AND slot_date = ?",
		slotID, slotDate.String())
	a, err := scanAssignment(row)
	if err == sql.ErrNoRows {
		return nil, shifts.ErrAssignmentNotFound
	}
	return a, err
}

func (s *Store) AssignmentByID(ctx context.Context, id shifts.AssignmentID) (*shifts.ShiftSlotAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return assignmentByID(ctx, s.db, id)
}

func assignmentByID(ctx context.Context, q queryer, id shifts.AssignmentID) (*shifts.ShiftSlotAssignment, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+assignmentColumns+" FROM slot_assignments WHERE id = ?", id)
	a, err := scanAssignment(row)
	if err == sql.ErrNoRows {
		return nil, shifts.ErrAssignmentNotFound
	}
	return a, err
}

func (s *Store) AssignmentsByShift(ctx context.Context, shiftID shifts.ShiftID) ([]*shifts.ShiftSlotAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return assignmentsByShift(ctx, s.db, shiftID)
}

func assignmentsByShift(ctx context.Context, q queryer, shiftID shifts.ShiftID) ([]*shifts.ShiftSlotAssignment, error) {
	query := `
		SELECT a.id, a.slot_id, a.slot_date, a.user_id, a.unit_rate,
		       a.rate_reason_json, a.assigned_by, a.created_at
		FROM slot_assignments a
		JOIN shift_slots sl ON sl.id = a.slot_id
		WHERE sl.shift_id = ?
		ORDER BY a.slot_date, a.id
	`

	rows, err := q.QueryContext(ctx, query, shiftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*shifts.ShiftSlotAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (s *Store) DeleteAssignment(ctx context.Context, id shifts.AssignmentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteAssignment(ctx, s.db, id)
}

func deleteAssignment(ctx context.Context, q queryer, id shifts.AssignmentID) error {
	res, err := q.ExecContext(ctx, "DELETE FROM slot_assignments WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return shifts.ErrAssignmentNotFound
	}
	return nil
}

func scanAssignment(row rowScanner) (*shifts.ShiftSlotAssignment, error) {
	var (
		a          shifts.ShiftSlotAssignment
		slotDate   string
		unitRate   string
		reasonJSON string
		assignedBy sql.NullString
		createdAt  string
	)

	err := row.Scan(&a.ID, &a.SlotID, &slotDate, &a.UserID,
		&unitRate, &reasonJSON, &assignedBy, &createdAt)
	if err != nil {
		return nil, err
	}

	a.SlotDate, _ = shifts.ParseDate(slotDate)
	a.UnitRate = parseDecimal(unitRate)
	json.Unmarshal([]byte(reasonJSON), &a.RateReason)
	a.AssignedBy = shifts.UserID(assignedBy.String)
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &a, nil
}

// =============================================================================
// INTEREST STORE
// =============================================================================

func (s *Store) SaveInterest(ctx context.Context, in *shifts.ShiftInterest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveInterest(ctx, s.db, in)
}

func saveInterest(ctx context.Context, q queryer, in *shifts.ShiftInterest) error {
	query := `
		INSERT INTO shift_interests (id, shift_id, slot_id, user_id, revealed, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET revealed = excluded.revealed
	`

	var slotID *string
	if in.SlotID != nil {
		str := string(*in.SlotID)
		slotID = &str
	}

	_, err := q.ExecContext(ctx, query,
		in.ID, in.ShiftID, slotID, in.UserID, in.Revealed,
		in.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isForeignKeyError(err) {
			return shifts.ErrShiftNotFound
		}
		return fmt.Errorf("failed to save interest: %w", err)
	}
	return nil
}

const interestColumns = `id, shift_id, slot_id, user_id, revealed, created_at`

func (s *Store) GetInterest(ctx context.Context, id shifts.InterestID) (*shifts.ShiftInterest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getInterest(ctx, s.db, id)
}

func getInterest(ctx context.Context, q queryer, id shifts.InterestID) (*shifts.ShiftInterest, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+interestColumns+" FROM shift_interests WHERE id = ?", id)
	in, err := scanInterest(row)
	if err == sql.ErrNoRows {
		return nil, shifts.ErrInterestNotFound
	}
	return in, err
}

func (s *Store) InterestsByShift(ctx context.Context, shiftID shifts.ShiftID) ([]*shifts.ShiftInterest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return interestsByShift(ctx, s.db, shiftID)
}

func interestsByShift(ctx context.Context, q queryer, shiftID shifts.ShiftID) ([]*shifts.ShiftInterest, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT "+interestColumns+" FROM shift_interests WHERE shift_id = ? ORDER BY created_at, id", shiftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*shifts.ShiftInterest
	for rows.Next() {
		in, err := scanInterest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, in)
	}
	return result, rows.Err()
}

func (s *Store) OpenInterest(ctx context.Context, shiftID shifts.ShiftID, slotID *shifts.SlotID, userID shifts.UserID) (*shifts.ShiftInterest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return openInterest(ctx, s.db, shiftID, slotID, userID)
}

func openInterest(ctx context.Context, q queryer, shiftID shifts.ShiftID, slotID *shifts.SlotID, userID shifts.UserID) (*shifts.ShiftInterest, error) {
	var row *sql.Row
	if slotID == nil {
		row = q.QueryRowContext(ctx,
			"SELECT "+interestColumns+" FROM shift_interests WHERE shift_id = ? AND slot_id IS NULL AND user_id = ? LIMIT 1",
			shiftID, userID)
	} else {
		row = q.QueryRowContext(ctx,
			"SELECT "+interestColumns+" FROM shift_interests WHERE shift_id = ? AND slot_id = ? AND user_id = ? LIMIT 1",
			shiftID, *slotID, userID)
	}
	in, err := scanInterest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return in, err
}

func (s *Store) SetRevealed(ctx context.Context, id shifts.InterestID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return setRevealed(ctx, s.db, id)
}

func setRevealed(ctx context.Context, q queryer, id shifts.InterestID) error {
	res, err := q.ExecContext(ctx,
		"UPDATE shift_interests SET revealed = TRUE WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return shifts.ErrInterestNotFound
	}
	return nil
}

func scanInterest(row rowScanner) (*shifts.ShiftInterest, error) {
	var (
		in        shifts.ShiftInterest
		slotID    sql.NullString
		createdAt string
	)

	err := row.Scan(&in.ID, &in.ShiftID, &slotID, &in.UserID, &in.Revealed, &createdAt)
	if err != nil {
		return nil, err
	}

	if slotID.Valid {
		sid := shifts.SlotID(slotID.String)
		in.SlotID = &sid
	}
	in.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &in, nil
}

func (s *Store) SaveRejection(ctx context.Context, r *shifts.ShiftRejection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveRejection(ctx, s.db, r)
}

func saveRejection(ctx context.Context, q queryer, r *shifts.ShiftRejection) error {
	query := `
		INSERT INTO shift_rejections (id, slot_id, slot_date, user_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := q.ExecContext(ctx, query,
		r.ID, r.SlotID, r.SlotDate.String(), r.UserID,
		r.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return shifts.ErrDuplicateRejection
		}
		if isForeignKeyError(err) {
			return shifts.ErrSlotNotFound
		}
		return fmt.Errorf("failed to save rejection: %w", err)
	}
	return nil
}

func (s *Store) HasRejected(ctx context.Context, slotID shifts.SlotID, slotDate shifts.Date, userID shifts.UserID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return hasRejected(ctx, s.db, slotID, slotDate, userID)
}

func hasRejected(ctx context.Context, q queryer, slotID shifts.SlotID, slotDate shifts.Date, userID shifts.UserID) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM shift_rejections WHERE slot_id = ? AND slot_date = ? AND user_id = ?",
		slotID, slotDate.String(), userID,
	).Scan(&count)
	return count > 0, err
}

func (s *Store) RejectionsByUser(ctx context.Context, userID shifts.UserID) ([]*shifts.ShiftRejection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return rejectionsByUser(ctx, s.db, userID)
}

func rejectionsByUser(ctx context.Context, q queryer, userID shifts.UserID) ([]*shifts.ShiftRejection, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, slot_id, slot_date, user_id, created_at FROM shift_rejections WHERE user_id = ? ORDER BY slot_date, id",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*shifts.ShiftRejection
	for rows.Next() {
		var (
			r         shifts.ShiftRejection
			slotDate  string
			createdAt string
		)
		if err := rows.Scan(&r.ID, &r.SlotID, &slotDate, &r.UserID, &createdAt); err != nil {
			return nil, err
		}
		r.SlotDate, _ = shifts.ParseDate(slotDate)
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		result = append(result, &r)
	}
	return result, rows.Err()
}

// =============================================================================
// LEAVE STORE
// =============================================================================

func (s *Store) SaveLeave(ctx context.Context, lr *shifts.LeaveRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveLeave(ctx, s.db, lr)
}

func saveLeave(ctx context.Context, q queryer, lr *shifts.LeaveRequest) error {
	query := `
		INSERT INTO leave_requests
		(id, assignment_id, user_id, leave_type, status, note, decided_by, decided_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			decided_by = excluded.decided_by,
			decided_at = excluded.decided_at
	`

	var decidedBy *string
	if lr.DecidedBy != nil {
		str := string(*lr.DecidedBy)
		decidedBy = &str
	}

	_, err := q.ExecContext(ctx, query,
		lr.ID, lr.AssignmentID, lr.UserID, lr.LeaveType, lr.Status, lr.Note,
		decidedBy, nullTime(lr.DecidedAt),
		lr.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return shifts.ErrDuplicateLeave
		}
		if isForeignKeyError(err) {
			return shifts.ErrAssignmentNotFound
		}
		return fmt.Errorf("failed to save leave request: %w", err)
	}
	return nil
}

const leaveColumns = `id, assignment_id, user_id, leave_type, status, note, decided_by, decided_at, created_at`

func (s *Store) GetLeave(ctx context.Context, id shifts.LeaveID) (*shifts.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getLeave(ctx, s.db, id)
}

func getLeave(ctx context.Context, q queryer, id shifts.LeaveID) (*shifts.LeaveRequest, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+leaveColumns+" FROM leave_requests WHERE id = ?", id)
	lr, err := scanLeave(row)
	if err == sql.ErrNoRows {
		return nil, shifts.ErrLeaveNotFound
	}
	return lr, err
}

func (s *Store) LeavesByAssignment(ctx context.Context, assignmentID shifts.AssignmentID) ([]*shifts.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return leavesByAssignment(ctx, s.db, assignmentID)
}

func leavesByAssignment(ctx context.Context, q queryer, assignmentID shifts.AssignmentID) ([]*shifts.LeaveRequest, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT "+leaveColumns+" FROM leave_requests WHERE assignment_id = ? ORDER BY created_at, id",
		assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*shifts.LeaveRequest
	for rows.Next() {
		lr, err := scanLeave(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, lr)
	}
	return result, rows.Err()
}

func (s *Store) PendingLeaveExists(ctx context.Context, assignmentID shifts.AssignmentID, userID shifts.UserID, lt shifts.LeaveType) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pendingLeaveExists(ctx, s.db, assignmentID, userID, lt)
}

func pendingLeaveExists(ctx context.Context, q queryer, assignmentID shifts.AssignmentID, userID shifts.UserID, lt shifts.LeaveType) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM leave_requests WHERE assignment_id = ? AND user_id = ? AND leave_type = ? AND status = 'PENDING'",
		assignmentID, userID, lt,
	).Scan(&count)
	return count > 0, err
}

func scanLeave(row rowScanner) (*shifts.LeaveRequest, error) {
	var (
		lr        shifts.LeaveRequest
		note      sql.NullString
		decidedBy sql.NullString
		decidedAt sql.NullString
		createdAt string
	)

	err := row.Scan(&lr.ID, &lr.AssignmentID, &lr.UserID, &lr.LeaveType,
		&lr.Status, &note, &decidedBy, &decidedAt, &createdAt)
	if err != nil {
		return nil, err
	}

	lr.Note = note.String
	if decidedBy.Valid {
		uid := shifts.UserID(decidedBy.String)
		lr.DecidedBy = &uid
	}
	lr.DecidedAt = parseNullTime(decidedAt)
	lr.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &lr, nil
}

func (s *Store) SaveSwap(ctx context.Context, sr *shifts.WorkerShiftRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveSwap(ctx, s.db, sr)
}

func saveSwap(ctx context.Context, q queryer, sr *shifts.WorkerShiftRequest) error {
	query := `
		INSERT INTO swap_requests
		(id, assignment_id, user_id, status, note, created_shift_id, decided_by, decided_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			created_shift_id = excluded.created_shift_id,
			decided_by = excluded.decided_by,
			decided_at = excluded.decided_at
	`

	var createdShiftID, decidedBy *string
	if sr.CreatedShiftID != nil {
		str := string(*sr.CreatedShiftID)
		createdShiftID = &str
	}
	if sr.DecidedBy != nil {
		str := string(*sr.DecidedBy)
		decidedBy = &str
	}

	_, err := q.ExecContext(ctx, query,
		sr.ID, sr.AssignmentID, sr.UserID, sr.Status, sr.Note,
		createdShiftID, decidedBy, nullTime(sr.DecidedAt),
		sr.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save swap request: %w", err)
	}
	return nil
}

func (s *Store) GetSwap(ctx context.Context, id shifts.SwapRequestID) (*shifts.WorkerShiftRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getSwap(ctx, s.db, id)
}

func getSwap(ctx context.Context, q queryer, id shifts.SwapRequestID) (*shifts.WorkerShiftRequest, error) {
	var (
		sr             shifts.WorkerShiftRequest
		note           sql.NullString
		createdShiftID sql.NullString
		decidedBy      sql.NullString
		decidedAt      sql.NullString
		createdAt      string
	)

	err := q.QueryRowContext(ctx,
		"SELECT id, assignment_id, user_id, status, note, created_shift_id, decided_by, decided_at, created_at FROM swap_requests WHERE id = ?",
		id,
	).Scan(&sr.ID, &sr.AssignmentID, &sr.UserID, &sr.Status, &note,
		&createdShiftID, &decidedBy, &decidedAt, &createdAt)

	if err == sql.ErrNoRows {
		return nil, shifts.ErrSwapNotFound
	}
	if err != nil {
		return nil, err
	}

	sr.Note = note.String
	if createdShiftID.Valid {
		sid := shifts.ShiftID(createdShiftID.String)
		sr.CreatedShiftID = &sid
	}
	if decidedBy.Valid {
		uid := shifts.UserID(decidedBy.String)
		sr.DecidedBy = &uid
	}
	sr.DecidedAt = parseNullTime(decidedAt)
	sr.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &sr, nil
}

// =============================================================================
// TRANSACTIONAL SECTION
// =============================================================================

// WithTx executes fn inside a database transaction while holding the write
// lock, giving the caller the exclusive read-modify-write window the
// assignment sequence requires.
func (s *Store) WithTx(ctx context.Context, fn func(shifts.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// txStore routes every operation through the open transaction without
// re-acquiring the store lock held by WithTx.
type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) SaveShift(ctx context.Context, sh *shifts.Shift) error {
	return saveShift(ctx, ts.tx, sh)
}

func (ts *txStore) GetShift(ctx context.Context, id shifts.ShiftID) (*shifts.Shift, error) {
	return getShift(ctx, ts.tx, id)
}

func (ts *txStore) ListShifts(ctx context.Context, pharmacyID shifts.PharmacyID) ([]*shifts.Shift, error) {
	return listShifts(ctx, ts.tx, pharmacyID)
}

func (ts *txStore) SaveSlot(ctx context.Context, sl *shifts.ShiftSlot) error {
	return saveSlot(ctx, ts.tx, sl)
}

func (ts *txStore) GetSlot(ctx context.Context, id shifts.SlotID) (*shifts.ShiftSlot, error) {
	return getSlot(ctx, ts.tx, id)
}

func (ts *txStore) SlotsByShift(ctx context.Context, shiftID shifts.ShiftID) ([]*shifts.ShiftSlot, error) {
	return slotsByShift(ctx, ts.tx, shiftID)
}

func (ts *txStore) SetEscalationLevel(ctx context.Context, id shifts.ShiftID, level int) error {
	return setEscalationLevel(ctx, ts.tx, id, level)
}

func (ts *txStore) IncrementRevealCount(ctx context.Context, id shifts.ShiftID) (int, error) {
	return incrementRevealCount(ctx, ts.tx, id)
}

func (ts *txStore) PutAssignment(ctx context.Context, a *shifts.ShiftSlotAssignment) error {
	return putAssignment(ctx, ts.tx, a)
}

func (ts *txStore) GetAssignment(ctx context.Context, slotID shifts.SlotID, slotDate shifts.Date) (*shifts.ShiftSlotAssignment, error) {
	return getAssignment(ctx, ts.tx, slotID, slotDate)
}

func (ts *txStore) AssignmentByID(ctx context.Context, id shifts.AssignmentID) (*shifts.ShiftSlotAssignment, error) {
	return assignmentByID(ctx, ts.tx, id)
}

func (ts *txStore) AssignmentsByShift(ctx context.Context, shiftID shifts.ShiftID) ([]*shifts.ShiftSlotAssignment, error) {
	return assignmentsByShift(ctx, ts.tx, shiftID)
}

func (ts *txStore) DeleteAssignment(ctx context.Context, id shifts.AssignmentID) error {
	return deleteAssignment(ctx, ts.tx, id)
}

func (ts *txStore) SaveInterest(ctx context.Context, in *shifts.ShiftInterest) error {
	return saveInterest(ctx, ts.tx, in)
}

func (ts *txStore) GetInterest(ctx context.Context, id shifts.InterestID) (*shifts.ShiftInterest, error) {
	return getInterest(ctx, ts.tx, id)
}

func (ts *txStore) InterestsByShift(ctx context.Context, shiftID shifts.ShiftID) ([]*shifts.ShiftInterest, error) {
	return interestsByShift(ctx, ts.tx, shiftID)
}

func (ts *txStore) OpenInterest(ctx context.Context, shiftID shifts.ShiftID, slotID *shifts.SlotID, userID shifts.UserID) (*shifts.ShiftInterest, error) {
	return openInterest(ctx, ts.tx, shiftID, slotID, userID)
}

func (ts *txStore) SetRevealed(ctx context.Context, id shifts.InterestID) error {
	return setRevealed(ctx, ts.tx, id)
}

func (ts *txStore) SaveRejection(ctx context.Context, r *shifts.ShiftRejection) error {
	return saveRejection(ctx, ts.tx, r)
}

func (ts *txStore) HasRejected(ctx context.Context, slotID shifts.SlotID, slotDate shifts.Date, userID shifts.UserID) (bool, error) {
	return hasRejected(ctx, ts.tx, slotID, slotDate, userID)
}

func (ts *txStore) RejectionsByUser(ctx context.Context, userID shifts.UserID) ([]*shifts.ShiftRejection, error) {
	return rejectionsByUser(ctx, ts.tx, userID)
}

func (ts *txStore) SaveLeave(ctx context.Context, lr *shifts.LeaveRequest) error {
	return saveLeave(ctx, ts.tx, lr)
}

func (ts *txStore) GetLeave(ctx context.Context, id shifts.LeaveID) (*shifts.LeaveRequest, error) {
	return getLeave(ctx, ts.tx, id)
}

func (ts *txStore) LeavesByAssignment(ctx context.Context, assignmentID shifts.AssignmentID) ([]*shifts.LeaveRequest, error) {
	return leavesByAssignment(ctx, ts.tx, assignmentID)
}

func (ts *txStore) PendingLeaveExists(ctx context.Context, assignmentID shifts.AssignmentID, userID shifts.UserID, lt shifts.LeaveType) (bool, error) {
	return pendingLeaveExists(ctx, ts.tx, assignmentID, userID, lt)
}

func (ts *txStore) SaveSwap(ctx context.Context, sr *shifts.WorkerShiftRequest) error {
	return saveSwap(ctx, ts.tx, sr)
}

func (ts *txStore) GetSwap(ctx context.Context, id shifts.SwapRequestID) (*shifts.WorkerShiftRequest, error) {
	return getSwap(ctx, ts.tx, id)
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"swap_requests", "leave_requests", "shift_rejections",
		"shift_interests", "slot_assignments", "shift_slots", "shifts"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	str := t.UTC().Format(time.RFC3339)
	return &str
}

func parseNullTime(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, ns.String)
	if err != nil {
		return nil
	}
	return &t
}

func nullDecimal(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	str := d.String()
	return &str
}

func parseNullDecimal(ns sql.NullString) *decimal.Decimal {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	d, err := decimal.NewFromString(ns.String)
	if err != nil {
		return nil
	}
	return &d
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func nullRateType(rt *shifts.RateType) *string {
	if rt == nil {
		return nil
	}
	str := string(*rt)
	return &str
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}

func isForeignKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// Compile-time interface checks.
var (
	_ shifts.TxStore = (*Store)(nil)
	_ shifts.Store   = (*txStore)(nil)
)
