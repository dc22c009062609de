/*
Package sqlite provides the SQLite-backed persistence layer.

PURPOSE:
  Implements every storage contract of the planner with SQLite:
  - schedule.SnapshotStore: The full weekly-schedule snapshot
  - Agent records with entitlement configuration and credentials
  - Leave requests with equality-filtered queries

KEY TABLES:
  agents:         Organization members and entitlement configuration
  leave_requests: Leave requests (canonical agent_id reference)
  schedules:      One row per schedule key, slots as JSON

SNAPSHOT SEMANTICS:
  LoadSnapshot/SaveSnapshot move the whole mapping. Save runs in a single
  database transaction: the table is cleared and every key of the new
  snapshot inserted, so the stored state always equals exactly one saved
  snapshot (last-writer-wins).

KEY HYGIENE:
  Rows whose key fails schedule.ParseKey are skipped on load; SaveSnapshot
  rejects them outright so malformed keys never enter the table.

FILTERED QUERIES:
  Leave requests are queried by equality predicates (agent id, status,
  type), matching the filtered-CRUD contract of the original backend.

CONCURRENCY:
  sync.RWMutex on top of SQLite in WAL mode. Use ":memory:" for tests.

SEE ALSO:
  - schedule/store.go: SnapshotStore contract
  - schedule/store/memory.go: In-memory implementation
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

	"github.com/warp/leave-planner/leave"
	"github.com/warp/leave-planner/schedule"
)

// Store implements all persistence contracts using SQLite.
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

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Agents (entitlement configuration + credentials)
	CREATE TABLE IF NOT EXISTS agents (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		weekly_hours REAL NOT NULL DEFAULT 35,
		rtt_days REAL NOT NULL DEFAULT 0,
		annual_leave_days REAL NOT NULL DEFAULT 25,
		sick_child_days INTEGER NOT NULL DEFAULT 3,
		password_hash TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	-- Leave requests (canonical agent_id reference only)
	CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		agent_id TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		days_count REAL NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		reason TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_leave_requests_agent
		ON leave_requests(agent_id);
	CREATE INDEX IF NOT EXISTS idx_leave_requests_status
		ON leave_requests(status);

	-- Weekly schedules (one row per schedule key, slots as JSON)
	CREATE TABLE IF NOT EXISTS schedules (
		key TEXT PRIMARY KEY,
		slots_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SNAPSHOT STORE (schedule.SnapshotStore interface)
// =============================================================================

// LoadSnapshot loads the full schedule snapshot. Rows with keys that do
// not conform to the canonical format are skipped.
func (s *Store) LoadSnapshot(ctx context.Context) (schedule.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT key, slots_json FROM schedules")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snap := schedule.Snapshot{}
	for rows.Next() {
		var key, slotsJSON string
		if err := rows.Scan(&key, &slotsJSON); err != nil {
			return nil, err
		}
		if _, _, err := schedule.ParseKey(key); err != nil {
			continue
		}
		var slots []schedule.Slot
		if err := json.Unmarshal([]byte(slotsJSON), &slots); err != nil {
			continue
		}
		snap[key] = slots
	}
	return snap, rows.Err()
}

// SaveSnapshot replaces the stored snapshot wholesale in one database
// transaction. Keys failing schedule.ParseKey abort the save.
func (s *Store) SaveSnapshot(ctx context.Context, snap schedule.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range snap {
		if _, _, err := schedule.ParseKey(key); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM schedules"); err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for key, slots := range snap {
		slotsJSON, err := json.Marshal(slots)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schedules (key, slots_json, updated_at) VALUES (?, ?, ?)",
			key, string(slotsJSON), now,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SnapshotStore adapts the store to the schedule.SnapshotStore interface.
func (s *Store) SnapshotStore() schedule.SnapshotStore {
	return snapshotAdapter{s}
}

type snapshotAdapter struct{ s *Store }

func (a snapshotAdapter) Load(ctx context.Context) (schedule.Snapshot, error) {
	return a.s.LoadSnapshot(ctx)
}

func (a snapshotAdapter) Save(ctx context.Context, snap schedule.Snapshot) error {
	return a.s.SaveSnapshot(ctx, snap)
}

// =============================================================================
// AGENTS
// =============================================================================

// AgentRecord pairs an agent with its stored credential hash.
type AgentRecord struct {
	leave.Agent
	PasswordHash string
}

// SaveAgent inserts or updates an agent. The password hash is only
// overwritten when non-empty.
func (s *Store) SaveAgent(ctx context.Context, rec AgentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO agents (id, name, role, weekly_hours, rtt_days, annual_leave_days, sick_child_days, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			role = excluded.role,
			weekly_hours = excluded.weekly_hours,
			rtt_days = excluded.rtt_days,
			annual_leave_days = excluded.annual_leave_days,
			sick_child_days = excluded.sick_child_days,
			password_hash = CASE WHEN excluded.password_hash != '' THEN excluded.password_hash ELSE agents.password_hash END
	`

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.Name, string(rec.Role),
		rec.WeeklyHours, rec.RTTDays, rec.AnnualLeaveDays, rec.SickChildDays,
		rec.PasswordHash,
		createdAt.Format(time.RFC3339),
	)
	return err
}

// GetAgent retrieves an agent by ID. Returns nil when absent.
func (s *Store) GetAgent(ctx context.Context, id string) (*AgentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rec AgentRecord
	var role, createdAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, role, weekly_hours, rtt_days, annual_leave_days, sick_child_days, password_hash, created_at
		 FROM agents WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.Name, &role, &rec.WeeklyHours, &rec.RTTDays,
		&rec.AnnualLeaveDays, &rec.SickChildDays, &rec.PasswordHash, &createdAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rec.Role = leave.Role(role)
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &rec, nil
}

// ListAgents returns all agents ordered by name.
func (s *Store) ListAgents(ctx context.Context) ([]leave.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, role, weekly_hours, rtt_days, annual_leave_days, sick_child_days, created_at
		 FROM agents ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []leave.Agent
	for rows.Next() {
		var a leave.Agent
		var role, createdAt string
		if err := rows.Scan(&a.ID, &a.Name, &role, &a.WeeklyHours, &a.RTTDays,
			&a.AnnualLeaveDays, &a.SickChildDays, &createdAt); err != nil {
			return nil, err
		}
		a.Role = leave.Role(role)
		a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

// DeleteAgent removes an agent.
func (s *Store) DeleteAgent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM agents WHERE id = ?", id)
	return err
}

// =============================================================================
// LEAVE REQUESTS (equality-filtered CRUD)
// =============================================================================

// RequestFilter selects leave requests by equality predicates.
// Nil fields match everything.
type RequestFilter struct {
	AgentID *string
	Status  *leave.Status
	Type    *leave.Type
}

// SaveRequest inserts or updates a leave request.
func (s *Store) SaveRequest(ctx context.Context, req leave.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO leave_requests (id, agent_id, leave_type, start_date, end_date, days_count, status, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			leave_type = excluded.leave_type,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			days_count = excluded.days_count,
			status = excluded.status,
			reason = excluded.reason
	`

	createdAt := req.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, query,
		req.ID, req.AgentID, string(req.Type),
		req.StartDate, req.EndDate, req.DaysCount,
		string(req.Status), req.Reason,
		createdAt.Format(time.RFC3339),
	)
	return err
}

// GetRequest retrieves a leave request by ID. Returns nil when absent.
func (s *Store) GetRequest(ctx context.Context, id string) (*leave.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reqs, err := s.queryRequests(ctx,
		"SELECT id, agent_id, leave_type, start_date, end_date, days_count, status, reason, created_at FROM leave_requests WHERE id = ?",
		id,
	)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, nil
	}
	return &reqs[0], nil
}

// ListRequests returns leave requests matching the filter, oldest first.
func (s *Store) ListRequests(ctx context.Context, filter RequestFilter) ([]leave.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, agent_id, leave_type, start_date, end_date, days_count, status, reason, created_at FROM leave_requests WHERE 1=1"
	var args []any

	if filter.AgentID != nil {
		query += " AND agent_id = ?"
		args = append(args, *filter.AgentID)
	}
	if filter.Status != nil {
		query += " AND status = ?"
		args = append(args, string(*filter.Status))
	}
	if filter.Type != nil {
		query += " AND leave_type = ?"
		args = append(args, string(*filter.Type))
	}
	query += " ORDER BY created_at"

	return s.queryRequests(ctx, query, args...)
}

// UpdateRequestStatus transitions a leave request's status.
// Returns sql.ErrNoRows when the request does not exist.
func (s *Store) UpdateRequestStatus(ctx context.Context, id string, status leave.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE leave_requests SET status = ? WHERE id = ?",
		string(status), id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteRequest removes a leave request.
func (s *Store) DeleteRequest(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM leave_requests WHERE id = ?", id)
	return err
}

func (s *Store) queryRequests(ctx context.Context, query string, args ...any) ([]leave.Request, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []leave.Request
	for rows.Next() {
		var req leave.Request
		var leaveType, status, createdAt string
		var reason sql.NullString
		if err := rows.Scan(&req.ID, &req.AgentID, &leaveType,
			&req.StartDate, &req.EndDate, &req.DaysCount,
			&status, &reason, &createdAt); err != nil {
			return nil, err
		}
		req.Type = leave.Type(leaveType)
		req.Status = leave.Status(status)
		req.Reason = reason.String
		req.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// Reset clears all tables. Dev/test helper.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"agents", "leave_requests", "schedules"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}
