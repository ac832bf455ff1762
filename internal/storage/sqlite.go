package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/valter-silva-au/staffplan/pkg/models"
)

const (
	driverName = "sqlite"
	dateLayout = "2006-01-02"
)

// SQLiteStore persists a dataset in a SQLite database. Each import replaces
// the stored records and bumps a revision counter that forms the version.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	return openSQLite(path)
}

// OpenSQLiteInMemory opens a private in-memory database.
func OpenSQLiteInMemory() (*SQLiteStore, error) {
	return openSQLite(":memory:")
}

func openSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps in-memory databases shared across queries.
	db.SetMaxOpenConns(1)
	s := &SQLiteStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS clients (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			hourly_rate REAL NOT NULL DEFAULT 0,
			expected_revenue REAL NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS staff (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS skills (
			name TEXT PRIMARY KEY,
			capacity_hours REAL NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS assignments (
			position INTEGER NOT NULL,
			id TEXT NOT NULL,
			client_id TEXT NOT NULL DEFAULT '',
			client_name TEXT NOT NULL DEFAULT '',
			task_name TEXT NOT NULL DEFAULT '',
			skill_type TEXT NOT NULL DEFAULT '',
			estimated_hours REAL NOT NULL DEFAULT 0,
			recurrence_type TEXT NOT NULL DEFAULT '',
			recurrence_interval INTEGER NOT NULL DEFAULT 0,
			day_of_month INTEGER NOT NULL DEFAULT 0,
			month_of_year INTEGER NOT NULL DEFAULT 0,
			frequency INTEGER NOT NULL DEFAULT 0,
			preferred_staff_id TEXT,
			preferred_staff_name TEXT,
			start_date TEXT,
			end_date TEXT,
			inactive INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_assignments_position ON assignments(position);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// Import replaces the stored dataset with ds. Records without an id are
// given a generated one. Assignment ids are stored as given, duplicates
// included, so the matrix builder can report them.
func (s *SQLiteStore) Import(ctx context.Context, ds *models.Dataset) (revision int, err error) {
	if ds == nil {
		return 0, errors.New("importing dataset: dataset is nil")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"assignments", "clients", "staff", "skills"} {
		if _, err = tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return 0, fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for _, c := range ds.Clients {
		id := c.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO clients(id, name, hourly_rate, expected_revenue) VALUES (?, ?, ?, ?)`,
			id, c.Name, c.HourlyRate, c.ExpectedRevenue,
		); err != nil {
			return 0, fmt.Errorf("inserting client %s: %w", id, err)
		}
	}
	for _, st := range ds.Staff {
		id := st.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err = tx.ExecContext(ctx, `INSERT INTO staff(id, name) VALUES (?, ?)`, id, st.Name); err != nil {
			return 0, fmt.Errorf("inserting staff %s: %w", id, err)
		}
	}
	for _, sk := range ds.Skills {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO skills(name, capacity_hours) VALUES (?, ?)
			 ON CONFLICT(name) DO UPDATE SET capacity_hours = capacity_hours + excluded.capacity_hours`,
			string(sk.Name), sk.CapacityHours,
		); err != nil {
			return 0, fmt.Errorf("inserting skill %s: %w", sk.Name, err)
		}
	}
	for i, a := range ds.Assignments {
		id := a.ID
		if id == "" {
			id = uuid.NewString()
		}
		p := a.RecurrencePattern
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO assignments(
				position, id, client_id, client_name, task_name, skill_type, estimated_hours,
				recurrence_type, recurrence_interval, day_of_month, month_of_year, frequency,
				preferred_staff_id, preferred_staff_name, start_date, end_date, inactive
			)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			i, id, a.ClientID, a.ClientName, a.TaskName, string(a.SkillType), a.EstimatedHours,
			string(p.Type), p.Interval, p.DayOfMonth, p.MonthOfYear, p.Frequency,
			nullableString(a.PreferredStaffID), nullableString(a.PreferredStaffName),
			nullableDate(a.StartDate), nullableDate(a.EndDate), boolInt(a.Inactive),
		); err != nil {
			return 0, fmt.Errorf("inserting assignment %s: %w", id, err)
		}
	}

	revision, err = bumpRevision(ctx, tx)
	if err != nil {
		return 0, err
	}
	err = tx.Commit()
	return revision, err
}

// Load reads the stored dataset.
func (s *SQLiteStore) Load(ctx context.Context) (*models.Dataset, error) {
	ds := &models.Dataset{}

	var raw sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'revision'`).Scan(&raw)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reading revision: %w", err)
	}
	rev := "0"
	if raw.Valid {
		rev = raw.String
	}
	ds.Version = "sqlite-r" + rev

	if ds.Clients, err = s.loadClients(ctx); err != nil {
		return nil, err
	}
	if ds.Staff, err = s.loadStaff(ctx); err != nil {
		return nil, err
	}
	if ds.Skills, err = s.loadSkills(ctx); err != nil {
		return nil, err
	}
	if ds.Assignments, err = s.loadAssignments(ctx); err != nil {
		return nil, err
	}
	return ds, nil
}

func (s *SQLiteStore) loadClients(ctx context.Context) ([]models.Client, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, hourly_rate, expected_revenue FROM clients ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("loading clients: %w", err)
	}
	defer rows.Close()

	out := []models.Client{}
	for rows.Next() {
		var c models.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.HourlyRate, &c.ExpectedRevenue); err != nil {
			return nil, fmt.Errorf("scanning client: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) loadStaff(ctx context.Context) ([]models.Staff, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM staff ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("loading staff: %w", err)
	}
	defer rows.Close()

	out := []models.Staff{}
	for rows.Next() {
		var st models.Staff
		if err := rows.Scan(&st.ID, &st.Name); err != nil {
			return nil, fmt.Errorf("scanning staff: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) loadSkills(ctx context.Context) ([]models.Skill, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, capacity_hours FROM skills ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("loading skills: %w", err)
	}
	defer rows.Close()

	out := []models.Skill{}
	for rows.Next() {
		var (
			sk   models.Skill
			name string
		)
		if err := rows.Scan(&name, &sk.CapacityHours); err != nil {
			return nil, fmt.Errorf("scanning skill: %w", err)
		}
		sk.Name = models.SkillType(name)
		out = append(out, sk)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) loadAssignments(ctx context.Context) ([]models.RecurringTaskAssignment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, client_id, client_name, task_name, skill_type, estimated_hours,
			recurrence_type, recurrence_interval, day_of_month, month_of_year, frequency,
			preferred_staff_id, preferred_staff_name, start_date, end_date, inactive
		FROM assignments
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("loading assignments: %w", err)
	}
	defer rows.Close()

	out := []models.RecurringTaskAssignment{}
	for rows.Next() {
		var (
			a          models.RecurringTaskAssignment
			skill      string
			recurrence string
			staffID    sql.NullString
			staffName  sql.NullString
			startRaw   sql.NullString
			endRaw     sql.NullString
			inactive   int
		)
		if err := rows.Scan(
			&a.ID, &a.ClientID, &a.ClientName, &a.TaskName, &skill, &a.EstimatedHours,
			&recurrence, &a.RecurrencePattern.Interval, &a.RecurrencePattern.DayOfMonth,
			&a.RecurrencePattern.MonthOfYear, &a.RecurrencePattern.Frequency,
			&staffID, &staffName, &startRaw, &endRaw, &inactive,
		); err != nil {
			return nil, fmt.Errorf("scanning assignment: %w", err)
		}
		a.SkillType = models.SkillType(skill)
		a.RecurrencePattern.Type = models.RecurrenceType(recurrence)
		a.PreferredStaffID = fromNullString(staffID)
		a.PreferredStaffName = fromNullString(staffName)
		if a.StartDate, err = parseNullableDate(startRaw); err != nil {
			return nil, fmt.Errorf("decode start_date of %s: %w", a.ID, err)
		}
		if a.EndDate, err = parseNullableDate(endRaw); err != nil {
			return nil, fmt.Errorf("decode end_date of %s: %w", a.ID, err)
		}
		a.Inactive = inactive != 0
		out = append(out, a)
	}
	return out, rows.Err()
}

func bumpRevision(ctx context.Context, tx *sql.Tx) (int, error) {
	var raw sql.NullString
	err := tx.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'revision'`).Scan(&raw)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("reading revision: %w", err)
	}
	rev := 0
	if raw.Valid {
		if rev, err = strconv.Atoi(raw.String); err != nil {
			return 0, fmt.Errorf("decode revision %q: %w", raw.String, err)
		}
	}
	rev++
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO meta(key, value) VALUES ('revision', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		strconv.Itoa(rev),
	); err != nil {
		return 0, fmt.Errorf("writing revision: %w", err)
	}
	return rev, nil
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func fromNullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return models.StringPtr(v.String)
}

func nullableDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateLayout)
}

func parseNullableDate(v sql.NullString) (*time.Time, error) {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
