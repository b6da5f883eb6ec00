package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/viant/offboard/internal/clock"
	"github.com/viant/offboard/model"
	"github.com/viant/offboard/service/dao"
	_ "modernc.org/sqlite"
)

const columns = "id, employee_name, employee_email, team_leader, regional_head, joining_date, last_working_day, " +
	"submitted_at, resignation_status, interview_status, interview_scheduled_at, interview_notes, " +
	"leader_reply, leader_notes, regional_reply, regional_notes, it_reply, " +
	"assets_cleared, medical_collected, vendor_notified, created_at, updated_at"

const mutableColumns = "team_leader = ?, regional_head = ?, joining_date = ?, last_working_day = ?, " +
	"resignation_status = ?, interview_status = ?, interview_scheduled_at = ?, interview_notes = ?, " +
	"leader_reply = ?, leader_notes = ?, regional_reply = ?, regional_notes = ?, it_reply = ?, " +
	"assets_cleared = ?, medical_collected = ?, vendor_notified = ?, updated_at = ?"

// Repository implements dao.Repository on database/sql. Update runs in a
// transaction guarded by the status column.
type Repository struct {
	db      *sql.DB
	dialect *Dialect
}

var _ dao.Repository = (*Repository)(nil)

func (r *Repository) Create(ctx context.Context, s *model.Submission) (int, error) {
	record, err := dao.Prepare(s, clock.Now())
	if err != nil {
		return 0, err
	}
	insertColumns := strings.TrimPrefix(columns, "id, ")
	query := "INSERT INTO submissions (" + insertColumns + ") VALUES (" +
		strings.TrimSuffix(strings.Repeat("?, ", 21), ", ") + ") RETURNING id"
	var id int64
	err = r.db.QueryRowContext(ctx, r.dialect.Rebind(query), insertArgs(record)...).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert submission: %w", err)
	}
	s.ID = int(id)
	return s.ID, nil
}

func (r *Repository) Get(ctx context.Context, id int) (*model.Submission, error) {
	if id <= 0 {
		return nil, dao.ErrInvalidID
	}
	return r.get(ctx, r.db, id)
}

func (r *Repository) Update(ctx context.Context, id int, expected model.ResignationStatus, mutate dao.Mutator) (*model.Submission, error) {
	if id <= 0 {
		return nil, dao.ErrInvalidID
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := r.get(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	next, err := dao.Mutate(current, expected, mutate, clock.Now())
	if err != nil {
		return nil, err
	}
	query := "UPDATE submissions SET " + mutableColumns + " WHERE id = ? AND resignation_status = ?"
	args := append(updateArgs(next), id, string(expected))
	result, err := tx.ExecContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update submission %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to update submission %d: %w", id, err)
	}
	if affected == 0 {
		return nil, dao.ErrConflict
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit submission %d: %w", id, err)
	}
	return next, nil
}

func (r *Repository) LatestByEmail(ctx context.Context, email string) (*model.Submission, error) {
	query := "SELECT " + columns + " FROM submissions WHERE LOWER(employee_email) = LOWER(?) ORDER BY submitted_at DESC, id DESC LIMIT 1"
	row := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), email)
	ret, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dao.ErrNotFound
	}
	return ret, err
}

func (r *Repository) List(ctx context.Context, parameters ...*dao.Parameter) ([]*model.Submission, error) {
	query := "SELECT " + columns + " FROM submissions"
	var conditions []string
	var args []interface{}
	for _, parameter := range parameters {
		if parameter == nil {
			continue
		}
		column := ""
		switch parameter.Name {
		case dao.ParamStatus:
			column = "resignation_status"
		case dao.ParamEmail:
			column = "LOWER(employee_email)"
		default:
			continue
		}
		values := parameterValues(parameter.Value)
		if len(values) == 0 {
			continue
		}
		placeholders := make([]string, len(values))
		for i, value := range values {
			placeholders[i] = "?"
			if parameter.Name == dao.ParamEmail {
				value = strings.ToLower(value)
			}
			args = append(args, value)
		}
		conditions = append(conditions, column+" IN ("+strings.Join(placeholders, ", ")+")")
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()
	var result []*model.Submission
	for rows.Next() {
		submission, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, submission)
	}
	return result, rows.Err()
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (r *Repository) get(ctx context.Context, q queryer, id int) (*model.Submission, error) {
	query := "SELECT " + columns + " FROM submissions WHERE id = ?"
	ret, err := scan(q.QueryRowContext(ctx, r.dialect.Rebind(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dao.ErrNotFound
	}
	return ret, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scan(row scanner) (*model.Submission, error) {
	var (
		ret                                           model.Submission
		id                                            int64
		joining, lastDay, submitted, created, updated int64
		status, interviewStatus                       string
		scheduledAt                                   sql.NullInt64
		leaderReply, regionalReply, itReply           sql.NullBool
	)
	err := row.Scan(&id, &ret.EmployeeName, &ret.EmployeeEmail, &ret.TeamLeader, &ret.RegionalHead,
		&joining, &lastDay, &submitted, &status, &interviewStatus, &scheduledAt, &ret.InterviewNotes,
		&leaderReply, &ret.LeaderNotes, &regionalReply, &ret.RegionalNotes, &itReply,
		&ret.AssetsCleared, &ret.MedicalCollected, &ret.VendorNotified, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan submission: %w", err)
	}
	ret.ID = int(id)
	ret.JoiningDate = fromUnix(joining)
	ret.LastWorkingDay = fromUnix(lastDay)
	ret.SubmittedAt = fromUnix(submitted)
	ret.CreatedAt = fromUnix(created)
	ret.UpdatedAt = fromUnix(updated)
	ret.Status = model.ResignationStatus(status)
	ret.InterviewStatus = model.InterviewStatus(interviewStatus)
	if scheduledAt.Valid {
		at := fromUnix(scheduledAt.Int64)
		ret.InterviewScheduledAt = &at
	}
	ret.LeaderReply = replyOf(leaderReply)
	ret.RegionalReply = replyOf(regionalReply)
	ret.ITReply = replyOf(itReply)
	return &ret, nil
}

func insertArgs(s *model.Submission) []interface{} {
	return []interface{}{
		s.EmployeeName, s.EmployeeEmail, s.TeamLeader, s.RegionalHead,
		toUnix(s.JoiningDate), toUnix(s.LastWorkingDay), toUnix(s.SubmittedAt),
		string(s.Status), string(s.InterviewStatus), nullTime(s.InterviewScheduledAt), s.InterviewNotes,
		nullReply(s.LeaderReply), s.LeaderNotes, nullReply(s.RegionalReply), s.RegionalNotes, nullReply(s.ITReply),
		s.AssetsCleared, s.MedicalCollected, s.VendorNotified, toUnix(s.CreatedAt), toUnix(s.UpdatedAt),
	}
}

func updateArgs(s *model.Submission) []interface{} {
	return []interface{}{
		s.TeamLeader, s.RegionalHead, toUnix(s.JoiningDate), toUnix(s.LastWorkingDay),
		string(s.Status), string(s.InterviewStatus), nullTime(s.InterviewScheduledAt), s.InterviewNotes,
		nullReply(s.LeaderReply), s.LeaderNotes, nullReply(s.RegionalReply), s.RegionalNotes, nullReply(s.ITReply),
		s.AssetsCleared, s.MedicalCollected, s.VendorNotified, toUnix(s.UpdatedAt),
	}
}

func parameterValues(value interface{}) []string {
	switch actual := value.(type) {
	case string:
		return []string{actual}
	case []string:
		return actual
	}
	return nil
}

func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func fromUnix(v int64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.Unix(v, 0).UTC()
}

func nullTime(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func nullReply(r model.Reply) sql.NullBool {
	approved, set := r.Bool()
	return sql.NullBool{Bool: approved, Valid: set}
}

func replyOf(v sql.NullBool) model.Reply {
	if !v.Valid {
		return model.ReplyUnset
	}
	return model.ReplyOf(v.Bool)
}

// New creates a repository over an open database
func New(db *sql.DB, dialect *Dialect) *Repository {
	if dialect == nil {
		dialect = SQLite
	}
	return &Repository{db: db, dialect: dialect}
}

// Open connects to dsn with the dialect driver and ensures the schema exists
func Open(ctx context.Context, dialectName, dsn string) (*Repository, error) {
	dialect, err := DialectOf(dialectName)
	if err != nil {
		return nil, err
	}
	if dialect == SQLite {
		dsn = sqliteDSN(dsn)
	}
	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %v database: %w", dialect.Name, err)
	}
	if dialect == SQLite && strings.Contains(dsn, ":memory:") {
		// every connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}
	ret := New(db, dialect)
	if err = ret.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return ret, nil
}

// sqliteDSN makes write transactions take the database lock on BEGIN and wait
// for it, so a losing concurrent update re-reads the committed status and
// fails with ErrConflict instead of SQLITE_BUSY.
func sqliteDSN(dsn string) string {
	var params []string
	if !strings.Contains(dsn, "_txlock=") {
		params = append(params, "_txlock=immediate")
	}
	if !strings.Contains(dsn, "busy_timeout") {
		params = append(params, "_pragma=busy_timeout(5000)")
	}
	if len(params) == 0 {
		return dsn
	}
	separator := "?"
	if strings.Contains(dsn, "?") {
		separator = "&"
	}
	return dsn + separator + strings.Join(params, "&")
}

// Migrate creates the submissions table when missing
func (r *Repository) Migrate(ctx context.Context) error {
	for _, statement := range strings.Split(r.dialect.Schema, ";") {
		if strings.TrimSpace(statement) == "" {
			continue
		}
		if _, err := r.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("failed to migrate %v schema: %w", r.dialect.Name, err)
		}
	}
	return nil
}

// Close closes the underlying database
func (r *Repository) Close() error {
	return r.db.Close()
}
