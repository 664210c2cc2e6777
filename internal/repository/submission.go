package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"contest-ranking/internal/domain"
)

// SubmissionRepository holds the ledger of judged submissions. The ledger is
// append-only: rows are inserted once and never updated.
type SubmissionRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewSubmissionRepository(db *sql.DB, logger zerolog.Logger) *SubmissionRepository {
	return &SubmissionRepository{db: db, logger: logger}
}

// InsertBatch appends judged submissions, silently skipping ids already in
// the ledger so re-delivering a judge batch is harmless. Returns the number
// of new rows.
func (r *SubmissionRepository) InsertBatch(ctx context.Context, records []domain.SubmissionRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	inserted := 0
	for _, rec := range records {
		res, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO submissions
				(id, contest_id, user_id, problem_id, verdict, test_passed, test_total, submitted_at, judged_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.ContestID, rec.UserID, rec.ProblemID, string(rec.Verdict),
			nullableInt(rec.TestPassed), nullableInt(rec.TestTotal), rec.SubmittedAt, rec.JudgedAt)
		if err != nil {
			return 0, fmt.Errorf("failed to insert submission %s: %w", rec.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit submissions: %w", err)
	}
	return inserted, nil
}

// ListByContest fetches the whole contest ledger in one query; callers group
// by user and problem in memory.
func (r *SubmissionRepository) ListByContest(ctx context.Context, contestID int64) ([]domain.SubmissionRecord, error) {
	return r.list(ctx, `
		SELECT id, contest_id, user_id, problem_id, verdict, test_passed, test_total, submitted_at, judged_at
		FROM submissions WHERE contest_id = ? ORDER BY submitted_at, id`, contestID)
}

func (r *SubmissionRepository) ListByContestUser(ctx context.Context, contestID, userID int64) ([]domain.SubmissionRecord, error) {
	return r.list(ctx, `
		SELECT id, contest_id, user_id, problem_id, verdict, test_passed, test_total, submitted_at, judged_at
		FROM submissions WHERE contest_id = ? AND user_id = ? ORDER BY submitted_at, id`, contestID, userID)
}

// CountDistinctSolved counts distinct accepted problems across all contests.
func (r *SubmissionRepository) CountDistinctSolved(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT problem_id) FROM submissions WHERE user_id = ? AND verdict = ?`,
		userID, string(domain.VerdictAccepted)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count solved problems: %w", err)
	}
	return count, nil
}

// LatestJudgedAt returns the high-water mark for the judge ingest cursor.
func (r *SubmissionRepository) LatestJudgedAt(ctx context.Context) (time.Time, error) {
	var latest sql.NullTime
	err := r.db.QueryRowContext(ctx, `SELECT MAX(judged_at) FROM submissions`).Scan(&latest)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read ingest cursor: %w", err)
	}
	if !latest.Valid {
		return time.Time{}, nil
	}
	return latest.Time, nil
}

func (r *SubmissionRepository) list(ctx context.Context, query string, args ...any) ([]domain.SubmissionRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var records []domain.SubmissionRecord
	for rows.Next() {
		var rec domain.SubmissionRecord
		var verdict string
		var passed, total sql.NullInt64
		if err := rows.Scan(&rec.ID, &rec.ContestID, &rec.UserID, &rec.ProblemID, &verdict, &passed, &total, &rec.SubmittedAt, &rec.JudgedAt); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		rec.Verdict = domain.Verdict(verdict)
		rec.TestPassed = intPtr(passed)
		rec.TestTotal = intPtr(total)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
