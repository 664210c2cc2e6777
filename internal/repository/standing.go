package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"contest-ranking/internal/domain"
)

// StandingRepository persists contest participants together with their
// cached standing columns. Standing columns are never patched in place from
// a delta; they are only ever replaced wholesale with a freshly computed
// standing.
type StandingRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewStandingRepository(db *sql.DB, logger zerolog.Logger) *StandingRepository {
	return &StandingRepository{db: db, logger: logger}
}

func (r *StandingRepository) GetOrCreateParticipant(ctx context.Context, contestID, userID int64, displayName string) (*domain.Participant, error) {
	if displayName == "" {
		displayName = fmt.Sprintf("user-%d", userID)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO contest_participants (contest_id, user_id, display_name, is_active, created_at, updated_at)
		VALUES (?, ?, ?, 1, ?, ?)
		ON CONFLICT (contest_id, user_id) DO NOTHING`,
		contestID, userID, displayName, time.Now(), time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to create participant: %w", err)
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT contest_id, user_id, display_name, is_active, created_at
		FROM contest_participants WHERE contest_id = ? AND user_id = ?`, contestID, userID)

	var p domain.Participant
	if err := row.Scan(&p.ContestID, &p.UserID, &p.DisplayName, &p.IsActive, &p.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to load participant: %w", err)
	}
	return &p, nil
}

func (r *StandingRepository) ListActiveParticipants(ctx context.Context, contestID int64) ([]domain.Participant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT contest_id, user_id, display_name, is_active, created_at
		FROM contest_participants WHERE contest_id = ? AND is_active = 1 ORDER BY user_id`, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []domain.Participant
	for rows.Next() {
		var p domain.Participant
		if err := rows.Scan(&p.ContestID, &p.UserID, &p.DisplayName, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

// UpsertStandings replaces the cached standing columns for every given
// participant in one transaction.
func (r *StandingRepository) UpsertStandings(ctx context.Context, standings []domain.ParticipantStanding) error {
	if len(standings) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, s := range standings {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO contest_participants
				(contest_id, user_id, display_name, is_active, solved_count, total_score, penalty_seconds, last_submission_at, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (contest_id, user_id) DO UPDATE SET
				solved_count = excluded.solved_count,
				total_score = excluded.total_score,
				penalty_seconds = excluded.penalty_seconds,
				last_submission_at = excluded.last_submission_at,
				updated_at = excluded.updated_at`,
			s.ContestID, s.UserID, fmt.Sprintf("user-%d", s.UserID), s.IsActive,
			s.SolvedCount, s.TotalScore.String(), s.PenaltySeconds, nullableTime(s.LastSubmissionAt), now, now)
		if err != nil {
			return fmt.Errorf("failed to upsert standing for user %d: %w", s.UserID, err)
		}
	}

	return tx.Commit()
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
