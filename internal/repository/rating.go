package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"contest-ranking/internal/domain"
)

// RatingRepository persists rating profiles and the append-only history of
// per-contest rating changes.
type RatingRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewRatingRepository(db *sql.DB, logger zerolog.Logger) *RatingRepository {
	return &RatingRepository{db: db, logger: logger}
}

func (r *RatingRepository) GetProfile(ctx context.Context, userID int64) (*domain.RatingProfile, error) {
	row := r.db.QueryRowContext(ctx, profileSelect+` WHERE user_id = ?`, userID)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("rating profile for user %d: %w", userID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load rating profile: %w", err)
	}
	return p, nil
}

func (r *RatingRepository) GetProfiles(ctx context.Context, userIDs []int64) (map[int64]domain.RatingProfile, error) {
	profiles := make(map[int64]domain.RatingProfile, len(userIDs))
	if len(userIDs) == 0 {
		return profiles, nil
	}

	placeholders := strings.TrimRight(strings.Repeat("?,", len(userIDs)), ",")
	args := make([]any, len(userIDs))
	for i, id := range userIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, profileSelect+` WHERE user_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load rating profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rating profile: %w", err)
		}
		profiles[p.UserID] = *p
	}
	return profiles, rows.Err()
}

func (r *RatingRepository) ListChanges(ctx context.Context, contestID int64) ([]domain.RatingChangeRecord, error) {
	return r.listChanges(ctx, `
		SELECT id, user_id, contest_id, old_rating, new_rating, delta, old_volatility, rank_in_contest, solved_count, created_at
		FROM rating_changes WHERE contest_id = ? ORDER BY rank_in_contest`, contestID)
}

func (r *RatingRepository) ListHistory(ctx context.Context, userID int64, limit int) ([]domain.RatingChangeRecord, error) {
	return r.listChanges(ctx, `
		SELECT id, user_id, contest_id, old_rating, new_rating, delta, old_volatility, rank_in_contest, solved_count, created_at
		FROM rating_changes WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`, userID, limit)
}

func (r *RatingRepository) GlobalLeaderboard(ctx context.Context, limit, offset int) ([]domain.RatingProfile, error) {
	rows, err := r.db.QueryContext(ctx, profileSelect+`
		ORDER BY current_rating DESC, max_rating DESC, user_id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to load rating leaderboard: %w", err)
	}
	defer rows.Close()

	var profiles []domain.RatingProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rating profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

// ApplyFinalize commits one contest's rating finalize as a single unit:
// every touched profile is written, the contest's previous change rows are
// deleted and the new ones inserted. Any failure rolls the whole thing back.
func (r *RatingRepository) ApplyFinalize(ctx context.Context, contestID int64, profiles []domain.RatingProfile, changes []domain.RatingChangeRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, p := range profiles {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO rating_profiles
				(user_id, current_rating, max_rating, rank_tier, max_rank_tier,
				 contests_participated, contests_won, total_problems_solved, volatility, last_contest_at, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (user_id) DO UPDATE SET
				current_rating = excluded.current_rating,
				max_rating = excluded.max_rating,
				rank_tier = excluded.rank_tier,
				max_rank_tier = excluded.max_rank_tier,
				contests_participated = excluded.contests_participated,
				contests_won = excluded.contests_won,
				total_problems_solved = excluded.total_problems_solved,
				volatility = excluded.volatility,
				last_contest_at = excluded.last_contest_at,
				updated_at = excluded.updated_at`,
			p.UserID, p.CurrentRating, p.MaxRating, string(p.RankTier), string(p.MaxRankTier),
			p.ContestsParticipated, p.ContestsWon, p.TotalProblemsSolved, p.Volatility,
			nullableTime(p.LastContestAt), now, now)
		if err != nil {
			return fmt.Errorf("failed to upsert rating profile for user %d: %w", p.UserID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM rating_changes WHERE contest_id = ?`, contestID); err != nil {
		return fmt.Errorf("failed to delete stale rating changes: %w", err)
	}

	for _, ch := range changes {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO rating_changes
				(id, user_id, contest_id, old_rating, new_rating, delta, old_volatility, rank_in_contest, solved_count, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			ch.ID, ch.UserID, ch.ContestID, ch.OldRating, ch.NewRating, ch.Delta, ch.OldVolatility, ch.Rank, ch.SolvedCount, ch.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert rating change for user %d: %w", ch.UserID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rating finalize: %w", err)
	}

	r.logger.Info().
		Int64("contest_id", contestID).
		Int("profiles", len(profiles)).
		Int("changes", len(changes)).
		Msg("rating finalize committed")
	return nil
}

const profileSelect = `
	SELECT user_id, current_rating, max_rating, rank_tier, max_rank_tier,
	       contests_participated, contests_won, total_problems_solved, volatility, last_contest_at, created_at, updated_at
	FROM rating_profiles`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*domain.RatingProfile, error) {
	var p domain.RatingProfile
	var tier, maxTier string
	var lastContest sql.NullTime
	err := row.Scan(&p.UserID, &p.CurrentRating, &p.MaxRating, &tier, &maxTier,
		&p.ContestsParticipated, &p.ContestsWon, &p.TotalProblemsSolved, &p.Volatility, &lastContest, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.RankTier = domain.RankTier(tier)
	p.MaxRankTier = domain.RankTier(maxTier)
	if lastContest.Valid {
		p.LastContestAt = &lastContest.Time
	}
	return &p, nil
}

func (r *RatingRepository) listChanges(ctx context.Context, query string, args ...any) ([]domain.RatingChangeRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rating changes: %w", err)
	}
	defer rows.Close()

	var changes []domain.RatingChangeRecord
	for rows.Next() {
		var ch domain.RatingChangeRecord
		if err := rows.Scan(&ch.ID, &ch.UserID, &ch.ContestID, &ch.OldRating, &ch.NewRating, &ch.Delta, &ch.OldVolatility, &ch.Rank, &ch.SolvedCount, &ch.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rating change: %w", err)
		}
		changes = append(changes, ch)
	}
	return changes, rows.Err()
}
