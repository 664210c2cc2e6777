package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"contest-ranking/internal/domain"
)

type ContestRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewContestRepository(db *sql.DB, logger zerolog.Logger) *ContestRepository {
	return &ContestRepository{db: db, logger: logger}
}

func (r *ContestRepository) GetByID(ctx context.Context, id int64) (*domain.Contest, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, slug, title, mode, start_at, end_at, freeze_at, penalty_minutes, created_at, updated_at
		FROM contests WHERE id = ?`, id)

	var c domain.Contest
	var freezeAt sql.NullTime
	err := row.Scan(&c.ID, &c.Slug, &c.Title, &c.Mode, &c.StartAt, &c.EndAt, &freezeAt, &c.PenaltyMinutes, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("contest %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load contest %d: %w", id, err)
	}
	if freezeAt.Valid {
		c.FreezeAt = &freezeAt.Time
	}
	return &c, nil
}

func (r *ContestRepository) ListProblems(ctx context.Context, contestID int64) ([]domain.ContestProblem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT contest_id, problem_id, label, max_points
		FROM contest_problems WHERE contest_id = ? ORDER BY label`, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contest problems: %w", err)
	}
	defer rows.Close()

	var problems []domain.ContestProblem
	for rows.Next() {
		var p domain.ContestProblem
		if err := rows.Scan(&p.ContestID, &p.ProblemID, &p.Label, &p.MaxPoints); err != nil {
			return nil, fmt.Errorf("failed to scan contest problem: %w", err)
		}
		problems = append(problems, p)
	}
	return problems, rows.Err()
}
