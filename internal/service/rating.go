package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"contest-ranking/internal/constants"
	"contest-ranking/internal/domain"
	"contest-ranking/internal/scoring"
)

// RatingService owns rating profile mutation and the rating-change
// lifecycle. Finalizing a contest is idempotent: re-running it first rolls
// back the previous finalize for that contest, then applies fresh deltas,
// all inside one store transaction.
type RatingService struct {
	contests    ContestReader
	subs        SubmissionReader
	leaderboard *LeaderboardService
	ratings     RatingStore
	locks       *ContestLocks
	logger      zerolog.Logger
}

func NewRatingService(contests ContestReader, subs SubmissionReader, leaderboard *LeaderboardService, ratings RatingStore, locks *ContestLocks, logger zerolog.Logger) *RatingService {
	return &RatingService{contests: contests, subs: subs, leaderboard: leaderboard, ratings: ratings, locks: locks, logger: logger}
}

// FinalizeContestRatings diffuses rating across all active participants of a
// rated contest and returns the number of profiles updated.
func (s *RatingService) FinalizeContestRatings(ctx context.Context, contestID int64) (int, error) {
	unlock := s.locks.Lock(contestID)
	defer unlock()

	contest, err := s.contests.GetByID(ctx, contestID)
	if err != nil {
		return 0, err
	}
	if !contest.IsRated() {
		return 0, fmt.Errorf("contest %d is a practice contest: %w", contestID, domain.ErrInvalidState)
	}
	now := time.Now()
	if now.Before(contest.EndAt) {
		return 0, fmt.Errorf("contest %d has not ended yet: %w", contestID, domain.ErrInvalidState)
	}

	// now is past end_at, so the freeze has lifted and the assembled
	// leaderboard reflects the full ledger.
	rows, err := s.leaderboard.AssembleAt(ctx, contestID, now)
	if err != nil {
		return 0, err
	}
	if len(rows) < 2 {
		return 0, fmt.Errorf("contest %d has %d active participants, need at least 2: %w", contestID, len(rows), domain.ErrInvalidState)
	}

	prior, err := s.ratings.ListChanges(ctx, contestID)
	if err != nil {
		return 0, err
	}

	profiles, err := s.loadProfiles(ctx, rows, prior)
	if err != nil {
		return 0, err
	}

	// Undo any previous finalize of this contest in memory first, so the
	// pool below reflects pre-contest ratings and deltas are never applied
	// twice.
	for _, ch := range prior {
		p := profiles[ch.UserID]
		p.CurrentRating = ch.OldRating
		p.Volatility = ch.OldVolatility
		p.ContestsParticipated = decrement(p.ContestsParticipated)
		if ch.Rank == 1 {
			p.ContestsWon = decrement(p.ContestsWon)
		}
		p.RankTier = domain.TierForRating(p.CurrentRating)
		profiles[ch.UserID] = p
	}

	pool := make([]int, len(rows))
	for i, row := range rows {
		pool[i] = profiles[row.UserID].CurrentRating
	}

	changes := make([]domain.RatingChangeRecord, 0, len(rows))
	for i, row := range rows {
		p := profiles[row.UserID]
		oldRating := p.CurrentRating
		oldVolatility := p.Volatility

		expected := scoring.ExpectedRank(i, pool)
		k := scoring.KFactor(p.ContestsParticipated, p.Volatility)
		delta := scoring.RatingDelta(k, expected, row.Rank)
		newRating := scoring.ApplyDelta(oldRating, delta)

		p.CurrentRating = newRating
		if newRating > p.MaxRating {
			p.MaxRating = newRating
		}
		p.Volatility = scoring.NextVolatility(p.Volatility, delta)
		p.RankTier = domain.TierForRating(newRating)
		p.MaxRankTier = domain.MaxTier(p.MaxRankTier, p.RankTier)
		p.ContestsParticipated++
		if row.Rank == 1 {
			p.ContestsWon++
		}
		contestAt := now
		p.LastContestAt = &contestAt

		solvedTotal, err := s.subs.CountDistinctSolved(ctx, row.UserID)
		if err != nil {
			return 0, err
		}
		p.TotalProblemsSolved = solvedTotal
		profiles[row.UserID] = p

		id, err := gonanoid.New()
		if err != nil {
			return 0, fmt.Errorf("failed to generate change id: %w", err)
		}
		changes = append(changes, domain.RatingChangeRecord{
			ID:            id,
			UserID:        row.UserID,
			ContestID:     contestID,
			OldRating:     oldRating,
			NewRating:     newRating,
			Delta:         delta,
			OldVolatility: oldVolatility,
			Rank:          row.Rank,
			SolvedCount:   row.Standing.SolvedCount,
			CreatedAt:     now,
		})

		s.logger.Debug().
			Int64("user_id", row.UserID).
			Int("rank", row.Rank).
			Float64("expected_rank", expected).
			Int("delta", delta).
			Msg("rating delta computed")
	}

	if err := s.ratings.ApplyFinalize(ctx, contestID, sortedProfiles(profiles), changes); err != nil {
		return 0, fmt.Errorf("rating finalize for contest %d failed: %w", contestID, err)
	}

	s.logger.Info().
		Int64("contest_id", contestID).
		Int("updated", len(changes)).
		Bool("rerun", len(prior) > 0).
		Msg("contest ratings finalized")
	return len(changes), nil
}

func (s *RatingService) GetRatingProfile(ctx context.Context, userID int64) (*domain.RatingProfile, error) {
	return s.ratings.GetProfile(ctx, userID)
}

func (s *RatingService) GetRatingHistory(ctx context.Context, userID int64, limit int) ([]domain.RatingChangeRecord, error) {
	if limit <= 0 || limit > constants.MaxHistoryLimit {
		limit = constants.DefaultHistoryLimit
	}
	return s.ratings.ListHistory(ctx, userID, limit)
}

func (s *RatingService) GlobalLeaderboard(ctx context.Context, limit, offset int) ([]domain.RatingProfile, error) {
	if limit <= 0 || limit > constants.MaxLeaderboardLimit {
		limit = constants.DefaultLeaderboardLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.ratings.GlobalLeaderboard(ctx, limit, offset)
}

// loadProfiles fetches every profile touched by this finalize: current
// participants plus anyone in the rows being rolled back. First-time
// participants get fresh default profiles.
func (s *RatingService) loadProfiles(ctx context.Context, rows []domain.LeaderboardRow, prior []domain.RatingChangeRecord) (map[int64]domain.RatingProfile, error) {
	ids := make([]int64, 0, len(rows)+len(prior))
	seen := make(map[int64]struct{}, len(rows)+len(prior))
	add := func(id int64) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for _, row := range rows {
		add(row.UserID)
	}
	for _, ch := range prior {
		add(ch.UserID)
	}

	stored, err := s.ratings.GetProfiles(ctx, ids)
	if err != nil {
		return nil, err
	}

	profiles := make(map[int64]domain.RatingProfile, len(ids))
	for _, id := range ids {
		if p, ok := stored[id]; ok {
			profiles[id] = p
			continue
		}
		profiles[id] = newRatingProfile(id)
	}
	return profiles, nil
}

func newRatingProfile(userID int64) domain.RatingProfile {
	tier := domain.TierForRating(scoring.InitialRating)
	return domain.RatingProfile{
		UserID:        userID,
		CurrentRating: scoring.InitialRating,
		MaxRating:     scoring.InitialRating,
		RankTier:      tier,
		MaxRankTier:   tier,
		Volatility:    scoring.BaseVolatility,
	}
}

func sortedProfiles(profiles map[int64]domain.RatingProfile) []domain.RatingProfile {
	out := make([]domain.RatingProfile, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

func decrement(n int) int {
	if n <= 0 {
		return 0
	}
	return n - 1
}
