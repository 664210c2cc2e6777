package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"contest-ranking/internal/constants"
	"contest-ranking/internal/domain"
	"contest-ranking/internal/scoring"
)

// StandingService computes participant standings from the submission ledger.
// Stored standing rows are treated as a cache: every read path recomputes
// from the ledger, and recovery from any inconsistency is always a full
// recompute, never a row patch.
type StandingService struct {
	contests  ContestReader
	subs      SubmissionReader
	standings StandingStore
	locks     *ContestLocks
	logger    zerolog.Logger
}

func NewStandingService(contests ContestReader, subs SubmissionReader, standings StandingStore, locks *ContestLocks, logger zerolog.Logger) *StandingService {
	return &StandingService{contests: contests, subs: subs, standings: standings, locks: locks, logger: logger}
}

// GetStanding derives one user's current standing. The result reflects the
// freeze rule as of now.
func (s *StandingService) GetStanding(ctx context.Context, contestID, userID int64) (*domain.ParticipantStanding, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	contest, err := s.contests.GetByID(ctx, contestID)
	if err != nil {
		return nil, err
	}
	problems, err := s.contests.ListProblems(ctx, contestID)
	if err != nil {
		return nil, err
	}
	records, err := s.subs.ListByContestUser(ctx, contestID, userID)
	if err != nil {
		return nil, err
	}

	standing := scoring.ForMode(contest.Mode).Compute(contest, problems, userID, records, time.Now())
	return &standing, nil
}

// RefreshUserStanding recomputes and persists a single user's standing,
// creating the participant row on first sight. This is the post-submission
// path driven by judge ingest.
func (s *StandingService) RefreshUserStanding(ctx context.Context, contestID, userID int64, displayName string) error {
	unlock := s.locks.Lock(contestID)
	defer unlock()

	contest, err := s.contests.GetByID(ctx, contestID)
	if err != nil {
		return err
	}
	problems, err := s.contests.ListProblems(ctx, contestID)
	if err != nil {
		return err
	}
	participant, err := s.standings.GetOrCreateParticipant(ctx, contestID, userID, displayName)
	if err != nil {
		return err
	}
	records, err := s.subs.ListByContestUser(ctx, contestID, userID)
	if err != nil {
		return err
	}

	standing := scoring.ForMode(contest.Mode).Compute(contest, problems, userID, records, time.Now())
	standing.IsActive = participant.IsActive

	if err := s.standings.UpsertStandings(ctx, []domain.ParticipantStanding{standing}); err != nil {
		return err
	}

	s.logger.Debug().
		Int64("contest_id", contestID).
		Int64("user_id", userID).
		Int("solved", standing.SolvedCount).
		Msg("standing refreshed")
	return nil
}

// RecalculateAllStandings recomputes every active participant from a single
// batch fetch of the contest ledger and persists the results in one
// transaction. Returns the number of standings written.
func (s *StandingService) RecalculateAllStandings(ctx context.Context, contestID int64) (int, error) {
	unlock := s.locks.Lock(contestID)
	defer unlock()

	contest, err := s.contests.GetByID(ctx, contestID)
	if err != nil {
		return 0, err
	}
	problems, err := s.contests.ListProblems(ctx, contestID)
	if err != nil {
		return 0, err
	}
	participants, err := s.standings.ListActiveParticipants(ctx, contestID)
	if err != nil {
		return 0, err
	}
	if len(participants) == 0 {
		return 0, nil
	}

	ledger, err := s.subs.ListByContest(ctx, contestID)
	if err != nil {
		return 0, err
	}
	byUser := groupByUser(ledger)

	strategy := scoring.ForMode(contest.Mode)
	now := time.Now()
	results := make([]domain.ParticipantStanding, len(participants))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(constants.RecomputeParallelism)
	for i, p := range participants {
		g.Go(func() error {
			standing := strategy.Compute(contest, problems, p.UserID, byUser[p.UserID], now)
			standing.IsActive = p.IsActive
			results[i] = standing
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	if err := s.standings.UpsertStandings(ctx, results); err != nil {
		return 0, err
	}

	s.logger.Info().
		Int64("contest_id", contestID).
		Int("participants", len(results)).
		Msg("standings recalculated")
	return len(results), nil
}

func groupByUser(subs []domain.SubmissionRecord) map[int64][]domain.SubmissionRecord {
	grouped := make(map[int64][]domain.SubmissionRecord)
	for _, rec := range subs {
		grouped[rec.UserID] = append(grouped[rec.UserID], rec)
	}
	return grouped
}
