package service

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"contest-ranking/internal/domain"
	"contest-ranking/internal/scoring"
)

// LeaderboardService assembles the ordered scoreboard for a contest:
// standings computed fresh from the ledger, ordered by the mode's
// comparator, with dense ranks and a per-problem breakdown.
//
// Ranks are 1..N in comparator order and equal-key rows are never collapsed
// onto a shared rank; the comparator order itself is the tie-break. This is
// a deliberate policy, not an artifact of the sort.
type LeaderboardService struct {
	contests  ContestReader
	subs      SubmissionReader
	standings StandingStore
	logger    zerolog.Logger
}

func NewLeaderboardService(contests ContestReader, subs SubmissionReader, standings StandingStore, logger zerolog.Logger) *LeaderboardService {
	return &LeaderboardService{contests: contests, subs: subs, standings: standings, logger: logger}
}

func (s *LeaderboardService) GetLeaderboard(ctx context.Context, contestID int64) ([]domain.LeaderboardRow, error) {
	return s.AssembleAt(ctx, contestID, time.Now())
}

// AssembleAt builds the leaderboard as of a given instant, which determines
// freeze visibility. One ledger query serves every participant.
func (s *LeaderboardService) AssembleAt(ctx context.Context, contestID int64, now time.Time) ([]domain.LeaderboardRow, error) {
	contest, err := s.contests.GetByID(ctx, contestID)
	if err != nil {
		return nil, err
	}
	problems, err := s.contests.ListProblems(ctx, contestID)
	if err != nil {
		return nil, err
	}
	participants, err := s.standings.ListActiveParticipants(ctx, contestID)
	if err != nil {
		return nil, err
	}
	if len(participants) == 0 {
		return []domain.LeaderboardRow{}, nil
	}

	ledger, err := s.subs.ListByContest(ctx, contestID)
	if err != nil {
		return nil, err
	}
	byUser := groupByUser(ledger)

	strategy := scoring.ForMode(contest.Mode)
	entries := make([]scoreboardEntry, 0, len(participants))
	for _, p := range participants {
		userSubs := byUser[p.UserID]
		standing := strategy.Compute(contest, problems, p.UserID, userSubs, now)
		standing.IsActive = p.IsActive
		entries = append(entries, scoreboardEntry{
			displayName: p.DisplayName,
			standing:    standing,
			attempted:   attemptedCount(contest, userSubs),
			subs:        userSubs,
		})
	}

	sort.SliceStable(entries, lessFor(contest.Mode, entries))

	rows := make([]domain.LeaderboardRow, 0, len(entries))
	for i, e := range entries {
		row := domain.LeaderboardRow{
			Rank:        i + 1,
			UserID:      e.standing.UserID,
			DisplayName: e.displayName,
			Standing:    e.standing,
		}
		// The per-problem view only makes sense where a problem is binary
		// solved/unsolved; OI scoreboards show the cumulative score alone.
		if contest.Mode != domain.ModeOI {
			row.Problems = scoring.ProblemBreakdowns(contest, problems, e.subs, now)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type scoreboardEntry struct {
	displayName string
	standing    domain.ParticipantStanding
	attempted   int
	subs        []domain.SubmissionRecord
}

func lessFor(mode domain.ContestMode, entries []scoreboardEntry) func(i, j int) bool {
	switch mode {
	case domain.ModeICPC:
		return func(i, j int) bool {
			a, b := entries[i], entries[j]
			if a.standing.SolvedCount != b.standing.SolvedCount {
				return a.standing.SolvedCount > b.standing.SolvedCount
			}
			if a.standing.PenaltySeconds != b.standing.PenaltySeconds {
				return a.standing.PenaltySeconds < b.standing.PenaltySeconds
			}
			if c := compareLastSubmission(a.standing.LastSubmissionAt, b.standing.LastSubmissionAt); c != 0 {
				return c < 0
			}
			return a.standing.UserID < b.standing.UserID
		}
	case domain.ModeOI:
		return func(i, j int) bool {
			a, b := entries[i], entries[j]
			if c := a.standing.TotalScore.Cmp(b.standing.TotalScore); c != 0 {
				return c > 0
			}
			if c := compareLastSubmission(a.standing.LastSubmissionAt, b.standing.LastSubmissionAt); c != 0 {
				return c < 0
			}
			return a.standing.UserID < b.standing.UserID
		}
	default: // practice
		return func(i, j int) bool {
			a, b := entries[i], entries[j]
			if a.standing.SolvedCount != b.standing.SolvedCount {
				return a.standing.SolvedCount > b.standing.SolvedCount
			}
			if a.attempted != b.attempted {
				return a.attempted < b.attempted
			}
			if a.displayName != b.displayName {
				return a.displayName < b.displayName
			}
			return a.standing.UserID < b.standing.UserID
		}
	}
}

// compareLastSubmission orders earlier-is-better; a participant with no
// submissions sorts after one with any.
func compareLastSubmission(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case a.Before(*b):
		return -1
	case a.After(*b):
		return 1
	default:
		return 0
	}
}

// attemptedCount is the practice-mode tie-break: distinct problems touched
// inside the contest window, fewer is better.
func attemptedCount(c *domain.Contest, subs []domain.SubmissionRecord) int {
	problems := make(map[int64]struct{})
	for _, rec := range subs {
		if rec.SubmittedAt.Before(c.StartAt) || rec.SubmittedAt.After(c.EndAt) {
			continue
		}
		problems[rec.ProblemID] = struct{}{}
	}
	return len(problems)
}
