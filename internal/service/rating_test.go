package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contest-ranking/internal/domain"
	"contest-ranking/internal/scoring"
)

type ratingFixture struct {
	contests  *fakeContestStore
	subs      *fakeSubmissionStore
	standings *fakeStandingStore
	ratings   *fakeRatingStore
	svc       *RatingService
}

func newRatingFixture(mode domain.ContestMode) *ratingFixture {
	contests := newFakeContestStore()
	contests.contests[7] = fixtureContest(mode)
	contests.problems[7] = []domain.ContestProblem{
		{ContestID: 7, ProblemID: 1, Label: "A", MaxPoints: 100},
		{ContestID: 7, ProblemID: 2, Label: "B", MaxPoints: 100},
	}
	subs := &fakeSubmissionStore{}
	standings := newFakeStandingStore()
	ratings := newFakeRatingStore()
	locks := NewContestLocks()
	leaderboard := NewLeaderboardService(contests, subs, standings, zerolog.Nop())
	return &ratingFixture{
		contests:  contests,
		subs:      subs,
		standings: standings,
		ratings:   ratings,
		svc:       NewRatingService(contests, subs, leaderboard, ratings, locks, zerolog.Nop()),
	}
}

// Three first-timers at the default rating: winner gains, loser drops, the
// middle finisher lands exactly on the expected rank and keeps their rating.
func TestFinalizeSymmetricPool(t *testing.T) {
	f := newRatingFixture(domain.ModeICPC)
	f.standings.addParticipant(7, 1, "alice")
	f.standings.addParticipant(7, 2, "bob")
	f.standings.addParticipant(7, 3, "carol")
	f.subs.records = []domain.SubmissionRecord{
		testSub(1, 1, domain.VerdictAccepted, 10),
		testSub(1, 2, domain.VerdictAccepted, 50),
		testSub(2, 1, domain.VerdictAccepted, 30),
		testSub(3, 1, domain.VerdictWrongAnswer, 40),
	}

	updated, err := f.svc.FinalizeContestRatings(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 3, updated)

	winner := f.ratings.profiles[1]
	middle := f.ratings.profiles[2]
	loser := f.ratings.profiles[3]

	assert.Greater(t, winner.CurrentRating, scoring.InitialRating)
	assert.Equal(t, scoring.InitialRating, middle.CurrentRating)
	assert.Less(t, loser.CurrentRating, scoring.InitialRating)

	assert.Equal(t, 1, winner.ContestsWon)
	assert.Equal(t, 0, middle.ContestsWon)
	for _, p := range []domain.RatingProfile{winner, middle, loser} {
		assert.Equal(t, 1, p.ContestsParticipated)
		assert.NotNil(t, p.LastContestAt)
	}

	assert.Equal(t, winner.CurrentRating, winner.MaxRating)
	assert.Equal(t, scoring.InitialRating, loser.MaxRating, "max rating never drops")
}

func TestFinalizeIsIdempotent(t *testing.T) {
	f := newRatingFixture(domain.ModeICPC)
	f.standings.addParticipant(7, 1, "alice")
	f.standings.addParticipant(7, 2, "bob")
	f.subs.records = []domain.SubmissionRecord{
		testSub(1, 1, domain.VerdictAccepted, 10),
		testSub(2, 1, domain.VerdictWrongAnswer, 20),
	}

	_, err := f.svc.FinalizeContestRatings(context.Background(), 7)
	require.NoError(t, err)
	first := make(map[int64]domain.RatingProfile, len(f.ratings.profiles))
	for id, p := range f.ratings.profiles {
		first[id] = p
	}

	_, err = f.svc.FinalizeContestRatings(context.Background(), 7)
	require.NoError(t, err)

	require.Equal(t, 2, f.ratings.finalizeCalls)
	for id, p := range f.ratings.profiles {
		assert.Equal(t, first[id].CurrentRating, p.CurrentRating, "user %d rating drifted on rerun", id)
		assert.InDelta(t, first[id].Volatility, p.Volatility, 1e-9, "user %d volatility drifted on rerun", id)
		assert.Equal(t, first[id].ContestsParticipated, p.ContestsParticipated)
		assert.Equal(t, first[id].ContestsWon, p.ContestsWon)
	}

	changes, err := f.ratings.ListChanges(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, changes, 2, "rerun replaces change rows instead of stacking them")
	for _, ch := range changes {
		assert.Equal(t, scoring.InitialRating, ch.OldRating, "rerun starts from pre-contest rating")
		assert.InDelta(t, scoring.BaseVolatility, ch.OldVolatility, 1e-9, "rerun starts from pre-contest volatility")
		assert.Equal(t, ch.OldRating+ch.Delta, ch.NewRating)
	}
}

// A rerun after the volatility has already decayed must roll the volatility
// back too, otherwise the K-factor shrinks and the deltas drift.
func TestFinalizeRerunRestoresVolatility(t *testing.T) {
	f := newRatingFixture(domain.ModeICPC)
	f.standings.addParticipant(7, 1, "alice")
	f.standings.addParticipant(7, 2, "bob")
	f.subs.records = []domain.SubmissionRecord{
		testSub(1, 1, domain.VerdictAccepted, 10),
		testSub(2, 1, domain.VerdictWrongAnswer, 20),
	}

	_, err := f.svc.FinalizeContestRatings(context.Background(), 7)
	require.NoError(t, err)
	firstChanges, err := f.ratings.ListChanges(context.Background(), 7)
	require.NoError(t, err)

	_, err = f.svc.FinalizeContestRatings(context.Background(), 7)
	require.NoError(t, err)
	secondChanges, err := f.ratings.ListChanges(context.Background(), 7)
	require.NoError(t, err)

	require.Len(t, secondChanges, len(firstChanges))
	for i := range firstChanges {
		assert.Equal(t, firstChanges[i].Delta, secondChanges[i].Delta, "rank %d delta changed on rerun", firstChanges[i].Rank)
		assert.Equal(t, firstChanges[i].NewRating, secondChanges[i].NewRating)
		assert.InDelta(t, firstChanges[i].OldVolatility, secondChanges[i].OldVolatility, 1e-9)
	}
}

func TestFinalizeRejectsPracticeContest(t *testing.T) {
	f := newRatingFixture(domain.ModePractice)
	f.standings.addParticipant(7, 1, "alice")
	f.standings.addParticipant(7, 2, "bob")

	_, err := f.svc.FinalizeContestRatings(context.Background(), 7)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Zero(t, f.ratings.finalizeCalls)
}

func TestFinalizeRequiresTwoParticipants(t *testing.T) {
	f := newRatingFixture(domain.ModeICPC)
	f.standings.addParticipant(7, 1, "alice")
	f.subs.records = []domain.SubmissionRecord{
		testSub(1, 1, domain.VerdictAccepted, 10),
	}

	_, err := f.svc.FinalizeContestRatings(context.Background(), 7)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestFinalizeRejectsRunningContest(t *testing.T) {
	f := newRatingFixture(domain.ModeICPC)
	running := f.contests.contests[7]
	running.StartAt = time.Now().Add(-time.Hour)
	running.EndAt = time.Now().Add(time.Hour)
	f.standings.addParticipant(7, 1, "alice")
	f.standings.addParticipant(7, 2, "bob")
	f.subs.records = []domain.SubmissionRecord{
		{ID: "sub-run-1", ContestID: 7, UserID: 1, ProblemID: 1, Verdict: domain.VerdictAccepted, SubmittedAt: time.Now().Add(-30 * time.Minute)},
	}

	_, err := f.svc.FinalizeContestRatings(context.Background(), 7)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Zero(t, f.ratings.finalizeCalls, "nothing written while the contest is still running")
}

func TestFinalizeUnknownContest(t *testing.T) {
	f := newRatingFixture(domain.ModeICPC)

	_, err := f.svc.FinalizeContestRatings(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFinalizeRecordsChangeRows(t *testing.T) {
	f := newRatingFixture(domain.ModeICPC)
	f.standings.addParticipant(7, 1, "alice")
	f.standings.addParticipant(7, 2, "bob")
	f.subs.records = []domain.SubmissionRecord{
		testSub(1, 1, domain.VerdictAccepted, 10),
		testSub(1, 2, domain.VerdictAccepted, 20),
		testSub(2, 1, domain.VerdictAccepted, 30),
	}

	_, err := f.svc.FinalizeContestRatings(context.Background(), 7)
	require.NoError(t, err)

	changes, err := f.ratings.ListChanges(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, changes, 2)

	assert.Equal(t, int64(1), changes[0].UserID)
	assert.Equal(t, 1, changes[0].Rank)
	assert.Equal(t, 2, changes[0].SolvedCount)
	assert.Equal(t, scoring.InitialRating, changes[0].OldRating)
	assert.Equal(t, changes[0].OldRating+changes[0].Delta, changes[0].NewRating)
	assert.NotEmpty(t, changes[0].ID)
}

func TestFinalizeTracksTotalProblemsSolvedAcrossContests(t *testing.T) {
	f := newRatingFixture(domain.ModeICPC)
	f.standings.addParticipant(7, 1, "alice")
	f.standings.addParticipant(7, 2, "bob")
	f.subs.records = []domain.SubmissionRecord{
		testSub(1, 1, domain.VerdictAccepted, 10),
		testSub(1, 2, domain.VerdictAccepted, 20),
		testSub(2, 1, domain.VerdictAccepted, 30),
	}
	// Solves from an earlier contest count toward the career total.
	old := testSub(1, 9, domain.VerdictAccepted, 5)
	old.ContestID = 3
	f.subs.records = append(f.subs.records, old)

	_, err := f.svc.FinalizeContestRatings(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, 3, f.ratings.profiles[1].TotalProblemsSolved)
	assert.Equal(t, 1, f.ratings.profiles[2].TotalProblemsSolved)
}

func TestGetRatingHistoryClampsLimit(t *testing.T) {
	f := newRatingFixture(domain.ModeICPC)
	f.standings.addParticipant(7, 1, "alice")
	f.standings.addParticipant(7, 2, "bob")
	f.subs.records = []domain.SubmissionRecord{
		testSub(1, 1, domain.VerdictAccepted, 10),
		testSub(2, 1, domain.VerdictWrongAnswer, 20),
	}
	_, err := f.svc.FinalizeContestRatings(context.Background(), 7)
	require.NoError(t, err)

	history, err := f.svc.GetRatingHistory(context.Background(), 1, -5)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestGlobalLeaderboardOrdersByCurrentThenMaxRating(t *testing.T) {
	f := newRatingFixture(domain.ModeICPC)
	f.ratings.profiles[1] = domain.RatingProfile{UserID: 1, CurrentRating: 1600, MaxRating: 1700}
	f.ratings.profiles[2] = domain.RatingProfile{UserID: 2, CurrentRating: 1600, MaxRating: 1900}
	f.ratings.profiles[3] = domain.RatingProfile{UserID: 3, CurrentRating: 1800, MaxRating: 1800}

	profiles, err := f.svc.GlobalLeaderboard(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, profiles, 3)
	assert.Equal(t, int64(3), profiles[0].UserID)
	assert.Equal(t, int64(2), profiles[1].UserID)
	assert.Equal(t, int64(1), profiles[2].UserID)
}
