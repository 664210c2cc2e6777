package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"contest-ranking/internal/domain"
)

// In-memory fakes for the storage ports. They mirror the sqlite
// repositories closely enough that service behavior under test matches
// production behavior.

type fakeContestStore struct {
	contests map[int64]*domain.Contest
	problems map[int64][]domain.ContestProblem
}

func newFakeContestStore() *fakeContestStore {
	return &fakeContestStore{
		contests: make(map[int64]*domain.Contest),
		problems: make(map[int64][]domain.ContestProblem),
	}
}

func (f *fakeContestStore) GetByID(_ context.Context, id int64) (*domain.Contest, error) {
	c, ok := f.contests[id]
	if !ok {
		return nil, fmt.Errorf("contest %d: %w", id, domain.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (f *fakeContestStore) ListProblems(_ context.Context, contestID int64) ([]domain.ContestProblem, error) {
	return f.problems[contestID], nil
}

type fakeSubmissionStore struct {
	records []domain.SubmissionRecord
}

func (f *fakeSubmissionStore) ListByContest(_ context.Context, contestID int64) ([]domain.SubmissionRecord, error) {
	var out []domain.SubmissionRecord
	for _, rec := range f.records {
		if rec.ContestID == contestID {
			out = append(out, rec)
		}
	}
	sortSubs(out)
	return out, nil
}

func (f *fakeSubmissionStore) ListByContestUser(_ context.Context, contestID, userID int64) ([]domain.SubmissionRecord, error) {
	var out []domain.SubmissionRecord
	for _, rec := range f.records {
		if rec.ContestID == contestID && rec.UserID == userID {
			out = append(out, rec)
		}
	}
	sortSubs(out)
	return out, nil
}

func (f *fakeSubmissionStore) CountDistinctSolved(_ context.Context, userID int64) (int, error) {
	solved := make(map[int64]struct{})
	for _, rec := range f.records {
		if rec.UserID == userID && rec.Verdict.IsAccepted() {
			solved[rec.ProblemID] = struct{}{}
		}
	}
	return len(solved), nil
}

func (f *fakeSubmissionStore) InsertBatch(_ context.Context, records []domain.SubmissionRecord) (int, error) {
	existing := make(map[string]struct{}, len(f.records))
	for _, rec := range f.records {
		existing[rec.ID] = struct{}{}
	}
	inserted := 0
	for _, rec := range records {
		if _, ok := existing[rec.ID]; ok {
			continue
		}
		existing[rec.ID] = struct{}{}
		f.records = append(f.records, rec)
		inserted++
	}
	return inserted, nil
}

func (f *fakeSubmissionStore) LatestJudgedAt(_ context.Context) (time.Time, error) {
	var latest time.Time
	for _, rec := range f.records {
		if rec.JudgedAt.After(latest) {
			latest = rec.JudgedAt
		}
	}
	return latest, nil
}

func sortSubs(subs []domain.SubmissionRecord) {
	sort.Slice(subs, func(i, j int) bool {
		if !subs[i].SubmittedAt.Equal(subs[j].SubmittedAt) {
			return subs[i].SubmittedAt.Before(subs[j].SubmittedAt)
		}
		return subs[i].ID < subs[j].ID
	})
}

type participantKey struct {
	contestID int64
	userID    int64
}

type fakeStandingStore struct {
	participants map[participantKey]domain.Participant
	standings    map[participantKey]domain.ParticipantStanding
}

func newFakeStandingStore() *fakeStandingStore {
	return &fakeStandingStore{
		participants: make(map[participantKey]domain.Participant),
		standings:    make(map[participantKey]domain.ParticipantStanding),
	}
}

func (f *fakeStandingStore) addParticipant(contestID, userID int64, name string) {
	f.participants[participantKey{contestID, userID}] = domain.Participant{
		ContestID:   contestID,
		UserID:      userID,
		DisplayName: name,
		IsActive:    true,
	}
}

func (f *fakeStandingStore) GetOrCreateParticipant(_ context.Context, contestID, userID int64, displayName string) (*domain.Participant, error) {
	key := participantKey{contestID, userID}
	if p, ok := f.participants[key]; ok {
		return &p, nil
	}
	if displayName == "" {
		displayName = fmt.Sprintf("user-%d", userID)
	}
	p := domain.Participant{ContestID: contestID, UserID: userID, DisplayName: displayName, IsActive: true}
	f.participants[key] = p
	return &p, nil
}

func (f *fakeStandingStore) ListActiveParticipants(_ context.Context, contestID int64) ([]domain.Participant, error) {
	var out []domain.Participant
	for _, p := range f.participants {
		if p.ContestID == contestID && p.IsActive {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (f *fakeStandingStore) UpsertStandings(_ context.Context, standings []domain.ParticipantStanding) error {
	for _, s := range standings {
		f.standings[participantKey{s.ContestID, s.UserID}] = s
	}
	return nil
}

type fakeRatingStore struct {
	profiles map[int64]domain.RatingProfile
	changes  []domain.RatingChangeRecord

	finalizeCalls int
}

func newFakeRatingStore() *fakeRatingStore {
	return &fakeRatingStore{profiles: make(map[int64]domain.RatingProfile)}
}

func (f *fakeRatingStore) GetProfile(_ context.Context, userID int64) (*domain.RatingProfile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("rating profile for user %d: %w", userID, domain.ErrNotFound)
	}
	return &p, nil
}

func (f *fakeRatingStore) GetProfiles(_ context.Context, userIDs []int64) (map[int64]domain.RatingProfile, error) {
	out := make(map[int64]domain.RatingProfile)
	for _, id := range userIDs {
		if p, ok := f.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (f *fakeRatingStore) ListChanges(_ context.Context, contestID int64) ([]domain.RatingChangeRecord, error) {
	var out []domain.RatingChangeRecord
	for _, ch := range f.changes {
		if ch.ContestID == contestID {
			out = append(out, ch)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out, nil
}

func (f *fakeRatingStore) ListHistory(_ context.Context, userID int64, limit int) ([]domain.RatingChangeRecord, error) {
	var out []domain.RatingChangeRecord
	for _, ch := range f.changes {
		if ch.UserID == userID {
			out = append(out, ch)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRatingStore) GlobalLeaderboard(_ context.Context, limit, offset int) ([]domain.RatingProfile, error) {
	out := make([]domain.RatingProfile, 0, len(f.profiles))
	for _, p := range f.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CurrentRating != out[j].CurrentRating {
			return out[i].CurrentRating > out[j].CurrentRating
		}
		if out[i].MaxRating != out[j].MaxRating {
			return out[i].MaxRating > out[j].MaxRating
		}
		return out[i].UserID < out[j].UserID
	})
	if offset >= len(out) {
		return []domain.RatingProfile{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRatingStore) ApplyFinalize(_ context.Context, contestID int64, profiles []domain.RatingProfile, changes []domain.RatingChangeRecord) error {
	f.finalizeCalls++
	for _, p := range profiles {
		f.profiles[p.UserID] = p
	}
	kept := f.changes[:0]
	for _, ch := range f.changes {
		if ch.ContestID != contestID {
			kept = append(kept, ch)
		}
	}
	f.changes = append(kept, changes...)
	return nil
}
