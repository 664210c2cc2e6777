package service

import (
	"context"
	"time"

	"contest-ranking/internal/domain"
)

// Storage ports. The sqlite repositories implement these; tests swap in
// in-memory fakes.

type ContestReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Contest, error)
	ListProblems(ctx context.Context, contestID int64) ([]domain.ContestProblem, error)
}

type SubmissionReader interface {
	ListByContest(ctx context.Context, contestID int64) ([]domain.SubmissionRecord, error)
	ListByContestUser(ctx context.Context, contestID, userID int64) ([]domain.SubmissionRecord, error)
	CountDistinctSolved(ctx context.Context, userID int64) (int, error)
}

type SubmissionWriter interface {
	InsertBatch(ctx context.Context, records []domain.SubmissionRecord) (int, error)
	LatestJudgedAt(ctx context.Context) (time.Time, error)
}

type StandingStore interface {
	GetOrCreateParticipant(ctx context.Context, contestID, userID int64, displayName string) (*domain.Participant, error)
	ListActiveParticipants(ctx context.Context, contestID int64) ([]domain.Participant, error)
	UpsertStandings(ctx context.Context, standings []domain.ParticipantStanding) error
}

type RatingStore interface {
	GetProfile(ctx context.Context, userID int64) (*domain.RatingProfile, error)
	GetProfiles(ctx context.Context, userIDs []int64) (map[int64]domain.RatingProfile, error)
	ListChanges(ctx context.Context, contestID int64) ([]domain.RatingChangeRecord, error)
	ListHistory(ctx context.Context, userID int64, limit int) ([]domain.RatingChangeRecord, error)
	GlobalLeaderboard(ctx context.Context, limit, offset int) ([]domain.RatingProfile, error)

	// ApplyFinalize persists a rating finalize atomically: all profile
	// writes, the deletion of the contest's previous change rows and the
	// insertion of the new ones either all land or none do.
	ApplyFinalize(ctx context.Context, contestID int64, profiles []domain.RatingProfile, changes []domain.RatingChangeRecord) error
}
