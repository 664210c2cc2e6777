package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ContestMode string

const (
	ModePractice ContestMode = "practice"
	ModeICPC     ContestMode = "icpc"
	ModeOI       ContestMode = "oi"
)

type Verdict string

const (
	VerdictAccepted     Verdict = "AC"
	VerdictWrongAnswer  Verdict = "WA"
	VerdictTimeLimit    Verdict = "TLE"
	VerdictMemoryLimit  Verdict = "MLE"
	VerdictRuntimeError Verdict = "RE"
	VerdictCompileError Verdict = "CE"
	VerdictPending      Verdict = "pending"
)

func (v Verdict) IsAccepted() bool {
	return v == VerdictAccepted
}

type Contest struct {
	ID             int64
	Slug           string
	Title          string
	Mode           ContestMode
	StartAt        time.Time
	EndAt          time.Time
	FreezeAt       *time.Time
	PenaltyMinutes int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsRated reports whether finishing this contest affects user ratings.
func (c *Contest) IsRated() bool {
	return c.Mode != ModePractice
}

type ContestProblem struct {
	ContestID int64
	ProblemID int64
	Label     string
	MaxPoints int
}

// SubmissionRecord is a judged submission as delivered by the judge.
// Records are append-only; this service never mutates them.
type SubmissionRecord struct {
	ID          string
	ContestID   int64
	UserID      int64
	ProblemID   int64
	Verdict     Verdict
	TestPassed  *int
	TestTotal   *int
	SubmittedAt time.Time
	JudgedAt    time.Time
}

type Participant struct {
	ContestID   int64
	UserID      int64
	DisplayName string
	IsActive    bool
	CreatedAt   time.Time
}

// ParticipantStanding is always derived from the submission ledger.
// A stored standing row is a cache of this computation, never a source
// of truth.
type ParticipantStanding struct {
	ContestID        int64
	UserID           int64
	SolvedCount      int
	TotalScore       decimal.Decimal
	PenaltySeconds   int64
	LastSubmissionAt *time.Time
	IsActive         bool
}

type ProblemStatus string

const (
	ProblemStatusAccepted ProblemStatus = "AC"
	ProblemStatusWrong    ProblemStatus = "WA"
	ProblemStatusPending  ProblemStatus = "pending"
	ProblemStatusNone     ProblemStatus = "none"
)

// ProblemBreakdown is the per-problem cell of a leaderboard row.
// Attempts counts only submissions visible under the freeze rule;
// FrozenAttempts counts the hidden ones while the freeze is active.
type ProblemBreakdown struct {
	ProblemID       int64
	Label           string
	Status          ProblemStatus
	Attempts        int
	FrozenAttempts  int
	WrongAttempts   int
	TimeToACMinutes *int
	PenaltyMinutes  int
}

type LeaderboardRow struct {
	Rank        int
	UserID      int64
	DisplayName string
	Standing    ParticipantStanding
	Problems    []ProblemBreakdown
}

type RatingProfile struct {
	UserID               int64
	CurrentRating        int
	MaxRating            int
	RankTier             RankTier
	MaxRankTier          RankTier
	ContestsParticipated int
	ContestsWon          int
	TotalProblemsSolved  int
	Volatility           float64
	LastContestAt        *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// RatingChangeRecord carries everything a finalize rerun needs to undo
// itself: OldRating and OldVolatility restore the pre-contest profile state
// before deltas are recomputed.
type RatingChangeRecord struct {
	ID            string
	UserID        int64
	ContestID     int64
	OldRating     int
	NewRating     int
	Delta         int
	OldVolatility float64
	Rank          int
	SolvedCount   int
	CreatedAt     time.Time
}
