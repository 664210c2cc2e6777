package server

import (
	"time"

	"contest-ranking/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

type mutationResponse struct {
	Updated int `json:"updated"`
}

type leaderboardResponse struct {
	Rows []leaderboardRowDTO `json:"rows"`
}

type leaderboardRowDTO struct {
	Rank             int              `json:"rank"`
	UserID           int64            `json:"user_id"`
	DisplayName      string           `json:"display_name"`
	SolvedCount      int              `json:"solved_count"`
	TotalScore       string           `json:"total_score"`
	PenaltySeconds   int64            `json:"penalty_seconds"`
	LastSubmissionAt *time.Time       `json:"last_submission_at,omitempty"`
	Problems         []problemCellDTO `json:"problems,omitempty"`
}

type problemCellDTO struct {
	ProblemID       int64  `json:"problem_id"`
	Label           string `json:"label"`
	Status          string `json:"status"`
	Attempts        int    `json:"attempts"`
	FrozenAttempts  int    `json:"frozen_attempts,omitempty"`
	WrongAttempts   int    `json:"wrong_attempts"`
	TimeToACMinutes *int   `json:"time_to_ac_minutes,omitempty"`
	PenaltyMinutes  int    `json:"penalty_minutes"`
}

type standingDTO struct {
	ContestID        int64      `json:"contest_id"`
	UserID           int64      `json:"user_id"`
	SolvedCount      int        `json:"solved_count"`
	TotalScore       string     `json:"total_score"`
	PenaltySeconds   int64      `json:"penalty_seconds"`
	LastSubmissionAt *time.Time `json:"last_submission_at,omitempty"`
}

type profileDTO struct {
	UserID               int64      `json:"user_id"`
	CurrentRating        int        `json:"current_rating"`
	MaxRating            int        `json:"max_rating"`
	RankTier             string     `json:"rank_tier"`
	MaxRankTier          string     `json:"max_rank_tier"`
	ContestsParticipated int        `json:"contests_participated"`
	ContestsWon          int        `json:"contests_won"`
	TotalProblemsSolved  int        `json:"total_problems_solved"`
	Volatility           float64    `json:"volatility"`
	LastContestAt        *time.Time `json:"last_contest_at,omitempty"`
}

type ratingChangeDTO struct {
	ContestID   int64     `json:"contest_id"`
	OldRating   int       `json:"old_rating"`
	NewRating   int       `json:"new_rating"`
	Delta       int       `json:"delta"`
	Rank        int       `json:"rank"`
	SolvedCount int       `json:"solved_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type historyResponse struct {
	Changes []ratingChangeDTO `json:"changes"`
}

type globalLeaderboardResponse struct {
	Profiles []profileDTO `json:"profiles"`
}

func toLeaderboardRowDTO(row domain.LeaderboardRow) leaderboardRowDTO {
	dto := leaderboardRowDTO{
		Rank:             row.Rank,
		UserID:           row.UserID,
		DisplayName:      row.DisplayName,
		SolvedCount:      row.Standing.SolvedCount,
		TotalScore:       row.Standing.TotalScore.String(),
		PenaltySeconds:   row.Standing.PenaltySeconds,
		LastSubmissionAt: row.Standing.LastSubmissionAt,
	}
	for _, p := range row.Problems {
		dto.Problems = append(dto.Problems, problemCellDTO{
			ProblemID:       p.ProblemID,
			Label:           p.Label,
			Status:          string(p.Status),
			Attempts:        p.Attempts,
			FrozenAttempts:  p.FrozenAttempts,
			WrongAttempts:   p.WrongAttempts,
			TimeToACMinutes: p.TimeToACMinutes,
			PenaltyMinutes:  p.PenaltyMinutes,
		})
	}
	return dto
}

func toStandingDTO(s domain.ParticipantStanding) standingDTO {
	return standingDTO{
		ContestID:        s.ContestID,
		UserID:           s.UserID,
		SolvedCount:      s.SolvedCount,
		TotalScore:       s.TotalScore.String(),
		PenaltySeconds:   s.PenaltySeconds,
		LastSubmissionAt: s.LastSubmissionAt,
	}
}

func toProfileDTO(p domain.RatingProfile) profileDTO {
	return profileDTO{
		UserID:               p.UserID,
		CurrentRating:        p.CurrentRating,
		MaxRating:            p.MaxRating,
		RankTier:             string(p.RankTier),
		MaxRankTier:          string(p.MaxRankTier),
		ContestsParticipated: p.ContestsParticipated,
		ContestsWon:          p.ContestsWon,
		TotalProblemsSolved:  p.TotalProblemsSolved,
		Volatility:           p.Volatility,
		LastContestAt:        p.LastContestAt,
	}
}

func toRatingChangeDTO(ch domain.RatingChangeRecord) ratingChangeDTO {
	return ratingChangeDTO{
		ContestID:   ch.ContestID,
		OldRating:   ch.OldRating,
		NewRating:   ch.NewRating,
		Delta:       ch.Delta,
		Rank:        ch.Rank,
		SolvedCount: ch.SolvedCount,
		CreatedAt:   ch.CreatedAt,
	}
}
