package scoring

import (
	"time"

	"github.com/shopspring/decimal"

	"contest-ranking/internal/domain"
)

// practiceStrategy counts distinct accepted problems. No penalty, no freeze;
// the score equals the solved count and exists only for display.
type practiceStrategy struct{}

func (practiceStrategy) Mode() domain.ContestMode { return domain.ModePractice }

func (practiceStrategy) Compute(c *domain.Contest, _ []domain.ContestProblem, userID int64, subs []domain.SubmissionRecord, _ time.Time) domain.ParticipantStanding {
	windowed := inWindow(c, subs)

	solved := make(map[int64]struct{})
	var last *time.Time
	for _, s := range windowed {
		if s.Verdict.IsAccepted() {
			solved[s.ProblemID] = struct{}{}
		}
		last = laterOf(last, s.SubmittedAt)
	}

	return domain.ParticipantStanding{
		ContestID:        c.ID,
		UserID:           userID,
		SolvedCount:      len(solved),
		TotalScore:       decimal.NewFromInt(int64(len(solved))),
		PenaltySeconds:   0,
		LastSubmissionAt: last,
		IsActive:         true,
	}
}
