package scoring

import (
	"time"

	"github.com/shopspring/decimal"

	"contest-ranking/internal/domain"
)

// oiStrategy gives partial credit: each submission scores
// (test_passed / test_total) * max_points, the best submission per problem
// counts, and the total is the sum over all problems. A problem is solved
// only at exactly full points. Submissions without test counters score zero
// and are skipped.
type oiStrategy struct{}

func (oiStrategy) Mode() domain.ContestMode { return domain.ModeOI }

func (oiStrategy) Compute(c *domain.Contest, problems []domain.ContestProblem, userID int64, subs []domain.SubmissionRecord, _ time.Time) domain.ParticipantStanding {
	byProblem := groupByProblem(inWindow(c, subs))

	total := decimal.Zero
	solved := 0
	var last *time.Time

	for _, p := range problems {
		problemSubs := byProblem[p.ProblemID]
		if len(problemSubs) == 0 {
			continue
		}

		maxPoints := problemMaxPoints(p)
		best := decimal.Zero

		for _, s := range problemSubs {
			last = laterOf(last, s.SubmittedAt)

			score, ok := submissionScore(s, maxPoints)
			if !ok {
				continue
			}
			if score.GreaterThan(best) {
				best = score
			}
		}

		total = total.Add(best)
		if best.Equal(maxPoints) {
			solved++
		}
	}

	return domain.ParticipantStanding{
		ContestID:        c.ID,
		UserID:           userID,
		SolvedCount:      solved,
		TotalScore:       total,
		PenaltySeconds:   0,
		LastSubmissionAt: last,
		IsActive:         true,
	}
}

// problemMaxPoints falls back to 100 when the configured points are zero or
// negative. Zero-point problems appear in real contest data; whether that is
// intentional configuration is unresolved, so the fallback is kept.
func problemMaxPoints(p domain.ContestProblem) decimal.Decimal {
	if p.MaxPoints <= 0 {
		return decimal.NewFromInt(DefaultProblemPoints)
	}
	return decimal.NewFromInt(int64(p.MaxPoints))
}

// submissionScore computes the fractional score clamped to [0, max_points].
// Returns false for submissions with missing or zero test totals.
func submissionScore(s domain.SubmissionRecord, maxPoints decimal.Decimal) (decimal.Decimal, bool) {
	if s.TestPassed == nil || s.TestTotal == nil || *s.TestTotal == 0 {
		return decimal.Zero, false
	}

	frac := decimal.NewFromInt(int64(*s.TestPassed)).Div(decimal.NewFromInt(int64(*s.TestTotal)))
	score := frac.Mul(maxPoints)
	if score.IsNegative() {
		return decimal.Zero, true
	}
	if score.GreaterThan(maxPoints) {
		return maxPoints, true
	}
	return score, true
}
