package scoring

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"contest-ranking/internal/domain"
)

func decimalInt(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

var contestStart = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func testContest(mode domain.ContestMode) *domain.Contest {
	return &domain.Contest{
		ID:             7,
		Slug:           "spring-round-1",
		Mode:           mode,
		StartAt:        contestStart,
		EndAt:          contestStart.Add(5 * time.Hour),
		PenaltyMinutes: 20,
	}
}

func withFreeze(c *domain.Contest, offset time.Duration) *domain.Contest {
	at := c.StartAt.Add(offset)
	c.FreezeAt = &at
	return c
}

func testProblems(ids ...int64) []domain.ContestProblem {
	out := make([]domain.ContestProblem, 0, len(ids))
	for i, id := range ids {
		out = append(out, domain.ContestProblem{
			ContestID: 7,
			ProblemID: id,
			Label:     string(rune('A' + i)),
			MaxPoints: 100,
		})
	}
	return out
}

var subSeq int

func sub(problemID int64, verdict domain.Verdict, atMinute int) domain.SubmissionRecord {
	subSeq++
	return domain.SubmissionRecord{
		ID:          fmt.Sprintf("sub-%04d", subSeq),
		ContestID:   7,
		UserID:      42,
		ProblemID:   problemID,
		Verdict:     verdict,
		SubmittedAt: contestStart.Add(time.Duration(atMinute) * time.Minute),
	}
}

func scoredSub(problemID int64, passed, total, atMinute int) domain.SubmissionRecord {
	s := sub(problemID, domain.VerdictWrongAnswer, atMinute)
	if passed == total && total > 0 {
		s.Verdict = domain.VerdictAccepted
	}
	s.TestPassed = &passed
	s.TestTotal = &total
	return s
}
