package scoring

import (
	"time"

	"github.com/shopspring/decimal"

	"contest-ranking/internal/domain"
)

// icpcStrategy scores one point per solved problem and accumulates penalty
// time. Per problem: floor(minutes from contest start to the first AC) plus
// the contest's penalty minutes for every failed attempt before that AC.
// While the freeze is active only submissions before freeze_at count.
type icpcStrategy struct{}

func (icpcStrategy) Mode() domain.ContestMode { return domain.ModeICPC }

func (icpcStrategy) Compute(c *domain.Contest, problems []domain.ContestProblem, userID int64, subs []domain.SubmissionRecord, now time.Time) domain.ParticipantStanding {
	byProblem := groupByProblem(inWindow(c, subs))
	frozen := freezeActive(c, now)

	solved := 0
	var penaltyMinutes int64
	var last *time.Time

	for _, p := range problems {
		problemSubs := byProblem[p.ProblemID]
		if len(problemSubs) == 0 {
			continue
		}

		visible := problemSubs
		if frozen {
			visible = beforeFreeze(problemSubs, *c.FreezeAt)
		}

		if firstAC := firstAccepted(visible); firstAC != nil {
			solved++
			minutes := int64(firstAC.SubmittedAt.Sub(c.StartAt).Minutes())
			wrong := wrongBefore(visible, firstAC.SubmittedAt)
			penaltyMinutes += minutes + int64(wrong*c.PenaltyMinutes)
		}

		if frozen {
			last = lastSubmittedAt(last, visible)
		} else {
			last = lastSubmittedAt(last, problemSubs)
		}
	}

	return domain.ParticipantStanding{
		ContestID:        c.ID,
		UserID:           userID,
		SolvedCount:      solved,
		TotalScore:       decimal.NewFromInt(int64(solved)),
		PenaltySeconds:   penaltyMinutes * 60,
		LastSubmissionAt: last,
		IsActive:         true,
	}
}

// wrongBefore counts failed attempts strictly before the accepting
// submission. Pending submissions count as attempts the same way the other
// non-AC verdicts do.
func wrongBefore(subs []domain.SubmissionRecord, acAt time.Time) int {
	wrong := 0
	for _, s := range subs {
		if s.SubmittedAt.Before(acAt) && !s.Verdict.IsAccepted() {
			wrong++
		}
	}
	return wrong
}
