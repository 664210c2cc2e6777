package scoring

import (
	"time"

	"contest-ranking/internal/domain"
)

// ProblemBreakdowns builds the per-problem leaderboard cells for one user,
// applying the same freeze visibility rule as the ICPC standing computation.
// Submissions made during an active freeze are counted only in
// FrozenAttempts so the scoreboard can show a "?" cell.
func ProblemBreakdowns(c *domain.Contest, problems []domain.ContestProblem, subs []domain.SubmissionRecord, now time.Time) []domain.ProblemBreakdown {
	byProblem := groupByProblem(inWindow(c, subs))
	frozen := freezeActive(c, now)

	out := make([]domain.ProblemBreakdown, 0, len(problems))
	for _, p := range problems {
		problemSubs := byProblem[p.ProblemID]
		cell := domain.ProblemBreakdown{
			ProblemID: p.ProblemID,
			Label:     p.Label,
			Status:    domain.ProblemStatusNone,
		}

		if len(problemSubs) == 0 {
			out = append(out, cell)
			continue
		}

		visible := problemSubs
		if frozen {
			visible = beforeFreeze(problemSubs, *c.FreezeAt)
			cell.FrozenAttempts = len(problemSubs) - len(visible)
		}
		cell.Attempts = len(visible)

		if firstAC := firstAccepted(visible); firstAC != nil {
			minutes := int(firstAC.SubmittedAt.Sub(c.StartAt).Minutes())
			wrong := wrongBefore(visible, firstAC.SubmittedAt)

			cell.Status = domain.ProblemStatusAccepted
			cell.WrongAttempts = wrong
			cell.TimeToACMinutes = &minutes
			cell.PenaltyMinutes = minutes + wrong*c.PenaltyMinutes
		} else {
			cell.Status = domain.ProblemStatusPending
			if hasFailed(visible) {
				cell.Status = domain.ProblemStatusWrong
			}
			cell.WrongAttempts = len(visible)
		}

		out = append(out, cell)
	}
	return out
}

func hasFailed(subs []domain.SubmissionRecord) bool {
	for _, s := range subs {
		if !s.Verdict.IsAccepted() && s.Verdict != domain.VerdictPending {
			return true
		}
	}
	return false
}
