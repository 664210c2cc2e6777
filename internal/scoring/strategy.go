// Package scoring derives contest standings and rating changes from the raw
// submission ledger. Everything here is pure: the same inputs always produce
// the same outputs, so a stored standing can be thrown away and recomputed at
// any time.
package scoring

import (
	"sort"
	"time"

	"contest-ranking/internal/domain"
)

// Strategy computes one user's standing for a single contest mode.
type Strategy interface {
	Mode() domain.ContestMode

	// Compute derives the standing from the user's raw submissions.
	// The freeze rule is evaluated against now, so a mid-contest call and a
	// post-contest call can legitimately disagree.
	Compute(c *domain.Contest, problems []domain.ContestProblem, userID int64, subs []domain.SubmissionRecord, now time.Time) domain.ParticipantStanding
}

// ForMode selects the scoring strategy for a contest mode. Unknown modes
// score like practice: solved count only, no penalty.
func ForMode(mode domain.ContestMode) Strategy {
	switch mode {
	case domain.ModeICPC:
		return icpcStrategy{}
	case domain.ModeOI:
		return oiStrategy{}
	case domain.ModePractice:
		return practiceStrategy{}
	default:
		return practiceStrategy{}
	}
}

// inWindow keeps submissions inside [start_at, end_at] sorted by submission
// time. Ties sort by id so recomputation is deterministic.
func inWindow(c *domain.Contest, subs []domain.SubmissionRecord) []domain.SubmissionRecord {
	out := make([]domain.SubmissionRecord, 0, len(subs))
	for _, s := range subs {
		if s.SubmittedAt.Before(c.StartAt) || s.SubmittedAt.After(c.EndAt) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.Before(out[j].SubmittedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func groupByProblem(subs []domain.SubmissionRecord) map[int64][]domain.SubmissionRecord {
	grouped := make(map[int64][]domain.SubmissionRecord)
	for _, s := range subs {
		grouped[s.ProblemID] = append(grouped[s.ProblemID], s)
	}
	return grouped
}

// freezeActive reports whether the scoreboard freeze hides submissions.
// Once the contest has ended everything is visible again.
func freezeActive(c *domain.Contest, now time.Time) bool {
	return c.FreezeAt != nil && now.Before(c.EndAt)
}

func beforeFreeze(subs []domain.SubmissionRecord, freezeAt time.Time) []domain.SubmissionRecord {
	out := make([]domain.SubmissionRecord, 0, len(subs))
	for _, s := range subs {
		if s.SubmittedAt.Before(freezeAt) {
			out = append(out, s)
		}
	}
	return out
}

func firstAccepted(subs []domain.SubmissionRecord) *domain.SubmissionRecord {
	for i := range subs {
		if subs[i].Verdict.IsAccepted() {
			return &subs[i]
		}
	}
	return nil
}

func laterOf(current *time.Time, candidate time.Time) *time.Time {
	if current == nil || candidate.After(*current) {
		t := candidate
		return &t
	}
	return current
}

func lastSubmittedAt(current *time.Time, subs []domain.SubmissionRecord) *time.Time {
	for _, s := range subs {
		current = laterOf(current, s.SubmittedAt)
	}
	return current
}
