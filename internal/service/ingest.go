package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"contest-ranking/internal/api"
	"contest-ranking/internal/constants"
	"contest-ranking/internal/domain"
)

// IngestService polls the judge cluster for newly judged submissions,
// appends them to the ledger and refreshes the standing of every affected
// participant. The cursor is the max judged_at already in the ledger, so a
// restart resumes where the previous process stopped.
type IngestService struct {
	judge     *api.JudgeClient
	subs      SubmissionWriter
	standings *StandingService
	logger    zerolog.Logger

	cursor time.Time
}

func NewIngestService(judge *api.JudgeClient, subs SubmissionWriter, standings *StandingService, logger zerolog.Logger) *IngestService {
	return &IngestService{judge: judge, subs: subs, standings: standings, logger: logger}
}

func (s *IngestService) Enabled() bool {
	return s.judge.Enabled()
}

// RunOnce performs one poll cycle and returns the number of new ledger rows.
func (s *IngestService) RunOnce(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.JudgeAPITimeout)
	defer cancel()

	if s.cursor.IsZero() {
		latest, err := s.subs.LatestJudgedAt(ctx)
		if err != nil {
			return 0, err
		}
		s.cursor = latest
	}

	judged, err := s.judge.FetchJudged(ctx, s.cursor, constants.IngestBatchLimit)
	if err != nil {
		return 0, err
	}
	if len(judged) == 0 {
		return 0, nil
	}

	records := make([]domain.SubmissionRecord, 0, len(judged))
	for _, j := range judged {
		records = append(records, domain.SubmissionRecord{
			ID:          j.ID,
			ContestID:   j.ContestID,
			UserID:      j.UserID,
			ProblemID:   j.ProblemID,
			Verdict:     domain.Verdict(j.Verdict),
			TestPassed:  j.TestPassed,
			TestTotal:   j.TestTotal,
			SubmittedAt: j.SubmittedAt,
			JudgedAt:    j.JudgedAt,
		})
		if j.JudgedAt.After(s.cursor) {
			s.cursor = j.JudgedAt
		}
	}

	inserted, err := s.subs.InsertBatch(ctx, records)
	if err != nil {
		return 0, err
	}

	// One refresh per affected participant, not per submission.
	type contestUser struct {
		contestID int64
		userID    int64
	}
	affected := make(map[contestUser]string)
	for _, j := range judged {
		affected[contestUser{j.ContestID, j.UserID}] = j.UserHandle
	}
	for cu, handle := range affected {
		if err := s.standings.RefreshUserStanding(ctx, cu.contestID, cu.userID, handle); err != nil {
			s.logger.Error().Err(err).
				Int64("contest_id", cu.contestID).
				Int64("user_id", cu.userID).
				Msg("failed to refresh standing after ingest")
		}
	}

	s.logger.Info().
		Int("fetched", len(judged)).
		Int("inserted", inserted).
		Int("participants", len(affected)).
		Time("cursor", s.cursor).
		Msg("judge ingest cycle complete")
	return inserted, nil
}
