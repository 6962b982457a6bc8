// internal/service/stats.go
package service

import (
	"github.com/unclebandit/zapleopard-backend/internal/model"
	"github.com/unclebandit/zapleopard-backend/internal/repository"
)

// StatsAggregator recounts recipients by status and writes the aggregate
// counters back onto the campaign. Called after every send and every
// reconciled response.
type StatsAggregator struct {
	CampaignRepo  repository.CampaignRepositoryInterface
	RecipientRepo repository.RecipientRepositoryInterface
}

// Recompute writes sent = enviado + respondido and responded = respondido
// onto the campaign and returns the raw counts per status.
func (s *StatsAggregator) Recompute(campaignID int) (map[string]int, error) {
	counts, err := s.RecipientRepo.StatusCounts(campaignID)
	if err != nil {
		return nil, err
	}

	sent := counts[model.RecipientEnviado] + counts[model.RecipientRespondido]
	responded := counts[model.RecipientRespondido]
	if err := s.CampaignRepo.UpdateCounters(campaignID, sent, responded); err != nil {
		return nil, err
	}
	return counts, nil
}

// Finalize recomputes counters and, when no pendente recipients remain,
// marks the campaign finished. Returns whether the campaign finished. Only
// the orchestration loop calls this, and only after a normal (non-paused)
// exit.
func (s *StatsAggregator) Finalize(campaignID int) (bool, error) {
	counts, err := s.Recompute(campaignID)
	if err != nil {
		return false, err
	}
	if counts[model.RecipientPendente] > 0 {
		return false, nil
	}
	if err := s.CampaignRepo.MarkFinished(campaignID); err != nil {
		return false, err
	}
	return true, nil
}
