package service

import (
	"github.com/leadowl/leadowl-backend/internal/model"
	"github.com/leadowl/leadowl-backend/internal/repository"
)

// StatusResolver derives a campaign's externally visible status from the
// queue and lead rows. Recomputation, never incremental counters: counters
// bumped piecemeal during partial failures drift from reality, the rows
// updated during sends do not. Idempotent, safe to call after every batch.
type StatusResolver struct {
	QueueRepo        repository.QueueRepositoryInterface
	CampaignLeadRepo repository.CampaignLeadRepositoryInterface
}

// Resolve returns "queued" while any outstanding work remains, otherwise
// "completed". Priority order, first match wins.
func (r *StatusResolver) Resolve(campaignID int64) (string, error) {
	open, err := r.QueueRepo.HasOpenEntries(campaignID)
	if err != nil {
		return "", err
	}
	if open {
		return model.CampaignStatusQueued, nil
	}

	pending, err := r.CampaignLeadRepo.HasPending(campaignID)
	if err != nil {
		return "", err
	}
	if pending {
		return model.CampaignStatusQueued, nil
	}

	return model.CampaignStatusCompleted, nil
}
