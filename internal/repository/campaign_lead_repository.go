package repository

import (
	"database/sql"
	"time"

	"github.com/leadowl/leadowl-backend/internal/model"
)

type CampaignLeadRepositoryInterface interface {
	Attach(campaignID, leadID int64) (*model.CampaignLead, error)
	FetchEligible(campaignID int64, maxRetries, limit int) ([]*model.CampaignLead, error)
	HasEligible(campaignID int64, maxRetries int) (bool, error)
	HasPending(campaignID int64) (bool, error)
	CountPending(campaignID int64) (int, error)
	MarkSent(id int64, providerMessageID string, sentAt time.Time) error
	MarkFailed(id int64, lastError string, terminal bool, maxRetries int) error
	StatsByCampaign(campaignID int64) (map[string]int, error)
}

type CampaignLeadRepository struct {
	DB *sql.DB
}

// Attach creates the (campaign, lead) row, returning the existing one when
// the pair is already attached. The unique index makes this idempotent.
func (r *CampaignLeadRepository) Attach(campaignID, leadID int64) (*model.CampaignLead, error) {
	query := `
        INSERT INTO campaign_leads (campaign_id, lead_id, status, retry_count, created_at, updated_at)
        VALUES ($1, $2, 'pending', 0, NOW(), NOW())
        ON CONFLICT (campaign_id, lead_id) DO NOTHING
        RETURNING id, campaign_id, lead_id, status, retry_count, created_at, updated_at
    `
	var cl model.CampaignLead
	err := r.DB.QueryRow(query, campaignID, leadID).Scan(
		&cl.ID, &cl.CampaignID, &cl.LeadID, &cl.Status, &cl.RetryCount, &cl.CreatedAt, &cl.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return r.get(campaignID, leadID)
	}
	if err != nil {
		return nil, err
	}
	return &cl, nil
}

func (r *CampaignLeadRepository) get(campaignID, leadID int64) (*model.CampaignLead, error) {
	query := `
        SELECT id, campaign_id, lead_id, status, retry_count, provider_message_id, last_error,
               sent_at, delivered_at, seen_at, replied_at, created_at, updated_at
        FROM campaign_leads
        WHERE campaign_id=$1 AND lead_id=$2
    `
	var cl model.CampaignLead
	err := r.DB.QueryRow(query, campaignID, leadID).Scan(
		&cl.ID, &cl.CampaignID, &cl.LeadID, &cl.Status, &cl.RetryCount,
		&cl.ProviderMessageID, &cl.LastError,
		&cl.SentAt, &cl.DeliveredAt, &cl.SeenAt, &cl.RepliedAt,
		&cl.CreatedAt, &cl.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &cl, nil
}

// FetchEligible returns leads still owed a send: pending ones, plus failed
// ones that have retries left. Insertion order, no priority semantics.
func (r *CampaignLeadRepository) FetchEligible(campaignID int64, maxRetries, limit int) ([]*model.CampaignLead, error) {
	query := `
        SELECT id, campaign_id, lead_id, status, retry_count, provider_message_id, last_error,
               sent_at, delivered_at, seen_at, replied_at, created_at, updated_at
        FROM campaign_leads
        WHERE campaign_id=$1
          AND (status='pending' OR (status='failed' AND retry_count < $2))
        ORDER BY id
        LIMIT $3
    `
	rows, err := r.DB.Query(query, campaignID, maxRetries, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := []*model.CampaignLead{}
	for rows.Next() {
		cl := &model.CampaignLead{}
		if err := rows.Scan(
			&cl.ID, &cl.CampaignID, &cl.LeadID, &cl.Status, &cl.RetryCount,
			&cl.ProviderMessageID, &cl.LastError,
			&cl.SentAt, &cl.DeliveredAt, &cl.SeenAt, &cl.RepliedAt,
			&cl.CreatedAt, &cl.UpdatedAt,
		); err != nil {
			return nil, err
		}
		leads = append(leads, cl)
	}
	return leads, rows.Err()
}

func (r *CampaignLeadRepository) HasEligible(campaignID int64, maxRetries int) (bool, error) {
	query := `
        SELECT EXISTS(
            SELECT 1 FROM campaign_leads
            WHERE campaign_id=$1
              AND (status='pending' OR (status='failed' AND retry_count < $2))
        )
    `
	var exists bool
	err := r.DB.QueryRow(query, campaignID, maxRetries).Scan(&exists)
	return exists, err
}

func (r *CampaignLeadRepository) HasPending(campaignID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM campaign_leads WHERE campaign_id=$1 AND status='pending')`
	var exists bool
	err := r.DB.QueryRow(query, campaignID).Scan(&exists)
	return exists, err
}

func (r *CampaignLeadRepository) CountPending(campaignID int64) (int, error) {
	var count int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM campaign_leads WHERE campaign_id=$1 AND status='pending'`, campaignID).Scan(&count)
	return count, err
}

// MarkSent is the terminal success transition: provider id stored, error
// cleared, sent_at stamped.
func (r *CampaignLeadRepository) MarkSent(id int64, providerMessageID string, sentAt time.Time) error {
	query := `
        UPDATE campaign_leads
        SET status='sent', provider_message_id=$2, sent_at=$3, last_error='', updated_at=NOW()
        WHERE id=$1
    `
	_, err := r.DB.Exec(query, id, providerMessageID, sentAt)
	return err
}

// MarkFailed bumps retry_count and either reverts the lead to pending (a
// future pass will pick it up again) or parks it as terminally failed. A
// terminal failure pins retry_count at the ceiling so the eligibility
// query can never re-select it.
func (r *CampaignLeadRepository) MarkFailed(id int64, lastError string, terminal bool, maxRetries int) error {
	status := model.CampaignLeadStatusPending
	if terminal {
		status = model.CampaignLeadStatusFailed
	}
	query := `
        UPDATE campaign_leads
        SET status=$2, last_error=$3,
            retry_count = CASE WHEN $4::bool THEN GREATEST(retry_count+1, $5) ELSE retry_count+1 END,
            updated_at=NOW()
        WHERE id=$1
    `
	_, err := r.DB.Exec(query, id, status, lastError, terminal, maxRetries)
	return err
}

func (r *CampaignLeadRepository) StatsByCampaign(campaignID int64) (map[string]int, error) {
	query := `SELECT status, COUNT(*) FROM campaign_leads WHERE campaign_id=$1 GROUP BY status`
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := map[string]int{"pending": 0, "sent": 0, "failed": 0}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

var _ CampaignLeadRepositoryInterface = (*CampaignLeadRepository)(nil)
