package model

import "time"

// Campaign lead statuses. "sent" is terminal; "failed" is terminal once
// retry_count has reached the workspace max_retries.
const (
	CampaignLeadStatusPending = "pending"
	CampaignLeadStatusSent    = "sent"
	CampaignLeadStatusFailed  = "failed"
)

// CampaignLead is one row per (campaign, lead), unique on that pair.
// Mutated exclusively by the queue processor's send loop.
type CampaignLead struct {
	ID                int64      `db:"id" json:"id"`
	CampaignID        int64      `db:"campaign_id" json:"campaign_id"`
	LeadID            int64      `db:"lead_id" json:"lead_id"`
	Status            string     `db:"status" json:"status"`
	RetryCount        int        `db:"retry_count" json:"retry_count"`
	ProviderMessageID string     `db:"provider_message_id" json:"provider_message_id,omitempty"`
	LastError         string     `db:"last_error" json:"last_error,omitempty"`
	SentAt            *time.Time `db:"sent_at" json:"sent_at,omitempty"`
	DeliveredAt       *time.Time `db:"delivered_at" json:"delivered_at,omitempty"`
	SeenAt            *time.Time `db:"seen_at" json:"seen_at,omitempty"`
	RepliedAt         *time.Time `db:"replied_at" json:"replied_at,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}
