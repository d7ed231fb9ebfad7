package model

import "time"

// Campaign statuses. Status is a derived view recomputed from the lead and
// queue rows after every batch; the queue processor never trusts it.
const (
	CampaignStatusDraft     = "draft"
	CampaignStatusScheduled = "scheduled"
	CampaignStatusQueued    = "queued"
	CampaignStatusSending   = "sending"
	CampaignStatusCompleted = "completed"
)

const (
	CampaignTypeWhatsapp = "whatsapp"
	CampaignTypeLinkedin = "linkedin"
)

// LinkedIn send actions, only meaningful when Type is "linkedin".
const (
	LinkedinActionDM     = "dm"
	LinkedinActionInMail = "inmail"
	LinkedinActionInvite = "invite"
)

type Campaign struct {
	ID             int64      `db:"id" json:"id"`
	WorkspaceID    int64      `db:"workspace_id" json:"workspace_id"`
	Name           string     `db:"name" json:"name"`
	Type           string     `db:"type" json:"type"`
	LinkedinAction string     `db:"linkedin_action" json:"linkedin_action,omitempty"`
	BaseTemplate   string     `db:"base_template" json:"base_template"`
	AccountID      int64      `db:"account_id" json:"account_id"`
	Status         string     `db:"status" json:"status"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}
