package model

import "time"

// Queue entry statuses. "processing" is the storage-level claim marker so
// concurrent invocations skip entries already owned by another run; the
// processor always writes back "queued" or "completed" when it is done.
const (
	QueueStatusQueued     = "queued"
	QueueStatusProcessing = "processing"
	QueueStatusCompleted  = "completed"
)

// CampaignQueueEntry is a day's allotment of sends for a campaign, one row
// per (campaign, scheduled_date). LeadsSent only ever grows.
type CampaignQueueEntry struct {
	ID            int64      `db:"id" json:"id"`
	CampaignID    int64      `db:"campaign_id" json:"campaign_id"`
	ScheduledDate time.Time  `db:"scheduled_date" json:"scheduled_date"`
	LeadsToSend   int        `db:"leads_to_send" json:"leads_to_send"`
	LeadsSent     int        `db:"leads_sent" json:"leads_sent"`
	Status        string     `db:"status" json:"status"`
	ClaimedAt     *time.Time `db:"claimed_at" json:"claimed_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// Remaining is how many sends this entry still owes.
func (e *CampaignQueueEntry) Remaining() int {
	if e.LeadsToSend <= e.LeadsSent {
		return 0
	}
	return e.LeadsToSend - e.LeadsSent
}
