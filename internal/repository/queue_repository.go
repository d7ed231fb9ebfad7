package repository

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/leadowl/leadowl-backend/internal/model"
)

type QueueRepositoryInterface interface {
	Create(e *model.CampaignQueueEntry) error
	ClaimDue(workspaceID *int64, now time.Time, limit int) ([]*model.CampaignQueueEntry, error)
	Release(ids []int64) error
	Finalize(id int64, sentDelta int, status string) error
	RequeueStale(staleBefore time.Time) (int, error)
	HasOpenEntries(campaignID int64) (bool, error)
}

type QueueRepository struct {
	DB *sql.DB
}

func (r *QueueRepository) Create(e *model.CampaignQueueEntry) error {
	e.CreatedAt = time.Now()
	if e.Status == "" {
		e.Status = model.QueueStatusQueued
	}
	query := `
        INSERT INTO campaign_queue (campaign_id, scheduled_date, leads_to_send, leads_sent, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `
	return r.DB.QueryRow(query, e.CampaignID, e.ScheduledDate, e.LeadsToSend, e.LeadsSent, e.Status, e.CreatedAt).Scan(&e.ID)
}

// ClaimDue atomically selects due queued entries and flips them to
// processing in a single statement. FOR UPDATE SKIP LOCKED makes concurrent
// invocations claim disjoint sets; an entry is owned by exactly one run
// until Release or Finalize writes its final status back.
func (r *QueueRepository) ClaimDue(workspaceID *int64, now time.Time, limit int) ([]*model.CampaignQueueEntry, error) {
	var ws sql.NullInt64
	if workspaceID != nil {
		ws = sql.NullInt64{Int64: *workspaceID, Valid: true}
	}
	query := `
        UPDATE campaign_queue
        SET status='processing', claimed_at=NOW(), updated_at=NOW()
        WHERE id IN (
            SELECT q.id FROM campaign_queue q
            JOIN campaigns c ON c.id = q.campaign_id
            WHERE q.status='queued'
              AND q.scheduled_date <= $1
              AND ($2::bigint IS NULL OR c.workspace_id = $2)
            ORDER BY q.scheduled_date, q.id
            LIMIT $3
            FOR UPDATE OF q SKIP LOCKED
        )
        RETURNING id, campaign_id, scheduled_date, leads_to_send, leads_sent, status, claimed_at, created_at, updated_at
    `
	rows, err := r.DB.Query(query, now, ws, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*model.CampaignQueueEntry{}
	for rows.Next() {
		e := &model.CampaignQueueEntry{}
		if err := rows.Scan(&e.ID, &e.CampaignID, &e.ScheduledDate, &e.LeadsToSend, &e.LeadsSent, &e.Status, &e.ClaimedAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Release puts claimed entries back in the queue untouched (dry runs,
// deferred capacity, fail-closed quota errors).
func (r *QueueRepository) Release(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE campaign_queue SET status='queued', claimed_at=NULL, updated_at=NOW() WHERE id = ANY($1)`
	_, err := r.DB.Exec(query, pq.Array(ids))
	return err
}

// Finalize advances the leads_sent watermark and writes the entry's final
// status for this pass.
func (r *QueueRepository) Finalize(id int64, sentDelta int, status string) error {
	query := `
        UPDATE campaign_queue
        SET leads_sent = leads_sent + $2, status=$3, claimed_at=NULL, updated_at=NOW()
        WHERE id=$1
    `
	_, err := r.DB.Exec(query, id, sentDelta, status)
	return err
}

// RequeueStale resets entries stuck in processing since before staleBefore
// back to queued. Crash recovery: a run that died mid-batch must not park
// its claims forever.
func (r *QueueRepository) RequeueStale(staleBefore time.Time) (int, error) {
	query := `
        UPDATE campaign_queue
        SET status='queued', claimed_at=NULL, updated_at=NOW()
        WHERE status='processing' AND claimed_at < $1
    `
	result, err := r.DB.Exec(query, staleBefore)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}

func (r *QueueRepository) HasOpenEntries(campaignID int64) (bool, error) {
	query := `
        SELECT EXISTS(
            SELECT 1 FROM campaign_queue
            WHERE campaign_id=$1 AND status='queued' AND leads_sent < leads_to_send
        )
    `
	var exists bool
	err := r.DB.QueryRow(query, campaignID).Scan(&exists)
	return exists, err
}

var _ QueueRepositoryInterface = (*QueueRepository)(nil)
