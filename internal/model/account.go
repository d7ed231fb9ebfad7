package model

import "time"

const (
	AccountStatusConnected    = "connected"
	AccountStatusDisconnected = "disconnected"
)

// Account is a connected provider-side messaging identity. The queue
// processor only reads it; disconnection happens via webhooks elsewhere.
type Account struct {
	ID          int64     `db:"id" json:"id"`
	WorkspaceID int64     `db:"workspace_id" json:"workspace_id"`
	AccountID   string    `db:"account_id" json:"account_id"`
	Channel     string    `db:"channel" json:"channel"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
