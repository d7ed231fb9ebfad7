package quota

import (
	"context"
	"time"
)

// Quota actions. DM and InMail share the LinkedIn message bucket.
const (
	ActionWhatsappMessage = "whatsapp_message"
	ActionLinkedinMessage = "linkedin_message"
	ActionLinkedinInvite  = "linkedin_invite"
)

// Result reports the outcome of a check-and-increment.
type Result struct {
	Allowed bool `json:"allowed"`
	Current int  `json:"current"`
	Limit   int  `json:"limit"`
}

// Ledger is the atomic daily usage counter store, keyed by
// (workspace, account, action, date). CheckAndIncrement must be atomic at
// the storage layer: no lost updates, no limit overrun under concurrent
// callers. Callers treat any error as fail-closed and refuse to send.
type Ledger interface {
	CheckAndIncrement(ctx context.Context, workspaceID int64, accountKey, action string, day time.Time, limit int) (*Result, error)
	GetUsage(ctx context.Context, workspaceID int64, accountKey, action string, day time.Time) (int, error)
}

// DayKey truncates a timestamp to the calendar date the counters are keyed on.
func DayKey(day time.Time) string {
	return day.Format("2006-01-02")
}
