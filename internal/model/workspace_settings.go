package model

// Per-workspace rate-limit settings. Defaults apply when a workspace has no
// settings row yet.
const (
	DefaultWhatsappDailyLimit       = 50
	DefaultWhatsappIntervalSeconds  = 15
	DefaultLinkedinDailyLimit       = 50
	DefaultLinkedinIntervalSeconds  = 30
	DefaultLinkedinInviteDailyLimit = 25
	DefaultMaxRetries               = 3
)

type WorkspaceSettings struct {
	WorkspaceID              int64 `db:"workspace_id" json:"workspace_id"`
	WhatsappDailyLimit       int   `db:"whatsapp_daily_limit" json:"whatsapp_daily_limit"`
	WhatsappIntervalSeconds  int   `db:"whatsapp_interval_seconds" json:"whatsapp_interval_seconds"`
	LinkedinDailyLimit       int   `db:"linkedin_daily_limit" json:"linkedin_daily_limit"`
	LinkedinIntervalSeconds  int   `db:"linkedin_interval_seconds" json:"linkedin_interval_seconds"`
	LinkedinInviteDailyLimit int   `db:"linkedin_invite_daily_limit" json:"linkedin_invite_daily_limit"`
	MaxRetries               int   `db:"max_retries" json:"max_retries"`
}

// DefaultSettings returns the documented per-channel defaults.
func DefaultSettings(workspaceID int64) *WorkspaceSettings {
	return &WorkspaceSettings{
		WorkspaceID:              workspaceID,
		WhatsappDailyLimit:       DefaultWhatsappDailyLimit,
		WhatsappIntervalSeconds:  DefaultWhatsappIntervalSeconds,
		LinkedinDailyLimit:       DefaultLinkedinDailyLimit,
		LinkedinIntervalSeconds:  DefaultLinkedinIntervalSeconds,
		LinkedinInviteDailyLimit: DefaultLinkedinInviteDailyLimit,
		MaxRetries:               DefaultMaxRetries,
	}
}
