package repository

import (
	"database/sql"

	"github.com/leadowl/leadowl-backend/internal/model"
)

type SettingsRepositoryInterface interface {
	GetByWorkspace(workspaceID int64) (*model.WorkspaceSettings, error)
}

type SettingsRepository struct {
	DB *sql.DB
}

// GetByWorkspace returns the workspace rate-limit settings, falling back to
// the documented per-channel defaults when the workspace has no row yet.
func (r *SettingsRepository) GetByWorkspace(workspaceID int64) (*model.WorkspaceSettings, error) {
	query := `
        SELECT workspace_id, whatsapp_daily_limit, whatsapp_interval_seconds,
               linkedin_daily_limit, linkedin_interval_seconds,
               linkedin_invite_daily_limit, max_retries
        FROM workspace_settings
        WHERE workspace_id = $1
    `
	var s model.WorkspaceSettings
	err := r.DB.QueryRow(query, workspaceID).Scan(
		&s.WorkspaceID, &s.WhatsappDailyLimit, &s.WhatsappIntervalSeconds,
		&s.LinkedinDailyLimit, &s.LinkedinIntervalSeconds,
		&s.LinkedinInviteDailyLimit, &s.MaxRetries,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.DefaultSettings(workspaceID), nil
		}
		return nil, err
	}
	return &s, nil
}

var _ SettingsRepositoryInterface = (*SettingsRepository)(nil)
