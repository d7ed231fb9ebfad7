package repository

import (
	"database/sql"

	"github.com/leadowl/leadowl-backend/internal/model"
)

type AccountRepositoryInterface interface {
	GetByID(id int64) (*model.Account, error)
}

type AccountRepository struct {
	DB *sql.DB
}

func (r *AccountRepository) GetByID(id int64) (*model.Account, error) {
	query := `
        SELECT id, workspace_id, account_id, channel, status, created_at
        FROM accounts
        WHERE id = $1
    `
	var a model.Account
	err := r.DB.QueryRow(query, id).Scan(&a.ID, &a.WorkspaceID, &a.AccountID, &a.Channel, &a.Status, &a.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

var _ AccountRepositoryInterface = (*AccountRepository)(nil)
