package repository

import (
	"database/sql"

	"github.com/leadowl/leadowl-backend/internal/model"
)

type LeadRepositoryInterface interface {
	GetByID(id int64) (*model.Lead, error)
}

type LeadRepository struct {
	DB *sql.DB
}

// GetByID fetches the templating/addressing projection of a lead.
// Absent fields come back as empty strings.
func (r *LeadRepository) GetByID(id int64) (*model.Lead, error) {
	query := `
        SELECT id, workspace_id,
               COALESCE(name, ''), COALESCE(first_name, ''), COALESCE(last_name, ''),
               COALESCE(email, ''), COALESCE(phone, ''), COALESCE(company, ''),
               COALESCE(job_title, ''), COALESCE(city, ''), COALESCE(state, ''),
               COALESCE(country, ''), COALESCE(linkedin_url, ''), COALESCE(industry, '')
        FROM leads
        WHERE id = $1
    `
	var l model.Lead
	err := r.DB.QueryRow(query, id).Scan(
		&l.ID, &l.WorkspaceID,
		&l.Name, &l.FirstName, &l.LastName,
		&l.Email, &l.Phone, &l.Company,
		&l.JobTitle, &l.City, &l.State,
		&l.Country, &l.LinkedinURL, &l.Industry,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

var _ LeadRepositoryInterface = (*LeadRepository)(nil)
