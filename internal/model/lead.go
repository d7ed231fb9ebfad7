package model

// Lead is the read-only projection of a prospect used for templating and
// channel addressing. Empty string means the field is absent.
type Lead struct {
	ID          int64  `db:"id" json:"id"`
	WorkspaceID int64  `db:"workspace_id" json:"workspace_id"`
	Name        string `db:"name" json:"name"`
	FirstName   string `db:"first_name" json:"first_name"`
	LastName    string `db:"last_name" json:"last_name"`
	Email       string `db:"email" json:"email"`
	Phone       string `db:"phone" json:"phone"`
	Company     string `db:"company" json:"company"`
	JobTitle    string `db:"job_title" json:"job_title"`
	City        string `db:"city" json:"city"`
	State       string `db:"state" json:"state"`
	Country     string `db:"country" json:"country"`
	LinkedinURL string `db:"linkedin_url" json:"linkedin_url"`
	Industry    string `db:"industry" json:"industry"`
}
