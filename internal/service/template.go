package service

import (
	"strings"

	"github.com/leadowl/leadowl-backend/internal/model"
)

// RenderTemplate substitutes lead fields into a message template. The
// placeholder set is fixed; an absent field renders as an empty string,
// never as the literal placeholder.
func RenderTemplate(template string, lead *model.Lead) string {
	fields := map[string]string{
		"name":         lead.Name,
		"first_name":   lead.FirstName,
		"last_name":    lead.LastName,
		"email":        lead.Email,
		"phone":        lead.Phone,
		"company":      lead.Company,
		"job_title":    lead.JobTitle,
		"city":         lead.City,
		"state":        lead.State,
		"country":      lead.Country,
		"linkedin_url": lead.LinkedinURL,
		"industry":     lead.Industry,
	}

	result := template
	for k, v := range fields {
		result = strings.ReplaceAll(result, "{"+k+"}", v)
	}
	return result
}
