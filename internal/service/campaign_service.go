package service

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/leadowl/leadowl-backend/internal/model"
	"github.com/leadowl/leadowl-backend/internal/repository"
)

type CampaignService struct {
	CampaignRepo     repository.CampaignRepositoryInterface
	CampaignLeadRepo repository.CampaignLeadRepositoryInterface
	LeadRepo         repository.LeadRepositoryInterface
	QueueRepo        repository.QueueRepositoryInterface
	SettingsRepo     repository.SettingsRepositoryInterface
}

type CreateCampaignInput struct {
	WorkspaceID    int64
	Name           string
	Type           string
	LinkedinAction string
	BaseTemplate   string
	AccountID      int64
	LeadIDs        []int64
}

type CampaignDetails struct {
	ID             int64          `json:"id"`
	WorkspaceID    int64          `json:"workspace_id"`
	Name           string         `json:"name"`
	Type           string         `json:"type"`
	LinkedinAction string         `json:"linkedin_action,omitempty"`
	Status         string         `json:"status"`
	BaseTemplate   string         `json:"base_template"`
	AccountID      int64          `json:"account_id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      *time.Time     `json:"updated_at"`
	Stats          map[string]int `json:"stats"`
}

// CreateCampaign validates the channel configuration, creates the campaign
// and attaches its leads as pending campaign_leads rows.
func (s *CampaignService) CreateCampaign(in CreateCampaignInput) (*model.Campaign, error) {
	switch in.Type {
	case model.CampaignTypeWhatsapp:
		if in.LinkedinAction != "" {
			return nil, fmt.Errorf("linkedin_action is only valid for linkedin campaigns")
		}
	case model.CampaignTypeLinkedin:
		switch in.LinkedinAction {
		case model.LinkedinActionDM, model.LinkedinActionInMail, model.LinkedinActionInvite:
		default:
			return nil, fmt.Errorf("invalid linkedin_action: %q", in.LinkedinAction)
		}
	default:
		return nil, fmt.Errorf("invalid campaign type: %q", in.Type)
	}

	if strings.TrimSpace(in.BaseTemplate) == "" {
		return nil, fmt.Errorf("template cannot be empty")
	}

	c := &model.Campaign{
		WorkspaceID:    in.WorkspaceID,
		Name:           in.Name,
		Type:           in.Type,
		LinkedinAction: in.LinkedinAction,
		BaseTemplate:   in.BaseTemplate,
		AccountID:      in.AccountID,
		Status:         model.CampaignStatusDraft,
	}
	if err := s.CampaignRepo.Create(c); err != nil {
		return nil, err
	}

	for _, leadID := range in.LeadIDs {
		// idempotent attach, duplicates resolve to the existing row
		if _, err := s.CampaignLeadRepo.Attach(c.ID, leadID); err != nil {
			log.Println("⚠️ failed to attach lead", leadID, "to campaign", c.ID, ":", err)
		}
	}

	return c, nil
}

// RenderPreview renders the campaign template against a single lead.
func (s *CampaignService) RenderPreview(campaignID, leadID int64, overrideTemplate *string) (string, error) {
	campaign, err := s.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return "", err
	}

	lead, err := s.LeadRepo.GetByID(leadID)
	if err != nil {
		return "", err
	}
	if lead == nil {
		return "", fmt.Errorf("lead not found")
	}

	template := campaign.BaseTemplate
	if overrideTemplate != nil && strings.TrimSpace(*overrideTemplate) != "" {
		template = *overrideTemplate
	}
	if strings.TrimSpace(template) == "" {
		return "", fmt.Errorf("template cannot be empty")
	}

	return RenderTemplate(template, lead), nil
}

// ScheduleCampaign splits the campaign's pending leads into per-day queue
// entries, each capped at the channel's daily limit, starting at startDate.
func (s *CampaignService) ScheduleCampaign(campaignID int64, startDate time.Time) ([]*model.CampaignQueueEntry, error) {
	campaign, err := s.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Status != model.CampaignStatusDraft && campaign.Status != model.CampaignStatusScheduled {
		return nil, fmt.Errorf("campaign cannot be scheduled in status: %s", campaign.Status)
	}

	pending, err := s.CampaignLeadRepo.CountPending(campaignID)
	if err != nil {
		return nil, err
	}
	if pending == 0 {
		return nil, fmt.Errorf("campaign has no pending leads")
	}

	settings, err := s.SettingsRepo.GetByWorkspace(campaign.WorkspaceID)
	if err != nil {
		return nil, err
	}
	dailyLimit := dailyLimitFor(campaign, settings)

	day := startDate
	entries := []*model.CampaignQueueEntry{}
	for remaining := pending; remaining > 0; remaining -= dailyLimit {
		n := remaining
		if n > dailyLimit {
			n = dailyLimit
		}
		e := &model.CampaignQueueEntry{
			CampaignID:    campaignID,
			ScheduledDate: day,
			LeadsToSend:   n,
			Status:        model.QueueStatusQueued,
		}
		if err := s.QueueRepo.Create(e); err != nil {
			return entries, err
		}
		entries = append(entries, e)
		day = day.AddDate(0, 0, 1)
	}

	if err := s.CampaignRepo.UpdateStatus(campaignID, model.CampaignStatusScheduled); err != nil {
		return entries, err
	}
	campaign.Status = model.CampaignStatusScheduled

	return entries, nil
}

func dailyLimitFor(c *model.Campaign, s *model.WorkspaceSettings) int {
	if c.Type == model.CampaignTypeWhatsapp {
		return s.WhatsappDailyLimit
	}
	if c.LinkedinAction == model.LinkedinActionInvite {
		return s.LinkedinInviteDailyLimit
	}
	return s.LinkedinDailyLimit
}

// ListCampaigns fetches campaigns with pagination
func (s *CampaignService) ListCampaigns(page, pageSize int, campaignType, status string) ([]model.Campaign, map[string]int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	ptrs, total, err := s.CampaignRepo.ListCampaigns(offset, pageSize, campaignType, status)
	if err != nil {
		return nil, nil, err
	}

	campaigns := make([]model.Campaign, len(ptrs))
	for i, c := range ptrs {
		campaigns[i] = *c
	}

	totalPages := (total + pageSize - 1) / pageSize
	pagination := map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": totalPages,
	}

	return campaigns, pagination, nil
}

// GetCampaignDetails fetches a campaign plus per-status lead stats. The
// stats are always derived from the campaign_leads rows, never stored.
func (s *CampaignService) GetCampaignDetails(campaignID int64) (*CampaignDetails, error) {
	campaign, err := s.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}

	stats, err := s.CampaignLeadRepo.StatsByCampaign(campaignID)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, count := range stats {
		total += count
	}
	stats["total"] = total

	return &CampaignDetails{
		ID:             campaign.ID,
		WorkspaceID:    campaign.WorkspaceID,
		Name:           campaign.Name,
		Type:           campaign.Type,
		LinkedinAction: campaign.LinkedinAction,
		Status:         campaign.Status,
		BaseTemplate:   campaign.BaseTemplate,
		AccountID:      campaign.AccountID,
		CreatedAt:      campaign.CreatedAt,
		UpdatedAt:      campaign.UpdatedAt,
		Stats:          stats,
	}, nil
}
