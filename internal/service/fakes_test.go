package service_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	appErrors "github.com/leadowl/leadowl-backend/internal/errors"
	"github.com/leadowl/leadowl-backend/internal/model"
	"github.com/leadowl/leadowl-backend/internal/provider"
	"github.com/leadowl/leadowl-backend/internal/repository"
)

// In-memory fakes mirroring the SQL repositories' semantics.

type fakeCampaignRepo struct {
	campaigns map[int64]*model.Campaign
	order     []int64
	nextID    int64
}

func newFakeCampaignRepo() *fakeCampaignRepo {
	return &fakeCampaignRepo{campaigns: map[int64]*model.Campaign{}}
}

func (r *fakeCampaignRepo) Create(c *model.Campaign) error {
	r.nextID++
	c.ID = r.nextID
	c.CreatedAt = time.Now()
	if c.Status == "" {
		c.Status = model.CampaignStatusDraft
	}
	r.campaigns[c.ID] = c
	r.order = append(r.order, c.ID)
	return nil
}

func (r *fakeCampaignRepo) GetByID(id int64) (*model.Campaign, error) {
	c, ok := r.campaigns[id]
	if !ok {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	return c, nil
}

func (r *fakeCampaignRepo) ListCampaigns(offset, limit int, campaignType, status string) ([]*model.Campaign, int, error) {
	matched := []*model.Campaign{}
	for _, id := range r.order {
		c := r.campaigns[id]
		if campaignType != "" && c.Type != campaignType {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		matched = append(matched, c)
	}
	total := len(matched)
	if offset >= total {
		return []*model.Campaign{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (r *fakeCampaignRepo) UpdateStatus(campaignID int64, status string) error {
	if c, ok := r.campaigns[campaignID]; ok {
		c.Status = status
	}
	return nil
}

type fakeCampaignLeadRepo struct {
	rows   map[int64]*model.CampaignLead
	order  []int64
	nextID int64
}

func newFakeCampaignLeadRepo() *fakeCampaignLeadRepo {
	return &fakeCampaignLeadRepo{rows: map[int64]*model.CampaignLead{}}
}

func (r *fakeCampaignLeadRepo) Attach(campaignID, leadID int64) (*model.CampaignLead, error) {
	for _, id := range r.order {
		cl := r.rows[id]
		if cl.CampaignID == campaignID && cl.LeadID == leadID {
			return cl, nil
		}
	}
	r.nextID++
	cl := &model.CampaignLead{
		ID:         r.nextID,
		CampaignID: campaignID,
		LeadID:     leadID,
		Status:     model.CampaignLeadStatusPending,
	}
	r.rows[cl.ID] = cl
	r.order = append(r.order, cl.ID)
	return cl, nil
}

func (r *fakeCampaignLeadRepo) eligible(cl *model.CampaignLead, maxRetries int) bool {
	if cl.Status == model.CampaignLeadStatusPending {
		return true
	}
	return cl.Status == model.CampaignLeadStatusFailed && cl.RetryCount < maxRetries
}

func (r *fakeCampaignLeadRepo) FetchEligible(campaignID int64, maxRetries, limit int) ([]*model.CampaignLead, error) {
	out := []*model.CampaignLead{}
	for _, id := range r.order {
		cl := r.rows[id]
		if cl.CampaignID == campaignID && r.eligible(cl, maxRetries) {
			out = append(out, cl)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakeCampaignLeadRepo) HasEligible(campaignID int64, maxRetries int) (bool, error) {
	for _, cl := range r.rows {
		if cl.CampaignID == campaignID && r.eligible(cl, maxRetries) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeCampaignLeadRepo) HasPending(campaignID int64) (bool, error) {
	for _, cl := range r.rows {
		if cl.CampaignID == campaignID && cl.Status == model.CampaignLeadStatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeCampaignLeadRepo) CountPending(campaignID int64) (int, error) {
	count := 0
	for _, cl := range r.rows {
		if cl.CampaignID == campaignID && cl.Status == model.CampaignLeadStatusPending {
			count++
		}
	}
	return count, nil
}

func (r *fakeCampaignLeadRepo) MarkSent(id int64, providerMessageID string, sentAt time.Time) error {
	cl, ok := r.rows[id]
	if !ok {
		return errors.New("campaign lead not found")
	}
	cl.Status = model.CampaignLeadStatusSent
	cl.ProviderMessageID = providerMessageID
	cl.LastError = ""
	cl.SentAt = &sentAt
	return nil
}

func (r *fakeCampaignLeadRepo) MarkFailed(id int64, lastError string, terminal bool, maxRetries int) error {
	cl, ok := r.rows[id]
	if !ok {
		return errors.New("campaign lead not found")
	}
	cl.RetryCount++
	cl.Status = model.CampaignLeadStatusPending
	if terminal {
		cl.Status = model.CampaignLeadStatusFailed
		if cl.RetryCount < maxRetries {
			cl.RetryCount = maxRetries
		}
	}
	cl.LastError = lastError
	return nil
}

func (r *fakeCampaignLeadRepo) StatsByCampaign(campaignID int64) (map[string]int, error) {
	stats := map[string]int{"pending": 0, "sent": 0, "failed": 0}
	for _, cl := range r.rows {
		if cl.CampaignID == campaignID {
			stats[cl.Status]++
		}
	}
	return stats, nil
}

type fakeQueueRepo struct {
	entries   map[int64]*model.CampaignQueueEntry
	order     []int64
	nextID    int64
	campaigns *fakeCampaignRepo
	released  []int64
}

func newFakeQueueRepo(campaigns *fakeCampaignRepo) *fakeQueueRepo {
	return &fakeQueueRepo{entries: map[int64]*model.CampaignQueueEntry{}, campaigns: campaigns}
}

func (r *fakeQueueRepo) Create(e *model.CampaignQueueEntry) error {
	r.nextID++
	e.ID = r.nextID
	if e.Status == "" {
		e.Status = model.QueueStatusQueued
	}
	r.entries[e.ID] = e
	r.order = append(r.order, e.ID)
	return nil
}

func (r *fakeQueueRepo) ClaimDue(workspaceID *int64, now time.Time, limit int) ([]*model.CampaignQueueEntry, error) {
	claimed := []*model.CampaignQueueEntry{}
	for _, id := range r.order {
		e := r.entries[id]
		if e.Status != model.QueueStatusQueued || e.ScheduledDate.After(now) {
			continue
		}
		if workspaceID != nil {
			c, ok := r.campaigns.campaigns[e.CampaignID]
			if !ok || c.WorkspaceID != *workspaceID {
				continue
			}
		}
		e.Status = model.QueueStatusProcessing
		at := now
		e.ClaimedAt = &at
		claimed = append(claimed, e)
		if len(claimed) == limit {
			break
		}
	}
	return claimed, nil
}

func (r *fakeQueueRepo) Release(ids []int64) error {
	for _, id := range ids {
		if e, ok := r.entries[id]; ok {
			e.Status = model.QueueStatusQueued
			e.ClaimedAt = nil
		}
		r.released = append(r.released, id)
	}
	return nil
}

func (r *fakeQueueRepo) Finalize(id int64, sentDelta int, status string) error {
	e, ok := r.entries[id]
	if !ok {
		return errors.New("queue entry not found")
	}
	e.LeadsSent += sentDelta
	e.Status = status
	e.ClaimedAt = nil
	return nil
}

func (r *fakeQueueRepo) RequeueStale(staleBefore time.Time) (int, error) {
	n := 0
	for _, e := range r.entries {
		if e.Status == model.QueueStatusProcessing && e.ClaimedAt != nil && e.ClaimedAt.Before(staleBefore) {
			e.Status = model.QueueStatusQueued
			e.ClaimedAt = nil
			n++
		}
	}
	return n, nil
}

func (r *fakeQueueRepo) HasOpenEntries(campaignID int64) (bool, error) {
	for _, e := range r.entries {
		if e.CampaignID == campaignID && e.Status == model.QueueStatusQueued && e.LeadsSent < e.LeadsToSend {
			return true, nil
		}
	}
	return false, nil
}

type fakeLeadRepo struct {
	leads map[int64]*model.Lead
}

func (r *fakeLeadRepo) GetByID(id int64) (*model.Lead, error) {
	return r.leads[id], nil
}

type fakeAccountRepo struct {
	accounts map[int64]*model.Account
}

func (r *fakeAccountRepo) GetByID(id int64) (*model.Account, error) {
	return r.accounts[id], nil
}

type fakeSettingsRepo struct {
	settings *model.WorkspaceSettings
}

func (r *fakeSettingsRepo) GetByWorkspace(workspaceID int64) (*model.WorkspaceSettings, error) {
	if r.settings == nil {
		return model.DefaultSettings(workspaceID), nil
	}
	return r.settings, nil
}

// fakeDispatcher records every request and replies from a scripted queue,
// defaulting to success once the script runs out.
type fakeDispatcher struct {
	script []*provider.SendResult
	calls  []provider.SendRequest
}

func (d *fakeDispatcher) Send(ctx context.Context, req provider.SendRequest) *provider.SendResult {
	d.calls = append(d.calls, req)
	if len(d.script) > 0 {
		res := d.script[0]
		d.script = d.script[1:]
		return res
	}
	return &provider.SendResult{Success: true, ProviderMessageID: fmt.Sprintf("prov-msg-%d", len(d.calls))}
}

var (
	_ repository.CampaignRepositoryInterface     = (*fakeCampaignRepo)(nil)
	_ repository.CampaignLeadRepositoryInterface = (*fakeCampaignLeadRepo)(nil)
	_ repository.QueueRepositoryInterface        = (*fakeQueueRepo)(nil)
	_ repository.LeadRepositoryInterface         = (*fakeLeadRepo)(nil)
	_ repository.AccountRepositoryInterface      = (*fakeAccountRepo)(nil)
	_ repository.SettingsRepositoryInterface     = (*fakeSettingsRepo)(nil)
	_ provider.Dispatcher                        = (*fakeDispatcher)(nil)
)
