package service

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/leadowl/leadowl-backend/internal/errors"
	"github.com/leadowl/leadowl-backend/internal/metrics"
	"github.com/leadowl/leadowl-backend/internal/model"
	"github.com/leadowl/leadowl-backend/internal/provider"
	"github.com/leadowl/leadowl-backend/internal/quota"
	"github.com/leadowl/leadowl-backend/internal/repository"
)

// DefaultClaimLimit caps how many due queue entries one invocation claims.
const DefaultClaimLimit = 10

// Pacing floors. The jittered interval never drops below these.
const (
	minMessageDelay = 10 * time.Second
	minInviteDelay  = 2 * time.Second
)

// staleClaimAge is how long an entry may sit in processing before it is
// assumed orphaned by a crashed run.
const staleClaimAge = time.Hour

// Entry-level result reasons.
const (
	ReasonDryRun              = "dry_run"
	ReasonCampaignNotFound    = "campaign_not_found"
	ReasonAccountNotFound     = "account_not_found"
	ReasonAccountDisconnected = "account_disconnected"
	ReasonInvalidCampaign     = "invalid_campaign"
	ReasonNoCapacity          = "no_capacity"
	ReasonNoEligibleLeads     = "no_eligible_leads"
	ReasonQuotaError          = "quota_error"
	ReasonStorageError        = "storage_error"
)

type ProcessOptions struct {
	WorkspaceID *int64 `json:"workspace_id,omitempty"`
	Limit       int    `json:"limit,omitempty"`
	DryRun      bool   `json:"dry_run,omitempty"`
}

type EntryResult struct {
	QueueEntryID   int64  `json:"queue_entry_id"`
	CampaignID     int64  `json:"campaign_id"`
	Eligible       int    `json:"eligible"`
	Sent           int    `json:"sent"`
	Failed         int    `json:"failed"`
	EntryStatus    string `json:"entry_status"`
	CampaignStatus string `json:"campaign_status,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

type ProcessResult struct {
	RunID        string        `json:"run_id"`
	Processed    []EntryResult `json:"processed"`
	TotalClaimed int           `json:"total_claimed"`
	DryRun       bool          `json:"dry_run"`
}

// QueueProcessor claims due queue entries and drives the per-lead send
// loop: capacity gating via the quota ledger, sequential jittered sends,
// retry bookkeeping, and ground-truth status recomputation afterwards.
// Safe to invoke concurrently because claiming is atomic in storage.
type QueueProcessor struct {
	QueueRepo        repository.QueueRepositoryInterface
	CampaignRepo     repository.CampaignRepositoryInterface
	CampaignLeadRepo repository.CampaignLeadRepositoryInterface
	LeadRepo         repository.LeadRepositoryInterface
	AccountRepo      repository.AccountRepositoryInterface
	SettingsRepo     repository.SettingsRepositoryInterface
	Ledger           quota.Ledger
	Dispatcher       provider.Dispatcher

	// Injectable for deterministic tests.
	Now    func() time.Time
	Sleep  func(time.Duration)
	Jitter func() float64

	defaultsOnce sync.Once
}

// applyDefaults fills the injectable fields exactly once; the same
// processor instance serves concurrent invocations.
func (p *QueueProcessor) applyDefaults() {
	p.defaultsOnce.Do(func() {
		if p.Now == nil {
			p.Now = time.Now
		}
		if p.Sleep == nil {
			p.Sleep = time.Sleep
		}
		if p.Jitter == nil {
			p.Jitter = func() float64 { return 0.8 + rand.Float64()*0.4 }
		}
	})
}

// Process runs one invocation: claim up to limit due entries and work
// through them sequentially. Per-lead and per-entry failures never abort
// the rest of the batch.
func (p *QueueProcessor) Process(ctx context.Context, opts ProcessOptions) (*ProcessResult, error) {
	p.applyDefaults()

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultClaimLimit
	}
	now := p.Now()

	// recover claims orphaned by a crashed run before claiming our own
	if n, err := p.QueueRepo.RequeueStale(now.Add(-staleClaimAge)); err != nil {
		log.Println("⚠️ failed to requeue stale claims:", err)
	} else if n > 0 {
		log.Printf("requeued %d stale queue claims", n)
	}

	entries, err := p.QueueRepo.ClaimDue(opts.WorkspaceID, now, limit)
	if err != nil {
		return nil, err
	}

	result := &ProcessResult{
		RunID:        uuid.New().String(),
		Processed:    []EntryResult{},
		TotalClaimed: len(entries),
		DryRun:       opts.DryRun,
	}

	if opts.DryRun {
		// preview only: release everything we just claimed, untouched
		ids := make([]int64, 0, len(entries))
		for _, e := range entries {
			ids = append(ids, e.ID)
			result.Processed = append(result.Processed, EntryResult{
				QueueEntryID: e.ID,
				CampaignID:   e.CampaignID,
				Eligible:     e.Remaining(),
				EntryStatus:  model.QueueStatusQueued,
				Reason:       ReasonDryRun,
			})
		}
		if err := p.QueueRepo.Release(ids); err != nil {
			return nil, err
		}
		return result, nil
	}

	// accounts whose quota ledger errored this run: fail-closed
	blocked := map[string]bool{}

	for _, entry := range entries {
		res := p.processEntry(ctx, entry, now, blocked)
		result.Processed = append(result.Processed, res)
		metrics.QueueEntriesProcessedTotal.WithLabelValues(res.EntryStatus).Inc()
	}

	log.Printf("queue run %s: claimed=%d processed=%d", result.RunID, result.TotalClaimed, len(result.Processed))
	return result, nil
}

func (p *QueueProcessor) processEntry(ctx context.Context, entry *model.CampaignQueueEntry, now time.Time, blocked map[string]bool) EntryResult {
	res := EntryResult{QueueEntryID: entry.ID, CampaignID: entry.CampaignID}

	campaign, err := p.CampaignRepo.GetByID(entry.CampaignID)
	if err != nil {
		var notFound *appErrors.ErrCampaignNotFound
		if errors.As(err, &notFound) {
			// a dangling entry would be reclaimed forever, abandon it
			p.finalize(&res, entry, 0, model.QueueStatusCompleted, ReasonCampaignNotFound)
			return res
		}
		p.release(&res, entry, ReasonStorageError)
		return res
	}

	account, err := p.AccountRepo.GetByID(campaign.AccountID)
	if err != nil {
		p.release(&res, entry, ReasonStorageError)
		return res
	}
	if account == nil {
		p.finalize(&res, entry, 0, model.QueueStatusCompleted, ReasonAccountNotFound)
		return res
	}
	if account.Status != model.AccountStatusConnected {
		// dead account: abandon rather than retry indefinitely
		p.finalize(&res, entry, 0, model.QueueStatusCompleted, ReasonAccountDisconnected)
		return res
	}

	action := sendAction(campaign)
	if action == "" {
		p.finalize(&res, entry, 0, model.QueueStatusCompleted, ReasonInvalidCampaign)
		return res
	}

	settings, err := p.SettingsRepo.GetByWorkspace(campaign.WorkspaceID)
	if err != nil {
		p.release(&res, entry, ReasonStorageError)
		return res
	}

	quotaAction := quotaActionFor(action)
	dailyLimit, interval := limitsFor(settings, action)
	accountKey := account.AccountID

	if blocked[accountKey] {
		p.release(&res, entry, ReasonQuotaError)
		return res
	}

	usage, err := p.Ledger.GetUsage(ctx, campaign.WorkspaceID, accountKey, quotaAction, now)
	if err != nil {
		// fail closed: never assume quota is available
		blocked[accountKey] = true
		p.release(&res, entry, ReasonQuotaError)
		return res
	}
	capacity := dailyLimit - usage
	if capacity <= 0 {
		// backpressure, not failure: defer to the next invocation
		p.release(&res, entry, ReasonNoCapacity)
		return res
	}

	batch := entry.Remaining()
	if batch > capacity {
		batch = capacity
	}
	if batch <= 0 {
		p.finalize(&res, entry, 0, model.QueueStatusCompleted, "")
		return res
	}

	eligible, err := p.CampaignLeadRepo.FetchEligible(entry.CampaignID, settings.MaxRetries, batch)
	if err != nil {
		p.release(&res, entry, ReasonStorageError)
		return res
	}
	res.Eligible = len(eligible)
	if len(eligible) == 0 {
		p.finalize(&res, entry, 0, model.QueueStatusCompleted, ReasonNoEligibleLeads)
		return res
	}

	sent, failed := 0, 0
	for i, cl := range eligible {
		if i > 0 {
			p.Sleep(p.jitteredDelay(interval, action))
		}

		// The batch-level capacity read above can go stale under concurrent
		// invocations; this atomic increment is the actual safety net.
		q, qErr := p.Ledger.CheckAndIncrement(ctx, campaign.WorkspaceID, accountKey, quotaAction, now, dailyLimit)
		if qErr != nil {
			blocked[accountKey] = true
			res.Reason = ReasonQuotaError
			break
		}
		if !q.Allowed {
			metrics.QuotaDenialsTotal.WithLabelValues(quotaAction).Inc()
			res.Reason = ReasonNoCapacity
			break
		}

		if p.sendLead(ctx, campaign, account, action, cl, settings) {
			sent++
		} else {
			failed++
		}
	}
	res.Sent = sent
	res.Failed = failed

	status := model.QueueStatusQueued
	if entry.LeadsSent+sent >= entry.LeadsToSend {
		status = model.QueueStatusCompleted
	} else if res.Reason == "" {
		// the allotment is not exhausted but the eligible pool might be;
		// re-check ground truth rather than infer from this batch
		remaining, rErr := p.CampaignLeadRepo.HasEligible(entry.CampaignID, settings.MaxRetries)
		if rErr == nil && !remaining {
			status = model.QueueStatusCompleted
		}
	}
	p.finalize(&res, entry, sent, status, res.Reason)
	return res
}

// sendLead renders, dispatches and records the outcome for a single lead.
// Returns true on a successful send. Errors stay on the campaign_lead row.
func (p *QueueProcessor) sendLead(ctx context.Context, campaign *model.Campaign, account *model.Account, action provider.Action, cl *model.CampaignLead, settings *model.WorkspaceSettings) bool {
	lead, err := p.LeadRepo.GetByID(cl.LeadID)
	if err != nil {
		p.recordFailure(cl, action, err.Error(), cl.RetryCount+1 >= settings.MaxRetries, settings.MaxRetries, "storage_error")
		return false
	}
	if lead == nil {
		// missing data, retrying cannot fix it
		p.recordFailure(cl, action, appErrors.NewLeadNotFound(cl.LeadID).Error(), true, settings.MaxRetries, "lead_not_found")
		return false
	}

	text := RenderTemplate(campaign.BaseTemplate, lead)
	recipient := lead.Phone
	if campaign.Type == model.CampaignTypeLinkedin {
		recipient = lead.LinkedinURL
	}

	result := p.Dispatcher.Send(ctx, provider.SendRequest{
		AccountID: account.AccountID,
		Action:    action,
		Recipient: recipient,
		Text:      text,
	})

	if result.Success {
		if err := p.CampaignLeadRepo.MarkSent(cl.ID, result.ProviderMessageID, p.Now()); err != nil {
			log.Println("⚠️ failed to mark lead sent:", err)
		}
		metrics.MessagesSentTotal.WithLabelValues(string(action)).Inc()
		return true
	}

	terminal := result.Terminal() || cl.RetryCount+1 >= settings.MaxRetries
	p.recordFailure(cl, action, result.ErrorDetail, terminal, settings.MaxRetries, result.ErrorClass)
	return false
}

func (p *QueueProcessor) recordFailure(cl *model.CampaignLead, action provider.Action, detail string, terminal bool, maxRetries int, reason string) {
	if err := p.CampaignLeadRepo.MarkFailed(cl.ID, detail, terminal, maxRetries); err != nil {
		log.Println("⚠️ failed to record lead failure:", err)
	}
	metrics.MessagesFailedTotal.WithLabelValues(string(action), reason).Inc()
}

// finalize writes the entry's final state and recomputes the campaign
// status from ground truth.
func (p *QueueProcessor) finalize(res *EntryResult, entry *model.CampaignQueueEntry, sentDelta int, status, reason string) {
	if err := p.QueueRepo.Finalize(entry.ID, sentDelta, status); err != nil {
		log.Println("⚠️ failed to finalize queue entry:", err)
	}
	res.EntryStatus = status
	res.Reason = reason

	resolver := &StatusResolver{QueueRepo: p.QueueRepo, CampaignLeadRepo: p.CampaignLeadRepo}
	campaignStatus, err := resolver.Resolve(entry.CampaignID)
	if err != nil {
		log.Println("⚠️ failed to resolve campaign status:", err)
		return
	}
	if err := p.CampaignRepo.UpdateStatus(entry.CampaignID, campaignStatus); err != nil {
		log.Println("⚠️ failed to update campaign status:", err)
		return
	}
	res.CampaignStatus = campaignStatus
}

// release puts the entry back unmodified for a later invocation.
func (p *QueueProcessor) release(res *EntryResult, entry *model.CampaignQueueEntry, reason string) {
	if err := p.QueueRepo.Release([]int64{entry.ID}); err != nil {
		log.Println("⚠️ failed to release queue entry:", err)
	}
	res.EntryStatus = model.QueueStatusQueued
	res.Reason = reason
}

func (p *QueueProcessor) jitteredDelay(base time.Duration, action provider.Action) time.Duration {
	floor := minMessageDelay
	if action == provider.ActionLinkedinInvite {
		floor = minInviteDelay
	}
	d := time.Duration(float64(base) * p.Jitter())
	if d < floor {
		d = floor
	}
	return d
}

// sendAction maps a campaign's configuration onto a provider action.
// Empty means the campaign is misconfigured.
func sendAction(c *model.Campaign) provider.Action {
	switch c.Type {
	case model.CampaignTypeWhatsapp:
		return provider.ActionWhatsappMessage
	case model.CampaignTypeLinkedin:
		switch c.LinkedinAction {
		case model.LinkedinActionDM:
			return provider.ActionLinkedinDM
		case model.LinkedinActionInMail:
			return provider.ActionLinkedinInMail
		case model.LinkedinActionInvite:
			return provider.ActionLinkedinInvite
		}
	}
	return ""
}

func quotaActionFor(action provider.Action) string {
	switch action {
	case provider.ActionWhatsappMessage:
		return quota.ActionWhatsappMessage
	case provider.ActionLinkedinInvite:
		return quota.ActionLinkedinInvite
	default:
		return quota.ActionLinkedinMessage
	}
}

func limitsFor(s *model.WorkspaceSettings, action provider.Action) (int, time.Duration) {
	switch action {
	case provider.ActionWhatsappMessage:
		return s.WhatsappDailyLimit, time.Duration(s.WhatsappIntervalSeconds) * time.Second
	case provider.ActionLinkedinInvite:
		return s.LinkedinInviteDailyLimit, time.Duration(s.LinkedinIntervalSeconds) * time.Second
	default:
		return s.LinkedinDailyLimit, time.Duration(s.LinkedinIntervalSeconds) * time.Second
	}
}
