package controller_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/leadowl/leadowl-backend/internal/controller"
	appErrors "github.com/leadowl/leadowl-backend/internal/errors"
	"github.com/leadowl/leadowl-backend/internal/model"
	"github.com/leadowl/leadowl-backend/internal/quota"
	"github.com/leadowl/leadowl-backend/internal/service"
)

type emptyQueueRepo struct{}

func (r *emptyQueueRepo) Create(e *model.CampaignQueueEntry) error { return nil }
func (r *emptyQueueRepo) ClaimDue(workspaceID *int64, now time.Time, limit int) ([]*model.CampaignQueueEntry, error) {
	return []*model.CampaignQueueEntry{}, nil
}
func (r *emptyQueueRepo) Release(ids []int64) error                        { return nil }
func (r *emptyQueueRepo) Finalize(id int64, sentDelta int, s string) error { return nil }
func (r *emptyQueueRepo) RequeueStale(staleBefore time.Time) (int, error)  { return 0, nil }
func (r *emptyQueueRepo) HasOpenEntries(campaignID int64) (bool, error)    { return false, nil }

type fakeTicks struct {
	topic   string
	payload any
}

func (q *fakeTicks) Publish(topic string, payload any) error {
	q.topic = topic
	q.payload = payload
	return nil
}

func (q *fakeTicks) Subscribe(topic string, handler func(payload any) error) error { return nil }

func newQueueController() (*controller.QueueController, *fakeTicks) {
	ticks := &fakeTicks{}
	qc := &controller.QueueController{
		Processor: &service.QueueProcessor{
			QueueRepo: &emptyQueueRepo{},
			Ledger:    quota.NewInMemoryLedger(),
		},
		Ticks: ticks,
	}
	return qc, ticks
}

func TestProcessQueueEndpoint(t *testing.T) {
	qc, _ := newQueueController()

	req := httptest.NewRequest(http.MethodPost, "/queue/process", strings.NewReader(`{"limit":5}`))
	rec := httptest.NewRecorder()
	qc.ProcessQueue(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result service.ProcessResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.RunID == "" {
		t.Error("expected a run id")
	}
	if result.TotalClaimed != 0 || len(result.Processed) != 0 {
		t.Errorf("expected an empty run, got %+v", result)
	}
}

func TestProcessQueueEmptyBody(t *testing.T) {
	qc, _ := newQueueController()

	req := httptest.NewRequest(http.MethodPost, "/queue/process", nil)
	rec := httptest.NewRecorder()
	qc.ProcessQueue(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("an empty body means default options, got %d", rec.Code)
	}
}

func TestProcessQueueInvalidBody(t *testing.T) {
	qc, _ := newQueueController()

	req := httptest.NewRequest(http.MethodPost, "/queue/process", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	qc.ProcessQueue(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestTickEndpointPublishes(t *testing.T) {
	qc, ticks := newQueueController()

	req := httptest.NewRequest(http.MethodPost, "/queue/tick", strings.NewReader(`{"workspace_id":7,"dry_run":true}`))
	rec := httptest.NewRecorder()
	qc.Tick(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}

	opts, ok := ticks.payload.(service.ProcessOptions)
	if !ok {
		t.Fatalf("expected a ProcessOptions payload, got %T", ticks.payload)
	}
	if opts.WorkspaceID == nil || *opts.WorkspaceID != 7 || !opts.DryRun {
		t.Errorf("unexpected tick options %+v", opts)
	}
}

type singleCampaignRepo struct {
	campaign *model.Campaign
}

func (r *singleCampaignRepo) Create(c *model.Campaign) error { return nil }
func (r *singleCampaignRepo) GetByID(id int64) (*model.Campaign, error) {
	if r.campaign != nil && r.campaign.ID == id {
		return r.campaign, nil
	}
	return nil, appErrors.NewCampaignNotFound(id)
}
func (r *singleCampaignRepo) ListCampaigns(offset, limit int, campaignType, status string) ([]*model.Campaign, int, error) {
	return nil, 0, nil
}
func (r *singleCampaignRepo) UpdateStatus(campaignID int64, status string) error { return nil }

type singleLeadRepo struct {
	lead *model.Lead
}

func (r *singleLeadRepo) GetByID(id int64) (*model.Lead, error) {
	if r.lead != nil && r.lead.ID == id {
		return r.lead, nil
	}
	return nil, nil
}

func newCampaignRouter(cc *controller.CampaignController) http.Handler {
	r := chi.NewRouter()
	r.Post("/campaigns/{id}/personalized-preview", cc.PersonalizedPreview)
	return r
}

func TestPersonalizedPreviewEndpoint(t *testing.T) {
	cc := &controller.CampaignController{
		CampaignService: &service.CampaignService{
			CampaignRepo: &singleCampaignRepo{campaign: &model.Campaign{
				ID:           3,
				Type:         model.CampaignTypeWhatsapp,
				BaseTemplate: "Hi {first_name} at {company}",
			}},
			LeadRepo: &singleLeadRepo{lead: &model.Lead{ID: 9, FirstName: "Alice", Company: "Acme"}},
		},
	}

	router := newCampaignRouter(cc)
	req := httptest.NewRequest(http.MethodPost, "/campaigns/3/personalized-preview", strings.NewReader(`{"lead_id":9}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["rendered_message"] != "Hi Alice at Acme" {
		t.Errorf("unexpected rendered message %v", body["rendered_message"])
	}
}

func TestPersonalizedPreviewInvalidID(t *testing.T) {
	cc := &controller.CampaignController{CampaignService: &service.CampaignService{}}

	router := newCampaignRouter(cc)
	req := httptest.NewRequest(http.MethodPost, "/campaigns/abc/personalized-preview", strings.NewReader(`{"lead_id":9}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a malformed campaign id, got %d", rec.Code)
	}
}
