package controller_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/zapleopard-backend/internal/controller"
	"github.com/unclebandit/zapleopard-backend/internal/model"
	"github.com/unclebandit/zapleopard-backend/internal/queue"
)

// --- Mock repositories ---

type mockCampaignRepo struct {
	mu        sync.Mutex
	campaigns map[int]*model.Campaign
}

func (m *mockCampaignRepo) Create(c *model.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = len(m.campaigns) + 1
	m.campaigns[c.ID] = c
	return nil
}

func (m *mockCampaignRepo) GetByID(id int) (*model.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *m.campaigns[id]
	return &clone, nil
}

func (m *mockCampaignRepo) ListCampaigns(offset, limit int, status string) ([]*model.Campaign, int, error) {
	return []*model.Campaign{}, 0, nil
}

func (m *mockCampaignRepo) UpdateStatus(campaignID int, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.campaigns[campaignID].Status = status
	return nil
}

func (m *mockCampaignRepo) MarkFinished(campaignID int) error {
	return m.UpdateStatus(campaignID, model.CampaignFinished)
}

func (m *mockCampaignRepo) UpdateCounters(campaignID, sent, responded int) error { return nil }

func (m *mockCampaignRepo) GetContentItems(campaignID int) ([]model.ContentItem, error) {
	return nil, nil
}

type mockContactRepo struct{}

func (m *mockContactRepo) GetByID(id int) (*model.Contact, error) {
	return &model.Contact{ID: id, OrganizationID: 1, Name: "Alice", Phone: "+10001"}, nil
}

func (m *mockContactRepo) ListByOrganization(organizationID int) ([]model.Contact, error) {
	return []model.Contact{}, nil
}

type mockRecipientRepo struct{}

func (m *mockRecipientRepo) CreateIfAbsent(rcpt *model.Recipient) (bool, error) { return true, nil }
func (m *mockRecipientRepo) GetByID(id int) (*model.Recipient, error)           { return nil, nil }
func (m *mockRecipientRepo) ListPending(campaignID int) ([]model.Recipient, error) {
	return nil, nil
}
func (m *mockRecipientRepo) CountPending(campaignID int) (int, error)    { return 0, nil }
func (m *mockRecipientRepo) HasAssignments(campaignID int) (bool, error) { return false, nil }
func (m *mockRecipientRepo) MarkEnviado(id int, renderedContent string) error {
	return nil
}
func (m *mockRecipientRepo) MarkErro(id int, lastError string) error { return nil }
func (m *mockRecipientRepo) MarkRespondido(id int, replyText string) (bool, error) {
	return false, nil
}
func (m *mockRecipientRepo) UpdateReplyInsights(id int, summary, sentiment string) error {
	return nil
}
func (m *mockRecipientRepo) StatusCounts(campaignID int) (map[string]int, error) {
	return map[string]int{
		model.RecipientPendente:   2,
		model.RecipientEnviado:    3,
		model.RecipientRespondido: 1,
		model.RecipientErro:       0,
	}, nil
}

// recordingQueue captures every publish.
type recordingQueue struct {
	mu        sync.Mutex
	published []struct {
		Topic   string
		Payload any
	}
}

func (q *recordingQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.published = append(q.published, struct {
		Topic   string
		Payload any
	}{topic, payload})
	return nil
}

func (q *recordingQueue) Subscribe(topic string, handler func(payload any) error) error {
	return nil
}

// --- Helpers ---

func newTestRouter(repo *mockCampaignRepo, q *recordingQueue) *chi.Mux {
	ctrl := &controller.CampaignController{
		CampaignRepo:  repo,
		ContactRepo:   &mockContactRepo{},
		RecipientRepo: &mockRecipientRepo{},
		Queue:         q,
	}

	r := chi.NewRouter()
	r.Get("/campaigns/{id}", ctrl.GetCampaign)
	r.Post("/campaigns/{id}/start", ctrl.StartCampaign)
	r.Post("/campaigns/{id}/pause", ctrl.PauseCampaign)
	r.Post("/campaigns/{id}/resume", ctrl.ResumeCampaign)
	r.Post("/campaigns/{id}/personalized-preview", ctrl.PersonalizedPreview)
	r.Post("/webhooks/inbound", ctrl.InboundWebhook)
	return r
}

func seededRepo(status string) *mockCampaignRepo {
	return &mockCampaignRepo{campaigns: map[int]*model.Campaign{
		1: {ID: 1, OrganizationID: 1, Status: status, BaseTemplate: "Oi {nome}, tudo bem?"},
	}}
}

// --- Tests ---

func TestStartCampaignQueuesRun(t *testing.T) {
	repo := seededRepo(model.CampaignDraft)
	q := &recordingQueue{}
	router := newTestRouter(repo, q)

	req := httptest.NewRequest("POST", "/campaigns/1/start", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	campaign, _ := repo.GetByID(1)
	if campaign.Status != model.CampaignRunning {
		t.Errorf("expected running, got %s", campaign.Status)
	}

	if len(q.published) != 1 || q.published[0].Topic != queue.TopicCampaignRuns {
		t.Fatalf("expected one run job published, got %+v", q.published)
	}
	job, ok := q.published[0].Payload.(queue.RunJob)
	if !ok || job.CampaignID != 1 {
		t.Errorf("unexpected payload: %+v", q.published[0].Payload)
	}
}

func TestStartCampaignConflict(t *testing.T) {
	repo := seededRepo(model.CampaignFinished)
	router := newTestRouter(repo, &recordingQueue{})

	req := httptest.NewRequest("POST", "/campaigns/1/start", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestPauseCampaign(t *testing.T) {
	repo := seededRepo(model.CampaignRunning)
	router := newTestRouter(repo, &recordingQueue{})

	req := httptest.NewRequest("POST", "/campaigns/1/pause", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	campaign, _ := repo.GetByID(1)
	if campaign.Status != model.CampaignPaused {
		t.Errorf("expected paused, got %s", campaign.Status)
	}
}

func TestResumeRequiresPaused(t *testing.T) {
	repo := seededRepo(model.CampaignDraft)
	router := newTestRouter(repo, &recordingQueue{})

	req := httptest.NewRequest("POST", "/campaigns/1/resume", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestGetCampaignIncludesStats(t *testing.T) {
	repo := seededRepo(model.CampaignRunning)
	router := newTestRouter(repo, &recordingQueue{})

	req := httptest.NewRequest("GET", "/campaigns/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var res struct {
		Stats map[string]int `json:"stats"`
	}
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.Stats[model.RecipientEnviado] != 3 {
		t.Errorf("expected 3 enviado in stats, got %d", res.Stats[model.RecipientEnviado])
	}
}

func TestPersonalizedPreview(t *testing.T) {
	repo := seededRepo(model.CampaignDraft)
	router := newTestRouter(repo, &recordingQueue{})

	body, _ := json.Marshal(map[string]int{"contact_id": 1})
	req := httptest.NewRequest("POST", "/campaigns/1/personalized-preview", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var res map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	msg, _ := res["rendered_message"].(string)
	if !strings.Contains(msg, "Alice") {
		t.Errorf("expected 'Alice' in message, got %q", msg)
	}
}

func TestInboundWebhook(t *testing.T) {
	q := &recordingQueue{}
	router := newTestRouter(seededRepo(model.CampaignRunning), q)

	body, _ := json.Marshal(queue.InboundReply{CampaignID: 1, RecipientID: 7, ReplyText: "Quero!"})
	req := httptest.NewRequest("POST", "/webhooks/inbound", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", w.Code)
	}
	if len(q.published) != 1 || q.published[0].Topic != queue.TopicInboundReplies {
		t.Fatalf("expected one reply published, got %+v", q.published)
	}
}

func TestInboundWebhookRejectsMissingIDs(t *testing.T) {
	q := &recordingQueue{}
	router := newTestRouter(seededRepo(model.CampaignRunning), q)

	req := httptest.NewRequest("POST", "/webhooks/inbound", bytes.NewReader([]byte(`{"reply_text":"oi"}`)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if len(q.published) != 0 {
		t.Error("nothing may be queued for an invalid webhook")
	}
}
