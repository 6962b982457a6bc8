// internal/controller/campaign_controller.go
package controller

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/zapleopard-backend/internal/model"
	"github.com/unclebandit/zapleopard-backend/internal/queue"
	"github.com/unclebandit/zapleopard-backend/internal/repository"
	"github.com/unclebandit/zapleopard-backend/internal/service"
)

// CampaignController exposes the control API: campaign CRUD-lite, run
// control, and the inbound-reply webhook.
type CampaignController struct {
	CampaignRepo  repository.CampaignRepositoryInterface
	ContactRepo   repository.ContactRepositoryInterface
	RecipientRepo repository.RecipientRepositoryInterface
	Queue         queue.Queue
}

func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OrganizationID  int                 `json:"organization_id"`
		Name            string              `json:"name"`
		BaseTemplate    string              `json:"base_template"`
		Personalization bool                `json:"personalization"`
		MessagesPerMin  int                 `json:"messages_per_min"`
		DelayMillis     int                 `json:"delay_millis"`
		ContentItems    []model.ContentItem `json:"content_items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	campaign := &model.Campaign{
		OrganizationID:  body.OrganizationID,
		Name:            body.Name,
		Status:          model.CampaignDraft,
		BaseTemplate:    body.BaseTemplate,
		Personalization: body.Personalization,
		MessagesPerMin:  body.MessagesPerMin,
		DelayMillis:     body.DelayMillis,
		ContentItems:    body.ContentItems,
	}
	if campaign.MessagesPerMin == 0 {
		campaign.MessagesPerMin = service.DefaultMessagesPerMin
	}
	if campaign.DelayMillis == 0 {
		campaign.DelayMillis = service.DefaultDelayMillis
	}

	if err := c.CampaignRepo.Create(campaign); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(campaign)
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	status := r.URL.Query().Get("status")

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

	campaigns, total, err := c.CampaignRepo.ListCampaigns(offset, pageSize, status)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	totalPages := (total + pageSize - 1) / pageSize
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data": campaigns,
		"pagination": map[string]int{
			"page":        page,
			"page_size":   pageSize,
			"total_count": total,
			"total_pages": totalPages,
		},
	})
}

// GetCampaign returns the campaign plus its recipient counts by status.
func (c *CampaignController) GetCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}

	campaign, err := c.CampaignRepo.GetByID(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	stats, err := c.RecipientRepo.StatusCounts(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"campaign": campaign,
		"stats":    stats,
	})
}

// StartCampaign flips a draft or paused campaign to running and queues a run
// job for the worker.
func (c *CampaignController) StartCampaign(w http.ResponseWriter, r *http.Request) {
	c.startRun(w, r, []string{model.CampaignDraft, model.CampaignPaused, model.CampaignError})
}

// ResumeCampaign re-queues a paused campaign; remaining pendente recipients
// pick up where the loop stopped.
func (c *CampaignController) ResumeCampaign(w http.ResponseWriter, r *http.Request) {
	c.startRun(w, r, []string{model.CampaignPaused})
}

func (c *CampaignController) startRun(w http.ResponseWriter, r *http.Request, fromStatuses []string) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}

	campaign, err := c.CampaignRepo.GetByID(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	allowed := false
	for _, s := range fromStatuses {
		if campaign.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		http.Error(w, "campaign cannot start from status: "+campaign.Status, http.StatusConflict)
		return
	}

	if err := c.CampaignRepo.UpdateStatus(id, model.CampaignRunning); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := c.Queue.Publish(queue.TopicCampaignRuns, queue.RunJob{CampaignID: id}); err != nil {
		log.Println("⚠️ failed to enqueue run for campaign", id, ":", err)
		http.Error(w, "failed to enqueue run", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"campaign_id": id,
		"status":      model.CampaignRunning,
	})
}

// PauseCampaign requests a cooperative pause. The loop observes it between
// recipients; the in-flight recipient completes first.
func (c *CampaignController) PauseCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}

	campaign, err := c.CampaignRepo.GetByID(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if campaign.Status != model.CampaignRunning {
		http.Error(w, "campaign is not running", http.StatusConflict)
		return
	}

	if err := c.CampaignRepo.UpdateStatus(id, model.CampaignPaused); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"campaign_id": id,
		"status":      model.CampaignPaused,
	})
}

// PersonalizedPreview renders the campaign template for one contact.
func (c *CampaignController) PersonalizedPreview(w http.ResponseWriter, r *http.Request) {
	campaignID, _ := strconv.Atoi(chi.URLParam(r, "id"))

	var body struct {
		ContactID int `json:"contact_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	campaign, err := c.CampaignRepo.GetByID(campaignID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	contact, err := c.ContactRepo.GetByID(body.ContactID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if contact == nil {
		http.Error(w, "contact not found", http.StatusNotFound)
		return
	}

	rendered := service.RenderTemplate(campaign.BaseTemplate, map[string]string{
		"nome":     contact.Name,
		"telefone": contact.Phone,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"rendered_message": rendered,
		"contact_id":       body.ContactID,
	})
}

// InboundWebhook receives one inbound reply and hands it to the reconciler
// through the queue, so webhook latency stays flat.
func (c *CampaignController) InboundWebhook(w http.ResponseWriter, r *http.Request) {
	var body queue.InboundReply
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if body.CampaignID == 0 || body.RecipientID == 0 {
		http.Error(w, "campaign_id and recipient_id are required", http.StatusBadRequest)
		return
	}

	if err := c.Queue.Publish(queue.TopicInboundReplies, body); err != nil {
		log.Println("⚠️ failed to enqueue inbound reply:", err)
		http.Error(w, "failed to enqueue reply", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "accepted"})
}
