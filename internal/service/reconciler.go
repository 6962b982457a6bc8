// internal/service/reconciler.go
package service

import (
	"log"

	"github.com/unclebandit/zapleopard-backend/internal/ai"
	"github.com/unclebandit/zapleopard-backend/internal/events"
	"github.com/unclebandit/zapleopard-backend/internal/model"
	"github.com/unclebandit/zapleopard-backend/internal/repository"
)

// ResponseReconciler processes inbound replies. It runs independently of an
// active orchestration loop and may interleave with it for the same
// campaign; the only shared state is the store.
type ResponseReconciler struct {
	CampaignRepo  repository.CampaignRepositoryInterface
	RecipientRepo repository.RecipientRepositoryInterface
	AI            ai.Assistant
	Stats         *StatsAggregator
	Bus           events.Bus
}

func NewResponseReconciler(
	campaignRepo repository.CampaignRepositoryInterface,
	recipientRepo repository.RecipientRepositoryInterface,
	assistant ai.Assistant,
	bus events.Bus,
) *ResponseReconciler {
	return &ResponseReconciler{
		CampaignRepo:  campaignRepo,
		RecipientRepo: recipientRepo,
		AI:            assistant,
		Stats: &StatsAggregator{
			CampaignRepo:  campaignRepo,
			RecipientRepo: recipientRepo,
		},
		Bus: bus,
	}
}

// Reconcile transitions a recipient to respondido and stores the reply.
// Duplicate inbound events for an already-respondido recipient are no-ops.
// AI enrichment is best-effort and never reverts the committed transition.
func (r *ResponseReconciler) Reconcile(campaignID, recipientID int, replyText string) error {
	rcpt, err := r.RecipientRepo.GetByID(recipientID)
	if err != nil {
		return err
	}
	if rcpt == nil {
		log.Println("⚠️ reply for unknown recipient", recipientID, ", ignoring")
		return nil
	}
	if rcpt.Status == model.RecipientRespondido {
		return nil
	}

	transitioned, err := r.RecipientRepo.MarkRespondido(recipientID, replyText)
	if err != nil {
		return err
	}
	if !transitioned {
		// Lost the race against a duplicate event, or the recipient was
		// never enviado. Either way nothing to do.
		return nil
	}

	campaign, err := r.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return err
	}

	if campaign.Personalization {
		r.enrich(recipientID, replyText)
	}

	if _, err := r.Stats.Recompute(campaignID); err != nil {
		return err
	}

	r.Bus.Publish(events.Event{
		Type:           events.RecipientResponded,
		OrganizationID: campaign.OrganizationID,
		CampaignID:     campaignID,
		RecipientID:    recipientID,
	})
	return nil
}

// enrich asks the assistant for a summary and sentiment label. Failures here
// are logged and dropped.
func (r *ResponseReconciler) enrich(recipientID int, replyText string) {
	summary, err := r.AI.Summarize(replyText)
	if err != nil {
		log.Println("⚠️ summary failed for recipient", recipientID, ":", err)
		return
	}
	sentiment, err := r.AI.Sentiment(replyText)
	if err != nil {
		log.Println("⚠️ sentiment failed for recipient", recipientID, ":", err)
		sentiment = ai.SentimentNeutral
	}
	if err := r.RecipientRepo.UpdateReplyInsights(recipientID, summary, sentiment); err != nil {
		log.Println("⚠️ failed to store reply insights for recipient", recipientID, ":", err)
	}
}
