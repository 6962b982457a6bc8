// internal/service/engine.go
package service

import (
	"context"
	"fmt"
	"log"

	appErrors "github.com/unclebandit/zapleopard-backend/internal/errors"
	"github.com/unclebandit/zapleopard-backend/internal/events"
	"github.com/unclebandit/zapleopard-backend/internal/model"
	"github.com/unclebandit/zapleopard-backend/internal/repository"
)

// CampaignEngine owns one campaign's orchestration run: it distributes any
// unassigned recipients, then walks the pendente list oldest-first, applying
// the delivery adapter under the rate limiter and re-reading the campaign's
// control status between sends.
type CampaignEngine struct {
	CampaignRepo  repository.CampaignRepositoryInterface
	SenderRepo    repository.SenderRepositoryInterface
	RecipientRepo repository.RecipientRepositoryInterface
	ContactRepo   repository.ContactRepositoryInterface
	Distribution  *DistributionEngine
	Delivery      *DeliveryAdapter
	Stats         *StatsAggregator
	Bus           events.Bus

	// ThrottleFunc is swappable so tests don't sleep between sends.
	ThrottleFunc func(ctx context.Context, cfg RateConfig) error

	guard *runGuard
}

func NewCampaignEngine(
	campaignRepo repository.CampaignRepositoryInterface,
	senderRepo repository.SenderRepositoryInterface,
	recipientRepo repository.RecipientRepositoryInterface,
	contactRepo repository.ContactRepositoryInterface,
	delivery *DeliveryAdapter,
	bus events.Bus,
) *CampaignEngine {
	return &CampaignEngine{
		CampaignRepo:  campaignRepo,
		SenderRepo:    senderRepo,
		RecipientRepo: recipientRepo,
		ContactRepo:   contactRepo,
		Distribution: &DistributionEngine{
			SenderRepo:    senderRepo,
			RecipientRepo: recipientRepo,
		},
		Delivery: delivery,
		Stats: &StatsAggregator{
			CampaignRepo:  campaignRepo,
			RecipientRepo: recipientRepo,
		},
		Bus:          bus,
		ThrottleFunc: Throttle,
		guard:        newRunGuard(),
	}
}

// Run executes one campaign. Duplicate concurrent requests for the same
// campaign return immediately. Campaign-level failures mark the campaign
// error; recipient-level failures never abort the batch.
func (e *CampaignEngine) Run(ctx context.Context, campaignID int) error {
	if !e.guard.acquire(campaignID) {
		log.Println("⚠️ campaign", campaignID, "already running in this process, ignoring")
		return nil
	}
	defer e.guard.release(campaignID)

	campaign, err := e.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return e.fail(campaignID, 0, fmt.Errorf("loading campaign: %w", err))
	}
	if campaign.Status != model.CampaignRunning {
		log.Println("⚠️ campaign", campaignID, "is", campaign.Status, ", not running it")
		return nil
	}

	senders, err := e.SenderRepo.ListActive(campaign.OrganizationID)
	if err != nil {
		return e.fail(campaignID, 0, fmt.Errorf("loading senders: %w", err))
	}
	if len(senders) == 0 {
		return e.fail(campaignID, 0, appErrors.NewNoActiveSenders(campaign.OrganizationID))
	}

	if err := e.ensureDistributed(campaign, senders); err != nil {
		return e.fail(campaignID, 0, fmt.Errorf("distribution: %w", err))
	}

	pending, err := e.RecipientRepo.ListPending(campaignID)
	if err != nil {
		return e.fail(campaignID, 0, fmt.Errorf("loading pending recipients: %w", err))
	}

	senderByID := make(map[int]model.Sender, len(senders))
	for _, s := range senders {
		senderByID[s.ID] = s
	}

	rateCfg := RateConfig{
		MessagesPerMin: campaign.MessagesPerMin,
		DelayMillis:    campaign.DelayMillis,
	}

	for i, rcpt := range pending {
		// Pause is cooperative: the control status is observed between
		// recipients only, never mid-delivery.
		fresh, err := e.CampaignRepo.GetByID(campaignID)
		if err != nil {
			return e.fail(campaignID, rcpt.ID, fmt.Errorf("re-reading campaign status: %w", err))
		}
		if fresh.Status != model.CampaignRunning {
			log.Println("⏸ campaign", campaignID, "is", fresh.Status, ", stopping after",
				i, "of", len(pending), "recipients")
			return nil
		}

		sender, ok := senderByID[rcpt.SenderID]
		if !ok {
			log.Println("⚠️ recipient", rcpt.ID, "assigned to unavailable sender", rcpt.SenderID)
			if err := e.RecipientRepo.MarkErro(rcpt.ID, "assigned sender is not active"); err != nil {
				return e.fail(campaignID, rcpt.ID, fmt.Errorf("marking recipient erro: %w", err))
			}
		} else if err := e.Delivery.Deliver(campaign, &rcpt, sender); err != nil {
			// Failure isolation: the adapter already recorded erro.
			log.Println("⚠️ delivery failed for recipient", rcpt.ID, ":", err)
		}

		if _, err := e.Stats.Recompute(campaignID); err != nil {
			return e.fail(campaignID, rcpt.ID, fmt.Errorf("recomputing stats: %w", err))
		}

		if i < len(pending)-1 {
			if err := e.ThrottleFunc(ctx, rateCfg); err != nil {
				log.Println("⚠️ run cancelled while throttling campaign", campaignID, ":", err)
				return nil
			}
		}
	}

	finished, err := e.Stats.Finalize(campaignID)
	if err != nil {
		return e.fail(campaignID, 0, fmt.Errorf("finalizing: %w", err))
	}
	if finished {
		log.Println("✅ campaign", campaignID, "finished")
		e.Bus.Publish(events.Event{
			Type:           events.CampaignFinished,
			OrganizationID: campaign.OrganizationID,
			CampaignID:     campaignID,
		})
	}
	return nil
}

// ensureDistributed runs distribution once per campaign: only when no
// recipient rows exist yet.
func (e *CampaignEngine) ensureDistributed(campaign *model.Campaign, senders []model.Sender) error {
	has, err := e.RecipientRepo.HasAssignments(campaign.ID)
	if err != nil {
		return err
	}
	if has {
		return nil
	}

	contacts, err := e.ContactRepo.ListByOrganization(campaign.OrganizationID)
	if err != nil {
		return err
	}
	_, err = e.Distribution.Distribute(campaign, contacts, senders)
	return err
}

// fail marks the campaign error and logs enough to diagnose: campaign id,
// last recipient, cause. The guard is released by the deferred call in Run.
func (e *CampaignEngine) fail(campaignID, lastRecipientID int, cause error) error {
	log.Println("❌ campaign", campaignID, "failed at recipient", lastRecipientID, ":", cause)
	if err := e.CampaignRepo.UpdateStatus(campaignID, model.CampaignError); err != nil {
		log.Println("❌ also failed to mark campaign", campaignID, "as error:", err)
	}
	return cause
}
