// internal/service/delivery.go
package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/unclebandit/zapleopard-backend/internal/ai"
	"github.com/unclebandit/zapleopard-backend/internal/channel"
	"github.com/unclebandit/zapleopard-backend/internal/events"
	"github.com/unclebandit/zapleopard-backend/internal/model"
	"github.com/unclebandit/zapleopard-backend/internal/repository"
)

// DefaultReconnectWait bounds the extra wait when a sender is mid-reconnect.
const DefaultReconnectWait = 10 * time.Second

// DeliveryAdapter renders the outbound content and pushes it through the
// recipient's assigned sender. It owns both recipient transitions: enviado on
// success, erro on failure. The returned error mirrors the erro transition so
// the loop can log and move on.
type DeliveryAdapter struct {
	RecipientRepo repository.RecipientRepositoryInterface
	SenderRepo    repository.SenderRepositoryInterface
	Channel       channel.Client
	AI            ai.Assistant
	Bus           events.Bus
	ReconnectWait time.Duration

	// Sleep is swappable so tests don't wait out the reconnect interval.
	Sleep func(d time.Duration)
}

func NewDeliveryAdapter(
	recipientRepo repository.RecipientRepositoryInterface,
	senderRepo repository.SenderRepositoryInterface,
	client channel.Client,
	assistant ai.Assistant,
	bus events.Bus,
) *DeliveryAdapter {
	return &DeliveryAdapter{
		RecipientRepo: recipientRepo,
		SenderRepo:    senderRepo,
		Channel:       client,
		AI:            assistant,
		Bus:           bus,
		ReconnectWait: DefaultReconnectWait,
		Sleep:         time.Sleep,
	}
}

// Deliver sends the campaign content to one recipient through its assigned
// sender. Never panics past here: every failure lands on the recipient as an
// erro status with the cause persisted verbatim.
func (a *DeliveryAdapter) Deliver(campaign *model.Campaign, rcpt *model.Recipient, sender model.Sender) error {
	text := a.renderText(campaign, rcpt)

	if err := a.sendAll(campaign, rcpt, sender, text); err != nil {
		if markErr := a.RecipientRepo.MarkErro(rcpt.ID, err.Error()); markErr != nil {
			log.Println("⚠️ failed to persist erro status for recipient", rcpt.ID, ":", markErr)
		}
		rcpt.Status = model.RecipientErro
		rcpt.LastError = err.Error()
		return err
	}

	if err := a.RecipientRepo.MarkEnviado(rcpt.ID, text); err != nil {
		return fmt.Errorf("message sent but status update failed: %w", err)
	}
	rcpt.Status = model.RecipientEnviado
	rcpt.RenderedContent = text

	if err := a.SenderRepo.IncrementSent(sender.ID); err != nil {
		log.Println("⚠️ failed to increment sent counter for sender", sender.ID, ":", err)
	}

	a.Bus.Publish(events.Event{
		Type:           events.RecipientSent,
		OrganizationID: campaign.OrganizationID,
		CampaignID:     campaign.ID,
		RecipientID:    rcpt.ID,
	})
	return nil
}

// renderText substitutes placeholders and, when the campaign asks for it,
// lets the assistant rewrite the message. AI failure falls back to the
// rendered text; delivery never blocks on AI availability.
func (a *DeliveryAdapter) renderText(campaign *model.Campaign, rcpt *model.Recipient) string {
	text := RenderTemplate(campaign.BaseTemplate, RecipientData(rcpt))

	if campaign.Personalization {
		history := []string{}
		if rcpt.ReplyText != "" {
			history = append(history, rcpt.ReplyText)
		}
		personalized, err := a.AI.Personalize(text, rcpt.Name, history)
		if err != nil {
			log.Println("⚠️ personalization failed, using rendered text:", err)
		} else if personalized != "" {
			text = personalized
		}
	}
	return text
}

// sendAll emits the ordered payloads. The text rides as the caption of the
// first media item only; later media go out captionless, preserving input
// order so the receiving client groups them as one album. With no media the
// text goes out standalone.
func (a *DeliveryAdapter) sendAll(campaign *model.Campaign, rcpt *model.Recipient, sender model.Sender, text string) error {
	media := []model.ContentItem{}
	for _, item := range campaign.ContentItems {
		if item.IsMedia() {
			media = append(media, item)
		}
	}

	if len(media) == 0 {
		if text == "" {
			return fmt.Errorf("campaign %d has no content to send", campaign.ID)
		}
		return a.sendWithRetry(func() error {
			return a.Channel.SendText(sender.ID, rcpt.Phone, text)
		})
	}

	for i, item := range media {
		caption := ""
		if i == 0 {
			caption = text
		}
		err := a.sendWithRetry(func() error {
			return a.sendMedia(sender.ID, rcpt.Phone, item, caption)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *DeliveryAdapter) sendMedia(senderID int, phone string, item model.ContentItem, caption string) error {
	switch item.Kind {
	case model.ContentImage:
		return a.Channel.SendImage(senderID, phone, item.FilePath, caption)
	case model.ContentDocument:
		return a.Channel.SendDocument(senderID, phone, item.FilePath, caption)
	case model.ContentAudio:
		return a.Channel.SendAudio(senderID, phone, item.FilePath, caption)
	default:
		return fmt.Errorf("unsupported content kind: %s", item.Kind)
	}
}

// sendWithRetry retries exactly once, after a bounded wait, when the sender
// is mid-reconnect. Any other failure is final.
func (a *DeliveryAdapter) sendWithRetry(send func() error) error {
	err := send()
	if err == nil {
		return nil
	}
	if !errors.Is(err, channel.ErrReconnecting) {
		return err
	}

	log.Println("⚠️ sender reconnecting, waiting before single retry")
	a.Sleep(a.ReconnectWait)
	return send()
}
