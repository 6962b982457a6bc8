// internal/model/recipient.go
package model

import "time"

// Recipient statuses. Forward-only: pendente -> enviado -> respondido,
// or pendente -> erro. Nothing ever moves back to pendente.
const (
	RecipientPendente   = "pendente"
	RecipientEnviado    = "enviado"
	RecipientRespondido = "respondido"
	RecipientErro       = "erro"
)

// Recipient is the per-contact per-campaign delivery record.
type Recipient struct {
	ID              int        `db:"id" json:"id"`
	CampaignID      int        `db:"campaign_id" json:"campaign_id"`
	SenderID        int        `db:"sender_id" json:"sender_id"`
	Name            string     `db:"name" json:"name"`
	Phone           string     `db:"phone" json:"phone"`
	Status          string     `db:"status" json:"status"`
	RenderedContent string     `db:"rendered_content" json:"rendered_content"`
	LastError       string     `db:"last_error" json:"last_error,omitempty"`
	ReplyText       string     `db:"reply_text" json:"reply_text,omitempty"`
	ReplySummary    string     `db:"reply_summary" json:"reply_summary,omitempty"`
	ReplySentiment  string     `db:"reply_sentiment" json:"reply_sentiment,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	SentAt          *time.Time `db:"sent_at" json:"sent_at,omitempty"`
	RespondedAt     *time.Time `db:"responded_at" json:"responded_at,omitempty"`
}
