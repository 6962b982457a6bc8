package repository

import (
	"database/sql"
	"time"

	"github.com/unclebandit/zapleopard-backend/internal/model"
)

// RecipientRepositoryInterface owns persistence for the per-recipient state
// machine. Every transition method guards on the current status in SQL, so a
// lost race (duplicate webhook, stale loop) updates zero rows instead of
// regressing a recipient.
type RecipientRepositoryInterface interface {
	CreateIfAbsent(rcpt *model.Recipient) (bool, error)
	GetByID(id int) (*model.Recipient, error)
	ListPending(campaignID int) ([]model.Recipient, error)
	CountPending(campaignID int) (int, error)
	HasAssignments(campaignID int) (bool, error)

	MarkEnviado(id int, renderedContent string) error
	MarkErro(id int, lastError string) error
	MarkRespondido(id int, replyText string) (bool, error)
	UpdateReplyInsights(id int, summary, sentiment string) error

	StatusCounts(campaignID int) (map[string]int, error)
}

type RecipientRepository struct {
	DB *sql.DB
}

// CreateIfAbsent inserts a recipient in status pendente unless one already
// exists for this campaign+phone. Returns whether a row was inserted, so a
// re-run of distribution is idempotent.
func (r *RecipientRepository) CreateIfAbsent(rcpt *model.Recipient) (bool, error) {
	var existingID int
	err := r.DB.QueryRow(
		`SELECT id FROM recipients WHERE campaign_id=$1 AND phone=$2`,
		rcpt.CampaignID, rcpt.Phone,
	).Scan(&existingID)
	if err == nil {
		rcpt.ID = existingID
		return false, nil
	}
	if err != sql.ErrNoRows {
		return false, err
	}

	rcpt.Status = model.RecipientPendente
	rcpt.CreatedAt = time.Now()
	query := `
        INSERT INTO recipients (campaign_id, sender_id, name, phone, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `
	err = r.DB.QueryRow(query, rcpt.CampaignID, rcpt.SenderID, rcpt.Name, rcpt.Phone,
		rcpt.Status, rcpt.CreatedAt).Scan(&rcpt.ID)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *RecipientRepository) GetByID(id int) (*model.Recipient, error) {
	query := `
        SELECT id, campaign_id, sender_id, name, phone, status, rendered_content,
               last_error, reply_text, reply_summary, reply_sentiment, created_at, sent_at, responded_at
        FROM recipients WHERE id=$1
    `
	var rcpt model.Recipient
	err := r.DB.QueryRow(query, id).Scan(
		&rcpt.ID, &rcpt.CampaignID, &rcpt.SenderID, &rcpt.Name, &rcpt.Phone, &rcpt.Status,
		&rcpt.RenderedContent, &rcpt.LastError, &rcpt.ReplyText, &rcpt.ReplySummary,
		&rcpt.ReplySentiment, &rcpt.CreatedAt, &rcpt.SentAt, &rcpt.RespondedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &rcpt, nil
}

// ListPending returns the campaign's pendente recipients, oldest created
// first. Recipients in enviado/respondido/erro are never re-selected.
func (r *RecipientRepository) ListPending(campaignID int) ([]model.Recipient, error) {
	query := `
        SELECT id, campaign_id, sender_id, name, phone, status, rendered_content,
               last_error, reply_text, reply_summary, reply_sentiment, created_at, sent_at, responded_at
        FROM recipients
        WHERE campaign_id=$1 AND status=$2
        ORDER BY created_at ASC, id ASC
    `
	rows, err := r.DB.Query(query, campaignID, model.RecipientPendente)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recipients := []model.Recipient{}
	for rows.Next() {
		var rcpt model.Recipient
		if err := rows.Scan(
			&rcpt.ID, &rcpt.CampaignID, &rcpt.SenderID, &rcpt.Name, &rcpt.Phone, &rcpt.Status,
			&rcpt.RenderedContent, &rcpt.LastError, &rcpt.ReplyText, &rcpt.ReplySummary,
			&rcpt.ReplySentiment, &rcpt.CreatedAt, &rcpt.SentAt, &rcpt.RespondedAt,
		); err != nil {
			return nil, err
		}
		recipients = append(recipients, rcpt)
	}
	return recipients, nil
}

func (r *RecipientRepository) CountPending(campaignID int) (int, error) {
	var count int
	err := r.DB.QueryRow(
		`SELECT COUNT(*) FROM recipients WHERE campaign_id=$1 AND status=$2`,
		campaignID, model.RecipientPendente,
	).Scan(&count)
	return count, err
}

// HasAssignments reports whether distribution already ran for this campaign.
func (r *RecipientRepository) HasAssignments(campaignID int) (bool, error) {
	var count int
	err := r.DB.QueryRow(
		`SELECT COUNT(*) FROM recipients WHERE campaign_id=$1`, campaignID,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ====================== Transitions ======================

func (r *RecipientRepository) MarkEnviado(id int, renderedContent string) error {
	query := `
        UPDATE recipients
        SET status=$1, rendered_content=$2, sent_at=NOW()
        WHERE id=$3 AND status=$4
    `
	_, err := r.DB.Exec(query, model.RecipientEnviado, renderedContent, id, model.RecipientPendente)
	return err
}

func (r *RecipientRepository) MarkErro(id int, lastError string) error {
	query := `
        UPDATE recipients
        SET status=$1, last_error=$2
        WHERE id=$3 AND status=$4
    `
	_, err := r.DB.Exec(query, model.RecipientErro, lastError, id, model.RecipientPendente)
	return err
}

// MarkRespondido transitions enviado -> respondido and reports whether this
// call performed the transition. A duplicate inbound event updates zero rows.
func (r *RecipientRepository) MarkRespondido(id int, replyText string) (bool, error) {
	query := `
        UPDATE recipients
        SET status=$1, reply_text=$2, responded_at=NOW()
        WHERE id=$3 AND status=$4
    `
	res, err := r.DB.Exec(query, model.RecipientRespondido, replyText, id, model.RecipientEnviado)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *RecipientRepository) UpdateReplyInsights(id int, summary, sentiment string) error {
	query := `UPDATE recipients SET reply_summary=$1, reply_sentiment=$2 WHERE id=$3`
	_, err := r.DB.Exec(query, summary, sentiment, id)
	return err
}

// ====================== Aggregates ======================

func (r *RecipientRepository) StatusCounts(campaignID int) (map[string]int, error) {
	query := `SELECT status, COUNT(*) FROM recipients WHERE campaign_id=$1 GROUP BY status`
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{
		model.RecipientPendente:   0,
		model.RecipientEnviado:    0,
		model.RecipientRespondido: 0,
		model.RecipientErro:       0,
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, nil
}

var _ RecipientRepositoryInterface = (*RecipientRepository)(nil)
