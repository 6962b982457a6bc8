package repository

import (
	"database/sql"

	"github.com/unclebandit/zapleopard-backend/internal/model"
)

// SenderRepositoryInterface defines the sender-pool reads the engine needs.
// Connection lifecycle (pairing, disconnects) is managed elsewhere; the core
// only lists active accounts and bumps the sent counter.
type SenderRepositoryInterface interface {
	ListActive(organizationID int) ([]model.Sender, error)
	IncrementSent(senderID int) error
	RecentInteractions(organizationID, limit int) ([]model.Interaction, error)
}

type SenderRepository struct {
	DB *sql.DB
}

func (r *SenderRepository) ListActive(organizationID int) ([]model.Sender, error) {
	query := `
        SELECT id, organization_id, phone, active, messages_sent
        FROM senders
        WHERE organization_id=$1 AND active=true
        ORDER BY id ASC
    `
	rows, err := r.DB.Query(query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	senders := []model.Sender{}
	for rows.Next() {
		var s model.Sender
		if err := rows.Scan(&s.ID, &s.OrganizationID, &s.Phone, &s.Active, &s.MessagesSent); err != nil {
			return nil, err
		}
		senders = append(senders, s)
	}
	return senders, nil
}

// IncrementSent bumps the per-account counter atomically in the store.
func (r *SenderRepository) IncrementSent(senderID int) error {
	query := `UPDATE senders SET messages_sent=messages_sent+1 WHERE id=$1`
	_, err := r.DB.Exec(query, senderID)
	return err
}

// RecentInteractions returns the latest exchanges for the organization,
// newest first, for affinity-based distribution.
func (r *SenderRepository) RecentInteractions(organizationID, limit int) ([]model.Interaction, error) {
	query := `
        SELECT i.id, i.sender_id, i.phone, i.direction, i.created_at
        FROM interactions i
        JOIN senders s ON s.id = i.sender_id
        WHERE s.organization_id=$1
        ORDER BY i.created_at DESC
        LIMIT $2
    `
	rows, err := r.DB.Query(query, organizationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	interactions := []model.Interaction{}
	for rows.Next() {
		var in model.Interaction
		if err := rows.Scan(&in.ID, &in.SenderID, &in.Phone, &in.Direction, &in.CreatedAt); err != nil {
			return nil, err
		}
		interactions = append(interactions, in)
	}
	return interactions, nil
}

var _ SenderRepositoryInterface = (*SenderRepository)(nil)
