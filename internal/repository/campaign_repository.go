package repository

import (
	"database/sql"
	"fmt"
	"time"

	appErrors "github.com/unclebandit/zapleopard-backend/internal/errors"
	"github.com/unclebandit/zapleopard-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	// Campaign CRUD
	Create(c *model.Campaign) error
	GetByID(id int) (*model.Campaign, error)
	ListCampaigns(offset, limit int, status string) ([]*model.Campaign, int, error)
	UpdateStatus(campaignID int, status string) error
	MarkFinished(campaignID int) error

	// Aggregates
	UpdateCounters(campaignID, sent, responded int) error

	// Content
	GetContentItems(campaignID int) ([]model.ContentItem, error)
}

type CampaignRepository struct {
	DB *sql.DB
}

// ====================== Campaign CRUD ======================

func (r *CampaignRepository) Create(c *model.Campaign) error {
	c.CreatedAt = time.Now()
	if c.Status == "" {
		c.Status = model.CampaignDraft
	}
	query := `
        INSERT INTO campaigns (organization_id, name, status, base_template, personalization, messages_per_min, delay_millis, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `
	err := r.DB.QueryRow(query, c.OrganizationID, c.Name, c.Status, c.BaseTemplate,
		c.Personalization, c.MessagesPerMin, c.DelayMillis, c.CreatedAt).Scan(&c.ID)
	if err != nil {
		return err
	}

	for i := range c.ContentItems {
		item := &c.ContentItems[i]
		item.CampaignID = c.ID
		item.Position = i
		err := r.DB.QueryRow(
			`INSERT INTO campaign_content_items (campaign_id, kind, position, file_path) VALUES ($1, $2, $3, $4) RETURNING id`,
			item.CampaignID, item.Kind, item.Position, item.FilePath,
		).Scan(&item.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *CampaignRepository) GetByID(id int) (*model.Campaign, error) {
	query := `
        SELECT id, organization_id, name, status, base_template, personalization,
               messages_per_min, delay_millis, sent, responded, created_at, finished_at, updated_at
        FROM campaigns WHERE id=$1
    `
	var c model.Campaign
	err := r.DB.QueryRow(query, id).Scan(
		&c.ID, &c.OrganizationID, &c.Name, &c.Status, &c.BaseTemplate, &c.Personalization,
		&c.MessagesPerMin, &c.DelayMillis, &c.Sent, &c.Responded, &c.CreatedAt, &c.FinishedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, err
	}

	items, err := r.GetContentItems(id)
	if err != nil {
		return nil, err
	}
	c.ContentItems = items
	return &c, nil
}

func (r *CampaignRepository) ListCampaigns(offset, limit int, status string) ([]*model.Campaign, int, error) {
	campaigns := []*model.Campaign{}
	query := `SELECT id, organization_id, name, status, base_template, personalization,
              messages_per_min, delay_millis, sent, responded, created_at, finished_at, updated_at
              FROM campaigns WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if status != "" {
		query += fmt.Sprintf(" AND status=$%d", argPos)
		args = append(args, status)
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		c := &model.Campaign{}
		if err := rows.Scan(&c.ID, &c.OrganizationID, &c.Name, &c.Status, &c.BaseTemplate, &c.Personalization,
			&c.MessagesPerMin, &c.DelayMillis, &c.Sent, &c.Responded, &c.CreatedAt, &c.FinishedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, c)
	}

	countQuery := `SELECT COUNT(*) FROM campaigns WHERE 1=1`
	argsCount := []interface{}{}
	if status != "" {
		countQuery += " AND status=$1"
		argsCount = append(argsCount, status)
	}

	var total int
	if err := r.DB.QueryRow(countQuery, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return campaigns, total, nil
}

func (r *CampaignRepository) UpdateStatus(campaignID int, status string) error {
	query := `UPDATE campaigns SET status=$1, updated_at=$2 WHERE id=$3`
	_, err := r.DB.Exec(query, status, time.Now(), campaignID)
	return err
}

func (r *CampaignRepository) MarkFinished(campaignID int) error {
	query := `UPDATE campaigns SET status=$1, finished_at=NOW(), updated_at=NOW() WHERE id=$2`
	_, err := r.DB.Exec(query, model.CampaignFinished, campaignID)
	return err
}

func (r *CampaignRepository) UpdateCounters(campaignID, sent, responded int) error {
	query := `UPDATE campaigns SET sent=$1, responded=$2, updated_at=NOW() WHERE id=$3`
	_, err := r.DB.Exec(query, sent, responded, campaignID)
	return err
}

// ====================== Content ======================

func (r *CampaignRepository) GetContentItems(campaignID int) ([]model.ContentItem, error) {
	query := `SELECT id, campaign_id, kind, position, file_path
              FROM campaign_content_items WHERE campaign_id=$1 ORDER BY position ASC`
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.ContentItem{}
	for rows.Next() {
		var it model.ContentItem
		if err := rows.Scan(&it.ID, &it.CampaignID, &it.Kind, &it.Position, &it.FilePath); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
