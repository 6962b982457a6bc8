// internal/model/campaign.go
package model

import "time"

// Campaign statuses
const (
	CampaignDraft    = "draft"
	CampaignRunning  = "running"
	CampaignPaused   = "paused"
	CampaignFinished = "finished"
	CampaignError    = "error"
)

type Campaign struct {
	ID              int           `db:"id" json:"id"`
	OrganizationID  int           `db:"organization_id" json:"organization_id"`
	Name            string        `db:"name" json:"name"`
	Status          string        `db:"status" json:"status"`
	BaseTemplate    string        `db:"base_template" json:"base_template"`
	ContentItems    []ContentItem `db:"-" json:"content_items,omitempty"`
	Personalization bool          `db:"personalization" json:"personalization"`
	MessagesPerMin  int           `db:"messages_per_min" json:"messages_per_min"`
	DelayMillis     int           `db:"delay_millis" json:"delay_millis"`
	Sent            int           `db:"sent" json:"sent"`
	Responded       int           `db:"responded" json:"responded"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	FinishedAt      *time.Time    `db:"finished_at" json:"finished_at,omitempty"`
	UpdatedAt       *time.Time    `db:"updated_at" json:"updated_at,omitempty"`
}
