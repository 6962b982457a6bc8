// internal/model/content_item.go
package model

// Content item kinds. A campaign's outbound payload is an ordered list of
// these; the campaign text rides as the caption of the first media item.
const (
	ContentText     = "text"
	ContentImage    = "image"
	ContentDocument = "document"
	ContentAudio    = "audio"
)

type ContentItem struct {
	ID         int    `db:"id" json:"id"`
	CampaignID int    `db:"campaign_id" json:"campaign_id"`
	Kind       string `db:"kind" json:"kind"`
	Position   int    `db:"position" json:"position"`
	FilePath   string `db:"file_path" json:"file_path,omitempty"`
}

func (c ContentItem) IsMedia() bool {
	return c.Kind == ContentImage || c.Kind == ContentDocument || c.Kind == ContentAudio
}
