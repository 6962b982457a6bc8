// internal/model/sender.go
package model

// Sender is a connected channel account used to deliver messages. The core
// only reads active senders and bumps the sent counter; connection lifecycle
// belongs to an external collaborator.
type Sender struct {
	ID             int    `db:"id" json:"id"`
	OrganizationID int    `db:"organization_id" json:"organization_id"`
	Phone          string `db:"phone" json:"phone"`
	Active         bool   `db:"active" json:"active"`
	MessagesSent   int    `db:"messages_sent" json:"messages_sent"`
}
