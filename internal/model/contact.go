// internal/model/contact.go
package model

type Contact struct {
	ID             int    `db:"id" json:"id"`
	OrganizationID int    `db:"organization_id" json:"organization_id"`
	Name           string `db:"name" json:"name"`
	Phone          string `db:"phone" json:"phone"`
}
