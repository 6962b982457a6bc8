package repository

import (
	"database/sql"

	"github.com/unclebandit/zapleopard-backend/internal/model"
)

// ContactRepositoryInterface defines methods used by the distribution engine
type ContactRepositoryInterface interface {
	GetByID(id int) (*model.Contact, error)
	ListByOrganization(organizationID int) ([]model.Contact, error)
}

// ContactRepository is the concrete implementation
type ContactRepository struct {
	DB *sql.DB
}

// GetByID fetches a contact by ID
func (r *ContactRepository) GetByID(id int) (*model.Contact, error) {
	query := `
        SELECT id, organization_id, name, phone
        FROM contacts
        WHERE id = $1
    `
	row := r.DB.QueryRow(query, id)

	var c model.Contact
	if err := row.Scan(&c.ID, &c.OrganizationID, &c.Name, &c.Phone); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // not found
		}
		return nil, err
	}
	return &c, nil
}

// ListByOrganization fetches every contact in the organization's book
func (r *ContactRepository) ListByOrganization(organizationID int) ([]model.Contact, error) {
	query := `
        SELECT id, organization_id, name, phone
        FROM contacts
        WHERE organization_id = $1
        ORDER BY id ASC
    `
	rows, err := r.DB.Query(query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []model.Contact{}
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.ID, &c.OrganizationID, &c.Name, &c.Phone); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, nil
}

var _ ContactRepositoryInterface = (*ContactRepository)(nil)
