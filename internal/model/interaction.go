// internal/model/interaction.go
package model

import "time"

// Interaction is one historical inbound/outbound exchange between a sender
// account and a contact phone. The distribution engine groups recent rows to
// keep a contact talking to the sender it already knows.
type Interaction struct {
	ID        int       `db:"id"`
	SenderID  int       `db:"sender_id"`
	Phone     string    `db:"phone"`
	Direction string    `db:"direction"` // in, out
	CreatedAt time.Time `db:"created_at"`
}
