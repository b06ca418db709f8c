package domain

import (
	"time"

	"github.com/google/uuid"
)

type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionBlocked  ConnectionStatus = "blocked"
)

// Connection is the canonical pairwise relation between two companies.
// CompanyA is always the smaller of the two UUIDs.
type Connection struct {
	ID                 uuid.UUID        `json:"id"`
	CompanyA           uuid.UUID        `json:"company_a"`
	CompanyB           uuid.UUID        `json:"company_b"`
	Status             ConnectionStatus `json:"status"`
	RequestedBy        Identity         `json:"requested_by"`
	RequestedByCompany uuid.UUID        `json:"requested_by_company"`
	InitialMessage     string           `json:"initial_message"`
	BlockingCompanyID  *uuid.UUID       `json:"blocking_company_id,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// CanonicalPair orders (a, b) so the smaller UUID is always first.
func CanonicalPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() < b.String() {
		return a, b
	}
	return b, a
}

// Involves reports whether company is a party to the connection.
func (c *Connection) Involves(company uuid.UUID) bool {
	return c.CompanyA == company || c.CompanyB == company
}

// OtherParty returns the company on the far side of company.
func (c *Connection) OtherParty(company uuid.UUID) uuid.UUID {
	if c.CompanyA == company {
		return c.CompanyB
	}
	return c.CompanyA
}

// ConnectionChat is a message on a Connection, deleted with its parent.
type ConnectionChat struct {
	ID           uuid.UUID `json:"id"`
	ConnectionID uuid.UUID `json:"connection_id"`
	Sender       Identity  `json:"sender"`
	Text         string    `json:"text"`
	CreatedAt    time.Time `json:"created_at"`
}
