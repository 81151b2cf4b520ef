package models

import (
	"github.com/google/uuid"

	"github.com/hotelops/backend/internal/domain/party"
)

// PartyModel is the persistence model for the ledger's party view.
// The master data lives in the parties table; the ledger reads it and
// never writes it.
type PartyModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key"`
	DisplayName string     `gorm:"type:varchar(200);not null"`
	Type        party.Type `gorm:"type:varchar(20);not null;index"`
}

// TableName returns the table name for GORM
func (PartyModel) TableName() string {
	return "parties"
}

// ToDomain converts the persistence model to a domain Party.
func (m *PartyModel) ToDomain() *party.Party {
	return &party.Party{
		ID:          m.ID,
		DisplayName: m.DisplayName,
		Type:        m.Type,
	}
}
