package model

import "time"

// Ledger event types written to the outbox.
const (
	EventTransactionCreated = "TransactionCreated"
	EventTransactionDeleted = "TransactionDeleted"
)

// LedgerEvent is an outbox row recording a ledger change. A separate poller
// publishes unprocessed events to Kafka for downstream bookkeeping.
type LedgerEvent struct {
	ID            uint64    `gorm:"primaryKey"`
	AppID         string    `gorm:"size:64;not null"`
	EventType     string    `gorm:"size:64;not null"`
	TransactionID string    `gorm:"size:36;not null"`
	Payload       string    `gorm:"type:jsonb;not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	Processed     bool      `gorm:"not null;default:false"`
	ProcessedAt   *time.Time
}

func (LedgerEvent) TableName() string { return "ledger_outbox" }
