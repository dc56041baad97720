package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single cash-flow entry in the studio ledger.
// Records are immutable after creation; the only mutation is deletion.
type Transaction struct {
	ID            string          `gorm:"primaryKey;size:36" json:"id"`
	AppID         string          `gorm:"size:64;not null;index" json:"-"`
	ClientName    string          `gorm:"size:128;not null" json:"clientName"`
	Artist        string          `gorm:"size:64;not null" json:"artist"`
	Service       string          `gorm:"size:64;not null" json:"service"`
	PaymentMethod string          `gorm:"size:64;not null" json:"paymentMethod"`
	Value         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"value"`
	Obs           string          `gorm:"size:256" json:"obs"`
	CreatedAt     time.Time       `gorm:"autoCreateTime;index" json:"createdAt"`
	UserID        string          `gorm:"size:64;not null" json:"userId"`
}

func (Transaction) TableName() string { return "transaction" }
