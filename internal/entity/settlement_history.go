package entity

import (
	"time"

	"gorm.io/datatypes"
)

// SettlementHistory records one decisive settlement for auditing. The
// signal row only keeps its final state; the history keeps how it got there.
type SettlementHistory struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	SignalID     string         `gorm:"not null;index" json:"signal_id"`
	Outcome      SignalStatus   `gorm:"not null" json:"outcome"`
	TriggerPrice float64        `gorm:"not null" json:"trigger_price"`
	Notified     bool           `gorm:"not null" json:"notified"`
	Details      datatypes.JSON `gorm:"type:jsonb" json:"details"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (SettlementHistory) TableName() string {
	return "settlement_histories"
}
