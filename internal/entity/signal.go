package entity

import "time"

// SignalDirection is the side of a trade signal.
type SignalDirection string

// SignalStatus is the settlement state of a signal. PENDING transitions to
// WON or LOST exactly once; WON and LOST are terminal.
type SignalStatus string

const (
	DirectionBuy  SignalDirection = "BUY"
	DirectionSell SignalDirection = "SELL"

	StatusPending SignalStatus = "PENDING"
	StatusWon     SignalStatus = "WON"
	StatusLost    SignalStatus = "LOST"
)

// Signal is a tracked directional trade idea. The settlement worker only
// ever mutates Status and EndedAt; everything else is immutable once
// created by the app.
type Signal struct {
	ID         string          `gorm:"primaryKey" json:"id"`
	UserID     string          `gorm:"not null" json:"user_id"`
	User       User            `gorm:"foreignKey:UserID" json:"user"`
	Pair       string          `gorm:"not null" json:"pair"`
	Direction  SignalDirection `gorm:"not null" json:"direction"`
	EntryPrice float64         `gorm:"not null" json:"entry_price"`
	TPPrice    float64         `gorm:"column:tp_price;not null" json:"tp_price"`
	SLPrice    float64         `gorm:"column:sl_price;not null" json:"sl_price"`
	Status     SignalStatus    `gorm:"not null;default:PENDING" json:"status"`
	StartedAt  time.Time       `gorm:"not null" json:"started_at"`
	EndedAt    *time.Time      `json:"ended_at"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (Signal) TableName() string {
	return "signals"
}
