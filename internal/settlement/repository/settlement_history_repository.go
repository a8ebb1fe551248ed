package repository

import (
	"context"

	"golang-signal-settler/internal/entity"

	"gorm.io/gorm"
)

// SettlementHistoryRepository defines the interface for settlement audit
// records.
type SettlementHistoryRepository interface {
	Create(ctx context.Context, history *entity.SettlementHistory) error
}

type settlementHistoryRepository struct {
	db *gorm.DB
}

// NewSettlementHistoryRepository creates a new GORM-based settlement history
// repository.
func NewSettlementHistoryRepository(db *gorm.DB) SettlementHistoryRepository {
	return &settlementHistoryRepository{db: db}
}

func (r *settlementHistoryRepository) Create(ctx context.Context, history *entity.SettlementHistory) error {
	return r.db.WithContext(ctx).Create(history).Error
}
