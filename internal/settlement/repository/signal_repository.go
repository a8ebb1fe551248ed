package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang-signal-settler/internal/entity"

	"gorm.io/gorm"
)

// ErrAlreadySettled reports that a conditional settle found the signal no
// longer PENDING. Callers treat it as a benign no-op: another cycle got
// there first and already owns the notification.
var ErrAlreadySettled = errors.New("signal is no longer pending")

// SignalRepository defines the store contract the settlement cycle needs.
type SignalRepository interface {
	// Ping validates store connectivity and credentials before a cycle
	// touches any data.
	Ping(ctx context.Context) error
	// ListPending returns every PENDING signal with its owner preloaded,
	// or an empty slice when none are pending.
	ListPending(ctx context.Context) ([]entity.Signal, error)
	// Settle transitions a signal to a terminal outcome and stamps
	// ended_at, only if the signal is still PENDING. Returns
	// ErrAlreadySettled when the guard does not hold.
	Settle(ctx context.Context, id string, outcome entity.SignalStatus, endedAt time.Time) error
}

type signalRepository struct {
	db *gorm.DB
}

// NewSignalRepository creates a new GORM-based signal repository.
func NewSignalRepository(db *gorm.DB) SignalRepository {
	return &signalRepository{db: db}
}

func (r *signalRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *signalRepository) ListPending(ctx context.Context) ([]entity.Signal, error) {
	var signals []entity.Signal
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("status = ?", entity.StatusPending).
		Find(&signals).Error; err != nil {
		return nil, err
	}
	return signals, nil
}

func (r *signalRepository) Settle(ctx context.Context, id string, outcome entity.SignalStatus, endedAt time.Time) error {
	if outcome != entity.StatusWon && outcome != entity.StatusLost {
		return fmt.Errorf("outcome %q is not terminal", outcome)
	}

	// Single conditional UPDATE. Deciding in the WHERE clause rather than
	// with a prior read is what makes concurrent cycles settle each signal
	// exactly once.
	res := r.db.WithContext(ctx).
		Model(&entity.Signal{}).
		Where("id = ? AND status = ?", id, entity.StatusPending).
		Updates(map[string]interface{}{
			"status":   outcome,
			"ended_at": endedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlreadySettled
	}
	return nil
}
