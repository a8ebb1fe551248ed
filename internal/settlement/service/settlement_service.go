package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang-signal-settler/internal/entity"
	"golang-signal-settler/internal/settlement/config"
	"golang-signal-settler/internal/settlement/dto"
	"golang-signal-settler/internal/settlement/repository"
	"golang-signal-settler/pkg/common"
	"golang-signal-settler/pkg/logger"
	"golang-signal-settler/pkg/push"
	redisPkg "golang-signal-settler/pkg/redis"
	"golang-signal-settler/pkg/telegram"

	"github.com/patrickmn/go-cache"
)

const lastPriceTTL = 15 * time.Minute

// SettlementService runs settlement cycles over pending signals.
type SettlementService interface {
	RunCycle(ctx context.Context) (*dto.CycleResult, error)
}

type settlementService struct {
	cfg          *config.Config
	log          *logger.Logger
	signalRepo   repository.SignalRepository
	historyRepo  repository.SettlementHistoryRepository
	quoteRepo    repository.QuoteRepository
	pushNotifier push.Notifier
	opsNotifier  telegram.Notifier
	redisClient  *redisPkg.Client
	warnCache    *cache.Cache
}

// NewSettlementService creates the settlement cycle orchestrator. The push
// notifier, ops notifier and redis client may be nil; the corresponding
// side effects are then skipped.
func NewSettlementService(
	cfg *config.Config,
	log *logger.Logger,
	signalRepo repository.SignalRepository,
	historyRepo repository.SettlementHistoryRepository,
	quoteRepo repository.QuoteRepository,
	pushNotifier push.Notifier,
	opsNotifier telegram.Notifier,
	redisClient *redisPkg.Client,
) SettlementService {
	return &settlementService{
		cfg:          cfg,
		log:          log,
		signalRepo:   signalRepo,
		historyRepo:  historyRepo,
		quoteRepo:    quoteRepo,
		pushNotifier: pushNotifier,
		opsNotifier:  opsNotifier,
		redisClient:  redisClient,
		warnCache:    cache.New(cfg.Worker.DataQualityWarnInterval, 2*cfg.Worker.DataQualityWarnInterval),
	}
}

// RunCycle executes one settlement cycle: validate store access, list
// pending signals, then process each signal independently. Only a store
// failure before the per-signal loop aborts the cycle; everything after is
// isolated per signal. The cycle holds no state of its own, so overlapping
// runs are safe: the conditional settle in the repository is the only
// guard that matters.
func (s *settlementService) RunCycle(ctx context.Context) (*dto.CycleResult, error) {
	start := time.Now()
	s.log.DebugContext(ctx, "Starting settlement cycle")

	if err := s.signalRepo.Ping(ctx); err != nil {
		s.log.Error("Store authentication failed, aborting cycle", logger.ErrorField(err))
		return nil, fmt.Errorf("store authentication failed: %w", err)
	}

	signals, err := s.signalRepo.ListPending(ctx)
	if err != nil {
		s.log.Error("Failed to list pending signals, aborting cycle", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to list pending signals: %w", err)
	}

	result := &dto.CycleResult{StartedAt: start}

	if len(signals) == 0 {
		s.log.DebugContext(ctx, "No pending signals")
		result.Elapsed = time.Since(start)
		return result, nil
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, s.cfg.Worker.MaxConcurrentSignals)
	)

	for i := range signals {
		signal := signals[i]
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			signalResult := s.processSignal(ctx, &signal)

			mu.Lock()
			result.Signals = append(result.Signals, signalResult)
			mu.Unlock()
		}()
	}
	wg.Wait()

	result.Elapsed = time.Since(start)

	s.log.Info("Settlement cycle finished",
		logger.IntField("pending_signals", len(signals)),
		logger.IntField("settled", result.Settled()),
		logger.IntField("skipped", result.Skipped()),
		logger.IntField("failed", result.Failed()),
		logger.Field("elapsed", result.Elapsed))

	s.sendCycleSummary(result)

	return result, nil
}

// processSignal walks one signal through QUOTE, EVALUATE, SETTLE and
// NOTIFY. Every error is absorbed here; the signal simply stays PENDING
// and is retried next cycle.
func (s *settlementService) processSignal(ctx context.Context, signal *entity.Signal) dto.SignalResult {
	result := dto.SignalResult{SignalID: signal.ID, Pair: signal.Pair}

	if !Evaluable(signal) {
		s.warnDataQuality(signal)
		result.Status = dto.ResultSkipped
		return result
	}

	price, err := s.quoteRepo.GetQuote(ctx, signal.Pair)
	if err != nil {
		s.log.Error("Failed to fetch quote",
			logger.ErrorField(err),
			logger.StringField("signal_id", signal.ID),
			logger.StringField("pair", signal.Pair))
		result.Status = dto.ResultFailed
		result.Errors = err.Error()
		return result
	}
	result.Price = price

	s.recordLastPrice(ctx, signal.Pair, price)

	outcome := Evaluate(signal.Direction, signal.TPPrice, signal.SLPrice, price)
	if outcome == entity.StatusPending {
		result.Status = dto.ResultPending
		return result
	}

	endedAt := time.Now().UTC()
	if err := s.signalRepo.Settle(ctx, signal.ID, outcome, endedAt); err != nil {
		if errors.Is(err, repository.ErrAlreadySettled) {
			// Another run won the race and already owns the
			// notification for this signal.
			s.log.DebugContext(ctx, "Signal already settled elsewhere",
				logger.StringField("signal_id", signal.ID),
				logger.StringField("pair", signal.Pair))
			result.Status = dto.ResultSkipped
			return result
		}
		s.log.Error("Failed to settle signal",
			logger.ErrorField(err),
			logger.StringField("signal_id", signal.ID),
			logger.StringField("pair", signal.Pair))
		result.Status = dto.ResultFailed
		result.Errors = err.Error()
		return result
	}

	result.Status = dto.ResultSettled
	result.Outcome = string(outcome)

	s.log.Info("Signal settled",
		logger.StringField("signal_id", signal.ID),
		logger.StringField("pair", signal.Pair),
		logger.StringField("outcome", string(outcome)),
		logger.Float64Field("price", price))

	// The settle write is durable at this point. Notification and audit
	// must still be attempted even if the cycle's context has been
	// cancelled in the meantime.
	postCtx := context.WithoutCancel(ctx)
	result.Notified = s.notifyOwner(postCtx, signal, outcome, price)
	s.recordHistory(postCtx, signal, outcome, price, result.Notified)
	s.sendOpsAlert(signal, outcome, price)

	return result
}

// notifyOwner delivers the outcome push. Failures are logged and
// swallowed: the settlement write already happened and is never rolled
// back for a missed notification.
func (s *settlementService) notifyOwner(ctx context.Context, signal *entity.Signal, outcome entity.SignalStatus, price float64) bool {
	if s.pushNotifier == nil {
		return false
	}

	token := signal.User.PushToken
	if token == "" {
		s.log.Info("Owner has no push token, skipping notification",
			logger.StringField("signal_id", signal.ID),
			logger.StringField("user_id", signal.UserID))
		return false
	}

	title := "🤑 Target hit!"
	if outcome == entity.StatusLost {
		title = "🔻 Stopped out"
	}

	notification := push.Notification{
		Token: token,
		Title: title,
		Body:  fmt.Sprintf("%s closed %s at %g", signal.Pair, outcome, price),
		Data: map[string]string{
			"signal_id": signal.ID,
			"outcome":   string(outcome),
		},
	}

	if err := s.pushNotifier.Send(ctx, notification); err != nil {
		s.log.Error("Failed to send push notification",
			logger.ErrorField(err),
			logger.StringField("signal_id", signal.ID),
			logger.StringField("user_id", signal.UserID))
		return false
	}

	s.log.Debug("Push notification sent", logger.StringField("signal_id", signal.ID))
	return true
}

// recordHistory writes the settlement audit row. Best-effort: the signal
// row is already terminal.
func (s *settlementService) recordHistory(ctx context.Context, signal *entity.Signal, outcome entity.SignalStatus, price float64, notified bool) {
	if s.historyRepo == nil {
		return
	}

	details, err := json.Marshal(map[string]interface{}{
		"pair":        signal.Pair,
		"direction":   signal.Direction,
		"entry_price": signal.EntryPrice,
		"tp_price":    signal.TPPrice,
		"sl_price":    signal.SLPrice,
	})
	if err != nil {
		s.log.Error("Failed to marshal settlement details", logger.ErrorField(err), logger.StringField("signal_id", signal.ID))
		return
	}

	history := &entity.SettlementHistory{
		SignalID:     signal.ID,
		Outcome:      outcome,
		TriggerPrice: price,
		Notified:     notified,
		Details:      details,
	}
	if err := s.historyRepo.Create(ctx, history); err != nil {
		s.log.Error("Failed to record settlement history", logger.ErrorField(err), logger.StringField("signal_id", signal.ID))
	}
}

// recordLastPrice keeps the most recent quote per instrument in Redis for
// operational inspection. Failures are logged only.
func (s *settlementService) recordLastPrice(ctx context.Context, pair string, price float64) {
	if s.redisClient == nil {
		return
	}

	key := fmt.Sprintf(common.RedisKeyLastPrice, pair)
	pipe := s.redisClient.Pipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"price":     price,
		"timestamp": time.Now().Unix(),
	})
	pipe.Expire(ctx, key, lastPriceTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Error("Failed to record last price", logger.ErrorField(err), logger.StringField("pair", pair))
	}
}

// warnDataQuality logs a zero target/stop once per warn interval instead
// of on every cycle.
func (s *settlementService) warnDataQuality(signal *entity.Signal) {
	if _, found := s.warnCache.Get(signal.ID); found {
		return
	}
	s.warnCache.SetDefault(signal.ID, struct{}{})

	s.log.Warn("Signal has zero target or stop price, cannot evaluate",
		logger.StringField("signal_id", signal.ID),
		logger.StringField("pair", signal.Pair),
		logger.Float64Field("tp_price", signal.TPPrice),
		logger.Float64Field("sl_price", signal.SLPrice))
}

func (s *settlementService) sendOpsAlert(signal *entity.Signal, outcome entity.SignalStatus, price float64) {
	if s.opsNotifier == nil {
		return
	}

	msg := telegram.FormatSettlementAlert(signal.Pair, string(signal.Direction), string(outcome), price, signal.TPPrice, signal.SLPrice)
	if err := s.opsNotifier.SendMessage(msg); err != nil {
		s.log.Error("Failed to send ops alert", logger.ErrorField(err), logger.StringField("signal_id", signal.ID))
	}
}

func (s *settlementService) sendCycleSummary(result *dto.CycleResult) {
	if s.opsNotifier == nil {
		return
	}
	// Quiet cycles produce no summary.
	if result.Settled() == 0 && result.Failed() == 0 {
		return
	}

	msg := telegram.FormatCycleSummary(result.Settled(), result.StillPending(), result.Skipped(), result.Failed(), result.Elapsed)
	if err := s.opsNotifier.SendMessage(msg); err != nil {
		s.log.Error("Failed to send cycle summary", logger.ErrorField(err))
	}
}
