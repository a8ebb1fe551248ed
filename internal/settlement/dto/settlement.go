package dto

import "time"

// Per-signal processing statuses.
const (
	ResultSettled = "SETTLED"
	ResultPending = "PENDING"
	ResultSkipped = "SKIPPED"
	ResultFailed  = "FAILED"
)

// SignalResult is the outcome of processing one signal within a cycle.
type SignalResult struct {
	SignalID string  `json:"signal_id"`
	Pair     string  `json:"pair"`
	Status   string  `json:"status"`
	Outcome  string  `json:"outcome,omitempty"`
	Price    float64 `json:"price,omitempty"`
	Notified bool    `json:"notified"`
	Errors   string  `json:"errors,omitempty"`
}

// CycleResult summarizes one settlement cycle.
type CycleResult struct {
	StartedAt time.Time      `json:"started_at"`
	Elapsed   time.Duration  `json:"elapsed"`
	Signals   []SignalResult `json:"signals"`
}

// Settled counts signals that reached a terminal outcome this cycle.
func (r *CycleResult) Settled() int { return r.count(ResultSettled) }

// StillPending counts signals evaluated but not decided.
func (r *CycleResult) StillPending() int { return r.count(ResultPending) }

// Skipped counts signals not evaluated (bad data, lost races).
func (r *CycleResult) Skipped() int { return r.count(ResultSkipped) }

// Failed counts signals whose processing errored.
func (r *CycleResult) Failed() int { return r.count(ResultFailed) }

func (r *CycleResult) count(status string) int {
	n := 0
	for _, s := range r.Signals {
		if s.Status == status {
			n++
		}
	}
	return n
}
