// internal/treasury/ledger.go
package treasury

import (
	"math"
	"sync"

	"repobounty/internal/common/logger"
)

// Defaults mirror the funded operating envelope: a monthly bounty budget and
// a hard per-submission cap.
const (
	DefaultMonthlyBudget = 500.0
	DefaultMaxPerPR      = 50.0
)

// Snapshot is a point-in-time copy of the ledger, safe to serialize without
// holding the lock.
type Snapshot struct {
	MonthlyBudget      float64 `json:"monthlyBudget"`
	Spent              float64 `json:"spent"`
	Earned             float64 `json:"earned"`
	NetBalance         float64 `json:"netBalance"`
	BountyCount        int     `json:"bountyCount"`
	AuditCount         int     `json:"auditCount"`
	SecurityAuditSpend float64 `json:"securityAuditSpend"`
	MaxPerPR           float64 `json:"maxPerPR"`
}

// Decision is the outcome of an authorization attempt.
type Decision struct {
	Authorized bool
	Amount     float64
	Clamped    bool
	Note       string
}

// Ledger tracks the bounty treasury. All mutation goes through the one
// mutex; the net balance is never incrementally adjusted, it is recomputed
// wholesale from budget, earned and spent on every write so the three source
// fields can never drift from the derived one.
type Ledger struct {
	mu sync.Mutex

	monthlyBudget      float64
	maxPerPR           float64
	spent              float64
	earned             float64
	netBalance         float64
	bountyCount        int
	auditCount         int
	securityAuditSpend float64

	log logger.Logger
}

// NewLedger builds a ledger with the given budget and per-submission cap.
// Non-positive arguments fall back to the defaults.
func NewLedger(monthlyBudget, maxPerPR float64, log logger.Logger) *Ledger {
	if monthlyBudget <= 0 {
		monthlyBudget = DefaultMonthlyBudget
	}
	if maxPerPR <= 0 {
		maxPerPR = DefaultMaxPerPR
	}
	l := &Ledger{
		monthlyBudget: monthlyBudget,
		maxPerPR:      maxPerPR,
		log:           log,
	}
	l.recompute()
	return l
}

// Authorize attempts to reserve a bounty payout. The amount is first clamped
// to the per-submission cap; if the clamped amount still exceeds the net
// balance the payout is queued (nothing is debited) and Authorized is false.
// On success the debit is applied and the bounty counter advances.
func (l *Ledger) Authorize(amount float64) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	d := Decision{Amount: round2(amount)}
	if d.Amount > l.maxPerPR {
		d.Amount = l.maxPerPR
		d.Clamped = true
		d.Note = "payout clamped to per-submission cap"
	}

	if d.Amount > l.netBalance {
		d.Note = "insufficient treasury balance; payout queued"
		l.log.Warn("payout queued, treasury exhausted", map[string]interface{}{
			"requested":  amount,
			"netBalance": l.netBalance,
		})
		return d
	}

	l.spent = round2(l.spent + d.Amount)
	l.bountyCount++
	l.recompute()
	d.Authorized = true

	l.log.Info("bounty authorized", map[string]interface{}{
		"amount":     d.Amount,
		"netBalance": l.netBalance,
		"bounties":   l.bountyCount,
	})
	return d
}

// AddRevenue credits enterprise audit income and advances the audit counter.
func (l *Ledger) AddRevenue(amount float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.earned = round2(l.earned + amount)
	l.auditCount++
	l.recompute()

	l.log.Info("audit revenue recorded", map[string]interface{}{
		"amount":     amount,
		"netBalance": l.netBalance,
		"audits":     l.auditCount,
	})
}

// RecordSubcontractorSpend debits the fee paid to the external security
// oracle. It counts toward spend and the audit-spend subtotal but not toward
// the bounty counter, since no bounty left the treasury.
func (l *Ledger) RecordSubcontractorSpend(cost float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.spent = round2(l.spent + cost)
	l.securityAuditSpend = round2(l.securityAuditSpend + cost)
	l.recompute()

	l.log.Info("security audit fee debited", map[string]interface{}{
		"cost":       cost,
		"netBalance": l.netBalance,
	})
}

// Snapshot returns a consistent copy of the ledger state.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	return Snapshot{
		MonthlyBudget:      l.monthlyBudget,
		Spent:              l.spent,
		Earned:             l.earned,
		NetBalance:         l.netBalance,
		BountyCount:        l.bountyCount,
		AuditCount:         l.auditCount,
		SecurityAuditSpend: l.securityAuditSpend,
		MaxPerPR:           l.maxPerPR,
	}
}

// MaxPerPR exposes the per-submission cap for callers that clamp upstream.
func (l *Ledger) MaxPerPR() float64 {
	return l.maxPerPR
}

// recompute derives the net balance from scratch. Caller holds the lock.
func (l *Ledger) recompute() {
	l.netBalance = round2(l.monthlyBudget + l.earned - l.spent)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
