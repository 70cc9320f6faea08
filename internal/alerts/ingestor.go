// Package alerts turns trade_update push messages into the bounded,
// de-duplicated alert feed shown on the console.
package alerts

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/web3guy0/spydesk/internal/channel"
)

// MaxAlerts is the retained history bound; oldest records beyond it are evicted
const MaxAlerts = 50

// Severity is the computed urgency of an alert
type Severity string

const (
	SeverityPositive Severity = "positive"
	SeverityNegative Severity = "negative"
)

// Alert is one display-ready record derived from a trade_update
type Alert struct {
	ID       int64 // server trade id when present, else arrival instant (ms)
	Action   string
	Strategy string
	Display  string
	Pnl      decimal.Decimal
	HasPnl   bool
	Severity Severity
	Time     time.Time
}

// Ingestor consumes trade events and retains the most recent MaxAlerts.
// It never issues network calls; its only side effect is the retained slice.
type Ingestor struct {
	mu      sync.RWMutex
	records []Alert
	now     func() time.Time
	onAlert func(Alert)
}

// NewIngestor creates an ingestor with an empty history
func NewIngestor() *Ingestor {
	return &Ingestor{now: time.Now}
}

// OnAlert registers a callback fired for every newly retained alert
// (duplicates never fire it). Must be set before ingestion starts.
func (in *Ingestor) OnAlert(f func(Alert)) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.onAlert = f
}

// SetClock overrides the arrival clock. Test hook.
func (in *Ingestor) SetClock(now func() time.Time) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.now = now
}

// Ingest handles one trade_update message: derive identity, drop duplicates,
// normalize fields, prepend, truncate to MaxAlerts.
func (in *Ingestor) Ingest(msg channel.Message) {
	in.mu.Lock()

	arrival := in.now()
	alert := normalize(msg.Data, arrival)

	for _, r := range in.records {
		if r.ID == alert.ID {
			in.mu.Unlock()
			log.Debug().Int64("id", alert.ID).Msg("Duplicate trade event dropped")
			return
		}
	}

	in.records = append([]Alert{alert}, in.records...)
	if len(in.records) > MaxAlerts {
		in.records = in.records[:MaxAlerts]
	}
	cb := in.onAlert
	in.mu.Unlock()

	// Callback runs outside the lock so it may read Alerts()
	if cb != nil {
		cb(alert)
	}
}

// Alerts returns the retained history, most recent first
func (in *Ingestor) Alerts() []Alert {
	in.mu.RLock()
	defer in.mu.RUnlock()

	out := make([]Alert, len(in.records))
	copy(out, in.records)
	return out
}

// normalize maps the open payload onto an Alert, defaulting optional fields.
// Identity prefers a server-assigned trade id; the arrival instant is only a
// fallback for payloads that carry none (two genuinely distinct events in the
// same millisecond would then collapse, same as the dashboard always did).
func normalize(data map[string]interface{}, arrival time.Time) Alert {
	alert := Alert{
		ID:       arrival.UnixMilli(),
		Action:   "OPEN",
		Strategy: "unknown",
		Time:     arrival,
	}

	if id, ok := numField(data, "id"); ok && id > 0 {
		alert.ID = int64(id)
	}
	if action, ok := data["action"].(string); ok && action != "" {
		alert.Action = action
	}
	if strategy, ok := data["strategy"].(string); ok && strategy != "" {
		alert.Strategy = strategy
	}
	if display, ok := data["display"].(string); ok {
		alert.Display = display
	}
	if pnl, ok := numField(data, "pnl"); ok {
		alert.Pnl = decimal.NewFromFloat(pnl)
		alert.HasPnl = true
	}

	alert.Severity = classify(alert)
	return alert
}

// classify computes urgency: opens are positive, closes depend on realized P&L
func classify(a Alert) Severity {
	if a.Action != "CLOSE" {
		return SeverityPositive
	}
	if a.HasPnl && !a.Pnl.IsNegative() {
		return SeverityPositive
	}
	return SeverityNegative
}

func numField(data map[string]interface{}, key string) (float64, bool) {
	v, ok := data[key].(float64)
	return v, ok
}
