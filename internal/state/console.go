// Package state holds the aggregate console state that rendering and command
// surfaces read.
//
// Console is the only state touched by more than one component, and each
// field has exactly one writer:
//
//	connected           — channel.Client connectivity observer
//	lastPrice/priceTime — the price_update ingestor
//	status              — status poll loop
//	position            — position poll loop
//	account             — account poll loop
//	risk                — risk poll loop
//	trades              — trade-history poll loop
//	leaderboard         — rankings poll loop
//	blended             — rank blender
//	alerts              — alert ingestor
//
// The mutex exists for reader visibility only; correctness rests on the
// single-writer-per-field discipline above.
package state

import (
	"sync"
	"time"

	"github.com/web3guy0/spydesk/internal/alerts"
	"github.com/web3guy0/spydesk/internal/api"
	"github.com/web3guy0/spydesk/internal/poll"
	"github.com/web3guy0/spydesk/internal/rank"
)

// Console is the shared read model for the whole dashboard
type Console struct {
	mu sync.RWMutex

	connected bool
	lastPrice float64
	priceTime time.Time

	status      poll.Snapshot[api.BotStatus]
	position    poll.Snapshot[api.PositionResponse]
	account     poll.Snapshot[api.AccountInfo]
	risk        poll.Snapshot[api.RiskMetrics]
	trades      poll.Snapshot[api.TradesPage]
	leaderboard poll.Snapshot[api.Leaderboard]

	blended []rank.Ranked
	alerts  []alerts.Alert
}

// NewConsole creates an empty console state
func NewConsole() *Console {
	return &Console{}
}

// SetConnected is written by the channel client only
func (c *Console) SetConnected(connected bool) {
	c.mu.Lock()
	c.connected = connected
	c.mu.Unlock()
}

// Connected reports channel connectivity
func (c *Console) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// SetLastPrice is written by the price ingestor only
func (c *Console) SetLastPrice(price float64, at time.Time) {
	c.mu.Lock()
	c.lastPrice = price
	c.priceTime = at
	c.mu.Unlock()
}

// LastPrice returns the most recent pushed price and its timestamp
func (c *Console) LastPrice() (float64, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastPrice, c.priceTime
}

// SetStatus is written by the status poll loop only
func (c *Console) SetStatus(s poll.Snapshot[api.BotStatus]) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
}

// Status returns the bot status snapshot
func (c *Console) Status() poll.Snapshot[api.BotStatus] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// SetPosition is written by the position poll loop only
func (c *Console) SetPosition(s poll.Snapshot[api.PositionResponse]) {
	c.mu.Lock()
	c.position = s
	c.mu.Unlock()
}

// Position returns the open-position snapshot
func (c *Console) Position() poll.Snapshot[api.PositionResponse] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.position
}

// SetAccount is written by the account poll loop only
func (c *Console) SetAccount(s poll.Snapshot[api.AccountInfo]) {
	c.mu.Lock()
	c.account = s
	c.mu.Unlock()
}

// Account returns the account snapshot
func (c *Console) Account() poll.Snapshot[api.AccountInfo] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.account
}

// SetRisk is written by the risk poll loop only
func (c *Console) SetRisk(s poll.Snapshot[api.RiskMetrics]) {
	c.mu.Lock()
	c.risk = s
	c.mu.Unlock()
}

// Risk returns the risk-metrics snapshot
func (c *Console) Risk() poll.Snapshot[api.RiskMetrics] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.risk
}

// SetTrades is written by the trade-history poll loop only
func (c *Console) SetTrades(s poll.Snapshot[api.TradesPage]) {
	c.mu.Lock()
	c.trades = s
	c.mu.Unlock()
}

// Trades returns the trade-history snapshot
func (c *Console) Trades() poll.Snapshot[api.TradesPage] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.trades
}

// SetLeaderboard is written by the rankings poll loop only
func (c *Console) SetLeaderboard(s poll.Snapshot[api.Leaderboard]) {
	c.mu.Lock()
	c.leaderboard = s
	c.mu.Unlock()
}

// Leaderboard returns the raw rankings snapshot
func (c *Console) Leaderboard() poll.Snapshot[api.Leaderboard] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.leaderboard
}

// SetBlended is written by the rank blender only
func (c *Console) SetBlended(ranked []rank.Ranked) {
	c.mu.Lock()
	c.blended = ranked
	c.mu.Unlock()
}

// Blended returns the blended strategy ordering
func (c *Console) Blended() []rank.Ranked {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]rank.Ranked, len(c.blended))
	copy(out, c.blended)
	return out
}

// SetAlerts is written by the alert ingestor only
func (c *Console) SetAlerts(list []alerts.Alert) {
	c.mu.Lock()
	c.alerts = list
	c.mu.Unlock()
}

// Alerts returns the retained alert feed, most recent first
func (c *Console) Alerts() []alerts.Alert {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]alerts.Alert, len(c.alerts))
	copy(out, c.alerts)
	return out
}
