package api

import "time"

// BotStatus mirrors GET /api/trading/status
type BotStatus struct {
	Running           bool       `json:"running"`
	Mode              string     `json:"mode"` // "paper" or "live"
	CurrentRegime     string     `json:"current_regime"`
	DailyPnl          float64    `json:"daily_pnl"`
	DailyTrades       int        `json:"daily_trades"`
	ConsecutiveLosses int        `json:"consecutive_losses"`
	CooldownUntil     *time.Time `json:"cooldown_until"`
}

// Position is the open position, if any
type Position struct {
	Symbol           string   `json:"symbol"`
	Direction        string   `json:"direction"`
	Quantity         int      `json:"quantity"`
	EntryPrice       float64  `json:"entry_price"`
	EntryTime        string   `json:"entry_time"`
	StopLoss         float64  `json:"stop_loss"`
	TakeProfit       float64  `json:"take_profit"`
	Strategy         string   `json:"strategy"`
	UnrealizedPnl    float64  `json:"unrealized_pnl"`
	OriginalQuantity int      `json:"original_quantity"`
	ScalesCompleted  []string `json:"scales_completed"`
	EffectiveStop    float64  `json:"effective_stop"`
}

// PositionResponse wraps GET /api/trading/position ("position": null when flat)
type PositionResponse struct {
	Position *Position `json:"position"`
}

// AccountInfo mirrors GET /api/account/info
type AccountInfo struct {
	Equity      float64 `json:"equity"`
	Cash        float64 `json:"cash"`
	BuyingPower float64 `json:"buying_power"`
	PeakEquity  float64 `json:"peak_equity"`
	DrawdownPct float64 `json:"drawdown_pct"`
	DailyPnl    float64 `json:"daily_pnl"`
	TotalPnl    float64 `json:"total_pnl"`
	WinRate     float64 `json:"win_rate"`
	TotalTrades int     `json:"total_trades"`
}

// RiskMetrics mirrors GET /api/account/risk
type RiskMetrics struct {
	CurrentDrawdownPct   float64 `json:"current_drawdown_pct"`
	MaxDrawdownLimit     float64 `json:"max_drawdown_limit"`
	DailyLoss            float64 `json:"daily_loss"`
	DailyLossLimit       float64 `json:"daily_loss_limit"`
	TradesToday          int     `json:"trades_today"`
	MaxTradesPerDay      int     `json:"max_trades_per_day"`
	ConsecutiveLosses    int     `json:"consecutive_losses"`
	CooldownActive       bool    `json:"cooldown_active"`
	CircuitBreakerActive bool    `json:"circuit_breaker_active"`
}

// Trade is one closed trade from the history endpoint
type Trade struct {
	ID         int     `json:"id"`
	Symbol     string  `json:"symbol"`
	Direction  string  `json:"direction"`
	Strategy   string  `json:"strategy"`
	Regime     string  `json:"regime"`
	Quantity   int     `json:"quantity"`
	EntryPrice float64 `json:"entry_price"`
	EntryTime  string  `json:"entry_time"`
	ExitPrice  float64 `json:"exit_price"`
	ExitTime   string  `json:"exit_time"`
	Pnl        float64 `json:"pnl"`
	PnlPct     float64 `json:"pnl_pct"`
	ExitReason string  `json:"exit_reason"`
	IsPaper    bool    `json:"is_paper"`
	Status     string  `json:"status"`
}

// TradesPage wraps GET /api/trading/trades.
// Total is the full count of closed trades, not len(Trades).
type TradesPage struct {
	Trades []Trade `json:"trades"`
	Total  int     `json:"total"`
}

// StrategyRanking is one leaderboard row.
// LT fields are pointers: null until the first long-term run completes.
type StrategyRanking struct {
	StrategyName        string  `json:"strategy_name"`
	AvgSharpeRatio      float64 `json:"avg_sharpe_ratio"`
	AvgProfitFactor     float64 `json:"avg_profit_factor"`
	AvgWinRate          float64 `json:"avg_win_rate"`
	AvgReturnPct        float64 `json:"avg_return_pct"`
	AvgMaxDrawdownPct   float64 `json:"avg_max_drawdown_pct"`
	StCompositeScore    float64 `json:"st_composite_score"`
	TotalBacktestTrades int     `json:"total_backtest_trades"`
	BacktestCount       int     `json:"backtest_count"`

	LtCagrPct        *float64 `json:"lt_cagr_pct"`
	LtSharpe         *float64 `json:"lt_sharpe"`
	LtSortino        *float64 `json:"lt_sortino"`
	LtCalmar         *float64 `json:"lt_calmar"`
	LtMaxDrawdownPct *float64 `json:"lt_max_drawdown_pct"`
	LtWinRate        *float64 `json:"lt_win_rate"`
	LtProfitFactor   *float64 `json:"lt_profit_factor"`
	LtTotalTrades    *int     `json:"lt_total_trades"`
	LtYearsTested    *float64 `json:"lt_years_tested"`
	LtCompositeScore *float64 `json:"lt_composite_score"`

	CompositeScore float64 `json:"composite_score"`
}

// BacktestProgress reports an in-flight auto-backtest run
type BacktestProgress struct {
	Status      string `json:"status"` // "idle", "running", "complete"
	CurrentTest string `json:"current_test"`
	Completed   int    `json:"completed"`
	Total       int    `json:"total"`
	Errors      int    `json:"errors"`
	LastRun     string `json:"last_run"`

	// Long-term progress only
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// Running reports whether a run is in flight
func (p BacktestProgress) Running() bool {
	return p.Status == "running"
}

// Leaderboard wraps GET /api/leaderboard/rankings
type Leaderboard struct {
	Rankings   []StrategyRanking `json:"rankings"`
	Progress   BacktestProgress  `json:"progress"`
	LtProgress BacktestProgress  `json:"lt_progress"`
}

// StrategyConfig mirrors one row of GET /api/settings/strategies
type StrategyConfig struct {
	ID      int                    `json:"id"`
	Name    string                 `json:"name"`
	Enabled bool                   `json:"enabled"`
	Params  map[string]interface{} `json:"params"`
}

// TradingSettings mirrors GET /api/settings/trading
type TradingSettings struct {
	InitialCapital  float64 `json:"initial_capital"`
	MaxRiskPerTrade float64 `json:"max_risk_per_trade"`
	DailyLossLimit  float64 `json:"daily_loss_limit"`
	MaxDrawdown     float64 `json:"max_drawdown"`
	MaxPositionPct  float64 `json:"max_position_pct"`
	MaxTradesPerDay int     `json:"max_trades_per_day"`
}

// LivePerformance is real-time per-strategy trade stats
type LivePerformance struct {
	StrategyName string  `json:"strategy_name"`
	LiveTrades   int     `json:"live_trades"`
	LiveWins     int     `json:"live_wins"`
	LivePnl      float64 `json:"live_pnl"`
	LiveWinRate  float64 `json:"live_win_rate"`
}
