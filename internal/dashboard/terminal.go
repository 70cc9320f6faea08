// Package dashboard renders the console state as a terminal view.
// Pure reader: it only consumes the facade, never mutates it.
package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/web3guy0/spydesk/internal/alerts"
	"github.com/web3guy0/spydesk/internal/state"
)

const (
	clearScreen = "\033[2J\033[H"

	reset    = "\033[0m"
	bold     = "\033[1m"
	dim      = "\033[2m"
	fgRed    = "\033[31m"
	fgGreen  = "\033[32m"
	fgYellow = "\033[33m"
	fgCyan   = "\033[36m"
)

const refreshInterval = 1 * time.Second

// Terminal renders the facade on a fixed cadence
type Terminal struct {
	console *state.Console
	out     func(string)
	stopCh  chan struct{}
}

// New creates a terminal dashboard over the given console state
func New(console *state.Console) *Terminal {
	return &Terminal{
		console: console,
		out:     func(s string) { fmt.Print(s) },
		stopCh:  make(chan struct{}),
	}
}

// Start begins the render loop
func (t *Terminal) Start() {
	go func() {
		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()

		for {
			select {
			case <-t.stopCh:
				return
			case <-ticker.C:
				t.out(clearScreen + t.Render())
			}
		}
	}()
}

// Stop halts rendering
func (t *Terminal) Stop() {
	close(t.stopCh)
}

// Render builds the full dashboard frame
func (t *Terminal) Render() string {
	var b strings.Builder

	b.WriteString(t.renderHeader())
	b.WriteString(t.renderAccount())
	b.WriteString(t.renderPosition())
	b.WriteString(t.renderRankings())
	b.WriteString(t.renderAlerts())

	return b.String()
}

func (t *Terminal) renderHeader() string {
	conn := fgRed + "● OFFLINE" + reset
	if t.console.Connected() {
		conn = fgGreen + "● LIVE" + reset
	}

	status := "no data"
	if snap := t.console.Status(); snap.Value != nil {
		s := snap.Value
		if s.Running {
			status = fmt.Sprintf("running (%s)", s.Mode)
		} else {
			status = fmt.Sprintf("stopped (%s)", s.Mode)
		}
	}

	price, at := t.console.LastPrice()
	priceStr := "—"
	if !at.IsZero() {
		priceStr = fmt.Sprintf("$%.2f %s(%s)%s", price, dim, at.Format("15:04:05"), reset)
	}

	return fmt.Sprintf("%sSPYDESK%s  %s  bot: %s  SPY: %s\n\n", bold, reset, conn, status, priceStr)
}

func (t *Terminal) renderAccount() string {
	snap := t.console.Account()
	if snap.Value == nil {
		return ""
	}
	a := snap.Value

	daily := colorPnl(a.DailyPnl)
	total := colorPnl(a.TotalPnl)

	line := fmt.Sprintf("Equity $%.2f  Daily %s  Total %s  WR %.1f%%  DD %.2f%%",
		a.Equity, daily, total, a.WinRate*100, a.DrawdownPct)

	if risk := t.console.Risk(); risk.Value != nil {
		r := risk.Value
		flags := ""
		if r.CooldownActive {
			flags += fgYellow + " COOLDOWN" + reset
		}
		if r.CircuitBreakerActive {
			flags += fgRed + " CIRCUIT-BREAKER" + reset
		}
		line += fmt.Sprintf("  Trades %d/%d%s", r.TradesToday, r.MaxTradesPerDay, flags)
	}

	return line + "\n\n"
}

func (t *Terminal) renderPosition() string {
	snap := t.console.Position()
	if snap.Value == nil || snap.Value.Position == nil {
		return dim + "No open position" + reset + "\n\n"
	}
	p := snap.Value.Position

	return fmt.Sprintf("%s %s x%d @ $%.2f  [%s]  uP&L %s\n\n",
		p.Direction, p.Symbol, p.Quantity, p.EntryPrice, p.Strategy,
		colorPnl(p.UnrealizedPnl))
}

func (t *Terminal) renderRankings() string {
	ranked := t.console.Blended()
	if len(ranked) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(fgCyan + "Leaderboard" + reset)

	if snap := t.console.Leaderboard(); snap.Value != nil {
		if p := snap.Value.Progress; p.Running() {
			b.WriteString(fmt.Sprintf("  %s(backtesting %d/%d: %s)%s",
				fgYellow, p.Completed, p.Total, p.CurrentTest, reset))
		}
		if p := snap.Value.LtProgress; p.Running() {
			b.WriteString(fmt.Sprintf("  %s(LT run %d/%d)%s",
				fgYellow, p.Completed, p.Total, reset))
		}
	}
	b.WriteString("\n")

	for i, r := range ranked {
		if i >= 8 {
			break
		}
		lt := dim + "ST only" + reset
		if r.LT.Valid {
			lt = fmt.Sprintf("LT %.1f", r.LT.Score)
		}
		b.WriteString(fmt.Sprintf("  %2d. %-22s %7.2f  (ST %.1f, %s)\n",
			i+1, r.Strategy, r.Blended, r.ST, lt))
	}
	return b.String() + "\n"
}

func (t *Terminal) renderAlerts() string {
	feed := t.console.Alerts()
	if len(feed) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(fgCyan + "Alerts" + reset + "\n")

	for i, a := range feed {
		if i >= 10 {
			break
		}
		color := fgGreen
		if a.Severity == alerts.SeverityNegative {
			color = fgRed
		}
		pnl := ""
		if a.HasPnl {
			f, _ := a.Pnl.Float64()
			pnl = fmt.Sprintf("  %s", colorPnl(f))
		}
		b.WriteString(fmt.Sprintf("  %s %s%-5s%s %-22s %s%s\n",
			a.Time.Format("15:04:05"), color, a.Action, reset, a.Strategy, a.Display, pnl))
	}
	return b.String()
}

func colorPnl(v float64) string {
	if v < 0 {
		return fmt.Sprintf("%s-$%.2f%s", fgRed, -v, reset)
	}
	return fmt.Sprintf("%s+$%.2f%s", fgGreen, v, reset)
}
