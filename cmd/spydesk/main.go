// Spydesk - Live operating console for the SPY DayTrader bot
//
// Connects to the backend's websocket for pushed events (prices, trades,
// status changes) and polls its REST API on independent cadences for status,
// position, account, risk, trade history and strategy rankings. Everything
// lands in one shared read model that the terminal dashboard and the
// optional Telegram bot consume.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/web3guy0/spydesk/internal/alerts"
	"github.com/web3guy0/spydesk/internal/api"
	"github.com/web3guy0/spydesk/internal/bot"
	"github.com/web3guy0/spydesk/internal/channel"
	"github.com/web3guy0/spydesk/internal/config"
	"github.com/web3guy0/spydesk/internal/dashboard"
	"github.com/web3guy0/spydesk/internal/journal"
	"github.com/web3guy0/spydesk/internal/poll"
	"github.com/web3guy0/spydesk/internal/rank"
	"github.com/web3guy0/spydesk/internal/state"
)

const version = "1.0.0"

func main() {
	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	// Load environment
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	log.Info().
		Str("version", version).
		Str("api", cfg.APIBaseURL).
		Str("ws", cfg.WSURL).
		Msg("⚡ Spydesk starting...")

	// Journal database
	dsn := cfg.DatabaseURL
	if dsn == "" {
		dsn = cfg.DatabasePath
	}
	jrnl, err := journal.New(dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize journal")
	}

	// Shared read model
	console := state.NewConsole()

	// REST client
	client := api.NewClient(cfg.APIBaseURL)

	// Telegram bot (optional)
	var tg *bot.Bot
	if cfg.TelegramToken != "" {
		tg, err = bot.New(cfg.TelegramToken, cfg.TelegramChatID, console, jrnl, client)
		if err != nil {
			log.Warn().Err(err).Msg("⚠️ Telegram disabled")
			tg = nil
		} else {
			tg.Start()
		}
	}

	// Alert ingestor: journal and forward every newly retained alert
	ingestor := alerts.NewIngestor()
	ingestor.OnAlert(func(a alerts.Alert) {
		console.SetAlerts(ingestor.Alerts())

		if err := jrnl.SaveAlert(&journal.AlertRecord{
			ID:       a.ID,
			Action:   a.Action,
			Strategy: a.Strategy,
			Display:  a.Display,
			Pnl:      a.Pnl,
			HasPnl:   a.HasPnl,
			Severity: string(a.Severity),
		}); err != nil {
			log.Warn().Err(err).Msg("Failed to journal alert")
		}

		if tg != nil {
			tg.SendAlert(a)
		}
	})

	// Push channel
	ch := channel.NewClient(cfg.WSURL)
	ch.OnConnected(console.SetConnected)
	ch.Subscribe("trade_update", ingestor.Ingest)
	ch.Subscribe("price_update", func(msg channel.Message) {
		if price, ok := msg.Data["price"].(float64); ok {
			console.SetLastPrice(price, time.Now())
		}
	})
	ch.Subscribe("status_update", func(msg channel.Message) {
		running, _ := msg.Data["running"].(bool)
		mode, _ := msg.Data["mode"].(string)
		log.Info().Bool("running", running).Str("mode", mode).Msg("Bot status changed")
	})
	ch.Subscribe("error", func(msg channel.Message) {
		errMsg, _ := msg.Data["message"].(string)
		log.Warn().Str("message", errMsg).Msg("⚠️ Backend error event")
	})
	ch.Start()

	// One-shot configuration probe; these change rarely and have no loop
	probeCtx, probeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if strategies, err := client.GetStrategies(probeCtx); err == nil {
		enabled := 0
		for _, s := range strategies {
			if s.Enabled {
				enabled++
			}
		}
		log.Info().Int("total", len(strategies)).Int("enabled", enabled).Msg("📋 Strategy configs loaded")
	} else {
		log.Warn().Err(err).Msg("Could not load strategy configs")
	}
	if settings, err := client.GetTradingSettings(probeCtx); err == nil {
		log.Info().
			Float64("capital", settings.InitialCapital).
			Float64("daily_loss_limit", settings.DailyLossLimit).
			Int("max_trades_per_day", settings.MaxTradesPerDay).
			Msg("⚙️ Trading settings loaded")
	}
	if live, err := client.GetLivePerformance(probeCtx); err == nil {
		log.Info().Int("strategies", len(live)).Msg("📊 Live performance baseline loaded")
	}
	probeCancel()

	// Poll loops - one per resource, independent cadences
	statusLoop := poll.NewLoop("status", cfg.StatusInterval, client.GetStatus, console.SetStatus)
	positionLoop := poll.NewLoop("position", cfg.PositionInterval, client.GetPosition, console.SetPosition)
	accountLoop := poll.NewLoop("account", cfg.AccountInterval, client.GetAccountInfo, console.SetAccount)
	riskLoop := poll.NewLoop("risk", cfg.RiskInterval, client.GetRiskMetrics, console.SetRisk)

	tradesLoop := poll.NewLoop("trades", cfg.TradesInterval,
		func(ctx context.Context) (api.TradesPage, error) { return client.GetTrades(ctx, cfg.TradesLimit) },
		func(snap poll.Snapshot[api.TradesPage]) {
			console.SetTrades(snap)
			if snap.Value == nil {
				return
			}
			for _, t := range snap.Value.Trades {
				if err := jrnl.SaveTrade(tradeRecord(t)); err != nil {
					log.Warn().Err(err).Int("trade", t.ID).Msg("Failed to journal trade")
					break
				}
			}
		})

	// Rankings loop speeds up to the busy cadence while a backtest runs
	var rankingsLoop *poll.Loop[api.Leaderboard]
	rankingsLoop = poll.NewLoop("rankings", cfg.RankingsInterval, client.GetLeaderboard,
		func(snap poll.Snapshot[api.Leaderboard]) {
			console.SetLeaderboard(snap)
			if snap.Value == nil {
				return
			}

			console.SetBlended(rank.Rank(rank.FromLeaderboard(snap.Value.Rankings)))

			if snap.Value.Progress.Running() || snap.Value.LtProgress.Running() {
				rankingsLoop.SetInterval(cfg.RankingsBusyInterval)
			} else {
				rankingsLoop.SetInterval(cfg.RankingsInterval)
			}
		})

	loops := []interface{ Start() }{statusLoop, positionLoop, accountLoop, riskLoop, tradesLoop, rankingsLoop}
	for _, l := range loops {
		l.Start()
	}

	// Terminal dashboard
	dash := dashboard.New(console)
	dash.Start()

	log.Info().Msg("✅ Console running - Ctrl+C to exit")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("Shutting down...")

	dash.Stop()
	ch.Close()
	statusLoop.Stop()
	positionLoop.Stop()
	accountLoop.Stop()
	riskLoop.Stop()
	tradesLoop.Stop()
	rankingsLoop.Stop()
	if tg != nil {
		tg.Stop()
	}

	log.Info().Msg("Goodbye 👋")
}

// tradeRecord maps an API trade onto its journal row
func tradeRecord(t api.Trade) *journal.TradeRecord {
	return &journal.TradeRecord{
		ID:         t.ID,
		Symbol:     t.Symbol,
		Direction:  t.Direction,
		Strategy:   t.Strategy,
		Regime:     t.Regime,
		Quantity:   t.Quantity,
		EntryPrice: decimalFrom(t.EntryPrice),
		EntryTime:  t.EntryTime,
		ExitPrice:  decimalFrom(t.ExitPrice),
		ExitTime:   t.ExitTime,
		Pnl:        decimalFrom(t.Pnl),
		PnlPct:     decimalFrom(t.PnlPct),
		ExitReason: t.ExitReason,
		IsPaper:    t.IsPaper,
	}
}

func decimalFrom(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}
