// Package bot forwards console alerts to Telegram, answers read-only
// commands from the facade, and exposes the bot controls (start, stop,
// mode switch, backtest trigger) to the configured chat. Entirely
// optional; the sync layer runs identically without it.
package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/web3guy0/spydesk/internal/alerts"
	"github.com/web3guy0/spydesk/internal/api"
	"github.com/web3guy0/spydesk/internal/journal"
	"github.com/web3guy0/spydesk/internal/state"
)

const controlTimeout = 10 * time.Second

// Bot handles Telegram interactions for the console
type Bot struct {
	api     *tgbotapi.BotAPI
	chatID  int64
	console *state.Console
	jrnl    *journal.Journal
	client  *api.Client
	stopCh  chan struct{}
}

// New creates the Telegram bot
func New(token string, chatID int64, console *state.Console, jrnl *journal.Journal, client *api.Client) (*Bot, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	log.Info().Str("username", botAPI.Self.UserName).Msg("🤖 Telegram bot connected")

	return &Bot{
		api:     botAPI,
		chatID:  chatID,
		console: console,
		jrnl:    jrnl,
		client:  client,
		stopCh:  make(chan struct{}),
	}, nil
}

// Start begins listening for commands
func (b *Bot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-b.stopCh:
				return
			case update := <-updates:
				if update.Message == nil || !update.Message.IsCommand() {
					continue
				}
				b.handleCommand(update.Message)
			}
		}
	}()
}

// Stop shuts the bot down
func (b *Bot) Stop() {
	close(b.stopCh)
	b.api.StopReceivingUpdates()
}

// SendAlert forwards one ingested alert to the configured chat
func (b *Bot) SendAlert(a alerts.Alert) {
	if b.chatID == 0 {
		return
	}

	emoji := "🟢"
	if a.Severity == alerts.SeverityNegative {
		emoji = "🔴"
	}

	var resultText string
	if a.HasPnl {
		pnl, _ := a.Pnl.Float64()
		if pnl >= 0 {
			resultText = fmt.Sprintf("✅ +$%.2f", pnl)
		} else {
			resultText = fmt.Sprintf("❌ -$%.2f", -pnl)
		}
	} else {
		resultText = "⏳ Open"
	}

	text := fmt.Sprintf(`%s *%s %s*

%s
*Result:* %s
_%s_`,
		emoji,
		a.Action,
		escapeMarkdown(a.Strategy),
		escapeMarkdown(a.Display),
		resultText,
		a.Time.Format("15:04:05"),
	)

	if err := b.sendMarkdown(text); err != nil {
		log.Warn().Err(err).Msg("Failed to send Telegram alert")
	}
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "status":
		b.replyStatus(msg.Chat.ID)
	case "pnl":
		b.replyPnl(msg.Chat.ID)
	case "rankings":
		b.replyRankings(msg.Chat.ID)
	case "history":
		b.replyHistory(msg.Chat.ID)
	case "startbot":
		if !b.authorized(msg.Chat.ID) {
			return
		}
		b.control(msg.Chat.ID, "▶️ Bot started", b.client.StartBot)
	case "stopbot":
		if !b.authorized(msg.Chat.ID) {
			return
		}
		b.control(msg.Chat.ID, "⏹ Bot stopped", b.client.StopBot)
	case "trigger":
		if !b.authorized(msg.Chat.ID) {
			return
		}
		b.control(msg.Chat.ID, "🔄 Backtest run triggered", b.client.TriggerBacktest)
	case "mode":
		if !b.authorized(msg.Chat.ID) {
			return
		}
		mode := strings.TrimSpace(msg.CommandArguments())
		if mode != "paper" && mode != "live" {
			b.reply(msg.Chat.ID, "Usage: /mode paper|live")
			return
		}
		b.control(msg.Chat.ID, fmt.Sprintf("Mode set to %s", mode), func(ctx context.Context) error {
			return b.client.SetMode(ctx, mode)
		})
	}
}

// authorized restricts control commands to the configured chat
func (b *Bot) authorized(chatID int64) bool {
	return b.chatID != 0 && chatID == b.chatID
}

// control runs one backend control call and reports the outcome to the chat
func (b *Bot) control(chatID int64, ok string, op func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), controlTimeout)
	defer cancel()

	if err := op(ctx); err != nil {
		log.Warn().Err(err).Msg("Control command failed")
		b.reply(chatID, fmt.Sprintf("⚠️ %v", err))
		return
	}
	b.reply(chatID, ok)
}

func (b *Bot) replyHistory(chatID int64) {
	records, err := b.jrnl.RecentAlerts(10)
	if err != nil || len(records) == 0 {
		b.reply(chatID, "No journaled alerts yet")
		return
	}

	text := "📜 Recent alerts:\n"
	for _, r := range records {
		line := fmt.Sprintf("%s %s", r.Action, r.Strategy)
		if r.HasPnl {
			pnl, _ := r.Pnl.Float64()
			line += fmt.Sprintf(" ($%.2f)", pnl)
		}
		text += line + "\n"
	}
	b.reply(chatID, text)
}

func (b *Bot) replyStatus(chatID int64) {
	snap := b.console.Status()

	connected := "🔴 offline"
	if b.console.Connected() {
		connected = "🟢 live"
	}

	if snap.Value == nil {
		b.reply(chatID, fmt.Sprintf("Channel: %s\nBot status: no data yet", connected))
		return
	}

	s := snap.Value
	running := "stopped"
	if s.Running {
		running = "running"
	}
	b.reply(chatID, fmt.Sprintf(
		"Channel: %s\nBot: %s (%s)\nRegime: %s\nDaily P&L: $%.2f\nTrades today: %d",
		connected, running, s.Mode, s.CurrentRegime, s.DailyPnl, s.DailyTrades,
	))
}

func (b *Bot) replyPnl(chatID int64) {
	snap := b.console.Account()
	if snap.Value == nil {
		b.reply(chatID, "No account data yet")
		return
	}

	a := snap.Value
	b.reply(chatID, fmt.Sprintf(
		"Equity: $%.2f\nDaily P&L: $%.2f\nTotal P&L: $%.2f\nWin rate: %.1f%%\nDrawdown: %.2f%%",
		a.Equity, a.DailyPnl, a.TotalPnl, a.WinRate*100, a.DrawdownPct,
	))
}

func (b *Bot) replyRankings(chatID int64) {
	ranked := b.console.Blended()
	if len(ranked) == 0 {
		b.reply(chatID, "No rankings yet")
		return
	}

	text := "🏆 Strategy leaderboard:\n"
	for i, r := range ranked {
		if i >= 10 {
			break
		}
		text += fmt.Sprintf("%d. %s — %.2f\n", i+1, r.Strategy, r.Blended)
	}
	b.reply(chatID, text)
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Warn().Err(err).Msg("Failed to send Telegram reply")
	}
}

func (b *Bot) sendMarkdown(text string) error {
	msg := tgbotapi.NewMessage(b.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := b.api.Send(msg)
	return err
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
