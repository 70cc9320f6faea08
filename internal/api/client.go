// Package api is the typed client for the SPY DayTrader backend REST API.
// Every method does one request/response cycle; callers own retry policy
// (the poll loops retry on their own cadence).
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// LiveConfirmation must be sent verbatim when switching the bot to live mode
const LiveConfirmation = "I understand the risks of live trading"

// Client talks to the backend REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an API client for the given base URL (no trailing slash)
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// GetStatus fetches bot run state
func (c *Client) GetStatus(ctx context.Context) (BotStatus, error) {
	var out BotStatus
	err := c.getJSON(ctx, "/api/trading/status", &out)
	return out, err
}

// GetPosition fetches the open position ("position": null while flat)
func (c *Client) GetPosition(ctx context.Context) (PositionResponse, error) {
	var out PositionResponse
	err := c.getJSON(ctx, "/api/trading/position", &out)
	return out, err
}

// GetAccountInfo fetches equity and P&L figures
func (c *Client) GetAccountInfo(ctx context.Context) (AccountInfo, error) {
	var out AccountInfo
	err := c.getJSON(ctx, "/api/account/info", &out)
	return out, err
}

// GetRiskMetrics fetches the risk gauge values
func (c *Client) GetRiskMetrics(ctx context.Context) (RiskMetrics, error) {
	var out RiskMetrics
	err := c.getJSON(ctx, "/api/account/risk", &out)
	return out, err
}

// GetTrades fetches recent closed trades plus the total count
func (c *Client) GetTrades(ctx context.Context, limit int) (TradesPage, error) {
	var out TradesPage
	err := c.getJSON(ctx, fmt.Sprintf("/api/trading/trades?limit=%d", limit), &out)
	return out, err
}

// GetLeaderboard fetches strategy rankings and both backtest progress objects
func (c *Client) GetLeaderboard(ctx context.Context) (Leaderboard, error) {
	var out Leaderboard
	err := c.getJSON(ctx, "/api/leaderboard/rankings", &out)
	return out, err
}

// GetStrategies fetches the strategy configuration list
func (c *Client) GetStrategies(ctx context.Context) ([]StrategyConfig, error) {
	var out []StrategyConfig
	err := c.getJSON(ctx, "/api/settings/strategies", &out)
	return out, err
}

// GetTradingSettings fetches the risk/sizing settings object
func (c *Client) GetTradingSettings(ctx context.Context) (TradingSettings, error) {
	var out TradingSettings
	err := c.getJSON(ctx, "/api/settings/trading", &out)
	return out, err
}

// GetLivePerformance fetches real-time per-strategy trade stats
func (c *Client) GetLivePerformance(ctx context.Context) ([]LivePerformance, error) {
	var out []LivePerformance
	err := c.getJSON(ctx, "/api/leaderboard/live-performance", &out)
	return out, err
}

// StartBot asks the backend to start the trading engine
func (c *Client) StartBot(ctx context.Context) error {
	return c.postJSON(ctx, "/api/trading/start", nil, nil)
}

// StopBot asks the backend to stop the trading engine
func (c *Client) StopBot(ctx context.Context) error {
	return c.postJSON(ctx, "/api/trading/stop", nil, nil)
}

// SetMode switches between paper and live trading.
// Switching to live sends the required confirmation sentence.
func (c *Client) SetMode(ctx context.Context, mode string) error {
	body := map[string]string{"mode": mode}
	if mode == "live" {
		body["confirmation"] = LiveConfirmation
	}
	return c.postJSON(ctx, "/api/trading/mode", body, nil)
}

// TriggerBacktest manually kicks off a short-term backtest run
func (c *Client) TriggerBacktest(ctx context.Context) error {
	return c.postJSON(ctx, "/api/leaderboard/trigger", nil, nil)
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: decode: %w", path, err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("POST %s: status %d: %s", path, resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("POST %s: decode: %w", path, err)
		}
	}
	return nil
}
