package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T, routes map[string]string) *Client {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func TestGetStatus(t *testing.T) {
	client := testServer(t, map[string]string{
		"/api/trading/status": `{
			"running": true, "mode": "paper", "current_regime": "trend_up",
			"daily_pnl": 120.5, "daily_trades": 3, "consecutive_losses": 0,
			"cooldown_until": null
		}`,
	})

	status, err := client.GetStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Running)
	assert.Equal(t, "paper", status.Mode)
	assert.Equal(t, "trend_up", status.CurrentRegime)
	assert.Equal(t, 120.5, status.DailyPnl)
	assert.Nil(t, status.CooldownUntil)
}

func TestGetPositionFlat(t *testing.T) {
	client := testServer(t, map[string]string{
		"/api/trading/position": `{"position": null}`,
	})

	resp, err := client.GetPosition(context.Background())
	require.NoError(t, err)
	assert.Nil(t, resp.Position)
}

func TestGetPositionOpen(t *testing.T) {
	client := testServer(t, map[string]string{
		"/api/trading/position": `{"position": {
			"symbol": "SPY", "direction": "LONG", "quantity": 10,
			"entry_price": 452.13, "strategy": "orb", "unrealized_pnl": 38.2,
			"scales_completed": ["first_target"]
		}}`,
	})

	resp, err := client.GetPosition(context.Background())
	require.NoError(t, err)
	require.NotNil(t, resp.Position)
	assert.Equal(t, "SPY", resp.Position.Symbol)
	assert.Equal(t, 10, resp.Position.Quantity)
	assert.Equal(t, []string{"first_target"}, resp.Position.ScalesCompleted)
}

func TestGetTradesTotalDistinctFromPageSize(t *testing.T) {
	client := testServer(t, map[string]string{
		"/api/trading/trades": `{
			"trades": [
				{"id": 41, "symbol": "SPY", "direction": "LONG", "strategy": "orb", "pnl": 12.0, "status": "CLOSED", "is_paper": true},
				{"id": 40, "symbol": "SPY", "direction": "SHORT", "strategy": "vwap_reversion", "pnl": -4.5, "status": "CLOSED", "is_paper": true}
			],
			"total": 187
		}`,
	})

	page, err := client.GetTrades(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, page.Trades, 2)
	assert.Equal(t, 187, page.Total, "total is the full count, not the page length")
}

func TestGetLeaderboardProgressObjects(t *testing.T) {
	client := testServer(t, map[string]string{
		"/api/leaderboard/rankings": `{
			"rankings": [
				{"strategy_name": "orb", "st_composite_score": 61.0,
				 "lt_composite_score": 44.0, "lt_total_trades": 380, "composite_score": 53.35},
				{"strategy_name": "gap_fill", "st_composite_score": 25.0,
				 "lt_composite_score": null, "lt_total_trades": null, "composite_score": 25.0}
			],
			"progress": {"status": "running", "current_test": "orb (5d)", "completed": 12, "total": 48, "errors": 1, "last_run": ""},
			"lt_progress": {"status": "idle", "current_test": "", "completed": 0, "total": 0, "errors": 0, "last_run": "",
			                "start_date": "2010-01-01", "end_date": "2025-12-31"}
		}`,
	})

	lb, err := client.GetLeaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, lb.Rankings, 2)

	require.NotNil(t, lb.Rankings[0].LtCompositeScore)
	assert.Equal(t, 44.0, *lb.Rankings[0].LtCompositeScore)
	assert.Nil(t, lb.Rankings[1].LtCompositeScore)

	assert.True(t, lb.Progress.Running())
	assert.Equal(t, "orb (5d)", lb.Progress.CurrentTest)
	assert.False(t, lb.LtProgress.Running())
	assert.Equal(t, "2010-01-01", lb.LtProgress.StartDate)
}

func TestNon200IsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL)
	_, err := client.GetStatus(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestMalformedBodyIsAnError(t *testing.T) {
	client := testServer(t, map[string]string{
		"/api/account/info": `this is not json`,
	})

	_, err := client.GetAccountInfo(context.Background())
	require.Error(t, err)
}

func TestControlEndpoints(t *testing.T) {
	var gotPaths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		gotPaths = append(gotPaths, r.URL.Path)
		w.Write([]byte(`{"status":"ok"}`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL)
	require.NoError(t, client.StartBot(context.Background()))
	require.NoError(t, client.StopBot(context.Background()))
	require.NoError(t, client.TriggerBacktest(context.Background()))

	assert.Equal(t, []string{
		"/api/trading/start",
		"/api/trading/stop",
		"/api/leaderboard/trigger",
	}, gotPaths)
}

func TestControlEndpointFailureSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"already running"}`, http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL)
	err := client.StartBot(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestSetModeLiveSendsConfirmation(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/trading/mode" {
			gotBody, _ = io.ReadAll(r.Body)
		}
		w.Write([]byte(`{"mode":"live"}`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL)
	require.NoError(t, client.SetMode(context.Background(), "live"))
	assert.Contains(t, string(gotBody), LiveConfirmation)
}
