package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web3guy0/spydesk/internal/api"
	"github.com/web3guy0/spydesk/internal/poll"
	"github.com/web3guy0/spydesk/internal/rank"
)

func TestConnectedFlag(t *testing.T) {
	c := NewConsole()
	assert.False(t, c.Connected())

	c.SetConnected(true)
	assert.True(t, c.Connected())

	c.SetConnected(false)
	assert.False(t, c.Connected())
}

func TestSnapshotRoundTrip(t *testing.T) {
	c := NewConsole()

	status := api.BotStatus{Running: true, Mode: "paper"}
	c.SetStatus(poll.Snapshot[api.BotStatus]{Value: &status, FetchedAt: time.Now()})

	snap := c.Status()
	require.NotNil(t, snap.Value)
	assert.True(t, snap.Value.Running)
	assert.Equal(t, "paper", snap.Value.Mode)
}

func TestBlendedReturnsCopy(t *testing.T) {
	c := NewConsole()
	c.SetBlended([]rank.Ranked{{Strategy: "orb", Blended: 61.0}})

	got := c.Blended()
	require.Len(t, got, 1)

	// Mutating the returned slice must not leak into shared state
	got[0].Strategy = "mutated"
	assert.Equal(t, "orb", c.Blended()[0].Strategy)
}

func TestLastPrice(t *testing.T) {
	c := NewConsole()

	_, at := c.LastPrice()
	assert.True(t, at.IsZero())

	now := time.Now()
	c.SetLastPrice(451.27, now)

	price, at := c.LastPrice()
	assert.Equal(t, 451.27, price)
	assert.Equal(t, now, at)
}
