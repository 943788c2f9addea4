package hub

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairline/fairline/internal/ranking"
)

func testClient(sports []string) *Client {
	return NewClient(nil, nil, sports)
}

func update(sport string) Update {
	return Update{
		SportKey: sport,
		Deltas:   []ranking.Delta{{Key: "r1", Direction: "up"}},
		SentAt:   time.Now().UTC(),
	}
}

func TestClientSportFilter(t *testing.T) {
	all := testClient(nil)
	assert.True(t, all.wantsSport("basketball_nba"), "no filter means all sports")

	nba := testClient([]string{"basketball_nba"})
	assert.True(t, nba.wantsSport("basketball_nba"))
	assert.False(t, nba.wantsSport("baseball_mlb"))

	// A subscribe frame replaces the filter; an empty one clears it.
	nba.setSports([]string{"baseball_mlb"})
	assert.False(t, nba.wantsSport("basketball_nba"))
	assert.True(t, nba.wantsSport("baseball_mlb"))

	nba.setSports(nil)
	assert.True(t, nba.wantsSport("basketball_nba"))
}

func TestHubRegisterBroadcastUnregister(t *testing.T) {
	h := New(zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	c := testClient([]string{"basketball_nba"})
	h.Register(c)

	require.Eventually(t, func() bool { return h.ClientCount() == 1 },
		time.Second, 5*time.Millisecond)

	h.Broadcast(update("basketball_nba"))
	select {
	case got := <-c.send:
		assert.Equal(t, "basketball_nba", got.SportKey)
	case <-time.After(time.Second):
		t.Fatal("update not delivered")
	}

	// Updates for other sports never reach a filtered client.
	h.Broadcast(update("baseball_mlb"))
	h.Broadcast(update("basketball_nba"))
	got := <-c.send
	assert.Equal(t, "basketball_nba", got.SportKey)

	h.Unregister(c)
	require.Eventually(t, func() bool { return h.ClientCount() == 0 },
		time.Second, 5*time.Millisecond)

	_, open := <-c.send
	assert.False(t, open, "hub closes the send channel on unregister")
}

func TestHubDisconnectsSlowClient(t *testing.T) {
	h := New(zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	c := testClient(nil)
	h.Register(c)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 },
		time.Second, 5*time.Millisecond)

	// Nobody drains c.send; once the buffer fills the hub must drop the
	// client instead of blocking the broadcast loop.
	for i := 0; i < sendBufferSize+8; i++ {
		h.Broadcast(update("basketball_nba"))
	}

	require.Eventually(t, func() bool { return h.ClientCount() == 0 },
		2*time.Second, 10*time.Millisecond)
}

func TestBroadcastSkipsEmptyDeltas(t *testing.T) {
	h := New(zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	c := testClient(nil)
	h.Register(c)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 },
		time.Second, 5*time.Millisecond)

	h.Broadcast(Update{SportKey: "basketball_nba"})
	h.Broadcast(update("basketball_nba"))

	got := <-c.send
	assert.NotEmpty(t, got.Deltas, "empty delta sets are never delivered")
}
