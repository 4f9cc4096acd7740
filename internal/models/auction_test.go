package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newStarted(t *testing.T) *Auction {
	t.Helper()
	a := NewAuction("a1", "streamer", "title", 2)
	require.NoError(t, a.Start())
	return a
}

func TestAuctionStart(t *testing.T) {
	t.Run("from draft", func(t *testing.T) {
		a := NewAuction("a1", "streamer", "title", 2)
		require.NoError(t, a.Start())
		require.Equal(t, StatusActive, a.Status)
		require.NotNil(t, a.StartedAt)
		require.NotNil(t, a.RemainingSeconds)
		require.Equal(t, 120, *a.RemainingSeconds)
	})

	t.Run("from pending", func(t *testing.T) {
		a := NewAuction("a1", "streamer", "title", 1)
		a.Status = StatusPending
		require.NoError(t, a.Start())
		require.Equal(t, StatusActive, a.Status)
	})

	t.Run("illegal states leave auction unchanged", func(t *testing.T) {
		for _, status := range []AuctionStatus{StatusActive, StatusPaused, StatusCompleted, StatusStopped} {
			a := NewAuction("a1", "streamer", "title", 1)
			a.Status = status
			err := a.Start()
			var transition *InvalidTransitionError
			require.ErrorAs(t, err, &transition)
			require.Equal(t, status, transition.Current)
			require.Equal(t, status, a.Status)
			require.Nil(t, a.StartedAt)
		}
	})
}

func TestAuctionPauseResume(t *testing.T) {
	a := newStarted(t)

	require.NoError(t, a.Pause())
	require.Equal(t, StatusPaused, a.Status)

	// pausing twice is illegal
	require.Error(t, a.Pause())

	require.NoError(t, a.Resume())
	require.Equal(t, StatusActive, a.Status)

	// resume only from paused
	require.Error(t, a.Resume())
}

func TestAuctionStop(t *testing.T) {
	t.Run("from active", func(t *testing.T) {
		a := newStarted(t)
		require.NoError(t, a.Stop())
		require.Equal(t, StatusStopped, a.Status)
		require.NotNil(t, a.EndedAt)
		require.Nil(t, a.RemainingSeconds)
	})

	t.Run("from paused", func(t *testing.T) {
		a := newStarted(t)
		require.NoError(t, a.Pause())
		require.NoError(t, a.Stop())
		require.Equal(t, StatusStopped, a.Status)
	})

	t.Run("terminal states reject stop", func(t *testing.T) {
		a := newStarted(t)
		require.NoError(t, a.Stop())
		require.Error(t, a.Stop())
	})

	t.Run("draft rejects stop", func(t *testing.T) {
		a := NewAuction("a1", "s", "t", 1)
		require.Error(t, a.Stop())
	})
}

func TestAuctionAdjustTime(t *testing.T) {
	t.Run("tick decrements", func(t *testing.T) {
		a := newStarted(t)
		require.NoError(t, a.AdjustTime(-1))
		require.Equal(t, 119, *a.RemainingSeconds)
		require.Equal(t, StatusActive, a.Status)
	})

	t.Run("never goes below zero", func(t *testing.T) {
		a := newStarted(t)
		require.NoError(t, a.AdjustTime(-1000000))
		require.Equal(t, 0, *a.RemainingSeconds)
	})

	t.Run("reaching zero while active completes", func(t *testing.T) {
		a := newStarted(t)
		require.NoError(t, a.AdjustTime(-119))
		require.Equal(t, 1, *a.RemainingSeconds)
		require.NoError(t, a.AdjustTime(-1))
		require.Equal(t, StatusCompleted, a.Status)
		require.Equal(t, 0, *a.RemainingSeconds)
		require.NotNil(t, a.EndedAt)
	})

	t.Run("reaching zero while paused does not complete", func(t *testing.T) {
		a := newStarted(t)
		require.NoError(t, a.Pause())
		require.NoError(t, a.AdjustTime(-500))
		require.Equal(t, StatusPaused, a.Status)
		require.Equal(t, 0, *a.RemainingSeconds)
		require.Nil(t, a.EndedAt)
	})

	t.Run("adding time", func(t *testing.T) {
		a := newStarted(t)
		require.NoError(t, a.AdjustTime(60))
		require.Equal(t, 180, *a.RemainingSeconds)
	})

	t.Run("rejected before start and after end", func(t *testing.T) {
		draft := NewAuction("a1", "s", "t", 1)
		require.Error(t, draft.AdjustTime(-1))

		done := newStarted(t)
		require.NoError(t, done.Stop())
		require.Error(t, done.AdjustTime(-1))
	})
}

func TestAuctionRemainingSecondsInvariant(t *testing.T) {
	// remaining seconds defined iff active/paused, or pinned to 0 once completed
	a := NewAuction("a1", "s", "t", 1)
	require.Nil(t, a.RemainingSeconds)

	require.NoError(t, a.Start())
	require.NotNil(t, a.RemainingSeconds)

	require.NoError(t, a.Pause())
	require.NotNil(t, a.RemainingSeconds)

	require.NoError(t, a.Resume())
	require.NoError(t, a.AdjustTime(-60))
	require.Equal(t, StatusCompleted, a.Status)
	require.Equal(t, 0, *a.RemainingSeconds)
}

func TestAuctionUpdate(t *testing.T) {
	title := "new title"
	streamer := "other"
	minutes := 10

	t.Run("draft accepts edits", func(t *testing.T) {
		a := NewAuction("a1", "s", "t", 1)
		require.NoError(t, a.Update(&title, &streamer, &minutes))
		require.Equal(t, "new title", a.Title)
		require.Equal(t, "other", a.Streamer)
		require.Equal(t, 10, a.TimerMinutes)
	})

	t.Run("nil fields untouched", func(t *testing.T) {
		a := NewAuction("a1", "s", "t", 1)
		require.NoError(t, a.Update(&title, nil, nil))
		require.Equal(t, "s", a.Streamer)
		require.Equal(t, 1, a.TimerMinutes)
	})

	t.Run("rejected once started", func(t *testing.T) {
		a := newStarted(t)
		err := a.Update(&title, nil, nil)
		var transition *InvalidTransitionError
		require.ErrorAs(t, err, &transition)
		require.Equal(t, StatusActive, transition.Current)
	})
}

func TestAuctionEndedAtSetOnce(t *testing.T) {
	a := newStarted(t)
	require.NoError(t, a.AdjustTime(-120))
	require.Equal(t, StatusCompleted, a.Status)
	ended := *a.EndedAt

	// any further command fails and endedAt stays put
	require.Error(t, a.Stop())
	require.Error(t, a.AdjustTime(10))
	require.Equal(t, ended, *a.EndedAt)
}

func TestAuctionClone(t *testing.T) {
	a := newStarted(t)
	c := a.Clone()

	*c.RemainingSeconds = 5
	require.Equal(t, 120, *a.RemainingSeconds)

	c.Status = StatusStopped
	require.Equal(t, StatusActive, a.Status)
}
