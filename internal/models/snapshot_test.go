package models

import (
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_RosterNames(t *testing.T) {
	snap := &Snapshot{
		Roster: []RosterEntry{{Name: "Alice"}, {Name: "Bob"}},
	}

	names := snap.RosterNames()
	assert.Len(t, names, 2)
	_, ok := names["Alice"]
	assert.True(t, ok)
}

func TestPresenceState_JSONRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	state := PresenceState{
		SavedAt: now,
		Players: map[string]TrackedPresence{
			"Alice": {
				LastSeenAt:       now,
				LastPing:         45,
				Identifiers:      map[string]string{"license": "abc"},
				Job:              DefaultJob,
				Role:             DefaultRole,
				SessionStartedAt: now.Add(-time.Hour),
			},
		},
	}

	data, err := json.Marshal(state)
	require.NoError(t, err)

	var out PresenceState
	require.NoError(t, json.Unmarshal(data, &out))

	assert.Equal(t, state.SavedAt, out.SavedAt)
	require.Contains(t, out.Players, "Alice")
	assert.Equal(t, 45, out.Players["Alice"].LastPing)
	assert.Equal(t, now.Add(-time.Hour), out.Players["Alice"].SessionStartedAt)
}

func TestEventDetails_OmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(EventDetails{Ping: 45})
	require.NoError(t, err)
	assert.Equal(t, `{"ping":45}`, string(data))

	data, err = json.Marshal(EventDetails{SessionDuration: 120, Reason: ReasonDeparted})
	require.NoError(t, err)
	assert.JSONEq(t, `{"session_duration":120,"reason":"departed"}`, string(data))
}
