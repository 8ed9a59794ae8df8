package monitor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fivemon/internal/models"
	"fivemon/internal/structures"
	"fivemon/internal/testutil"
	"fivemon/internal/tracker"
)

func newTestTracker() *tracker.Tracker {
	conf := &structures.Config{
		Monitor: structures.MonitorConfig{PollInterval: 30 * time.Second},
	}
	return tracker.NewTracker(conf, &testutil.MockLogger{})
}

func trackPlayers(trk *tracker.Tracker, at time.Time, names ...string) {
	snap := &models.Snapshot{Online: true, FetchedAt: at}
	for _, n := range names {
		snap.Roster = append(snap.Roster, models.RosterEntry{Name: n, Ping: 50})
	}
	trk.Reconcile(snap, at)
}

func TestStateFile_SaveCreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "presence.dat")

	trk := newTestTracker()
	trackPlayers(trk, time.Now().UTC(), "Alice")

	sf := NewStateFile(&testutil.MockCompressor{}, trk, &testutil.MockLogger{})

	err := sf.SaveToFile(path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err)

	// Temp file should not exist
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestStateFile_RoundTripRestoresSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presence.dat")
	start := time.Now().UTC().Truncate(time.Second)

	comp, err := NewZstdCompressor()
	require.NoError(t, err)

	trk := newTestTracker()
	trackPlayers(trk, start, "Alice", "Bob")

	sf := NewStateFile(comp, trk, &testutil.MockLogger{})
	require.NoError(t, sf.SaveToFile(path))

	restored := newTestTracker()
	restoredSf := NewStateFile(comp, restored, &testutil.MockLogger{})
	require.NoError(t, restoredSf.LoadFromFile(path))

	assert.Equal(t, 2, restored.Count())
	started, ok := restored.Session("Alice")
	require.True(t, ok)
	assert.Equal(t, start, started.UTC().Truncate(time.Second))
}

func TestStateFile_MissingFileIsCleanStart(t *testing.T) {
	trk := newTestTracker()
	sf := NewStateFile(&testutil.MockCompressor{}, trk, &testutil.MockLogger{})

	err := sf.LoadFromFile(filepath.Join(t.TempDir(), "does-not-exist.dat"))
	assert.NoError(t, err)
	assert.Equal(t, 0, trk.Count())
}

func TestStateFile_CorruptPayloadStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presence.dat")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	trk := newTestTracker()
	logger := &testutil.MockLogger{}
	sf := NewStateFile(&testutil.MockCompressor{}, trk, logger)

	err := sf.LoadFromFile(path)
	assert.NoError(t, err)
	assert.Equal(t, 0, trk.Count())
	assert.Equal(t, 1, logger.CountLevel("warn"))
}

func TestStateFile_CompressorFailurePropagates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presence.dat")

	trk := newTestTracker()
	comp := &testutil.MockCompressor{
		CompressFn: func(_ []byte) ([]byte, error) { return nil, errors.New("boom") },
	}
	sf := NewStateFile(comp, trk, &testutil.MockLogger{})

	err := sf.SaveToFile(path)
	assert.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestZstdCompressor_RoundTrip(t *testing.T) {
	comp, err := NewZstdCompressor()
	require.NoError(t, err)
	defer comp.Close()

	original := []byte(`{"players":{"Alice":{"last_ping":45}}}`)
	compressed, err := comp.Compress(original)
	require.NoError(t, err)

	out, err := comp.Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, original, out)
}
