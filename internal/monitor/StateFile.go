package monitor

import (
	"os"

	json "github.com/goccy/go-json"

	"fivemon/internal/models"
	"fivemon/internal/monitor/interfaces"
	"fivemon/internal/providers"
	"fivemon/internal/tracker"
)

// StateFile persists tracked presence across restarts so running sessions
// survive a daemon bounce. Writes go through a tmp file and an atomic rename.
type StateFile struct {
	tracker    *tracker.Tracker
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewStateFile(compressor interfaces.CompressorInterface, trk *tracker.Tracker, logger providers.Logger) *StateFile {
	return &StateFile{
		compressor: compressor,
		tracker:    trk,
		logger:     logger,
	}
}

func (f *StateFile) SaveToFile(fileName string) error {
	state := f.tracker.State()

	jsonData, err := json.Marshal(state)
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

// LoadFromFile restores saved presence. A missing file is a clean first run.
// Sessions that went stale while the daemon was down are left for the reaper
// to close with their original start times intact.
func (f *StateFile) LoadFromFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressedData, err := f.compressor.Decompress(data)
	if err != nil {
		return err
	}

	var state models.PresenceState
	if err := json.Unmarshal(decompressedData, &state); err != nil {
		f.logger.Warnf(providers.TypeApp, "Presence state file is unreadable, starting empty: %s", err)
		return nil
	}
	if state.Players == nil {
		state.Players = make(map[string]models.TrackedPresence)
	}

	f.tracker.Restore(state)
	f.logger.Infof(providers.TypeApp, "Restored %d tracked sessions saved at %s",
		len(state.Players), state.SavedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func (f *StateFile) Close() {
	f.compressor.Close()
}
