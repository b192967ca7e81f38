package indexer

import (
	"bufio"
	"encoding/gob"
	"os"

	"github.com/oss-omni/omni/internal/model"
	"github.com/oss-omni/omni/internal/ocierr"
)

// FileRecord is the parsed content of a single file, cached across process
// restarts so an unchanged file never needs reparsing even after the
// process exits and restarts — only the manifest fingerprint comparison
// decides whether a file needs work; FileRecord is what gets replayed into
// the store when it doesn't.
type FileRecord struct {
	Symbols []model.SymbolDef
	Calls   []model.CallEdge
	Imports []model.ImportInfo
}

// StateSnapshot is the gob-encoded contents of state.bin.
type StateSnapshot struct {
	Version string
	Records map[string]FileRecord
}

// SaveState gob-encodes snap to path via the write-temp-then-rename idiom
// used across omni's persisted caches.
func SaveState(path string, snap *StateSnapshot) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return ocierr.IOError(err, "creating state snapshot")
	}
	w := bufio.NewWriter(f)
	if err := gob.NewEncoder(w).Encode(snap); err != nil {
		f.Close()
		os.Remove(tmp)
		return ocierr.IOError(err, "encoding state snapshot")
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return ocierr.IOError(err, "flushing state snapshot")
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return ocierr.IOError(err, "closing state snapshot")
	}
	return os.Rename(tmp, path)
}

// LoadState reads path's gob-encoded snapshot. A missing file yields an
// empty snapshot and ok=false rather than an error.
func LoadState(path string) (*StateSnapshot, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &StateSnapshot{Version: ManifestVersion, Records: map[string]FileRecord{}}, false, nil
		}
		return nil, false, ocierr.IOError(err, "opening state snapshot")
	}
	defer f.Close()

	var snap StateSnapshot
	if err := gob.NewDecoder(bufio.NewReader(f)).Decode(&snap); err != nil {
		return nil, false, ocierr.IOError(err, "decoding state snapshot")
	}
	if snap.Records == nil {
		snap.Records = map[string]FileRecord{}
	}
	return &snap, true, nil
}
