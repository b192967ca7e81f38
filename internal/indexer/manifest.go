package indexer

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/oss-omni/omni/internal/model"
	"github.com/oss-omni/omni/internal/ocierr"
)

// ManifestVersion tags the on-disk manifest format. A mismatch between a
// loaded manifest's version and this constant triggers a full rebuild
// instead of an attempt to interpret an incompatible layout.
const ManifestVersion = "omni-manifest-v1"

// Manifest is the durable record of what was last indexed: one fingerprint
// per file, keyed by repo-relative path.
type Manifest struct {
	Version string                          `json:"version"`
	Files   map[string]model.FileFingerprint `json:"files"`
}

// NewManifest creates an empty, current-version manifest.
func NewManifest() *Manifest {
	return &Manifest{Version: ManifestVersion, Files: make(map[string]model.FileFingerprint)}
}

// LoadManifest reads path's manifest.json. A missing file is not an error:
// it's reported via the bool return so callers can fall back to a fresh,
// empty manifest (the first index of a workspace).
func LoadManifest(path string) (*Manifest, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewManifest(), false, nil
		}
		return nil, false, ocierr.IOError(err, "reading manifest %s", path)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, false, ocierr.ParseError(err, "parsing manifest %s", path)
	}
	if m.Files == nil {
		m.Files = make(map[string]model.FileFingerprint)
	}
	return &m, true, nil
}

// Save writes the manifest to path atomically: encode to a sibling temp
// file, then rename over the destination so a crash mid-write never leaves
// a truncated manifest behind.
func (m *Manifest) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return ocierr.WrapInternal(err, "encoding manifest")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ocierr.IOError(err, "creating manifest directory")
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return ocierr.IOError(err, "writing manifest")
	}
	if err := os.Rename(tmp, path); err != nil {
		return ocierr.IOError(err, "renaming manifest into place")
	}
	return nil
}

// Stale reports whether m's version tag doesn't match the version this
// build of omni understands, meaning every file must be reparsed rather
// than incrementally compared.
func (m *Manifest) Stale() bool {
	return m.Version != ManifestVersion
}
