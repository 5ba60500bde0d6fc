// Package persist implements the workspace persistence contract: a
// TOML snapshot mapping buffer identity to view mode, widths, and
// opaque plugin extras, restorable to reconstruct a split's keyed
// state without re-deriving from source.
package persist

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/dshills/viewpipe/internal/view/state"
)

// View is the persisted shape of one buffer's view state.
type View struct {
	ViewMode     string `toml:"view_mode"`
	ComposeWidth int    `toml:"compose_width,omitempty"`
	MaxWidth     int    `toml:"max_width,omitempty"`
	PluginExtra  string `toml:"plugin_extra,omitempty"`
}

// Snapshot maps buffer identity to persisted view state.
type Snapshot struct {
	Buffers map[string]View `toml:"buffers"`
}

// Capture records every buffer view state of a split into a snapshot.
func Capture(store *state.Store, split state.SplitID) (*Snapshot, error) {
	snap := &Snapshot{Buffers: make(map[string]View)}
	err := store.ForEachState(split, func(buf state.BufferID, bvs *state.BufferViewState) {
		v := View{
			ViewMode:     bvs.Mode.String(),
			ComposeWidth: bvs.ComposeWidth,
			MaxWidth:     bvs.MaxWidth,
		}
		if extra := bvs.PluginExtra(); string(extra) != "{}" {
			v.PluginExtra = string(extra)
		}
		snap.Buffers[string(buf)] = v
	})
	if err != nil {
		return nil, fmt.Errorf("capturing split state: %w", err)
	}
	return snap, nil
}

// Restore installs the snapshot's states into a split.
func Restore(store *state.Store, split state.SplitID, snap *Snapshot) error {
	for buf, v := range snap.Buffers {
		mode := state.ModeSource
		if v.ViewMode == state.ModeCompose.String() {
			mode = state.ModeCompose
		}
		bvs := state.NewBufferViewState(mode)
		bvs.ComposeWidth = v.ComposeWidth
		bvs.MaxWidth = v.MaxWidth
		if v.PluginExtra != "" {
			bvs.SetPluginExtra([]byte(v.PluginExtra))
		}
		if err := store.AdoptState(split, state.BufferID(buf), bvs); err != nil {
			return fmt.Errorf("restoring %s: %w", buf, err)
		}
	}
	return nil
}

// Save writes the snapshot to a TOML file, creating parent
// directories as needed.
func Save(path string, snap *Snapshot) error {
	data, err := toml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating snapshot dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot %s: %w", path, err)
	}
	return nil
}

// Load reads a snapshot from a TOML file. A missing file yields an
// empty snapshot, not an error.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Snapshot{Buffers: make(map[string]View)}, nil
		}
		return nil, fmt.Errorf("reading snapshot %s: %w", path, err)
	}
	var snap Snapshot
	if err := toml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", path, err)
	}
	if snap.Buffers == nil {
		snap.Buffers = make(map[string]View)
	}
	return &snap, nil
}
