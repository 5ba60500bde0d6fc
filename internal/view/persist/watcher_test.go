package persist

import (
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "views.toml")

	reloaded := make(chan *Snapshot, 1)
	w := NewWatcher(path, func(snap *Snapshot) {
		select {
		case reloaded <- snap:
		default:
		}
	}, WithDebounce(10*time.Millisecond))

	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer w.Stop()

	snap := &Snapshot{Buffers: map[string]View{
		"a.md": {ViewMode: "compose", ComposeWidth: 72},
	}}
	if err := Save(path, snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	select {
	case got := <-reloaded:
		if got.Buffers["a.md"].ComposeWidth != 72 {
			t.Errorf("reloaded snapshot = %+v", got.Buffers["a.md"])
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not reload after write")
	}
}

func TestWatcherStopIdempotent(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "x.toml"), func(*Snapshot) {})
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	w.Stop()
	w.Stop()
}
