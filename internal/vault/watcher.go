package vault

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/vaultmind-ai/vaultmind/internal/event"
	"github.com/vaultmind-ai/vaultmind/internal/logging"
)

// Watcher observes the vault directory and publishes resource.changed
// events so the UI and active-resource tracking stay current.
type Watcher struct {
	vault   *Vault
	bus     *event.Bus
	watcher *fsnotify.Watcher
}

// NewWatcher creates a watcher over the vault root.
func NewWatcher(v *Vault, bus *event.Bus) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(v.Root()); err != nil {
		fsw.Close()
		return nil, err
	}
	return &Watcher{vault: v, bus: bus, watcher: fsw}, nil
}

// Run consumes filesystem events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			rel, err := filepath.Rel(w.vault.Root(), ev.Name)
			if err != nil || w.vault.ignored(rel) {
				continue
			}
			w.bus.Publish(event.Event{
				Type: event.ResourceChanged,
				Data: event.ResourceChangedData{Path: rel, Op: opString(ev.Op)},
			})
			// A removed active resource is no longer a valid dispatch target.
			if ev.Op.Has(fsnotify.Remove) && rel == w.vault.ActivePath() {
				w.vault.SetActive("")
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Warn().Err(err).Msg("vault watcher error")
		}
	}
}

func opString(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return "create"
	case op.Has(fsnotify.Write):
		return "write"
	case op.Has(fsnotify.Remove):
		return "remove"
	case op.Has(fsnotify.Rename):
		return "rename"
	default:
		return strings.ToLower(op.String())
	}
}
