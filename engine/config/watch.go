package config

import (
	"errors"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/prism-engine/prism/engine/core"
)

// Watcher re-reads the configuration file whenever it changes on disk and
// fires EVENT_CODE_RENDERER_CONFIG_CHANGED. Listeners decide what to apply;
// the renderer uses it to flip present mode on the next swapchain recreate.
type Watcher struct {
	path     string
	fsnotify *fsnotify.Watcher
	done     chan struct{}
	isClosed bool
}

func NewWatcher(path string) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		path:     path,
		fsnotify: fsWatch,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching. Editors replace files rather than write in place,
// so the parent directory is watched and events filtered by name.
func (w *Watcher) Start() error {
	if w.isClosed {
		return errors.New("config watcher already closed")
	}
	if err := w.fsnotify.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	go w.run()
	return nil
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if _, err := Load(w.path); err != nil {
				core.LogWarn("config change ignored, %s did not parse: %s", w.path, err.Error())
				continue
			}
			ctx := core.EventContext{}
			ctx.Data.C[0] = w.path
			core.EventFire(core.EVENT_CODE_RENDERER_CONFIG_CHANGED, w, ctx)
		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogWarn("config watcher error: %s", err.Error())
		}
	}
}

func (w *Watcher) Close() error {
	if w.isClosed {
		return nil
	}
	w.isClosed = true
	close(w.done)
	return w.fsnotify.Close()
}
