package config

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDelay = 100 * time.Millisecond

// Watcher reloads a settings file whenever it changes on disk.
type Watcher struct {
	w    *fsnotify.Watcher
	done chan struct{}
}

// Watch calls onChange with the freshly loaded settings after path has
// been written, renamed over or created. Bursts of events are collapsed
// into one reload. onChange runs on the watcher goroutine.
func Watch(path string, onChange func(*Config, error)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors often save by renaming a temp file
	// over the original, which drops a watch on the file itself.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}
	w := &Watcher{w: fw, done: make(chan struct{})}

	go func() {
		defer close(w.done)
		debounceTimer := time.NewTimer(reloadDelay)
		debounceTimer.Stop()
		pending := false

		for {
			select {
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				pending = true
				debounceTimer.Reset(reloadDelay)

			case <-debounceTimer.C:
				if !pending {
					continue
				}
				pending = false
				onChange(LoadFile(path))

			case _, ok := <-fw.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return w, nil
}

func (w *Watcher) Close() error {
	err := w.w.Close()
	<-w.done
	return err
}
