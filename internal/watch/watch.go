// Package watch debounces filesystem change notifications for the map
// and configuration sources and triggers an atlas reload.
package watch

/*
 Copyright 2019 - 2025 Crunchy Data Solutions, Inc.
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at
      http://www.apache.org/licenses/LICENSE-2.0
 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

import (
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// Reloader is the narrow interface watch.Watcher needs from an Atlas; it
// lets this package stay independent of internal/atlas's concrete type.
type Reloader interface {
	Reload() error
}

// Watcher watches one or more directories for changes and calls
// Reloader.Reload after a quiet period, coalescing a burst of individual
// file events (an editor's save-as-temp-then-rename dance, or a `git
// checkout` touching dozens of .map files at once) into a single reload.
type Watcher struct {
	fsw      *fsnotify.Watcher
	reloader Reloader
	debounce time.Duration
	done     chan struct{}
}

// DefaultDebounce is the quiet period observed before a reload fires.
const DefaultDebounce = 300 * time.Millisecond

// New creates a Watcher observing dirs (non-recursively; each directory
// that needs watching, including region subdirectories, must be passed
// explicitly since fsnotify does not watch trees).
func New(reloader Reloader, dirs []string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return &Watcher{
		fsw:      fsw,
		reloader: reloader,
		debounce: DefaultDebounce,
		done:     make(chan struct{}),
	}, nil
}

// Run blocks, debouncing filesystem events into Reload calls, until
// Close is called. It is meant to run in its own goroutine.
func (w *Watcher) Run() {
	var timer *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !interesting(event) {
				continue
			}
			log.WithField("file", event.Name).Debug("watch: change detected, debouncing")
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			if err := w.reloader.Reload(); err != nil {
				log.WithError(err).Warn("watch: triggered reload failed")
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.WithError(err).Warn("watch: fsnotify error")

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// interesting reports whether event is worth debouncing a reload for.
// Pure reads (chmod-only events some editors emit) are ignored.
func interesting(event fsnotify.Event) bool {
	return event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) ||
		event.Has(fsnotify.Rename)
}

// Close stops the watcher and releases its fsnotify handle.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
