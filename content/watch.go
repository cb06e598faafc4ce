package content

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watch reloads l whenever a markdown file or the index changes in its
// directory. Bursts of events within debounce trigger a single reload.
// It blocks until ctx is done.
func (l *Library) Watch(ctx context.Context, debounce time.Duration, log zerolog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("content: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(l.dir); err != nil {
		return fmt.Errorf("content: watch %s: %w", l.dir, err)
	}

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Str("dir", l.dir).Msg("content watcher error")

		case <-fire:
			fire = nil
			if err := l.Load(); err != nil {
				log.Error().Err(err).Msg("content reload failed")
				continue
			}
			log.Info().Int("notes", len(l.List())).Msg("content reloaded")
		}
	}
}

func relevant(e fsnotify.Event) bool {
	name := filepath.Base(e.Name)
	if name != IndexFile && filepath.Ext(name) != ".md" {
		return false
	}
	return e.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}
