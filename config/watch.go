package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Aashish23092/receipt-capture/logger"
)

const reloadDebounce = 250 * time.Millisecond

// WatchParserConfig reloads the parser config at path whenever it changes and
// hands every valid result to onChange. Invalid edits are logged and skipped
// so the running parser stays in place. It returns once the watch is set up;
// the watch stops when ctx is cancelled.
func WatchParserConfig(ctx context.Context, path string, onChange func(ParserConfig)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve parser config path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Editors replace files by rename, so watch the directory, not the file.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	reload := func() {
		cfg, err := LoadParserConfig(abs)
		if err != nil {
			logger.Log.Error().Err(err).Str("path", abs).Msg("Parser config reload rejected")
			return
		}
		logger.Log.Info().Str("path", abs).Msg("Parser config reloaded")
		onChange(cfg)
	}

	go func() {
		defer w.Close()

		var timer *time.Timer
		fire := make(chan struct{}, 1)
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(e.Name) != abs || e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(reloadDebounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			case <-fire:
				reload()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Log.Warn().Err(err).Msg("Parser config watcher error")
			}
		}
	}()
	return nil
}
