package pipeline

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/chaz8081/croquis/internal/audio"
	"github.com/chaz8081/croquis/internal/logger"
)

// DefaultSettle is how long a new file must go unmodified before it is
// processed.
const DefaultSettle = 2 * time.Second

// Watcher processes audio files as they appear in a directory.
type Watcher struct {
	Pipeline *Pipeline
	// Settle is the quiet period after the last write event. Zero means
	// DefaultSettle.
	Settle time.Duration
}

// Watch blocks until ctx is done, processing every audio file created
// directly inside dir once writes to it have settled. Files already
// present are left alone. Failures are logged; unless ContinueOnError is
// set, the first one that is not an invalid file ends the watch.
func (w *Watcher) Watch(ctx context.Context, dir, outputDir string) error {
	settle := w.Settle
	if settle <= 0 {
		settle = DefaultSettle
	}
	p := w.Pipeline
	log := p.Log.With().Str("watch", dir).Logger()

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("pipeline: create watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("pipeline: watch dir %q: %w", dir, err)
	}
	log.Info().Dur("settle", settle).Msg("watching for recordings")

	pending := map[string]time.Time{}
	tick := time.NewTicker(settle / 2)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !audio.IsAudioFile(ev.Name) {
				continue
			}
			switch {
			case ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write):
				pending[ev.Name] = time.Now()
			case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
				delete(pending, ev.Name)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("pipeline: watch %q: %w", dir, err)
		case now := <-tick.C:
			for _, path := range settled(pending, now, settle) {
				delete(pending, path)
				_, err := p.process(ctx, log, path, outputDir)
				switch {
				case err == nil, errors.Is(err, audio.ErrInvalidAudio):
				case ctx.Err() != nil:
					return nil
				default:
					log.Error().Err(err).Str(logger.FieldPath, path).Msg("processing failed")
					if !p.ContinueOnError {
						return err
					}
				}
			}
		}
	}
}

// settled returns the pending paths quiet for at least settle, sorted by
// name so files that settle together are processed in a stable order.
func settled(pending map[string]time.Time, now time.Time, settle time.Duration) []string {
	var ready []string
	for path, last := range pending {
		if now.Sub(last) >= settle {
			ready = append(ready, path)
		}
	}
	slices.Sort(ready)
	return ready
}
