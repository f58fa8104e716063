package monitor

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/geostab/slopekit/internal/errors"
)

// InputWatcher monitors the analysis input file and fires a debounced trigger
// when it changes.
type InputWatcher struct {
	inputPath string
	watcher   *fsnotify.Watcher
	trigger   func(reason string)
	debounce  time.Duration
	stopChan  chan struct{}
	eventChan chan struct{}
}

// NewInputWatcher creates a watcher for the given input file. trigger is
// called after the debounce window closes.
func NewInputWatcher(inputPath string, debounce time.Duration, trigger func(reason string)) (*InputWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.MonitorError("watcher", err)
	}

	absPath, err := filepath.Abs(inputPath)
	if err != nil {
		w.Close()
		return nil, errors.MonitorError("watcher", err)
	}

	return &InputWatcher{
		inputPath: absPath,
		watcher:   w,
		trigger:   trigger,
		debounce:  debounce,
		stopChan:  make(chan struct{}),
		eventChan: make(chan struct{}, 1),
	}, nil
}

// Start begins monitoring. Watching the containing directory is more reliable
// than watching the file directly, since editors replace files on save.
func (iw *InputWatcher) Start(ctx context.Context) error {
	dir := filepath.Dir(iw.inputPath)
	if err := iw.watcher.Add(dir); err != nil {
		return errors.MonitorError("watcher", err).WithContext("dir", dir)
	}

	slog.Info("Watching analysis input", "path", iw.inputPath)
	go iw.watchLoop(ctx)
	go iw.debounceLoop(ctx)
	return nil
}

// Stop stops the watcher.
func (iw *InputWatcher) Stop() {
	close(iw.stopChan)
	if err := iw.watcher.Close(); err != nil {
		slog.Error("Error closing file watcher", "error", err)
	}
}

func (iw *InputWatcher) watchLoop(ctx context.Context) {
	inputFile := filepath.Base(iw.inputPath)
	for {
		select {
		case <-ctx.Done():
			return
		case <-iw.stopChan:
			return
		case event, ok := <-iw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != inputFile {
				continue
			}
			switch {
			case event.Op&fsnotify.Write == fsnotify.Write,
				event.Op&fsnotify.Create == fsnotify.Create,
				event.Op&fsnotify.Rename == fsnotify.Rename:
				slog.Debug("Input change detected", "file", event.Name, "op", event.Op.String())
				iw.signal()
			case event.Op&fsnotify.Remove == fsnotify.Remove:
				slog.Warn("Input file removed", "file", event.Name)
			}
		case err, ok := <-iw.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Input watcher error", "error", err)
		}
	}
}

func (iw *InputWatcher) signal() {
	select {
	case iw.eventChan <- struct{}{}:
	default: // trigger already pending
	}
}

func (iw *InputWatcher) debounceLoop(ctx context.Context) {
	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-iw.stopChan:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-iw.eventChan:
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(iw.debounce, func() {
				iw.trigger("input_changed")
			})
		}
	}
}
