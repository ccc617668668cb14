package ingestion

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pterm/pterm"
)

// DirWatcher calls onChange once the log directory has been quiet for the
// debounce window after a change to a matching file
type DirWatcher struct {
	watcher  *fsnotify.Watcher
	dir      string
	prefixes []string
	debounce time.Duration
	onChange func()
	logger   *pterm.Logger
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewDirWatcher starts watching dir for files starting with one of prefixes
func NewDirWatcher(dir string, prefixes []string, debounce time.Duration, onChange func(), logger *pterm.Logger) (*DirWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.WithCaller().Error("Failed to create file watcher", logger.Args("error", err))
		return nil, err
	}

	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		logger.WithCaller().Error("Failed to watch log directory", logger.Args("dir", dir, "error", err))
		return nil, err
	}

	dw := &DirWatcher{
		watcher:  watcher,
		dir:      dir,
		prefixes: prefixes,
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}

	dw.wg.Add(1)
	go dw.eventLoop()

	logger.Info("Watching log directory", logger.Args("dir", dir, "debounce", debounce))
	return dw, nil
}

func (dw *DirWatcher) relevant(name string) bool {
	base := filepath.Base(name)
	for _, p := range dw.prefixes {
		if strings.HasPrefix(base, p) {
			return true
		}
	}
	return false
}

// eventLoop coalesces file system events into onChange calls
func (dw *DirWatcher) eventLoop() {
	defer dw.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-dw.stopCh:
			dw.logger.Debug("Directory watcher stopped")
			return

		case event, ok := <-dw.watcher.Events:
			if !ok {
				dw.logger.Warn("File watcher events channel closed")
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !dw.relevant(event.Name) {
				continue
			}

			dw.logger.Trace("Log file changed", dw.logger.Args("file", event.Name, "op", event.Op.String()))
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(dw.debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			dw.logger.Debug("Log directory changed, re-running analysis", dw.logger.Args("dir", dw.dir))
			dw.onChange()

		case err, ok := <-dw.watcher.Errors:
			if !ok {
				dw.logger.Warn("File watcher errors channel closed")
				return
			}
			dw.logger.WithCaller().Error("File watcher error", dw.logger.Args("error", err))
		}
	}
}

// Close stops the watcher and waits for a running onChange to return
func (dw *DirWatcher) Close() error {
	dw.logger.Debug("Closing directory watcher...")
	close(dw.stopCh)
	dw.wg.Wait()

	if err := dw.watcher.Close(); err != nil {
		dw.logger.WithCaller().Error("Failed to close file watcher", dw.logger.Args("error", err))
		return err
	}
	return nil
}
