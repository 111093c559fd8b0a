package language_service

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Watch re-checks templates under roots whenever they change and hands each
// result to report. Changes are batched for cfg.Debounce. The Checker must
// read from the OS filesystem. Watch returns when ctx is done.
func (c *Checker) Watch(ctx context.Context, roots []string, report func(*FileResult)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, root := range roots {
		if err := c.watchTree(watcher, root); err != nil {
			return err
		}
	}
	c.log.WithField("roots", roots).Info("watching for changes")

	pending := map[string]bool{}
	timer := time.NewTimer(c.cfg.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := c.fs.Stat(event.Name); err == nil && info.IsDir() {
					if err := c.watchTree(watcher, event.Name); err != nil {
						c.log.WithError(err).WithField("dir", event.Name).Warn("failed to watch directory")
					}
					continue
				}
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !c.cfg.MatchesExtension(event.Name) {
				continue
			}
			pending[event.Name] = true
			timer.Reset(c.cfg.Debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.log.WithError(err).Warn("watch error")

		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for path := range pending {
				paths = append(paths, path)
			}
			pending = map[string]bool{}
			sort.Strings(paths)
			for _, path := range paths {
				result, err := c.CheckFile(path)
				if err != nil {
					// removed between the event and the check
					c.log.WithFields(logrus.Fields{"file": path}).WithError(err).Debug("skipping")
					continue
				}
				report(result)
			}
		}
	}
}

func (c *Checker) watchTree(watcher *fsnotify.Watcher, root string) error {
	return afero.Walk(c.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && isSkippedDir(info.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
