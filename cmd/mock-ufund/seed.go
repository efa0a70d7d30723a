package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/theeman05/SWEN-261-StudentUFund/model"
)

// loadSeed reads every JSON file under dir (recursively) and merges their
// needs into one catalog. Each file holds an array of needs. Later files
// override earlier ones by name.
func loadSeed(dir string) ([]model.Need, error) {
	matches, err := doublestar.FilepathGlob(filepath.Join(dir, "**", "*.json"))
	if err != nil {
		return nil, fmt.Errorf("globbing seed files: %w", err)
	}

	byName := make(map[string]model.Need)
	var order []string
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading seed file %s: %w", path, err)
		}
		var needs []model.Need
		if err := json.Unmarshal(data, &needs); err != nil {
			return nil, fmt.Errorf("parsing seed file %s: %w", path, err)
		}
		for _, n := range needs {
			if _, seen := byName[n.Name]; !seen {
				order = append(order, n.Name)
			}
			byName[n.Name] = n
		}
	}

	out := make([]model.Need, 0, len(order))
	for _, name := range order {
		out = append(out, byName[name])
	}
	return out, nil
}

// watchSeed reloads the catalog whenever files under dir change. Edits come
// in bursts (editors write temp files then rename), so reloads are debounced.
func watchSeed(dir string, st *store, logger *slog.Logger) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating seed watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}
	// Watch subdirectories too; fsnotify is not recursive.
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return err
		}
		return watcher.Add(path)
	})
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching seed subdirectories: %w", err)
	}

	go func() {
		var timer *time.Timer
		reload := func() {
			needs, err := loadSeed(dir)
			if err != nil {
				logger.Error("seed reload failed", "error", err)
				return
			}
			st.ReplaceCatalog(needs)
			logger.Info("seed reloaded", "needs", len(needs))
		}
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(200*time.Millisecond, reload)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("seed watcher error", "error", err)
			}
		}
	}()
	return watcher, nil
}
