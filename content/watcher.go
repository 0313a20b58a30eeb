package content

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchExts are the file extensions that trigger a reload.
var watchExts = map[string]bool{".md": true, ".mdx": true}

// excludedDirs are directory names never watched.
var excludedDirs = map[string]bool{".git": true, "node_modules": true}

// Watcher watches a content directory and invokes a callback after changes
// settle. Events are debounced so an editor save (often several writes plus
// a rename) produces a single reload.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	onChange func()
	done     chan struct{}
}

// WatchDir starts watching dir and all its subdirectories. onChange runs on
// the watcher goroutine after the debounce window closes.
func WatchDir(dir string, debounce time.Duration, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	w := &Watcher{
		fsw:      fsw,
		debounce: debounce,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	if err := w.addRecursive(dir); err != nil {
		fsw.Close()
		return nil, err
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if excludedDirs[d.Name()] || strings.HasPrefix(d.Name(), "_") {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) loop() {
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			// New directories must be added to the watch set.
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = w.addRecursive(ev.Name)
				}
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
		case <-fire:
			timer = nil
			fire = nil
			w.onChange()
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		case <-w.done:
			return
		}
	}
}

// relevant reports whether ev should trigger a reload.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op.Has(fsnotify.Chmod) {
		return false
	}
	ext := strings.ToLower(filepath.Ext(ev.Name))
	if watchExts[ext] {
		return true
	}
	// Directory create/remove/rename also changes the post set.
	return ext == "" && (ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename))
}

// Stop shuts the watcher down. Safe to call once.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsw.Close()
}
