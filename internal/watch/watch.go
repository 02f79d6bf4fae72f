// Package watch reruns a build whenever one of its source files changes.
package watch

import (
	"context"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

type Op int

const (
	OP_CREATE Op = 1 << iota
	OP_WRITE
	OP_REMOVE
	OP_RENAME
)

type Event struct {
	Path string
	Op   Op
}

// Watcher reports changes to a fixed set of files. Directories are watched
// instead of the files themselves so editors that replace a file on save
// keep being tracked.
type Watcher struct {
	w     *fsnotify.Watcher
	files map[string]bool
	evC   chan Event
	erC   chan error
}

func New(paths []string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &Watcher{
		w:     w,
		files: make(map[string]bool),
		evC:   make(chan Event, 128),
		erC:   make(chan error, 1),
	}

	dirs := make(map[string]bool)
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			w.Close()
			return nil, err
		}
		fw.files[abs] = true

		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, err
		}
	}

	go fw.loop()
	return fw, nil
}

func (fw *Watcher) loop() {
	defer close(fw.evC)
	for {
		select {
		case ev, ok := <-fw.w.Events:
			if !ok {
				return
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil || !fw.files[abs] {
				continue
			}
			var op Op
			if ev.Op&fsnotify.Create != 0 {
				op |= OP_CREATE
			}
			if ev.Op&fsnotify.Write != 0 {
				op |= OP_WRITE
			}
			if ev.Op&fsnotify.Remove != 0 {
				op |= OP_REMOVE
			}
			if ev.Op&fsnotify.Rename != 0 {
				op |= OP_RENAME
			}
			if op == 0 {
				continue
			}
			fw.evC <- Event{Path: abs, Op: op}
		case err, ok := <-fw.w.Errors:
			if !ok {
				return
			}
			select {
			case fw.erC <- err:
			default:
			}
		}
	}
}

func (fw *Watcher) Events() <-chan Event { return fw.evC }
func (fw *Watcher) Errors() <-chan error { return fw.erC }
func (fw *Watcher) Close() error         { return fw.w.Close() }

// Run calls build once, then again after every burst of changes that was
// quiet for delay. It returns when ctx is done or the watcher fails.
func Run(ctx context.Context, fw *Watcher, delay time.Duration, build func(changed []string)) error {
	build(nil)

	var timer *time.Timer
	var fire <-chan time.Time
	pending := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-fw.Errors():
			return err
		case ev, ok := <-fw.Events():
			if !ok {
				return nil
			}
			pending[ev.Path] = true
			if timer == nil {
				timer = time.NewTimer(delay)
			} else {
				timer.Reset(delay)
			}
			fire = timer.C
		case <-fire:
			changed := make([]string, 0, len(pending))
			for path := range pending {
				changed = append(changed, path)
			}
			sort.Strings(changed)
			pending = make(map[string]bool)
			fire = nil
			build(changed)
		}
	}
}
