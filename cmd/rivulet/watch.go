package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

func runWatch(args []string) int {
	opts, code, ok := parseRunFlags("watch", args)
	if !ok {
		return code
	}
	path, err := filepath.Abs(opts.path)
	if err != nil {
		fmt.Fprintf(stderr, "resolve %s: %v\n", opts.path, err)
		return exitError
	}
	opts.path = path

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(stderr, "watch: %v\n", err)
		return exitError
	}
	defer watcher.Close()
	// Editors often replace the file, so watch its directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		fmt.Fprintf(stderr, "watch %s: %v\n", filepath.Dir(path), err)
		return exitError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := watchLoop(ctx, watcher, opts); err != nil {
		fmt.Fprintf(stderr, "watch: %v\n", err)
		return exitError
	}
	return exitOK
}

// watchLoop runs the program once and again after every change to it, until
// ctx is done or the watcher closes.
func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, opts *runOptions) error {
	rerun := func() {
		cfg, err := opts.settings()
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return
		}
		execute(ctx, cfg, opts.path)
	}

	rerun()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !changes(event, opts.path) {
				continue
			}
			fmt.Fprintf(stderr, "%s changed, re-running\n", filepath.Base(opts.path))
			rerun()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

// changes reports whether event rewrote the file at path.
func changes(event fsnotify.Event, path string) bool {
	if filepath.Clean(event.Name) != filepath.Clean(path) {
		return false
	}
	return event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create
}
