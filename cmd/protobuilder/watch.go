package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/syssam/protobuilder/compiler/load"
)

// debounce collects the events of editors that write a file in several
// steps into one regeneration.
const debounce = 200 * time.Millisecond

const regenerateOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove

// watch generates once, then again whenever a proto file or the --config
// file changes, until ctx is canceled. Failed runs are logged and do not
// end the watch.
func watch(ctx context.Context, o *options, stdout io.Writer, log *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()
	dirs, err := o.watchDirs()
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	log.Info("watching", slog.Any("dirs", dirs))

	regenerate := func() {
		if _, err := run(ctx, o, stdout, log); err != nil {
			log.Error("generation failed", slog.Any("error", err))
		}
	}
	regenerate()

	var timer <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&regenerateOps == 0 || !o.watched(ev.Name) {
				continue
			}
			log.Debug("change detected", slog.String("file", ev.Name), slog.String("op", ev.Op.String()))
			timer = time.After(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", slog.Any("error", err))
		case <-timer:
			timer = nil
			regenerate()
		}
	}
}

// watchDirs returns the directories holding the requested proto files and
// the --config file.
func (o *options) watchDirs() ([]string, error) {
	flag, err := load.ParseProtoFlag(o.Proto)
	if err != nil {
		return nil, err
	}
	paths := o.ProtoPaths
	if len(paths) == 0 {
		paths = []string{"."}
	}
	var dirs []string
	for _, name := range flag.Files {
		for _, p := range paths {
			full := filepath.Join(p, name)
			if _, err := os.Stat(full); err == nil {
				dirs = append(dirs, filepath.Dir(full))
			}
		}
	}
	if o.Config != "" {
		dirs = append(dirs, filepath.Dir(o.Config))
	}
	slices.Sort(dirs)
	return slices.Compact(dirs), nil
}

func (o *options) watched(name string) bool {
	if strings.HasSuffix(name, ".proto") {
		return true
	}
	return o.Config != "" && filepath.Clean(name) == filepath.Clean(o.Config)
}
