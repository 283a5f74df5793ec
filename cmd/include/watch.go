package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

const watchDebounce = 150 * time.Millisecond

func newWatchCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch PAGE",
		Short: "Expand a page again whenever the page directory changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnvironment(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer env.Close()

			if env.dir == nil {
				return fmt.Errorf("watch needs --pages")
			}
			return watchPage(cmd.Context(), env, args[0], cmd.OutOrStdout())
		},
	}
}

func watchPage(ctx context.Context, env *environment, name string, out io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := addTree(watcher, env.dir.Root); err != nil {
		return err
	}

	logger := env.logger.WithField("page", name)
	render := func() {
		text, err := env.loadPage(ctx, name)
		if err != nil {
			logger.Error("%v", err)
			return
		}
		expanded, err := env.engine.Preprocess(ctx, env.settings.caller, name, text)
		if err != nil {
			logger.Error("%v", err)
			return
		}
		s := newStyles(out)
		fmt.Fprintln(out, s.render(s.muted, fmt.Sprintf("--- %s %s", name, time.Now().Format(time.TimeOnly))))
		fmt.Fprint(out, expanded)
		reportDiagnostics(out, expanded)
	}

	render()

	var timer *time.Timer
	fire := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				// New directories must be watched too.
				if err := addCreated(watcher, event.Name); err != nil {
					logger.Warn("watch error: %v", err)
				}
			}
			if _, isPage := env.dir.Name(event.Name); !isPage {
				continue
			}
			logger.WithField("file", event.Name).Debug("change: %s", event.Op)
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			render()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)
		}
	}
}

// addCreated watches a path reported as created. A path that vanished
// before it could be walked is not an error.
func addCreated(watcher *fsnotify.Watcher, path string) error {
	err := addTree(watcher, path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// addTree watches root and every directory below it.
func addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := watcher.Add(path); err != nil {
				return fmt.Errorf("watching %s: %w", path, err)
			}
		}
		return nil
	})
}
