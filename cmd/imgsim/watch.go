package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/viant/imgsim/compare"
	"github.com/viant/imgsim/imageio"
)

func NewWatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <reference> <dir>",
		Short: "Compare new or changed images against a reference",
		Long: `Watch a directory tree and compare every image that is created or
written against the reference image. Changes are batched over a debounce window.`,
		Args: cobra.ExactArgs(2),
		RunE: makeWatchRunner(a),
	}

	addPipelineFlags(cmd)
	cmd.Flags().Int("workers", 0, "Concurrent comparisons (default from config, GOMAXPROCS)")
	cmd.Flags().Duration("debounce", 500*time.Millisecond, "Debounce window for batching changes")
	return cmd
}

func makeWatchRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		reference, root := args[0], args[1]
		debounce, _ := cmd.Flags().GetDuration("debounce")
		cfg, err := a.loadConfig(cmd)
		if err != nil {
			return err
		}
		if _, err := a.fs.Stat(root); err != nil {
			return fmt.Errorf("watch %s: %w", root, err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		defer watcher.Close()

		if err := addWatchDirs(watcher, a.fs, root); err != nil {
			return fmt.Errorf("add watch dirs: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s, comparing against %s...\n", root, reference)

		timer := time.NewTimer(0)
		if !timer.Stop() {
			<-timer.C
		}
		pending := newPendingSet()

		for {
			select {
			case <-ctx.Done():
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if event.Op&fsnotify.Create != 0 {
					if info, err := a.fs.Stat(event.Name); err == nil && info.IsDir() {
						_ = addWatchDirs(watcher, a.fs, event.Name)
						continue
					}
				}
				if shouldIgnoreEvent(event, reference) {
					continue
				}
				if pending.add(event.Name) {
					timer.Reset(debounce)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "watch error: %v\n", err)
			case <-timer.C:
				paths := pending.drain()
				cmd.SetContext(ctx)
				if _, err := a.runBatch(cmd, cfg, compare.Pairs(reference, paths)); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "compare: %v\n", err)
				}
			}
		}
	}
}

// dirWatcher is the part of fsnotify.Watcher used to register directories.
type dirWatcher interface {
	Add(name string) error
}

// addWatchDirs registers root and every non-hidden directory below it.
func addWatchDirs(watcher dirWatcher, fs afero.Fs, root string) error {
	return afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}

		if info.IsDir() {
			base := filepath.Base(path)
			if strings.HasPrefix(base, ".") && path != root {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}

// shouldIgnoreEvent keeps writes and creates of supported images other than
// the reference itself.
func shouldIgnoreEvent(event fsnotify.Event, reference string) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return true
	}
	if !imageio.IsImage(event.Name) {
		return true
	}
	return filepath.Clean(event.Name) == filepath.Clean(reference)
}

// pendingSet collects changed paths between two debounce ticks.
type pendingSet struct {
	paths map[string]struct{}
}

func newPendingSet() *pendingSet {
	return &pendingSet{paths: map[string]struct{}{}}
}

// add records path and reports whether it opened a new window.
func (p *pendingSet) add(path string) bool {
	first := len(p.paths) == 0
	p.paths[path] = struct{}{}
	return first
}

// drain returns the collected paths in sorted order and empties the set.
func (p *pendingSet) drain() []string {
	out := make([]string, 0, len(p.paths))
	for path := range p.paths {
		out = append(out, path)
	}
	sort.Strings(out)
	p.paths = map[string]struct{}{}
	return out
}
