package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const watchDebounce = 300 * time.Millisecond

func newWatchCmd(a *app) *cobra.Command {
	var opts replayOptions

	cmd := &cobra.Command{
		Use:   "watch <design>",
		Short: "Replay a design every time it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.journal = a.cfg.Journal.Path
			opts.metrics = a.cfg.Metrics.Path
			opts.tolerance = a.cfg.Match.Tolerance

			path := args[0]
			out := cmd.OutOrStdout()
			replayOnce := func() {
				rep, err := a.replay(cmd.Context(), path, opts)
				if rep != nil {
					writeSummary(out, rep)
				}
				if err != nil {
					fmt.Fprintln(out, errorStyle.Render(err.Error()))
				}
			}

			replayOnce()
			return watchFile(cmd.Context(), path, watchDebounce, a.log, replayOnce)
		},
	}
	cmd.Flags().StringVar(&opts.stl, "stl", "", "Write the resulting bodies as STL after each replay")
	cmd.Flags().StringVar(&opts.meshJSON, "mesh-json", "", "Write per-body triangle meshes as JSON after each replay")
	return cmd
}

// watchFile calls onChange after path is written or recreated, once per
// burst of events. The parent directory is watched so editors that save by
// renaming are seen. It returns when ctx is done.
func watchFile(ctx context.Context, path string, debounce time.Duration, log *zap.Logger, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	log.Info("watching", zap.String("path", abs))

	var timer *time.Timer
	fire := make(chan struct{}, 1)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			log.Debug("design changed", zap.String("file", event.Name), zap.String("operation", event.Op.String()))
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			onChange()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Error("file watcher error", zap.Error(err))

		case <-ctx.Done():
			return nil
		}
	}
}
