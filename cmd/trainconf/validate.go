package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/determined-ai/trainconf/pkg/loader"
	"github.com/determined-ai/trainconf/pkg/logger"
)

func (c *cli) newValidateCmd() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Load configs and their aux configs and report every error found",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.config.loaderOptions()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			err = validateFiles(cmd.Context(), out, args, opts)
			if !watch {
				return err
			}
			if err != nil {
				fmt.Fprintln(out, err)
			}

			w, targets, err := newFileWatcher(args)
			if err != nil {
				return err
			}
			return watchFiles(cmd.Context(), w, targets, func(path string) {
				if err := validateFiles(cmd.Context(), out, []string{path}, opts); err != nil {
					fmt.Fprintln(out, err)
				}
			})
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "revalidate the files whenever they change")
	return cmd
}

func validateFiles(ctx context.Context, out io.Writer, paths []string, opts loader.Options) error {
	var result *multierror.Error
	for _, path := range paths {
		bundle, err := loader.Load(ctx, path, opts)
		if err != nil {
			fmt.Fprintf(out, "%s: invalid\n", path)
			result = multierror.Append(result, err)
			continue
		}
		fmt.Fprintf(out, "%s: valid (%d configs)\n", path, len(bundle.Configs()))
	}
	return result.ErrorOrNil()
}

// newFileWatcher watches the directories of the given files, so that editors replacing a file
// on save are seen too.
func newFileWatcher(paths []string) (*fsnotify.Watcher, map[string]string, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, errors.Wrap(err, "creating file watcher")
	}
	targets := map[string]string{}
	dirs := map[string]bool{}
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			_ = w.Close()
			return nil, nil, errors.Wrapf(err, "resolving %s", path)
		}
		targets[abs] = path
		if dir := filepath.Dir(abs); !dirs[dir] {
			if err := w.Add(dir); err != nil {
				_ = w.Close()
				return nil, nil, errors.Wrapf(err, "watching %s", dir)
			}
			dirs[dir] = true
		}
	}
	return w, targets, nil
}

// watchFiles calls onChange with the path as given by the user each time a watched file is
// written or created, until the context is done.
func watchFiles(
	ctx context.Context, w *fsnotify.Watcher, targets map[string]string, onChange func(string),
) error {
	defer w.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			path, watched := targets[filepath.Clean(event.Name)]
			if !watched || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			logger.Context{"file": path, "op": event.Op.String()}.Entry().Debug("file changed")
			onChange(path)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Context{}.Entry().WithError(err).Warn("file watcher error")
		}
	}
}
