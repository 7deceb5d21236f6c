package sweep

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	petname "github.com/dustinkirkland/golang-petname"
	"github.com/ghodss/yaml"
	"github.com/google/uuid"
	"github.com/huandu/xstrings"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/determined-ai/trainconf/pkg/loader"
	"github.com/determined-ai/trainconf/pkg/logger"
)

// ManifestFile is the name of the manifest written to the output directory.
const ManifestFile = "manifest.yaml"

// Sweep names are generated from this many words joined by this separator.
const (
	NameGeneratorWords = 2
	NameGeneratorSep   = "-"
)

// DefaultCommand launches the trainer the way the benchmark scripts did.
const DefaultCommand = "python tools/main.py --config {{ .ConfigPath }} --gpu-num {{ .GPUs }}"

// RunOptions configure where a sweep is written and how trainers are launched.
type RunOptions struct {
	// OutDir receives one config per job and the manifest.
	OutDir string
	// Name defaults to a generated pet name.
	Name string
	// Base is the path of the base config, recorded in the manifest.
	Base string
	// Command is a text/template with sprig functions, rendered per job with CommandData. An
	// empty command only writes the configs.
	Command string
	GPUs    int
	// Parallel bounds the number of trainers running at once. It defaults to 1.
	Parallel int
	Launcher Launcher
}

// CommandData is what a launch command template is rendered with.
type CommandData struct {
	ConfigPath string
	GPUs       int
	Dataset    string
	SaveDir    string
	NumClasses int
}

// Launcher starts a rendered trainer command and waits for it.
type Launcher interface {
	Launch(ctx context.Context, job Job, command string) error
}

// ShellLauncher runs commands with sh -c.
type ShellLauncher struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Launch implements Launcher.
func (s ShellLauncher) Launch(ctx context.Context, job Job, command string) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", command) //nolint:gosec
	cmd.Stdout = s.Stdout
	cmd.Stderr = s.Stderr
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "trainer for %s failed", job.Preset.Name)
	}
	return nil
}

// Manifest records a sweep.
type Manifest struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Base      string          `json:"base"`
	CreatedAt time.Time       `json:"created_at"`
	Jobs      []ManifestEntry `json:"jobs"`
}

// ManifestEntry records one job of a sweep.
type ManifestEntry struct {
	Dataset    string `json:"dataset"`
	ConfigPath string `json:"config_path"`
	SaveDir    string `json:"save_dir"`
	Command    string `json:"command,omitempty"`
}

func commandFuncs() template.FuncMap {
	funcs := sprig.TxtFuncMap()
	funcs["snakecase"] = xstrings.ToSnakeCase
	funcs["toYaml"] = func(v interface{}) (string, error) {
		byts, err := yaml.Marshal(v)
		return string(byts), err
	}
	return funcs
}

// RenderCommand renders a launch command template.
func RenderCommand(command string, data CommandData) (string, error) {
	tmpl, err := template.New("command").Funcs(commandFuncs()).Option("missingkey=error").
		Parse(command)
	if err != nil {
		return "", errors.Wrap(err, "parsing launch command")
	}
	var b bytes.Buffer
	if err := tmpl.Execute(&b, data); err != nil {
		return "", errors.Wrap(err, "rendering launch command")
	}
	return b.String(), nil
}

// Run writes the config of every job and the manifest to the output directory, then launches
// the trainers. The first failed launch cancels the ones still running or waiting.
func Run(ctx context.Context, jobs []Job, opts RunOptions) (*Manifest, error) {
	if opts.Name == "" {
		opts.Name = petname.Generate(NameGeneratorWords, NameGeneratorSep)
	}
	if opts.Parallel < 1 {
		opts.Parallel = 1
	}
	if opts.Launcher == nil {
		opts.Launcher = ShellLauncher{Stdout: os.Stdout, Stderr: os.Stderr}
	}

	outDir, err := filepath.Abs(opts.OutDir)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", opts.OutDir)
	}
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return nil, errors.Wrapf(err, "creating %s", outDir)
	}

	manifest := &Manifest{
		ID:        uuid.New(),
		Name:      opts.Name,
		Base:      opts.Base,
		CreatedAt: time.Now().UTC(),
	}
	commands := make([]string, len(jobs))
	for i, job := range jobs {
		configPath := filepath.Join(outDir, job.Preset.Name+".yml")
		if err := loader.SaveFile(configPath, job.Config); err != nil {
			return nil, errors.Wrapf(err, "writing config for %s", job.Preset.Name)
		}
		entry := ManifestEntry{
			Dataset:    job.Preset.Name,
			ConfigPath: configPath,
			SaveDir:    job.Config.Data.SaveDir,
		}
		if opts.Command != "" {
			entry.Command, err = RenderCommand(opts.Command, CommandData{
				ConfigPath: configPath,
				GPUs:       opts.GPUs,
				Dataset:    job.Preset.Name,
				SaveDir:    job.Config.Data.SaveDir,
				NumClasses: job.Preset.NumClasses,
			})
			if err != nil {
				return nil, err
			}
		}
		commands[i] = entry.Command
		manifest.Jobs = append(manifest.Jobs, entry)
	}

	byts, err := yaml.Marshal(manifest)
	if err != nil {
		return nil, errors.Wrap(err, "encoding manifest")
	}
	if err := os.WriteFile(filepath.Join(outDir, ManifestFile), byts, 0o600); err != nil {
		return nil, errors.Wrap(err, "writing manifest")
	}

	if opts.Command == "" {
		return manifest, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallel)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			log := logger.Context{"sweep": manifest.Name, "dataset": job.Preset.Name}
			log.Entry().WithField("command", commands[i]).Info("launching trainer")
			if err := opts.Launcher.Launch(gctx, job, commands[i]); err != nil {
				return err
			}
			log.Entry().Info("trainer finished")
			return nil
		})
	}
	return manifest, g.Wait()
}
