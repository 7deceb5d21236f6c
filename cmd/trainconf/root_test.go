package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"gotest.tools/assert"

	"github.com/determined-ai/trainconf/internal/sweep"
	"github.com/determined-ai/trainconf/pkg/loader"
	"github.com/determined-ai/trainconf/pkg/logger"
	"github.com/determined-ai/trainconf/version"
)

const (
	referenceDoc = "../../pkg/loader/testdata/mobilenetv3_large.yml"
	auxDoc       = "../../pkg/loader/testdata/configs/classification/mobilenetv3_large_aux.yml"
	missingAux   = "../../pkg/loader/testdata/missing_aux.yml"
	sweepBase    = "../../internal/sweep/testdata/base.yml"
	combinedLog  = "../../internal/results/testdata/combine_all.txt"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	defer logger.SetLogrus(*logger.DefaultConfig())
	defer logger.SetOutput(os.Stderr)

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestToolConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "trainconf.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(`
log:
  level: debug
duplicate_policy: last
work_dir: /from/file
`), 0o600))
	t.Setenv("TRAINCONF_WORK_DIR", "/from/env")

	v := viper.New()
	registerConfig(v, pflag.NewFlagSet("test", pflag.ContinueOnError))
	v.Set("config_file", configFile)

	config, err := initializeConfig(v)
	require.NoError(t, err)
	require.Equal(t, "debug", config.Log.Level)
	require.Equal(t, loader.KeepLastDuplicate, config.DuplicatePolicy)
	require.Equal(t, "/from/env", config.WorkDir)
	require.Equal(t, []string{}, config.Set)
}

func TestToolConfigRejectsUnknownKeys(t *testing.T) {
	v := viper.New()
	registerConfig(v, pflag.NewFlagSet("test", pflag.ContinueOnError))
	require.NoError(t, mergeConfigBytesIntoViper(v, []byte("colour: true\n")))
	_, err := getConfig(v.AllSettings())
	require.ErrorContains(t, err, "cannot unmarshal tool config")
}

func TestConfigKey(t *testing.T) {
	key := configKey{"duplicate-policy"}
	assert.Equal(t, key.FlagName(), "duplicate-policy")
	assert.Equal(t, key.AccessPath(), "duplicate_policy")
	assert.Equal(t, key.EnvName(), "TRAINCONF_DUPLICATE_POLICY")
	assert.Equal(t, configKey{"log", "level"}.AccessPath(), "log.level")
}

func TestValidate(t *testing.T) {
	out, err := execute(t, "validate", "--duplicate-policy", "last", referenceDoc, auxDoc)
	require.NoError(t, err)
	require.Contains(t, out, referenceDoc+": valid (2 configs)")
	require.Contains(t, out, auxDoc+": valid (1 configs)")
}

func TestValidateRejectsDuplicatesByDefault(t *testing.T) {
	out, err := execute(t, "validate", referenceDoc, missingAux)
	require.Contains(t, out, referenceDoc+": invalid")

	var dupErr *loader.DuplicateKeyError
	require.True(t, errors.As(err, &dupErr))

	var refErr *loader.ReferenceError
	require.True(t, errors.As(err, &refErr))
}

func TestDuplicatePolicyFromEnv(t *testing.T) {
	t.Setenv("TRAINCONF_DUPLICATE_POLICY", "last")
	_, err := execute(t, "validate", referenceDoc)
	require.NoError(t, err)
}

func TestInvalidDuplicatePolicy(t *testing.T) {
	_, err := execute(t, "validate", "--duplicate-policy", "first", auxDoc)
	require.Error(t, err)
}

func TestShow(t *testing.T) {
	out, err := execute(t, "show", "--duplicate-policy", "last", "--set", "train.lr=0.5",
		referenceDoc)
	require.NoError(t, err)
	require.Contains(t, out, "lr: 0.5")
	require.Contains(t, out, "(depth 1)")
	require.Contains(t, out, "mobilenetv3_large_aux")
}

func TestShowListOverrides(t *testing.T) {
	out, err := execute(t, "show", "--duplicate-policy", "last",
		"--set", "custom_datasets.roots=[/data/a, /data/b]",
		"--set", "custom_datasets.types=[classification, classification]",
		referenceDoc)
	require.NoError(t, err)
	require.Contains(t, out, "/data/a")
	require.Contains(t, out, "/data/b")
}

func TestShowOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resolved.yml")
	_, err := execute(t, "show", "-o", path, auxDoc)
	require.NoError(t, err)

	written, err := loader.New(loader.Options{}).LoadConfig(context.Background(), path)
	require.NoError(t, err)
	original, err := loader.New(loader.Options{}).LoadConfig(context.Background(), auxDoc)
	require.NoError(t, err)
	require.Equal(t, original, written)
}

func TestDiff(t *testing.T) {
	out, err := execute(t, "diff", auxDoc, auxDoc)
	require.NoError(t, err)
	require.Equal(t, "configs are identical\n", out)

	dir := t.TempDir()
	a, b := filepath.Join(dir, "a.yml"), filepath.Join(dir, "b.yml")
	require.NoError(t, os.WriteFile(a, []byte("model: {name: resnet50}\ndata: {root: ./}\n"), 0o600))
	require.NoError(t, os.WriteFile(b, []byte("model: {name: resnet18}\ndata: {root: ./}\n"), 0o600))

	out, err = execute(t, "diff", a, b)
	require.NoError(t, err)
	require.Contains(t, out, "resnet50")
	require.Contains(t, out, "resnet18")

	_, err = execute(t, "diff", "--exit-code", a, b)
	require.ErrorContains(t, err, "differ")
}

func TestSweepNoLaunch(t *testing.T) {
	outDir := t.TempDir()
	out, err := execute(t, "sweep", "--no-launch", "--only", "cars,DTD", "--name", "test-sweep",
		"--data-root", "/datasets", "--out-dir", outDir, sweepBase)
	require.NoError(t, err)
	require.Contains(t, out, "sweep test-sweep")
	require.FileExists(t, filepath.Join(outDir, sweep.ManifestFile))
	require.FileExists(t, filepath.Join(outDir, "cars.yml"))
	require.FileExists(t, filepath.Join(outDir, "DTD.yml"))
}

func TestSweepOnlyIgnoresDefaultSkip(t *testing.T) {
	outDir := t.TempDir()
	_, err := execute(t, "sweep", "--no-launch", "--only", "SUN397", "--out-dir", outDir,
		sweepBase)
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(outDir, "SUN397.yml"))

	_, err = execute(t, "sweep", "--no-launch", "--only", "SUN397", "--skip", "SUN397",
		"--out-dir", t.TempDir(), sweepBase)
	require.ErrorContains(t, err, "no datasets left")
}

func TestSweepMissingAuxLaunchesNothing(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "sweep")
	_, err := execute(t, "sweep", "--command", "false", "--out-dir", outDir, missingAux)

	var refErr *loader.ReferenceError
	require.True(t, errors.As(err, &refErr))
	require.NoDirExists(t, outDir)
}

func TestSummarize(t *testing.T) {
	out, err := execute(t, "summarize", "--datasets", "CIFAR100,cars", combinedLog)
	require.NoError(t, err)
	require.Equal(t, "\nCIFAR100 cars \n81.5;86.25;97.1;1;60.5;70.0;90.0;0;\n", out)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	require.Equal(t, version.Version+"\n", out)
}

func TestWatchFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	other := filepath.Join(dir, "other.yml")
	require.NoError(t, os.WriteFile(path, []byte("model: {}\n"), 0o600))

	w, targets, err := newFileWatcher([]string{path})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	changed := make(chan string, 16)
	done := make(chan error, 1)
	go func() {
		done <- watchFiles(ctx, w, targets, func(p string) { changed <- p })
	}()

	require.NoError(t, os.WriteFile(other, []byte("model: {}\n"), 0o600))
	require.NoError(t, os.WriteFile(path, []byte("model: {name: resnet}\n"), 0o600))

	select {
	case p := <-changed:
		require.Equal(t, path, p)
	case <-time.After(10 * time.Second):
		t.Fatal("no change seen")
	}

	cancel()
	require.NoError(t, <-done)
}
