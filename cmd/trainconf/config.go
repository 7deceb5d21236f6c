package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/determined-ai/trainconf/pkg/check"
	"github.com/determined-ai/trainconf/pkg/loader"
	"github.com/determined-ai/trainconf/pkg/logger"
)

const (
	defaultConfigPath = ".trainconf.yaml"
	envPrefix         = "TRAINCONF_"
)

// toolConfig configures the tool itself, as opposed to the training configs it reads.
type toolConfig struct {
	ConfigFile      string                 `json:"config_file"`
	Log             logger.Config          `json:"log"`
	DuplicatePolicy loader.DuplicatePolicy `json:"duplicate_policy"`
	WorkDir         string                 `json:"work_dir"`
	Set             []string               `json:"set"`
}

func defaultToolConfig() *toolConfig {
	return &toolConfig{
		Log:             *logger.DefaultConfig(),
		DuplicatePolicy: loader.RejectDuplicates,
		Set:             []string{},
	}
}

// Validate implements the check.Validatable interface.
func (c toolConfig) Validate() []error {
	_, err := loader.ParseDuplicatePolicy(string(c.DuplicatePolicy))
	return []error{err}
}

func (c toolConfig) loaderOptions() (loader.Options, error) {
	overrides, err := loader.ParseOverrides(c.Set)
	if err != nil {
		return loader.Options{}, err
	}
	return loader.Options{
		Policy:    c.DuplicatePolicy,
		WorkDir:   c.WorkDir,
		Overrides: overrides,
	}, nil
}

type configKey []string

func (c configKey) EnvName() string {
	return envPrefix + strings.ReplaceAll(strings.ToUpper(c.FlagName()), "-", "_")
}

func (c configKey) AccessPath() string {
	return strings.ReplaceAll(strings.Join(c, "."), "-", "_")
}

func (c configKey) FlagName() string {
	return strings.Join(c, "-")
}

func bind(v *viper.Viper, flags *pflag.FlagSet, name configKey, value interface{}) {
	_ = v.BindEnv(name.AccessPath(), name.EnvName())
	_ = v.BindPFlag(name.AccessPath(), flags.Lookup(name.FlagName()))
	v.SetDefault(name.AccessPath(), value)
}

func registerString(
	v *viper.Viper, flags *pflag.FlagSet, name configKey, value string, usage string,
) {
	flags.String(name.FlagName(), value, usage)
	bind(v, flags, name, value)
}

func registerBool(v *viper.Viper, flags *pflag.FlagSet, name configKey, value bool, usage string) {
	flags.Bool(name.FlagName(), value, usage)
	bind(v, flags, name, value)
}

// registerStringArray keeps every occurrence of the flag as one value, commas included.
func registerStringArray(
	v *viper.Viper, flags *pflag.FlagSet, name configKey, value []string, usage string,
) {
	flags.StringArray(name.FlagName(), value, usage)
	bind(v, flags, name, value)
}

func registerValue(
	v *viper.Viper, flags *pflag.FlagSet, name configKey, value pflag.Value, usage string,
) {
	flags.Var(value, name.FlagName(), usage)
	bind(v, flags, name, value.String())
}

func registerConfig(v *viper.Viper, flags *pflag.FlagSet) {
	v.SetTypeByDefaultValue(true)

	defaults := defaultToolConfig()
	name := func(components ...string) configKey { return components }

	registerString(v, flags, name("config-file"),
		defaults.ConfigFile, "location of the tool config file")

	registerString(v, flags, name("log", "level"),
		defaults.Log.Level, "choose logging level from [trace, debug, info, warn, error, fatal]")
	registerBool(v, flags, name("log", "color"),
		defaults.Log.Color, "output logs in color")
	registerBool(v, flags, name("log", "json"),
		defaults.Log.JSON, "output logs as JSON")

	policy := defaults.DuplicatePolicy
	registerValue(v, flags, name("duplicate-policy"),
		&policy, "what to do with repeated keys in a document, one of [reject, last]")
	registerString(v, flags, name("work-dir"),
		defaults.WorkDir, "directory aux_configs paths are resolved against first")
	registerStringArray(v, flags, name("set"),
		defaults.Set, "override a value of the primary config, as section.key=value; "+
			"the value is YAML, e.g. 'custom_datasets.roots=[/data/a, /data/b]'")
}

// applyFlagOverrides takes repeated flags from the parsed flag set rather than viper, which
// splits their values on commas.
func applyFlagOverrides(config *toolConfig, flags *pflag.FlagSet) error {
	if f := flags.Lookup(configKey{"set"}.FlagName()); f == nil || !f.Changed {
		return nil
	}
	set, err := flags.GetStringArray(configKey{"set"}.FlagName())
	if err != nil {
		return errors.Wrap(err, "reading --set")
	}
	config.Set = set
	return nil
}

// initializeConfig returns the validated tool configuration populated from the config file,
// environment variables and command line flags.
func initializeConfig(v *viper.Viper) (*toolConfig, error) {
	// The first pass only finds the config file.
	initialConfig, err := getConfig(v.AllSettings())
	if err != nil {
		return nil, err
	}

	bs, err := readConfigFile(initialConfig.ConfigFile)
	if err != nil {
		return nil, err
	}
	if err = mergeConfigBytesIntoViper(v, bs); err != nil {
		return nil, err
	}

	config, err := getConfig(v.AllSettings())
	if err != nil {
		return nil, err
	}
	if err := check.Validate(config); err != nil {
		return nil, err
	}
	return config, nil
}

func readConfigFile(configPath string) ([]byte, error) {
	isDefault := configPath == ""
	if isDefault {
		configPath = defaultConfigPath
	}

	if _, err := os.Stat(configPath); err != nil {
		if isDefault && os.IsNotExist(err) {
			log.Debugf("no tool config file at %s, skipping", configPath)
			return nil, nil
		}
		return nil, errors.Wrap(err, "error finding tool config file")
	}
	bs, err := os.ReadFile(configPath) //nolint:gosec
	if err != nil {
		return nil, errors.Wrap(err, "error reading tool config file")
	}
	return bs, nil
}

func mergeConfigBytesIntoViper(v *viper.Viper, bs []byte) error {
	var configMap map[string]interface{}
	if err := yaml.Unmarshal(bs, &configMap); err != nil {
		return errors.Wrap(err, "error unmarshal yaml tool config file")
	}
	if err := v.MergeConfigMap(configMap); err != nil {
		return errors.Wrap(err, "error merge tool config to viper")
	}
	return nil
}

func getConfig(configMap map[string]interface{}) (*toolConfig, error) {
	config := defaultToolConfig()
	bs, err := json.Marshal(configMap)
	if err != nil {
		return nil, errors.Wrap(err, "cannot marshal tool config map into json bytes")
	}
	if err = yaml.Unmarshal(bs, config, yaml.DisallowUnknownFields); err != nil {
		return nil, errors.Wrap(err, "cannot unmarshal tool config")
	}
	return config, nil
}
