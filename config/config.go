package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/creasty/defaults"
	"github.com/leeforge/resizer/env_mode"
	"github.com/leeforge/resizer/utils"
	"github.com/spf13/viper"
)

func DefaultConfigOptions() ConfigOptions {
	basePath := os.Getenv("CONFIG_PATH")
	if basePath == "" {
		basePath = "config"
	}

	return ConfigOptions{
		BasePath:  basePath,
		FileName:  "config",
		FileType:  "yaml",
		EnvPrefix: "RESIZER",
		Optional:  true,
	}
}

func NewConfig(optsArr ...ConfigOptions) (*Config, error) {
	var opts ConfigOptions
	if len(optsArr) == 0 {
		opts = DefaultConfigOptions()
	} else {
		opts = optsArr[0]
	}

	instance, err := CreateConfig(opts)
	if err != nil {
		return nil, err
	}

	return &Config{
		instance: instance,
		opts:     opts,
	}, nil
}

func (c *Config) Bind(instance any) error {
	if c == nil || c.instance == nil {
		return fmt.Errorf("config instance is nil")
	}

	if instance == nil {
		return fmt.Errorf("target instance is nil")
	}

	if err := c.instance.Unmarshal(instance); err != nil {
		return fmt.Errorf("failed to unmarshal config (path: %s, file: %s.%s): %w",
			c.opts.BasePath, c.opts.FileName, c.opts.FileType, err)
	}

	return nil
}

// BindWithDefaults applies `default` tags and then overlays configured
// values, so an explicit false or zero in a file is kept.
func (c *Config) BindWithDefaults(instance any) error {
	if err := defaults.Set(instance); err != nil {
		return fmt.Errorf("failed to set defaults: %w", err)
	}

	return c.Bind(instance)
}

func (c *Config) Get(key string) any {
	return c.instance.Get(key)
}

// Files returns the config files that were merged, in priority order.
func (c *Config) Files() []string {
	return getConfigFilePaths(c.opts)
}

func CreateConfig(opts ConfigOptions) (*viper.Viper, error) {
	configPaths := getConfigFilePaths(opts)
	if len(configPaths) == 0 && !opts.Optional {
		return nil, fmt.Errorf("no valid configuration files found in path: %s", opts.BasePath)
	}

	v := viper.New()
	v.SetConfigType(opts.FileType)

	for _, configPath := range configPaths {
		tempV := viper.New()
		tempV.SetConfigFile(configPath)
		if err := tempV.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configPath, err)
		}

		for _, key := range tempV.AllKeys() {
			v.Set(key, tempV.Get(key))
		}
	}

	v.SetEnvKeyReplacer(envKeyReplacer)
	if opts.EnvPrefix != "" {
		v.SetEnvPrefix(opts.EnvPrefix)
	}
	v.AutomaticEnv()
	for _, key := range opts.EnvKeys {
		_ = v.BindEnv(key)
	}

	// Environment variables win over file values
	applyEnvOverrides(v, opts.EnvPrefix)

	return v, nil
}

var envKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

// applyEnvOverrides overrides file keys with matching environment variables:
// resize.width -> RESIZER_RESIZE_WIDTH
func applyEnvOverrides(v *viper.Viper, envPrefix string) {
	for _, key := range v.AllKeys() {
		envKey := strings.ToUpper(envKeyReplacer.Replace(key))
		if envPrefix != "" {
			envKey = envPrefix + "_" + envKey
		}

		if envValue := os.Getenv(envKey); envValue != "" {
			v.Set(key, envValue)
		}
	}
}

func getConfigFilePaths(opts ConfigOptions) (configFiles []string) {
	env := string(env_mode.Mode())
	fileNames := []string{
		opts.FileName,
		fmt.Sprintf("%s.local", opts.FileName),
		fmt.Sprintf("%s.%s", opts.FileName, env),
		fmt.Sprintf("%s.%s.local", opts.FileName, env),
	}

	switch env_mode.Mode() {
	case env_mode.DevMode:
		fileNames = append(fileNames, fmt.Sprintf("%s.dev", opts.FileName))
		fileNames = append(fileNames, fmt.Sprintf("%s.dev.local", opts.FileName))
	case env_mode.ProMode:
		fileNames = append(fileNames, fmt.Sprintf("%s.prod", opts.FileName))
		fileNames = append(fileNames, fmt.Sprintf("%s.prod.local", opts.FileName))
	}

	for _, fileName := range fileNames {
		file := filepath.Join(opts.BasePath, fmt.Sprintf("%s.%s", fileName, opts.FileType))
		if isDir, exists, _ := utils.Exists(file); exists && !isDir {
			configFiles = append(configFiles, file)
		}
	}

	return configFiles
}
