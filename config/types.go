package config

import (
	"github.com/spf13/viper"
)

type Validator interface {
	Validate() error
}

type Config struct {
	instance *viper.Viper
	opts     ConfigOptions
}

type ConfigOptions struct {
	BasePath  string
	FileName  string
	FileType  string
	EnvPrefix string
	// Optional allows an empty file cascade; values then come from
	// struct defaults and environment variables only.
	Optional bool
	// EnvKeys are bound to environment variables even when no file sets them.
	EnvKeys []string
}
