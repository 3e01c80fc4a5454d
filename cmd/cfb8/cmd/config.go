package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Log level constants
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Settings holds everything a cfb8 run needs. Values come from flags, then
// CFB8_* environment variables, then cfb8.yaml.
type Settings struct {
	Key    string `mapstructure:"key" validate:"omitempty,hexadecimal"`
	In     string `mapstructure:"in"`
	Out    string `mapstructure:"out"`
	Chunk  int    `mapstructure:"chunk" validate:"gte=1,lte=16777216"`
	Size   int64  `mapstructure:"size" validate:"gte=0"`
	Strict bool   `mapstructure:"strict"`

	LogLevel      string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFile       string `mapstructure:"log_file"`
	LogMaxSize    int    `mapstructure:"log_max_size" validate:"gte=1,lte=100"`
	LogMaxBackups int    `mapstructure:"log_max_backups" validate:"gte=0,lte=10"`
	LogMaxAge     int    `mapstructure:"log_max_age" validate:"gte=0,lte=365"`
}

// Validate checks that all fields in Settings are valid
func (s *Settings) Validate() error {
	validate := validator.New()

	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("validation failed for Settings: %w", err)
	}
	return nil
}

// loadSettings merges config file, environment and flags into Settings.
func loadSettings(v *viper.Viper, flags *pflag.FlagSet, configFile string) (*Settings, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("cfb8")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.cfb8")
	}

	v.SetEnvPrefix("CFB8")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" || f.Name == "help" {
			return
		}
		if err := v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f); err != nil && bindErr == nil {
			bindErr = err
		}
	})
	if bindErr != nil {
		return nil, bindErr
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
