package internal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	StorageModeDisk   = "disk"
	StorageModeMemory = "memory"
)

var ErrBadStorageMode = errors.New("config: storage.mode must be disk or memory")

type MyDBConfig struct {
	AppName string `mapstructure:"app_name"`

	Storage struct {
		Mode       string `mapstructure:"mode"`
		DataDir    string `mapstructure:"data_dir"`
		SyncWrites bool   `mapstructure:"sync_writes"`
	} `mapstructure:"storage"`

	Log LogConfig `mapstructure:"log"`

	Repl struct {
		Prompt      string `mapstructure:"prompt"`
		HistoryFile string `mapstructure:"history_file"`
	} `mapstructure:"repl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console | json

	// Filename enables a rotating file sink; empty logs to stderr.
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxDays    int    `mapstructure:"max_days"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "mydb")
	v.SetDefault("storage.mode", StorageModeDisk)
	v.SetDefault("storage.data_dir", "DB")
	v.SetDefault("storage.sync_writes", false)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.filename", "")
	v.SetDefault("log.max_size", 64)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_days", 7)
	v.SetDefault("repl.prompt", "MY_DB> ")
	v.SetDefault("repl.history_file", "")
}

// DefaultConfig returns the built-in defaults without reading env or files.
func DefaultConfig() *MyDBConfig {
	v := viper.New()
	setDefaults(v)
	var cfg MyDBConfig
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// LoadConfig reads the YAML file at path (optional: empty path means
// defaults only), then applies MYDB_* environment variables and any flags
// bound from fs.
func LoadConfig(path string, fs *pflag.FlagSet) (*MyDBConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("MYDB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if fs != nil {
		if err := bindFlags(v, fs); err != nil {
			return nil, err
		}
	}

	var cfg MyDBConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"data-dir":  "storage.data_dir",
	"memory":    "storage.mode",
	"sync":      "storage.sync_writes",
	"log-level": "log.level",
	"log-file":  "log.filename",
	"history":   "repl.history_file",
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if name == "memory" {
			// Boolean switch for the string mode key.
			if f.Changed && f.Value.String() == "true" {
				v.Set(key, StorageModeMemory)
			}
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

func (c *MyDBConfig) Validate() error {
	switch c.Storage.Mode {
	case StorageModeDisk, StorageModeMemory:
		return nil
	default:
		return fmt.Errorf("%w: got %q", ErrBadStorageMode, c.Storage.Mode)
	}
}
