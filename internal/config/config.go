// Package config loads config.yaml and CRAFT_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Novaotic/craft-compass/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	// EnvPrefix prefixes environment overrides, e.g. CRAFT_LOG_LEVEL.
	EnvPrefix = "CRAFT"
)

// Config keys.
const (
	KeyDataDir              = "data_dir"
	KeyDBFile               = "db_file"
	KeySupplierDeletePolicy = "supplier_delete_policy"
	KeyLogMode              = "log_mode"
	KeyLogLevel             = "log_level"
	KeyBackupDir            = "backup_dir"
)

// Default values for keys that are not part of types.Config.
const (
	DefaultLogMode  = "development"
	DefaultLogLevel = "warn"
)

// Settings is the loaded configuration.
type Settings struct {
	// Store is passed to Inventory.Attach. Store.DataDir holds the
	// data_dir value from the file only; the caller resolves the final
	// directory against flags and CRAFT_DATA_DIR.
	Store types.Config

	LogMode  string
	LogLevel string

	// BackupDir is where the backup command writes; empty means
	// <data_dir>/backups.
	BackupDir string

	// Path is the config file that was read, empty when none exists.
	Path string
}

// fileConfig mirrors config.yaml. It is decoded by viper and written by
// EnsureDefaultFile.
type fileConfig struct {
	DataDir              string `mapstructure:"data_dir" yaml:"data_dir,omitempty"`
	DBFile               string `mapstructure:"db_file" yaml:"db_file"`
	SupplierDeletePolicy string `mapstructure:"supplier_delete_policy" yaml:"supplier_delete_policy"`
	LogMode              string `mapstructure:"log_mode" yaml:"log_mode"`
	LogLevel             string `mapstructure:"log_level" yaml:"log_level"`
	BackupDir            string `mapstructure:"backup_dir" yaml:"backup_dir,omitempty"`
}

const defaultHeader = `# Craft Compass configuration.
# Every key can be overridden with a CRAFT_<KEY> environment variable,
# except data_dir, which yields to --data-dir and then CRAFT_DATA_DIR.
`

// Load reads config.yaml from configDir, creating the directory and a
// default file on first run. Keys missing from the file take their
// defaults; CRAFT_* variables override the file.
func Load(configDir string) (*Settings, error) {
	if err := EnsureDefaultFile(configDir); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetDefault(KeyDataDir, "")
	v.SetDefault(KeyDBFile, types.DefaultDBFile)
	v.SetDefault(KeySupplierDeletePolicy, types.DeletePolicyBlock)
	v.SetDefault(KeyLogMode, DefaultLogMode)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyBackupDir, "")

	v.SetEnvPrefix(EnvPrefix)
	for _, key := range []string{KeyDBFile, KeySupplierDeletePolicy, KeyLogMode, KeyLogLevel, KeyBackupDir} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	var path string
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		path = v.ConfigFileUsed()
	}

	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	s := &Settings{
		Store: types.Config{
			DataDir:              fc.DataDir,
			DBFile:               fc.DBFile,
			SupplierDeletePolicy: fc.SupplierDeletePolicy,
		},
		LogMode:   fc.LogMode,
		LogLevel:  fc.LogLevel,
		BackupDir: fc.BackupDir,
		Path:      path,
	}
	if err := s.Store.WithDefaults().Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return s, nil
}

// EnsureDefaultFile creates configDir and writes a default config.yaml
// into it unless one exists.
func EnsureDefaultFile(configDir string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	path := FilePath(configDir)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&fileConfig{
		DBFile:               types.DefaultDBFile,
		SupplierDeletePolicy: types.DeletePolicyBlock,
		LogMode:              DefaultLogMode,
		LogLevel:             DefaultLogLevel,
	})
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, append([]byte(defaultHeader), data...), 0o644)
}

// FilePath returns the config.yaml path inside configDir.
func FilePath(configDir string) string {
	return filepath.Join(configDir, configFileExt)
}
