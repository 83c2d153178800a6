// Package config loads dirsize defaults from global and local YAML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/tyemirov/dirsize/internal/utils"
)

const (
	skippedConfigurationMessage = "ignoring unreadable configuration file"
	pathFieldName               = "path"
)

// LoadOptions controls how application configuration is discovered.
// Logger receives warnings for implicit files that cannot be loaded; nil discards them.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
	Logger           *zap.Logger
}

// ApplicationConfiguration holds report defaults. Nil pointers mean "not set".
type ApplicationConfiguration struct {
	Format        string `mapstructure:"format"`
	ShowErrors    *bool  `mapstructure:"show_errors"`
	StrictExit    *bool  `mapstructure:"strict_exit"`
	Clipboard     *bool  `mapstructure:"clipboard"`
	ReadBatchSize *int   `mapstructure:"read_batch_size"`
}

// LoadApplicationConfiguration loads configuration from the global file, then the
// local or explicit file, with later sources overriding earlier ones.
// Only an explicit file that fails to load is an error; implicit files that fail
// are logged and skipped.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
		merged = merged.Merge(loadImplicitConfiguration(logger, globalPath))
	}

	if options.ExplicitFilePath != "" {
		explicitPath, resolveErr := resolveExplicitConfigPath(workingDirectory, options.ExplicitFilePath)
		if resolveErr != nil {
			return ApplicationConfiguration{}, resolveErr
		}
		if _, statErr := os.Stat(explicitPath); statErr != nil {
			return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", explicitPath, statErr)
		}
		explicitConfig, loadErr := loadConfigurationFromPath(explicitPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		return merged.Merge(explicitConfig), nil
	}

	localPath := filepath.Join(workingDirectory, utils.LocalConfigFileName)
	return merged.Merge(loadImplicitConfiguration(logger, localPath)), nil
}

// loadImplicitConfiguration loads a file the user did not name, returning an empty
// configuration when it is missing or unusable.
func loadImplicitConfiguration(logger *zap.Logger, path string) ApplicationConfiguration {
	loaded, loadErr := loadConfigurationFromPath(path)
	if loadErr != nil {
		logger.Warn(skippedConfigurationMessage, zap.String(pathFieldName, path), zap.Error(loadErr))
		return ApplicationConfiguration{}
	}
	return loaded
}

func resolveExplicitConfigPath(workingDirectory, explicitPath string) (string, error) {
	if filepath.IsAbs(explicitPath) {
		return explicitPath, nil
	}
	if workingDirectory == "" {
		absolute, err := filepath.Abs(explicitPath)
		if err != nil {
			return "", fmt.Errorf("resolve configuration path %s: %w", explicitPath, err)
		}
		return absolute, nil
	}
	return filepath.Join(workingDirectory, explicitPath), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.ShowErrors != nil {
		result.ShowErrors = cloneBool(override.ShowErrors)
	}
	if override.StrictExit != nil {
		result.StrictExit = cloneBool(override.StrictExit)
	}
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	if override.ReadBatchSize != nil {
		result.ReadBatchSize = cloneInt(override.ReadBatchSize)
	}
	return result
}

// BoolOrDefault dereferences value, returning fallback when it is unset.
func BoolOrDefault(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

// IntOrDefault dereferences value, returning fallback when it is unset.
func IntOrDefault(value *int, fallback int) int {
	if value == nil {
		return fallback
	}
	return *value
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
