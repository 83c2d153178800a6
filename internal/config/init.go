package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/tyemirov/dirsize/internal/types"
	"github.com/tyemirov/dirsize/internal/utils"
)

// InitTarget identifies where configuration should be initialized.
type InitTarget string

const (
	// InitTargetLocal writes configuration into the working directory.
	InitTargetLocal InitTarget = "local"
	// InitTargetGlobal writes configuration into the global configuration directory.
	InitTargetGlobal InitTarget = "global"

	formatKey        = "format"
	showErrorsKey    = "show_errors"
	strictExitKey    = "strict_exit"
	clipboardKey     = "clipboard"
	readBatchSizeKey = "read_batch_size"

	// DefaultFormat is the report format used when neither flags nor files choose one.
	DefaultFormat = types.FormatRaw
	// DefaultReadBatchSize is the number of entry names requested per directory read.
	DefaultReadBatchSize = 256
)

// InitOptions controls how configuration initialization behaves.
type InitOptions struct {
	Target           InitTarget
	Force            bool
	WorkingDirectory string
}

// DefaultConfiguration returns the values written by InitializeConfiguration.
func DefaultConfiguration() ApplicationConfiguration {
	showErrors := false
	strictExit := false
	clipboard := false
	readBatchSize := DefaultReadBatchSize
	return ApplicationConfiguration{
		Format:        DefaultFormat,
		ShowErrors:    &showErrors,
		StrictExit:    &strictExit,
		Clipboard:     &clipboard,
		ReadBatchSize: &readBatchSize,
	}
}

// InitializeConfiguration writes the default configuration to the requested target
// and returns the written path. Existing files are kept unless Force is set.
func InitializeConfiguration(options InitOptions) (string, error) {
	destinationPath, resolveErr := resolveInitDestination(options)
	if resolveErr != nil {
		return "", resolveErr
	}

	defaults := DefaultConfiguration()
	writer := viper.New()
	writer.SetConfigType("yaml")
	writer.Set(formatKey, defaults.Format)
	writer.Set(showErrorsKey, *defaults.ShowErrors)
	writer.Set(strictExitKey, *defaults.StrictExit)
	writer.Set(clipboardKey, *defaults.Clipboard)
	writer.Set(readBatchSizeKey, *defaults.ReadBatchSize)

	if options.Force {
		if writeErr := writer.WriteConfigAs(destinationPath); writeErr != nil {
			return "", fmt.Errorf("write configuration to %s: %w", destinationPath, writeErr)
		}
		return destinationPath, nil
	}

	if writeErr := writer.SafeWriteConfigAs(destinationPath); writeErr != nil {
		var existsErr viper.ConfigFileAlreadyExistsError
		if errors.As(writeErr, &existsErr) {
			return "", fmt.Errorf("configuration file already exists at %s", destinationPath)
		}
		return "", fmt.Errorf("write configuration to %s: %w", destinationPath, writeErr)
	}
	return destinationPath, nil
}

func resolveInitDestination(options InitOptions) (string, error) {
	switch options.Target {
	case InitTargetLocal, "":
		workingDirectory := options.WorkingDirectory
		if workingDirectory == "" {
			current, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf("determine working directory for configuration: %w", err)
			}
			workingDirectory = current
		}
		return filepath.Join(workingDirectory, utils.LocalConfigFileName), nil
	case InitTargetGlobal:
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory for configuration: %w", err)
		}
		configurationDirectory := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName)
		if err := os.MkdirAll(configurationDirectory, 0o755); err != nil {
			return "", fmt.Errorf("create configuration directory %s: %w", configurationDirectory, err)
		}
		return filepath.Join(configurationDirectory, utils.GlobalConfigFileName), nil
	default:
		return "", fmt.Errorf("unsupported init target %q", options.Target)
	}
}
