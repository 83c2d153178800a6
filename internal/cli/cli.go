// Package cli provides the command line interface.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/dirsize/internal/config"
	"github.com/tyemirov/dirsize/internal/output"
	"github.com/tyemirov/dirsize/internal/services/clipboard"
	"github.com/tyemirov/dirsize/internal/tree"
	"github.com/tyemirov/dirsize/internal/utils"
)

const (
	rootUse              = "dirsize [path]"
	rootShortDescription = "print a directory tree annotated with sizes"
	rootLongDescription  = `dirsize walks a directory recursively and prints every directory with its
aggregate size in bytes, followed by its files and then its subdirectories.
The current working directory is used when no path is given.
Entries that cannot be read are skipped; use --errors to list them.`
	rootUsageExample = `  # Report the current directory
  dirsize

  # Report a directory as JSON and list unreadable entries
  dirsize --format json --errors /var/log`

	formatFlagName      = "format"
	showErrorsFlagName  = "errors"
	strictExitFlagName  = "strict-exit"
	copyFlagName        = "copy"
	configFlagName      = "config"
	initConfigFlagName  = "init-config"
	verboseFlagName     = "verbose"
	versionFlagName     = "version"
	globalFlagName      = "global"
	forceFlagName       = "force"
	formatFlagShorthand = "f"

	formatFlagDescription     = "output format (raw, json, xml)"
	showErrorsFlagDescription = "list unreadable entries in raw output"
	strictExitFlagDescription = "exit with a non-zero status when the root cannot be read"
	copyFlagDescription       = "also copy the report to the clipboard"
	configFlagDescription     = "configuration file to load instead of ./" + utils.LocalConfigFileName
	initConfigFlagDescription = "write a default configuration file and exit"
	verboseFlagDescription    = "log every skipped entry to stderr"
	versionFlagDescription    = "display application version"
	globalFlagDescription     = "with --init-config, write to the global configuration directory"
	forceFlagDescription      = "with --init-config, overwrite an existing configuration file"

	// rootFailureText is printed to stdout when the traversal root cannot be read.
	rootFailureText = "error has occurred"

	versionTemplate               = "dirsize version: %s\n"
	configWrittenTemplate         = "configuration written to %s\n"
	invalidFormatMessage          = "invalid format value '%s'"
	initModifierWithoutInitFormat = "--%s requires --" + initConfigFlagName
	workingDirectoryErrorFormat   = "unable to determine working directory: %w"
	loadConfigurationFormat       = "loading configuration: %w"
	rootUnreadableFormat          = "reading %s: %w"
	renderFailedFormat            = "rendering tree: %w"
	loggerInitializationFormat    = "initializing logger: %w"

	rootUnreadableLogMessage = "unable to read traversal root"
	clipboardFailedMessage   = "unable to copy report to clipboard"
	ignoredFormatMessage     = "ignoring unsupported configured format"
	treeBuiltMessage         = "tree built"
)

// Dependencies supplies the collaborators of the root command.
// Zero fields fall back to the process environment.
type Dependencies struct {
	Stdout           io.Writer
	Filesystem       afero.Fs
	Copier           clipboard.Copier
	NewLogger        func(verbose bool) (*zap.Logger, error)
	WorkingDirectory func() (string, error)
}

func (dependencies Dependencies) withDefaults() Dependencies {
	if dependencies.Stdout == nil {
		dependencies.Stdout = os.Stdout
	}
	if dependencies.Filesystem == nil {
		dependencies.Filesystem = afero.NewOsFs()
	}
	if dependencies.Copier == nil {
		dependencies.Copier = clipboard.NewService()
	}
	if dependencies.NewLogger == nil {
		dependencies.NewLogger = utils.NewApplicationLogger
	}
	if dependencies.WorkingDirectory == nil {
		dependencies.WorkingDirectory = os.Getwd
	}
	return dependencies
}

// Execute runs the dirsize application.
func Execute() error {
	return NewRootCommand(Dependencies{}).Execute()
}

// reportOptions stores flag values for the root command.
type reportOptions struct {
	format       string
	showErrors   bool
	strictExit   bool
	copyToBuffer bool
	configPath   string
	verbose      bool
	showVersion  bool
	initConfig   bool
	initGlobal   bool
	initForce    bool
}

// resolvedReport is the outcome of merging flags over configuration.
type resolvedReport struct {
	format        string
	showErrors    bool
	strictExit    bool
	copyToBuffer  bool
	readBatchSize int
}

// NewRootCommand builds the root Cobra command.
func NewRootCommand(dependencies Dependencies) *cobra.Command {
	dependencies = dependencies.withDefaults()
	var options reportOptions

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Example:       rootUsageExample,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if options.showVersion {
				_, writeError := fmt.Fprintf(dependencies.Stdout, versionTemplate, utils.GetApplicationVersion())
				return writeError
			}
			if options.initConfig {
				return runInitConfiguration(dependencies, options)
			}
			for _, modifierName := range []string{globalFlagName, forceFlagName} {
				if command.Flags().Changed(modifierName) {
					return fmt.Errorf(initModifierWithoutInitFormat, modifierName)
				}
			}
			return runReport(command, dependencies, options, arguments)
		},
	}

	flagSet := rootCommand.Flags()
	flagSet.StringVarP(&options.format, formatFlagName, formatFlagShorthand, config.DefaultFormat, formatFlagDescription)
	flagSet.StringVar(&options.configPath, configFlagName, "", configFlagDescription)
	registerBooleanFlag(flagSet, &options.showErrors, showErrorsFlagName, false, showErrorsFlagDescription)
	registerBooleanFlag(flagSet, &options.strictExit, strictExitFlagName, false, strictExitFlagDescription)
	registerBooleanFlag(flagSet, &options.copyToBuffer, copyFlagName, false, copyFlagDescription)
	registerBooleanFlag(flagSet, &options.verbose, verboseFlagName, false, verboseFlagDescription)
	registerBooleanFlag(flagSet, &options.showVersion, versionFlagName, false, versionFlagDescription)
	registerBooleanFlag(flagSet, &options.initConfig, initConfigFlagName, false, initConfigFlagDescription)
	registerBooleanFlag(flagSet, &options.initGlobal, globalFlagName, false, globalFlagDescription)
	registerBooleanFlag(flagSet, &options.initForce, forceFlagName, false, forceFlagDescription)

	rootCommand.SetOut(dependencies.Stdout)
	return rootCommand
}

// runReport builds the tree for the requested root and renders it.
func runReport(command *cobra.Command, dependencies Dependencies, options reportOptions, arguments []string) error {
	logger, loggerError := dependencies.NewLogger(options.verbose)
	if loggerError != nil {
		return fmt.Errorf(loggerInitializationFormat, loggerError)
	}
	defer func() {
		_ = logger.Sync()
	}()

	workingDirectory, workingDirectoryError := dependencies.WorkingDirectory()
	if workingDirectoryError != nil {
		return fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
	}

	applicationConfiguration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: options.configPath,
		Logger:           logger,
	})
	if loadError != nil {
		return fmt.Errorf(loadConfigurationFormat, loadError)
	}

	report := resolveReport(command, options, applicationConfiguration)
	if !output.IsSupportedFormat(report.format) {
		if command.Flags().Changed(formatFlagName) {
			return fmt.Errorf(invalidFormatMessage, report.format)
		}
		logger.Warn(ignoredFormatMessage, zap.String(formatFlagName, report.format))
		report.format = config.DefaultFormat
	}

	rootPath := workingDirectory
	if len(arguments) > 0 {
		rootPath = arguments[0]
	}

	builder := tree.NewBuilder(dependencies.Filesystem, logger)
	builder.ReadBatchSize = report.readBatchSize
	rootNode, buildError := builder.Build(rootPath, rootPath)
	if buildError != nil {
		logger.Error(rootUnreadableLogMessage, zap.String("path", rootPath), zap.Error(buildError))
		if _, writeError := io.WriteString(dependencies.Stdout, rootFailureText); writeError != nil {
			return writeError
		}
		if report.strictExit {
			return fmt.Errorf(rootUnreadableFormat, rootPath, buildError)
		}
		return nil
	}
	logger.Debug(treeBuiltMessage, zap.String("root", rootNode.Name), zap.Int64("size", rootNode.Size))

	destination := dependencies.Stdout
	var copied strings.Builder
	if report.copyToBuffer {
		destination = io.MultiWriter(dependencies.Stdout, &copied)
	}
	if renderError := output.Render(destination, rootNode, report.format, output.RawOptions{ShowErrors: report.showErrors}); renderError != nil {
		return fmt.Errorf(renderFailedFormat, renderError)
	}
	if report.copyToBuffer {
		if copyError := dependencies.Copier.Copy(copied.String()); copyError != nil {
			logger.Warn(clipboardFailedMessage, zap.Error(copyError))
		}
	}
	return nil
}

// resolveReport merges explicitly set flags over configuration defaults.
func resolveReport(command *cobra.Command, options reportOptions, configuration config.ApplicationConfiguration) resolvedReport {
	flagSet := command.Flags()
	format := config.DefaultFormat
	if configuration.Format != "" {
		format = configuration.Format
	}
	if flagSet.Changed(formatFlagName) {
		format = options.format
	}
	readBatchSize := config.IntOrDefault(configuration.ReadBatchSize, config.DefaultReadBatchSize)
	if readBatchSize <= 0 {
		readBatchSize = tree.DefaultReadBatchSize
	}
	return resolvedReport{
		format:        strings.ToLower(strings.TrimSpace(format)),
		showErrors:    resolveBooleanSetting(flagSet, showErrorsFlagName, options.showErrors, configuration.ShowErrors, false),
		strictExit:    resolveBooleanSetting(flagSet, strictExitFlagName, options.strictExit, configuration.StrictExit, false),
		copyToBuffer:  resolveBooleanSetting(flagSet, copyFlagName, options.copyToBuffer, configuration.Clipboard, false),
		readBatchSize: readBatchSize,
	}
}

// runInitConfiguration writes the default configuration file requested by --init-config.
func runInitConfiguration(dependencies Dependencies, options reportOptions) error {
	workingDirectory, workingDirectoryError := dependencies.WorkingDirectory()
	if workingDirectoryError != nil {
		return fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
	}
	target := config.InitTargetLocal
	if options.initGlobal {
		target = config.InitTargetGlobal
	}
	writtenPath, initError := config.InitializeConfiguration(config.InitOptions{
		Target:           target,
		Force:            options.initForce,
		WorkingDirectory: workingDirectory,
	})
	if initError != nil {
		return initError
	}
	_, writeError := fmt.Fprintf(dependencies.Stdout, configWrittenTemplate, writtenPath)
	return writeError
}
