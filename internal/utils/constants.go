package utils

const (
	// LocalConfigFileName is the configuration file looked up in the working directory.
	LocalConfigFileName = ".dirsize.yaml"
	// GlobalConfigFileName is the configuration file inside GlobalConfigDirectoryName.
	GlobalConfigFileName = "config.yaml"
	// GlobalConfigDirectoryName is the directory under the user's home that holds the global configuration.
	GlobalConfigDirectoryName = ".dirsize"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"

	// LoggerInitializationFailedMessageFormat reports a logger that could not be built.
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"
	// ApplicationExecutionFailedMessage prefixes a fatal command failure.
	ApplicationExecutionFailedMessage = "dirsize failed"
)
