package utils

// LoggerInitializationFailedMessageFormat reports that the application logger could not be built.
const LoggerInitializationFailedMessageFormat = "initialize logger: %w"

// ApplicationExecutionFailedMessage prefixes fatal errors returned by the command line interface.
const ApplicationExecutionFailedMessage = "scout failed"

// CommandPreviewLength bounds the command output shown in log previews.
const CommandPreviewLength = 100
