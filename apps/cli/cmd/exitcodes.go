package cmd

// Exit codes for respext CLI
const (
	// ExitSuccess indicates the command succeeded
	ExitSuccess = 0

	// ExitFailure indicates any other failure
	ExitFailure = 1

	// ExitParseError indicates an invalid workspace or template file
	ExitParseError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitNetworkError indicates a network/connection error
	ExitNetworkError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)
