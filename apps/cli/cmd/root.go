package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// Persistent flags shared by every command
var (
	configFlag    string
	databaseFlag  string
	bodyDirFlag   string
	outputFlag    string
	noColorFlag   bool
	logLevelFlag  string
	logFormatFlag string
	proxyFlag     string
	insecureFlag  bool
	timeoutFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "respext",
	Short: "Pull values out of stored API responses.",
	Long: `respext stores HTTP requests and their responses and extracts values
from them: OAuth2 token details, response metadata and JSON body fields,
addressed with simple JSONPath filters. Extractions can trigger a send
first, depending on the trigger behavior (smart, always, never).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitError carries the process exit code of a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	return ExitFailure
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFlag, "config", getEnvString("RESPEXT_CONFIG", ""), "Path to config file (env: RESPEXT_CONFIG)")
	flags.StringVar(&databaseFlag, "database", "", "Database connection string, or \"memory\" (env: RESPEXT_DATABASE)")
	flags.StringVar(&bodyDirFlag, "body-dir", "", "Directory for response body files (env: RESPEXT_BODY_DIR)")
	flags.StringVarP(&outputFlag, "output", "o", getEnvString("RESPEXT_OUTPUT", "console"), "Output format: console, json (env: RESPEXT_OUTPUT)")
	flags.BoolVar(&noColorFlag, "no-color", false, "Disable colored output (env: RESPEXT_NO_COLOR, NO_COLOR)")
	flags.StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error (env: RESPEXT_LOG_LEVEL)")
	flags.StringVar(&logFormatFlag, "log-format", "", "Log format: text, json (env: RESPEXT_LOG_FORMAT)")
	flags.StringVar(&proxyFlag, "proxy", "", "Proxy URL for HTTP requests (env: RESPEXT_PROXY)")
	flags.BoolVarP(&insecureFlag, "insecure", "k", false, "Disable SSL certificate validation")
	flags.StringVar(&timeoutFlag, "timeout", "", "Request timeout (e.g., 30s, 1m) (env: RESPEXT_TIMEOUT in ms)")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(requestsCmd)
	rootCmd.AddCommand(responsesCmd)
	rootCmd.AddCommand(functionsCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
