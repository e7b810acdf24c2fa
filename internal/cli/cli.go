package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/confwatch/internal/app"
	"github.com/vk/confwatch/internal/compiler"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("confwatch", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
confwatch - render versioned tmux configs and assemble .zshrc from fragments.

Usage:
  confwatch [options] [render|watch]

Commands:
  render  Build every target once (default).
  watch   Build every target, then rebuild it whenever its sources change.

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "confwatch.hcl", "Path to the config file or a directory of .hcl files.")
	cFlag := flagSet.String("c", "", "Path to the config file or directory (shorthand).")
	onlyFlag := flagSet.String("only", "", "Comma separated target names to build. Empty builds all.")
	envFileFlag := flagSet.String("env-file", "", "Optional .env file consulted for forwarded variables not set in the environment.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server in watch mode. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	keepGoingFlag := flagSet.Bool("keep-going", false, "In watch mode, report failed builds and keep watching instead of exiting.")
	settleFlag := flagSet.Duration("settle", compiler.DefaultSettleDelay, "How long a changed file must stay quiet before a rebuild.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("too many arguments: %s", strings.Join(flagSet.Args(), " "))}
	}
	command := app.CommandRender
	if flagSet.NArg() == 1 {
		command = flagSet.Arg(0)
	}
	if command == "help" {
		flagSet.Usage()
		return nil, true, nil
	}

	path := *configFlag
	if *cFlag != "" {
		path = *cFlag
	}
	slog.Debug("Config path determined.", "path", path, "command", command)

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ConfigPath:      path,
		Command:         command,
		Only:            splitList(*onlyFlag),
		EnvFile:         *envFileFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		KeepGoing:       *keepGoingFlag,
		HealthcheckPort: *healthPortFlag,
		SettleDelay:     *settleFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
