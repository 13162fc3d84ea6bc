package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/schemaflow/internal/cli"
	"github.com/matzehuels/schemaflow/pkg/errors"
)

// Environment variables read before flags are parsed. Flags win.
const (
	envConfig  = "SCHEMAFLOW_CONFIG"
	envVerbose = "SCHEMAFLOW_VERBOSE"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := run(ctx)
	code := cli.ExitCode(err)
	if code != cli.ExitOK && code != cli.ExitInterrupted {
		fmt.Fprintln(os.Stderr, "Error:", errors.UserMessage(err))
	}
	os.Exit(code)
}

func run(ctx context.Context) error {
	verbose, _ := strconv.ParseBool(os.Getenv(envVerbose))

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.SilenceErrors = true

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", verbose, "enable verbose logging (env "+envVerbose+")")
	if path := os.Getenv(envConfig); path != "" {
		if err := root.PersistentFlags().Set("config", path); err != nil {
			return err
		}
	}

	// Runs before the root hook so config loading is logged at debug level.
	configure := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		if configure != nil {
			return configure(cmd, args)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}
