package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/duautomation/diagrunner/internal/config"
	"github.com/duautomation/diagrunner/internal/deviceupdate"
	"github.com/duautomation/diagrunner/internal/logger"
	"github.com/duautomation/diagrunner/internal/report"
	"github.com/duautomation/diagrunner/internal/scenario"
	duerrors "github.com/duautomation/diagrunner/pkg/errors"
)

type runOptions struct {
	ScenarioPath string
	Verbose      bool
	JSON         bool
	ReportDir    string
	Timeout      time.Duration
}

func newRunCmd(root *rootFlags) *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "run <scenario-file>",
		Short: "Run a diagnostics scenario and write a JUnit report",
		Long: `Run waits for the scenario's device to connect, triggers a diagnostics
log collection operation, polls it to a terminal state, and verifies the
per-device outcome. The JUnit report is written regardless of pass/fail.
Exit code 0 means the scenario passed, 1 that it failed, 2 that the
configuration was invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ScenarioPath = args[0]
			opts.Verbose = root.verbose
			opts.JSON = root.jsonOut

			return runScenario(opts)
		},
	}

	cmd.Flags().StringVar(&opts.ReportDir, "report-dir", "./testresults", "Directory the JUnit report is written to")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "Overall deadline for the run; 0 disables it")

	return cmd
}

func runScenario(opts runOptions) error {
	result, reportPath, err := executeScenario(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCodeFor(err))
	}

	if opts.JSON {
		printJSONSummary(os.Stdout, result, reportPath)
	} else {
		printSummary(os.Stdout, result, reportPath, stdoutIsTerminal())
	}

	if !result.Passed() {
		os.Exit(1)
	}
	return nil
}

// executeScenario runs the whole flow short of printing and exiting, so
// tests can drive it directly. Extra client options let tests point the
// runner at a local server.
func executeScenario(opts runOptions, clientOpts ...deviceupdate.Option) (*scenario.Result, string, error) {
	svcCfg, err := config.ServiceConfigFromEnvironment()
	if err != nil {
		return nil, "", err
	}

	sc, err := config.ParseScenario(opts.ScenarioPath)
	if err != nil {
		return nil, "", err
	}

	level := "info"
	if opts.Verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Options{Level: level, HumanReadable: !opts.JSON})
	if err != nil {
		return nil, "", err
	}

	client, err := deviceupdate.New(svcCfg, clientOpts...)
	if err != nil {
		return nil, "", err
	}

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	log.Info("starting scenario",
		"scenario", sc.Name,
		"device_id", sc.DeviceID,
		"operation_id", sc.OperationID)

	result := scenario.NewRunner(client, sc, log).Run(ctx)

	reportPath, err := report.Write(opts.ReportDir, sc.ResultFilePrefix, report.FromResult(result))
	if err != nil {
		return result, "", err
	}

	log.Info("scenario finished",
		"scenario", sc.Name,
		"passed", result.Passed(),
		"report", reportPath)

	return result, reportPath, nil
}

// exitCodeFor maps setup failures to exit codes: 2 for configuration
// problems, 3 for everything else that prevented a run.
func exitCodeFor(err error) int {
	var parseErr *duerrors.ParseError
	var validationErr *duerrors.ValidationError
	if errors.As(err, &parseErr) || errors.As(err, &validationErr) {
		return 2
	}
	return 3
}
