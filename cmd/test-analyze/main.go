package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/taskrank/internal/testanalyze"
)

const defaultGenerateCount = 25

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := &testanalyze.Config{}

	root := &cobra.Command{
		Use:   "test-analyze",
		Short: "Post a sample task file to the ranking API and print the response",
		Long: `test-analyze reads a JSON task file, posts it to the analyze or suggest
endpoint of a running taskrank server and prints the status, content type
and a pretty-printed body.`,
		Example: `  test-analyze
  test-analyze --file tasks.json --endpoint suggest --format yaml
  test-analyze generate --count 100 --out sample_tasks.json`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			closeLog, err := testanalyze.SetupLogging(cfg.LogFile, cfg.Verbose)
			if err != nil {
				return err
			}
			defer func() { _ = closeLog() }()
			return testanalyze.Run(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	flags := root.Flags()
	flags.StringVar(&cfg.BaseURL, "url", testanalyze.DefaultBaseURL, "base URL of the service")
	flags.StringVarP(&cfg.File, "file", "f", testanalyze.DefaultFile, "sample task file to post")
	flags.StringVarP(&cfg.Endpoint, "endpoint", "e", testanalyze.EndpointAnalyze, "endpoint to call: analyze or suggest")
	flags.DurationVar(&cfg.Timeout, "timeout", testanalyze.DefaultTimeout, "HTTP request timeout")
	flags.StringVar(&cfg.Format, "format", testanalyze.FormatJSON, "output format: json or yaml")
	flags.StringVar(&cfg.LogFile, "log", "", "also write logs to this file")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newGenerateCmd())
	return root
}

func newGenerateCmd() *cobra.Command {
	var (
		count int
		out   string
		seed  uint64
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a random, acyclic sample task file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be positive, got %d", count)
			}
			if seed == 0 {
				seed = uint64(time.Now().UnixNano())
			}
			rnd := rand.New(rand.NewPCG(seed, seed>>1))
			sample := testanalyze.Generate(count, time.Now(), rnd)
			if err := testanalyze.WriteSample(out, sample); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %d tasks to %s\n", count, out)
			return err
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", defaultGenerateCount, "number of tasks")
	cmd.Flags().StringVarP(&out, "out", "o", testanalyze.DefaultFile, "output file")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 picks one)")
	return cmd
}
