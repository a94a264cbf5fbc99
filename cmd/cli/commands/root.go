package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fekuna/omnipos-assistant-service/config"
	"github.com/fekuna/omnipos-assistant-service/internal/app"
	"github.com/fekuna/omnipos-assistant-service/internal/chat"
	"github.com/fekuna/omnipos-assistant-service/internal/logger"
	"github.com/spf13/cobra"
)

type options struct {
	jsonOutput bool
	verbose    bool
}

// NewRootCmd builds the assistant CLI. Every subcommand runs the pipeline in process.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "assistant",
		Short: "OmniPOS assistant - run sales and inventory commands in plain language",
		Long: `Run natural language commands against the sales and inventory database.

Examples:
  assistant exec "add product Laptop, price $800, qty 10"
  assistant exec "sell 2 of Laptop to customer Ana"
  assistant repl
  assistant product delete 4 --cascade
  assistant order status 12 shipped`,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log to stderr")

	root.AddCommand(newExecCmd(opts), newReplCmd(opts), newProductCmd(opts), newOrderCmd(opts))
	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withApp loads configuration from the environment and hands a ready pipeline to fn.
func withApp(ctx context.Context, opts *options, fn func(*app.App) error) error {
	cfg, err := config.LoadEnv()
	if err != nil {
		return err
	}

	log := logger.NewNop()
	if opts.verbose {
		log = app.NewLogger(cfg)
	}

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func printResult(w io.Writer, opts *options, res chat.Result) error {
	if opts.jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	_, err := fmt.Fprintln(w, res.Text)
	return err
}
