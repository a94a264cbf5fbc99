package commands

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-assistant-service/internal/app"
	"github.com/spf13/cobra"
)

func newExecCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <command text>",
		Short: "Run one command",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			return withApp(cmd.Context(), opts, func(a *app.App) error {
				res := a.Dispatcher.Process(cmd.Context(), text)
				if err := printResult(cmd.OutOrStdout(), opts, res); err != nil {
					return err
				}
				if !res.Success {
					return fmt.Errorf("command failed (%s)", res.WorkflowID)
				}
				return nil
			})
		},
	}
}

func newReplCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Read commands from stdin until EOF or \"exit\"",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), opts, func(a *app.App) error {
				out := cmd.OutOrStdout()
				scanner := bufio.NewScanner(cmd.InOrStdin())
				fmt.Fprint(out, "> ")
				for scanner.Scan() {
					line := strings.TrimSpace(scanner.Text())
					switch line {
					case "":
					case "exit", "quit", "salir":
						return nil
					default:
						if err := printResult(out, opts, a.Dispatcher.Process(cmd.Context(), line)); err != nil {
							return err
						}
					}
					fmt.Fprint(out, "> ")
				}
				return scanner.Err()
			})
		},
	}
}
