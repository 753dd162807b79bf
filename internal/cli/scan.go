package cli

import (
	"errors"
	"fmt"
	"strings"

	"breaktime.service/internal/core"
	"github.com/spf13/cobra"
)

func newScanCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <token>",
		Short: "Record a scan as if it came from the kiosk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResult(cmd, s.App().Breaks.Scan(cmd.Context(), args[0]))
		},
	}
}

func newMigrateCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the tables if they do not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.App().Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
			return nil
		},
	}
}

// printResult prints a scan outcome. A failed outcome is returned as an error so the
// process exits non-zero.
func printResult(cmd *cobra.Command, res core.ScanResult) error {
	fmt.Fprintln(cmd.OutOrStdout(), res.Message)
	for _, w := range res.Warnings {
		fmt.Fprintf(cmd.OutOrStdout(), "warning: %s\n", w)
	}
	if res.Success {
		return nil
	}
	msg := res.Reason
	if res.Detail != "" {
		msg = strings.Join([]string{res.Reason, res.Detail}, ": ")
	}
	return errors.New(msg)
}
