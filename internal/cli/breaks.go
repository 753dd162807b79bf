package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newBreaksCmd(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "breaks",
		Short: "Inspect and close active breaks",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List employees currently on break",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			views, err := s.App().Breaks.ActiveBreaks(cmd.Context())
			if err != nil {
				return err
			}
			if len(views) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nobody is on break.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCODE\tNAME\tSINCE\tELAPSED\tESTIMATE\tREMAINING")
			for _, v := range views {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d min\t%s\t%d min\n",
					v.ActiveBreakID, v.EmployeeCode, v.EmployeeName, v.StartedLocal,
					v.ElapsedMinutes, v.Category, v.RemainingMinutes)
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "close <active-break-id>",
		Short: "Force-close an active break",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return printResult(cmd, s.App().Breaks.ForceClose(cmd.Context(), id))
		},
	})

	return cmd
}
