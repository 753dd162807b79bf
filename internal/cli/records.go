package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"breaktime.service/internal/core"
	"breaktime.service/internal/core/model"
	"breaktime.service/internal/export"
	"github.com/spf13/cobra"
)

func newRecordsCmd(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect and export break records",
	}

	var (
		filter model.RecordFilter
		out    string
	)
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write break records as CSV",
		Long: `Write break records as CSV. Without --from the export covers the 30 days
up to --to (today by default). The file is named after the range unless --out is given;
--out - writes to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			admin := s.App().Admin
			f := admin.ResolveRange(filter, core.DefaultReportDays)

			rows, f, err := admin.Records(cmd.Context(), f)
			if err != nil {
				return err
			}

			target := out
			if target == "" {
				target = export.FileName(f.From, f.To)
			}

			var w io.Writer = cmd.OutOrStdout()
			if target != "-" {
				file, err := os.Create(target)
				if err != nil {
					return err
				}
				defer file.Close()
				w = file
			}

			if err := export.WriteRecords(w, rows); err != nil {
				return err
			}
			if target != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d records to %s\n", len(rows), target)
			}
			return nil
		},
	}
	recordFlags(exportCmd, &filter)
	exportCmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	cmd.AddCommand(exportCmd)

	return cmd
}

func newReportCmd(s *state) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print break statistics as JSON (last 30 days by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := s.App().Admin.Report(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first date, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last date, YYYY-MM-DD")
	return cmd
}

func recordFlags(cmd *cobra.Command, f *model.RecordFilter) {
	cmd.Flags().StringVar(&f.From, "from", "", "first date, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.To, "to", "", "last date, YYYY-MM-DD")
	cmd.Flags().Int64Var(&f.EmployeeID, "employee-id", 0, "only this employee")
}
