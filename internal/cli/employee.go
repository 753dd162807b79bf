package cli

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"breaktime.service/internal/core/model"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Roster is the YAML layout accepted by "employee import".
type Roster struct {
	Employees []model.Employee `yaml:"employees"`
}

func newEmployeeCmd(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "employee",
		Aliases: []string{"employees"},
		Short:   "Manage the employee roster",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List employees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			employees, err := s.App().Admin.ListEmployees(cmd.Context())
			if err != nil {
				return err
			}
			if len(employees) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No employees.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCODE\tNAME\tBADGE\tSHIFT")
			for _, e := range employees {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", e.ID, e.Code, e.Name, e.Badge, e.Shift)
			}
			return tw.Flush()
		},
	})

	var e model.Employee
	add := &cobra.Command{
		Use:   "add",
		Short: "Add an employee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := s.App().Admin.CreateEmployee(cmd.Context(), e)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created employee %d (%s)\n", created.ID, created.Code)
			return nil
		},
	}
	employeeFlags(add, &e)
	cmd.AddCommand(add)

	var u model.Employee
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace an employee's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			u.ID = id
			if err := s.App().Admin.UpdateEmployee(cmd.Context(), u); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated employee %d\n", id)
			return nil
		},
	}
	employeeFlags(update, &u)
	cmd.AddCommand(update)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an employee without break history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := s.App().Admin.DeleteEmployee(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted employee %d\n", id)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import <roster.yaml>",
		Short: "Create or update employees from a YAML roster, keyed by code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var roster Roster
			if err := yaml.Unmarshal(data, &roster); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			res, err := s.App().Admin.ImportEmployees(cmd.Context(), roster.Employees)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported roster: %d created, %d updated\n", res.Created, res.Updated)
			return err
		},
	})

	return cmd
}

func employeeFlags(cmd *cobra.Command, e *model.Employee) {
	cmd.Flags().StringVar(&e.Name, "name", "", "full name")
	cmd.Flags().StringVar(&e.Badge, "badge", "", "magnetic card number")
	cmd.Flags().StringVar(&e.Code, "code", "", "employee code")
	cmd.Flags().StringVar((*string)(&e.Shift), "shift", string(model.ShiftFull), `shift: "Full", "Part Time" or "Llamado"`)
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("badge")
	_ = cmd.MarkFlagRequired("code")
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
