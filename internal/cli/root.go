package cli

import (
	"context"
	"fmt"
	"os"

	"breaktime.service/internal/config"
	"breaktime.service/pkg/logger"
	"github.com/spf13/cobra"
)

// Loader builds the App once flags are parsed.
type Loader func(ctx context.Context) (*App, error)

type state struct {
	load Loader
	app  *App
}

func (s *state) App() *App {
	return s.app
}

// NewRootCmd assembles breakctl. load runs before any subcommand that needs the store.
func NewRootCmd(load Loader) *cobra.Command {
	s := &state{load: load}

	root := &cobra.Command{
		Use:   "breakctl",
		Short: "Administer the break-time clock",
		Long: `breakctl manages employees, inspects active breaks, exports break records
and records scans from the command line against the configured store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.load(cmd.Context())
			if err != nil {
				return err
			}
			s.app = app
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if s.app == nil {
				return nil
			}
			return s.app.Close()
		},
	}

	root.AddCommand(newEmployeeCmd(s))
	root.AddCommand(newRecordsCmd(s))
	root.AddCommand(newReportCmd(s))
	root.AddCommand(newBreaksCmd(s))
	root.AddCommand(newScanCmd(s))
	root.AddCommand(newMigrateCmd(s))

	return root
}

// Execute runs breakctl against the environment's configuration.
func Execute() error {
	root := NewRootCmd(func(ctx context.Context) (*App, error) {
		cfg, err := config.LoadConfig()
		if err != nil {
			return nil, fmt.Errorf("load configuration: %w", err)
		}
		logger.Setup(cfg.IsLocalDev)
		return Open(ctx, cfg)
	})

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
