package lacarta

import (
	"context"
	"fmt"
)

// Main is the entry point for the lacarta application. It takes a context
// for cancellation and command line arguments, then executes the selected
// command. Tests call it directly without building the binary.
//
// Environment variables:
//
//	POSTGRES_DSN        - PostgreSQL connection string
//	LACARTA_AUTH_TOKEN  - Bearer token required on /api routes when set
func Main(ctx context.Context, args []string) error {
	cmd, config, err := Parse(args)
	if err != nil {
		return fmt.Errorf("failed to parse configuration: %w", err)
	}

	app, err := New(config)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer app.Close()

	switch c := cmd.(type) {
	case *MigrateCommand:
		if err := app.Migrate(ctx, c); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	case *RunCommand:
		if err := app.Run(ctx, c); err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	default:
		return fmt.Errorf("unknown command type: %T", cmd)
	}

	return nil
}
