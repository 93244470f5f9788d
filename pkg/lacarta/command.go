package lacarta

// Command represents a discrete application operation with its configuration.
// Commands are created by Parse from command-line arguments and executed by
// the matching method on [App].
type Command interface {
	// Name returns the command identifier used for routing.
	Name() string
}

// MigrateCommand runs database schema migration. Safe to run repeatedly; it
// only creates missing schema elements. A no-op on the in-memory store.
type MigrateCommand struct{}

func (c *MigrateCommand) Name() string { return "migrate" }

// RunCommand starts the HTTP server.
type RunCommand struct{}

func (c *RunCommand) Name() string { return "run" }
