package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree. Each call returns fresh commands
// and flag values.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "mockrest",
		Short: "mockrest is a mock REST API for frontend prototyping",
		Long: `mockrest serves CRUD endpoints over twelve in-memory resources (users,
posts, comments, albums, photos, todos, products, categories, carts, orders,
reviews, tags) seeded from JSON fixtures. Lists support filters, ?q= search
and limit/offset pagination; writes are validated, including foreign keys.

Configuration can be provided via flags, MOCKREST_* environment variables,
or a YAML/JSON configuration file (--config or MOCKREST_CONFIG).`,
		SilenceUsage:  true,
		SilenceErrors: true, // We handle errors in Execute()
	}

	root.AddCommand(
		newServeCmd(),
		newResourcesCmd(),
		newValidateCmd(),
		newOpenAPICmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
