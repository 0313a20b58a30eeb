// Command inkpress is the engine's companion CLI: project scaffolding,
// content checking, and image optimization.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	clog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

// logger prints to stderr so command output stays pipeable.
var logger = clog.NewWithOptions(os.Stderr, clog.Options{
	ReportTimestamp: false,
})

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	root := &cobra.Command{
		Use:           "inkpress",
		Short:         "inkpress — a file-backed blog engine built with Go, Echo, and templ",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
	}

	root.AddCommand(
		newCmd(),
		checkCmd(),
		optimizeCmd(),
		versionCmd(),
	)

	return root.ExecuteContext(ctx)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the inkpress version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Printf("inkpress %s\n", version)
		},
	}
}
