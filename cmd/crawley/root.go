package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command. Without a subcommand it runs a
// crawl with the same flags as "crawl".
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawley",
		Short: "Breadth-first web crawler",
		Long: `crawley crawls the web breadth-first from a seed URL.

The visited list (crawler-list.txt by default) is emptied at startup and
every URL fetched successfully is appended to it. URLs in the list are
never fetched again, including URLs written to it by another process
while the crawl runs. Stop the crawl with Ctrl-C.

Links are never queued when they start with /, ., #, ?, a space or a tab,
end in .jpg, .png, .svg, .ico, .webp, .exe, .pdf or .onion, start with
javascript, mailto: or tel:, or contain child, kid, minor or under18.
Additional exclusions can be listed in a JSON file named by
MANUAL_EXCLUSIONS_FILE or --exclusions, and --ignore adds glob patterns.`,
		Version:       getVersion(),
		Args:          cobra.NoArgs,
		RunE:          runCrawlCmd,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	addCrawlFlags(cmd)

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
