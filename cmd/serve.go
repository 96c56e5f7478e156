package cmd

import "github.com/spf13/cobra"

// serveCmd is an explicit alias of the root behavior, so deployments can
// spell out `cocktaild serve` in unit files.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the cocktail machine service",
	RunE:  run,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
