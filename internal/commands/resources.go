package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tmarsden/orc/internal/catalog"
)

var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "List the demo resource catalog page by page",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := catalog.New(catalog.Config{UpdateInterval: time.Hour})
		defer c.Close()

		cursor := ""
		for {
			page, err := c.List(cursor)
			if err != nil {
				return err
			}
			for _, resource := range page.Resources {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", resource.URI, resource.MIMEType, resource.Name)
			}
			if page.NextCursor == "" {
				return nil
			}
			cursor = page.NextCursor
		}
	},
}

func init() {
	rootCmd.AddCommand(resourcesCmd)
}
