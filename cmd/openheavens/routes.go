package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/renatoruis/oh-institutional/pkg/router"
)

func routesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the site's routes",
		Long:  `Print every route pattern with its view and navigation tag, in match order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			table := router.NewSiteTable()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PATTERN\tVIEW\tNAV")
			for _, e := range table.Entries() {
				tag, ok := router.ActiveTag(e.View)
				if !ok {
					tag = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Pattern, e.View, tag)
			}
			return tw.Flush()
		},
	}
}
