package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newDomainsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "domains",
		Short: "List registered domains with labels and descriptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd, flags)
			if err != nil {
				return err
			}
			defer rt.Close()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			bold := color.New(color.Bold)
			bold.Fprintln(tw, "DOMAIN\tLABEL\tDESCRIPTION")
			for _, d := range rt.Router.Domains() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", d, rt.Router.Label(d), rt.Router.Describe(d))
			}
			return tw.Flush()
		},
	}
}
