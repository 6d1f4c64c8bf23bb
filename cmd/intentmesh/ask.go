package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hupe1980/intentmesh"
	"github.com/hupe1980/intentmesh/core"
)

func newAskCmd(flags *rootFlags) *cobra.Command {
	var details bool

	cmd := &cobra.Command{
		Use:   "ask <request...>",
		Short: "Answer a single request",
		Example: `  intentmesh ask "Add 2 and 3 and tell me the weather in Paris"
  intentmesh ask --parallel --details "what day is it and how hot is it in Tokyo"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd, flags)
			if err != nil {
				return err
			}
			defer rt.Close()

			return ask(cmd.Context(), cmd.OutOrStdout(), rt.Router, strings.Join(args, " "), details)
		},
	}
	cmd.Flags().BoolVarP(&details, "details", "d", false, "Show per-domain results and failures")
	return cmd
}

func ask(ctx context.Context, w io.Writer, router *intentmesh.Router, text string, details bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	resp, err := router.Handle(ctx, text)
	if err != nil {
		return err
	}
	printResponse(w, resp, details)
	return nil
}

func printResponse(w io.Writer, resp core.FinalResponse, details bool) {
	fmt.Fprintln(w, resp.Text)
	if !details {
		return
	}

	dim := color.New(color.Faint)
	dim.Fprintf(w, "\nrequest %s (%s)\n", resp.RequestID, resp.Outcome)
	for _, r := range resp.Results {
		if r.OK() {
			printStatus(w, "✓", fmt.Sprintf("%s in %s", r.Domain, r.Duration.Round(time.Microsecond)), color.FgGreen)
			continue
		}
		printStatus(w, "✗", fmt.Sprintf("%s: %s (%v)", r.Domain, r.Kind(), r.Err), color.FgRed)
	}
}

func printStatus(w io.Writer, symbol, message string, attr color.Attribute) {
	c := color.New(attr)
	c.Fprintf(w, "%s ", symbol)
	fmt.Fprintln(w, message)
}
