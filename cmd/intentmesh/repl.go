package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hupe1980/intentmesh"
	"github.com/hupe1980/intentmesh/core"
)

func newReplCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Answer requests interactively until exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(cmd, flags)
		},
	}
}

func runRepl(cmd *cobra.Command, flags *rootFlags) error {
	rt, err := loadRuntime(cmd, flags)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return repl(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), rt.Router)
}

// repl reads one request per line. "exit" or "quit" or EOF ends the session.
func repl(ctx context.Context, in io.Reader, out io.Writer, router *intentmesh.Router) error {
	prompt := color.New(color.FgCyan, color.Bold)
	fmt.Fprintf(out, "intentmesh ready, domains: %s. Type \"exit\" to quit.\n", joinDomains(router))

	scanner := bufio.NewScanner(in)
	for {
		prompt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		resp, err := router.Handle(ctx, line)
		if err != nil {
			color.New(color.FgRed).Fprintf(out, "error: %v\n", err)
			continue
		}
		printResponse(out, resp, false)
	}
}

func joinDomains(router *intentmesh.Router) string {
	return strings.Join(core.DomainStrings(router.Domains()), ", ")
}
