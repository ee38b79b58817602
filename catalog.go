package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pagecheck/page-contract-tests/rubric"
)

func newListCommand(stdout io.Writer) *cobra.Command {
	var kinds bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the built-in rubrics, or with --kinds the check kinds a rubric can use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if kinds {
				return listCheckKinds(stdout)
			}
			return listBuiltins(stdout)
		},
	}
	cmd.Flags().BoolVar(&kinds, "kinds", false, "list check kinds and their message names")
	return cmd
}

func listBuiltins(out io.Writer) error {
	for _, name := range rubric.BuiltinNames() {
		d, err := rubric.Builtin(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s (%d steps, page %s)\n", d.Name, len(d.Steps), d.Page)
		if d.Description != "" {
			fmt.Fprintf(out, "    %s\n", strings.TrimSpace(d.Description))
		}
	}
	return nil
}

func listCheckKinds(out io.Writer) error {
	for _, kind := range rubric.CheckKinds() {
		slots, err := rubric.MessageSlots(kind)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%-17s messages: %s\n", kind, strings.Join(slots, ", "))
	}
	return nil
}

func newValidateCommand(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "validate RUBRIC...",
		Short: "Check rubric files (or built-in rubric names) without running them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			invalid := 0
			for _, ref := range args {
				d, err := rubric.Resolve(ref)
				if err != nil {
					fmt.Fprintf(stderr, "%s\n", err)
					invalid++
					continue
				}
				fmt.Fprintf(stdout, "%s: ok, rubric %s with %d steps\n", ref, d.Name, len(d.Steps))
			}
			if invalid > 0 {
				return exitCode(exitFailed)
			}
			return nil
		},
	}
}
