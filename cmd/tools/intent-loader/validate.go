package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"messenger-responder/pkg/intenttable"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Lint an intent table file",
	Args:  cobra.NoArgs,
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, _ []string) error {
	table, err := intenttable.Load(tableFile)
	if err != nil {
		return fmt.Errorf("load %s: %w", tableFile, err)
	}
	if err := intenttable.Validate(table); err != nil {
		return err
	}
	if _, err := table.Records(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "OK: %s (%d intents)\n", tableFile, len(table.Intents))
	for _, name := range table.Names() {
		fmt.Fprintf(out, "  - %s\n", name)
	}
	return nil
}
