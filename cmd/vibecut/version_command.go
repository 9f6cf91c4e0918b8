package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vibecut/internal/compiler"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the compiler version",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "vibecut %s\n", compiler.Version)
			return nil
		},
	}
}
