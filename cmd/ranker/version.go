package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shpitdev/fdi-ranker/internal/version"
)

func newVersionCmd(_ cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the release version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Current)
			return err
		},
	}
}
