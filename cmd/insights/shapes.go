package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"go-insights-engine/internal/pipeline"
)

func newShapesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shapes",
		Short: "List the built-in query shapes",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range pipeline.ShapeNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
