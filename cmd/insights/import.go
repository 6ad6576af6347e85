package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"go-insights-engine/internal/pipeline"
)

func newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|url>",
		Short: "Replace the stored records with the contents of a JSON or CSV source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			res, err := pipeline.Import(ctx, a.db, args[0], a.log, nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d records, rejected %d\n", len(res.Records), res.RejectedCount())
			return nil
		},
	}
}
