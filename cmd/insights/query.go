package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"go-insights-engine/internal/pipeline"
	"go-insights-engine/pkg/utils"
)

func newQueryCommand() *cobra.Command {
	var (
		params []string
		format string
	)
	cmd := &cobra.Command{
		Use:   "query <shape>",
		Short: "Run a query shape against the stored records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, err := parseParams(params)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			exec := pipeline.NewExecutor(a.db, a.log, pipeline.WithQueryTimeout(a.cfg.Service.QueryTimeout))
			result, err := exec.Query(ctx, args[0], filters)
			if err != nil {
				return err
			}
			return pipeline.Export(cmd.OutOrStdout(), format, result)
		},
	}
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "filter as field=value (repeatable)")
	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatTable, "output format: table, json or csv")
	return cmd
}

func parseParams(raw []string) (pipeline.Params, error) {
	params := make(pipeline.Params, len(raw))
	for _, kv := range raw {
		k, v, ok := utils.ParseKeyValue(kv)
		if !ok {
			return nil, fmt.Errorf("invalid --param %q, want field=value", kv)
		}
		params[k] = v
	}
	return params, nil
}
