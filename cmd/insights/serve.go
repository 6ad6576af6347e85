package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"go-insights-engine/internal/api"
	"go-insights-engine/internal/api/handler"
	"go-insights-engine/internal/logger"
	"go-insights-engine/internal/metrics"
	"go-insights-engine/internal/pipeline"
	"go-insights-engine/pkg/router"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			m := metrics.New(reg)

			if a.cfg.Data.ImportOnStart {
				a.importSeed(ctx, m)
			}

			exec := pipeline.NewExecutor(a.db, a.log,
				pipeline.WithMetrics(m),
				pipeline.WithQueryTimeout(a.cfg.Service.QueryTimeout),
			)

			r := router.New(a.log)
			api.RegisterRoutes(r, handler.New(exec, a.db, a.log), metrics.Handler(reg))

			addr := ":" + strconv.Itoa(a.cfg.Service.Port)
			a.log.Info("Starting insights service",
				logger.String("service", a.cfg.Service.Name),
				logger.String("addr", addr),
			)
			if err := r.Run(ctx, addr, a.cfg.Service.ShutdownTimeout); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			a.log.Info("Insights service stopped")
			return nil
		},
	}
}

// importSeed loads the seed file into the store. A failed import leaves the
// existing records in place and the server starts anyway.
func (a *app) importSeed(ctx context.Context, m *metrics.Metrics) {
	if _, err := pipeline.Import(ctx, a.db, a.cfg.Data.SeedFile, a.log, m); err != nil {
		a.log.Error("Seed import failed, serving existing records",
			logger.String("source", a.cfg.Data.SeedFile),
			logger.Error(err),
		)
	}
}
