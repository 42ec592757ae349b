package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skedplan/intake/internal/config"
	"github.com/skedplan/intake/internal/handlers"
	"github.com/skedplan/intake/internal/ingest"
	"github.com/skedplan/intake/internal/metrics"
	"github.com/skedplan/intake/internal/rules"
	"github.com/skedplan/intake/internal/store"
	"github.com/skedplan/intake/internal/validation"
)

func main() {
	root := &cobra.Command{
		Use:   "intake",
		Short: "Scheduling data intake and validation service",
	}
	root.AddCommand(serveCmd(), validateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var rulePack string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP intake service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync()

			logger.Info("Starting intake service",
				zap.String("environment", cfg.Environment),
				zap.Int("http_port", cfg.Server.HTTPPort))

			engine := validation.NewEngine(cfg.Validation, logger)
			datasets := store.New(engine, logger)
			ruleStore := rules.NewStore(logger)
			reader := ingest.NewReader(cfg.Intake, logger)
			collector := metrics.NewCollector()

			if rulePack != "" {
				f, err := os.Open(rulePack)
				if err != nil {
					return fmt.Errorf("failed to open rule pack: %w", err)
				}
				n, err := ruleStore.LoadPack(f)
				f.Close()
				if err != nil {
					return fmt.Errorf("failed to load rule pack: %w", err)
				}
				collector.SetActiveRules(n)
				logger.Info("Rule pack loaded",
					zap.String("path", rulePack),
					zap.Int("rules", n))
			}

			handler := handlers.NewHandler(datasets, ruleStore, reader, collector, cfg, logger)
			router := mux.NewRouter()
			handler.RegisterRoutes(router)
			if cfg.Monitoring.MetricsEnabled {
				router.Handle("/metrics", promhttp.Handler())
			}

			srv := &http.Server{
				Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
				Handler:      router,
				ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
				WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
				IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return fmt.Errorf("HTTP server failed: %w", err)
			case sig := <-stop:
				logger.Info("Shutting down", zap.String("signal", sig.String()))
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}
			logger.Info("Server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&rulePack, "rule-pack", "", "YAML rule pack to load at startup")
	return cmd
}

func validateCmd() *cobra.Command {
	var clientsPath, workersPath, tasksPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate CSV files offline and print the reports as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clientsPath == "" && workersPath == "" && tasksPath == "" {
				return fmt.Errorf("at least one of --clients, --workers, --tasks is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger := zap.NewNop()

			engine := validation.NewEngine(cfg.Validation, logger)
			datasets := store.New(engine, logger)
			reader := ingest.NewReader(cfg.Intake, logger)

			reports := make(map[string]interface{})
			valid := true

			if clientsPath != "" {
				rows, err := reader.ReadFile(clientsPath)
				if err != nil {
					return err
				}
				result := datasets.UploadClients(rows)
				reports["clients"] = result
				valid = valid && result.IsValid
			}
			if workersPath != "" {
				rows, err := reader.ReadFile(workersPath)
				if err != nil {
					return err
				}
				result := datasets.UploadWorkers(rows)
				reports["workers"] = result
				valid = valid && result.IsValid
			}
			if tasksPath != "" {
				rows, err := reader.ReadFile(tasksPath)
				if err != nil {
					return err
				}
				datasets.UploadTasks(rows)
				result := datasets.TaskReport()
				reports["tasks"] = result
				valid = valid && result.IsValid
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(reports); err != nil {
				return err
			}

			if !valid {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&clientsPath, "clients", "", "client CSV file")
	cmd.Flags().StringVar(&workersPath, "workers", "", "worker CSV file")
	cmd.Flags().StringVar(&tasksPath, "tasks", "", "task CSV file")
	return cmd
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.Environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
