package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/naiad/internal/app"
	"github.com/dropDatabas3/naiad/internal/bootstrap"
	"github.com/dropDatabas3/naiad/internal/config"
	httpx "github.com/dropDatabas3/naiad/internal/http"
	"github.com/dropDatabas3/naiad/internal/observability/logger"
	"github.com/dropDatabas3/naiad/internal/txn"
	migrations "github.com/dropDatabas3/naiad/migrations/postgres"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:   "naiad",
		Short: "Servidor multi-tenant que publica métodos de modelos como endpoints HTTP",
		PersistentPreRun: func(*cobra.Command, []string) {
			// .env es opcional; la config YAML es la fuente principal.
			_ = godotenv.Load()
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config",
		envOr("NAIAD_CONFIG", "config.yaml"), "ruta del archivo de configuración")

	root.AddCommand(newServeCmd(&cfgPath), newRoutesCmd(&cfgPath), newMigrateCmd(&cfgPath))
	return root
}

func newServeCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}

			logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
			defer func() { _ = logger.Sync() }()

			registry, views := bootstrap.Registry()
			a, err := app.New(cfg, registry, views)
			if err != nil {
				return err
			}
			defer a.Close()

			srv := httpx.NewServer(cfg.Server.Addr, a.Handler())

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.L().Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func newMigrateCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica el schema SQL embebido sobre la base configurada",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
			defer func() { _ = logger.Sync() }()

			manager := txn.NewManager(txn.ManagerConfig{
				DSNs:        cfg.Database.DSNs,
				DSNTemplate: cfg.Database.DSNTemplate,
			})
			defer manager.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			return applySchema(ctx, manager, cfg.Database.Name)
		},
	}
}

// applySchema corre las migraciones embebidas en orden lexicográfico,
// todas dentro de una única transacción.
func applySchema(ctx context.Context, manager *txn.Manager, database string) error {
	entries, err := fs.ReadDir(migrations.SchemaFS, migrations.SchemaDir)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	tx, err := manager.Begin(ctx, database, txn.RootUser, nil, false)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Close(ctx) }()

	log := logger.Named("migrate").With(logger.Database(database))
	for _, name := range names {
		sql, err := fs.ReadFile(migrations.SchemaFS, path.Join(migrations.SchemaDir, name))
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("migration %s: %w", name, err)
		}
		log.Info("migration applied", logger.Key(name))
	}
	return tx.Commit(ctx)
}

func newRoutesCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Lista la tabla de rutas configurada",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, rt := range cfg.Routes {
				methods := strings.Join(rt.Methods, ",")
				if methods == "" {
					methods = "GET"
				}
				if rt.AutoOptions {
					methods += ",OPTIONS"
				}
				fmt.Fprintf(w, "%-24s %-32s %s\n", methods, rt.Pattern, rt.Endpoint)
			}
			return nil
		},
	}
}
