package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/andresuchdata/eventdesk/backend-go/internal/cache"
	"github.com/andresuchdata/eventdesk/backend-go/internal/config"
	"github.com/andresuchdata/eventdesk/backend-go/internal/domain"
	"github.com/andresuchdata/eventdesk/backend-go/internal/repository/sqlstore"
	"github.com/andresuchdata/eventdesk/backend-go/internal/service"
	"github.com/andresuchdata/eventdesk/backend-go/internal/storage"
	"github.com/andresuchdata/eventdesk/backend-go/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	_ "modernc.org/sqlite"
)

type dbKey struct{}

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newDriverFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "driver",
		Usage:   "database/sql driver (pgx or sqlite)",
		Value:   "pgx",
		EnvVars: []string{"DASHCTL_DRIVER"},
	}
}

func newRoleFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "role",
		Usage:    "Dashboard role (planner or vendor)",
		Required: true,
	}
}

func newConcurrencyFlag() *cli.IntFlag {
	return &cli.IntFlag{
		Name:  "concurrency",
		Usage: "Dashboards processed in parallel",
		Value: 4,
	}
}

func dbFlags(extra ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{newDBURLFlag(), newDriverFlag()}, extra...)
}

func initDB(c *cli.Context) error {
	db, err := sqlstore.Open(c.String("driver"), c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.Context = context.WithValue(c.Context, dbKey{}, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey{}).(*sqlstore.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFrom(c *cli.Context) *sqlstore.DB {
	return c.Context.Value(dbKey{}).(*sqlstore.DB)
}

func roleFrom(c *cli.Context) (domain.Role, error) {
	role, ok := domain.ParseRole(c.String("role"))
	if !ok {
		return "", fmt.Errorf("unknown role %q", c.String("role"))
	}
	return role, nil
}

func backupService(c *cli.Context) (*service.BackupService, error) {
	store, err := storage.NewMinioClient(config.Load().Storage)
	if err != nil {
		return nil, err
	}
	return service.NewBackupService(sqlstore.NewDashboardRepository(dbFrom(c)), store), nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}
	logger.Setup(os.Getenv("SERVER_MODE"))

	app := &cli.App{
		Name:  "dashctl",
		Usage: "Maintain dashboard documents",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Create the dashboard tables",
				Flags:  dbFlags(),
				Before: initDB,
				After:  closeDB,
				Action: func(c *cli.Context) error {
					if err := dbFrom(c).Migrate(c.Context); err != nil {
						return err
					}
					logger.Log.Info().Msg("migration complete")
					return nil
				},
			},
			{
				Name:   "recompute",
				Usage:  "Recompute derived metrics for every dashboard of a role",
				Flags:  dbFlags(newRoleFlag(), newConcurrencyFlag()),
				Before: initDB,
				After:  closeDB,
				Action: runRecompute,
			},
			{
				Name:   "export",
				Usage:  "Export dashboards of a role to object storage",
				Flags:  dbFlags(newRoleFlag(), newConcurrencyFlag()),
				Before: initDB,
				After:  closeDB,
				Action: func(c *cli.Context) error {
					role, err := roleFrom(c)
					if err != nil {
						return err
					}
					backup, err := backupService(c)
					if err != nil {
						return err
					}
					n, err := backup.ExportAll(c.Context, role, c.Int("concurrency"))
					if err != nil {
						return err
					}
					fmt.Printf("exported %d %s dashboards\n", n, role)
					return nil
				},
			},
			{
				Name:   "restore",
				Usage:  "Restore dashboards of a role from object storage",
				Flags:  dbFlags(newRoleFlag()),
				Before: initDB,
				After:  closeDB,
				Action: func(c *cli.Context) error {
					role, err := roleFrom(c)
					if err != nil {
						return err
					}
					backup, err := backupService(c)
					if err != nil {
						return err
					}
					n, err := backup.RestoreAll(c.Context, role)
					if err != nil {
						return err
					}
					fmt.Printf("restored %d %s dashboards\n", n, role)
					return invalidateCache(c)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runRecompute(c *cli.Context) error {
	role, err := roleFrom(c)
	if err != nil {
		return err
	}

	svc := service.NewDashboardService(sqlstore.NewDashboardRepository(dbFrom(c)), cache.NewNoopDashboardCache())
	n, err := svc.RecomputeAll(c.Context, role, c.Int("concurrency"))
	if err != nil {
		return err
	}
	fmt.Printf("recomputed %d %s dashboards\n", n, role)
	return invalidateCache(c)
}

// invalidateCache drops cached documents after a bulk rewrite so the
// server reloads them from the database.
func invalidateCache(c *cli.Context) error {
	cfg := config.Load().Cache
	if !cfg.Enabled {
		return nil
	}
	dashboardCache, err := cache.NewDashboardCache(cfg)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("cache unavailable, skipping invalidation")
		return nil
	}
	return dashboardCache.InvalidateAll(c.Context)
}
