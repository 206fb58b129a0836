// backend-go/cmd/analyze/main.go
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/restoops/backend-go/internal/cache"
	"github.com/restoops/backend-go/internal/config"
	"github.com/restoops/backend-go/internal/export"
	"github.com/restoops/backend-go/internal/repository/postgres"
	"github.com/restoops/backend-go/internal/service"
)

type ctxKey string

const serviceKey ctxKey = "analytics-service"

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func analysisFlags() []cli.Flag {
	return []cli.Flag{
		newDBURLFlag(),
		&cli.IntFlag{
			Name:  "window-days",
			Usage: "Size of the analysis window in days",
			Value: 90,
		},
		&cli.IntFlag{
			Name:  "horizon-days",
			Usage: "Forecast horizon in days",
			Value: 30,
		},
		&cli.IntFlag{
			Name:  "lead-time",
			Usage: "Reorder lead time override in days (default: per item)",
		},
		&cli.StringFlag{
			Name:  "as-of",
			Usage: "Reference date (YYYY-MM-DD), defaults to today",
		},
	}
}

func initService(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	wrapped := postgres.WrapDB(sqlx.NewDb(db, "pgx"))
	cfg := config.Load()
	svc := service.NewAnalyticsService(
		postgres.NewMovementRepository(wrapped),
		postgres.NewItemRepository(wrapped),
		cache.NewNoopReportCache(),
		cfg.Engine,
	)

	c.Context = context.WithValue(c.Context, serviceKey, svc)
	return nil
}

func serviceFrom(c *cli.Context) *service.AnalyticsService {
	return c.Context.Value(serviceKey).(*service.AnalyticsService)
}

func parseRequest(c *cli.Context) (service.ReportRequest, error) {
	req := service.ReportRequest{
		WindowDays:   c.Int("window-days"),
		HorizonDays:  c.Int("horizon-days"),
		LeadTimeDays: c.Int("lead-time"),
	}
	if asOf := c.String("as-of"); asOf != "" {
		parsed, err := time.Parse("2006-01-02", asOf)
		if err != nil {
			return req, fmt.Errorf("invalid --as-of %q, expected YYYY-MM-DD", asOf)
		}
		req.AsOf = parsed
	}
	return req, nil
}

func runReport(c *cli.Context) error {
	req, err := parseRequest(c)
	if err != nil {
		return err
	}
	req.ItemID = c.Int64("item")

	svc := serviceFrom(c)

	if c.Bool("apply-par") {
		rec, err := svc.ApplyParLevels(c.Context, req)
		if err != nil {
			return err
		}
		fmt.Printf("applied par levels for item %d: low=%d high=%d\n",
			req.ItemID, rec.Recommended.Low, rec.Recommended.High)
		return nil
	}

	report, err := svc.ItemReport(c.Context, req)
	if err != nil {
		return err
	}
	return writeJSON(c.String("out"), report)
}

func runBatch(c *cli.Context) error {
	req, err := parseRequest(c)
	if err != nil {
		return err
	}

	results, err := serviceFrom(c).BatchReports(c.Context, req)
	if err != nil {
		return err
	}

	out := c.String("out")
	switch format := c.String("format"); format {
	case "json":
		return writeJSON(out, results)
	case "csv":
		return writeToFile(out, func(f *os.File) error {
			return export.WriteCSV(f, results)
		})
	case "xlsx":
		if out == "" {
			return fmt.Errorf("--out is required for xlsx output")
		}
		return writeToFile(out, func(f *os.File) error {
			return export.WriteWorkbook(f, results)
		})
	default:
		return fmt.Errorf("unknown format %q, expected json, csv or xlsx", format)
	}
}

func runArchive(c *cli.Context) error {
	req, err := parseRequest(c)
	if err != nil {
		return err
	}

	results, err := serviceFrom(c).BatchReports(c.Context, req)
	if err != nil {
		return err
	}

	cfg := config.Load()
	var archive export.ObjectStorage
	if cfg.Export.Enabled && cfg.Export.Endpoint != "" {
		archive, err = export.NewS3Archive(cfg.Export)
		if err != nil {
			return err
		}
	} else {
		archive = export.NewLocalArchive(cfg.Export.LocalDir)
	}

	stamp := time.Now().UTC().Format("2006-01-02")
	if !req.AsOf.IsZero() {
		stamp = req.AsOf.Format("2006-01-02")
	}

	payload, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode batch results: %w", err)
	}
	key := fmt.Sprintf("reports/%s/batch.json", stamp)
	if err := archive.UploadObject(c.Context, key, payload); err != nil {
		return err
	}
	fmt.Printf("archived %d reports to %s\n", len(results), key)
	return nil
}

func writeJSON(path string, v interface{}) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	if path == "" {
		fmt.Println(string(payload))
		return nil
	}
	return os.WriteFile(path, payload, 0o644)
}

func writeToFile(path string, write func(*os.File) error) error {
	if path == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	return write(f)
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "analyze",
		Usage: "Run usage analytics and forecasting from the command line",
		Commands: []*cli.Command{
			{
				Name:  "report",
				Usage: "Analyze a single item",
				Flags: append(analysisFlags(),
					&cli.Int64Flag{
						Name:     "item",
						Usage:    "Item id to analyze",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "apply-par",
						Usage: "Persist the recommended par levels after analysis",
					},
					&cli.StringFlag{
						Name:  "out",
						Usage: "Write the JSON report to a file instead of stdout",
					},
				),
				Before: initService,
				Action: runReport,
			},
			{
				Name:  "batch",
				Usage: "Analyze every active item",
				Flags: append(analysisFlags(),
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format: json, csv or xlsx",
						Value: "json",
					},
					&cli.StringFlag{
						Name:  "out",
						Usage: "Output file path",
					},
				),
				Before: initService,
				Action: runBatch,
			},
			{
				Name:   "archive",
				Usage:  "Analyze every active item and archive the results",
				Flags:  analysisFlags(),
				Before: initService,
				Action: runArchive,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
