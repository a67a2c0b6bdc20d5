// Command import-orders ingests a platform export file from the command line,
// using the same pipeline as the upload endpoint. Useful for backfilling
// historical exports without going through the web UI.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"arbitrage-shift-tracker/config"
	"arbitrage-shift-tracker/internal/database"
	"arbitrage-shift-tracker/internal/ingest"
	"arbitrage-shift-tracker/internal/logging"
	"arbitrage-shift-tracker/internal/parser"
	"arbitrage-shift-tracker/internal/platform"
	"arbitrage-shift-tracker/internal/profit"
	"arbitrage-shift-tracker/internal/reports"
)

func main() {
	godotenv.Load()

	var (
		filePath     = flag.String("file", "", "Path to the export file (.csv or .xlsx)")
		platformName = flag.String("platform", "", "Source platform: bybit, htx, bliss or gate")
		accountName  = flag.String("account", "", "Account name recorded on every imported order")
		reportID     = flag.Int64("report", 0, "Shift report ID to window and link the orders to (optional)")
		dryRun       = flag.Bool("dry-run", false, "Parse and normalize only, do not write to the database")
	)
	flag.Parse()

	if *filePath == "" || *platformName == "" {
		fmt.Fprintln(os.Stderr, "Usage: import-orders -file <export> -platform <name> [-account <name>] [-report <id>] [-dry-run]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Keep structured logs out of the way of the printed summary
	logging.SetDefault(logging.New(&logging.Config{
		Level:     "WARN",
		Output:    "stderr",
		Component: "import-orders",
	}))

	data, err := os.ReadFile(*filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read %s: %v\n", *filePath, err)
		os.Exit(1)
	}

	canonical, err := platform.Validate(*platformName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tz := platform.NewNormalizer(cfg.PlatformConfig.TimezoneOffsets)
	p := parser.New(cfg.UploadConfig.MaxHeaderScan)

	if *dryRun {
		if err := preview(p, tz, canonical, *filePath, data); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		return
	}

	db, err := database.NewDB(database.Config{
		Host:     cfg.DatabaseConfig.Host,
		Port:     cfg.DatabaseConfig.Port,
		User:     cfg.DatabaseConfig.User,
		Password: cfg.DatabaseConfig.Password,
		Database: cfg.DatabaseConfig.Database,
		SSLMode:  cfg.DatabaseConfig.SSLMode,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := database.NewRepository(db)
	reportSvc := reports.New(repo, nil, profit.Limits{
		MaxBalanceDelta: cfg.ProfitConfig.MaxBalanceDelta,
		MaxGross:        cfg.ProfitConfig.MaxGrossProfit,
	}, cfg.SalaryConfig.BasePercent)

	svc := ingest.New(p, tz, ingest.NewPGStore(repo), reportSvc)

	req := ingest.Request{
		Platform:    canonical,
		Filename:    *filePath,
		Data:        data,
		AccountName: *accountName,
	}
	if *reportID != 0 {
		report, err := repo.GetShiftReportByID(ctx, *reportID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load report %d: %v\n", *reportID, err)
			os.Exit(1)
		}
		req.Report = report
		req.WindowStart = report.ShiftStartTime
		req.WindowEnd = report.ShiftEndTime
	}

	summary, err := svc.Ingest(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Platform:  %s\n", canonical)
	fmt.Printf("Parsed:    %d\n", summary.TotalParsed)
	fmt.Printf("Created:   %d\n", summary.Created)
	fmt.Printf("Skipped:   %d (already present)\n", summary.Skipped)
	if req.Report != nil {
		fmt.Printf("Linked:    %d (report %d)\n", summary.Linked, req.Report.ID)
	}
}

// preview parses the file, applies the timezone normalization and prints the
// first rows without touching the database
func preview(p *parser.Parser, tz *platform.Normalizer, platformName, filename string, data []byte) error {
	result, err := p.ParseFile(platformName, filename, data)
	if err != nil {
		return fmt.Errorf("failed to parse export: %w", err)
	}

	fmt.Printf("Parsed %d orders from %s (%s)\n\n", result.Parsed, filename, platformName)
	const maxPreview = 10
	for i, row := range result.Orders {
		if i == maxPreview {
			fmt.Printf("... and %d more\n", len(result.Orders)-maxPreview)
			break
		}
		executed := tz.ToCanonical(platformName, row.ExecutedAt)
		fmt.Printf("%-24s %-4s %12.2f %s @ %.2f  total %.2f USDT  [%s]\n",
			row.OrderID, row.Side, row.Quantity, row.Symbol, row.Price, row.TotalUSDT,
			executed.Format("2006-01-02 15:04:05"))
	}
	return nil
}
