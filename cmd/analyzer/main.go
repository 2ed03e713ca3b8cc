package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"ledgercli/internal/config"
	"ledgercli/internal/dataprocessing"
	"ledgercli/internal/exporter"
	"ledgercli/internal/files"
	"ledgercli/internal/infrastructure"
	"ledgercli/pkg/contracts/domain"
)

func main() {
	inDir := flag.String("in", "", "directory to scan for statement workbooks (positional file arguments take precedence)")
	outDir := flag.String("out", "reports", "output directory for generated exports")
	csvOnly := flag.Bool("csv-only", false, "write only the CSV ledgers, skip the workbook")
	noDedupe := flag.Bool("no-dedupe", false, "keep duplicate transactions across files")
	noAutodetect := flag.Bool("no-autodetect", false, "skip header detection, use the default or overridden mapping")
	headerRow := flag.Int("header-row", 0, "header row number (1-based) when detection is off or fails")

	mapSeq := flag.String("map-seq", "", "sequence column letter (e.g. B)")
	mapDate := flag.String("map-date", "", "date/time column letter")
	mapDebit := flag.String("map-debit", "", "debit candidate columns, comma separated (e.g. D,E)")
	mapCredit := flag.String("map-credit", "", "credit column letter")
	mapBalance := flag.String("map-balance", "", "balance candidate columns, comma separated")
	mapDesc := flag.String("map-desc", "", "description candidate columns, comma separated")
	mapMemo := flag.String("map-memo", "", "memo candidate columns, comma separated")
	mapBranch := flag.String("map-branch", "", "branch column letter")
	flag.Parse()

	logger, err := infrastructure.InitializeLogger(config.LoggingConfig{Level: "info", Format: "text", Output: "stderr"})
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	paths := collectInputs(logger, flag.Args(), *inDir)
	if len(paths) == 0 {
		logger.Error("no statement workbooks to analyze; pass files or -in <dir>")
		os.Exit(1)
	}

	var sheets []domain.SourceSheet
	for _, path := range paths {
		sheet, err := files.ReadWorkbook(path)
		if err != nil {
			logger.Error("failed to read workbook", "path", path, "error", err)
			os.Exit(1)
		}
		sheets = append(sheets, *sheet)
	}

	req := dataprocessing.AnalysisRequest{
		Sheets: sheets,
		Override: domain.MappingOverride{
			Sequence:    *mapSeq,
			DateTime:    *mapDate,
			Debit:       *mapDebit,
			Credit:      *mapCredit,
			Balance:     *mapBalance,
			Description: *mapDesc,
			Memo:        *mapMemo,
			Branch:      *mapBranch,
			HeaderRow:   *headerRow,
		},
		Options: dataprocessing.Options{
			AutoDetect: !*noAutodetect,
			Dedupe:     !*noDedupe,
		},
	}

	result, err := dataprocessing.NewAnalyzer(logger).Analyze(ctx, req)
	if err != nil {
		logger.Error("analysis failed", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logger.Error("failed to create output directory", "dir", *outDir, "error", err)
		os.Exit(1)
	}

	if err := writeExports(logger, result, *outDir, *csvOnly); err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}

	printSummary(result)
}

// collectInputs resolves the workbooks to analyze: explicit file arguments
// win, otherwise -in is scanned.
func collectInputs(logger *slog.Logger, args []string, inDir string) []string {
	if len(args) > 0 {
		return args
	}
	if inDir == "" {
		return nil
	}

	found, err := files.NewDiscovery(inDir).FindStatementFiles(".")
	if err != nil {
		logger.Error("failed to scan input directory", "dir", inDir, "error", err)
		os.Exit(1)
	}

	paths := make([]string, 0, len(found))
	for _, f := range found {
		paths = append(paths, f.Path)
	}
	return paths
}

func writeExports(logger *slog.Logger, result *dataprocessing.AnalysisResult, outDir string, csvOnly bool) error {
	ledger := exporter.NewLedgerExporter(config.NewPaths(config.PathsConfig{
		DataDir:    outDir,
		ReportsDir: outDir,
	}))

	if err := ledger.ExportFullLedger(result, "ledger_full.csv"); err != nil {
		return err
	}
	if result.Totals.DepositDayCount > 0 {
		if err := ledger.ExportDepositLedger(result, "ledger_deposit.csv"); err != nil {
			return err
		}
	}

	if csvOnly {
		return nil
	}

	f, err := exporter.NewWorkbookComposer(logger).Compose(result)
	if err != nil {
		return err
	}
	return f.SaveAs(fmt.Sprintf("%s/ledger.xlsx", outDir))
}

func printSummary(result *dataprocessing.AnalysisResult) {
	d := result.Diagnostics
	fmt.Printf("run %s\n", result.RunID)
	if result.Meta.Owner != "" || result.Meta.Account != "" {
		fmt.Printf("account: %s %s\n", result.Meta.Owner, result.Meta.Account)
	}
	if result.Meta.Period != "" {
		fmt.Printf("period: %s\n", result.Meta.Period)
	}
	fmt.Printf("transactions: %d (skipped %d, parse errors %d, duplicates removed %d)\n",
		len(result.Transactions), d.SkippedRows, d.ParseErrors, d.DedupedRows)
	fmt.Printf("totals: debit %d, credit %d, net %d\n",
		result.Totals.TotalDebit, result.Totals.TotalCredit,
		result.Totals.TotalCredit-result.Totals.TotalDebit)
	for _, s := range d.Sheets {
		detection := "detected"
		if !s.HeaderDetected {
			detection = "manual"
		}
		fmt.Printf("  %s: header row %d (%s), %d rows parsed\n",
			s.FileName, s.HeaderRow+1, detection, s.ParsedRows)
	}
}
