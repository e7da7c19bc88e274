// Command ssqctl imports and exports the draw history without going through the API
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/cheggaaa/pb/v3"
	"github.com/nsvirk/ssqapi/internal/config"
	"github.com/nsvirk/ssqapi/internal/lottery"
	"github.com/nsvirk/ssqapi/internal/repository"
	"github.com/nsvirk/ssqapi/internal/service"
	"github.com/nsvirk/ssqapi/internal/spreadsheet"
	"github.com/nsvirk/ssqapi/pkg/utils/audit"
	"github.com/nsvirk/ssqapi/pkg/utils/zaplogger"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gorm.io/gorm"
)

const cliActor = "ssqctl"

func usage() {
	fmt.Fprintf(os.Stderr, "usage:\n")
	fmt.Fprintf(os.Stderr, "  ssqctl import -file history.xlsx [-batch 500] [-quiet]\n")
	fmt.Fprintf(os.Stderr, "  ssqctl export -out history.xlsx\n")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	zaplogger.SetLogLevel("warn")
	cfg, err := config.Get()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	switch os.Args[1] {
	case "import":
		runImport(cfg, os.Args[2:])
	case "export":
		runExport(cfg, os.Args[2:])
	default:
		usage()
	}
}

func connect(cfg *config.Config) *gorm.DB {
	db, err := repository.ConnectPostgres(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	return db
}

func runImport(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	file := fs.String("file", "", "spreadsheet to import (.xlsx, .xlsm or .csv)")
	batch := fs.Int("batch", 500, "rows per insert batch")
	quiet := fs.Bool("quiet", false, "hide the progress bar")
	fs.Parse(args)
	if *file == "" || *batch < 1 {
		fs.Usage()
		os.Exit(2)
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	rows, err := spreadsheet.ReadRows(f, filepath.Base(*file))
	if err != nil {
		log.Fatal(err)
	}

	total := service.ImportSummary{}
	results := make([]lottery.Result, 0, len(rows))
	for _, row := range rows {
		if spreadsheet.IsHeader(row) {
			continue
		}
		total.Total++
		res, err := spreadsheet.ParseRow(row)
		if err != nil {
			total.Skipped++
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		results = append(results, res)
	}

	db := connect(cfg)
	auditLog, err := audit.New(db, cliActor)
	if err != nil {
		log.Fatal(err)
	}
	importer := service.NewImportService(db, auditLog)

	bar := pb.StartNew(len(results))
	if *quiet {
		bar.SetWriter(io.Discard)
	}
	ctx := context.Background()
	for start := 0; start < len(results); start += *batch {
		end := min(start+*batch, len(results))
		summary, err := importer.ImportResults(ctx, results[start:end])
		if err != nil {
			bar.Finish()
			log.Fatalf("Import failed at row %d: %v", start, err)
		}
		total.Imported += summary.Imported
		total.Skipped += summary.Skipped
		bar.Add(end - start)
	}
	bar.Finish()

	auditLog.Info(cliActor, "import", map[string]interface{}{
		"file":     *file,
		"total":    total.Total,
		"imported": total.Imported,
		"skipped":  total.Skipped,
	})

	p := message.NewPrinter(language.English)
	p.Printf("rows: %d  imported: %d  skipped: %d\n", total.Total, total.Imported, total.Skipped)
}

func runExport(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("out", "ssq-history.xlsx", "workbook to write")
	fs.Parse(args)

	db := connect(cfg)
	f, err := os.Create(*out)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	history := service.NewHistoryService(db, nil)
	if err := history.Export(context.Background(), f); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("wrote %s\n", *out)
}
