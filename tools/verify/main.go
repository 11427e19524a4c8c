// Command verify is the read-only smoke check over a written final
// table: head of the Load column, peak and average.
package main

import (
	"flag"
	"fmt"
	"os"

	"gridhistory/internal/export"
	"gridhistory/internal/report"
	"gridhistory/internal/verify"
)

func main() {
	var (
		input   = flag.String("input", "historical_gen_load_emissions.csv", "final table to verify")
		pdfPath = flag.String("pdf", "", "optional path for a PDF run report")
	)
	flag.Parse()

	table, err := export.ReadCSV(*input)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load table:", err)
		os.Exit(2)
	}

	summary, err := verify.Summarize(table)
	if err != nil {
		fmt.Fprintln(os.Stderr, "verify:", err)
		os.Exit(1)
	}
	summary.Print(os.Stdout)

	if *pdfPath != "" {
		doc, err := report.BuildVerificationPDF(*input, summary)
		if err != nil {
			fmt.Fprintln(os.Stderr, "build report:", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*pdfPath, doc, 0o644); err != nil {
			fmt.Fprintln(os.Stderr, "write report:", err)
			os.Exit(1)
		}
		fmt.Println("wrote report to", *pdfPath)
	}
}
