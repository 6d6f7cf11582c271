// truthsignal-scan runs the analysis pipeline against a local HTML file.
// Without -full only the affiliate detector runs, so no provider keys are
// needed; with -full the disclosure stage is attempted too.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"truthsignal/internal/affiliate"
	"truthsignal/internal/app"
	"truthsignal/internal/config"
	"truthsignal/internal/infrastructure/parser"
	"truthsignal/internal/logging"
)

func main() {
	full := flag.Bool("full", false, "run the full pipeline including disclosure analysis")
	flag.Parse()

	html, err := readInput(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "read input: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	if *full {
		pipeline := app.NewPipeline(cfg, logger)
		verdict := pipeline.Analyze(context.Background(), html)
		fmt.Printf("Verdict: %s\n", verdict.Score)
		for _, reason := range verdict.Reasons {
			fmt.Printf("  - %s\n", reason)
		}
		fmt.Printf("\n%s\n", verdict.Summary)
		return
	}

	detector := affiliate.NewDetector(parser.NewHTMLParser(), logger.With("component", "detector"))
	scan := detector.Detect(html)

	fmt.Printf("Affiliate links found: %t\n", scan.Found)
	fmt.Printf("Networks: %v\n", scan.Networks)
	fmt.Printf("Total matches: %d (unique: %d)\n", scan.TotalMatches, scan.UniqueURLs)
	for _, sample := range scan.SampleURLs {
		fmt.Printf("  - %s\n", sample)
	}
	if scan.Diagnostic != "" {
		fmt.Printf("Diagnostic: %s\n", scan.Diagnostic)
	}
}

func readInput(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}
