package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joelkehle/sanctionguard/internal/report"
	"github.com/joelkehle/sanctionguard/internal/screening"
)

func main() {
	inputPath := flag.String("input", "", "Path to saved case record JSON")
	outputPath := flag.String("output", "", "Path to write markdown (defaults to stdout)")
	pdfPath := flag.String("pdf", "", "Optional path to write the PDF report")
	chromePath := flag.String("chrome", "", "Chrome/Chromium binary (default: autodetect)")
	flag.Parse()

	if *inputPath == "" {
		log.Fatal("missing required -input")
	}

	in, err := os.ReadFile(*inputPath)
	if err != nil {
		log.Fatalf("read input: %v", err)
	}

	var rec screening.CaseRecord
	if err := json.Unmarshal(in, &rec); err != nil {
		log.Fatalf("decode input JSON: %v", err)
	}
	if rec.Query == "" {
		log.Fatal("input has no query; not a case record")
	}

	if err := writeMarkdown(*outputPath, report.BuildMarkdown(rec)); err != nil {
		log.Fatalf("write markdown: %v", err)
	}
	if *pdfPath != "" {
		pdf, err := report.NewPDFRenderer(*chromePath).RenderCase(context.Background(), rec)
		if err != nil {
			log.Fatalf("render pdf: %v", err)
		}
		if err := os.WriteFile(*pdfPath, pdf, 0o644); err != nil {
			log.Fatalf("write pdf: %v", err)
		}
	}
}

func writeMarkdown(outputPath, markdown string) error {
	if outputPath == "" {
		_, err := fmt.Print(markdown)
		return err
	}
	return os.WriteFile(outputPath, []byte(markdown), 0o644)
}
