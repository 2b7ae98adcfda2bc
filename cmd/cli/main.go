package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/pep299/paper-summarizer/internal/annotate"
	"github.com/pep299/paper-summarizer/internal/config"
	"github.com/pep299/paper-summarizer/internal/pdftext"
	"github.com/pep299/paper-summarizer/internal/sections"
	"github.com/pep299/paper-summarizer/internal/summarizer"
	"github.com/pep299/paper-summarizer/internal/upload"
)

var (
	Version   string = "dev"
	Commit    string = "unknown"
	BuildTime string = "unknown"
)

func main() {
	var (
		showHelp     = flag.Bool("help", false, "Show help message")
		showVersion  = flag.Bool("version", false, "Show version information")
		showSections = flag.Bool("sections", false, "Also print the sliced key sections")
	)
	flag.Parse()

	if *showHelp {
		fmt.Printf("Paper Summarizer CLI\n\n")
		fmt.Printf("Usage: %s [options] <file.pdf>\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flag.PrintDefaults()
		fmt.Printf("\nEnvironment Variables:\n")
		fmt.Printf("  HUGGINGFACE_API_TOKEN       Summarization API token (required)\n")
		fmt.Printf("  SUMMARIZER_URL              Summarization endpoint\n")
		fmt.Printf("  SUMMARIZER_TIMEOUT_SECONDS  Request timeout (default: 60)\n")
		os.Exit(0)
	}

	if *showVersion {
		fmt.Printf("Paper Summarizer CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Commit: %s\n", Commit)
		fmt.Printf("Build Time: %s\n", BuildTime)
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <file.pdf>\n", os.Args[0])
		os.Exit(2)
	}

	cfg, err := config.LoadSummarizer()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	client := summarizer.NewClient(
		cfg.HuggingFaceAPIToken,
		cfg.SummarizerURL,
		time.Duration(cfg.SummarizerTimeout)*time.Second,
	)

	if err := run(context.Background(), os.Stdout, annotate.NewService(client), flag.Arg(0), *showSections); err != nil {
		log.Fatalf("Processing failed: %v", err)
	}
}

// run annotates the PDF at path and prints the result to out
func run(ctx context.Context, out io.Writer, svc *annotate.Service, path string, showSections bool) error {
	if !upload.Allowed(path) {
		return fmt.Errorf("%s: %w", path, upload.ErrNotAllowed)
	}

	text, err := pdftext.ExtractFile(path)
	if err != nil {
		return fmt.Errorf("extracting text: %w", err)
	}

	if showSections {
		found := sections.Extract(text)
		for _, name := range sections.Targets {
			if block, ok := found[name]; ok {
				fmt.Fprintf(out, "== %s ==\n%s\n\n", name, block)
			}
		}
	}

	annotation, err := svc.Annotate(ctx, text)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Summary:\n%s\n\nResearch gaps:\n%s\n", annotation.Summary, annotation.Gaps)
	return nil
}
