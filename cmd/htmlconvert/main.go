// htmlconvert converts HTML documents to PDF files and PPTX slide decks,
// either as an HTTP service or one file at a time.
//
// Usage:
//
//	htmlconvert serve
//	htmlconvert convert [options] <file.html>
//	htmlconvert info <file.pdf|file.pptx>
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	htmlconv "github.com/porticus-lab/go-html-convert"
	"github.com/porticus-lab/go-html-convert/internal/config"
	"github.com/porticus-lab/go-html-convert/internal/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe()
	case "convert":
		err = runConvert(os.Args[2:])
	case "info":
		err = runInfo(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`htmlconvert - HTML to PDF and PPTX conversion

Usage:
  htmlconvert serve
  htmlconvert convert [options] <file.html>
  htmlconvert info <file.pdf|file.pptx>

Commands:
  serve     Run the HTTP conversion service
  convert   Convert a local HTML file
  info      Display the page count of a PDF or the slide texts of a PPTX

Convert options:
  -f <format>     Output format: pdf, pptx (default: pdf)
  -o <file>       Output file (default: input name with the new extension)
  -s <size>       PDF paper size: A3, A4, A5, Letter, Legal (default: A4)
  -l              PDF landscape orientation

Serve reads its configuration from the environment (and .env):
  PORT, OUTPUT_DIR, BASE_URL, MAX_BODY_BYTES, BROWSER_SOURCE, CHROME_PATH,
  CHROME_NO_SANDBOX, RENDER_TIMEOUT, WAIT_UNTIL, CORS_ORIGINS, LOG_LEVEL,
  HTMLCONVERT_CONFIG (optional YAML file)

Examples:
  htmlconvert serve
  htmlconvert convert report.html
  htmlconvert convert -f pptx -o deck.pptx slides.html
  htmlconvert info report.pdf
`)
}

// runServe implements the "serve" command.
func runServe() error {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	srv, err := server.New(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}

type convertArgs struct {
	input  string
	output string
	format htmlconv.Format
	page   htmlconv.PageConfig
}

func parseConvertArgs(args []string) (*convertArgs, error) {
	ca := &convertArgs{
		format: htmlconv.FormatPDF,
		page:   htmlconv.DefaultPageConfig(),
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-f":
			i++
			if i >= len(args) {
				return nil, fmt.Errorf("-f requires an argument")
			}
			f, err := htmlconv.ParseFormat(args[i])
			if err != nil {
				return nil, err
			}
			ca.format = f
		case "-o":
			i++
			if i >= len(args) {
				return nil, fmt.Errorf("-o requires an argument")
			}
			ca.output = args[i]
		case "-s":
			i++
			if i >= len(args) {
				return nil, fmt.Errorf("-s requires an argument")
			}
			size, err := htmlconv.ParsePageSize(args[i])
			if err != nil {
				return nil, err
			}
			ca.page.Size = size
		case "-l":
			ca.page.Orientation = htmlconv.Landscape
		default:
			if strings.HasPrefix(args[i], "-") {
				return nil, fmt.Errorf("unknown option: %s", args[i])
			}
			ca.input = args[i]
		}
	}

	if ca.input == "" {
		return nil, fmt.Errorf("no input file specified")
	}
	if ca.output == "" {
		ca.output = strings.TrimSuffix(ca.input, filepath.Ext(ca.input)) + "." + ca.format.Extension()
	}
	return ca, nil
}

// convertFile is replaced in tests.
var convertFile = htmlconv.ConvertFile

// runConvert implements the "convert" command.
func runConvert(args []string) error {
	ca, err := parseConvertArgs(args)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(ca.input)
	if err != nil {
		return fmt.Errorf("reading %s: %w", ca.input, err)
	}
	html := string(data)
	if !htmlconv.IsHTML(html) {
		return fmt.Errorf("%s: %w", ca.input, htmlconv.ErrNotHTML)
	}

	var res *htmlconv.Result
	if ca.format == htmlconv.FormatPDF {
		// Load from disk so relative stylesheets and images resolve.
		res, err = convertFile(context.Background(), ca.input, &ca.page, htmlconv.WithNoSandbox())
	} else {
		res, err = htmlconv.NewSlidesRenderer().Render(context.Background(), html)
	}
	if err != nil {
		return err
	}
	if err := res.WriteToFile(ca.output, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", ca.output, err)
	}

	pages, err := res.Pages()
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d bytes, %d pages\n", ca.output, res.Len(), pages)
	return nil
}

// runInfo implements the "info" command.
func runInfo(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no input file specified")
	}
	inputFile := args[0]

	f, err := os.Open(inputFile)
	if err != nil {
		return err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return err
	}

	fmt.Printf("File:    %s\n", inputFile)
	fmt.Printf("Size:    %d bytes\n", st.Size())

	if strings.EqualFold(filepath.Ext(inputFile), ".pptx") {
		slides, err := htmlconv.DeckSlideCount(inputFile)
		if err != nil {
			return fmt.Errorf("reading slides: %w", err)
		}
		fmt.Printf("Slides:  %d\n", slides)
		return nil
	}

	pages, err := htmlconv.PDFPageCount(f)
	if err != nil {
		return fmt.Errorf("reading pages: %w", err)
	}
	fmt.Printf("Pages:   %d\n", pages)
	return nil
}
