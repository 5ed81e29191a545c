package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	htmlconv "github.com/porticus-lab/go-html-convert"
)

func TestParseConvertArgs(t *testing.T) {
	ca, err := parseConvertArgs([]string{"-f", "pptx", "slides.html"})
	if err != nil {
		t.Fatalf("parseConvertArgs: %v", err)
	}
	if ca.format != htmlconv.FormatPPTX || ca.input != "slides.html" || ca.output != "slides.pptx" {
		t.Errorf("got %+v", ca)
	}

	ca, err = parseConvertArgs([]string{"-s", "letter", "-l", "-o", "out.pdf", "in.htm"})
	if err != nil {
		t.Fatalf("parseConvertArgs: %v", err)
	}
	if ca.format != htmlconv.FormatPDF || ca.output != "out.pdf" {
		t.Errorf("got %+v", ca)
	}
	if ca.page.Size != htmlconv.Letter || ca.page.Orientation != htmlconv.Landscape {
		t.Errorf("page config = %+v", ca.page)
	}
}

func TestParseConvertArgs_Errors(t *testing.T) {
	tests := [][]string{
		{},
		{"-f"},
		{"-f", "docx", "a.html"},
		{"-s", "B9", "a.html"},
		{"-x", "a.html"},
		{"-o"},
	}
	for _, args := range tests {
		if _, err := parseConvertArgs(args); err == nil {
			t.Errorf("parseConvertArgs(%q) succeeded, want error", args)
		}
	}
}

func TestRunConvert_PDFLoadsFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "report.html")
	if err := os.WriteFile(input, []byte(`<html><link rel="stylesheet" href="style.css"></html>`), 0o600); err != nil {
		t.Fatal(err)
	}

	stop := errors.New("stop")
	var (
		gotPath string
		gotPage *htmlconv.PageConfig
	)
	orig := convertFile
	t.Cleanup(func() { convertFile = orig })
	convertFile = func(_ context.Context, path string, pg *htmlconv.PageConfig, _ ...htmlconv.Option) (*htmlconv.Result, error) {
		gotPath, gotPage = path, pg
		return nil, stop
	}

	if err := runConvert([]string{"-s", "letter", input}); !errors.Is(err, stop) {
		t.Fatalf("runConvert() = %v, want the converter's error", err)
	}
	if gotPath != input {
		t.Errorf("converted %q, want the input file %q", gotPath, input)
	}
	if gotPage == nil || gotPage.Size != htmlconv.Letter {
		t.Errorf("page config = %+v, want letter", gotPage)
	}
}

func TestRunConvert_NotHTML(t *testing.T) {
	input := filepath.Join(t.TempDir(), "notes.html")
	if err := os.WriteFile(input, []byte("plain notes"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := runConvert([]string{input}); !errors.Is(err, htmlconv.ErrNotHTML) {
		t.Errorf("runConvert() = %v, want ErrNotHTML", err)
	}
}

func TestRunConvertAndInfo_Deck(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "slides.html")
	if err := os.WriteFile(input, []byte("<html><h1>One</h1><h2>Two</h2></html>"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := runConvert([]string{"-f", "pptx", input}); err != nil {
		t.Fatalf("runConvert: %v", err)
	}

	output := filepath.Join(dir, "slides.pptx")
	n, err := htmlconv.DeckSlideCount(output)
	if err != nil {
		t.Fatalf("DeckSlideCount: %v", err)
	}
	if n != 2 {
		t.Errorf("deck has %d slides, want 2", n)
	}
	if err := runInfo([]string{output}); err != nil {
		t.Errorf("runInfo: %v", err)
	}
}
