// Package htmlconv converts HTML documents into downloadable PDF files and
// PPTX slide decks.
//
// # Input
//
// Documents usually arrive base64-encoded. [DecodeHTML] decodes the payload
// and rejects anything that does not look like HTML:
//
//	html, err := htmlconv.DecodeHTML(payload)
//	if errors.Is(err, htmlconv.ErrInvalidInput) {
//	    // bad request
//	}
//
// # HTML to PDF
//
// PDF output is printed by headless Chrome over the DevTools Protocol. For
// one-off conversions use the package-level helpers:
//
//	res, err := htmlconv.ConvertHTML(ctx, "<html><h1>Hello</h1></html>", nil)
//
// For repeated conversions create a [Converter], which reuses the browser process:
//
//	c, err := htmlconv.NewConverter(htmlconv.WithWaitUntil(htmlconv.NetworkIdle))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	res, err := c.ConvertHTML(ctx, html, nil)
//	res, err  = c.ConvertURL(ctx, "https://example.com", nil)
//	res, err  = c.ConvertFile(ctx, "report.html", nil)
//
// Use [PageConfig] to control paper size, orientation, margins, and scale:
//
//	page := &htmlconv.PageConfig{
//	    Size:        htmlconv.A4,
//	    Orientation: htmlconv.Landscape,
//	    Margin:      htmlconv.UniformMargin(2.0),
//	}
//	res, err := c.ConvertHTML(ctx, html, page)
//
// Chrome or Chromium must be installed, or a pinned Chromium can be
// downloaded on first use:
//
//	c, err := htmlconv.NewConverter(htmlconv.WithBrowserSource(htmlconv.SourceBundled))
//
// # HTML to slides
//
// [ExtractSlides] collects the text of h1, h2, h3, section and div elements
// in document order and [BuildDeck] lays out one slide per entry:
//
//	slides, err := htmlconv.ExtractSlides(html)
//	res, err := htmlconv.BuildDeck(slides)
//
// [SlidesRenderer] and [PDFRenderer] wrap both pipelines behind the common
// [Renderer] interface.
//
// # Results
//
// A [Result] gives flexible access to the generated bytes:
//
//	res.Bytes()                       // []byte
//	res.Base64()                      // base64 string (RFC 4648)
//	res.Reader()                      // *bytes.Reader
//	res.WriteTo(w)                    // io.WriterTo
//	res.WriteToFile("out.pdf", 0o644) // write to disk
//	res.Pages()                       // page or slide count
package htmlconv
