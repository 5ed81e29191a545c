package htmlconv

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ContentTag is an element name whose text becomes a slide.
type ContentTag string

// Elements that start a slide by default.
const (
	TagH1      ContentTag = "h1"
	TagH2      ContentTag = "h2"
	TagH3      ContentTag = "h3"
	TagSection ContentTag = "section"
	TagDiv     ContentTag = "div"
)

// DefaultContentTags are the tags matched by [ExtractSlides].
var DefaultContentTags = []ContentTag{TagH1, TagH2, TagH3, TagSection, TagDiv}

// SlideExtractor turns an HTML document into an ordered list of slide texts.
//
// Every element whose name is one of the extractor's tags contributes its
// trimmed text content, in document order. Nested matches are not merged:
// for <div><h2>Title</h2></div> both the div and the h2 yield "Title".
type SlideExtractor struct {
	selector string
}

// NewSlideExtractor returns an extractor matching tags. With no tags it
// matches [DefaultContentTags].
func NewSlideExtractor(tags ...ContentTag) *SlideExtractor {
	if len(tags) == 0 {
		tags = DefaultContentTags
	}
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = string(t)
	}
	return &SlideExtractor{selector: strings.Join(names, ", ")}
}

// Extract reads an HTML document from r and returns the slide texts.
// An empty, non-nil result means no matching element had any text.
func (e *SlideExtractor) Extract(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("htmlconv: parsing HTML: %w", err)
	}

	slides := []string{}
	doc.Find(e.selector).Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			slides = append(slides, text)
		}
	})
	return slides, nil
}

// ExtractSlides extracts slide texts from html using [DefaultContentTags].
func ExtractSlides(html string) ([]string, error) {
	return NewSlideExtractor().Extract(strings.NewReader(html))
}
