package htmlconv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gopresentation "github.com/VantageDataChat/GoPPT"
)

// PlaceholderText fills the single slide of a deck built from no content.
const PlaceholderText = "No content provided"

// Deck geometry in pixels at 96 dpi on a 10in x 5.625in slide.
const (
	deckLayout = "screen16x9"

	slideWidth  = 960
	slideHeight = 540

	// Content boxes sit 0.5in from the corner and cover 90% of the slide.
	boxOffset   = 48
	boxWidth    = slideWidth * 9 / 10
	boxHeight   = slideHeight * 9 / 10
	boxFontSize = 20

	placeholderOffset   = 96
	placeholderWidth    = slideWidth - 2*placeholderOffset
	placeholderHeight   = 96
	placeholderFontSize = 24
)

// BuildDeck builds a slide deck with one slide per entry of slides, each
// holding the entry verbatim in a black 20pt left-aligned text box. With no
// entries the deck has a single slide reading [PlaceholderText].
func BuildDeck(slides []string) (*Result, error) {
	pres := gopresentation.New()
	pres.GetLayout().SetDocumentLayout(deckLayout)

	if len(slides) == 0 {
		shape := pres.GetActiveSlide().CreateRichTextShape()
		shape.SetOffsetX(placeholderOffset)
		shape.SetOffsetY(placeholderOffset)
		shape.SetWidth(placeholderWidth)
		shape.SetHeight(placeholderHeight)
		shape.CreateTextRun(PlaceholderText).GetFont().SetSize(placeholderFontSize)
	}
	for i, text := range slides {
		slide := pres.GetActiveSlide()
		if i > 0 {
			slide = pres.CreateSlide()
		}
		shape := slide.CreateRichTextShape()
		shape.SetOffsetX(boxOffset)
		shape.SetOffsetY(boxOffset)
		shape.SetWidth(boxWidth)
		shape.SetHeight(boxHeight)
		for j, line := range strings.Split(text, "\n") {
			if j > 0 {
				shape.CreateParagraph()
			}
			shape.CreateTextRun(line).GetFont().SetSize(boxFontSize)
		}
	}

	data, err := saveDeck(func(path string) error {
		w, err := gopresentation.NewWriter(pres, gopresentation.WriterPowerPoint2007)
		if err != nil {
			return err
		}
		return w.Save(path)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	return &Result{data: data, format: FormatPPTX, pages: pres.GetSlideCount()}, nil
}

// saveDeck runs save against a scratch path and returns what it wrote; the
// deck writer only saves to files.
func saveDeck(save func(path string) error) ([]byte, error) {
	dir, err := os.MkdirTemp("", "htmlconv-deck-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "deck.pptx")
	if err := save(path); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// DeckSlideCount opens the .pptx file at path and returns its slide count.
func DeckSlideCount(path string) (int, error) {
	reader, err := gopresentation.NewReader(gopresentation.ReaderPowerPoint2007)
	if err != nil {
		return 0, fmt.Errorf("htmlconv: opening deck reader: %w", err)
	}
	pres, err := reader.Read(path)
	if err != nil {
		return 0, fmt.Errorf("htmlconv: reading deck %s: %w", path, err)
	}
	return pres.GetSlideCount(), nil
}

// SlidesRenderer renders HTML into a slide deck: text is pulled out with a
// [SlideExtractor] and laid out by [BuildDeck].
type SlidesRenderer struct {
	Extractor *SlideExtractor
}

// NewSlidesRenderer returns a renderer using [DefaultContentTags].
func NewSlidesRenderer() *SlidesRenderer {
	return &SlidesRenderer{Extractor: NewSlideExtractor()}
}

// Format implements [Renderer].
func (r *SlidesRenderer) Format() Format {
	return FormatPPTX
}

// Render implements [Renderer]. The context is only checked before work
// starts; extraction and serialization are not interruptible.
func (r *SlidesRenderer) Render(ctx context.Context, html string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	slides, err := r.Extractor.Extract(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	return BuildDeck(slides)
}
