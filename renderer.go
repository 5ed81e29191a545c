package htmlconv

import "context"

// Renderer turns an HTML document into a document of one [Format].
type Renderer interface {
	Format() Format
	Render(ctx context.Context, html string) (*Result, error)
}

var (
	_ Renderer = (*Converter)(nil)
	_ Renderer = (*PDFRenderer)(nil)
	_ Renderer = (*SlidesRenderer)(nil)
)
