package htmlconv

import (
	"fmt"
	"strings"
)

// PageSize represents paper dimensions in centimeters.
type PageSize struct {
	Width  float64 // Width in centimeters.
	Height float64 // Height in centimeters.
}

// Standard paper sizes.
var (
	A3     = PageSize{Width: 29.7, Height: 42.0}
	A4     = PageSize{Width: 21.0, Height: 29.7}
	A5     = PageSize{Width: 14.8, Height: 21.0}
	Letter = PageSize{Width: 21.59, Height: 27.94}
	Legal  = PageSize{Width: 21.59, Height: 35.56}
)

var pageSizes = map[string]PageSize{
	"a3":     A3,
	"a4":     A4,
	"a5":     A5,
	"letter": Letter,
	"legal":  Legal,
}

// ParsePageSize returns the standard paper size with the given name,
// case-insensitively ("A4", "letter").
func ParsePageSize(name string) (PageSize, error) {
	if s, ok := pageSizes[strings.ToLower(name)]; ok {
		return s, nil
	}
	return PageSize{}, fmt.Errorf("htmlconv: unknown page size %q", name)
}

// Orientation represents the page orientation.
type Orientation int

const (
	// Portrait is the default vertical orientation.
	Portrait Orientation = iota
	// Landscape rotates the page to horizontal orientation.
	Landscape
)

// Margin represents page margins in centimeters.
type Margin struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// UniformMargin returns a Margin with the same value on all sides.
func UniformMargin(cm float64) Margin {
	return Margin{Top: cm, Right: cm, Bottom: cm, Left: cm}
}

// PageConfig controls the PDF output parameters.
//
// A nil PageConfig or zero-value fields use the defaults: A4 paper,
// portrait, no margins, scale 1.0.
type PageConfig struct {
	Size        PageSize
	Orientation Orientation
	// Margin in centimeters.
	Margin Margin
	// Scale of the webpage rendering, between 0.1 and 2.0.
	Scale float64
	// PrintBackground enables printing of background colors and images.
	PrintBackground bool
	// PreferCSSPageSize gives precedence to any CSS @page size declared
	// in the document over Size.
	PreferCSSPageSize bool
}

// DefaultPageConfig returns the A4 portrait configuration with no margins
// and no background graphics, as Chrome prints by default.
func DefaultPageConfig() PageConfig {
	return PageConfig{
		Size:        A4,
		Orientation: Portrait,
		Scale:       1.0,
	}
}

// resolved returns a PageConfig with a zero Size and non-positive Scale
// replaced by defaults. Margin and PrintBackground are taken as given.
func (p *PageConfig) resolved() PageConfig {
	d := DefaultPageConfig()
	if p == nil {
		return d
	}
	r := *p
	if r.Size == (PageSize{}) {
		r.Size = d.Size
	}
	if r.Scale <= 0 {
		r.Scale = d.Scale
	}
	return r
}

func cmToInches(cm float64) float64 {
	return cm / 2.54
}

// paperDimensions returns the paper width and height in inches,
// accounting for orientation.
func (p *PageConfig) paperDimensions() (width, height float64) {
	r := p.resolved()
	w := cmToInches(r.Size.Width)
	h := cmToInches(r.Size.Height)
	if r.Orientation == Landscape {
		return h, w
	}
	return w, h
}

// marginInches returns margins converted to inches.
func (p *PageConfig) marginInches() (top, right, bottom, left float64) {
	r := p.resolved()
	return cmToInches(r.Margin.Top),
		cmToInches(r.Margin.Right),
		cmToInches(r.Margin.Bottom),
		cmToInches(r.Margin.Left)
}

// WaitCondition is the Chrome page lifecycle event awaited after
// navigation and before printing.
type WaitCondition string

const (
	// Load waits for the window load event.
	Load WaitCondition = "load"
	// NetworkAlmostIdle waits until at most two requests have been in
	// flight for 500 ms.
	NetworkAlmostIdle WaitCondition = "networkAlmostIdle"
	// NetworkIdle waits until no request has been in flight for 500 ms.
	NetworkIdle WaitCondition = "networkIdle"
)

// ParseWaitCondition parses "load", "networkidle" or "networkalmostidle",
// case-insensitively.
func ParseWaitCondition(s string) (WaitCondition, error) {
	switch strings.ToLower(s) {
	case "load":
		return Load, nil
	case "networkalmostidle", "networkidle2":
		return NetworkAlmostIdle, nil
	case "", "networkidle", "networkidle0":
		return NetworkIdle, nil
	}
	return "", fmt.Errorf("htmlconv: unknown wait condition %q", s)
}
