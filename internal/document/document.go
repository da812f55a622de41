// Package document defines the structured model of an OCR-extracted PDF.
// It is produced by the extraction stage and consumed by the asset codec,
// the directive generator, and the translation stage.
package document

import "strings"

// BoundingBox locates an image on its page in pixel coordinates, with the
// origin at the top-left corner of the page.
type BoundingBox struct {
	TopLeftX     int `json:"top_left_x"`
	TopLeftY     int `json:"top_left_y"`
	BottomRightX int `json:"bottom_right_x"`
	BottomRightY int `json:"bottom_right_y"`
}

// Width returns the box width in pixels. It can be zero or negative for
// malformed boxes, callers must check before using it.
func (b BoundingBox) Width() int {
	return b.BottomRightX - b.TopLeftX
}

// Height returns the box height in pixels.
func (b BoundingBox) Height() int {
	return b.BottomRightY - b.TopLeftY
}

// Dimensions describes the pixel size and scan resolution of a page.
type Dimensions struct {
	DPI    int `json:"dpi"`
	Height int `json:"height"`
	Width  int `json:"width"`
}

// Image is one extracted page image. Base64 carries the image payload as a
// data URI when the OCR service returned it. Box is nil when the service
// omitted coordinates.
type Image struct {
	ID     string       `json:"id"`
	Box    *BoundingBox `json:"bounding_box,omitempty"`
	Base64 string       `json:"image_base64,omitempty"`
}

// Table is one extracted table, its content an HTML fragment.
type Table struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// Page is one extracted page: markdown whose asset references point at the
// images and tables listed alongside it. Size is nil when the OCR service
// did not report page dimensions.
type Page struct {
	Index    int         `json:"index"`
	Markdown string      `json:"markdown"`
	Images   []Image     `json:"images,omitempty"`
	Tables   []Table     `json:"tables,omitempty"`
	Size     *Dimensions `json:"dimensions,omitempty"`
}

// Document is the structured model of one source PDF.
type Document struct {
	Pages []Page `json:"pages"`
}

// PageSeparator joins per-page markdown into the combined document.
const PageSeparator = "\n\n---\n\n"

// Combine joins the markdown of the given pages in slice order, separated
// by a horizontal rule.
func Combine(pages []Page) string {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = p.Markdown
	}
	return strings.Join(parts, PageSeparator)
}
